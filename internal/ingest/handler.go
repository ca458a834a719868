package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"credit-engine/internal/event"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Runner is the part of Job the queue handler needs.
type Runner interface {
	Run(ctx context.Context, trigger Trigger, files Files) (*Report, error)
}

var _ Runner = (*Job)(nil)

type DeliveryHandler struct {
	runner Runner
	logger *slog.Logger
}

func NewDeliveryHandler(runner Runner, logger *slog.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		runner: runner,
		logger: logger.With("component", "IngestDeliveryHandler"),
	}
}

// HandleDelivery runs one ingestion per ingest.requested message. Malformed
// and failed requests are dropped; a request arriving while another run is in
// progress is requeued.
func (h *DeliveryHandler) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	logCtx := h.logger.With(slog.Uint64("deliveryTag", d.DeliveryTag), slog.String("routingKey", d.RoutingKey))
	processed := false

	defer func() {
		if !processed {
			logCtx.WarnContext(ctx, "Message processing ended without explicit Ack/Nack")
			_ = d.Nack(false, false)
		}
	}()

	if d.RoutingKey != event.RoutingKeyIngestRequested {
		logCtx.WarnContext(ctx, "Received message with unknown routing key. Discarding.")
		_ = d.Reject(false)
		processed = true
		return
	}

	var req event.IngestRequestedEvent
	if err := json.Unmarshal(d.Body, &req); err != nil {
		logCtx.ErrorContext(ctx, "Failed to unmarshal IngestRequestedEvent", "error", err, "body", string(d.Body))
		_ = d.Nack(false, false)
		processed = true
		return
	}

	logCtx = logCtx.With("requestedBy", req.RequestedBy)
	logCtx.InfoContext(ctx, "Processing ingestion request")

	report, err := h.runner.Run(ctx, TriggerQueue, Files{Customers: req.CustomerFile, Loans: req.LoanFile})
	if err != nil {
		requeue := errors.Is(err, ErrAlreadyRunning)
		logCtx.ErrorContext(ctx, "Ingestion request failed", "error", err, "requeue", requeue)
		_ = d.Nack(false, requeue)
		processed = true
		return
	}

	if err := d.Ack(false); err != nil {
		logCtx.ErrorContext(ctx, "Failed to acknowledge message after successful processing", "error", err)
	} else {
		logCtx.InfoContext(ctx, "Successfully processed and acknowledged message",
			"customersUpserted", report.Customers.Upserted,
			"loansUpserted", report.Loans.Upserted,
		)
	}
	processed = true
}
