package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"
)

const customerNotFound = "Customer not found by repository"

type RegisterInput struct {
	FirstName     string
	LastName      string
	Age           *int
	MonthlyIncome int64
	PhoneNumber   string
}

type CustomerService interface {
	RegisterCustomer(ctx context.Context, in RegisterInput) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, publisher event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("No logger provided to NewCustomerService, using default stderr handler")
	}
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}

	return &customerService{
		repo:   repo,
		pub:    publisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func NewCustomerEventPayload(c *Customer) event.CustomerEventPayload {
	if c == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID:    c.CustomerID,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Age:           c.Age,
		MonthlySalary: c.MonthlySalary,
		PhoneNumber:   c.PhoneNumber,
		ApprovedLimit: c.ApprovedLimit,
		CurrentDebt:   c.CurrentDebt,
	}
}

func (in RegisterInput) validate() error {
	var errs apperrors.FieldErrors
	if strings.TrimSpace(in.FirstName) == "" {
		errs = append(errs, apperrors.ValidationError{Field: "first_name", Message: "must not be empty"})
	}
	if strings.TrimSpace(in.LastName) == "" {
		errs = append(errs, apperrors.ValidationError{Field: "last_name", Message: "must not be empty"})
	}
	if in.Age != nil && *in.Age < 0 {
		errs = append(errs, apperrors.ValidationError{Field: "age", Message: "must not be negative"})
	}
	if in.MonthlyIncome <= 0 {
		errs = append(errs, apperrors.ValidationError{Field: "monthly_income", Message: "must be greater than zero"})
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		errs = append(errs, apperrors.ValidationError{Field: "phone_number", Message: "must not be empty"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *customerService) RegisterCustomer(ctx context.Context, in RegisterInput) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to register customer")

	if err := in.validate(); err != nil {
		s.logger.WarnContext(ctx, "Registration input failed validation", slog.Any("error", err))
		return nil, err
	}

	c := NewCustomer(
		strings.TrimSpace(in.FirstName),
		strings.TrimSpace(in.LastName),
		in.Age,
		in.MonthlyIncome,
		strings.TrimSpace(in.PhoneNumber),
	)

	id, err := s.repo.NextCustomerID(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to allocate customer id", slog.Any("error", err))
		return nil, fmt.Errorf("failed to allocate customer id: %w", err)
	}
	c.CustomerID = id

	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Int64("customerID", id), slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	monitoring.RecordCustomerRegistered()
	logger := s.logger.With(slog.Int64("customerID", c.CustomerID))
	logger.InfoContext(ctx, "Customer registered", slog.Int64("approvedLimit", c.ApprovedLimit))

	registered := event.CustomerRegisteredEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(c),
	}
	if pubErr := s.pub.PublishCustomerRegistered(ctx, registered); pubErr != nil {
		logger.ErrorContext(ctx, "Customer registered, but FAILED to publish registration event", slog.Any("error", pubErr))
	}

	return c, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.DebugContext(ctx, "Attempting to get customer by ID")

	c, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}
	return c, nil
}
