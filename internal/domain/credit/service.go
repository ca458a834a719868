package credit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/finance"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/domain/uow"
	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/monitoring"
)

const (
	MessageLoanCreated  = "Loan approved and created successfully"
	MessageLoanRejected = "Loan not approved based on eligibility criteria"
)

// Clock returns the current instant. The evaluation date is its calendar day
// in the service's location.
type Clock func() time.Time

type IssueResult struct {
	Decision Decision
	// Loan is nil when the request was rejected.
	Loan    *loan.Loan
	Message string
}

func (r *IssueResult) Approved() bool {
	return r.Loan != nil
}

type Service interface {
	CheckEligibility(ctx context.Context, req Request) (*Decision, error)
	IssueLoan(ctx context.Context, req Request) (*IssueResult, error)
}

var _ Service = (*service)(nil)

type service struct {
	engine *Engine
	uow    uow.UnitOfWork
	pub    event.EventPublisher
	clock  Clock
	loc    *time.Location
	logger *slog.Logger
}

func NewService(
	customers customer.CustomerRepository,
	loans loan.Repository,
	unitOfWork uow.UnitOfWork,
	publisher event.EventPublisher,
	clock Clock,
	loc *time.Location,
	logger *slog.Logger,
) Service {
	if customers == nil || loans == nil || unitOfWork == nil {
		panic("credit service requires customer and loan repositories and a unit of work")
	}
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		engine: NewEngine(customers, loans),
		uow:    unitOfWork,
		pub:    publisher,
		clock:  clock,
		loc:    loc,
		logger: logger.With(slog.String("component", "creditService")),
	}
}

func (s *service) today() time.Time {
	return finance.Date(s.clock().In(s.loc))
}

func (s *service) CheckEligibility(ctx context.Context, req Request) (*Decision, error) {
	logger := s.logger.With(slog.Int64("customerID", req.CustomerID))

	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "Eligibility request failed validation", slog.Any("error", err))
		return nil, err
	}

	d, err := s.engine.Evaluate(ctx, req, s.today())
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			logger.WarnContext(ctx, "Eligibility requested for unknown customer")
			return nil, err
		}
		logger.ErrorContext(ctx, "Eligibility evaluation failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to evaluate eligibility: %w", err)
	}

	monitoring.RecordDecision(string(d.Outcome), d.Score)
	logger.InfoContext(ctx, "Eligibility evaluated",
		slog.Bool("approved", d.Approved),
		slog.String("outcome", string(d.Outcome)),
		slog.Int("score", d.Score),
		slog.Float64("correctedInterestRate", d.CorrectedInterestRate),
	)
	return &d, nil
}

// IssueLoan re-evaluates req while holding the customer's row lock and, when
// approved, stores the loan and adds its principal to the customer's debt in
// the same transaction.
func (s *service) IssueLoan(ctx context.Context, req Request) (*IssueResult, error) {
	logger := s.logger.With(slog.Int64("customerID", req.CustomerID))

	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "Loan request failed validation", slog.Any("error", err))
		return nil, err
	}

	asOf := s.today()
	result := &IssueResult{}

	err := s.uow.WithinCustomerTx(ctx, req.CustomerID, func(r uow.Repos, c *customer.Customer) error {
		d, err := NewEngine(r.Customers, r.Loans).EvaluateFor(ctx, c, req, asOf)
		if err != nil {
			return err
		}
		result.Decision = d
		if !d.Approved {
			return nil
		}

		l, err := loan.NewLoan(c.CustomerID, req.LoanAmount, d.CorrectedInterestRate, d.Tenure, asOf)
		if err != nil {
			return err
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return fmt.Errorf("failed to save loan: %w", err)
		}

		c.AddDebt(l.LoanAmount)
		if err := r.Customers.UpdateCurrentDebt(ctx, c.CustomerID, c.CurrentDebt); err != nil {
			return fmt.Errorf("failed to update current debt: %w", err)
		}
		result.Loan = l
		return nil
	})
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			logger.WarnContext(ctx, "Loan requested for unknown customer")
			return nil, customer.ErrNotFound
		}
		logger.ErrorContext(ctx, "Loan issuance failed, transaction rolled back", slog.Any("error", err))
		return nil, fmt.Errorf("failed to issue loan: %w", err)
	}

	monitoring.RecordDecision(string(result.Decision.Outcome), result.Decision.Score)

	if !result.Approved() {
		result.Message = MessageLoanRejected
		if reason := result.Decision.Reason(); reason != "" {
			result.Message += ": " + reason
		}
		logger.InfoContext(ctx, "Loan request rejected", slog.String("outcome", string(result.Decision.Outcome)))
		return result, nil
	}

	result.Message = MessageLoanCreated
	monitoring.RecordLoanIssued(result.Loan.LoanAmount)
	logger.InfoContext(ctx, "Loan issued",
		slog.Int64("loanID", result.Loan.ID),
		slog.Float64("loanAmount", result.Loan.LoanAmount),
		slog.Float64("monthlyRepayment", result.Loan.MonthlyRepayment),
	)

	created := event.LoanCreatedEvent{
		Timestamp: time.Now(),
		Payload: event.LoanEventPayload{
			LoanID:           result.Loan.ID,
			CustomerID:       result.Loan.CustomerID,
			LoanAmount:       result.Loan.LoanAmount,
			InterestRate:     result.Loan.InterestRate,
			Tenure:           result.Loan.Tenure,
			MonthlyRepayment: result.Loan.MonthlyRepayment,
			StartDate:        result.Loan.StartDate,
			EndDate:          result.Loan.EndDate,
		},
	}
	if pubErr := s.pub.PublishLoanCreated(ctx, created); pubErr != nil {
		logger.ErrorContext(ctx, "Loan issued, but FAILED to publish loan.created event", slog.Any("error", pubErr))
	}

	return result, nil
}
