package event

import (
	"context"
	"time"
)

const (
	RoutingKeyCustomerRegistered = "customer.registered"
	RoutingKeyLoanCreated        = "loan.created"
	RoutingKeyIngestRequested    = "ingest.requested"
)

type EventPublisher interface {
	PublishCustomerRegistered(ctx context.Context, event CustomerRegisteredEvent) error
	PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error
	PublishIngestRequested(ctx context.Context, event IngestRequestedEvent) error
}

type CustomerEventPayload struct {
	CustomerID    int64   `json:"customerId"`
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Age           *int    `json:"age,omitempty"`
	MonthlySalary int64   `json:"monthlySalary"`
	PhoneNumber   string  `json:"phoneNumber"`
	ApprovedLimit int64   `json:"approvedLimit"`
	CurrentDebt   float64 `json:"currentDebt"`
}

type CustomerRegisteredEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type LoanEventPayload struct {
	LoanID           int64     `json:"loanId"`
	CustomerID       int64     `json:"customerId"`
	LoanAmount       float64   `json:"loanAmount"`
	InterestRate     float64   `json:"interestRate"`
	Tenure           int       `json:"tenure"`
	MonthlyRepayment float64   `json:"monthlyRepayment"`
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
}

type LoanCreatedEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Payload   LoanEventPayload `json:"payload"`
}

// IngestRequestedEvent asks a consumer to load the customer and loan spreadsheets.
// Empty file fields fall back to the consumer's configured paths.
type IngestRequestedEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	RequestedBy  string    `json:"requestedBy,omitempty"`
	CustomerFile string    `json:"customerFile,omitempty"`
	LoanFile     string    `json:"loanFile,omitempty"`
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishCustomerRegistered(context.Context, CustomerRegisteredEvent) error {
	return nil
}

func (NoopPublisher) PublishLoanCreated(context.Context, LoanCreatedEvent) error { return nil }

func (NoopPublisher) PublishIngestRequested(context.Context, IngestRequestedEvent) error { return nil }

var _ EventPublisher = NoopPublisher{}
