package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"credit-engine/internal/domain/customer"
)

// Detail is a loan together with the customer who owns it.
type Detail struct {
	Loan     *Loan
	Customer *customer.Customer
}

type LoanService interface {
	GetLoan(ctx context.Context, loanID int64) (*Detail, error)
	ListCustomerLoans(ctx context.Context, customerID int64) ([]Loan, error)
}

type loanServiceImpl struct {
	repo      Repository
	customers customer.CustomerRepository
	logger    *slog.Logger
}

func NewLoanService(r Repository, customers customer.CustomerRepository, logger *slog.Logger) LoanService {
	if r == nil || customers == nil {
		panic("loan service requires loan and customer repositories")
	}
	return &loanServiceImpl{repo: r, customers: customers, logger: logger.With("component", "loanService")}
}

func (s *loanServiceImpl) GetLoan(ctx context.Context, loanID int64) (*Detail, error) {
	logger := s.logger.With("loanID", loanID)

	l, err := s.repo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, "Loan not found")
			return nil, ErrNotFound
		}
		logger.ErrorContext(ctx, "Failed to load loan", "error", err)
		return nil, fmt.Errorf("failed to get loan %d: %w", loanID, err)
	}

	c, err := s.customers.FindByID(ctx, l.CustomerID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load loan owner", "customerID", l.CustomerID, "error", err)
		return nil, fmt.Errorf("failed to get customer %d for loan %d: %w", l.CustomerID, loanID, err)
	}

	return &Detail{Loan: l, Customer: c}, nil
}

func (s *loanServiceImpl) ListCustomerLoans(ctx context.Context, customerID int64) ([]Loan, error) {
	logger := s.logger.With("customerID", customerID)

	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			logger.WarnContext(ctx, "Customer not found")
			return nil, customer.ErrNotFound
		}
		logger.ErrorContext(ctx, "Failed to load customer", "error", err)
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	loans, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list loans", "error", err)
		return nil, fmt.Errorf("failed to list loans for customer %d: %w", customerID, err)
	}
	if loans == nil {
		loans = []Loan{}
	}
	logger.DebugContext(ctx, "Listed customer loans", "count", len(loans))
	return loans, nil
}
