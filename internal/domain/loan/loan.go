package loan

import (
	"fmt"
	"time"

	"credit-engine/internal/domain/finance"
	"credit-engine/internal/pkg/apperrors"
)

type Loan struct {
	ID               int64
	CustomerID       int64
	LoanAmount       float64
	Tenure           int
	InterestRate     float64
	MonthlyRepayment float64
	EMIsPaidOnTime   int
	StartDate        time.Time
	EndDate          time.Time
	CreatedAt        time.Time
}

// NewLoan builds an unsaved loan starting on startDate. The installment is
// computed from the terms and rounded for storage.
func NewLoan(customerID int64, amount, annualRate float64, tenure int, startDate time.Time) (*Loan, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: loan amount must be positive", apperrors.ErrInvalidArgument)
	}
	if tenure <= 0 {
		return nil, fmt.Errorf("%w: tenure must be positive", apperrors.ErrInvalidArgument)
	}
	if annualRate < 0 {
		return nil, fmt.Errorf("%w: interest rate cannot be negative", apperrors.ErrInvalidArgument)
	}

	start := finance.Date(startDate)
	return &Loan{
		CustomerID:       customerID,
		LoanAmount:       amount,
		Tenure:           tenure,
		InterestRate:     annualRate,
		MonthlyRepayment: finance.RoundMoney(finance.MonthlyInstallment(amount, annualRate, tenure)),
		EMIsPaidOnTime:   0,
		StartDate:        start,
		EndDate:          finance.AddMonths(start, tenure),
	}, nil
}

// IsActive reports whether the loan still counts towards exposure on asOf.
func (l *Loan) IsActive(asOf time.Time) bool {
	return l.EndDate.After(finance.Date(asOf))
}

func (l *Loan) RepaymentsLeft() int {
	return l.Tenure - l.EMIsPaidOnTime
}
