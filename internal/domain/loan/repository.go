package loan

import (
	"context"
	"fmt"
	"time"

	"credit-engine/internal/pkg/apperrors"
)

var ErrNotFound = fmt.Errorf("%w: loan", apperrors.ErrNotFound)

type Repository interface {
	// Create inserts the loan and fills in its ID and CreatedAt.
	Create(ctx context.Context, loan *Loan) error

	FindByID(ctx context.Context, loanID int64) (*Loan, error)

	ListByCustomer(ctx context.Context, customerID int64) ([]Loan, error)

	// SumActivePrincipal totals loan_amount over loans with end_date > asOf.
	SumActivePrincipal(ctx context.Context, customerID int64, asOf time.Time) (float64, error)

	// SumActiveMonthlyRepayment totals monthly_repayment over loans with end_date > asOf.
	SumActiveMonthlyRepayment(ctx context.Context, customerID int64, asOf time.Time) (float64, error)

	// Upsert inserts or replaces loans by loan ID. Used by bulk ingestion only.
	Upsert(ctx context.Context, loans []*Loan) (int, error)

	// SyncIDSequence moves the loan id sequence past the highest stored id.
	SyncIDSequence(ctx context.Context) error
}
