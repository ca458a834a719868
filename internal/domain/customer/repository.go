package customer

import (
	"context"
	"fmt"
	"time"

	"credit-engine/internal/pkg/apperrors"
)

var (
	ErrNotFound = fmt.Errorf("%w: customer", apperrors.ErrNotFound)

	ErrDuplicateCustomerID = fmt.Errorf("%w: customer id", apperrors.ErrAlreadyExists)
)

type CustomerRepository interface {
	// Create inserts a customer whose CustomerID has already been assigned.
	Create(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	// FindByIDForUpdate locks the customer row for the rest of the surrounding transaction.
	FindByIDForUpdate(ctx context.Context, customerID int64) (*Customer, error)

	NextCustomerID(ctx context.Context) (int64, error)

	UpdateCurrentDebt(ctx context.Context, customerID int64, currentDebt float64) error

	// Upsert inserts or replaces customers by customer ID. Used by bulk ingestion only.
	Upsert(ctx context.Context, customers []*Customer) (int, error)

	// RefreshCurrentDebt sets every customer's current_debt to the principal of
	// their loans still active on asOf, returning the number of rows touched.
	RefreshCurrentDebt(ctx context.Context, asOf time.Time) (int64, error)
}
