package uow

import (
	"context"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
)

// Repos are bound to the transaction of the enclosing unit of work.
type Repos struct {
	Customers customer.CustomerRepository
	Loans     loan.Repository
}

type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error

	// WithinCustomerTx locks the customer row before calling fn, serializing
	// writers for the same customer until the transaction ends.
	WithinCustomerTx(ctx context.Context, customerID int64, fn func(r Repos, c *customer.Customer) error) error
}
