// Package uowmock provides a function-backed uow.UnitOfWork for service tests.
package uowmock

import (
	"context"
	"errors"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW runs callbacks directly against Repos. Set the Fn fields to override.
type UoW struct {
	Repos uow.Repos

	WithinTxFn         func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinCustomerTxFn func(ctx context.Context, customerID int64, fn func(r uow.Repos, c *customer.Customer) error) error
}

// New returns a UoW that passes repos straight through, locking via FindByIDForUpdate.
func New(repos uow.Repos) *UoW {
	return &UoW{Repos: repos}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	if m.Repos.Customers == nil && m.Repos.Loans == nil {
		return errUnimplemented
	}
	return fn(m.Repos)
}

func (m *UoW) WithinCustomerTx(ctx context.Context, customerID int64, fn func(r uow.Repos, c *customer.Customer) error) error {
	if m.WithinCustomerTxFn != nil {
		return m.WithinCustomerTxFn(ctx, customerID, fn)
	}
	if m.Repos.Customers == nil {
		return errUnimplemented
	}
	c, err := m.Repos.Customers.FindByIDForUpdate(ctx, customerID)
	if err != nil {
		return err
	}
	return fn(m.Repos, c)
}
