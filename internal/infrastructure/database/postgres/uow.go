package postgres

import (
	"context"
	"errors"
	"log/slog"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/uow"

	"github.com/jackc/pgx/v5"
)

// UnitOfWork runs callbacks in a pgx transaction with repositories bound to it.
type UnitOfWork struct {
	db     DBPool
	logger *slog.Logger
}

var _ uow.UnitOfWork = (*UnitOfWork)(nil)

func NewUnitOfWork(db DBPool, logger *slog.Logger) *UnitOfWork {
	return &UnitOfWork{db: db, logger: logger.With("component", "UnitOfWork")}
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(r uow.Repos) error) (err error) {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		u.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return wrapDBError(err, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				u.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	if err = fn(u.repos(tx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		u.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return wrapDBError(err, "failed to commit transaction")
	}
	return nil
}

func (u *UnitOfWork) WithinCustomerTx(ctx context.Context, customerID int64, fn func(r uow.Repos, c *customer.Customer) error) error {
	return u.WithinTx(ctx, func(r uow.Repos) error {
		c, err := r.Customers.FindByIDForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		return fn(r, c)
	})
}

func (u *UnitOfWork) repos(tx pgx.Tx) uow.Repos {
	return uow.Repos{
		Customers: NewCustomerRepository(tx, u.logger),
		Loans:     NewLoanRepository(tx, u.logger),
	}
}
