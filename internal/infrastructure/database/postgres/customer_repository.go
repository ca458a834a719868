package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"
)

const customerColumns = `customer_id, first_name, last_name, age, monthly_salary, phone_number, approved_limit, current_debt, created_at, updated_at`

type CustomerRepository struct {
	db     Querier
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db Querier, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("Querier cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	if c == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	logCtx := r.logger.With(slog.Int64("customerID", c.CustomerID))

	query := `
        INSERT INTO customers (customer_id, first_name, last_name, age, monthly_salary, phone_number, approved_limit, current_debt, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        RETURNING created_at, updated_at`

	start := time.Now()
	err := r.db.QueryRow(ctx, query,
		c.CustomerID,
		c.FirstName,
		c.LastName,
		c.Age,
		c.MonthlySalary,
		c.PhoneNumber,
		c.ApprovedLimit,
		c.CurrentDebt,
	).Scan(&c.CreateDate, &c.UpdatedAt)
	monitoring.RecordDBQuery("CreateCustomer", queryStatus(err), time.Since(start))

	if err != nil {
		translated := translateDBError(err, logCtx)
		if errors.Is(translated, apperrors.ErrAlreadyExists) {
			logCtx.WarnContext(ctx, "Customer ID already taken")
			return customer.ErrDuplicateCustomerID
		}
		logCtx.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("failed to insert customer: %w", translated)
	}

	logCtx.InfoContext(ctx, "Customer inserted successfully")
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_id = $1`
	return r.findOne(ctx, "FindCustomerByID", query, customerID)
}

func (r *CustomerRepository) FindByIDForUpdate(ctx context.Context, customerID int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_id = $1 FOR UPDATE`
	return r.findOne(ctx, "FindCustomerByIDForUpdate", query, customerID)
}

func (r *CustomerRepository) findOne(ctx context.Context, queryName, query string, customerID int64) (*customer.Customer, error) {
	logCtx := r.logger.With(slog.Int64("customerID", customerID))

	var c customer.Customer
	start := time.Now()
	err := r.db.QueryRow(ctx, query, customerID).Scan(
		&c.CustomerID,
		&c.FirstName,
		&c.LastName,
		&c.Age,
		&c.MonthlySalary,
		&c.PhoneNumber,
		&c.ApprovedLimit,
		&c.CurrentDebt,
		&c.CreateDate,
		&c.UpdatedAt,
	)
	monitoring.RecordDBQuery(queryName, queryStatus(err), time.Since(start))

	if err != nil {
		translated := translateDBError(err, logCtx)
		if errors.Is(translated, apperrors.ErrNotFound) {
			logCtx.DebugContext(ctx, "Customer not found")
			return nil, customer.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to query customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to query customer %d: %w", customerID, translated)
	}
	return &c, nil
}

func (r *CustomerRepository) NextCustomerID(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(MAX(customer_id), 0) + 1 FROM customers`

	var next int64
	start := time.Now()
	err := r.db.QueryRow(ctx, query).Scan(&next)
	monitoring.RecordDBQuery("NextCustomerID", queryStatus(err), time.Since(start))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to compute next customer ID", slog.Any("error", err))
		return 0, wrapDBError(err, "failed to compute next customer id")
	}
	return next, nil
}

func (r *CustomerRepository) UpdateCurrentDebt(ctx context.Context, customerID int64, currentDebt float64) error {
	logCtx := r.logger.With(slog.Int64("customerID", customerID))

	query := `UPDATE customers SET current_debt = $2, updated_at = NOW() WHERE customer_id = $1`

	start := time.Now()
	tag, err := r.db.Exec(ctx, query, customerID, currentDebt)
	monitoring.RecordDBQuery("UpdateCurrentDebt", queryStatus(err), time.Since(start))
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to update current debt", slog.Any("error", err))
		return wrapDBError(err, "failed to update current debt")
	}
	if tag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "No customer row updated")
		return customer.ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) Upsert(ctx context.Context, customers []*customer.Customer) (int, error) {
	query := `
        INSERT INTO customers (customer_id, first_name, last_name, age, monthly_salary, phone_number, approved_limit, current_debt, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        ON CONFLICT (customer_id) DO UPDATE SET
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            age = EXCLUDED.age,
            monthly_salary = EXCLUDED.monthly_salary,
            phone_number = EXCLUDED.phone_number,
            approved_limit = EXCLUDED.approved_limit,
            current_debt = EXCLUDED.current_debt,
            updated_at = NOW()`

	start := time.Now()
	var written int
	for _, c := range customers {
		_, err := r.db.Exec(ctx, query,
			c.CustomerID,
			c.FirstName,
			c.LastName,
			c.Age,
			c.MonthlySalary,
			c.PhoneNumber,
			c.ApprovedLimit,
			c.CurrentDebt,
		)
		if err != nil {
			monitoring.RecordDBQuery("UpsertCustomers", "error", time.Since(start))
			r.logger.ErrorContext(ctx, "Failed to upsert customer", slog.Int64("customerID", c.CustomerID), slog.Any("error", err))
			return written, fmt.Errorf("failed to upsert customer %d: %w", c.CustomerID, translateDBError(err, r.logger))
		}
		written++
	}
	monitoring.RecordDBQuery("UpsertCustomers", "success", time.Since(start))
	return written, nil
}

func (r *CustomerRepository) RefreshCurrentDebt(ctx context.Context, asOf time.Time) (int64, error) {
	query := `
        UPDATE customers c
        SET current_debt = COALESCE((
                SELECT SUM(l.loan_amount) FROM loans l
                WHERE l.customer_id = c.customer_id AND l.end_date > $1
            ), 0),
            updated_at = NOW()`

	start := time.Now()
	tag, err := r.db.Exec(ctx, query, asOf)
	monitoring.RecordDBQuery("RefreshCurrentDebt", queryStatus(err), time.Since(start))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to refresh current debt", slog.Any("error", err))
		return 0, wrapDBError(err, "failed to refresh current debt")
	}
	return tag.RowsAffected(), nil
}
