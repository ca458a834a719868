package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customerCols = []string{
	"customer_id", "first_name", "last_name", "age", "monthly_salary",
	"phone_number", "approved_limit", "current_debt", "created_at", "updated_at",
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCustomerRepo(t *testing.T) (pgxmock.PgxPoolIface, *CustomerRepository) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return mockPool, NewCustomerRepository(mockPool, discardLogger())
}

func TestCustomerRepository_Create(t *testing.T) {
	ctx := context.Background()
	age := 30
	c := &customer.Customer{
		CustomerID: 12, FirstName: "Neha", LastName: "Shah", Age: &age,
		MonthlySalary: 60000, PhoneNumber: "9000000000", ApprovedLimit: 2200000,
	}

	t.Run("Success", func(t *testing.T) {
		mockPool, repo := newCustomerRepo(t)
		now := time.Now()
		mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO customers")).
			WithArgs(int64(12), "Neha", "Shah", &age, int64(60000), "9000000000", int64(2200000), 0.0).
			WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		require.NoError(t, repo.Create(ctx, c))
		assert.Equal(t, now, c.CreateDate)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Duplicate ID", func(t *testing.T) {
		mockPool, repo := newCustomerRepo(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO customers")).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "customers_pkey"})

		err := repo.Create(ctx, c)

		assert.ErrorIs(t, err, customer.ErrDuplicateCustomerID)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	})

	t.Run("Nil customer", func(t *testing.T) {
		_, repo := newCustomerRepo(t)
		assert.ErrorIs(t, repo.Create(ctx, nil), apperrors.ErrInvalidArgument)
	})
}

func TestCustomerRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	age := 41

	t.Run("Found", func(t *testing.T) {
		mockPool, repo := newCustomerRepo(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE customer_id = $1")).
			WithArgs(int64(5)).
			WillReturnRows(pgxmock.NewRows(customerCols).
				AddRow(int64(5), "Arun", "Kumar", &age, int64(80000), "9123456789", int64(2900000), 15000.5, now, now))

		c, err := repo.FindByID(ctx, 5)

		require.NoError(t, err)
		assert.Equal(t, int64(5), c.CustomerID)
		assert.Equal(t, "Arun", c.FirstName)
		require.NotNil(t, c.Age)
		assert.Equal(t, 41, *c.Age)
		assert.Equal(t, int64(2900000), c.ApprovedLimit)
		assert.Equal(t, 15000.5, c.CurrentDebt)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		mockPool, repo := newCustomerRepo(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE customer_id = $1")).
			WithArgs(int64(5)).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByID(ctx, 5)

		assert.ErrorIs(t, err, customer.ErrNotFound)
	})

	t.Run("Database error", func(t *testing.T) {
		mockPool, repo := newCustomerRepo(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE customer_id = $1")).
			WithArgs(int64(5)).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.FindByID(ctx, 5)

		assert.ErrorIs(t, err, apperrors.ErrDatabase)
		assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestCustomerRepository_FindByIDForUpdate(t *testing.T) {
	mockPool, repo := newCustomerRepo(t)
	now := time.Now()
	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE customer_id = $1 FOR UPDATE")).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows(customerCols).
			AddRow(int64(9), "Lata", "Menon", nil, int64(50000), "9000000009", int64(1800000), 0.0, now, now))

	c, err := repo.FindByIDForUpdate(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, int64(9), c.CustomerID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestCustomerRepository_NextCustomerID(t *testing.T) {
	mockPool, repo := newCustomerRepo(t)
	mockPool.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(customer_id), 0) + 1 FROM customers")).
		WillReturnRows(pgxmock.NewRows([]string{"next"}).AddRow(int64(301)))

	next, err := repo.NextCustomerID(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(301), next)
}

func TestCustomerRepository_UpdateCurrentDebt(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("UPDATE customers SET current_debt = $2")

	t.Run("Updated", func(t *testing.T) {
		mockPool, repo := newCustomerRepo(t)
		mockPool.ExpectExec(query).WithArgs(int64(3), 45000.0).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateCurrentDebt(ctx, 3, 45000))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Missing customer", func(t *testing.T) {
		mockPool, repo := newCustomerRepo(t)
		mockPool.ExpectExec(query).WithArgs(int64(3), 45000.0).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.UpdateCurrentDebt(ctx, 3, 45000), customer.ErrNotFound)
	})
}

func TestCustomerRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	customers := []*customer.Customer{
		{CustomerID: 1, FirstName: "A", LastName: "B", MonthlySalary: 10000, PhoneNumber: "1", ApprovedLimit: 400000},
		{CustomerID: 2, FirstName: "C", LastName: "D", MonthlySalary: 20000, PhoneNumber: "2", ApprovedLimit: 700000},
	}
	query := regexp.QuoteMeta("ON CONFLICT (customer_id) DO UPDATE SET")

	t.Run("All rows written", func(t *testing.T) {
		mockPool, repo := newCustomerRepo(t)
		for _, c := range customers {
			mockPool.ExpectExec(query).
				WithArgs(c.CustomerID, c.FirstName, c.LastName, c.Age, c.MonthlySalary, c.PhoneNumber, c.ApprovedLimit, c.CurrentDebt).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}

		n, err := repo.Upsert(ctx, customers)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Stops at first failure", func(t *testing.T) {
		mockPool, repo := newCustomerRepo(t)
		mockPool.ExpectExec(query).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("disk full"))

		n, err := repo.Upsert(ctx, customers)

		assert.Zero(t, n)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
		assert.Contains(t, err.Error(), "customer 1")
	})
}

func TestCustomerRepository_RefreshCurrentDebt(t *testing.T) {
	mockPool, repo := newCustomerRepo(t)
	asOf := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	mockPool.ExpectExec(regexp.QuoteMeta("SET current_debt = COALESCE((")).
		WithArgs(asOf).
		WillReturnResult(pgxmock.NewResult("UPDATE", 42))

	n, err := repo.RefreshCurrentDebt(context.Background(), asOf)

	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
