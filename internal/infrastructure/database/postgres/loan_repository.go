package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-engine/internal/domain/loan"
	"credit-engine/internal/infrastructure/monitoring"

	"github.com/jackc/pgx/v5"
)

const loanColumns = `loan_id, customer_id, loan_amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, created_at`

type LoanRepository struct {
	db     Querier
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db Querier, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	logCtx := r.logger.With(slog.Int64("customerID", l.CustomerID))

	query := `
        INSERT INTO loans (customer_id, loan_amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        RETURNING loan_id, created_at`

	start := time.Now()
	err := r.db.QueryRow(ctx, query,
		l.CustomerID,
		l.LoanAmount,
		l.Tenure,
		l.InterestRate,
		l.MonthlyRepayment,
		l.EMIsPaidOnTime,
		l.StartDate,
		l.EndDate,
	).Scan(&l.ID, &l.CreatedAt)
	monitoring.RecordDBQuery("CreateLoan", queryStatus(err), time.Since(start))

	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to insert loan", slog.Any("error", err))
		return fmt.Errorf("failed to insert loan: %w", translateDBError(err, logCtx))
	}

	logCtx.InfoContext(ctx, "Loan inserted successfully", slog.Int64("loanID", l.ID))
	return nil
}

func (r *LoanRepository) FindByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE loan_id = $1`

	start := time.Now()
	l, err := scanLoan(r.db.QueryRow(ctx, query, loanID))
	monitoring.RecordDBQuery("FindLoanByID", queryStatus(err), time.Since(start))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, loan.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, wrapDBError(err, "failed to get loan")
	}
	return l, nil
}

func (r *LoanRepository) ListByCustomer(ctx context.Context, customerID int64) ([]loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1 ORDER BY loan_id ASC`

	start := time.Now()
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		monitoring.RecordDBQuery("ListLoansByCustomer", "error", time.Since(start))
		r.logger.ErrorContext(ctx, "Failed to query customer loans", "customer_id", customerID, "error", err)
		return nil, wrapDBError(err, "failed to list customer loans")
	}
	defer rows.Close()

	loans := make([]loan.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "customer_id", customerID, "error", err)
			return nil, wrapDBError(err, "failed to scan loan row")
		}
		loans = append(loans, *l)
	}
	if err := rows.Err(); err != nil {
		monitoring.RecordDBQuery("ListLoansByCustomer", "error", time.Since(start))
		r.logger.ErrorContext(ctx, "Error iterating loan rows", "customer_id", customerID, "error", err)
		return nil, wrapDBError(err, "failed to iterate loan rows")
	}
	monitoring.RecordDBQuery("ListLoansByCustomer", "success", time.Since(start))
	return loans, nil
}

func (r *LoanRepository) SumActivePrincipal(ctx context.Context, customerID int64, asOf time.Time) (float64, error) {
	query := `SELECT COALESCE(SUM(loan_amount), 0)::float8 FROM loans WHERE customer_id = $1 AND end_date > $2`
	return r.sum(ctx, "SumActivePrincipal", query, customerID, asOf)
}

func (r *LoanRepository) SumActiveMonthlyRepayment(ctx context.Context, customerID int64, asOf time.Time) (float64, error) {
	query := `SELECT COALESCE(SUM(monthly_repayment), 0)::float8 FROM loans WHERE customer_id = $1 AND end_date > $2`
	return r.sum(ctx, "SumActiveMonthlyRepayment", query, customerID, asOf)
}

func (r *LoanRepository) sum(ctx context.Context, queryName, query string, customerID int64, asOf time.Time) (float64, error) {
	var total float64
	start := time.Now()
	err := r.db.QueryRow(ctx, query, customerID, asOf).Scan(&total)
	monitoring.RecordDBQuery(queryName, queryStatus(err), time.Since(start))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to aggregate loans", "query", queryName, "customer_id", customerID, "error", err)
		return 0, wrapDBError(err, "failed to aggregate active loans")
	}
	return total, nil
}

func (r *LoanRepository) Upsert(ctx context.Context, loans []*loan.Loan) (int, error) {
	query := `
        INSERT INTO loans (loan_id, customer_id, loan_amount, tenure, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
        ON CONFLICT (loan_id) DO UPDATE SET
            customer_id = EXCLUDED.customer_id,
            loan_amount = EXCLUDED.loan_amount,
            tenure = EXCLUDED.tenure,
            interest_rate = EXCLUDED.interest_rate,
            monthly_repayment = EXCLUDED.monthly_repayment,
            emis_paid_on_time = EXCLUDED.emis_paid_on_time,
            start_date = EXCLUDED.start_date,
            end_date = EXCLUDED.end_date`

	start := time.Now()
	var written int
	for _, l := range loans {
		_, err := r.db.Exec(ctx, query,
			l.ID,
			l.CustomerID,
			l.LoanAmount,
			l.Tenure,
			l.InterestRate,
			l.MonthlyRepayment,
			l.EMIsPaidOnTime,
			l.StartDate,
			l.EndDate,
		)
		if err != nil {
			monitoring.RecordDBQuery("UpsertLoans", "error", time.Since(start))
			r.logger.ErrorContext(ctx, "Failed to upsert loan", "loan_id", l.ID, "error", err)
			return written, fmt.Errorf("failed to upsert loan %d: %w", l.ID, translateDBError(err, r.logger))
		}
		written++
	}
	monitoring.RecordDBQuery("UpsertLoans", "success", time.Since(start))
	return written, nil
}

func (r *LoanRepository) SyncIDSequence(ctx context.Context) error {
	query := `SELECT setval(pg_get_serial_sequence('loans', 'loan_id'), COALESCE((SELECT MAX(loan_id) FROM loans), 0) + 1, false)`

	start := time.Now()
	_, err := r.db.Exec(ctx, query)
	monitoring.RecordDBQuery("SyncLoanIDSequence", queryStatus(err), time.Since(start))
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to sync loan id sequence", "error", err)
		return wrapDBError(err, "failed to sync loan id sequence")
	}
	return nil
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID,
		&l.CustomerID,
		&l.LoanAmount,
		&l.Tenure,
		&l.InterestRate,
		&l.MonthlyRepayment,
		&l.EMIsPaidOnTime,
		&l.StartDate,
		&l.EndDate,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
