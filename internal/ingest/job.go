// Package ingest loads customer and loan records from spreadsheet exports.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/finance"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/domain/uow"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/infrastructure/spreadsheet"
)

var ErrAlreadyRunning = errors.New("an ingestion run is already in progress")

type Trigger string

const (
	TriggerCron    Trigger = "cron"
	TriggerStartup Trigger = "startup"
	TriggerQueue   Trigger = "queue"
	TriggerCLI     Trigger = "cli"
)

var (
	customerColumns = []string{"Customer ID", "First Name", "Last Name", "Phone Number", "Monthly Salary"}
	loanColumns     = []string{"Customer ID", "Loan ID", "Loan Amount", "Tenure", "Interest Rate", "EMIs paid on Time", "Date of Approval", "End Date"}
)

// Files names the two workbooks of one run. Empty fields fall back to the job's defaults.
type Files struct {
	Customers string
	Loans     string
}

type SheetReport struct {
	Read     int `json:"read"`
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
}

type Report struct {
	Trigger       Trigger       `json:"trigger"`
	Files         Files         `json:"files"`
	Customers     SheetReport   `json:"customers"`
	Loans         SheetReport   `json:"loans"`
	DebtRefreshed int64         `json:"debtRefreshed"`
	AsOf          time.Time     `json:"asOf"`
	Duration      time.Duration `json:"duration"`
}

// TableReader loads one workbook.
type TableReader func(path string) (*spreadsheet.Table, error)

type Job struct {
	uow      uow.UnitOfWork
	read     TableReader
	defaults Files
	clock    func() time.Time
	loc      *time.Location
	logger   *slog.Logger
	running  sync.Mutex
}

func NewJob(u uow.UnitOfWork, defaults Files, loc *time.Location, logger *slog.Logger) *Job {
	if loc == nil {
		loc = time.UTC
	}
	return &Job{
		uow:      u,
		read:     spreadsheet.ReadFile,
		defaults: defaults,
		clock:    time.Now,
		loc:      loc,
		logger:   logger.With("component", "IngestJob"),
	}
}

// Run loads both workbooks and writes them in a single transaction: customers
// are upserted first, then loans whose customer exists, then the loan id
// sequence is re-synced and every customer's current debt is recomputed.
// Only one run executes at a time; a concurrent call gets ErrAlreadyRunning.
func (j *Job) Run(ctx context.Context, trigger Trigger, files Files) (report *Report, err error) {
	if !j.running.TryLock() {
		j.logger.WarnContext(ctx, "Ingestion skipped, previous run still in progress", "trigger", trigger)
		return nil, ErrAlreadyRunning
	}
	defer j.running.Unlock()

	started := j.clock()
	report = &Report{Trigger: trigger, Files: j.resolve(files), AsOf: finance.Date(started.In(j.loc))}
	logCtx := j.logger.With("trigger", trigger, "customerFile", report.Files.Customers, "loanFile", report.Files.Loans)

	defer func() {
		report.Duration = j.clock().Sub(started)
		status := "success"
		if err != nil {
			status = "error"
		}
		monitoring.RecordIngestRun(string(trigger), status, report.Duration)
	}()

	logCtx.InfoContext(ctx, "Starting spreadsheet ingestion")

	customers, err := j.loadCustomers(ctx, report)
	if err != nil {
		return report, err
	}
	loans, err := j.loadLoans(ctx, report)
	if err != nil {
		return report, err
	}

	err = j.uow.WithinTx(ctx, func(r uow.Repos) error {
		n, err := r.Customers.Upsert(ctx, customers)
		if err != nil {
			return err
		}
		report.Customers.Upserted = n

		known, err := knownCustomers(ctx, r.Customers, customers, loans)
		if err != nil {
			return err
		}
		kept := loans[:0]
		for _, l := range loans {
			if !known[l.CustomerID] {
				logCtx.WarnContext(ctx, "Skipping loan for unknown customer", "loanID", l.ID, "customerID", l.CustomerID)
				report.Loans.Skipped++
				continue
			}
			kept = append(kept, l)
		}

		n, err = r.Loans.Upsert(ctx, kept)
		if err != nil {
			return err
		}
		report.Loans.Upserted = n

		if err := r.Loans.SyncIDSequence(ctx); err != nil {
			return err
		}

		refreshed, err := r.Customers.RefreshCurrentDebt(ctx, report.AsOf)
		if err != nil {
			return err
		}
		report.DebtRefreshed = refreshed
		return nil
	})
	if err != nil {
		logCtx.ErrorContext(ctx, "Ingestion failed, nothing was written", "error", err)
		return report, fmt.Errorf("ingestion failed: %w", err)
	}

	monitoring.RecordIngestRows("customers", "upserted", report.Customers.Upserted)
	monitoring.RecordIngestRows("customers", "skipped", report.Customers.Skipped)
	monitoring.RecordIngestRows("loans", "upserted", report.Loans.Upserted)
	monitoring.RecordIngestRows("loans", "skipped", report.Loans.Skipped)

	logCtx.InfoContext(ctx, "Spreadsheet ingestion finished",
		"customersRead", report.Customers.Read,
		"customersUpserted", report.Customers.Upserted,
		"customersSkipped", report.Customers.Skipped,
		"loansRead", report.Loans.Read,
		"loansUpserted", report.Loans.Upserted,
		"loansSkipped", report.Loans.Skipped,
		"debtRefreshed", report.DebtRefreshed,
		"duration", j.clock().Sub(started),
	)
	return report, nil
}

func (j *Job) resolve(files Files) Files {
	if files.Customers == "" {
		files.Customers = j.defaults.Customers
	}
	if files.Loans == "" {
		files.Loans = j.defaults.Loans
	}
	return files
}

func (j *Job) loadCustomers(ctx context.Context, report *Report) ([]*customer.Customer, error) {
	table, err := j.readTable(report.Files.Customers, customerColumns)
	if err != nil {
		return nil, err
	}
	report.Customers.Read = len(table.Rows)

	seen := make(map[int64]int, len(table.Rows))
	customers := make([]*customer.Customer, 0, len(table.Rows))
	for _, row := range table.Rows {
		c, err := parseCustomer(row)
		if err != nil {
			j.logger.WarnContext(ctx, "Skipping customer row", "row", row.Number, "error", err)
			report.Customers.Skipped++
			continue
		}
		// Later rows win when an id repeats.
		if i, dup := seen[c.CustomerID]; dup {
			customers[i] = c
			report.Customers.Skipped++
			continue
		}
		seen[c.CustomerID] = len(customers)
		customers = append(customers, c)
	}
	return customers, nil
}

func (j *Job) loadLoans(ctx context.Context, report *Report) ([]*loan.Loan, error) {
	table, err := j.readTable(report.Files.Loans, loanColumns)
	if err != nil {
		return nil, err
	}
	report.Loans.Read = len(table.Rows)

	seen := make(map[int64]int, len(table.Rows))
	loans := make([]*loan.Loan, 0, len(table.Rows))
	for _, row := range table.Rows {
		l, err := parseLoan(row)
		if err != nil {
			j.logger.WarnContext(ctx, "Skipping loan row", "row", row.Number, "error", err)
			report.Loans.Skipped++
			continue
		}
		if i, dup := seen[l.ID]; dup {
			loans[i] = l
			report.Loans.Skipped++
			continue
		}
		seen[l.ID] = len(loans)
		loans = append(loans, l)
	}
	return loans, nil
}

func (j *Job) readTable(path string, required []string) (*spreadsheet.Table, error) {
	if path == "" {
		return nil, errors.New("no workbook path configured")
	}
	table, err := j.read(path)
	if err != nil {
		return nil, err
	}
	if missing := table.MissingColumns(required...); len(missing) > 0 {
		return nil, fmt.Errorf("workbook %s is missing columns %v", path, missing)
	}
	return table, nil
}

func knownCustomers(ctx context.Context, repo customer.CustomerRepository, upserted []*customer.Customer, loans []*loan.Loan) (map[int64]bool, error) {
	known := make(map[int64]bool, len(upserted))
	for _, c := range upserted {
		known[c.CustomerID] = true
	}
	checked := make(map[int64]bool)
	for _, l := range loans {
		id := l.CustomerID
		if known[id] || checked[id] {
			continue
		}
		checked[id] = true
		_, err := repo.FindByID(ctx, id)
		switch {
		case err == nil:
			known[id] = true
		case errors.Is(err, customer.ErrNotFound):
		default:
			return nil, err
		}
	}
	return known, nil
}
