package credit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/finance"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"
)

// Rate floors applied to the two middle score tiers.
const (
	MidTierMinRate = 12.0
	LowTierMinRate = 16.0

	// MaxEMIToSalaryRatio caps current monthly repayments as a share of salary.
	MaxEMIToSalaryRatio = 0.5
)

type Outcome string

const (
	OutcomeApproved      Outcome = "approved"
	OutcomeRateCorrected Outcome = "rate_corrected"
	OutcomeRejectedEMI   Outcome = "rejected_emi"
	OutcomeRejectedLimit Outcome = "rejected_limit"
	OutcomeRejectedScore Outcome = "rejected_score"
)

type Request struct {
	CustomerID   int64
	LoanAmount   float64
	InterestRate float64
	Tenure       int
}

func (r Request) Validate() error {
	var errs apperrors.FieldErrors
	if r.CustomerID <= 0 {
		errs = append(errs, apperrors.ValidationError{Field: "customer_id", Message: "must be a positive integer"})
	}
	if r.LoanAmount <= 0 {
		errs = append(errs, apperrors.ValidationError{Field: "loan_amount", Message: "must be greater than zero"})
	}
	if r.InterestRate < 0 {
		errs = append(errs, apperrors.ValidationError{Field: "interest_rate", Message: "must not be negative"})
	}
	if r.Tenure <= 0 {
		errs = append(errs, apperrors.ValidationError{Field: "tenure", Message: "must be a positive number of months"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type Decision struct {
	CustomerID            int64
	Approved              bool
	Outcome               Outcome
	Score                 int
	InterestRate          float64
	CorrectedInterestRate float64
	Tenure                int
	// MonthlyInstallment is unrounded and zero when not approved.
	MonthlyInstallment float64
}

// RoundedInstallment is the installment as reported to clients.
func (d Decision) RoundedInstallment() float64 {
	return finance.RoundMoney(d.MonthlyInstallment)
}

func (d Decision) Reason() string {
	switch d.Outcome {
	case OutcomeRejectedEMI:
		return "Current EMIs exceed 50% of monthly salary"
	case OutcomeRejectedLimit:
		return "Requested amount exceeds the approved credit limit"
	case OutcomeRejectedScore:
		return "Credit score is too low"
	}
	return ""
}

// Engine evaluates loan requests against the repositories it was built with.
type Engine struct {
	customers customer.CustomerRepository
	loans     loan.Repository
	scorer    *Scorer
}

func NewEngine(customers customer.CustomerRepository, loans loan.Repository) *Engine {
	return &Engine{customers: customers, loans: loans, scorer: NewScorer(customers, loans)}
}

// Evaluate decides req as of asOf. An unknown customer is customer.ErrNotFound.
func (e *Engine) Evaluate(ctx context.Context, req Request, asOf time.Time) (Decision, error) {
	c, err := e.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return Decision{}, customer.ErrNotFound
		}
		return Decision{}, fmt.Errorf("failed to load customer %d: %w", req.CustomerID, err)
	}
	return e.EvaluateFor(ctx, c, req, asOf)
}

// EvaluateFor decides req for an already loaded customer.
func (e *Engine) EvaluateFor(ctx context.Context, c *customer.Customer, req Request, asOf time.Time) (Decision, error) {
	score, err := e.scorer.Score(ctx, c, asOf)
	if err != nil {
		return Decision{}, err
	}
	emis, err := e.loans.SumActiveMonthlyRepayment(ctx, c.CustomerID, asOf)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to sum active EMIs for customer %d: %w", c.CustomerID, err)
	}
	return decide(c, req, score, emis), nil
}

// decide applies, in order: the affordability gate, the approved-limit gate,
// and the score tiers.
func decide(c *customer.Customer, req Request, score Score, activeEMIs float64) Decision {
	d := Decision{
		CustomerID:            c.CustomerID,
		Score:                 score.Value,
		InterestRate:          req.InterestRate,
		CorrectedInterestRate: req.InterestRate,
		Tenure:                req.Tenure,
	}

	switch {
	case activeEMIs > MaxEMIToSalaryRatio*float64(c.MonthlySalary):
		d.Outcome = OutcomeRejectedEMI
	case score.ActivePrincipal+req.LoanAmount > float64(c.ApprovedLimit):
		d.Score = 0
		d.Outcome = OutcomeRejectedLimit
	case score.Value > 50:
		d.Approved = true
		d.Outcome = OutcomeApproved
	case score.Value > 30:
		d.Approved = true
		d.Outcome = OutcomeApproved
		if req.InterestRate <= MidTierMinRate {
			d.CorrectedInterestRate = MidTierMinRate
			d.Outcome = OutcomeRateCorrected
		}
	case score.Value > 10:
		d.Approved = true
		d.Outcome = OutcomeApproved
		if req.InterestRate <= LowTierMinRate {
			d.CorrectedInterestRate = LowTierMinRate
			d.Outcome = OutcomeRateCorrected
		}
	default:
		d.Outcome = OutcomeRejectedScore
	}

	if d.Approved {
		d.MonthlyInstallment = finance.MonthlyInstallment(req.LoanAmount, d.CorrectedInterestRate, req.Tenure)
	}
	return d
}
