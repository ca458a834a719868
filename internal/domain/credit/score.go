// Package credit scores customers from their loan history and decides
// whether a requested loan can be granted and on what rate.
package credit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/finance"
	"credit-engine/internal/domain/loan"
)

const (
	MaxScore = 100

	onTimeWeight      = 25.0
	loanCountWeight   = 5
	loanCountCap      = 10
	activityWeight    = 5
	activityCap       = 5
	approvedVolumeMax = 40.0
)

// Score is the outcome of scoring one customer on a given date.
type Score struct {
	Value int
	// ActivePrincipal is the principal of loans whose end date is after the evaluation date.
	ActivePrincipal float64
}

// Scorer reads a customer's loans and turns them into a Score.
type Scorer struct {
	customers customer.CustomerRepository
	loans     loan.Repository
}

func NewScorer(customers customer.CustomerRepository, loans loan.Repository) *Scorer {
	return &Scorer{customers: customers, loans: loans}
}

// ScoreCustomer scores customerID as of asOf. An unknown customer scores zero
// with no active principal and no error; callers that must reject unknown
// customers look them up first.
func (s *Scorer) ScoreCustomer(ctx context.Context, customerID int64, asOf time.Time) (Score, error) {
	c, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return Score{}, nil
		}
		return Score{}, fmt.Errorf("failed to load customer %d: %w", customerID, err)
	}
	return s.Score(ctx, c, asOf)
}

func (s *Scorer) Score(ctx context.Context, c *customer.Customer, asOf time.Time) (Score, error) {
	history, err := s.loans.ListByCustomer(ctx, c.CustomerID)
	if err != nil {
		return Score{}, fmt.Errorf("failed to load loan history for customer %d: %w", c.CustomerID, err)
	}
	active, err := s.loans.SumActivePrincipal(ctx, c.CustomerID, asOf)
	if err != nil {
		return Score{}, fmt.Errorf("failed to sum active principal for customer %d: %w", c.CustomerID, err)
	}

	return Score{
		Value:           computeScore(history, active, float64(c.ApprovedLimit), asOf),
		ActivePrincipal: active,
	}, nil
}

// computeScore combines on-time repayment, loan count, activity in the year of
// asOf and utilization of the approved limit into a 0..100 score. A customer
// whose active principal already exceeds the limit scores exactly 0.
func computeScore(history []loan.Loan, activePrincipal, approvedLimit float64, asOf time.Time) int {
	var paidOnTime, tenure, currentYear int
	year := finance.Date(asOf).Year()
	for _, l := range history {
		paidOnTime += l.EMIsPaidOnTime
		tenure += l.Tenure
		if l.StartDate.Year() == year {
			currentYear++
		}
	}

	onTime := onTimeWeight
	if tenure > 0 {
		onTime = float64(paidOnTime) / float64(tenure) * onTimeWeight
	}
	count := min(len(history), loanCountCap) * loanCountWeight
	activity := min(currentYear, activityCap) * activityWeight

	if activePrincipal > approvedLimit {
		return 0
	}

	var volume float64
	if approvedLimit > 0 {
		volume = (1 - math.Min(activePrincipal/approvedLimit, 1)) * approvedVolumeMax
	}

	score := int(math.RoundToEven(onTime + float64(count) + float64(activity) + volume))
	return min(score, MaxScore)
}
