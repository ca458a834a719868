package loan

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, l *Loan) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, loanID int64) (*Loan, error) {
	args := m.Called(ctx, loanID)
	var l *Loan
	if v := args.Get(0); v != nil {
		l = v.(*Loan)
	}
	return l, args.Error(1)
}

func (m *MockRepository) ListByCustomer(ctx context.Context, customerID int64) ([]Loan, error) {
	args := m.Called(ctx, customerID)
	var loans []Loan
	if v := args.Get(0); v != nil {
		loans = v.([]Loan)
	}
	return loans, args.Error(1)
}

func (m *MockRepository) SumActivePrincipal(ctx context.Context, customerID int64, asOf time.Time) (float64, error) {
	args := m.Called(ctx, customerID, asOf)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockRepository) SumActiveMonthlyRepayment(ctx context.Context, customerID int64, asOf time.Time) (float64, error) {
	args := m.Called(ctx, customerID, asOf)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockRepository) Upsert(ctx context.Context, loans []*Loan) (int, error) {
	args := m.Called(ctx, loans)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) SyncIDSequence(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ Repository = (*MockRepository)(nil)
