package handler_test

import (
	"context"

	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"

	"github.com/stretchr/testify/mock"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) RegisterCustomer(ctx context.Context, in customer.RegisterInput) (*customer.Customer, error) {
	args := m.Called(ctx, in)
	c, _ := args.Get(0).(*customer.Customer)
	return c, args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	c, _ := args.Get(0).(*customer.Customer)
	return c, args.Error(1)
}

type MockCreditService struct {
	mock.Mock
}

func (m *MockCreditService) CheckEligibility(ctx context.Context, req credit.Request) (*credit.Decision, error) {
	args := m.Called(ctx, req)
	d, _ := args.Get(0).(*credit.Decision)
	return d, args.Error(1)
}

func (m *MockCreditService) IssueLoan(ctx context.Context, req credit.Request) (*credit.IssueResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*credit.IssueResult)
	return r, args.Error(1)
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID int64) (*loan.Detail, error) {
	args := m.Called(ctx, loanID)
	d, _ := args.Get(0).(*loan.Detail)
	return d, args.Error(1)
}

func (m *MockLoanService) ListCustomerLoans(ctx context.Context, customerID int64) ([]loan.Loan, error) {
	args := m.Called(ctx, customerID)
	l, _ := args.Get(0).([]loan.Loan)
	return l, args.Error(1)
}
