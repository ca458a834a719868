package customer

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, customerID int64) (*Customer, error) {
	args := m.Called(ctx, customerID)
	var c *Customer
	if v := args.Get(0); v != nil {
		c = v.(*Customer)
	}
	return c, args.Error(1)
}

func (m *MockCustomerRepository) FindByIDForUpdate(ctx context.Context, customerID int64) (*Customer, error) {
	args := m.Called(ctx, customerID)
	var c *Customer
	if v := args.Get(0); v != nil {
		c = v.(*Customer)
	}
	return c, args.Error(1)
}

func (m *MockCustomerRepository) NextCustomerID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) UpdateCurrentDebt(ctx context.Context, customerID int64, currentDebt float64) error {
	args := m.Called(ctx, customerID, currentDebt)
	return args.Error(0)
}

func (m *MockCustomerRepository) Upsert(ctx context.Context, customers []*Customer) (int, error) {
	args := m.Called(ctx, customers)
	return args.Int(0), args.Error(1)
}

func (m *MockCustomerRepository) RefreshCurrentDebt(ctx context.Context, asOf time.Time) (int64, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(int64), args.Error(1)
}

var _ CustomerRepository = (*MockCustomerRepository)(nil)
