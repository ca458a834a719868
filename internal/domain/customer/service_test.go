package customer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/event"
	"credit-engine/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishCustomerRegistered(ctx context.Context, e event.CustomerRegisteredEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockPublisher) PublishLoanCreated(ctx context.Context, e event.LoanCreatedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockPublisher) PublishIngestRequested(ctx context.Context, e event.IngestRequestedEvent) error {
	return m.Called(ctx, e).Error(0)
}

func setupTest() (*customer.MockCustomerRepository, *mockPublisher, customer.CustomerService) {
	mockRepo := new(customer.MockCustomerRepository)
	pub := new(mockPublisher)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return mockRepo, pub, customer.NewCustomerService(mockRepo, pub, logger)
}

func TestCustomerService_RegisterCustomer(t *testing.T) {
	ctx := context.Background()
	age := 28
	input := customer.RegisterInput{
		FirstName:     "  Meera ",
		LastName:      "Iyer",
		Age:           &age,
		MonthlyIncome: 60_000,
		PhoneNumber:   "9000000001",
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo, pub, service := setupTest()
		mockRepo.On("NextCustomerID", ctx).Return(int64(301), nil).Once()
		mockRepo.On("Create", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
			return c.CustomerID == 301 && c.FirstName == "Meera" && c.ApprovedLimit == 2_200_000 && c.CurrentDebt == 0
		})).Return(nil).Once()
		pub.On("PublishCustomerRegistered", ctx, mock.MatchedBy(func(e event.CustomerRegisteredEvent) bool {
			return e.Payload.CustomerID == 301 && e.Payload.ApprovedLimit == 2_200_000
		})).Return(nil).Once()

		c, err := service.RegisterCustomer(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, int64(301), c.CustomerID)
		assert.Equal(t, "Meera Iyer", c.FullName())
		assert.Equal(t, int64(2_200_000), c.ApprovedLimit)
		mockRepo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("Publish failure does not fail registration", func(t *testing.T) {
		mockRepo, pub, service := setupTest()
		mockRepo.On("NextCustomerID", ctx).Return(int64(1), nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*customer.Customer")).Return(nil).Once()
		pub.On("PublishCustomerRegistered", ctx, mock.Anything).Return(errors.New("broker down")).Once()

		c, err := service.RegisterCustomer(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, int64(1), c.CustomerID)
	})

	t.Run("Error - Validation", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		negative := -1

		_, err := service.RegisterCustomer(ctx, customer.RegisterInput{Age: &negative})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		var fieldErrs apperrors.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field)
		}
		assert.ElementsMatch(t, []string{"first_name", "last_name", "age", "monthly_income", "phone_number"}, fields)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error - Next ID Failure", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		dbErr := errors.New("connection reset")
		mockRepo.On("NextCustomerID", ctx).Return(int64(0), dbErr).Once()

		_, err := service.RegisterCustomer(ctx, input)

		assert.ErrorIs(t, err, dbErr)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error - Repository Create Failure", func(t *testing.T) {
		mockRepo, pub, service := setupTest()
		mockRepo.On("NextCustomerID", ctx).Return(int64(7), nil).Once()
		mockRepo.On("Create", ctx, mock.Anything).Return(customer.ErrDuplicateCustomerID).Once()

		c, err := service.RegisterCustomer(ctx, input)

		assert.Nil(t, c)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		assert.Contains(t, err.Error(), "failed to save new customer")
		pub.AssertNotCalled(t, "PublishCustomerRegistered", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_GetCustomer(t *testing.T) {
	ctx := context.Background()
	customerID := int64(42)

	t.Run("Success", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		expected := &customer.Customer{CustomerID: customerID, FirstName: "Test"}
		mockRepo.On("FindByID", ctx, customerID).Return(expected, nil).Once()

		c, err := service.GetCustomer(ctx, customerID)

		assert.NoError(t, err)
		assert.Equal(t, expected, c)
	})

	t.Run("Error - Not Found", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		mockRepo.On("FindByID", ctx, customerID).Return(nil, customer.ErrNotFound).Once()

		c, err := service.GetCustomer(ctx, customerID)

		assert.Nil(t, c)
		assert.ErrorIs(t, err, customer.ErrNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Error - Repository Failure", func(t *testing.T) {
		mockRepo, _, service := setupTest()
		dbErr := errors.New("internal server error")
		mockRepo.On("FindByID", ctx, customerID).Return(nil, dbErr).Once()

		c, err := service.GetCustomer(ctx, customerID)

		assert.Nil(t, c)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to get customer 42")
	})
}
