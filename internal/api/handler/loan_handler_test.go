package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"credit-engine/internal/api/handler"
	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const loanBody = `{"customer_id":1,"loan_amount":30000,"interest_rate":15,"tenure":12}`

var loanReq = credit.Request{CustomerID: 1, LoanAmount: 30000, InterestRate: 15, Tenure: 12}

func newLoanHandler() (*handler.LoanHandler, *MockCreditService, *MockLoanService) {
	cs := new(MockCreditService)
	ls := new(MockLoanService)
	return handler.NewLoanHandler(cs, ls, discardLogger()), cs, ls
}

func TestCheckEligibility(t *testing.T) {
	t.Run("approved", func(t *testing.T) {
		h, cs, _ := newLoanHandler()
		cs.On("CheckEligibility", mock.Anything, loanReq).Return(&credit.Decision{
			CustomerID: 1, Approved: true, InterestRate: 15, CorrectedInterestRate: 15, Tenure: 12, MonthlyInstallment: 2707.7496,
		}, nil)

		rec := httptest.NewRecorder()
		h.CheckEligibility(rec, httptest.NewRequest(http.MethodPost, "/check-eligibility", strings.NewReader(loanBody)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"customer_id":1,"approval":true,"interest_rate":15,"corrected_interest_rate":15,"tenure":12,"monthly_installment":2707.75}`, rec.Body.String())
		cs.AssertExpectations(t)
	})

	t.Run("zero interest rate is allowed", func(t *testing.T) {
		h, cs, _ := newLoanHandler()
		req := loanReq
		req.InterestRate = 0
		cs.On("CheckEligibility", mock.Anything, req).Return(&credit.Decision{CustomerID: 1}, nil)

		rec := httptest.NewRecorder()
		h.CheckEligibility(rec, httptest.NewRequest(http.MethodPost, "/check-eligibility",
			strings.NewReader(`{"customer_id":1,"loan_amount":30000,"interest_rate":0,"tenure":12}`)))

		assert.Equal(t, http.StatusOK, rec.Code)
		cs.AssertExpectations(t)
	})

	t.Run("missing interest rate", func(t *testing.T) {
		h, cs, _ := newLoanHandler()

		rec := httptest.NewRecorder()
		h.CheckEligibility(rec, httptest.NewRequest(http.MethodPost, "/check-eligibility",
			strings.NewReader(`{"customer_id":1,"loan_amount":30000,"tenure":12}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		if assert.Len(t, resp.Error.Details, 1) {
			assert.Equal(t, "interest_rate", resp.Error.Details[0].Field)
		}
		cs.AssertNotCalled(t, "CheckEligibility", mock.Anything, mock.Anything)
	})

	t.Run("malformed json", func(t *testing.T) {
		h, _, _ := newLoanHandler()

		rec := httptest.NewRecorder()
		h.CheckEligibility(rec, httptest.NewRequest(http.MethodPost, "/check-eligibility", strings.NewReader(`{"customer_id":`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown customer", func(t *testing.T) {
		h, cs, _ := newLoanHandler()
		cs.On("CheckEligibility", mock.Anything, loanReq).Return(nil, customer.ErrNotFound)

		rec := httptest.NewRecorder()
		h.CheckEligibility(rec, httptest.NewRequest(http.MethodPost, "/check-eligibility", strings.NewReader(loanBody)))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":{"message":"Customer not found"}}`, rec.Body.String())
	})
}

func TestCreateLoan(t *testing.T) {
	t.Run("approved returns 201", func(t *testing.T) {
		h, cs, _ := newLoanHandler()
		cs.On("IssueLoan", mock.Anything, loanReq).Return(&credit.IssueResult{
			Decision: credit.Decision{CustomerID: 1, Approved: true},
			Loan:     &loan.Loan{ID: 2, CustomerID: 1, MonthlyRepayment: 2707.75},
			Message:  credit.MessageLoanCreated,
		}, nil)

		rec := httptest.NewRecorder()
		h.CreateLoan(rec, httptest.NewRequest(http.MethodPost, "/create-loan", strings.NewReader(loanBody)))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"loan_id":2,"customer_id":1,"loan_approved":true,"message":"Loan approved and created successfully","monthly_installment":2707.75}`, rec.Body.String())
	})

	t.Run("rejected returns 200 with nulls", func(t *testing.T) {
		h, cs, _ := newLoanHandler()
		msg := credit.MessageLoanRejected + ": Credit score is too low"
		cs.On("IssueLoan", mock.Anything, loanReq).Return(&credit.IssueResult{
			Decision: credit.Decision{CustomerID: 1, Outcome: credit.OutcomeRejectedScore},
			Message:  msg,
		}, nil)

		rec := httptest.NewRecorder()
		h.CreateLoan(rec, httptest.NewRequest(http.MethodPost, "/create-loan", strings.NewReader(loanBody)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"loan_id":null,"customer_id":1,"loan_approved":false,"message":"`+msg+`","monthly_installment":null}`, rec.Body.String())
	})

	t.Run("unknown customer", func(t *testing.T) {
		h, cs, _ := newLoanHandler()
		cs.On("IssueLoan", mock.Anything, loanReq).Return(nil, customer.ErrNotFound)

		rec := httptest.NewRecorder()
		h.CreateLoan(rec, httptest.NewRequest(http.MethodPost, "/create-loan", strings.NewReader(loanBody)))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		h, cs, _ := newLoanHandler()
		cs.On("IssueLoan", mock.Anything, loanReq).Return(nil, errors.New("failed to issue loan: tx aborted"))

		rec := httptest.NewRecorder()
		h.CreateLoan(rec, httptest.NewRequest(http.MethodPost, "/create-loan", strings.NewReader(loanBody)))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("database failure reports DB_ERROR", func(t *testing.T) {
		h, cs, _ := newLoanHandler()
		dbErr := apperrors.WrapDatabaseError(errors.New("connection reset"), "failed to commit transaction")
		cs.On("IssueLoan", mock.Anything, loanReq).Return(nil, fmt.Errorf("failed to issue loan: %w", dbErr))

		rec := httptest.NewRecorder()
		h.CreateLoan(rec, httptest.NewRequest(http.MethodPost, "/create-loan", strings.NewReader(loanBody)))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, "DB_ERROR", resp.Error.Code)
		assert.Equal(t, "An unexpected error occurred.", resp.Error.Message)
	})

	t.Run("serialization conflict returns 409", func(t *testing.T) {
		h, cs, _ := newLoanHandler()
		cs.On("IssueLoan", mock.Anything, loanReq).
			Return(nil, fmt.Errorf("failed to issue loan: %w: failed to commit transaction (code 40001)", apperrors.ErrConflict))

		rec := httptest.NewRecorder()
		h.CreateLoan(rec, httptest.NewRequest(http.MethodPost, "/create-loan", strings.NewReader(loanBody)))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("negative tenure", func(t *testing.T) {
		h, cs, _ := newLoanHandler()

		rec := httptest.NewRecorder()
		h.CreateLoan(rec, httptest.NewRequest(http.MethodPost, "/create-loan",
			strings.NewReader(`{"customer_id":1,"loan_amount":30000,"interest_rate":15,"tenure":-3}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		cs.AssertNotCalled(t, "IssueLoan", mock.Anything, mock.Anything)
	})
}

func TestViewLoan(t *testing.T) {
	h, _, ls := newLoanHandler()
	age := 30

	t.Run("success", func(t *testing.T) {
		ls.On("GetLoan", mock.Anything, int64(9)).Return(&loan.Detail{
			Loan:     &loan.Loan{ID: 9, CustomerID: 3, LoanAmount: 50000, InterestRate: 10, MonthlyRepayment: 4395.79, Tenure: 12},
			Customer: &customer.Customer{CustomerID: 3, FirstName: "A", LastName: "B", PhoneNumber: "1", Age: &age},
		}, nil).Once()

		rec := httptest.NewRecorder()
		h.ViewLoan(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/view-loan/9", nil), "loanID", "9"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"loan_id":9,"customer":{"id":3,"first_name":"A","last_name":"B","phone_number":"1","age":30},"loan_amount":50000,"interest_rate":10,"monthly_installment":4395.79,"tenure":12}`, rec.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		ls.On("GetLoan", mock.Anything, int64(10)).Return(nil, loan.ErrNotFound).Once()

		rec := httptest.NewRecorder()
		h.ViewLoan(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/view-loan/10", nil), "loanID", "10"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":{"message":"Loan not found"}}`, rec.Body.String())
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ViewLoan(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/view-loan/0", nil), "loanID", "0"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestViewLoans(t *testing.T) {
	h, _, ls := newLoanHandler()

	t.Run("success", func(t *testing.T) {
		ls.On("ListCustomerLoans", mock.Anything, int64(3)).Return([]loan.Loan{
			{ID: 1, LoanAmount: 1000, InterestRate: 8, MonthlyRepayment: 87, Tenure: 12, EMIsPaidOnTime: 5},
		}, nil).Once()

		rec := httptest.NewRecorder()
		h.ViewLoans(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/view-loans/3", nil), "customerID", "3"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[{"loan_id":1,"loan_amount":1000,"interest_rate":8,"monthly_installment":87,"repayments_left":7}]`, rec.Body.String())
	})

	t.Run("no loans is an empty array", func(t *testing.T) {
		ls.On("ListCustomerLoans", mock.Anything, int64(4)).Return([]loan.Loan{}, nil).Once()

		rec := httptest.NewRecorder()
		h.ViewLoans(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/view-loans/4", nil), "customerID", "4"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("unknown customer", func(t *testing.T) {
		ls.On("ListCustomerLoans", mock.Anything, int64(5)).Return(nil, customer.ErrNotFound).Once()

		rec := httptest.NewRecorder()
		h.ViewLoans(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/view-loans/5", nil), "customerID", "5"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":{"message":"Customer not found"}}`, rec.Body.String())
	})
}
