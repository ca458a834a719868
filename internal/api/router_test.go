package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"credit-engine/internal/config"
	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCustomers struct{}

func (stubCustomers) RegisterCustomer(_ context.Context, in customer.RegisterInput) (*customer.Customer, error) {
	c := customer.NewCustomer(in.FirstName, in.LastName, in.Age, in.MonthlyIncome, in.PhoneNumber)
	c.CustomerID = 1
	return c, nil
}

func (stubCustomers) GetCustomer(_ context.Context, id int64) (*customer.Customer, error) {
	if id != 1 {
		return nil, customer.ErrNotFound
	}
	return &customer.Customer{CustomerID: 1, FirstName: "A", LastName: "B"}, nil
}

type stubCredit struct {
	issued int
}

func (s *stubCredit) CheckEligibility(_ context.Context, req credit.Request) (*credit.Decision, error) {
	return &credit.Decision{CustomerID: req.CustomerID, Approved: true, InterestRate: req.InterestRate, CorrectedInterestRate: req.InterestRate, Tenure: req.Tenure}, nil
}

func (s *stubCredit) IssueLoan(_ context.Context, req credit.Request) (*credit.IssueResult, error) {
	s.issued++
	return &credit.IssueResult{
		Decision: credit.Decision{CustomerID: req.CustomerID, Approved: true},
		Loan:     &loan.Loan{ID: int64(s.issued), CustomerID: req.CustomerID, MonthlyRepayment: 100},
		Message:  credit.MessageLoanCreated,
	}, nil
}

type stubLoans struct{}

func (stubLoans) GetLoan(_ context.Context, id int64) (*loan.Detail, error) {
	return nil, loan.ErrNotFound
}

func (stubLoans) ListCustomerLoans(_ context.Context, id int64) ([]loan.Loan, error) {
	return []loan.Loan{}, nil
}

func newTestRouter(t *testing.T, cfg *config.Config, rdb redis.Cmdable) (http.Handler, *stubCredit) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	cr := &stubCredit{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return SetupRouter(ctx, Services{Customers: stubCustomers{}, Credit: cr, Loans: stubLoans{}}, rdb, cfg, logger), cr
}

func serve(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSetupRouter_Routes(t *testing.T) {
	r, _ := newTestRouter(t, &config.Config{}, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"register", http.MethodPost, "/register", `{"first_name":"A","last_name":"B","monthly_income":60000,"phone_number":"1"}`, http.StatusCreated},
		{"get customer", http.MethodGet, "/customers/1", "", http.StatusOK},
		{"unknown customer", http.MethodGet, "/customers/2", "", http.StatusNotFound},
		{"check eligibility", http.MethodPost, "/check-eligibility", `{"customer_id":1,"loan_amount":1000,"interest_rate":10,"tenure":6}`, http.StatusOK},
		{"create loan", http.MethodPost, "/create-loan", `{"customer_id":1,"loan_amount":1000,"interest_rate":10,"tenure":6}`, http.StatusCreated},
		{"view loan", http.MethodGet, "/view-loan/1", "", http.StatusNotFound},
		{"view loans", http.MethodGet, "/view-loans/1", "", http.StatusOK},
		{"token", http.MethodPost, "/auth/token", `{"username":"ops"}`, http.StatusOK},
		{"swagger redirect", http.MethodGet, "/swagger", "", http.StatusMovedPermanently},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestSetupRouter_RegisterComputesLimit(t *testing.T) {
	r, _ := newTestRouter(t, &config.Config{}, nil)

	rec := serve(r, http.MethodPost, "/register", `{"first_name":"A","last_name":"B","monthly_income":60000,"phone_number":"1"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(2200000), resp["approved_limit"])
}

func TestSetupRouter_AuthEnforced(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Auth: config.AuthConfig{Enabled: true, JWTSecret: "s3cret"}}}
	r, _ := newTestRouter(t, cfg, nil)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/customers/1", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "", nil).Code)

	tokenRec := serve(r, http.MethodPost, "/auth/token", `{"username":"ops"}`, nil)
	require.Equal(t, http.StatusOK, tokenRec.Code)
	var token struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(tokenRec.Body.Bytes(), &token))

	rec := serve(r, http.MethodGet, "/customers/1", "", map[string]string{"Authorization": token.Token})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetupRouter_CreateLoanIdempotency(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	r, cr := newTestRouter(t, &config.Config{}, rdb)

	body := `{"customer_id":1,"loan_amount":1000,"interest_rate":10,"tenure":6}`
	headers := map[string]string{"Idempotency-Key": "order-42"}
	first := serve(r, http.MethodPost, "/create-loan", body, headers)
	second := serve(r, http.MethodPost, "/create-loan", body, headers)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, cr.issued)

	serve(r, http.MethodPost, "/create-loan", body, nil)
	assert.Equal(t, 2, cr.issued)
}
