package dto

import (
	"credit-engine/internal/domain/credit"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/finance"
	"credit-engine/internal/domain/loan"
)

func money(v float64) float64 {
	return finance.RoundMoney(v)
}

// LoanRequest is the body of both /check-eligibility and /create-loan.
type LoanRequest struct {
	CustomerID   int64    `json:"customer_id" validate:"required,gt=0" example:"1"`
	LoanAmount   float64  `json:"loan_amount" validate:"required,gt=0" example:"30000"`
	InterestRate *float64 `json:"interest_rate" validate:"required,gte=0" example:"15"`
	Tenure       int      `json:"tenure" validate:"required,gt=0" example:"12"`
}

func (r LoanRequest) ToRequest() credit.Request {
	var rate float64
	if r.InterestRate != nil {
		rate = *r.InterestRate
	}
	return credit.Request{
		CustomerID:   r.CustomerID,
		LoanAmount:   r.LoanAmount,
		InterestRate: rate,
		Tenure:       r.Tenure,
	}
}

type EligibilityResponse struct {
	CustomerID            int64   `json:"customer_id" example:"1"`
	Approval              bool    `json:"approval" example:"true"`
	InterestRate          float64 `json:"interest_rate" example:"10"`
	CorrectedInterestRate float64 `json:"corrected_interest_rate" example:"12"`
	Tenure                int     `json:"tenure" example:"12"`
	MonthlyInstallment    float64 `json:"monthly_installment" example:"2665.46"`
}

func NewEligibilityResponse(d *credit.Decision) EligibilityResponse {
	if d == nil {
		return EligibilityResponse{}
	}
	return EligibilityResponse{
		CustomerID:            d.CustomerID,
		Approval:              d.Approved,
		InterestRate:          d.InterestRate,
		CorrectedInterestRate: d.CorrectedInterestRate,
		Tenure:                d.Tenure,
		MonthlyInstallment:    d.RoundedInstallment(),
	}
}

type CreateLoanResponse struct {
	LoanID             *int64   `json:"loan_id" example:"2"`
	CustomerID         int64    `json:"customer_id" example:"1"`
	LoanApproved       bool     `json:"loan_approved" example:"true"`
	Message            string   `json:"message" example:"Loan approved and created successfully"`
	MonthlyInstallment *float64 `json:"monthly_installment" example:"2707.75"`
}

func NewCreateLoanResponse(customerID int64, res *credit.IssueResult) CreateLoanResponse {
	resp := CreateLoanResponse{CustomerID: customerID}
	if res == nil {
		return resp
	}
	resp.Message = res.Message
	if res.Approved() {
		id := res.Loan.ID
		installment := money(res.Loan.MonthlyRepayment)
		resp.LoanID = &id
		resp.LoanApproved = true
		resp.MonthlyInstallment = &installment
	}
	return resp
}

type LoanCustomerResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Age         *int   `json:"age"`
}

type ViewLoanResponse struct {
	LoanID             int64                `json:"loan_id"`
	Customer           LoanCustomerResponse `json:"customer"`
	LoanAmount         float64              `json:"loan_amount"`
	InterestRate       float64              `json:"interest_rate"`
	MonthlyInstallment float64              `json:"monthly_installment"`
	Tenure             int                  `json:"tenure"`
}

func NewViewLoanResponse(d *loan.Detail) ViewLoanResponse {
	if d == nil || d.Loan == nil {
		return ViewLoanResponse{}
	}
	return ViewLoanResponse{
		LoanID:             d.Loan.ID,
		Customer:           newLoanCustomerResponse(d.Customer),
		LoanAmount:         money(d.Loan.LoanAmount),
		InterestRate:       d.Loan.InterestRate,
		MonthlyInstallment: money(d.Loan.MonthlyRepayment),
		Tenure:             d.Loan.Tenure,
	}
}

func newLoanCustomerResponse(c *customer.Customer) LoanCustomerResponse {
	if c == nil {
		return LoanCustomerResponse{}
	}
	return LoanCustomerResponse{
		ID:          c.CustomerID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		PhoneNumber: c.PhoneNumber,
		Age:         c.Age,
	}
}

type LoanItemResponse struct {
	LoanID             int64   `json:"loan_id"`
	LoanAmount         float64 `json:"loan_amount"`
	InterestRate       float64 `json:"interest_rate"`
	MonthlyInstallment float64 `json:"monthly_installment"`
	RepaymentsLeft     int     `json:"repayments_left"`
}

func NewLoanItemResponses(loans []loan.Loan) []LoanItemResponse {
	items := make([]LoanItemResponse, len(loans))
	for i := range loans {
		l := &loans[i]
		items[i] = LoanItemResponse{
			LoanID:             l.ID,
			LoanAmount:         money(l.LoanAmount),
			InterestRate:       l.InterestRate,
			MonthlyInstallment: money(l.MonthlyRepayment),
			RepaymentsLeft:     l.RepaymentsLeft(),
		}
	}
	return items
}
