package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"credit-engine/internal/domain/customer"
)

// PhoneNumber accepts either a JSON string or a JSON number, since clients
// commonly send phone numbers as integers.
type PhoneNumber string

func (p *PhoneNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PhoneNumber(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("phone_number must be a string or a number")
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("phone_number must be a whole number")
	}
	*p = PhoneNumber(n.String())
	return nil
}

type RegisterCustomerRequest struct {
	FirstName     string      `json:"first_name" validate:"required" example:"Aaron"`
	LastName      string      `json:"last_name" validate:"required" example:"Garcia"`
	Age           *int        `json:"age,omitempty" validate:"omitempty,gte=0,lte=150" example:"42"`
	MonthlyIncome int64       `json:"monthly_income" validate:"required,gt=0" example:"60000"`
	PhoneNumber   PhoneNumber `json:"phone_number" validate:"required" swaggertype:"string" example:"9629317944"`
}

func (r RegisterCustomerRequest) ToInput() customer.RegisterInput {
	return customer.RegisterInput{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Age:           r.Age,
		MonthlyIncome: r.MonthlyIncome,
		PhoneNumber:   string(r.PhoneNumber),
	}
}

type RegisterCustomerResponse struct {
	CustomerID    int64  `json:"customer_id" example:"301"`
	Name          string `json:"name" example:"Aaron Garcia"`
	Age           *int   `json:"age" example:"42"`
	MonthlyIncome int64  `json:"monthly_income" example:"60000"`
	ApprovedLimit int64  `json:"approved_limit" example:"2200000"`
	PhoneNumber   string `json:"phone_number" example:"9629317944"`
}

func NewRegisterCustomerResponse(c *customer.Customer) RegisterCustomerResponse {
	if c == nil {
		return RegisterCustomerResponse{}
	}
	return RegisterCustomerResponse{
		CustomerID:    c.CustomerID,
		Name:          c.FullName(),
		Age:           c.Age,
		MonthlyIncome: c.MonthlySalary,
		ApprovedLimit: c.ApprovedLimit,
		PhoneNumber:   c.PhoneNumber,
	}
}

type CustomerResponse struct {
	CustomerID    int64     `json:"customer_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Age           *int      `json:"age"`
	MonthlySalary int64     `json:"monthly_salary"`
	PhoneNumber   string    `json:"phone_number"`
	ApprovedLimit int64     `json:"approved_limit"`
	CurrentDebt   float64   `json:"current_debt"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewCustomerResponse(c *customer.Customer) CustomerResponse {
	if c == nil {
		return CustomerResponse{}
	}
	return CustomerResponse{
		CustomerID:    c.CustomerID,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Age:           c.Age,
		MonthlySalary: c.MonthlySalary,
		PhoneNumber:   c.PhoneNumber,
		ApprovedLimit: c.ApprovedLimit,
		CurrentDebt:   money(c.CurrentDebt),
		CreatedAt:     c.CreateDate,
		UpdatedAt:     c.UpdatedAt,
	}
}
