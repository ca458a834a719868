package customer

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// ApprovedLimitMultiplier is how many months of salary a customer may borrow.
	ApprovedLimitMultiplier = 36
	// ApprovedLimitStep is the granularity the limit is rounded to (one lakh).
	ApprovedLimitStep = 100_000
)

type Customer struct {
	CustomerID    int64     `json:"customerId"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Age           *int      `json:"age,omitempty"`
	MonthlySalary int64     `json:"monthlySalary"`
	PhoneNumber   string    `json:"phoneNumber"`
	ApprovedLimit int64     `json:"approvedLimit"`
	CurrentDebt   float64   `json:"currentDebt"`
	CreateDate    time.Time `json:"createDate"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ApprovedLimit derives the borrowing limit from a monthly salary:
// 36 x salary rounded to the nearest 100,000, exact halves going to the even
// multiple.
func ApprovedLimit(monthlySalary int64) int64 {
	steps := decimal.NewFromInt(ApprovedLimitMultiplier * monthlySalary).
		Div(decimal.NewFromInt(ApprovedLimitStep)).
		RoundBank(0)
	return steps.Mul(decimal.NewFromInt(ApprovedLimitStep)).IntPart()
}

func NewCustomer(firstName, lastName string, age *int, monthlySalary int64, phoneNumber string) *Customer {
	now := time.Now()
	return &Customer{
		FirstName:     firstName,
		LastName:      lastName,
		Age:           age,
		MonthlySalary: monthlySalary,
		PhoneNumber:   phoneNumber,
		ApprovedLimit: ApprovedLimit(monthlySalary),
		CurrentDebt:   0,
		CreateDate:    now,
		UpdatedAt:     now,
	}
}

func (c *Customer) FullName() string {
	switch {
	case c.LastName == "":
		return c.FirstName
	case c.FirstName == "":
		return c.LastName
	}
	return c.FirstName + " " + c.LastName
}

// AddDebt records newly issued principal against the customer.
func (c *Customer) AddDebt(amount float64) {
	if amount == 0 {
		return
	}
	c.CurrentDebt += amount
	c.UpdatedAt = time.Now()
}
