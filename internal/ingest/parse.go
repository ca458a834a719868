package ingest

import (
	"fmt"
	"strings"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/finance"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/infrastructure/spreadsheet"
)

func parseCustomer(row spreadsheet.Row) (*customer.Customer, error) {
	id, err := row.Int("Customer ID")
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, fmt.Errorf("customer id %d is not positive", id)
	}
	salary, err := row.Int("Monthly Salary")
	if err != nil {
		return nil, err
	}
	age, err := row.OptionalInt("Age")
	if err != nil {
		return nil, err
	}

	limit := customer.ApprovedLimit(salary)
	if row.String("Approved Limit") != "" {
		if limit, err = row.Int("Approved Limit"); err != nil {
			return nil, err
		}
	}

	var debt float64
	if row.String("Current Debt") != "" {
		if debt, err = row.Float("Current Debt"); err != nil {
			return nil, err
		}
	}

	first := strings.TrimSpace(row.String("First Name"))
	if first == "" {
		return nil, fmt.Errorf("first name is empty")
	}

	return &customer.Customer{
		CustomerID:    id,
		FirstName:     first,
		LastName:      strings.TrimSpace(row.String("Last Name")),
		Age:           age,
		MonthlySalary: salary,
		PhoneNumber:   strings.TrimSpace(row.String("Phone Number")),
		ApprovedLimit: limit,
		CurrentDebt:   debt,
	}, nil
}

func parseLoan(row spreadsheet.Row) (*loan.Loan, error) {
	customerID, err := row.Int("Customer ID")
	if err != nil {
		return nil, err
	}
	loanID, err := row.Int("Loan ID")
	if err != nil {
		return nil, err
	}
	if loanID <= 0 {
		return nil, fmt.Errorf("loan id %d is not positive", loanID)
	}
	amount, err := row.Float("Loan Amount")
	if err != nil {
		return nil, err
	}
	tenure, err := row.Int("Tenure")
	if err != nil {
		return nil, err
	}
	if amount <= 0 || tenure <= 0 {
		return nil, fmt.Errorf("loan amount and tenure must be positive")
	}
	rate, err := row.Float("Interest Rate")
	if err != nil {
		return nil, err
	}
	paid, err := row.Int("EMIs paid on Time")
	if err != nil {
		return nil, err
	}
	start, err := row.Date("Date of Approval")
	if err != nil {
		return nil, err
	}
	end, err := row.Date("End Date")
	if err != nil {
		return nil, err
	}

	monthly := finance.RoundMoney(finance.MonthlyInstallment(amount, rate, int(tenure)))
	if row.String("Monthly payment") != "" {
		if monthly, err = row.Float("Monthly payment"); err != nil {
			return nil, err
		}
	}

	return &loan.Loan{
		ID:               loanID,
		CustomerID:       customerID,
		LoanAmount:       amount,
		Tenure:           int(tenure),
		InterestRate:     rate,
		MonthlyRepayment: monthly,
		EMIsPaidOnTime:   int(paid),
		StartDate:        start,
		EndDate:          end,
	}, nil
}
