// Package finance holds the loan arithmetic shared by eligibility, issuance and ingestion.
package finance

import (
	"math"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyInstallment returns the fixed monthly payment of an amortizing loan.
//
//	r = annualRatePercent / 100 / 12
//	installment = P * r * (1+r)^n / ((1+r)^n - 1)
//
// A zero rate splits the principal evenly; a non-positive tenure yields 0.
// The result is unrounded; use RoundMoney when reporting it.
func MonthlyInstallment(principal, annualRatePercent float64, tenureMonths int) float64 {
	r := MonthlyRate(annualRatePercent)
	n := float64(tenureMonths)

	if r > 0 {
		if tenureMonths <= 0 {
			return 0
		}
		factor := math.Pow(1+r, n)
		return principal * r * factor / (factor - 1)
	}
	if tenureMonths > 0 {
		return principal / n
	}
	return 0
}

// MonthlyRate converts a nominal annual percentage into a monthly decimal rate.
func MonthlyRate(annualRatePercent float64) float64 {
	return (annualRatePercent / 100) / 12
}

// PrincipalFromInstallment inverts MonthlyInstallment for a known payment.
func PrincipalFromInstallment(installment, annualRatePercent float64, tenureMonths int) float64 {
	if tenureMonths <= 0 {
		return 0
	}
	r := MonthlyRate(annualRatePercent)
	n := float64(tenureMonths)
	if r > 0 {
		return installment * (1 - math.Pow(1+r, -n)) / r
	}
	return installment * n
}

// TotalRepayment is the sum of every installment over the tenure.
func TotalRepayment(installment float64, tenureMonths int) float64 {
	if tenureMonths <= 0 {
		return 0
	}
	return installment * float64(tenureMonths)
}

// RoundMoney rounds to two decimal places. The rounding is decided on the
// exact binary value of amount and exact ties go to the even cent, so 0.125
// becomes 0.12 and 2.675 (stored just below the tie) becomes 2.67.
func RoundMoney(amount float64) float64 {
	return exactDecimal(amount).RoundBank(2).InexactFloat64()
}

// exactDecimal converts f without the shortest-representation step of
// decimal.NewFromFloat: mant x 2^exp becomes (mant x 5^-exp) x 10^exp.
func exactDecimal(f float64) decimal.Decimal {
	frac, exp := math.Frexp(f)
	mant := big.NewInt(int64(frac * (1 << 53)))
	exp -= 53
	if exp >= 0 {
		return decimal.NewFromBigInt(mant.Lsh(mant, uint(exp)), 0)
	}
	five := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(-exp)), nil)
	return decimal.NewFromBigInt(mant.Mul(mant, five), int32(exp))
}

// AddMonths moves t forward by n calendar months, clamping to the last day of
// the target month instead of overflowing into the next one.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// Date returns the calendar day of t, as seen in t's location, at UTC
// midnight. Loan dates are stored as plain dates, so comparisons happen in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
