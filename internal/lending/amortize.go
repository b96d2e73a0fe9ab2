// Package lending implements the loan lifecycle and its amortization math.
package lending

import (
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/apperr"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Schedule is an unrounded repayment plan. Round only for presentation.
type Schedule struct {
	MonthlyPayment decimal.Decimal
	TotalRepayment decimal.Decimal
	TotalInterest  decimal.Decimal
}

// Rounded returns the schedule rounded to cents.
func (s Schedule) Rounded() Schedule {
	return Schedule{
		MonthlyPayment: s.MonthlyPayment.Round(2),
		TotalRepayment: s.TotalRepayment.Round(2),
		TotalInterest:  s.TotalInterest.Round(2),
	}
}

// Amortize computes the equal monthly payment that retires principal at annualRate percent over
// termMonths, using the annuity formula P·i·(1+i)^n / ((1+i)^n − 1) with i = r/100/12.
func Amortize(principal, annualRate decimal.Decimal, termMonths int) (Schedule, error) {
	if !principal.IsPositive() {
		return Schedule{}, apperr.Newf(apperr.InvalidAmount, "principal must be positive, got %s", principal.String())
	}
	if termMonths <= 0 {
		return Schedule{}, apperr.Newf(apperr.InvalidArgument, "term must be at least one month, got %d", termMonths)
	}
	if annualRate.IsNegative() {
		return Schedule{}, apperr.Newf(apperr.InvalidArgument, "interest rate cannot be negative, got %s", annualRate.String())
	}

	n := decimal.NewFromInt(int64(termMonths))
	i := annualRate.Div(hundred).Div(twelve)

	var monthly decimal.Decimal
	if i.IsZero() {
		monthly = principal.Div(n)
	} else {
		growth := decimal.NewFromInt(1).Add(i).Pow(n)
		monthly = principal.Mul(i).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1)))
	}

	total := monthly.Mul(n)
	return Schedule{
		MonthlyPayment: monthly,
		TotalRepayment: total,
		TotalInterest:  total.Sub(principal),
	}, nil
}
