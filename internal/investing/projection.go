// Package investing implements investment projections and the investment lifecycle.
package investing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

type Projection struct {
	MaturityAmount decimal.Decimal
	MaturityDate   time.Time
	Profit         decimal.Decimal
	MonthlyProfit  decimal.Decimal
}

// Project applies simple interest: amount·(1 + r/100 · months/12), maturing months calendar
// months after start.
func Project(amount, expectedReturn decimal.Decimal, durationMonths int, start time.Time) (Projection, error) {
	if !amount.IsPositive() {
		return Projection{}, apperr.Newf(apperr.InvalidAmount, "amount must be positive, got %s", amount.String())
	}
	if durationMonths <= 0 {
		return Projection{}, apperr.Newf(apperr.InvalidArgument, "duration must be at least one month, got %d", durationMonths)
	}

	months := decimal.NewFromInt(int64(durationMonths))
	// Divide last so whole-percent rates stay exact.
	profit := amount.Mul(expectedReturn).Mul(months).Div(hundred.Mul(twelve))
	maturity := amount.Add(profit)

	return Projection{
		MaturityAmount: maturity,
		MaturityDate:   AddMonths(start, durationMonths),
		Profit:         profit,
		MonthlyProfit:  profit.Div(months),
	}, nil
}

// AddMonths adds calendar months, clamping to the last day of the target month
// (Jan 31 + 1 month is Feb 28 or 29).
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	hour, minute, sec := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// ExpectedReturn is the advertised annual return for a product type.
func ExpectedReturn(t investment.Type) decimal.Decimal {
	switch t {
	case investment.TypeSIP:
		return decimal.NewFromInt(12)
	case investment.TypeSWP:
		return decimal.NewFromInt(8)
	case investment.TypeLumpsum:
		return decimal.NewFromInt(10)
	default:
		return decimal.NewFromInt(10)
	}
}
