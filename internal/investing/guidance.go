package investing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/storage/investment"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var (
	mediumRatio = decimal.NewFromInt(50)
	highRatio   = decimal.NewFromInt(80)
)

type Guidance struct {
	Type           investment.Type
	Amount         decimal.Decimal
	DurationMonths int
	ExpectedReturn decimal.Decimal
	MaturityAmount decimal.Decimal
	Profit         decimal.Decimal
	MonthlyProfit  decimal.Decimal
	// Ratio is the amount as a percentage of the current balance.
	Ratio          decimal.Decimal
	Risk           RiskLevel
	Recommendation string
}

// Guide projects returns for a prospective investment and buckets amount/balance at 50% and 80%.
// A zero balance cannot fund anything and is always high risk.
func Guide(t investment.Type, amount decimal.Decimal, durationMonths int, balance decimal.Decimal) (Guidance, error) {
	rate := ExpectedReturn(t)
	projection, err := Project(amount, rate, durationMonths, time.Time{})
	if err != nil {
		return Guidance{}, err
	}

	var (
		ratio decimal.Decimal
		risk  RiskLevel
	)
	if balance.IsPositive() {
		ratio = amount.Mul(hundred).Div(balance)
		risk = ClassifyRatio(ratio)
	} else {
		risk = RiskHigh
	}

	return Guidance{
		Type:           t,
		Amount:         amount,
		DurationMonths: durationMonths,
		ExpectedReturn: rate,
		MaturityAmount: projection.MaturityAmount,
		Profit:         projection.Profit,
		MonthlyProfit:  projection.MonthlyProfit,
		Ratio:          ratio,
		Risk:           risk,
		Recommendation: recommendation(risk),
	}, nil
}

func ClassifyRatio(ratio decimal.Decimal) RiskLevel {
	switch {
	case ratio.GreaterThan(highRatio):
		return RiskHigh
	case ratio.GreaterThan(mediumRatio):
		return RiskMedium
	default:
		return RiskLow
	}
}

func recommendation(risk RiskLevel) string {
	switch risk {
	case RiskLow:
		return "Excellent investment opportunity within your financial capacity."
	case RiskMedium:
		return "Good investment but consider maintaining emergency funds."
	case RiskHigh:
		return "High investment ratio. Ensure you have sufficient liquid funds."
	default:
		return ""
	}
}
