package lending

import (
	"github.com/shopspring/decimal"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var mediumShare = decimal.RequireFromString("0.7")

// DefaultSafetyMultiplier caps a recommended loan at this many times the current balance.
var DefaultSafetyMultiplier = decimal.NewFromInt(5)

type Guidance struct {
	Principal          decimal.Decimal
	InterestRate       decimal.Decimal
	TermMonths         int
	Schedule           Schedule
	RecommendedMaximum decimal.Decimal
	Risk               RiskLevel
	Recommendation     string
}

// Guide projects the schedule for a prospective loan and classifies it against k·balance.
// It reads nothing and writes nothing.
func Guide(principal, annualRate decimal.Decimal, termMonths int, balance, k decimal.Decimal) (Guidance, error) {
	schedule, err := Amortize(principal, annualRate, termMonths)
	if err != nil {
		return Guidance{}, err
	}
	if !k.IsPositive() {
		k = DefaultSafetyMultiplier
	}

	maximum := balance.Mul(k)
	risk := ClassifyLoan(principal, maximum)

	return Guidance{
		Principal:          principal,
		InterestRate:       annualRate,
		TermMonths:         termMonths,
		Schedule:           schedule,
		RecommendedMaximum: maximum,
		Risk:               risk,
		Recommendation:     loanRecommendation(risk),
	}, nil
}

func ClassifyLoan(amount, maximum decimal.Decimal) RiskLevel {
	switch {
	case amount.GreaterThan(maximum):
		return RiskHigh
	case amount.GreaterThan(maximum.Mul(mediumShare)):
		return RiskMedium
	default:
		return RiskLow
	}
}

func loanRecommendation(risk RiskLevel) string {
	switch risk {
	case RiskLow:
		return "This loan is within safe limits for your financial profile."
	case RiskMedium:
		return "Consider reducing the loan amount or extending the term."
	case RiskHigh:
		return "This loan exceeds recommended limits. High risk of default."
	default:
		return ""
	}
}
