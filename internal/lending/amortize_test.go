package lending

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/apperr"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAmortize_AnnuityFormula(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
		monthly   string
		total     string
	}{
		{"one year at ten percent", "120000", "10", 12, "10549.91", "126598.88"},
		{"six months at ten percent", "50000", "10", 6, "8578.07", "51468.42"},
		{"zero rate divides evenly", "1200", "0", 12, "100.00", "1200.00"},
		{"single month", "1000", "12", 1, "1010.00", "1010.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := Amortize(dec(tt.principal), dec(tt.rate), tt.term)
			require.NoError(t, err)

			rounded := schedule.Rounded()
			assert.Equal(t, tt.monthly, rounded.MonthlyPayment.StringFixed(2))
			assert.Equal(t, tt.total, rounded.TotalRepayment.StringFixed(2))
		})
	}
}

func TestAmortize_NoIntermediateRounding(t *testing.T) {
	schedule, err := Amortize(dec("120000"), dec("10"), 12)
	require.NoError(t, err)

	// total is derived from the unrounded monthly payment
	assert.True(t, schedule.TotalRepayment.Equal(schedule.MonthlyPayment.Mul(decimal.NewFromInt(12))))
	assert.False(t, schedule.MonthlyPayment.Equal(schedule.MonthlyPayment.Round(2)))
	assert.Equal(t, "6598.88", schedule.Rounded().TotalInterest.StringFixed(2))
}

func TestAmortize_Invalid(t *testing.T) {
	_, err := Amortize(decimal.Zero, dec("10"), 12)
	assert.Equal(t, apperr.InvalidAmount, apperr.KindOf(err))

	_, err = Amortize(dec("-1"), dec("10"), 12)
	assert.Equal(t, apperr.InvalidAmount, apperr.KindOf(err))

	_, err = Amortize(dec("100"), dec("10"), 0)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))

	_, err = Amortize(dec("100"), dec("-1"), 12)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestGuide_RiskBuckets(t *testing.T) {
	balance := dec("10000") // recommended maximum 50,000 at k=5

	tests := []struct {
		principal string
		risk      RiskLevel
	}{
		{"20000", RiskLow},
		{"35000", RiskLow},
		{"35000.01", RiskMedium},
		{"50000", RiskMedium},
		{"50000.01", RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.principal, func(t *testing.T) {
			g, err := Guide(dec(tt.principal), dec("10"), 12, balance, dec("5"))
			require.NoError(t, err)
			assert.Equal(t, tt.risk, g.Risk)
			assert.True(t, dec("50000").Equal(g.RecommendedMaximum))
			assert.NotEmpty(t, g.Recommendation)
		})
	}
}

func TestGuide_ZeroBalanceIsHighRisk(t *testing.T) {
	g, err := Guide(dec("1"), dec("10"), 12, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, RiskHigh, g.Risk)
	assert.True(t, g.RecommendedMaximum.IsZero())
}
