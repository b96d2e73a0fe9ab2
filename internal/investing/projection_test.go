package investing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProject_SimpleInterest(t *testing.T) {
	start := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	p, err := Project(dec("10000"), dec("12"), 12, start)
	require.NoError(t, err)

	assert.Equal(t, "11200.00", p.MaturityAmount.StringFixed(2))
	assert.Equal(t, "1200.00", p.Profit.StringFixed(2))
	assert.Equal(t, "100.00", p.MonthlyProfit.StringFixed(2))
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), p.MaturityDate)
}

func TestProject_PartialYear(t *testing.T) {
	p, err := Project(dec("5000"), dec("8"), 6, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "5200.00", p.MaturityAmount.StringFixed(2))
}

func TestProject_InvalidInput(t *testing.T) {
	_, err := Project(dec("0"), dec("12"), 12, time.Now())
	assert.True(t, apperr.Is(err, apperr.InvalidAmount))

	_, err = Project(dec("100"), dec("12"), 0, time.Now())
	assert.True(t, apperr.Is(err, apperr.InvalidArgument))
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"leap february", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"plain february", time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"across year", time.Date(2023, 11, 30, 12, 30, 0, 0, time.UTC), 3, time.Date(2024, 2, 29, 12, 30, 0, 0, time.UTC)},
		{"same day", time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC), 12, time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.start, tt.months))
		})
	}
}

func TestGuide(t *testing.T) {
	tests := []struct {
		amount  string
		balance string
		risk    RiskLevel
	}{
		{"5000", "10000", RiskLow},
		{"6000", "10000", RiskMedium},
		{"8000", "10000", RiskMedium},
		{"9000", "10000", RiskHigh},
		{"100", "0", RiskHigh},
	}
	for _, tt := range tests {
		t.Run(tt.amount+"/"+tt.balance, func(t *testing.T) {
			g, err := Guide(investment.TypeSIP, dec(tt.amount), 12, dec(tt.balance))
			require.NoError(t, err)
			assert.Equal(t, tt.risk, g.Risk)
			assert.NotEmpty(t, g.Recommendation)
		})
	}
}

func TestGuide_ReturnsByType(t *testing.T) {
	g, err := Guide(investment.TypeSWP, dec("12000"), 12, dec("100000"))
	require.NoError(t, err)

	assert.Equal(t, "8", g.ExpectedReturn.String())
	assert.Equal(t, "12960.00", g.MaturityAmount.StringFixed(2))
	assert.Equal(t, "960.00", g.Profit.StringFixed(2))
	assert.Equal(t, "80.00", g.MonthlyProfit.StringFixed(2))
	assert.Equal(t, "12.00", g.Ratio.StringFixed(2))
	assert.Equal(t, "Excellent investment opportunity within your financial capacity.", g.Recommendation)
}
