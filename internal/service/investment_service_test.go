package service

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/investing"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
)

var defaultRate omit.Val[decimal.Decimal]

func TestInvestment_CreateAndCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.db.SeedAccount("owner", auth.RoleUser, dec("20000"))

	inv, err := env.svc.Investment.Create(ctx, env.identity(owner), investment.TypeSIP, dec("10000"), investment.FrequencyMonthly, 12, defaultRate)
	require.NoError(t, err)
	assert.Equal(t, "11200.00", inv.MaturityAmount.StringFixed(2))
	assert.Equal(t, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), inv.MaturityDate.UTC())
	assert.True(t, dec("10000").Equal(env.balance(t, owner)))

	cancelled, err := env.svc.Investment.Cancel(ctx, env.identity(owner), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, investment.StatusCancelled, cancelled.Status)
	assert.True(t, dec("19500").Equal(env.balance(t, owner)))
}

func TestInvestment_CreateInvalid(t *testing.T) {
	env := newTestEnv(t)
	owner := env.db.SeedAccount("owner", auth.RoleUser, dec("100"))

	_, err := env.svc.Investment.Create(context.Background(), env.identity(owner), investment.TypeSIP, dec("101"), investment.FrequencyMonthly, 12, defaultRate)
	assert.True(t, apperr.Is(err, apperr.InsufficientFunds))

	_, err = env.svc.Investment.Create(context.Background(), env.identity(owner), investment.TypeSIP, dec("10"), investment.Frequency("yearly"), 12, defaultRate)
	assert.True(t, apperr.Is(err, apperr.InvalidArgument))
}

func TestInvestment_CreateWithExpectedReturn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.db.SeedAccount("owner", auth.RoleUser, dec("20000"))

	inv, err := env.svc.Investment.Create(ctx, env.identity(owner), investment.TypeLumpsum, dec("10000"), investment.FrequencyMonthly, 12, omit.From(dec("12")))
	require.NoError(t, err)
	assert.True(t, dec("12").Equal(inv.ExpectedReturn))
	assert.Equal(t, "11200.00", inv.MaturityAmount.StringFixed(2))

	_, err = env.svc.Investment.Create(ctx, env.identity(owner), investment.TypeLumpsum, dec("10"), investment.FrequencyMonthly, 12, omit.From(dec("-1")))
	assert.True(t, apperr.Is(err, apperr.InvalidArgument))
	assert.True(t, dec("10000").Equal(env.balance(t, owner)))
}

func TestInvestment_MatureDue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.db.SeedAccount("owner", auth.RoleUser, dec("3000"))
	admin := env.identity(env.db.SeedAccount("admin", auth.RoleAdmin, dec("0")))

	short, err := env.svc.Investment.Create(ctx, env.identity(owner), investment.TypeLumpsum, dec("1200"), investment.FrequencyMonthly, 1, defaultRate)
	require.NoError(t, err)
	long, err := env.svc.Investment.Create(ctx, env.identity(owner), investment.TypeLumpsum, dec("1200"), investment.FrequencyMonthly, 12, defaultRate)
	require.NoError(t, err)

	_, err = env.svc.Investment.MatureDue(ctx, env.identity(owner))
	assert.True(t, apperr.Is(err, apperr.Unauthorized))

	matured, err := env.svc.Investment.MatureDue(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, matured)

	env.now = investing.AddMonths(env.now, 1)
	matured, err = env.svc.Investment.MatureDue(ctx, admin)
	require.NoError(t, err)
	require.Len(t, matured, 1)
	assert.Equal(t, short.ID, matured[0].ID)
	assert.Equal(t, investment.StatusMatured, matured[0].Status)
	// 600 left plus 1200·(1 + 0.10/12)
	assert.True(t, dec("1810").Equal(env.balance(t, owner)), "balance %s", env.balance(t, owner))

	still, err := env.svc.Investment.GetInvestment(ctx, env.identity(owner), long.ID)
	require.NoError(t, err)
	assert.Equal(t, investment.StatusActive, still.Status)

	matured, err = env.svc.Investment.MatureDue(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, matured)
}

func TestInvestment_GuidanceAndScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.db.SeedAccount("owner", auth.RoleUser, dec("10000"))
	other := env.db.SeedAccount("other", auth.RoleUser, dec("0"))

	g, err := env.svc.Investment.Guidance(ctx, env.identity(owner), investment.TypeSWP, dec("9000"), 6)
	require.NoError(t, err)
	assert.Equal(t, investing.RiskHigh, g.Risk)
	assert.Equal(t, "9360.00", g.MaturityAmount.StringFixed(2))

	inv, err := env.svc.Investment.Create(ctx, env.identity(owner), investment.TypeSWP, dec("1000"), investment.FrequencyWeekly, 6, defaultRate)
	require.NoError(t, err)

	_, err = env.svc.Investment.GetInvestment(ctx, env.identity(other), inv.ID)
	assert.True(t, apperr.Is(err, apperr.InvestmentNotFound))

	_, err = env.svc.Investment.Cancel(ctx, env.identity(other), inv.ID)
	assert.True(t, apperr.Is(err, apperr.InvestmentNotFound))

	mine, _, err := env.svc.Investment.ListInvestments(ctx, env.identity(other), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, mine)

	owned, _, err := env.svc.Investment.ListInvestments(ctx, env.identity(owner), []investment.Status{investment.StatusActive}, nil)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}
