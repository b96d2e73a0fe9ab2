package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
)

type testEnv struct {
	svc   *Service
	store *storage.Storage
	db    *memory.DB
	now   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, db := memory.NewStorage(time.Second)
	op := operator.NewOperatorDelegator(store, nil, 2, 10)
	op.Start()
	t.Cleanup(op.Stop)

	env := &testEnv{store: store, db: db, now: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)}
	opts := DefaultOptions()
	opts.Now = func() time.Time { return env.now }
	env.svc = NewService(store, op, nil, opts)
	return env
}

func (e *testEnv) identity(acc account.Account) auth.Identity {
	return auth.Identity{AccountID: acc.ID, Role: acc.Role}
}

func (e *testEnv) balance(t *testing.T, acc account.Account) decimal.Decimal {
	t.Helper()
	got, err := e.store.GetAccount(context.Background(), acc.ID)
	require.NoError(t, err)
	return got.Balance
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
