package service

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
)

func TestTransfer_Success(t *testing.T) {
	env := newTestEnv(t)
	alice := env.db.SeedAccount("alice", auth.RoleUser, dec("100"))
	bob := env.db.SeedAccount("bob", auth.RoleUser, dec("0"))

	e, err := env.svc.Transfer.Transfer(context.Background(), env.identity(alice), bob.ID, dec("40.25"), "dinner")
	require.NoError(t, err)

	assert.Equal(t, entry.StatusCompleted, e.Status)
	assert.Equal(t, "dinner", e.Reason)
	assert.True(t, dec("59.75").Equal(env.balance(t, alice)))
	assert.True(t, dec("40.25").Equal(env.balance(t, bob)))
}

func TestTransfer_InsufficientFundsRecordsFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.db.SeedAccount("alice", auth.RoleUser, dec("10"))
	bob := env.db.SeedAccount("bob", auth.RoleUser, dec("0"))

	_, err := env.svc.Transfer.Transfer(ctx, env.identity(alice), bob.ID, dec("10.01"), "")
	assert.True(t, apperr.Is(err, apperr.InsufficientFunds))
	assert.True(t, dec("10").Equal(env.balance(t, alice)))

	entries, _, err := env.svc.Transfer.ListEntries(ctx, env.identity(alice), EntryQuery{}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.StatusFailed, entries[0].Status)
	assert.True(t, dec("10.01").Equal(entries[0].Amount))
}

func TestTransfer_Rejections(t *testing.T) {
	env := newTestEnv(t)
	alice := env.db.SeedAccount("alice", auth.RoleUser, dec("10"))

	_, err := env.svc.Transfer.Transfer(context.Background(), env.identity(alice), alice.ID, dec("1"), "")
	assert.True(t, apperr.Is(err, apperr.InvalidArgument))

	_, err = env.svc.Transfer.Transfer(context.Background(), env.identity(alice), uuid.Must(uuid.NewV4()), dec("-1"), "")
	assert.True(t, apperr.Is(err, apperr.InvalidAmount))

	_, err = env.svc.Transfer.Transfer(context.Background(), env.identity(alice), uuid.Must(uuid.NewV4()), dec("1"), "")
	assert.True(t, apperr.Is(err, apperr.AccountNotFound))
}

func TestListEntries_Scoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.db.SeedAccount("alice", auth.RoleUser, dec("100"))
	bob := env.db.SeedAccount("bob", auth.RoleUser, dec("100"))
	carol := env.db.SeedAccount("carol", auth.RoleUser, dec("100"))
	admin := env.db.SeedAccount("admin", auth.RoleAdmin, dec("0"))

	_, err := env.svc.Transfer.Transfer(ctx, env.identity(alice), bob.ID, dec("1"), "")
	require.NoError(t, err)
	_, err = env.svc.Transfer.Transfer(ctx, env.identity(bob), carol.ID, dec("2"), "")
	require.NoError(t, err)

	own, _, err := env.svc.Transfer.ListEntries(ctx, env.identity(alice), EntryQuery{}, nil)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	_, _, err = env.svc.Transfer.ListEntries(ctx, env.identity(alice), EntryQuery{AccountID: &carol.ID}, nil)
	assert.True(t, apperr.Is(err, apperr.Unauthorized))

	all, _, err := env.svc.Transfer.ListEntries(ctx, env.identity(admin), EntryQuery{}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.True(t, dec("2").Equal(all[0].Amount), "newest first")

	carols, _, err := env.svc.Transfer.ListEntries(ctx, env.identity(admin), EntryQuery{AccountID: &carol.ID}, nil)
	require.NoError(t, err)
	assert.Len(t, carols, 1)
}

func TestListEntries_Pagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.db.SeedAccount("alice", auth.RoleUser, dec("100"))
	bob := env.db.SeedAccount("bob", auth.RoleUser, dec("0"))

	for range 5 {
		_, err := env.svc.Transfer.Transfer(ctx, env.identity(alice), bob.ID, dec("1"), "")
		require.NoError(t, err)
	}

	var (
		seen   []uuid.UUID
		cursor = &Cursor{Limit: 2}
		pages  int
	)
	for cursor != nil {
		var entries []*entry.Entry
		var err error
		entries, cursor, err = env.svc.Transfer.ListEntries(ctx, env.identity(alice), EntryQuery{Order: entry.OrderOldestFirst}, cursor)
		require.NoError(t, err)
		for _, e := range entries {
			seen = append(seen, e.ID)
		}
		pages++
	}

	assert.Len(t, seen, 5)
	assert.Equal(t, 3, pages)
}

func TestListEntries_CursorPinsHorizon(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.db.SeedAccount("alice", auth.RoleUser, dec("100"))
	bob := env.db.SeedAccount("bob", auth.RoleUser, dec("0"))

	for range 3 {
		_, err := env.svc.Transfer.Transfer(ctx, env.identity(alice), bob.ID, dec("1"), "")
		require.NoError(t, err)
	}

	first, next, err := env.svc.Transfer.ListEntries(ctx, env.identity(alice), EntryQuery{Order: entry.OrderOldestFirst}, &Cursor{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, next)
	require.NotNil(t, next.Until)
	assert.True(t, first[1].CreatedAt.Before(*next.Until))

	_, err = env.svc.Transfer.Transfer(ctx, env.identity(alice), bob.ID, dec("1"), "late")
	require.NoError(t, err)

	rest, after, err := env.svc.Transfer.ListEntries(ctx, env.identity(alice), EntryQuery{Order: entry.OrderOldestFirst, Until: next.Until}, next)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Empty(t, rest[0].Reason)
	assert.Nil(t, after)
}
