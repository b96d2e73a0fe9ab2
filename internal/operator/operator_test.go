package operator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
	"github.com/carson-networks/ledger-server/internal/transfer"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, evs []events.Event) error {
	return m.Called(evs).Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

type funcAction struct {
	fn func(ctx context.Context, w *storage.Writer) error
	actions.IAction
}

func (f *funcAction) Perform(ctx context.Context, w *storage.Writer) error {
	return f.fn(ctx, w)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func startDelegator(t *testing.T, store *storage.Storage, publisher events.Publisher) *OperatorDelegator {
	t.Helper()
	d := NewOperatorDelegator(store, publisher, 1, 10)
	d.Start()
	t.Cleanup(d.Stop)
	return d
}

func TestProcess_CommitsAndPublishes(t *testing.T) {
	store, db := memory.NewStorage(time.Second)
	alice := db.SeedAccount("alice", auth.RoleUser, dec("50"))
	bob := db.SeedAccount("bob", auth.RoleUser, dec("0"))

	publisher := &mockPublisher{}
	publisher.On("Publish", mock.MatchedBy(func(evs []events.Event) bool {
		return len(evs) == 1 && evs[0].Kind == entry.KindTransfer && evs[0].Amount.Equal(dec("20"))
	})).Return(nil).Once()

	d := startDelegator(t, store, publisher)

	action := &actions.Transfer{Request: transfer.Request{
		SenderID: alice.ID, ReceiverID: bob.ID, Amount: dec("20"), Kind: entry.KindTransfer,
	}}
	require.NoError(t, d.Process(context.Background(), action))
	require.NotNil(t, action.Result)
	assert.Equal(t, entry.StatusCompleted, action.Result.Status)

	acc, err := store.GetAccount(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.True(t, dec("20").Equal(acc.Balance))
	publisher.AssertExpectations(t)
}

func TestProcess_ActionErrorRollsBack(t *testing.T) {
	store, db := memory.NewStorage(time.Second)
	alice := db.SeedAccount("alice", auth.RoleUser, dec("50"))

	publisher := &mockPublisher{}
	d := startDelegator(t, store, publisher)

	err := d.Process(context.Background(), &funcAction{fn: func(ctx context.Context, w *storage.Writer) error {
		if _, err := w.AdjustBalance(ctx, alice.ID, dec("-10")); err != nil {
			return err
		}
		return errors.New("boom")
	}})
	assert.True(t, apperr.Is(err, apperr.StoreUnavailable), "got %v", err)

	acc, err := store.GetAccount(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(acc.Balance))
	publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestProcess_KindedErrorsPassThrough(t *testing.T) {
	store, db := memory.NewStorage(time.Second)
	alice := db.SeedAccount("alice", auth.RoleUser, dec("5"))
	bob := db.SeedAccount("bob", auth.RoleUser, dec("0"))
	d := startDelegator(t, store, nil)

	err := d.Process(context.Background(), &actions.Transfer{Request: transfer.Request{
		SenderID: alice.ID, ReceiverID: bob.ID, Amount: dec("6"), Kind: entry.KindTransfer,
	}})
	assert.True(t, apperr.Is(err, apperr.InsufficientFunds))
}

func TestProcess_PublishFailureKeepsCommit(t *testing.T) {
	store, db := memory.NewStorage(time.Second)
	alice := db.SeedAccount("alice", auth.RoleUser, dec("50"))
	bob := db.SeedAccount("bob", auth.RoleUser, dec("0"))

	publisher := &mockPublisher{}
	publisher.On("Publish", mock.Anything).Return(errors.New("broker down"))
	d := startDelegator(t, store, publisher)

	err := d.Process(context.Background(), &actions.Transfer{Request: transfer.Request{
		SenderID: alice.ID, ReceiverID: bob.ID, Amount: dec("1"), Kind: entry.KindTransfer,
	}})
	require.NoError(t, err)

	acc, err := store.GetAccount(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.True(t, dec("49").Equal(acc.Balance))
}

func TestProcess_CancelledBeforeStartNeverRuns(t *testing.T) {
	store, _ := memory.NewStorage(time.Second)
	d := startDelegator(t, store, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	blocker := &funcAction{fn: func(ctx context.Context, w *storage.Writer) error {
		close(started)
		<-release
		return nil
	}}
	blockerDone := make(chan error, 1)
	go func() { blockerDone <- d.Process(context.Background(), blocker) }()
	<-started

	var ran atomic.Bool
	queued := &funcAction{fn: func(ctx context.Context, w *storage.Writer) error {
		ran.Store(true)
		return nil
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Process(ctx, queued)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, <-blockerDone)

	// Drain: anything queued behind the abandoned item still runs.
	require.NoError(t, d.Process(context.Background(), &funcAction{fn: func(context.Context, *storage.Writer) error { return nil }}))
	assert.False(t, ran.Load())
}

func TestProcess_StartedUnitIgnoresCallerCancel(t *testing.T) {
	store, db := memory.NewStorage(time.Second)
	alice := db.SeedAccount("alice", auth.RoleUser, dec("10"))
	bob := db.SeedAccount("bob", auth.RoleUser, dec("0"))
	d := startDelegator(t, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	action := &funcAction{fn: func(unitCtx context.Context, w *storage.Writer) error {
		close(started)
		<-ctx.Done()
		_, err := transfer.Execute(unitCtx, w, transfer.Request{
			SenderID: alice.ID, ReceiverID: bob.ID, Amount: dec("10"), Kind: entry.KindTransfer,
		})
		return err
	}}

	done := make(chan error, 1)
	go func() { done <- d.Process(ctx, action) }()
	<-started
	cancel()

	require.NoError(t, <-done)
	acc, err := store.GetAccount(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(acc.Balance))
}

func TestProcess_UnitTimeout(t *testing.T) {
	store, _ := memory.NewStorage(30 * time.Millisecond)
	d := startDelegator(t, store, nil)

	err := d.Process(context.Background(), &funcAction{fn: func(ctx context.Context, w *storage.Writer) error {
		<-ctx.Done()
		return ctx.Err()
	}})
	assert.True(t, apperr.Is(err, apperr.StoreUnavailable), "got %v", err)
}

func TestProcess_AlreadyCancelled(t *testing.T) {
	store, _ := memory.NewStorage(time.Second)
	d := startDelegator(t, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	err := d.Process(ctx, &funcAction{fn: func(context.Context, *storage.Writer) error {
		ran.Store(true)
		return nil
	}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran.Load())
}

func TestProcess_AfterStop(t *testing.T) {
	store, _ := memory.NewStorage(time.Second)
	d := NewOperatorDelegator(store, nil, 2, 0)
	d.Start()
	d.Stop()
	d.Stop()

	err := d.Process(context.Background(), &funcAction{fn: func(context.Context, *storage.Writer) error { return nil }})
	assert.True(t, apperr.Is(err, apperr.StoreUnavailable))
}
