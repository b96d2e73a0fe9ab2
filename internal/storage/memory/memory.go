// Package memory is an in-process storage backend. Writers are serialised and work on a private
// copy of the committed state, so a unit either publishes all of its changes or none of them.
package memory

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
)

var errTxDone = errors.New("memory: transaction already finished")

type state struct {
	accounts    map[uuid.UUID]account.Account
	entries     []entry.Entry
	loans       map[uuid.UUID]loan.Loan
	investments map[uuid.UUID]investment.Investment
	settings    map[string]string
}

func newState() *state {
	return &state{
		accounts:    make(map[uuid.UUID]account.Account),
		loans:       make(map[uuid.UUID]loan.Loan),
		investments: make(map[uuid.UUID]investment.Investment),
		settings:    make(map[string]string),
	}
}

// clone copies every table. Entries are never mutated, so the slice header copy is enough
// as long as appends on the clone don't alias the original's backing array.
func (s *state) clone() *state {
	entries := make([]entry.Entry, len(s.entries), len(s.entries)+8)
	copy(entries, s.entries)
	return &state{
		accounts:    maps.Clone(s.accounts),
		entries:     entries,
		loans:       maps.Clone(s.loans),
		investments: maps.Clone(s.investments),
		settings:    maps.Clone(s.settings),
	}
}

type accessor func(ctx context.Context, fn func(*state) error) error

type DB struct {
	mu        sync.RWMutex
	committed *state
	writer    chan struct{}
	now       func() time.Time
	reader    *storage.Reader
}

func New() *DB {
	db := &DB{
		committed: newState(),
		writer:    make(chan struct{}, 1),
		now:       time.Now,
	}
	db.reader = newReader(db.read, db.now)
	return db
}

// NewStorage wraps a fresh in-memory DB in a Storage.
func NewStorage(timeout time.Duration) (*storage.Storage, *DB) {
	db := New()
	return storage.New(db, timeout), db
}

func (db *DB) read(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.committed)
}

func (db *DB) Reader() *storage.Reader {
	return db.reader
}

// Begin waits for the single writer slot. A context that ends first yields StoreUnavailable.
func (db *DB) Begin(ctx context.Context) (*storage.Writer, error) {
	select {
	case db.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, apperr.Wrap(apperr.StoreUnavailable, "begin: waiting for writer", ctx.Err())
	}

	db.mu.RLock()
	working := db.committed.clone()
	db.mu.RUnlock()

	t := &tx{db: db, state: working}
	tables := newTables(t.access, db.now)
	return storage.NewWriter(t, storage.Tables{
		Account:    tables.accounts,
		Entry:      tables.entries,
		Loan:       tables.loans,
		Investment: tables.investments,
	}), nil
}

func (db *DB) Ping(context.Context) error {
	return nil
}

func (db *DB) Close() error {
	return nil
}

// SetSetting writes an admin setting directly. Settings are managed outside the ledger.
func (db *DB) SetSetting(key, value string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.committed.settings[key] = value
}

// SeedAccount inserts an account with an opening balance, bypassing the ledger. Fixtures only.
func (db *DB) SeedAccount(name string, role auth.Role, balance decimal.Decimal) account.Account {
	acc := account.Account{
		ID:        uuid.Must(uuid.NewV4()),
		Name:      name,
		Role:      role,
		Balance:   balance,
		CreatedAt: db.now(),
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.committed.accounts[acc.ID] = acc
	return acc
}

type tx struct {
	mu    sync.Mutex
	db    *DB
	state *state
	done  bool
}

func (t *tx) access(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return errTxDone
	}
	return fn(t.state)
}

func (t *tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return errTxDone
	}
	t.done = true

	t.db.mu.Lock()
	t.db.committed = t.state
	t.db.mu.Unlock()
	<-t.db.writer
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	t.state = nil
	<-t.db.writer
	return nil
}
