package storage

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
)

// Tx is the transaction handle a backend hands to a Writer.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

var ErrUntracedBalanceChange = errors.New("balance adjusted without a ledger entry")

// Writer is one atomic unit. Everything done through it commits or rolls back together.
type Writer struct {
	tx         Tx
	Account    account.IWriter
	Entry      entry.IWriter
	Loan       loan.IWriter
	Investment investment.IWriter
	adjusted   map[uuid.UUID]struct{}
	appended   []*entry.Entry
	finished   bool
}

type Tables struct {
	Account    account.IWriter
	Entry      entry.IWriter
	Loan       loan.IWriter
	Investment investment.IWriter
}

func NewWriter(tx Tx, tables Tables) *Writer {
	return &Writer{
		tx:         tx,
		Account:    tables.Account,
		Entry:      tables.Entry,
		Loan:       tables.Loan,
		Investment: tables.Investment,
		adjusted:   make(map[uuid.UUID]struct{}),
	}
}

// Commit refuses to persist a unit that moved money without recording it.
func (w *Writer) Commit(ctx context.Context) error {
	if len(w.adjusted) > 0 && len(w.appended) == 0 {
		_ = w.Rollback(ctx)
		return ErrUntracedBalanceChange
	}
	w.finished = true
	return w.tx.Commit(ctx)
}

func (w *Writer) Rollback(ctx context.Context) error {
	if w.finished {
		return nil
	}
	w.finished = true
	w.appended = nil
	return w.tx.Rollback(ctx)
}

// Appended returns the entries written in this unit, in append order.
func (w *Writer) Appended() []*entry.Entry {
	return w.appended
}
