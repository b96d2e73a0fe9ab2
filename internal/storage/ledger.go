package storage

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"slices"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
)

// queryPageSize is how many entries QueryEntries fetches per round trip.
const queryPageSize = 200

func (r *Reader) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	acc, err := r.Accounts.FindByID(ctx, id)
	if errors.Is(err, account.ErrNotFound) {
		return nil, apperr.Newf(apperr.AccountNotFound, "account %s not found", id)
	}
	if err != nil {
		return nil, StoreError("get account", err)
	}
	return acc, nil
}

// QueryEntries streams entries matching filter. The sequence is lazy and finite, and ranging
// over it again re-runs the query. Each range pins an upper time bound from the store's clock
// when filter has none, so entries appended mid-iteration don't shift later pages.
func (r *Reader) QueryEntries(ctx context.Context, filter entry.EntryFilter) iter.Seq2[*entry.Entry, error] {
	return func(yield func(*entry.Entry, error) bool) {
		f := filter
		if f.Until == nil {
			until, err := r.Entries.Horizon(ctx)
			if err != nil {
				yield(nil, StoreError("pin entry horizon", err))
				return
			}
			f.Until = &until
		}

		remaining := f.Limit
		offset := f.Offset
		for {
			pageSize := queryPageSize
			if f.Limit > 0 && remaining < pageSize {
				pageSize = remaining
			}

			page := f
			page.Limit = pageSize
			page.Offset = offset
			entries, err := r.Entries.List(ctx, &page)
			if err != nil {
				yield(nil, StoreError("query entries", err))
				return
			}

			for _, e := range entries {
				if !yield(e, nil) {
					return
				}
			}

			offset += len(entries)
			if f.Limit > 0 {
				remaining -= len(entries)
				if remaining <= 0 {
					return
				}
			}
			if len(entries) < pageSize {
				return
			}
		}
	}
}

// CollectEntries drains QueryEntries into a slice.
func (r *Reader) CollectEntries(ctx context.Context, filter entry.EntryFilter) ([]*entry.Entry, error) {
	var result []*entry.Entry
	for e, err := range r.QueryEntries(ctx, filter) {
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}

// LockAccounts row-locks every account in ascending id order and returns them keyed by id.
// The fixed order keeps two units locking the same pair from deadlocking.
func (w *Writer) LockAccounts(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*account.Account, error) {
	ordered := slices.Clone(ids)
	slices.SortFunc(ordered, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	ordered = slices.Compact(ordered)

	locked := make(map[uuid.UUID]*account.Account, len(ordered))
	for _, id := range ordered {
		acc, err := w.Account.FindByIDForUpdate(ctx, id)
		if errors.Is(err, account.ErrNotFound) {
			return nil, apperr.Newf(apperr.AccountNotFound, "account %s not found", id)
		}
		if err != nil {
			return nil, StoreError("lock account", err)
		}
		locked[id] = acc
	}
	return locked, nil
}

// AdjustBalance applies delta to a locked account. A debit that would take the balance
// below zero fails with InsufficientFunds and changes nothing.
func (w *Writer) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*account.Account, error) {
	acc, err := w.Account.FindByIDForUpdate(ctx, id)
	if errors.Is(err, account.ErrNotFound) {
		return nil, apperr.Newf(apperr.AccountNotFound, "account %s not found", id)
	}
	if err != nil {
		return nil, StoreError("adjust balance", err)
	}

	newBalance := acc.Balance.Add(delta)
	if delta.IsNegative() && newBalance.IsNegative() {
		return nil, apperr.Newf(apperr.InsufficientFunds, "account %s balance %s cannot cover %s",
			id, acc.Balance.String(), delta.Neg().String())
	}

	if err := w.Account.UpdateBalance(ctx, id, newBalance); err != nil {
		return nil, StoreError("adjust balance", err)
	}
	w.adjusted[id] = struct{}{}

	acc.Balance = newBalance
	return acc, nil
}

// AppendEntry records an immutable ledger entry in this unit.
func (w *Writer) AppendEntry(ctx context.Context, create *entry.EntryCreate) (*entry.Entry, error) {
	e, err := w.Entry.Insert(ctx, create)
	if err != nil {
		return nil, StoreError("append entry", err)
	}
	w.appended = append(w.appended, e)
	return e, nil
}
