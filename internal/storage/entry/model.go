package entry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("ledger entry not found")

type Kind string

const (
	KindTransfer         Kind = "transfer"
	KindLoanDisbursement Kind = "loan_disbursement"
	KindLoanRepayment    Kind = "loan_repayment"
	KindInvestment       Kind = "investment"
	KindWithdrawal       Kind = "withdrawal"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTransfer, KindLoanDisbursement, KindLoanRepayment, KindInvestment, KindWithdrawal:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown entry kind %q", s)
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusFailed:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown entry status %q", s)
	}
}

// Entry is an immutable ledger record.
type Entry struct {
	ID         uuid.UUID       `db:"id"`
	SenderID   uuid.UUID       `db:"sender_id"`
	ReceiverID uuid.UUID       `db:"receiver_id"`
	Amount     decimal.Decimal `db:"amount"`
	Reason     string          `db:"reason"`
	Kind       Kind            `db:"kind"`
	Status     Status          `db:"status"`
	CreatedAt  time.Time       `db:"created_at"`
}

// Involves reports whether accountID is the sender or the receiver.
func (e *Entry) Involves(accountID uuid.UUID) bool {
	return e.SenderID == accountID || e.ReceiverID == accountID
}

type EntryCreate struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Amount     decimal.Decimal
	Reason     string
	Kind       Kind
	Status     Status
}

type Order int

const (
	// OrderNewestFirst is the display order.
	OrderNewestFirst Order = iota
	// OrderOldestFirst is the audit order.
	OrderOldestFirst
)

// EntryFilter selects entries. Zero values mean "no constraint"; a zero Limit means unbounded.
type EntryFilter struct {
	AccountID *uuid.UUID
	SenderID  *uuid.UUID
	Kinds     []Kind
	Statuses  []Status
	Since     *time.Time
	Until     *time.Time
	Order     Order
	Limit     int
	Offset    int
}

// Matches applies every constraint except ordering and paging.
func (f *EntryFilter) Matches(e *Entry) bool {
	if f == nil {
		return true
	}
	if f.AccountID != nil && !e.Involves(*f.AccountID) {
		return false
	}
	if f.SenderID != nil && e.SenderID != *f.SenderID {
		return false
	}
	if len(f.Kinds) > 0 && !contains(f.Kinds, e.Kind) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, e.Status) {
		return false
	}
	if f.Since != nil && e.CreatedAt.Before(*f.Since) {
		return false
	}
	if f.Until != nil && !e.CreatedAt.Before(*f.Until) {
		return false
	}
	return true
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Summary counts a set of entries and totals their amounts.
type Summary struct {
	Count int             `db:"count"`
	Total decimal.Decimal `db:"total"`
}

type IReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	List(ctx context.Context, filter *EntryFilter) ([]*Entry, error)
	// Horizon returns an exclusive created_at bound, read from the store's own clock,
	// that covers every entry visible at the time of the call.
	Horizon(ctx context.Context) (time.Time, error)
	Summarize(ctx context.Context, filter *EntryFilter) (Summary, error)
}

// IWriter only appends. There is no update or delete path.
type IWriter interface {
	IReader
	Insert(ctx context.Context, create *EntryCreate) (*Entry, error)
}

const table = "ledger_entries"

var columns = []any{"id", "sender_id", "receiver_id", "amount", "reason", "kind", "status", "created_at"}
