// Package events describes ledger events published after a unit of work commits.
package events

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/storage/entry"
)

const TypeEntryPosted = "ledger.entry.posted"

type Event struct {
	Type       string          `json:"type"`
	EntryID    uuid.UUID       `json:"entryId"`
	SenderID   uuid.UUID       `json:"senderId"`
	ReceiverID uuid.UUID       `json:"receiverId"`
	Amount     decimal.Decimal `json:"amount"`
	Kind       entry.Kind      `json:"kind"`
	Status     entry.Status    `json:"status"`
	Reason     string          `json:"reason,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

func FromEntry(e *entry.Entry) Event {
	return Event{
		Type:       TypeEntryPosted,
		EntryID:    e.ID,
		SenderID:   e.SenderID,
		ReceiverID: e.ReceiverID,
		Amount:     e.Amount,
		Kind:       e.Kind,
		Status:     e.Status,
		Reason:     e.Reason,
		OccurredAt: e.CreatedAt,
	}
}

func FromEntries(entries []*entry.Entry) []Event {
	out := make([]Event, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromEntry(e))
	}
	return out
}

// Key partitions events by the account whose balance was debited.
func (e Event) Key() string {
	return e.SenderID.String()
}

type Publisher interface {
	Publish(ctx context.Context, events []Event) error
	Close() error
}

type Noop struct{}

func (Noop) Publish(context.Context, []Event) error { return nil }

func (Noop) Close() error { return nil }
