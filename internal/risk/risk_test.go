package risk

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
	"github.com/carson-networks/ledger-server/internal/transfer"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sent(amounts ...string) []*entry.Entry {
	entries := make([]*entry.Entry, 0, len(amounts))
	for _, a := range amounts {
		entries = append(entries, &entry.Entry{Amount: dec(a), Kind: entry.KindTransfer, Status: entry.StatusCompleted})
	}
	return entries
}

func TestEvaluate_Quiet(t *testing.T) {
	report := Evaluate(sent("10", "20"), dec("1000"), DefaultRules())

	assert.Equal(t, 2, report.Count)
	assert.Equal(t, "30", report.Total.String())
	assert.Empty(t, report.Alerts)
	assert.False(t, report.Suspicious)
	assert.Equal(t, 0, report.Score)
}

func TestEvaluate_Rules(t *testing.T) {
	many := make([]string, 11)
	for i := range many {
		many[i] = "1"
	}

	tests := []struct {
		name    string
		entries []*entry.Entry
		balance string
		alerts  []string
		score   int
	}{
		{
			name:    "frequency",
			entries: sent(many...),
			balance: "1000",
			alerts:  []string{"High transaction frequency detected (>10 in 24 hours)"},
			score:   30,
		},
		{
			name:    "exactly ten is fine",
			entries: sent(many[:10]...),
			balance: "1000",
			alerts:  []string{},
			score:   0,
		},
		{
			name:    "volume",
			entries: sent("500"),
			balance: "249.99",
			alerts:  []string{"Transaction volume exceeds typical patterns"},
			score:   30,
		},
		{
			name:    "large",
			entries: sent("10000.01", "10000", "20000"),
			balance: "1000000",
			alerts:  []string{"2 large transaction(s) detected (>10000)"},
			score:   30,
		},
		{
			name:    "all three",
			entries: append(sent(many...), sent("15000")...),
			balance: "0",
			alerts: []string{
				"High transaction frequency detected (>10 in 24 hours)",
				"Transaction volume exceeds typical patterns",
				"1 large transaction(s) detected (>10000)",
			},
			score: 90,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Evaluate(tt.entries, dec(tt.balance), DefaultRules())
			assert.Equal(t, tt.alerts, report.Alerts)
			assert.Equal(t, tt.score, report.Score)
			assert.Equal(t, len(tt.alerts) > 0, report.Suspicious)
		})
	}
}

func TestEvaluate_CustomRules(t *testing.T) {
	rules := DefaultRules()
	rules.LargeAmount = dec("0")
	rules.MaxCount = 0

	report := Evaluate(sent("1"), dec("0"), rules)
	assert.Len(t, report.Alerts, 3)
	assert.Equal(t, "High transaction frequency detected (>0 in 24 hours)", report.Alerts[0])
	assert.Equal(t, "1 large transaction(s) detected (>0)", report.Alerts[2])
	assert.Equal(t, 90, report.Score)
}

func TestDetect_ReadsSentEntries(t *testing.T) {
	ctx := context.Background()
	store, db := memory.NewStorage(time.Second)
	alice := db.SeedAccount("alice", auth.RoleUser, dec("30000"))
	bob := db.SeedAccount("bob", auth.RoleUser, dec("0"))

	unit := func(fn func(w *storage.Writer) error) {
		w, err := store.Write(ctx)
		require.NoError(t, err)
		require.NoError(t, fn(w))
		require.NoError(t, w.Commit(ctx))
	}

	unit(func(w *storage.Writer) error {
		_, err := transfer.Execute(ctx, w, transfer.Request{SenderID: alice.ID, ReceiverID: bob.ID, Amount: dec("12000"), Kind: entry.KindTransfer})
		return err
	})
	unit(func(w *storage.Writer) error {
		_, err := transfer.RecordFailure(ctx, w, transfer.Request{SenderID: alice.ID, ReceiverID: bob.ID, Amount: dec("50000"), Kind: entry.KindTransfer})
		return err
	})
	// Received entries never count against the receiver.
	unit(func(w *storage.Writer) error {
		_, err := transfer.Execute(ctx, w, transfer.Request{SenderID: bob.ID, ReceiverID: alice.ID, Amount: dec("100"), Kind: entry.KindTransfer})
		return err
	})

	report, err := Detect(ctx, store.Reader, alice.ID, time.Now(), DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, alice.ID, report.AccountID)
	assert.Equal(t, 2, report.Count)
	assert.Equal(t, "62000", report.Total.String())
	assert.Equal(t, []string{
		"Transaction volume exceeds typical patterns",
		"2 large transaction(s) detected (>10000)",
	}, report.Alerts)
	assert.Equal(t, 60, report.Score)

	quiet, err := Detect(ctx, store.Reader, alice.ID, time.Now().Add(48*time.Hour), DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, 0, quiet.Count)
}

func TestDetect_UnknownAccount(t *testing.T) {
	store, _ := memory.NewStorage(time.Second)

	_, err := Detect(context.Background(), store.Reader, uuid.Must(uuid.NewV4()), time.Now(), DefaultRules())
	assert.True(t, apperr.Is(err, apperr.AccountNotFound))
}
