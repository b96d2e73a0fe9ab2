// Package risk flags unusual outgoing activity on an account.
package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
)

const alertScore = 30

type Rules struct {
	Window      time.Duration
	LargeAmount decimal.Decimal
	MaxCount    int
}

func DefaultRules() Rules {
	return Rules{
		Window:      24 * time.Hour,
		LargeAmount: decimal.NewFromInt(10000),
		MaxCount:    10,
	}
}

type Report struct {
	AccountID  uuid.UUID
	Since      time.Time
	Count      int
	Total      decimal.Decimal
	Alerts     []string
	Suspicious bool
	Score      int
}

// Evaluate scores the entries an account sent during the window. Each triggered rule adds 30
// to the score, capped at 100.
func Evaluate(sent []*entry.Entry, balance decimal.Decimal, rules Rules) Report {
	report := Report{Count: len(sent), Total: decimal.Zero, Alerts: []string{}}

	large := 0
	for _, e := range sent {
		report.Total = report.Total.Add(e.Amount)
		if e.Amount.GreaterThan(rules.LargeAmount) {
			large++
		}
	}

	if report.Count > rules.MaxCount {
		report.Alerts = append(report.Alerts, fmt.Sprintf("High transaction frequency detected (>%d in %s)", rules.MaxCount, windowLabel(rules.Window)))
	}
	if report.Total.GreaterThan(balance.Mul(decimal.NewFromInt(2))) {
		report.Alerts = append(report.Alerts, "Transaction volume exceeds typical patterns")
	}
	if large > 0 {
		report.Alerts = append(report.Alerts, fmt.Sprintf("%d large transaction(s) detected (>%s)", large, rules.LargeAmount.String()))
	}

	report.Suspicious = len(report.Alerts) > 0
	report.Score = min(100, alertScore*len(report.Alerts))
	return report
}

// Detect reads every entry the account sent inside the window ending at now, whatever its
// status, and evaluates it against the current balance.
func Detect(ctx context.Context, reader *storage.Reader, accountID uuid.UUID, now time.Time, rules Rules) (Report, error) {
	acc, err := reader.GetAccount(ctx, accountID)
	if err != nil {
		return Report{}, err
	}

	since := now.Add(-rules.Window)
	sent, err := reader.CollectEntries(ctx, entry.EntryFilter{
		SenderID: &accountID,
		Since:    &since,
		Order:    entry.OrderOldestFirst,
	})
	if err != nil {
		return Report{}, err
	}

	report := Evaluate(sent, acc.Balance, rules)
	report.AccountID = accountID
	report.Since = since
	return report, nil
}

func windowLabel(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return d.String()
}
