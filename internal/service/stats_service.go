package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
)

// StatsWindow is how far back Dashboard counts ledger volume.
const StatsWindow = 30 * 24 * time.Hour

// Dashboard is a point-in-time overview of the whole ledger.
type Dashboard struct {
	Accounts    map[auth.Role]int
	Loans       map[loan.Status]loan.Summary
	Investments map[investment.Status]investment.Summary
	// Volume covers completed entries created since Since.
	Volume entry.Summary
	Since  time.Time
}

// TotalAccounts sums the per-role counts.
func (d Dashboard) TotalAccounts() int {
	total := 0
	for _, n := range d.Accounts {
		total += n
	}
	return total
}

type StatsService struct {
	storage *storage.Storage
	opts    Options
}

func NewStatsService(store *storage.Storage, opts Options) *StatsService {
	return &StatsService{storage: store, opts: opts}
}

// Dashboard aggregates accounts, loans, investments and recent volume. The reads run
// concurrently and are not one snapshot.
func (s *StatsService) Dashboard(ctx context.Context, caller auth.Identity) (*Dashboard, error) {
	if !caller.Role.CanViewAll() {
		return nil, apperr.Newf(apperr.Unauthorized, "role %s cannot view ledger stats", caller.Role)
	}

	d := &Dashboard{Since: s.opts.Now().Add(-StatsWindow)}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.storage.Accounts.CountByRole(gctx)
		if err != nil {
			return storage.StoreError("count accounts", err)
		}
		d.Accounts = counts
		return nil
	})
	g.Go(func() error {
		loans, err := s.storage.Loans.SummarizeByStatus(gctx)
		if err != nil {
			return storage.StoreError("summarize loans", err)
		}
		d.Loans = loans
		return nil
	})
	g.Go(func() error {
		investments, err := s.storage.Investments.SummarizeByStatus(gctx)
		if err != nil {
			return storage.StoreError("summarize investments", err)
		}
		d.Investments = investments
		return nil
	})
	g.Go(func() error {
		volume, err := s.storage.Entries.Summarize(gctx, &entry.EntryFilter{
			Statuses: []entry.Status{entry.StatusCompleted},
			Since:    &d.Since,
		})
		if err != nil {
			return storage.StoreError("summarize entries", err)
		}
		d.Volume = volume
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
