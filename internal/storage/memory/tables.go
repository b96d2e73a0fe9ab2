package memory

import (
	"bytes"
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
)

type tables struct {
	accounts    *accountTable
	entries     *entryTable
	loans       *loanTable
	investments *investmentTable
	settings    *settingTable
}

func newTables(access accessor, now func() time.Time) tables {
	return tables{
		accounts:    &accountTable{access: access, now: now},
		entries:     &entryTable{access: access, now: now},
		loans:       &loanTable{access: access, now: now},
		investments: &investmentTable{access: access, now: now},
		settings:    &settingTable{access: access},
	}
}

func newReader(access accessor, now func() time.Time) *storage.Reader {
	t := newTables(access, now)
	return &storage.Reader{
		Accounts:    t.accounts,
		Entries:     t.entries,
		Loans:       t.loans,
		Investments: t.investments,
		Settings:    t.settings,
	}
}

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

// window applies offset/limit to an already ordered slice. A zero limit means unbounded.
func window[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

type accountTable struct {
	access accessor
	now    func() time.Time
}

func (t *accountTable) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var found account.Account
	err := t.access(ctx, func(s *state) error {
		acc, ok := s.accounts[id]
		if !ok {
			return account.ErrNotFound
		}
		found = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// FindByIDForUpdate needs no row lock, the writer slot already excludes other units.
func (t *accountTable) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return t.FindByID(ctx, id)
}

func (t *accountTable) List(ctx context.Context, filter *account.AccountFilter) (*account.AccountListResult, error) {
	limit, offset := account.Bounds(filter)

	var rows []*account.Account
	err := t.access(ctx, func(s *state) error {
		for _, acc := range s.accounts {
			rows = append(rows, &acc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(rows, func(a, b *account.Account) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return account.Page(window(rows, offset, limit+1), filter), nil
}

func (t *accountTable) CountByRole(ctx context.Context) (map[auth.Role]int, error) {
	counts := make(map[auth.Role]int)
	err := t.access(ctx, func(s *state) error {
		for _, acc := range s.accounts {
			counts[acc.Role]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (t *accountTable) Create(ctx context.Context, create *account.AccountCreate) (*account.Account, error) {
	acc := account.Account{
		ID:        newID(),
		Name:      create.Name,
		Role:      create.Role,
		Balance:   decimal.Zero,
		CreatedAt: t.now(),
	}
	err := t.access(ctx, func(s *state) error {
		s.accounts[acc.ID] = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (t *accountTable) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return t.access(ctx, func(s *state) error {
		acc, ok := s.accounts[id]
		if !ok {
			return account.ErrNotFound
		}
		acc.Balance = balance
		s.accounts[id] = acc
		return nil
	})
}

type entryTable struct {
	access accessor
	now    func() time.Time
}

func (t *entryTable) FindByID(ctx context.Context, id uuid.UUID) (*entry.Entry, error) {
	var found *entry.Entry
	err := t.access(ctx, func(s *state) error {
		for _, e := range s.entries {
			if e.ID == id {
				found = &e
				return nil
			}
		}
		return entry.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (t *entryTable) List(ctx context.Context, filter *entry.EntryFilter) ([]*entry.Entry, error) {
	if filter == nil {
		filter = &entry.EntryFilter{}
	}

	var rows []*entry.Entry
	err := t.access(ctx, func(s *state) error {
		for _, e := range s.entries {
			if filter.Matches(&e) {
				rows = append(rows, &e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(rows, func(a, b *entry.Entry) int {
		c := a.CreatedAt.Compare(b.CreatedAt)
		if c == 0 {
			c = compareIDs(a.ID, b.ID)
		}
		if filter.Order == entry.OrderNewestFirst {
			return -c
		}
		return c
	})
	return window(rows, filter.Offset, filter.Limit), nil
}

// Horizon is just past the newest entry. Inserts always stamp later than the last entry, so
// nothing appended afterwards falls under it.
func (t *entryTable) Horizon(ctx context.Context) (time.Time, error) {
	horizon := t.now()
	err := t.access(ctx, func(s *state) error {
		if n := len(s.entries); n > 0 {
			horizon = s.entries[n-1].CreatedAt.Add(time.Nanosecond)
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return horizon, nil
}

func (t *entryTable) Summarize(ctx context.Context, filter *entry.EntryFilter) (entry.Summary, error) {
	if filter == nil {
		filter = &entry.EntryFilter{}
	}

	summary := entry.Summary{Total: decimal.Zero}
	err := t.access(ctx, func(s *state) error {
		for _, e := range s.entries {
			if filter.Matches(&e) {
				summary.Count++
				summary.Total = summary.Total.Add(e.Amount)
			}
		}
		return nil
	})
	if err != nil {
		return entry.Summary{}, err
	}
	return summary, nil
}

func (t *entryTable) Insert(ctx context.Context, create *entry.EntryCreate) (*entry.Entry, error) {
	e := entry.Entry{
		ID:         newID(),
		SenderID:   create.SenderID,
		ReceiverID: create.ReceiverID,
		Amount:     create.Amount,
		Reason:     create.Reason,
		Kind:       create.Kind,
		Status:     create.Status,
		CreatedAt:  t.now(),
	}
	err := t.access(ctx, func(s *state) error {
		// keep creation times strictly increasing so append order is the time order
		if n := len(s.entries); n > 0 && !e.CreatedAt.After(s.entries[n-1].CreatedAt) {
			e.CreatedAt = s.entries[n-1].CreatedAt.Add(time.Nanosecond)
		}
		s.entries = append(s.entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

type loanTable struct {
	access accessor
	now    func() time.Time
}

func (t *loanTable) FindByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	var found loan.Loan
	err := t.access(ctx, func(s *state) error {
		l, ok := s.loans[id]
		if !ok {
			return loan.ErrNotFound
		}
		found = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (t *loanTable) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	return t.FindByID(ctx, id)
}

func (t *loanTable) List(ctx context.Context, filter *loan.LoanFilter) (*loan.LoanListResult, error) {
	limit, offset := loan.Bounds(filter)

	var rows []*loan.Loan
	err := t.access(ctx, func(s *state) error {
		for _, l := range s.loans {
			if filter.Matches(&l) {
				rows = append(rows, &l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(rows, func(a, b *loan.Loan) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), compareIDs(b.ID, a.ID))
	})
	return loan.Page(window(rows, offset, limit+1), filter), nil
}

func (t *loanTable) SummarizeByStatus(ctx context.Context) (map[loan.Status]loan.Summary, error) {
	summaries := make(map[loan.Status]loan.Summary)
	err := t.access(ctx, func(s *state) error {
		for _, l := range s.loans {
			sum := summaries[l.Status]
			sum.Count++
			sum.Total = sum.Total.Add(l.Principal)
			summaries[l.Status] = sum
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (t *loanTable) Insert(ctx context.Context, create *loan.LoanCreate) (*loan.Loan, error) {
	now := t.now()
	l := loan.Loan{
		ID:             newID(),
		BorrowerID:     create.BorrowerID,
		Type:           create.Type,
		Principal:      create.Principal,
		InterestRate:   create.InterestRate,
		TermMonths:     create.TermMonths,
		Status:         loan.StatusPending,
		MonthlyPayment: create.MonthlyPayment,
		TotalRepayment: create.TotalRepayment,
		AmountPaid:     decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := t.access(ctx, func(s *state) error {
		s.loans[l.ID] = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (t *loanTable) Update(ctx context.Context, id uuid.UUID, update *loan.LoanUpdate) error {
	return t.access(ctx, func(s *state) error {
		l, ok := s.loans[id]
		if !ok {
			return loan.ErrNotFound
		}
		update.Apply(&l, t.now())
		s.loans[id] = l
		return nil
	})
}

type investmentTable struct {
	access accessor
	now    func() time.Time
}

func (t *investmentTable) FindByID(ctx context.Context, id uuid.UUID) (*investment.Investment, error) {
	var found investment.Investment
	err := t.access(ctx, func(s *state) error {
		inv, ok := s.investments[id]
		if !ok {
			return investment.ErrNotFound
		}
		found = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (t *investmentTable) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*investment.Investment, error) {
	return t.FindByID(ctx, id)
}

func (t *investmentTable) List(ctx context.Context, filter *investment.InvestmentFilter) (*investment.InvestmentListResult, error) {
	limit, offset := investment.Bounds(filter)

	var rows []*investment.Investment
	err := t.access(ctx, func(s *state) error {
		for _, inv := range s.investments {
			if filter.Matches(&inv) {
				rows = append(rows, &inv)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(rows, func(a, b *investment.Investment) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), compareIDs(b.ID, a.ID))
	})
	return investment.Page(window(rows, offset, limit+1), filter), nil
}

func (t *investmentTable) SummarizeByStatus(ctx context.Context) (map[investment.Status]investment.Summary, error) {
	summaries := make(map[investment.Status]investment.Summary)
	err := t.access(ctx, func(s *state) error {
		for _, inv := range s.investments {
			sum := summaries[inv.Status]
			sum.Count++
			sum.Total = sum.Total.Add(inv.Amount)
			summaries[inv.Status] = sum
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (t *investmentTable) Insert(ctx context.Context, create *investment.InvestmentCreate) (*investment.Investment, error) {
	now := t.now()
	inv := investment.Investment{
		ID:             newID(),
		OwnerID:        create.OwnerID,
		Type:           create.Type,
		Amount:         create.Amount,
		Frequency:      create.Frequency,
		DurationMonths: create.DurationMonths,
		ExpectedReturn: create.ExpectedReturn,
		MaturityAmount: create.MaturityAmount,
		MaturityDate:   create.MaturityDate,
		Status:         investment.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := t.access(ctx, func(s *state) error {
		s.investments[inv.ID] = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (t *investmentTable) Update(ctx context.Context, id uuid.UUID, update *investment.InvestmentUpdate) error {
	return t.access(ctx, func(s *state) error {
		inv, ok := s.investments[id]
		if !ok {
			return investment.ErrNotFound
		}
		update.Apply(&inv, t.now())
		s.investments[id] = inv
		return nil
	})
}

type settingTable struct {
	access accessor
}

func (t *settingTable) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := t.access(ctx, func(s *state) error {
		value, ok = s.settings[key]
		return nil
	})
	return value, ok, err
}
