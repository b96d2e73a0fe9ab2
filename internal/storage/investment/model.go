package investment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("investment not found")

type Type string

const (
	TypeSIP     Type = "sip"
	TypeSWP     Type = "swp"
	TypeLumpsum Type = "lumpsum"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeSIP, TypeSWP, TypeLumpsum:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown investment type %q", s)
	}
}

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return Frequency(s), nil
	default:
		return "", fmt.Errorf("unknown investment frequency %q", s)
	}
}

type Status string

const (
	StatusActive    Status = "active"
	StatusMatured   Status = "matured"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusMatured, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown investment status %q", s)
	}
}

type Investment struct {
	ID             uuid.UUID       `db:"id"`
	OwnerID        uuid.UUID       `db:"owner_id"`
	Type           Type            `db:"type"`
	Amount         decimal.Decimal `db:"amount"`
	Frequency      Frequency       `db:"frequency"`
	DurationMonths int             `db:"duration_months"`
	ExpectedReturn decimal.Decimal `db:"expected_return"`
	MaturityAmount decimal.Decimal `db:"maturity_amount"`
	MaturityDate   time.Time       `db:"maturity_date"`
	Status         Status          `db:"status"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

type InvestmentCreate struct {
	OwnerID        uuid.UUID
	Type           Type
	Amount         decimal.Decimal
	Frequency      Frequency
	DurationMonths int
	ExpectedReturn decimal.Decimal
	MaturityAmount decimal.Decimal
	MaturityDate   time.Time
}

type InvestmentUpdate struct {
	Status omit.Val[Status]
}

func (u *InvestmentUpdate) Apply(inv *Investment, now time.Time) {
	if v, ok := u.Status.Get(); ok {
		inv.Status = v
	}
	inv.UpdatedAt = now
}

type InvestmentFilter struct {
	OwnerID       *uuid.UUID
	Statuses      []Status
	MaturesBefore *time.Time
	Limit         int
	Offset        int
}

func (f *InvestmentFilter) Matches(inv *Investment) bool {
	if f == nil {
		return true
	}
	if f.OwnerID != nil && inv.OwnerID != *f.OwnerID {
		return false
	}
	if f.MaturesBefore != nil && inv.MaturityDate.After(*f.MaturesBefore) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if inv.Status == s {
			return true
		}
	}
	return false
}

type InvestmentCursor struct {
	Position int
	Limit    int
}

type InvestmentListResult struct {
	Investments []*Investment
	NextCursor  *InvestmentCursor
}

// Summary totals the amount of a group of investments.
type Summary struct {
	Count int
	Total decimal.Decimal
}

type IReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Investment, error)
	List(ctx context.Context, filter *InvestmentFilter) (*InvestmentListResult, error)
	SummarizeByStatus(ctx context.Context) (map[Status]Summary, error)
}

type IWriter interface {
	IReader
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Investment, error)
	Insert(ctx context.Context, create *InvestmentCreate) (*Investment, error)
	Update(ctx context.Context, id uuid.UUID, update *InvestmentUpdate) error
}

const (
	table       = "investments"
	DefaultPage = 20
)

var columns = []any{
	"id", "owner_id", "type", "amount", "frequency", "duration_months", "expected_return",
	"maturity_amount", "maturity_date", "status", "created_at", "updated_at",
}

func Page(rows []*Investment, filter *InvestmentFilter) *InvestmentListResult {
	limit, offset := Bounds(filter)
	if len(rows) == 0 {
		return &InvestmentListResult{}
	}

	var nextCursor *InvestmentCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &InvestmentCursor{
			Position: offset + limit,
			Limit:    limit,
		}
	}
	return &InvestmentListResult{Investments: rows, NextCursor: nextCursor}
}

func Bounds(filter *InvestmentFilter) (int, int) {
	limit := DefaultPage
	offset := 0
	if filter != nil {
		if filter.Limit > 0 {
			limit = filter.Limit
		}
		offset = filter.Offset
	}
	return limit, offset
}
