package account

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/auth"
)

var ErrNotFound = errors.New("account not found")

// Account represents an account record.
type Account struct {
	ID        uuid.UUID       `db:"id"`
	Name      string          `db:"name"`
	Role      auth.Role       `db:"role"`
	Balance   decimal.Decimal `db:"balance"`
	CreatedAt time.Time       `db:"created_at"`
}

// AccountFilter specifies filters for listing accounts.
type AccountFilter struct {
	Limit  int
	Offset int
}

// AccountCursor identifies a position in a paginated result set.
type AccountCursor struct {
	Position int
	Limit    int
}

// AccountListResult contains a page of accounts and an optional next cursor.
type AccountListResult struct {
	Accounts   []*Account
	NextCursor *AccountCursor
}

// AccountCreate is the input for creating a new account. Accounts always open at a zero balance.
type AccountCreate struct {
	Name string
	Role auth.Role
}

type IReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	List(ctx context.Context, filter *AccountFilter) (*AccountListResult, error)
	CountByRole(ctx context.Context) (map[auth.Role]int, error)
}

// IWriter is only reachable inside an atomic unit.
type IWriter interface {
	IReader
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)
	Create(ctx context.Context, create *AccountCreate) (*Account, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
}

const (
	table       = "accounts"
	DefaultPage = 20
)

var columns = []any{"id", "name", "role", "balance", "created_at"}

// Page trims a limit+1 result set down to limit and builds the next cursor.
func Page(rows []*Account, filter *AccountFilter) *AccountListResult {
	limit, offset := Bounds(filter)
	if len(rows) == 0 {
		return &AccountListResult{}
	}

	var nextCursor *AccountCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &AccountCursor{
			Position: offset + limit,
			Limit:    limit,
		}
	}
	return &AccountListResult{Accounts: rows, NextCursor: nextCursor}
}

// Bounds returns the effective limit and offset for filter.
func Bounds(filter *AccountFilter) (int, int) {
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

