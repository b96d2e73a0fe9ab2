package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("loan not found")

type Type string

const (
	TypePersonal Type = "personal"
	TypeBusiness Type = "business"
	TypeSIP      Type = "sip"
	TypeSWP      Type = "swp"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypePersonal, TypeBusiness, TypeSIP, TypeSWP:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown loan type %q", s)
	}
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusPaid     Status = "paid"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected, StatusPaid:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown loan status %q", s)
	}
}

type Loan struct {
	ID             uuid.UUID       `db:"id"`
	BorrowerID     uuid.UUID       `db:"borrower_id"`
	Type           Type            `db:"type"`
	Principal      decimal.Decimal `db:"principal"`
	InterestRate   decimal.Decimal `db:"interest_rate"`
	TermMonths     int             `db:"term_months"`
	Status         Status          `db:"status"`
	ApproverID     uuid.NullUUID   `db:"approver_id"`
	MonthlyPayment decimal.Decimal `db:"monthly_payment"`
	TotalRepayment decimal.Decimal `db:"total_repayment"`
	AmountPaid     decimal.Decimal `db:"amount_paid"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// Remaining is the outstanding balance, never negative.
func (l *Loan) Remaining() decimal.Decimal {
	remaining := l.TotalRepayment.Sub(l.AmountPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

type LoanCreate struct {
	BorrowerID     uuid.UUID
	Type           Type
	Principal      decimal.Decimal
	InterestRate   decimal.Decimal
	TermMonths     int
	MonthlyPayment decimal.Decimal
	TotalRepayment decimal.Decimal
}

// LoanUpdate changes only the fields that are set.
type LoanUpdate struct {
	Status     omit.Val[Status]
	ApproverID omit.Val[uuid.UUID]
	AmountPaid omit.Val[decimal.Decimal]
}

// Apply copies the set fields onto l.
func (u *LoanUpdate) Apply(l *Loan, now time.Time) {
	if v, ok := u.Status.Get(); ok {
		l.Status = v
	}
	if v, ok := u.ApproverID.Get(); ok {
		l.ApproverID = uuid.NullUUID{UUID: v, Valid: true}
	}
	if v, ok := u.AmountPaid.Get(); ok {
		l.AmountPaid = v
	}
	l.UpdatedAt = now
}

type LoanFilter struct {
	BorrowerID *uuid.UUID
	Statuses   []Status
	Limit      int
	Offset     int
}

// Matches applies every constraint except paging.
func (f *LoanFilter) Matches(l *Loan) bool {
	if f == nil {
		return true
	}
	if f.BorrowerID != nil && l.BorrowerID != *f.BorrowerID {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if l.Status == s {
			return true
		}
	}
	return false
}

type LoanCursor struct {
	Position int
	Limit    int
}

type LoanListResult struct {
	Loans      []*Loan
	NextCursor *LoanCursor
}

// Summary totals the principal of a group of loans.
type Summary struct {
	Count int
	Total decimal.Decimal
}

type IReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	List(ctx context.Context, filter *LoanFilter) (*LoanListResult, error)
	SummarizeByStatus(ctx context.Context) (map[Status]Summary, error)
}

type IWriter interface {
	IReader
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Loan, error)
	Insert(ctx context.Context, create *LoanCreate) (*Loan, error)
	Update(ctx context.Context, id uuid.UUID, update *LoanUpdate) error
}

const (
	table       = "loans"
	DefaultPage = 20
)

var columns = []any{
	"id", "borrower_id", "type", "principal", "interest_rate", "term_months", "status",
	"approver_id", "monthly_payment", "total_repayment", "amount_paid", "created_at", "updated_at",
}

// Page trims a limit+1 result set down to limit and builds the next cursor.
func Page(rows []*Loan, filter *LoanFilter) *LoanListResult {
	limit, offset := Bounds(filter)
	if len(rows) == 0 {
		return &LoanListResult{}
	}

	var nextCursor *LoanCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &LoanCursor{
			Position: offset + limit,
			Limit:    limit,
		}
	}
	return &LoanListResult{Loans: rows, NextCursor: nextCursor}
}

func Bounds(filter *LoanFilter) (int, int) {
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
