package service

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/lending"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/ratetable"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
)

type LoanService struct {
	storage  *storage.Storage
	operator processor
	rates    *ratetable.Table
	opts     Options
}

func NewLoanService(store *storage.Storage, op processor, rates *ratetable.Table, opts Options) *LoanService {
	if rates == nil {
		rates = ratetable.New(store.Settings, nil, 0)
	}
	return &LoanService{storage: store, operator: op, rates: rates, opts: opts}
}

// Guidance projects a prospective loan for the caller at the current rate for loanType.
func (s *LoanService) Guidance(ctx context.Context, caller auth.Identity, loanType loan.Type, principal decimal.Decimal, termMonths int) (lending.Guidance, error) {
	if _, err := loan.ParseType(string(loanType)); err != nil {
		return lending.Guidance{}, apperr.Wrap(apperr.InvalidArgument, "loan type", err)
	}
	if _, err := lending.Amortize(principal, decimal.Zero, termMonths); err != nil {
		return lending.Guidance{}, err
	}

	rate, err := s.rates.Rate(ctx, loanType)
	if err != nil {
		return lending.Guidance{}, err
	}
	acc, err := s.storage.GetAccount(ctx, caller.AccountID)
	if err != nil {
		return lending.Guidance{}, err
	}
	return lending.Guide(principal, rate, termMonths, acc.Balance, s.opts.SafetyMultiplier)
}

// Request files a pending loan for the caller at the current rate for loanType.
func (s *LoanService) Request(ctx context.Context, caller auth.Identity, loanType loan.Type, principal decimal.Decimal, termMonths int) (*loan.Loan, error) {
	app := lending.Application{
		BorrowerID:   caller.AccountID,
		Type:         loanType,
		Principal:    principal,
		InterestRate: decimal.Zero,
		TermMonths:   termMonths,
	}
	if err := app.Validate(); err != nil {
		return nil, err
	}

	rate, err := s.rates.Rate(ctx, loanType)
	if err != nil {
		return nil, err
	}
	app.InterestRate = rate

	action := &actions.RequestLoan{Application: app}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Result, nil
}

func (s *LoanService) Approve(ctx context.Context, caller auth.Identity, loanID uuid.UUID) (*loan.Loan, error) {
	if !caller.Role.CanApproveLoans() {
		return nil, apperr.Newf(apperr.Unauthorized, "role %s cannot approve loans", caller.Role)
	}
	action := &actions.ApproveLoan{LoanID: loanID, Approver: caller}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Result, nil
}

func (s *LoanService) Reject(ctx context.Context, caller auth.Identity, loanID uuid.UUID) (*loan.Loan, error) {
	if !caller.Role.CanApproveLoans() {
		return nil, apperr.Newf(apperr.Unauthorized, "role %s cannot reject loans", caller.Role)
	}
	action := &actions.RejectLoan{LoanID: loanID, Approver: caller}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Result, nil
}

func (s *LoanService) Repay(ctx context.Context, caller auth.Identity, loanID uuid.UUID, amount decimal.Decimal) (*loan.Loan, error) {
	if !amount.IsPositive() {
		return nil, apperr.Newf(apperr.InvalidAmount, "repayment must be positive, got %s", amount.String())
	}
	action := &actions.RepayLoan{LoanID: loanID, CallerID: caller.AccountID, Amount: amount}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Result, nil
}

// GetLoan returns a loan visible to the caller. Loans of other borrowers are reported missing.
func (s *LoanService) GetLoan(ctx context.Context, caller auth.Identity, loanID uuid.UUID) (*loan.Loan, error) {
	l, err := s.storage.Loans.FindByID(ctx, loanID)
	if errors.Is(err, loan.ErrNotFound) {
		return nil, apperr.Newf(apperr.LoanNotFound, "loan %s not found", loanID)
	}
	if err != nil {
		return nil, storage.StoreError("find loan", err)
	}
	if !caller.CanAccess(l.BorrowerID) {
		return nil, apperr.Newf(apperr.LoanNotFound, "loan %s not found", loanID)
	}
	return l, nil
}

// ListLoans pages the caller's loans, or every loan for roles that can view everything.
func (s *LoanService) ListLoans(ctx context.Context, caller auth.Identity, statuses []loan.Status, cursor *Cursor) ([]*loan.Loan, *Cursor, error) {
	limit, offset := cursor.bounds()
	filter := &loan.LoanFilter{Statuses: statuses, Limit: limit, Offset: offset}
	if !caller.Role.CanViewAll() {
		own := caller.AccountID
		filter.BorrowerID = &own
	}

	result, err := s.storage.Loans.List(ctx, filter)
	if err != nil {
		return nil, nil, storage.StoreError("list loans", err)
	}

	var next *Cursor
	if result.NextCursor != nil {
		next = &Cursor{Position: result.NextCursor.Position, Limit: result.NextCursor.Limit}
	}
	return result.Loans, next, nil
}
