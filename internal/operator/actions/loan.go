package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/lending"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
)

type RequestLoan struct {
	Application lending.Application

	Result *loan.Loan
	IAction
}

func (r *RequestLoan) Perform(ctx context.Context, writer *storage.Writer) error {
	l, err := lending.Request(ctx, writer, r.Application)
	if err != nil {
		return err
	}
	r.Result = l
	return nil
}

type ApproveLoan struct {
	LoanID   uuid.UUID
	Approver auth.Identity

	Result *loan.Loan
	IAction
}

func (a *ApproveLoan) Perform(ctx context.Context, writer *storage.Writer) error {
	l, err := lending.Approve(ctx, writer, a.LoanID, a.Approver)
	if err != nil {
		return err
	}
	a.Result = l
	return nil
}

type RejectLoan struct {
	LoanID   uuid.UUID
	Approver auth.Identity

	Result *loan.Loan
	IAction
}

func (r *RejectLoan) Perform(ctx context.Context, writer *storage.Writer) error {
	l, err := lending.Reject(ctx, writer, r.LoanID, r.Approver)
	if err != nil {
		return err
	}
	r.Result = l
	return nil
}

type RepayLoan struct {
	LoanID   uuid.UUID
	CallerID uuid.UUID
	Amount   decimal.Decimal

	Result *loan.Loan
	IAction
}

func (r *RepayLoan) Perform(ctx context.Context, writer *storage.Writer) error {
	l, err := lending.Repay(ctx, writer, r.LoanID, r.CallerID, r.Amount)
	if err != nil {
		return err
	}
	r.Result = l
	return nil
}
