// Package transfer moves money between accounts. It is the only code that changes balances.
package transfer

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
)

type Request struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Amount     decimal.Decimal
	Reason     string
	Kind       entry.Kind
}

// posting is the balance change one request applies to a single account.
type posting struct {
	accountID uuid.UUID
	delta     decimal.Decimal
}

// Validate checks the request shape without touching the store.
func (r Request) Validate() error {
	if !r.Amount.IsPositive() {
		return apperr.Newf(apperr.InvalidAmount, "amount must be positive, got %s", r.Amount.String())
	}
	if r.SenderID == uuid.Nil || r.ReceiverID == uuid.Nil {
		return apperr.New(apperr.InvalidArgument, "sender and receiver are required")
	}

	switch r.Kind {
	case entry.KindTransfer, entry.KindLoanRepayment:
		if r.SenderID == r.ReceiverID {
			return apperr.Newf(apperr.InvalidArgument, "%s requires distinct sender and receiver", r.Kind)
		}
	case entry.KindLoanDisbursement:
		// The approver is recorded as sender but never debited, so approving one's own loan is allowed.
	case entry.KindInvestment, entry.KindWithdrawal:
		if r.SenderID != r.ReceiverID {
			return apperr.Newf(apperr.InvalidArgument, "%s is a self-directed movement", r.Kind)
		}
	default:
		return apperr.Newf(apperr.InvalidArgument, "unknown entry kind %q", r.Kind)
	}
	return nil
}

// postings returns the balance changes for the request, debits first.
//
// A disbursement credits the borrower without debiting the approver: approved loan capital
// enters the ledger from outside. Investment and withdrawal move money between an account's
// balance and its investment positions, which are tracked outside the balance.
func (r Request) postings() []posting {
	switch r.Kind {
	case entry.KindTransfer, entry.KindLoanRepayment:
		return []posting{
			{accountID: r.SenderID, delta: r.Amount.Neg()},
			{accountID: r.ReceiverID, delta: r.Amount},
		}
	case entry.KindLoanDisbursement:
		return []posting{{accountID: r.ReceiverID, delta: r.Amount}}
	case entry.KindInvestment:
		return []posting{{accountID: r.SenderID, delta: r.Amount.Neg()}}
	case entry.KindWithdrawal:
		return []posting{{accountID: r.ReceiverID, delta: r.Amount}}
	default:
		return nil
	}
}

// Execute applies req inside the writer's unit: it locks both accounts, re-checks funds on
// the locked rows, adjusts balances and appends one completed entry. Any error leaves the
// unit to be rolled back by the caller.
func Execute(ctx context.Context, w *storage.Writer, req Request) (*entry.Entry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := w.LockAccounts(ctx, req.SenderID, req.ReceiverID); err != nil {
		return nil, err
	}

	for _, p := range req.postings() {
		if _, err := w.AdjustBalance(ctx, p.accountID, p.delta); err != nil {
			return nil, err
		}
	}

	return w.AppendEntry(ctx, &entry.EntryCreate{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Amount:     req.Amount,
		Reason:     req.Reason,
		Kind:       req.Kind,
		Status:     entry.StatusCompleted,
	})
}

// RecordFailure appends a failed entry for a rejected request. It changes no balances and
// runs in its own unit, after the failed one has rolled back.
func RecordFailure(ctx context.Context, w *storage.Writer, req Request) (*entry.Entry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := w.LockAccounts(ctx, req.SenderID, req.ReceiverID); err != nil {
		return nil, err
	}

	return w.AppendEntry(ctx, &entry.EntryCreate{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Amount:     req.Amount,
		Reason:     req.Reason,
		Kind:       req.Kind,
		Status:     entry.StatusFailed,
	})
}
