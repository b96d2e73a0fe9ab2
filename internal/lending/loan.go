package lending

import (
	"context"
	"errors"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
	"github.com/carson-networks/ledger-server/internal/transfer"
)

type Application struct {
	BorrowerID   uuid.UUID
	Type         loan.Type
	Principal    decimal.Decimal
	InterestRate decimal.Decimal
	TermMonths   int
}

func (a Application) Validate() error {
	if _, err := loan.ParseType(string(a.Type)); err != nil {
		return apperr.Wrap(apperr.InvalidArgument, "loan type", err)
	}
	_, err := Amortize(a.Principal, a.InterestRate, a.TermMonths)
	return err
}

// Request records a pending loan with its schedule fixed at the resolved rate. No money moves.
func Request(ctx context.Context, w *storage.Writer, app Application) (*loan.Loan, error) {
	if err := app.Validate(); err != nil {
		return nil, err
	}
	schedule, err := Amortize(app.Principal, app.InterestRate, app.TermMonths)
	if err != nil {
		return nil, err
	}

	if _, err := w.LockAccounts(ctx, app.BorrowerID); err != nil {
		return nil, err
	}

	created, err := w.Loan.Insert(ctx, &loan.LoanCreate{
		BorrowerID:     app.BorrowerID,
		Type:           app.Type,
		Principal:      app.Principal,
		InterestRate:   app.InterestRate,
		TermMonths:     app.TermMonths,
		MonthlyPayment: schedule.MonthlyPayment,
		TotalRepayment: schedule.TotalRepayment,
	})
	if err != nil {
		return nil, storage.StoreError("insert loan", err)
	}
	return created, nil
}

// Approve moves a pending loan to approved and disburses the principal to the borrower.
func Approve(ctx context.Context, w *storage.Writer, loanID uuid.UUID, approver auth.Identity) (*loan.Loan, error) {
	if !approver.Role.CanApproveLoans() {
		return nil, apperr.Newf(apperr.Unauthorized, "role %s cannot approve loans", approver.Role)
	}

	l, err := lockLoan(ctx, w, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != loan.StatusPending {
		return nil, apperr.Newf(apperr.InvalidState, "loan %s is %s, only pending loans can be approved", loanID, l.Status)
	}

	_, err = transfer.Execute(ctx, w, transfer.Request{
		SenderID:   approver.AccountID,
		ReceiverID: l.BorrowerID,
		Amount:     l.Principal,
		Reason:     "loan disbursement " + l.ID.String(),
		Kind:       entry.KindLoanDisbursement,
	})
	if err != nil {
		return nil, err
	}

	update := &loan.LoanUpdate{
		Status:     omit.From(loan.StatusApproved),
		ApproverID: omit.From(approver.AccountID),
	}
	return applyUpdate(ctx, w, l, update)
}

// Reject closes a pending loan without moving money.
func Reject(ctx context.Context, w *storage.Writer, loanID uuid.UUID, approver auth.Identity) (*loan.Loan, error) {
	if !approver.Role.CanApproveLoans() {
		return nil, apperr.Newf(apperr.Unauthorized, "role %s cannot reject loans", approver.Role)
	}

	l, err := lockLoan(ctx, w, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != loan.StatusPending {
		return nil, apperr.Newf(apperr.InvalidState, "loan %s is %s, only pending loans can be rejected", loanID, l.Status)
	}

	update := &loan.LoanUpdate{
		Status:     omit.From(loan.StatusRejected),
		ApproverID: omit.From(approver.AccountID),
	}
	return applyUpdate(ctx, w, l, update)
}

// Repay sends amount from the borrower to the approver and credits it against the loan.
// The loan becomes paid once amount paid reaches the total; any excess is kept, not refunded.
func Repay(ctx context.Context, w *storage.Writer, loanID, callerID uuid.UUID, amount decimal.Decimal) (*loan.Loan, error) {
	if !amount.IsPositive() {
		return nil, apperr.Newf(apperr.InvalidAmount, "repayment must be positive, got %s", amount.String())
	}

	l, err := lockLoan(ctx, w, loanID)
	if err != nil {
		return nil, err
	}
	if l.BorrowerID != callerID {
		return nil, apperr.Newf(apperr.LoanNotFound, "loan %s not found", loanID)
	}
	if l.Status != loan.StatusApproved || !l.ApproverID.Valid {
		return nil, apperr.Newf(apperr.InvalidState, "loan %s is %s, only approved loans can be repaid", loanID, l.Status)
	}

	_, err = transfer.Execute(ctx, w, transfer.Request{
		SenderID:   callerID,
		ReceiverID: l.ApproverID.UUID,
		Amount:     amount,
		Reason:     "loan repayment " + l.ID.String(),
		Kind:       entry.KindLoanRepayment,
	})
	if err != nil {
		return nil, err
	}

	paid := l.AmountPaid.Add(amount)
	update := &loan.LoanUpdate{AmountPaid: omit.From(paid)}
	if paid.GreaterThanOrEqual(l.TotalRepayment) {
		update.Status = omit.From(loan.StatusPaid)
	}
	return applyUpdate(ctx, w, l, update)
}

func lockLoan(ctx context.Context, w *storage.Writer, loanID uuid.UUID) (*loan.Loan, error) {
	l, err := w.Loan.FindByIDForUpdate(ctx, loanID)
	if errors.Is(err, loan.ErrNotFound) {
		return nil, apperr.Newf(apperr.LoanNotFound, "loan %s not found", loanID)
	}
	if err != nil {
		return nil, storage.StoreError("lock loan", err)
	}
	return l, nil
}

func applyUpdate(ctx context.Context, w *storage.Writer, l *loan.Loan, update *loan.LoanUpdate) (*loan.Loan, error) {
	if err := w.Loan.Update(ctx, l.ID, update); err != nil {
		return nil, storage.StoreError("update loan", err)
	}

	updated, err := w.Loan.FindByID(ctx, l.ID)
	if err != nil {
		return nil, storage.StoreError("reload loan", err)
	}
	return updated, nil
}
