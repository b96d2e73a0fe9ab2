package investing

import (
	"context"
	"errors"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
	"github.com/carson-networks/ledger-server/internal/transfer"
)

const DefaultCancelPenalty = 5

type Order struct {
	OwnerID        uuid.UUID
	Type           investment.Type
	Amount         decimal.Decimal
	Frequency      investment.Frequency
	DurationMonths int
	// ExpectedReturn overrides the type's default annual rate when set.
	ExpectedReturn omit.Val[decimal.Decimal]
}

func (o Order) Validate() error {
	if !o.Amount.IsPositive() {
		return apperr.Newf(apperr.InvalidAmount, "amount must be positive, got %s", o.Amount.String())
	}
	if o.DurationMonths <= 0 {
		return apperr.Newf(apperr.InvalidArgument, "duration must be at least one month, got %d", o.DurationMonths)
	}
	if _, err := investment.ParseType(string(o.Type)); err != nil {
		return apperr.Wrap(apperr.InvalidArgument, "investment type", err)
	}
	if _, err := investment.ParseFrequency(string(o.Frequency)); err != nil {
		return apperr.Wrap(apperr.InvalidArgument, "investment frequency", err)
	}
	if o.OwnerID == uuid.Nil {
		return apperr.New(apperr.InvalidArgument, "owner is required")
	}
	if rate, ok := o.ExpectedReturn.Get(); ok && rate.IsNegative() {
		return apperr.Newf(apperr.InvalidArgument, "expected return cannot be negative, got %s", rate.String())
	}
	return nil
}

// Rate is the annual return the order is booked at.
func (o Order) Rate() decimal.Decimal {
	return o.ExpectedReturn.GetOr(ExpectedReturn(o.Type))
}

// Create debits the owner and opens an active investment at the order's rate.
func Create(ctx context.Context, w *storage.Writer, order Order, now time.Time) (*investment.Investment, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	rate := order.Rate()
	projection, err := Project(order.Amount, rate, order.DurationMonths, now)
	if err != nil {
		return nil, err
	}

	_, err = transfer.Execute(ctx, w, transfer.Request{
		SenderID:   order.OwnerID,
		ReceiverID: order.OwnerID,
		Amount:     order.Amount,
		Reason:     string(order.Type) + " investment",
		Kind:       entry.KindInvestment,
	})
	if err != nil {
		return nil, err
	}

	created, err := w.Investment.Insert(ctx, &investment.InvestmentCreate{
		OwnerID:        order.OwnerID,
		Type:           order.Type,
		Amount:         order.Amount,
		Frequency:      order.Frequency,
		DurationMonths: order.DurationMonths,
		ExpectedReturn: rate,
		MaturityAmount: projection.MaturityAmount,
		MaturityDate:   projection.MaturityDate,
	})
	if err != nil {
		return nil, storage.StoreError("insert investment", err)
	}
	return created, nil
}

// Cancel closes an active investment early and refunds the amount less penaltyPercent.
func Cancel(ctx context.Context, w *storage.Writer, investmentID, callerID uuid.UUID, penaltyPercent decimal.Decimal) (*investment.Investment, error) {
	if penaltyPercent.IsNegative() || penaltyPercent.GreaterThan(hundred) {
		return nil, apperr.Newf(apperr.InvalidArgument, "penalty must be between 0 and 100, got %s", penaltyPercent.String())
	}

	inv, err := lockInvestment(ctx, w, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.OwnerID != callerID {
		return nil, apperr.Newf(apperr.InvestmentNotFound, "investment %s not found", investmentID)
	}
	if inv.Status != investment.StatusActive {
		return nil, apperr.Newf(apperr.InvalidState, "investment %s is %s, only active investments can be cancelled", investmentID, inv.Status)
	}

	refund := inv.Amount.Mul(hundred.Sub(penaltyPercent)).Div(hundred)
	if refund.IsPositive() {
		_, err = transfer.Execute(ctx, w, transfer.Request{
			SenderID:   inv.OwnerID,
			ReceiverID: inv.OwnerID,
			Amount:     refund,
			Reason:     "investment cancellation " + inv.ID.String(),
			Kind:       entry.KindWithdrawal,
		})
		if err != nil {
			return nil, err
		}
	}

	return applyUpdate(ctx, w, inv, &investment.InvestmentUpdate{Status: omit.From(investment.StatusCancelled)})
}

// Mature credits the maturity amount back to the owner once the maturity date has passed.
func Mature(ctx context.Context, w *storage.Writer, investmentID uuid.UUID, now time.Time) (*investment.Investment, error) {
	inv, err := lockInvestment(ctx, w, investmentID)
	if err != nil {
		return nil, err
	}
	if inv.Status != investment.StatusActive {
		return nil, apperr.Newf(apperr.InvalidState, "investment %s is %s, only active investments can mature", investmentID, inv.Status)
	}
	if now.Before(inv.MaturityDate) {
		return nil, apperr.Newf(apperr.InvalidState, "investment %s matures on %s", investmentID, inv.MaturityDate.Format(time.DateOnly))
	}

	_, err = transfer.Execute(ctx, w, transfer.Request{
		SenderID:   inv.OwnerID,
		ReceiverID: inv.OwnerID,
		Amount:     inv.MaturityAmount,
		Reason:     "investment maturity " + inv.ID.String(),
		Kind:       entry.KindWithdrawal,
	})
	if err != nil {
		return nil, err
	}

	return applyUpdate(ctx, w, inv, &investment.InvestmentUpdate{Status: omit.From(investment.StatusMatured)})
}

func lockInvestment(ctx context.Context, w *storage.Writer, id uuid.UUID) (*investment.Investment, error) {
	inv, err := w.Investment.FindByIDForUpdate(ctx, id)
	if errors.Is(err, investment.ErrNotFound) {
		return nil, apperr.Newf(apperr.InvestmentNotFound, "investment %s not found", id)
	}
	if err != nil {
		return nil, storage.StoreError("lock investment", err)
	}
	return inv, nil
}

func applyUpdate(ctx context.Context, w *storage.Writer, inv *investment.Investment, update *investment.InvestmentUpdate) (*investment.Investment, error) {
	if err := w.Investment.Update(ctx, inv.ID, update); err != nil {
		return nil, storage.StoreError("update investment", err)
	}

	updated, err := w.Investment.FindByID(ctx, inv.ID)
	if err != nil {
		return nil, storage.StoreError("reload investment", err)
	}
	return updated, nil
}
