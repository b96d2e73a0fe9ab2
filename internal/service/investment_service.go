package service

import (
	"context"
	"errors"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/investing"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
)

const matureBatch = 100

type InvestmentService struct {
	storage  *storage.Storage
	operator processor
	opts     Options
}

func NewInvestmentService(store *storage.Storage, op processor, opts Options) *InvestmentService {
	return &InvestmentService{storage: store, operator: op, opts: opts}
}

func (s *InvestmentService) Guidance(ctx context.Context, caller auth.Identity, t investment.Type, amount decimal.Decimal, durationMonths int) (investing.Guidance, error) {
	if _, err := investment.ParseType(string(t)); err != nil {
		return investing.Guidance{}, apperr.Wrap(apperr.InvalidArgument, "investment type", err)
	}
	if _, err := investing.Project(amount, decimal.Zero, durationMonths, s.opts.Now()); err != nil {
		return investing.Guidance{}, err
	}

	acc, err := s.storage.GetAccount(ctx, caller.AccountID)
	if err != nil {
		return investing.Guidance{}, err
	}
	return investing.Guide(t, amount, durationMonths, acc.Balance)
}

// Create books an investment for the caller. An unset expectedReturn falls back to the type's default rate.
func (s *InvestmentService) Create(ctx context.Context, caller auth.Identity, t investment.Type, amount decimal.Decimal, frequency investment.Frequency, durationMonths int, expectedReturn omit.Val[decimal.Decimal]) (*investment.Investment, error) {
	order := investing.Order{
		OwnerID:        caller.AccountID,
		Type:           t,
		Amount:         amount,
		Frequency:      frequency,
		DurationMonths: durationMonths,
		ExpectedReturn: expectedReturn,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	action := &actions.CreateInvestment{Order: order, Now: s.opts.Now()}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Result, nil
}

func (s *InvestmentService) Cancel(ctx context.Context, caller auth.Identity, investmentID uuid.UUID) (*investment.Investment, error) {
	action := &actions.CancelInvestment{
		InvestmentID: investmentID,
		CallerID:     caller.AccountID,
		Penalty:      s.opts.CancelPenalty,
	}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Result, nil
}

// MatureDue matures every active investment whose maturity date has passed, one unit each.
// Investments already settled by a concurrent sweep are skipped. Other failures are collected
// and the sweep carries on.
func (s *InvestmentService) MatureDue(ctx context.Context, caller auth.Identity) ([]*investment.Investment, error) {
	if !caller.Role.CanAdminister() {
		return nil, apperr.Newf(apperr.Unauthorized, "role %s cannot run the maturity sweep", caller.Role)
	}
	now := s.opts.Now()

	var due []*investment.Investment
	offset := 0
	for {
		result, err := s.storage.Investments.List(ctx, &investment.InvestmentFilter{
			Statuses:      []investment.Status{investment.StatusActive},
			MaturesBefore: &now,
			Limit:         matureBatch,
			Offset:        offset,
		})
		if err != nil {
			return nil, storage.StoreError("list due investments", err)
		}
		due = append(due, result.Investments...)
		if result.NextCursor == nil {
			break
		}
		offset = result.NextCursor.Position
	}

	var (
		matured []*investment.Investment
		errs    []error
	)
	for _, inv := range due {
		action := &actions.MatureInvestment{InvestmentID: inv.ID, Now: now}
		err := s.operator.Process(ctx, action)
		if apperr.Is(err, apperr.InvalidState) {
			continue
		}
		if err != nil {
			logrus.WithError(err).WithField("investmentID", inv.ID.String()).Error("InvestmentService.MatureDue: failed to mature investment")
			errs = append(errs, err)
			continue
		}
		matured = append(matured, action.Result)
	}
	return matured, errors.Join(errs...)
}

func (s *InvestmentService) GetInvestment(ctx context.Context, caller auth.Identity, investmentID uuid.UUID) (*investment.Investment, error) {
	inv, err := s.storage.Investments.FindByID(ctx, investmentID)
	if errors.Is(err, investment.ErrNotFound) {
		return nil, apperr.Newf(apperr.InvestmentNotFound, "investment %s not found", investmentID)
	}
	if err != nil {
		return nil, storage.StoreError("find investment", err)
	}
	if !caller.CanAccess(inv.OwnerID) {
		return nil, apperr.Newf(apperr.InvestmentNotFound, "investment %s not found", investmentID)
	}
	return inv, nil
}

func (s *InvestmentService) ListInvestments(ctx context.Context, caller auth.Identity, statuses []investment.Status, cursor *Cursor) ([]*investment.Investment, *Cursor, error) {
	limit, offset := cursor.bounds()
	filter := &investment.InvestmentFilter{Statuses: statuses, Limit: limit, Offset: offset}
	if !caller.Role.CanViewAll() {
		own := caller.AccountID
		filter.OwnerID = &own
	}

	result, err := s.storage.Investments.List(ctx, filter)
	if err != nil {
		return nil, nil, storage.StoreError("list investments", err)
	}

	var next *Cursor
	if result.NextCursor != nil {
		next = &Cursor{Position: result.NextCursor.Position, Limit: result.NextCursor.Limit}
	}
	return result.Investments, next, nil
}
