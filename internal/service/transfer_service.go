package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
	"github.com/carson-networks/ledger-server/internal/transfer"
)

// TransferService moves money between users and reads the ledger.
type TransferService struct {
	storage  *storage.Storage
	operator processor
}

func NewTransferService(store *storage.Storage, op processor) *TransferService {
	return &TransferService{storage: store, operator: op}
}

// Transfer sends amount from the caller to receiverID. A transfer rejected for insufficient
// funds is recorded as a failed entry in a separate unit.
func (s *TransferService) Transfer(ctx context.Context, caller auth.Identity, receiverID uuid.UUID, amount decimal.Decimal, reason string) (*entry.Entry, error) {
	req := transfer.Request{
		SenderID:   caller.AccountID,
		ReceiverID: receiverID,
		Amount:     amount,
		Reason:     reason,
		Kind:       entry.KindTransfer,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	action := &actions.Transfer{Request: req}
	err := s.operator.Process(ctx, action)
	if apperr.Is(err, apperr.InsufficientFunds) {
		s.recordFailure(ctx, req)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return action.Result, nil
}

func (s *TransferService) recordFailure(ctx context.Context, req transfer.Request) {
	if err := s.operator.Process(ctx, &actions.RecordFailedTransfer{Request: req}); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"senderID":   req.SenderID.String(),
			"receiverID": req.ReceiverID.String(),
			"amount":     req.Amount.String(),
		}).Warn("TransferService.recordFailure: could not record failed transfer")
	}
}

type EntryQuery struct {
	AccountID *uuid.UUID
	Kinds     []entry.Kind
	Statuses  []entry.Status
	Since     *time.Time
	Until     *time.Time
	Order     entry.Order
}

// ListEntries returns a page of entries. Callers that cannot view everything only ever see
// entries involving their own account. A query without Until is pinned to the store's entry
// horizon, and the next cursor carries that bound.
func (s *TransferService) ListEntries(ctx context.Context, caller auth.Identity, query EntryQuery, cursor *Cursor) ([]*entry.Entry, *Cursor, error) {
	if query.AccountID != nil && !caller.CanAccess(*query.AccountID) {
		return nil, nil, apperr.Newf(apperr.Unauthorized, "role %s cannot read entries of account %s", caller.Role, *query.AccountID)
	}
	if query.AccountID == nil && !caller.Role.CanViewAll() {
		own := caller.AccountID
		query.AccountID = &own
	}

	until := query.Until
	if until == nil {
		horizon, err := s.storage.Entries.Horizon(ctx)
		if err != nil {
			return nil, nil, storage.StoreError("pin entry horizon", err)
		}
		until = &horizon
	}

	limit, offset := cursor.bounds()
	rows, err := s.storage.CollectEntries(ctx, entry.EntryFilter{
		AccountID: query.AccountID,
		Kinds:     query.Kinds,
		Statuses:  query.Statuses,
		Since:     query.Since,
		Until:     until,
		Order:     query.Order,
		Limit:     limit + 1,
		Offset:    offset,
	})
	if err != nil {
		return nil, nil, err
	}

	entries, next := page(rows, limit, offset)
	if next != nil {
		next.Until = until
	}
	return entries, next, nil
}
