package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

// AccountService handles account business logic.
type AccountService struct {
	storage  *storage.Storage
	operator processor
}

func NewAccountService(store *storage.Storage, op processor) *AccountService {
	return &AccountService{storage: store, operator: op}
}

// CreateAccount opens an account with a zero balance.
func (s *AccountService) CreateAccount(ctx context.Context, caller auth.Identity, name string, role auth.Role) (*account.Account, error) {
	if !caller.Role.CanAdminister() {
		return nil, apperr.Newf(apperr.Unauthorized, "role %s cannot open accounts", caller.Role)
	}
	action := &actions.CreateAccount{Name: name, Role: role}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Result, nil
}

func (s *AccountService) GetAccount(ctx context.Context, caller auth.Identity, id uuid.UUID) (*account.Account, error) {
	if !caller.CanAccess(id) {
		return nil, apperr.Newf(apperr.Unauthorized, "role %s cannot read account %s", caller.Role, id)
	}
	return s.storage.GetAccount(ctx, id)
}

// ListAccounts returns a page of all accounts. Only roles that can view everything may list.
func (s *AccountService) ListAccounts(ctx context.Context, caller auth.Identity, cursor *Cursor) ([]*account.Account, *Cursor, error) {
	if !caller.Role.CanViewAll() {
		return nil, nil, apperr.Newf(apperr.Unauthorized, "role %s cannot list accounts", caller.Role)
	}

	limit, offset := cursor.bounds()
	result, err := s.storage.Accounts.List(ctx, &account.AccountFilter{Limit: limit, Offset: offset})
	if err != nil {
		return nil, nil, storage.StoreError("list accounts", err)
	}

	var next *Cursor
	if result.NextCursor != nil {
		next = &Cursor{Position: result.NextCursor.Position, Limit: result.NextCursor.Limit}
	}
	return result.Accounts, next, nil
}
