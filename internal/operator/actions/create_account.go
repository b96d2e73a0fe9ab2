package actions

import (
	"context"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

// CreateAccount opens an account with a zero balance. Funds only arrive through entries.
type CreateAccount struct {
	Name string
	Role auth.Role

	Result *account.Account
	IAction
}

func (c *CreateAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	if c.Name == "" {
		return apperr.New(apperr.InvalidArgument, "account name is required")
	}
	if _, err := auth.ParseRole(string(c.Role)); err != nil {
		return apperr.Wrap(apperr.InvalidArgument, "account role", err)
	}

	created, err := writer.Account.Create(ctx, &account.AccountCreate{Name: c.Name, Role: c.Role})
	if err != nil {
		return storage.StoreError("create account", err)
	}
	c.Result = created
	return nil
}
