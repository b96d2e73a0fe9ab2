package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

type GetAccountInput struct {
	ID string `path:"id" doc:"Account UUID"`
}

type GetAccountOutput struct {
	Body Account
}

type accountGetter interface {
	GetAccount(ctx context.Context, caller auth.Identity, id uuid.UUID) (*account.Account, error)
}

// GetAccountHandler handles GET /v1/account/{id}.
type GetAccountHandler struct {
	AccountService accountGetter
}

func NewGetAccountHandler(svc accountGetter) *GetAccountHandler {
	return &GetAccountHandler{AccountService: svc}
}

func (h *GetAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-account",
		Method:      http.MethodGet,
		Path:        "/v1/account/{id}",
		Summary:     "Get an account",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *GetAccountHandler) handle(ctx context.Context, input *GetAccountInput) (*GetAccountOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := respond.ParseID("account id", input.ID)
	if err != nil {
		return nil, err
	}

	acc, err := h.AccountService.GetAccount(ctx, caller, id)
	if err != nil {
		return nil, respond.Error("failed to get account", err)
	}
	return &GetAccountOutput{Body: fromStorage(acc)}, nil
}
