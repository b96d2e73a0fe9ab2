package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

type ListAccountsInput struct {
	respond.PageInput
}

type ListAccountsResponseBody struct {
	Accounts   []Account       `json:"accounts" doc:"Page of accounts"`
	NextCursor *respond.Cursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

type ListAccountsOutput struct {
	Body ListAccountsResponseBody
}

type accountLister interface {
	ListAccounts(ctx context.Context, caller auth.Identity, cursor *service.Cursor) ([]*account.Account, *service.Cursor, error)
}

// ListAccountsHandler handles GET /v1/accounts.
type ListAccountsHandler struct {
	AccountService accountLister
}

func NewListAccountsHandler(svc accountLister) *ListAccountsHandler {
	return &ListAccountsHandler{AccountService: svc}
}

func (h *ListAccountsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-accounts",
		Method:      http.MethodGet,
		Path:        "/v1/accounts",
		Summary:     "List accounts",
		Description: "Returns a paginated list of every account, ordered by name.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *ListAccountsHandler) handle(ctx context.Context, input *ListAccountsInput) (*ListAccountsOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}

	stopTimer := logging.Time(ctx, "listAccountsMs")
	accounts, next, err := h.AccountService.ListAccounts(ctx, caller, input.Cursor())
	stopTimer()
	if err != nil {
		return nil, respond.Error("failed to list accounts", err)
	}

	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("accountCount", len(accounts))
	}

	resp := ListAccountsResponseBody{
		Accounts:   make([]Account, len(accounts)),
		NextCursor: respond.NextCursor(next),
	}
	for i, acc := range accounts {
		resp.Accounts[i] = fromStorage(acc)
	}
	return &ListAccountsOutput{Body: resp}, nil
}
