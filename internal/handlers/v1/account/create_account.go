package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

type CreateAccountInput struct {
	Body CreateAccountBody
}

type CreateAccountBody struct {
	Name string `json:"name" minLength:"1" doc:"Account name"`
	Role string `json:"role,omitempty" enum:"user,admin,master,master_assistant" doc:"Account role, defaults to user"`
}

type CreateAccountOutput struct {
	Status int
	Body   Account
}

type accountCreator interface {
	CreateAccount(ctx context.Context, caller auth.Identity, name string, role auth.Role) (*account.Account, error)
}

// CreateAccountHandler handles POST /v1/account.
type CreateAccountHandler struct {
	AccountService accountCreator
}

func NewCreateAccountHandler(svc accountCreator) *CreateAccountHandler {
	return &CreateAccountHandler{AccountService: svc}
}

func (h *CreateAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-account",
		Method:      http.MethodPost,
		Path:        "/v1/account",
		Summary:     "Open an account",
		Description: "Opens an account with a zero balance. Requires an admin or master role.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *CreateAccountHandler) handle(ctx context.Context, input *CreateAccountInput) (*CreateAccountOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}

	role := auth.RoleUser
	if input.Body.Role != "" {
		if role, err = auth.ParseRole(input.Body.Role); err != nil {
			return nil, huma.NewError(http.StatusBadRequest, "invalid role", err)
		}
	}

	stopTimer := logging.Time(ctx, "createAccountMs")
	acc, err := h.AccountService.CreateAccount(ctx, caller, input.Body.Name, role)
	stopTimer()
	if err != nil {
		return nil, respond.Error("failed to create account", err)
	}

	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("accountID", acc.ID.String())
	}

	return &CreateAccountOutput{Status: http.StatusCreated, Body: fromStorage(acc)}, nil
}
