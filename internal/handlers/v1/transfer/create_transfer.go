package transfer

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
)

type CreateTransferInput struct {
	Body CreateTransferBody
}

type CreateTransferBody struct {
	ReceiverID string `json:"receiverId" doc:"Account UUID to credit"`
	Amount     string `json:"amount" minLength:"1" doc:"Positive decimal amount (e.g. '12.50')"`
	Reason     string `json:"reason,omitempty" maxLength:"255" doc:"Free text reason"`
}

type CreateTransferOutput struct {
	Status int
	Body   Entry
}

type transferer interface {
	Transfer(ctx context.Context, caller auth.Identity, receiverID uuid.UUID, amount decimal.Decimal, reason string) (*entry.Entry, error)
}

// CreateTransferHandler handles POST /v1/transfer.
type CreateTransferHandler struct {
	TransferService transferer
}

func NewCreateTransferHandler(svc transferer) *CreateTransferHandler {
	return &CreateTransferHandler{TransferService: svc}
}

func (h *CreateTransferHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-transfer",
		Method:      http.MethodPost,
		Path:        "/v1/transfer",
		Summary:     "Send money",
		Description: "Moves money from the caller's account to another account. A transfer refused for insufficient funds is recorded as a failed entry.",
		Tags:        []string{"Transfers"},
	}, h.handle)
}

func parseCreateTransferInput(input *CreateTransferInput) (uuid.UUID, decimal.Decimal, error) {
	receiverID, err := respond.ParseID("receiverId", input.Body.ReceiverID)
	if err != nil {
		return uuid.Nil, decimal.Zero, err
	}
	amount, err := respond.ParseAmount("amount", input.Body.Amount)
	if err != nil {
		return uuid.Nil, decimal.Zero, err
	}
	return receiverID, amount, nil
}

func (h *CreateTransferHandler) handle(ctx context.Context, input *CreateTransferInput) (*CreateTransferOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}
	receiverID, amount, err := parseCreateTransferInput(input)
	if err != nil {
		return nil, err
	}

	stopTimer := logging.Time(ctx, "transferMs")
	e, err := h.TransferService.Transfer(ctx, caller, receiverID, amount, input.Body.Reason)
	stopTimer()
	if err != nil {
		return nil, respond.Error("failed to transfer", err)
	}

	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("entryID", e.ID.String())
	}
	return &CreateTransferOutput{Status: http.StatusCreated, Body: fromStorage(e)}, nil
}
