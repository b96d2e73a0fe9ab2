package investment

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
)

type ListInvestmentsInput struct {
	respond.PageInput
	Status []string `query:"status" doc:"Only investments in these statuses"`
}

type ListInvestmentsResponseBody struct {
	Investments []Investment    `json:"investments" doc:"Page of investments"`
	NextCursor  *respond.Cursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

type ListInvestmentsOutput struct {
	Body ListInvestmentsResponseBody
}

type investmentReader interface {
	GetInvestment(ctx context.Context, caller auth.Identity, investmentID uuid.UUID) (*investment.Investment, error)
	ListInvestments(ctx context.Context, caller auth.Identity, statuses []investment.Status, cursor *service.Cursor) ([]*investment.Investment, *service.Cursor, error)
}

// ListInvestmentsHandler handles GET /v1/investments and GET /v1/investment/{id}.
type ListInvestmentsHandler struct {
	InvestmentService investmentReader
}

func NewListInvestmentsHandler(svc investmentReader) *ListInvestmentsHandler {
	return &ListInvestmentsHandler{InvestmentService: svc}
}

func (h *ListInvestmentsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-investments",
		Method:      http.MethodGet,
		Path:        "/v1/investments",
		Summary:     "List investments",
		Tags:        []string{"Investments"},
	}, h.handleList)

	huma.Register(api, huma.Operation{
		OperationID: "get-investment",
		Method:      http.MethodGet,
		Path:        "/v1/investment/{id}",
		Summary:     "Get an investment",
		Tags:        []string{"Investments"},
	}, h.handleGet)
}

func (h *ListInvestmentsHandler) handleList(ctx context.Context, input *ListInvestmentsInput) (*ListInvestmentsOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]investment.Status, 0, len(input.Status))
	for _, raw := range input.Status {
		s, err := investment.ParseStatus(raw)
		if err != nil {
			return nil, huma.NewError(http.StatusBadRequest, "invalid status", err)
		}
		statuses = append(statuses, s)
	}

	stopTimer := logging.Time(ctx, "listInvestmentsMs")
	invs, next, err := h.InvestmentService.ListInvestments(ctx, caller, statuses, input.Cursor())
	stopTimer()
	if err != nil {
		return nil, respond.Error("failed to list investments", err)
	}
	return &ListInvestmentsOutput{Body: ListInvestmentsResponseBody{
		Investments: fromStorageList(invs),
		NextCursor:  respond.NextCursor(next),
	}}, nil
}

func (h *ListInvestmentsHandler) handleGet(ctx context.Context, input *InvestmentIDInput) (*InvestmentOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := respond.ParseID("investment id", input.ID)
	if err != nil {
		return nil, err
	}

	inv, err := h.InvestmentService.GetInvestment(ctx, caller, id)
	if err != nil {
		return nil, respond.Error("failed to get investment", err)
	}
	return &InvestmentOutput{Body: fromStorage(inv)}, nil
}
