package loan

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
)

type ListLoansInput struct {
	respond.PageInput
	Status []string `query:"status" doc:"Only loans in these statuses"`
}

type ListLoansResponseBody struct {
	Loans      []Loan          `json:"loans" doc:"Page of loans"`
	NextCursor *respond.Cursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

type ListLoansOutput struct {
	Body ListLoansResponseBody
}

type loanReader interface {
	GetLoan(ctx context.Context, caller auth.Identity, loanID uuid.UUID) (*loan.Loan, error)
	ListLoans(ctx context.Context, caller auth.Identity, statuses []loan.Status, cursor *service.Cursor) ([]*loan.Loan, *service.Cursor, error)
}

// ListLoansHandler handles GET /v1/loans and GET /v1/loan/{id}.
type ListLoansHandler struct {
	LoanService loanReader
}

func NewListLoansHandler(svc loanReader) *ListLoansHandler {
	return &ListLoansHandler{LoanService: svc}
}

func (h *ListLoansHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-loans",
		Method:      http.MethodGet,
		Path:        "/v1/loans",
		Summary:     "List loans",
		Description: "Users see their own loans, admin, master and master_assistant roles see every loan.",
		Tags:        []string{"Loans"},
	}, h.handleList)

	huma.Register(api, huma.Operation{
		OperationID: "get-loan",
		Method:      http.MethodGet,
		Path:        "/v1/loan/{id}",
		Summary:     "Get a loan",
		Tags:        []string{"Loans"},
	}, h.handleGet)
}

func (h *ListLoansHandler) handleList(ctx context.Context, input *ListLoansInput) (*ListLoansOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]loan.Status, 0, len(input.Status))
	for _, raw := range input.Status {
		s, err := loan.ParseStatus(raw)
		if err != nil {
			return nil, huma.NewError(http.StatusBadRequest, "invalid status", err)
		}
		statuses = append(statuses, s)
	}

	stopTimer := logging.Time(ctx, "listLoansMs")
	loans, next, err := h.LoanService.ListLoans(ctx, caller, statuses, input.Cursor())
	stopTimer()
	if err != nil {
		return nil, respond.Error("failed to list loans", err)
	}

	resp := ListLoansResponseBody{Loans: make([]Loan, len(loans)), NextCursor: respond.NextCursor(next)}
	for i, l := range loans {
		resp.Loans[i] = fromStorage(l)
	}
	return &ListLoansOutput{Body: resp}, nil
}

func (h *ListLoansHandler) handleGet(ctx context.Context, input *LoanIDInput) (*LoanOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := respond.ParseID("loan id", input.ID)
	if err != nil {
		return nil, err
	}

	l, err := h.LoanService.GetLoan(ctx, caller, id)
	if err != nil {
		return nil, respond.Error("failed to get loan", err)
	}
	return &LoanOutput{Body: fromStorage(l)}, nil
}
