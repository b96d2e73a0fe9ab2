package loan

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
)

type LoanIDInput struct {
	ID string `path:"id" doc:"Loan UUID"`
}

type RepayLoanInput struct {
	ID   string `path:"id" doc:"Loan UUID"`
	Body struct {
		Amount string `json:"amount" minLength:"1" doc:"Positive decimal repayment"`
	}
}

type LoanOutput struct {
	Body Loan
}

type loanReviewer interface {
	Approve(ctx context.Context, caller auth.Identity, loanID uuid.UUID) (*loan.Loan, error)
	Reject(ctx context.Context, caller auth.Identity, loanID uuid.UUID) (*loan.Loan, error)
	Repay(ctx context.Context, caller auth.Identity, loanID uuid.UUID, amount decimal.Decimal) (*loan.Loan, error)
}

// ReviewLoanHandler handles the loan transitions after a request: approve, reject and repay.
type ReviewLoanHandler struct {
	LoanService loanReviewer
}

func NewReviewLoanHandler(svc loanReviewer) *ReviewLoanHandler {
	return &ReviewLoanHandler{LoanService: svc}
}

func (h *ReviewLoanHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "approve-loan",
		Method:      http.MethodPost,
		Path:        "/v1/loan/{id}/approve",
		Summary:     "Approve a loan",
		Description: "Approves a pending loan and disburses the principal to the borrower. Requires an admin or master role.",
		Tags:        []string{"Loans"},
	}, h.handleApprove)

	huma.Register(api, huma.Operation{
		OperationID: "reject-loan",
		Method:      http.MethodPost,
		Path:        "/v1/loan/{id}/reject",
		Summary:     "Reject a loan",
		Tags:        []string{"Loans"},
	}, h.handleReject)

	huma.Register(api, huma.Operation{
		OperationID: "repay-loan",
		Method:      http.MethodPost,
		Path:        "/v1/loan/{id}/repay",
		Summary:     "Repay a loan",
		Description: "Sends a repayment from the borrower to the approver. The loan is paid once repayments reach the total.",
		Tags:        []string{"Loans"},
	}, h.handleRepay)
}

func (h *ReviewLoanHandler) transition(ctx context.Context, rawID, timing string, fn func(auth.Identity, uuid.UUID) (*loan.Loan, error)) (*LoanOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := respond.ParseID("loan id", rawID)
	if err != nil {
		return nil, err
	}

	stopTimer := logging.Time(ctx, timing)
	l, err := fn(caller, id)
	stopTimer()
	if err != nil {
		return nil, respond.Error("failed to update loan", err)
	}

	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("loanID", l.ID.String())
		logData.AddData("loanStatus", string(l.Status))
	}
	return &LoanOutput{Body: fromStorage(l)}, nil
}

func (h *ReviewLoanHandler) handleApprove(ctx context.Context, input *LoanIDInput) (*LoanOutput, error) {
	return h.transition(ctx, input.ID, "approveLoanMs", func(caller auth.Identity, id uuid.UUID) (*loan.Loan, error) {
		return h.LoanService.Approve(ctx, caller, id)
	})
}

func (h *ReviewLoanHandler) handleReject(ctx context.Context, input *LoanIDInput) (*LoanOutput, error) {
	return h.transition(ctx, input.ID, "rejectLoanMs", func(caller auth.Identity, id uuid.UUID) (*loan.Loan, error) {
		return h.LoanService.Reject(ctx, caller, id)
	})
}

func (h *ReviewLoanHandler) handleRepay(ctx context.Context, input *RepayLoanInput) (*LoanOutput, error) {
	amount, err := respond.ParseAmount("amount", input.Body.Amount)
	if err != nil {
		return nil, err
	}
	return h.transition(ctx, input.ID, "repayLoanMs", func(caller auth.Identity, id uuid.UUID) (*loan.Loan, error) {
		return h.LoanService.Repay(ctx, caller, id, amount)
	})
}
