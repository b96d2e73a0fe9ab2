package loan

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/lending"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
)

type RequestLoanBody struct {
	Type       string `json:"type" enum:"personal,business,sip,swp" doc:"Loan type, selects the interest rate"`
	Principal  string `json:"principal" minLength:"1" doc:"Positive decimal principal"`
	TermMonths int    `json:"termMonths" minimum:"1" maximum:"600" doc:"Term in months"`
}

type RequestLoanInput struct {
	Body RequestLoanBody
}

type RequestLoanOutput struct {
	Status int
	Body   Loan
}

type GuidanceInput struct {
	Type       string `query:"type" enum:"personal,business,sip,swp" doc:"Loan type"`
	Principal  string `query:"principal" doc:"Positive decimal principal"`
	TermMonths int    `query:"termMonths" minimum:"1" maximum:"600" doc:"Term in months"`
}

type GuidanceBody struct {
	Principal          string `json:"principal"`
	InterestRate       string `json:"interestRate"`
	TermMonths         int    `json:"termMonths"`
	MonthlyPayment     string `json:"monthlyPayment"`
	TotalRepayment     string `json:"totalRepayment"`
	TotalInterest      string `json:"totalInterest"`
	RecommendedMaximum string `json:"recommendedMaximum" doc:"Largest principal considered safe for the caller's balance"`
	Risk               string `json:"risk" doc:"low, medium or high"`
	Recommendation     string `json:"recommendation"`
}

type GuidanceOutput struct {
	Body GuidanceBody
}

type loanRequester interface {
	Request(ctx context.Context, caller auth.Identity, loanType loan.Type, principal decimal.Decimal, termMonths int) (*loan.Loan, error)
	Guidance(ctx context.Context, caller auth.Identity, loanType loan.Type, principal decimal.Decimal, termMonths int) (lending.Guidance, error)
}

// RequestLoanHandler handles POST /v1/loan and GET /v1/loan/guidance.
type RequestLoanHandler struct {
	LoanService loanRequester
}

func NewRequestLoanHandler(svc loanRequester) *RequestLoanHandler {
	return &RequestLoanHandler{LoanService: svc}
}

func (h *RequestLoanHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "request-loan",
		Method:      http.MethodPost,
		Path:        "/v1/loan",
		Summary:     "Request a loan",
		Description: "Files a pending loan for the caller. The rate is fixed at request time and no money moves until approval.",
		Tags:        []string{"Loans"},
	}, h.handleRequest)

	huma.Register(api, huma.Operation{
		OperationID: "loan-guidance",
		Method:      http.MethodGet,
		Path:        "/v1/loan/guidance",
		Summary:     "Preview a loan",
		Description: "Projects the repayment schedule and rates the risk of a prospective loan against the caller's balance.",
		Tags:        []string{"Loans"},
	}, h.handleGuidance)
}

func (h *RequestLoanHandler) handleRequest(ctx context.Context, input *RequestLoanInput) (*RequestLoanOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}
	principal, err := respond.ParseAmount("principal", input.Body.Principal)
	if err != nil {
		return nil, err
	}

	stopTimer := logging.Time(ctx, "requestLoanMs")
	l, err := h.LoanService.Request(ctx, caller, loan.Type(input.Body.Type), principal, input.Body.TermMonths)
	stopTimer()
	if err != nil {
		return nil, respond.Error("failed to request loan", err)
	}

	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("loanID", l.ID.String())
	}
	return &RequestLoanOutput{Status: http.StatusCreated, Body: fromStorage(l)}, nil
}

func (h *RequestLoanHandler) handleGuidance(ctx context.Context, input *GuidanceInput) (*GuidanceOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}
	principal, err := respond.ParseAmount("principal", input.Principal)
	if err != nil {
		return nil, err
	}

	g, err := h.LoanService.Guidance(ctx, caller, loan.Type(input.Type), principal, input.TermMonths)
	if err != nil {
		return nil, respond.Error("failed to project loan", err)
	}

	rounded := g.Schedule.Rounded()
	return &GuidanceOutput{Body: GuidanceBody{
		Principal:          g.Principal.String(),
		InterestRate:       g.InterestRate.String(),
		TermMonths:         g.TermMonths,
		MonthlyPayment:     rounded.MonthlyPayment.StringFixed(2),
		TotalRepayment:     rounded.TotalRepayment.StringFixed(2),
		TotalInterest:      rounded.TotalInterest.StringFixed(2),
		RecommendedMaximum: g.RecommendedMaximum.StringFixed(2),
		Risk:               string(g.Risk),
		Recommendation:     g.Recommendation,
	}}, nil
}
