package investment

import (
	"context"
	"net/http"

	"github.com/aarondl/opt/omit"
	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/investing"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
)

type CreateInvestmentBody struct {
	Type           string `json:"type" enum:"sip,swp,lumpsum" doc:"Investment type, selects the expected return"`
	Amount         string `json:"amount" minLength:"1" doc:"Positive decimal amount"`
	Frequency      string `json:"frequency,omitempty" enum:"daily,weekly,monthly" doc:"Contribution frequency, default monthly"`
	DurationMonths int    `json:"durationMonths" minimum:"1" maximum:"600" doc:"Duration in months"`
	ExpectedReturn string `json:"expectedReturn,omitempty" doc:"Annual return in percent, defaults by type"`
}

type CreateInvestmentInput struct {
	Body CreateInvestmentBody
}

type CreateInvestmentOutput struct {
	Status int
	Body   Investment
}

type GuidanceInput struct {
	Type           string `query:"type" enum:"sip,swp,lumpsum" doc:"Investment type"`
	Amount         string `query:"amount" doc:"Positive decimal amount"`
	DurationMonths int    `query:"durationMonths" minimum:"1" maximum:"600" doc:"Duration in months"`
}

type GuidanceBody struct {
	Type           string `json:"type"`
	Amount         string `json:"amount"`
	DurationMonths int    `json:"durationMonths"`
	ExpectedReturn string `json:"expectedReturn"`
	MaturityAmount string `json:"maturityAmount"`
	Profit         string `json:"profit"`
	MonthlyProfit  string `json:"monthlyProfit"`
	Ratio          string `json:"ratio" doc:"Amount as a percentage of the caller's balance"`
	Risk           string `json:"risk" doc:"low, medium or high"`
	Recommendation string `json:"recommendation"`
}

type GuidanceOutput struct {
	Body GuidanceBody
}

type investmentCreator interface {
	Create(ctx context.Context, caller auth.Identity, t investment.Type, amount decimal.Decimal, frequency investment.Frequency, durationMonths int, expectedReturn omit.Val[decimal.Decimal]) (*investment.Investment, error)
	Guidance(ctx context.Context, caller auth.Identity, t investment.Type, amount decimal.Decimal, durationMonths int) (investing.Guidance, error)
}

// CreateInvestmentHandler handles POST /v1/investment and GET /v1/investment/guidance.
type CreateInvestmentHandler struct {
	InvestmentService investmentCreator
}

func NewCreateInvestmentHandler(svc investmentCreator) *CreateInvestmentHandler {
	return &CreateInvestmentHandler{InvestmentService: svc}
}

func (h *CreateInvestmentHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-investment",
		Method:      http.MethodPost,
		Path:        "/v1/investment",
		Summary:     "Create an investment",
		Description: "Moves the amount out of the caller's balance and books an active investment.",
		Tags:        []string{"Investments"},
	}, h.handleCreate)

	huma.Register(api, huma.Operation{
		OperationID: "investment-guidance",
		Method:      http.MethodGet,
		Path:        "/v1/investment/guidance",
		Summary:     "Preview an investment",
		Tags:        []string{"Investments"},
	}, h.handleGuidance)
}

func (h *CreateInvestmentHandler) handleCreate(ctx context.Context, input *CreateInvestmentInput) (*CreateInvestmentOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := respond.ParseAmount("amount", input.Body.Amount)
	if err != nil {
		return nil, err
	}
	frequency := investment.FrequencyMonthly
	if input.Body.Frequency != "" {
		frequency = investment.Frequency(input.Body.Frequency)
	}
	var rate omit.Val[decimal.Decimal]
	if input.Body.ExpectedReturn != "" {
		parsed, err := respond.ParseAmount("expectedReturn", input.Body.ExpectedReturn)
		if err != nil {
			return nil, err
		}
		rate = omit.From(parsed)
	}

	stopTimer := logging.Time(ctx, "createInvestmentMs")
	inv, err := h.InvestmentService.Create(ctx, caller, investment.Type(input.Body.Type), amount, frequency, input.Body.DurationMonths, rate)
	stopTimer()
	if err != nil {
		return nil, respond.Error("failed to create investment", err)
	}

	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("investmentID", inv.ID.String())
	}
	return &CreateInvestmentOutput{Status: http.StatusCreated, Body: fromStorage(inv)}, nil
}

func (h *CreateInvestmentHandler) handleGuidance(ctx context.Context, input *GuidanceInput) (*GuidanceOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := respond.ParseAmount("amount", input.Amount)
	if err != nil {
		return nil, err
	}

	g, err := h.InvestmentService.Guidance(ctx, caller, investment.Type(input.Type), amount, input.DurationMonths)
	if err != nil {
		return nil, respond.Error("failed to project investment", err)
	}
	return &GuidanceOutput{Body: GuidanceBody{
		Type:           string(g.Type),
		Amount:         g.Amount.String(),
		DurationMonths: g.DurationMonths,
		ExpectedReturn: g.ExpectedReturn.String(),
		MaturityAmount: g.MaturityAmount.StringFixed(2),
		Profit:         g.Profit.StringFixed(2),
		MonthlyProfit:  g.MonthlyProfit.StringFixed(2),
		Ratio:          g.Ratio.StringFixed(2),
		Risk:           string(g.Risk),
		Recommendation: g.Recommendation,
	}}, nil
}
