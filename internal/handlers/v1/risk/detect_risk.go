package risk

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/risk"
)

type DetectRiskInput struct {
	AccountID string `path:"accountId" doc:"Account UUID"`
}

type DetectRiskResponseBody struct {
	AccountID  string   `json:"accountId"`
	Since      string   `json:"since" doc:"RFC3339 start of the window that was scored"`
	Count      int      `json:"count" doc:"Entries sent during the window"`
	Total      string   `json:"total" doc:"Sum of amounts sent during the window"`
	Alerts     []string `json:"alerts"`
	Suspicious bool     `json:"suspicious"`
	Score      int      `json:"score" doc:"0 to 100"`
}

type DetectRiskOutput struct {
	Body DetectRiskResponseBody
}

type riskDetector interface {
	Detect(ctx context.Context, caller auth.Identity, accountID uuid.UUID) (risk.Report, error)
}

// DetectRiskHandler handles GET /v1/risk/{accountId}.
type DetectRiskHandler struct {
	RiskService riskDetector
}

func NewDetectRiskHandler(svc riskDetector) *DetectRiskHandler {
	return &DetectRiskHandler{RiskService: svc}
}

func (h *DetectRiskHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "detect-risk",
		Method:      http.MethodGet,
		Path:        "/v1/risk/{accountId}",
		Summary:     "Score recent account activity",
		Description: "Scores what the account sent during the detection window and lists the rules it tripped.",
		Tags:        []string{"Risk"},
	}, h.handle)
}

func (h *DetectRiskHandler) handle(ctx context.Context, input *DetectRiskInput) (*DetectRiskOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}
	accountID, err := respond.ParseID("account id", input.AccountID)
	if err != nil {
		return nil, err
	}

	stopTimer := logging.Time(ctx, "detectRiskMs")
	report, err := h.RiskService.Detect(ctx, caller, accountID)
	stopTimer()
	if err != nil {
		return nil, respond.Error("failed to score account activity", err)
	}

	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("riskScore", report.Score)
	}
	return &DetectRiskOutput{Body: DetectRiskResponseBody{
		AccountID:  report.AccountID.String(),
		Since:      respond.FormatTime(report.Since),
		Count:      report.Count,
		Total:      report.Total.String(),
		Alerts:     report.Alerts,
		Suspicious: report.Suspicious,
		Score:      report.Score,
	}}, nil
}
