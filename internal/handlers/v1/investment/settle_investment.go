package investment

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
)

type InvestmentIDInput struct {
	ID string `path:"id" doc:"Investment UUID"`
}

type InvestmentOutput struct {
	Body Investment
}

type MatureDueResponseBody struct {
	Matured []Investment `json:"matured" doc:"Investments matured by this sweep"`
	Failed  int          `json:"failed" doc:"Number of due investments that could not be matured"`
}

type MatureDueOutput struct {
	Body MatureDueResponseBody
}

type investmentSettler interface {
	Cancel(ctx context.Context, caller auth.Identity, investmentID uuid.UUID) (*investment.Investment, error)
	MatureDue(ctx context.Context, caller auth.Identity) ([]*investment.Investment, error)
}

// SettleInvestmentHandler handles early cancellation and the maturity sweep.
type SettleInvestmentHandler struct {
	InvestmentService investmentSettler
}

func NewSettleInvestmentHandler(svc investmentSettler) *SettleInvestmentHandler {
	return &SettleInvestmentHandler{InvestmentService: svc}
}

func (h *SettleInvestmentHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "cancel-investment",
		Method:      http.MethodPost,
		Path:        "/v1/investment/{id}/cancel",
		Summary:     "Cancel an investment",
		Description: "Cancels an active investment and refunds the amount less the early-exit penalty.",
		Tags:        []string{"Investments"},
	}, h.handleCancel)

	huma.Register(api, huma.Operation{
		OperationID: "mature-investments",
		Method:      http.MethodPost,
		Path:        "/v1/investments/mature",
		Summary:     "Mature due investments",
		Description: "Credits every active investment past its maturity date. Requires an admin or master role.",
		Tags:        []string{"Investments"},
	}, h.handleMatureDue)
}

func (h *SettleInvestmentHandler) handleCancel(ctx context.Context, input *InvestmentIDInput) (*InvestmentOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := respond.ParseID("investment id", input.ID)
	if err != nil {
		return nil, err
	}

	stopTimer := logging.Time(ctx, "cancelInvestmentMs")
	inv, err := h.InvestmentService.Cancel(ctx, caller, id)
	stopTimer()
	if err != nil {
		return nil, respond.Error("failed to cancel investment", err)
	}
	return &InvestmentOutput{Body: fromStorage(inv)}, nil
}

// handleMatureDue reports partial progress: matured investments are returned even when some
// others failed, as long as the sweep itself ran.
func (h *SettleInvestmentHandler) handleMatureDue(ctx context.Context, _ *struct{}) (*MatureDueOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}

	stopTimer := logging.Time(ctx, "matureInvestmentsMs")
	matured, err := h.InvestmentService.MatureDue(ctx, caller)
	stopTimer()
	if err != nil && matured == nil {
		return nil, respond.Error("failed to mature investments", err)
	}

	failed := 0
	if err != nil {
		failed = joinedCount(err)
		logrus.WithError(err).WithField("failed", failed).Warn("SettleInvestmentHandler: maturity sweep incomplete")
	}
	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("matured", len(matured))
	}
	return &MatureDueOutput{Body: MatureDueResponseBody{Matured: fromStorageList(matured), Failed: failed}}, nil
}

func joinedCount(err error) int {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return len(joined.Unwrap())
	}
	return 1
}
