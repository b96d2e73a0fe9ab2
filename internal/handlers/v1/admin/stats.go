package admin

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
)

var (
	loanStatuses       = []loan.Status{loan.StatusPending, loan.StatusApproved, loan.StatusRejected, loan.StatusPaid}
	investmentStatuses = []investment.Status{investment.StatusActive, investment.StatusMatured, investment.StatusCancelled}
	roles              = []auth.Role{auth.RoleUser, auth.RoleAdmin, auth.RoleMaster, auth.RoleMasterAssistant}
)

type Totals struct {
	Count  int    `json:"count"`
	Amount string `json:"amount" doc:"Decimal sum"`
}

type StatsBody struct {
	TotalAccounts  int               `json:"totalAccounts"`
	AccountsByRole map[string]int    `json:"accountsByRole"`
	Loans          map[string]Totals `json:"loans" doc:"Count and principal per loan status"`
	Investments    map[string]Totals `json:"investments" doc:"Count and amount per investment status"`
	Volume         Totals            `json:"volume" doc:"Completed entries since the window start"`
	Since          string            `json:"since" doc:"RFC3339 start of the volume window"`
}

type StatsOutput struct {
	Body StatsBody
}

type statsReader interface {
	Dashboard(ctx context.Context, caller auth.Identity) (*service.Dashboard, error)
}

// StatsHandler handles GET /v1/admin/stats.
type StatsHandler struct {
	StatsService statsReader
}

func NewStatsHandler(svc statsReader) *StatsHandler {
	return &StatsHandler{StatsService: svc}
}

func (h *StatsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "admin-stats",
		Method:      http.MethodGet,
		Path:        "/v1/admin/stats",
		Summary:     "Ledger dashboard",
		Description: "Account counts, loan and investment totals by status, and completed volume over the last 30 days.",
		Tags:        []string{"Admin"},
	}, h.handle)
}

func (h *StatsHandler) handle(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
	caller, err := respond.Caller(ctx)
	if err != nil {
		return nil, err
	}

	stopTimer := logging.Time(ctx, "dashboardMs")
	d, err := h.StatsService.Dashboard(ctx, caller)
	stopTimer()
	if err != nil {
		return nil, respond.Error("failed to load stats", err)
	}

	body := StatsBody{
		TotalAccounts:  d.TotalAccounts(),
		AccountsByRole: make(map[string]int, len(roles)),
		Loans:          make(map[string]Totals, len(loanStatuses)),
		Investments:    make(map[string]Totals, len(investmentStatuses)),
		Volume:         totals(d.Volume.Count, d.Volume.Total),
		Since:          respond.FormatTime(d.Since),
	}
	for _, r := range roles {
		body.AccountsByRole[string(r)] = d.Accounts[r]
	}
	for _, s := range loanStatuses {
		body.Loans[string(s)] = totals(d.Loans[s].Count, d.Loans[s].Total)
	}
	for _, s := range investmentStatuses {
		body.Investments[string(s)] = totals(d.Investments[s].Count, d.Investments[s].Total)
	}
	return &StatsOutput{Body: body}, nil
}

func totals(count int, amount decimal.Decimal) Totals {
	return Totals{Count: count, Amount: amount.StringFixed(2)}
}
