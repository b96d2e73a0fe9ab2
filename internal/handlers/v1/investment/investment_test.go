package investment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond/respondtest"
	"github.com/carson-networks/ledger-server/internal/investing"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
)

type mockInvestmentService struct {
	mock.Mock
}

func (m *mockInvestmentService) Create(ctx context.Context, caller auth.Identity, t investment.Type, amount decimal.Decimal, frequency investment.Frequency, durationMonths int, expectedReturn omit.Val[decimal.Decimal]) (*investment.Investment, error) {
	rate := ""
	if v, ok := expectedReturn.Get(); ok {
		rate = v.String()
	}
	args := m.Called(ctx, caller, t, amount.String(), frequency, durationMonths, rate)
	inv, _ := args.Get(0).(*investment.Investment)
	return inv, args.Error(1)
}

func (m *mockInvestmentService) Guidance(ctx context.Context, caller auth.Identity, t investment.Type, amount decimal.Decimal, durationMonths int) (investing.Guidance, error) {
	args := m.Called(ctx, caller, t, amount.String(), durationMonths)
	g, _ := args.Get(0).(investing.Guidance)
	return g, args.Error(1)
}

func (m *mockInvestmentService) Cancel(ctx context.Context, caller auth.Identity, investmentID uuid.UUID) (*investment.Investment, error) {
	args := m.Called(ctx, caller, investmentID)
	inv, _ := args.Get(0).(*investment.Investment)
	return inv, args.Error(1)
}

func (m *mockInvestmentService) MatureDue(ctx context.Context, caller auth.Identity) ([]*investment.Investment, error) {
	args := m.Called(ctx, caller)
	invs, _ := args.Get(0).([]*investment.Investment)
	return invs, args.Error(1)
}

func (m *mockInvestmentService) GetInvestment(ctx context.Context, caller auth.Identity, investmentID uuid.UUID) (*investment.Investment, error) {
	args := m.Called(ctx, caller, investmentID)
	inv, _ := args.Get(0).(*investment.Investment)
	return inv, args.Error(1)
}

func (m *mockInvestmentService) ListInvestments(ctx context.Context, caller auth.Identity, statuses []investment.Status, cursor *service.Cursor) ([]*investment.Investment, *service.Cursor, error) {
	args := m.Called(ctx, caller, statuses, cursor)
	invs, _ := args.Get(0).([]*investment.Investment)
	next, _ := args.Get(1).(*service.Cursor)
	return invs, next, args.Error(2)
}

func sampleInvestment(owner uuid.UUID, status investment.Status) *investment.Investment {
	created := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	return &investment.Investment{
		ID:             uuid.Must(uuid.NewV4()),
		OwnerID:        owner,
		Type:           investment.TypeSIP,
		Amount:         decimal.NewFromInt(10000),
		Frequency:      investment.FrequencyMonthly,
		DurationMonths: 12,
		ExpectedReturn: decimal.NewFromInt(12),
		MaturityAmount: decimal.NewFromInt(11200),
		MaturityDate:   created.AddDate(1, 0, 0),
		Status:         status,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

func TestHTTP_CreateInvestment_DefaultsToMonthly(t *testing.T) {
	caller := respondtest.Identity(auth.RoleUser)
	inv := sampleInvestment(caller.AccountID, investment.StatusActive)

	svc := new(mockInvestmentService)
	svc.On("Create", mock.Anything, *caller, investment.TypeSIP, "10000", investment.FrequencyMonthly, 12, "").Return(inv, nil)

	api := respondtest.NewAPI(t, caller)
	NewCreateInvestmentHandler(svc).Register(api)

	resp := api.Post("/v1/investment", map[string]any{"type": "sip", "amount": "10000", "durationMonths": 12})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var body Investment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, inv.ID.String(), body.ID)
	assert.Equal(t, "11200.00", body.MaturityAmount)
	assert.Equal(t, "2025-01-15T12:00:00Z", body.MaturityDate)
	assert.Equal(t, "active", body.Status)
	svc.AssertExpectations(t)
}

func TestHTTP_CreateInvestment_InsufficientFunds(t *testing.T) {
	caller := respondtest.Identity(auth.RoleUser)
	svc := new(mockInvestmentService)
	svc.On("Create", mock.Anything, *caller, investment.TypeLumpsum, "500", investment.FrequencyWeekly, 3, "").
		Return(nil, apperr.New(apperr.InsufficientFunds, "insufficient funds"))

	api := respondtest.NewAPI(t, caller)
	NewCreateInvestmentHandler(svc).Register(api)

	resp := api.Post("/v1/investment", CreateInvestmentBody{Type: "lumpsum", Amount: "500", Frequency: "weekly", DurationMonths: 3})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestHTTP_CreateInvestment_ExpectedReturn(t *testing.T) {
	caller := respondtest.Identity(auth.RoleUser)
	inv := sampleInvestment(caller.AccountID, investment.StatusActive)
	inv.Type = investment.TypeLumpsum

	svc := new(mockInvestmentService)
	svc.On("Create", mock.Anything, *caller, investment.TypeLumpsum, "10000", investment.FrequencyMonthly, 12, "12").Return(inv, nil)

	api := respondtest.NewAPI(t, caller)
	NewCreateInvestmentHandler(svc).Register(api)

	resp := api.Post("/v1/investment", CreateInvestmentBody{Type: "lumpsum", Amount: "10000", DurationMonths: 12, ExpectedReturn: "12"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var body Investment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "11200.00", body.MaturityAmount)
	svc.AssertExpectations(t)
}

func TestHTTP_CreateInvestment_Errors(t *testing.T) {
	caller := respondtest.Identity(auth.RoleUser)
	svc := new(mockInvestmentService)
	svc.On("Create", mock.Anything, *caller, investment.TypeLumpsum, "10000", investment.FrequencyMonthly, 12, "-3").
		Return(nil, apperr.New(apperr.InvalidArgument, "expected return cannot be negative"))

	api := respondtest.NewAPI(t, caller)
	NewCreateInvestmentHandler(svc).Register(api)

	resp := api.Post("/v1/investment", CreateInvestmentBody{Type: "lumpsum", Amount: "10000", DurationMonths: 12, ExpectedReturn: "-3"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.Post("/v1/investment", CreateInvestmentBody{Type: "lumpsum", Amount: "10000", DurationMonths: 12, ExpectedReturn: "twelve"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	svc.AssertNumberOfCalls(t, "Create", 1)
}

func TestHTTP_InvestmentGuidance(t *testing.T) {
	caller := respondtest.Identity(auth.RoleUser)
	g, err := investing.Guide(investment.TypeSIP, decimal.NewFromInt(6000), 12, decimal.NewFromInt(10000))
	require.NoError(t, err)

	svc := new(mockInvestmentService)
	svc.On("Guidance", mock.Anything, *caller, investment.TypeSIP, "6000", 12).Return(g, nil)

	api := respondtest.NewAPI(t, caller)
	NewCreateInvestmentHandler(svc).Register(api)

	resp := api.Get("/v1/investment/guidance?type=sip&amount=6000&durationMonths=12")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body GuidanceBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "6720.00", body.MaturityAmount)
	assert.Equal(t, "720.00", body.Profit)
	assert.Equal(t, "60.00", body.MonthlyProfit)
	assert.Equal(t, "60.00", body.Ratio)
	assert.Equal(t, "medium", body.Risk)
}

func TestHTTP_CancelInvestment(t *testing.T) {
	caller := respondtest.Identity(auth.RoleUser)
	inv := sampleInvestment(caller.AccountID, investment.StatusCancelled)

	svc := new(mockInvestmentService)
	svc.On("Cancel", mock.Anything, *caller, inv.ID).Return(inv, nil)

	api := respondtest.NewAPI(t, caller)
	NewSettleInvestmentHandler(svc).Register(api)

	resp := api.Post("/v1/investment/" + inv.ID.String() + "/cancel")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body Investment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "cancelled", body.Status)
}

func TestHTTP_CancelInvestment_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not owner", apperr.New(apperr.InvestmentNotFound, "investment not found"), http.StatusNotFound},
		{"already cancelled", apperr.New(apperr.InvalidState, "investment is not active"), http.StatusConflict},
		{"store down", apperr.New(apperr.StoreUnavailable, "store unavailable"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := respondtest.Identity(auth.RoleUser)
			id := uuid.Must(uuid.NewV4())
			svc := new(mockInvestmentService)
			svc.On("Cancel", mock.Anything, *caller, id).Return(nil, tt.err)

			api := respondtest.NewAPI(t, caller)
			NewSettleInvestmentHandler(svc).Register(api)

			resp := api.Post("/v1/investment/" + id.String() + "/cancel")
			assert.Equal(t, tt.status, resp.Code)
		})
	}
}

func TestHTTP_MatureDue(t *testing.T) {
	caller := respondtest.Identity(auth.RoleAdmin)
	matured := []*investment.Investment{sampleInvestment(uuid.Must(uuid.NewV4()), investment.StatusMatured)}

	t.Run("all matured", func(t *testing.T) {
		svc := new(mockInvestmentService)
		svc.On("MatureDue", mock.Anything, *caller).Return(matured, nil)
		api := respondtest.NewAPI(t, caller)
		NewSettleInvestmentHandler(svc).Register(api)

		resp := api.Post("/v1/investments/mature")
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var body MatureDueResponseBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Len(t, body.Matured, 1)
		assert.Zero(t, body.Failed)
	})

	t.Run("partial", func(t *testing.T) {
		svc := new(mockInvestmentService)
		svc.On("MatureDue", mock.Anything, *caller).Return(matured, errors.Join(errors.New("one"), errors.New("two")))
		api := respondtest.NewAPI(t, caller)
		NewSettleInvestmentHandler(svc).Register(api)

		resp := api.Post("/v1/investments/mature")
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var body MatureDueResponseBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Len(t, body.Matured, 1)
		assert.Equal(t, 2, body.Failed)
	})

	t.Run("not allowed", func(t *testing.T) {
		user := respondtest.Identity(auth.RoleUser)
		svc := new(mockInvestmentService)
		svc.On("MatureDue", mock.Anything, *user).Return(nil, apperr.New(apperr.Unauthorized, "role user cannot run the maturity sweep"))
		api := respondtest.NewAPI(t, user)
		NewSettleInvestmentHandler(svc).Register(api)

		resp := api.Post("/v1/investments/mature")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestHTTP_ListInvestments(t *testing.T) {
	caller := respondtest.Identity(auth.RoleMasterAssistant)
	invs := []*investment.Investment{sampleInvestment(uuid.Must(uuid.NewV4()), investment.StatusActive)}

	svc := new(mockInvestmentService)
	svc.On("ListInvestments", mock.Anything, *caller, []investment.Status{investment.StatusActive, investment.StatusMatured}, &service.Cursor{Position: 5, Limit: 0}).
		Return(invs, nil, nil)

	api := respondtest.NewAPI(t, caller)
	NewListInvestmentsHandler(svc).Register(api)

	resp := api.Get("/v1/investments?status=active&status=matured&position=5")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body ListInvestmentsResponseBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Investments, 1)
	assert.Nil(t, body.NextCursor)
}

func TestHTTP_GetInvestment(t *testing.T) {
	caller := respondtest.Identity(auth.RoleUser)
	inv := sampleInvestment(caller.AccountID, investment.StatusActive)

	svc := new(mockInvestmentService)
	svc.On("GetInvestment", mock.Anything, *caller, inv.ID).Return(inv, nil)

	api := respondtest.NewAPI(t, caller)
	NewListInvestmentsHandler(svc).Register(api)

	resp := api.Get("/v1/investment/" + inv.ID.String())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body Investment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "10000", body.Amount)
	assert.Equal(t, "12", body.ExpectedReturn)
}
