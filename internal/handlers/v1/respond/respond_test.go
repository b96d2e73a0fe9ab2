package respond

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.New(apperr.InvalidAmount, "x"), http.StatusBadRequest},
		{apperr.New(apperr.InvalidArgument, "x"), http.StatusBadRequest},
		{apperr.New(apperr.Unauthorized, "x"), http.StatusForbidden},
		{apperr.New(apperr.AccountNotFound, "x"), http.StatusNotFound},
		{apperr.New(apperr.LoanNotFound, "x"), http.StatusNotFound},
		{apperr.New(apperr.InvestmentNotFound, "x"), http.StatusNotFound},
		{apperr.New(apperr.InsufficientFunds, "x"), http.StatusConflict},
		{apperr.New(apperr.InvalidState, "x"), http.StatusConflict},
		{fmt.Errorf("wrapped: %w", apperr.New(apperr.StoreUnavailable, "x")), http.StatusServiceUnavailable},
		{context.Canceled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestError_UsesKindMessage(t *testing.T) {
	err := Error("failed to transfer", apperr.New(apperr.InsufficientFunds, "balance too low"))

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusConflict, statusErr.GetStatus())
	assert.Contains(t, statusErr.Error(), "balance too low")
}

func TestCaller(t *testing.T) {
	_, err := Caller(context.Background())
	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.GetStatus())

	id := auth.Identity{AccountID: uuid.Must(uuid.NewV4()), Role: auth.RoleUser}
	got, err := Caller(auth.WithIdentity(context.Background(), id))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParsers(t *testing.T) {
	_, err := ParseID("loanID", "nope")
	assert.Error(t, err)

	_, err = ParseAmount("amount", "1.2.3")
	assert.Error(t, err)

	ts, err := ParseTime("since", "")
	require.NoError(t, err)
	assert.Nil(t, ts)

	ts, err = ParseTime("since", "2025-01-02T03:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02T03:04:05Z", FormatTime(*ts))
}
