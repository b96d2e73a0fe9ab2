package status

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/ledger-server/internal/logging"
)

type mockChecker struct {
	mock.Mock
}

func (m *mockChecker) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func createTestLogData() *logging.LogData {
	logger := logging.SetupLogging("error")
	return logging.NewLogData(logger)
}

func TestHandler_GoodMethod(t *testing.T) {
	store := new(mockChecker)
	store.On("Ping", mock.Anything).Return(nil)
	statusHandler := NewHandler(store)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)

	w := httptest.NewRecorder()

	err := statusHandler.Handler(w, req, createTestLogData())
	assert.NoError(t, err)

	res := w.Result()
	assert.Equal(t, 200, res.StatusCode)
	store.AssertExpectations(t)
}

func TestHandler_BadMethod(t *testing.T) {
	store := new(mockChecker)
	statusHandler := NewHandler(store)
	req := httptest.NewRequest(http.MethodPost, "/status", nil)
	w := httptest.NewRecorder()

	err := statusHandler.Handler(w, req, createTestLogData())
	assert.Error(t, err)

	res := w.Result()
	assert.Equal(t, 400, res.StatusCode)
	store.AssertNotCalled(t, "Ping", mock.Anything)
}

func TestHandler_StoreDown(t *testing.T) {
	store := new(mockChecker)
	store.On("Ping", mock.Anything).Return(errors.New("connection refused"))
	statusHandler := NewHandler(store)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()

	err := statusHandler.Handler(w, req, createTestLogData())
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, http.StatusServiceUnavailable, w.Result().StatusCode)
}
