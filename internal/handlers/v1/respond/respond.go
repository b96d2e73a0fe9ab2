// Package respond holds the request parsing and error mapping shared by the v1 handlers.
package respond

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/service"
)

// Status maps an error kind to its HTTP status.
func Status(err error) int {
	switch apperr.KindOf(err) {
	case apperr.InvalidAmount, apperr.InvalidArgument:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusForbidden
	case apperr.AccountNotFound, apperr.LoanNotFound, apperr.InvestmentNotFound:
		return http.StatusNotFound
	case apperr.InsufficientFunds, apperr.InvalidState:
		return http.StatusConflict
	case apperr.StoreUnavailable:
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Error converts a service error into a huma error. Unclassified errors keep their detail
// out of the response message.
func Error(msg string, err error) error {
	status := Status(err)
	if status == http.StatusInternalServerError {
		return huma.NewError(status, msg, err)
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return huma.NewError(status, appErr.Message)
	}
	return huma.NewError(status, msg)
}

// Caller returns the authenticated identity placed on the context by the auth middleware.
func Caller(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return auth.Identity{}, huma.Error401Unauthorized("missing or invalid bearer token")
	}
	return id, nil
}

func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return id, nil
}

func ParseAmount(field, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return amount, nil
}

// ParseTime parses an optional RFC3339 timestamp. Empty input yields nil.
func ParseTime(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return &t, nil
}

// Cursor is the pagination cursor returned to clients.
type Cursor struct {
	Position int `json:"position" doc:"Offset for next page"`
	Limit    int `json:"limit" doc:"Page size"`
}

func NextCursor(c *service.Cursor) *Cursor {
	if c == nil {
		return nil
	}
	return &Cursor{Position: c.Position, Limit: c.Limit}
}

// PageInput is embedded by list inputs.
type PageInput struct {
	Position int `query:"position" minimum:"0" doc:"Offset for pagination"`
	Limit    int `query:"limit" minimum:"0" maximum:"100" doc:"Page size, default 20"`
}

func (p PageInput) Cursor() *service.Cursor {
	return &service.Cursor{Position: p.Position, Limit: p.Limit}
}

// FormatTime renders timestamps the way every response does.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
