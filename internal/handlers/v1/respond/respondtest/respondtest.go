// Package respondtest builds humatest APIs with an authenticated caller already on the context.
package respondtest

import (
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/auth"
)

// NewAPI returns a test API whose requests carry caller. A nil caller leaves requests
// unauthenticated.
func NewAPI(t testing.TB, caller *auth.Identity) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	if caller != nil {
		id := *caller
		api.UseMiddleware(func(ctx huma.Context, next func(huma.Context)) {
			next(huma.WithContext(ctx, auth.WithIdentity(ctx.Context(), id)))
		})
	}
	return api
}

func Identity(role auth.Role) *auth.Identity {
	return &auth.Identity{AccountID: uuid.Must(uuid.NewV4()), Role: role}
}
