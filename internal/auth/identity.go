package auth

import (
	"context"

	"github.com/gofrs/uuid/v5"
)

// Identity is the authenticated caller of an operation.
type Identity struct {
	AccountID uuid.UUID
	Role      Role
}

// CanAccess reports whether the identity may read data owned by accountID.
func (i Identity) CanAccess(accountID uuid.UUID) bool {
	return i.AccountID == accountID || i.Role.CanViewAll()
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
