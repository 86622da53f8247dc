package auth

import (
	"context"
	"strings"
)

type ctxKey string

const identityKey ctxKey = "auth_identity"

// AuthenticatedIdentity is the boundary value produced by token verification.
// It is pure token content; no database access backs it.
type AuthenticatedIdentity struct {
	ID    string
	Email string
}

// ContextWithIdentity stores the authenticated identity in the context.
func ContextWithIdentity(ctx context.Context, id AuthenticatedIdentity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) (AuthenticatedIdentity, bool) {
	v, ok := ctx.Value(identityKey).(AuthenticatedIdentity)
	if !ok || strings.TrimSpace(v.ID) == "" {
		return AuthenticatedIdentity{}, false
	}
	return v, true
}
