package auth

import (
	"context"
	"time"
)

// Store is the credential store collaborator: durable identity records keyed
// by email. It is the single source of truth for refresh-token state; no
// in-process cache sits in front of it.
type Store interface {
	// FindByEmail looks up an identity by exact email match (case-sensitive,
	// as stored). Returns ErrNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*Identity, error)

	// Find looks up an identity by id. Returns ErrNotFound when absent.
	Find(ctx context.Context, id string) (*Identity, error)

	// Create inserts a new identity. The uniqueness constraint on email is the
	// actual invariant guard; Create returns ErrEmailTaken on a duplicate.
	Create(ctx context.Context, identity *Identity) error

	// UpdateRefreshToken overwrites the identity's refresh token and expiry as
	// one unit. It never touches the password hash.
	UpdateRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error
}
