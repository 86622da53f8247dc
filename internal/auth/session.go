// Package auth implements the authentication and session-credential
// subsystem: password verification, access-token issuance, and refresh-token
// rotation. One refresh token is live per identity at a time; every
// successful login or refresh overwrites it (last write wins). The credential
// store is the single source of truth for refresh-token state.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service orchestrates login, refresh, and registration over a credential
// store and a token issuer. It keeps no mutable state of its own; concurrent
// calls race only on the store, where the last write wins.
type Service struct {
	store  Store
	tokens *TokenIssuer
	now    func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithServiceClock overrides the session manager's time source.
func WithServiceClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the session manager.
func NewService(store Store, tokens *TokenIssuer, opts ...ServiceOption) *Service {
	svc := &Service{store: store, tokens: tokens, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register creates an identity and, like the other credential operations,
// returns a fresh token pair. The email pre-check is best-effort; the store's
// uniqueness constraint is the real guard against concurrent duplicates.
func (s *Service) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("find identity: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	identity := &Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.store.Create(ctx, identity); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}
	return s.issueAndPersist(ctx, identity)
}

// Login verifies credentials and rotates the stored refresh token. Unknown
// email and wrong password are indistinguishable to the caller. The overwrite
// is unconditional: a prior refresh token becomes invalid the instant a new
// login succeeds (single active session per identity).
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	identity, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	if VerifyPassword(identity.PasswordHash, password) == VerifyFailed {
		return nil, ErrUnauthorized
	}
	return s.issueAndPersist(ctx, identity)
}

// Refresh exchanges a live refresh token for a new access/refresh pair. The
// presented token must exactly equal the stored one and must not be expired.
// On success the stored token is replaced, so the old value is invalid after
// a single use. Concurrent refreshes race on the store write; the last
// writer's token remains valid.
func (s *Service) Refresh(ctx context.Context, email, refreshToken string) (*AuthResult, error) {
	identity, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	if identity.RefreshToken == nil || identity.RefreshTokenExpiresAt == nil {
		return nil, ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(*identity.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, ErrUnauthorized
	}
	if !s.now().UTC().Before(*identity.RefreshTokenExpiresAt) {
		return nil, ErrUnauthorized
	}
	return s.issueAndPersist(ctx, identity)
}

// Profile validates an access token and re-fetches the identity by the email
// claim. A valid token for a deleted identity is still unauthorized.
func (s *Service) Profile(ctx context.Context, accessToken string) (*Identity, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}
	identity, err := s.store.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return identity, nil
}

// issueAndPersist mints both credentials and overwrites the stored refresh
// token. Nothing is returned to the caller unless the persistence write
// succeeded, so a generated-but-unpersisted token is never observable.
func (s *Service) issueAndPersist(ctx context.Context, identity *Identity) (*AuthResult, error) {
	access, accessExp, err := s.tokens.IssueAccessToken(identity.ID, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.store.UpdateRefreshToken(ctx, identity.ID, refresh, refreshExp); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}
	return &AuthResult{
		UserID:           identity.ID,
		Email:            identity.Email,
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
