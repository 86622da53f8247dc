package auth

import (
	"context"
	"sync"
	"time"
)

// InMemory implements Store with in-process concurrency safety. Used in tests
// and local runs without Postgres.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[string]*Identity
	byEmail map[string]string // email -> id
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty in-memory credential store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[string]*Identity),
		byEmail: make(map[string]string),
	}
}

func (s *InMemory) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return copyIdentity(s.byID[id]), nil
}

func (s *InMemory) Find(ctx context.Context, id string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyIdentity(identity), nil
}

func (s *InMemory) Create(ctx context.Context, identity *Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[identity.Email]; exists {
		return ErrEmailTaken
	}
	now := time.Now().UTC()
	stored := copyIdentity(identity)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.byID[stored.ID] = stored
	s.byEmail[stored.Email] = stored.ID
	return nil
}

func (s *InMemory) UpdateRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	identity.RefreshToken = &token
	identity.RefreshTokenExpiresAt = &expiresAt
	identity.UpdatedAt = time.Now().UTC()
	return nil
}

func copyIdentity(in *Identity) *Identity {
	out := *in
	if in.RefreshToken != nil {
		token := *in.RefreshToken
		out.RefreshToken = &token
	}
	if in.RefreshTokenExpiresAt != nil {
		exp := *in.RefreshTokenExpiresAt
		out.RefreshTokenExpiresAt = &exp
	}
	return &out
}
