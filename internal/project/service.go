// Package project manages construction projects. Every operation is scoped to
// the owning user; a project that exists but belongs to someone else is
// indistinguishable from a missing one.
package project

import (
	"context"
	"sort"
	"sync"
	"time"

	"creativecube.dev/internal/ids"
)

// Service defines project operations.
type Service interface {
	// Create persists a new project for the user; status starts as queued.
	Create(ctx context.Context, userID string, p Project) (Project, error)
	// Get returns the user's project or ErrNotFound.
	Get(ctx context.Context, userID, id string) (Project, error)
	// ListByUser returns the user's projects, newest first.
	ListByUser(ctx context.Context, userID string) ([]Project, error)
	// Assign records the engineer responsible for the project.
	Assign(ctx context.Context, userID, id, engineerID string) (Project, error)
}

var _ Service = (*InMemory)(nil)

// InMemory implements Service with in-process concurrency safety. Used in
// tests and local runs without Postgres.
type InMemory struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

func NewInMemory() *InMemory {
	return &InMemory{projects: make(map[string]*Project)}
}

func (s *InMemory) Create(ctx context.Context, userID string, p Project) (Project, error) {
	if err := p.Validate(); err != nil {
		return Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p.ID = ids.New()
	p.UserID = userID
	p.Status = StatusQueued
	p.AssignedTo = nil
	p.CreatedAt = now
	p.UpdatedAt = now
	stored := p
	s.projects[p.ID] = &stored
	return p, nil
}

func (s *InMemory) Get(ctx context.Context, userID, id string) (Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return Project{}, ErrNotFound
	}
	return *p, nil
}

func (s *InMemory) ListByUser(ctx context.Context, userID string) ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Project
	for _, p := range s.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	// Newest first; ULIDs sort by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *InMemory) Assign(ctx context.Context, userID, id, engineerID string) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return Project{}, ErrNotFound
	}
	p.AssignedTo = &engineerID
	p.UpdatedAt = time.Now().UTC()
	return *p, nil
}
