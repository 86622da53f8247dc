package blueprint

import (
	"context"
	"sort"
	"sync"
)

// Store persists blueprints and their analysis results.
type Store interface {
	CreateBlueprint(ctx context.Context, b Blueprint) error
	GetBlueprint(ctx context.Context, id string) (Blueprint, error)
	// ListByProject returns the project's blueprints, newest first.
	ListByProject(ctx context.Context, projectID string) ([]Blueprint, error)
	// UpdateStatus moves the blueprint to the given status or returns
	// ErrNotFound.
	UpdateStatus(ctx context.Context, id, status string) error
	// UpsertResult stores the analysis result, replacing any previous one for
	// the same blueprint.
	UpsertResult(ctx context.Context, r Result) error
	GetResult(ctx context.Context, blueprintID string) (Result, error)
	// SetReportURL records the generated report location on the result.
	SetReportURL(ctx context.Context, blueprintID, url string) error
}

var _ Store = (*InMemory)(nil)

// InMemory implements Store for tests and local runs without Postgres.
type InMemory struct {
	mu         sync.RWMutex
	blueprints map[string]*Blueprint
	results    map[string]*Result
}

func NewInMemory() *InMemory {
	return &InMemory{
		blueprints: make(map[string]*Blueprint),
		results:    make(map[string]*Result),
	}
}

func (s *InMemory) CreateBlueprint(ctx context.Context, b Blueprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := b
	s.blueprints[b.ID] = &stored
	return nil
}

func (s *InMemory) GetBlueprint(ctx context.Context, id string) (Blueprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blueprints[id]
	if !ok {
		return Blueprint{}, ErrNotFound
	}
	return *b, nil
}

func (s *InMemory) ListByProject(ctx context.Context, projectID string) ([]Blueprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Blueprint
	for _, b := range s.blueprints {
		if b.ProjectID == projectID {
			out = append(out, *b)
		}
	}
	// Newest first; ULIDs sort by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *InMemory) UpdateStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blueprints[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = nowUTC()
	return nil
}

func (s *InMemory) UpsertResult(ctx context.Context, r Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.results[r.BlueprintID]; ok {
		r.ID = prev.ID
		r.CreatedAt = prev.CreatedAt
	}
	stored := r
	s.results[r.BlueprintID] = &stored
	return nil
}

func (s *InMemory) GetResult(ctx context.Context, blueprintID string) (Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[blueprintID]
	if !ok {
		return Result{}, ErrNoResult
	}
	return *r, nil
}

func (s *InMemory) SetReportURL(ctx context.Context, blueprintID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[blueprintID]
	if !ok {
		return ErrNoResult
	}
	r.ReportURL = &url
	r.UpdatedAt = nowUTC()
	return nil
}
