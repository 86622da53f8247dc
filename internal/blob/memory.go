package blob

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

var _ Store = (*InMemory)(nil)

// InMemory implements Store in process memory. Used in tests and local runs
// without object storage configured.
type InMemory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewInMemory() *InMemory {
	return &InMemory{objects: make(map[string][]byte)}
}

func (s *InMemory) Put(ctx context.Context, folder, filename string, r io.Reader) (string, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", "", err
	}
	key := ObjectKey(folder, filename)
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return key, "memory://" + key, nil
}

func (s *InMemory) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *InMemory) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", ErrNotFound
	}
	return fmt.Sprintf("memory://%s?expires=%d", key, int64(expires.Seconds())), nil
}

// Get returns object content; test helper.
func (s *InMemory) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}

// Len reports the number of stored objects; test helper.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
