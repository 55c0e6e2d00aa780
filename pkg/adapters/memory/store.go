package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/aretw0/stepform/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use. Values are copied on the way in and out so callers
// cannot mutate stored sessions through shared maps.
type Store struct {
	data map[string]*domain.SessionData
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.SessionData),
	}
}

// Save stores a copy of the session.
func (s *Store) Save(ctx context.Context, data *domain.SessionData) error {
	copied := data.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[data.ID] = copied
	return nil
}

// Load returns a copy of the stored session.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.SessionData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return data.Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the stored session IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.data)), nil
}
