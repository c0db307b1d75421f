package memory

import (
	"context"
	"sync"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.SaveData
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.SaveData),
	}
}

// Save persists a copy of the save data in memory.
func (s *Store) Save(ctx context.Context, profile string, data *domain.SaveData) error {
	copied := data.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[profile] = copied
	return nil
}

// Load retrieves a copy of the save data, so callers can't mutate the store through it.
func (s *Store) Load(ctx context.Context, profile string) (*domain.SaveData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[profile]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return data.Clone(), nil
}

// Delete removes the save data.
func (s *Store) Delete(ctx context.Context, profile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, profile)
	return nil
}

// List returns stored profiles.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := make([]string, 0, len(s.data))
	for id := range s.data {
		profiles = append(profiles, id)
	}
	return profiles, nil
}
