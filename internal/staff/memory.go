package staff

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]Member
	byEmail map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]Member),
		byEmail: make(map[string]string),
	}
}

// AddMember registers a member. Intended for fixtures.
func (s *MemoryStore) AddMember(m Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[m.ID] = m
	s.byEmail[normalizeEmail(m.Email)] = m.ID
}

func (s *MemoryStore) FindMember(ctx context.Context, id string) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := m
	return &out, nil
}

func (s *MemoryStore) FindMemberByEmail(ctx context.Context, email string) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	m := s.byID[id]
	out := m
	return &out, nil
}
