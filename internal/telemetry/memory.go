package telemetry

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory EventStore used by tests and local
// development.
type MemoryStore struct {
	mu       sync.Mutex
	visitors map[string]struct{}
	visits   map[string]AccessEvent
	actions  map[string]ActionEvent
}

var _ EventStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		visitors: make(map[string]struct{}),
		visits:   make(map[string]AccessEvent),
		actions:  make(map[string]ActionEvent),
	}
}

func visitorKey(productID, visitorID string) string {
	return productID + "\x00" + visitorID
}

func (s *MemoryStore) MarkVisitor(ctx context.Context, productID, visitorID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := visitorKey(productID, visitorID)
	if _, seen := s.visitors[key]; seen {
		return false, nil
	}
	s.visitors[key] = struct{}{}
	return true, nil
}

func (s *MemoryStore) InsertVisit(ctx context.Context, event *AccessEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits[event.ID] = *event
	return nil
}

func (s *MemoryStore) FindVisit(ctx context.Context, accessID string) (*AccessEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.visits[accessID]
	if !ok {
		return nil, ErrNotFound
	}
	out := event
	return &out, nil
}

func (s *MemoryStore) InsertAction(ctx context.Context, event *ActionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[event.ID] = *event
	return nil
}

// ActionCount reports how many actions were recorded. Intended for tests.
func (s *MemoryStore) ActionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}
