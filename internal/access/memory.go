package access

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory TokenStore and RFQStore used by tests and
// local development.
type MemoryStore struct {
	mu       sync.RWMutex
	bySecret map[string]Token
	rfqs     []RFQRecord
}

var (
	_ TokenStore = (*MemoryStore)(nil)
	_ RFQStore   = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bySecret: make(map[string]Token)}
}

func (s *MemoryStore) Create(ctx context.Context, token *Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bySecret[token.Secret]; exists {
		return ErrDuplicateSecret
	}
	s.bySecret[token.Secret] = *token
	return nil
}

func (s *MemoryStore) FindBySecret(ctx context.Context, secret string) (*Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.bySecret[secret]
	if !ok {
		return nil, ErrNotFound
	}
	out := token
	return &out, nil
}

// AddRFQ registers an RFQ submission. Intended for fixtures.
func (s *MemoryStore) AddRFQ(rfq RFQRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rfqs = append(s.rfqs, rfq)
}

func (s *MemoryStore) Latest(ctx context.Context, productID, email string) (*RFQRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *RFQRecord
	for i := range s.rfqs {
		rfq := s.rfqs[i]
		if rfq.ProductID != productID || rfq.Email != email {
			continue
		}
		if latest == nil || rfq.SubmittedAt.After(latest.SubmittedAt) {
			latest = &rfq
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	out := *latest
	return &out, nil
}
