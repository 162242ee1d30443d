package product

import (
	"context"
	"sync"
)

// MemoryCatalog is an in-memory Catalog used by tests and local development.
type MemoryCatalog struct {
	mu     sync.RWMutex
	byID   map[string]Product
	bySlug map[string]string
}

var _ Catalog = (*MemoryCatalog)(nil)

// NewMemoryCatalog returns an empty MemoryCatalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		byID:   make(map[string]Product),
		bySlug: make(map[string]string),
	}
}

// Add registers a product. Intended for fixtures.
func (c *MemoryCatalog) Add(p Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[p.ID] = p
	if p.Slug != "" {
		c.bySlug[p.Slug] = p.ID
	}
}

func (c *MemoryCatalog) Find(ctx context.Context, id string) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := p
	return &out, nil
}

func (c *MemoryCatalog) FindBySlug(ctx context.Context, slug string) (*Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	p := c.byID[id]
	out := p
	return &out, nil
}
