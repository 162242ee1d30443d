// Package product holds the minimal read model of published product pages.
// Product CRUD lives in the surrounding platform; this core only needs the
// identifiers and the field bag that access filtering operates on.
package product

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no product matches the lookup key.
var ErrNotFound = errors.New("product: not found")

// Product is a published product page as stored by the catalog.
type Product struct {
	ID        string
	OrgID     string
	Slug      string
	Fields    map[string]any
	CreatedAt time.Time
}

// Catalog is the read-only surface of the external product store.
type Catalog interface {
	Find(ctx context.Context, id string) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
}
