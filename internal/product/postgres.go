package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGCatalog implements Catalog over the products read-model table. Fields
// are stored as a single jsonb document; the catalog never interprets them.
type PGCatalog struct {
	db *sql.DB
}

var _ Catalog = (*PGCatalog)(nil)

func NewPGCatalog(db *sql.DB) *PGCatalog {
	return &PGCatalog{db: db}
}

func (c *PGCatalog) Find(ctx context.Context, id string) (*Product, error) {
	row := c.db.QueryRowContext(ctx,
		`select id, org_id, slug, fields, created_at from products where id=$1`, id)
	return scanProduct(row)
}

func (c *PGCatalog) FindBySlug(ctx context.Context, slug string) (*Product, error) {
	row := c.db.QueryRowContext(ctx,
		`select id, org_id, slug, fields, created_at from products where slug=$1`, slug)
	return scanProduct(row)
}

func scanProduct(row *sql.Row) (*Product, error) {
	var (
		p      Product
		fields []byte
	)
	if err := row.Scan(&p.ID, &p.OrgID, &p.Slug, &fields, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(fields, &p.Fields); err != nil {
		return nil, err
	}
	return &p, nil
}
