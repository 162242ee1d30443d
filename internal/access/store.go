package access

import (
	"context"
	"time"
)

// TokenStore persists share tokens. FindBySecret is the hot path on every
// tokened page view and must be a direct lookup by the unique secret.
type TokenStore interface {
	Create(ctx context.Context, token *Token) error
	FindBySecret(ctx context.Context, secret string) (*Token, error)
}

// RFQRecord is the external proof-of-engagement fact consumed by the
// refresh flow. This core never writes RFQs.
type RFQRecord struct {
	ID          string
	ProductID   string
	OrgID       string
	Email       string
	SubmittedAt time.Time
}

// RFQStore reads RFQ submissions recorded by the surrounding platform.
type RFQStore interface {
	// Latest returns the most recent RFQ for the product/email pair, or
	// ErrNotFound when the pair never submitted one.
	Latest(ctx context.Context, productID, email string) (*RFQRecord, error)
}
