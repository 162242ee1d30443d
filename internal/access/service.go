package access

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"gatefold.io/internal/ids"
	"gatefold.io/internal/product"
)

const (
	refreshProofWindow = 90 * 24 * time.Hour
	refreshExpiryDays  = 30
	refreshChannelName = "RFQ Refresh"
)

// Service issues share tokens and re-issues them on proof of engagement.
type Service struct {
	tokens  TokenStore
	rfqs    RFQStore
	catalog product.Catalog
	now     func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service.
func NewService(tokens TokenStore, rfqs RFQStore, catalog product.Catalog, opts ...ServiceOption) *Service {
	svc := &Service{
		tokens:  tokens,
		rfqs:    rfqs,
		catalog: catalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// IssueParams describes a token issuance request. ExpiresInDays of zero
// means the token never expires.
type IssueParams struct {
	ProductID     string
	ChannelID     string
	ChannelName   string
	Level         Level
	ExpiresInDays int
	CreatedBy     string
	Notes         string
}

// Issued is the result of a successful issuance. URL is the relative share
// link embedding the secret and channel.
type Issued struct {
	Token         Token
	URL           string
	ExpiresInDays int
}

// Issue validates params, resolves the product, and persists a new token.
// The token's organization is taken from the product; callers enforce that
// the issuing member belongs to it.
func (s *Service) Issue(ctx context.Context, params IssueParams) (Issued, error) {
	if strings.TrimSpace(params.ProductID) == "" {
		return Issued{}, fmt.Errorf("%w: productId is required", ErrInvalidInput)
	}
	if strings.TrimSpace(params.ChannelID) == "" {
		return Issued{}, fmt.Errorf("%w: channelId is required", ErrInvalidInput)
	}
	if params.Level != LevelAfterClick && params.Level != LevelAfterRFQ {
		return Issued{}, fmt.Errorf("%w: access level must be after_click or after_rfq", ErrInvalidInput)
	}
	if params.ExpiresInDays < 0 {
		return Issued{}, fmt.Errorf("%w: expiresInDays must be a positive integer", ErrInvalidInput)
	}

	prod, err := s.catalog.Find(ctx, params.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return Issued{}, fmt.Errorf("%w: product %s", ErrNotFound, params.ProductID)
		}
		return Issued{}, err
	}

	now := s.now().UTC()
	token := Token{
		ID:          ids.New(),
		ProductID:   prod.ID,
		OrgID:       prod.OrgID,
		ChannelID:   params.ChannelID,
		ChannelName: params.ChannelName,
		Level:       params.Level,
		CreatedBy:   params.CreatedBy,
		Notes:       params.Notes,
		CreatedAt:   now,
	}
	if params.ExpiresInDays > 0 {
		expires := now.AddDate(0, 0, params.ExpiresInDays)
		token.ExpiresAt = &expires
	}

	if err := s.createWithRetry(ctx, &token); err != nil {
		return Issued{}, err
	}

	return Issued{
		Token:         token,
		URL:           shareURL(prod.Slug, token.Secret, token.ChannelID),
		ExpiresInDays: params.ExpiresInDays,
	}, nil
}

// createWithRetry regenerates the secret once if the store reports a
// collision. With 256 bits of entropy a second collision means something is
// broken beyond what a retry fixes.
func (s *Service) createWithRetry(ctx context.Context, token *Token) error {
	for attempt := 0; attempt < 2; attempt++ {
		secret, err := newSecret()
		if err != nil {
			return err
		}
		token.Secret = secret
		err = s.tokens.Create(ctx, token)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrDuplicateSecret) {
			return err
		}
	}
	return ErrDuplicateSecret
}

// Lookup finds a token by its bearer secret. Unknown secrets return
// ErrNotFound, which callers must treat as "no token presented".
func (s *Service) Lookup(ctx context.Context, secret string) (*Token, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrNotFound
	}
	return s.tokens.FindBySecret(ctx, secret)
}

// Refresh re-issues a full-access token when the caller proves a prior RFQ
// submission for the product. Proof older than 90 days is rejected.
func (s *Service) Refresh(ctx context.Context, productID, email string) (Issued, error) {
	if strings.TrimSpace(productID) == "" {
		return Issued{}, fmt.Errorf("%w: productId is required", ErrInvalidInput)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return Issued{}, fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}

	rfq, err := s.rfqs.Latest(ctx, productID, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Issued{}, fmt.Errorf("%w: no qualifying engagement", ErrNotFound)
		}
		return Issued{}, err
	}
	if s.now().Sub(rfq.SubmittedAt) > refreshProofWindow {
		return Issued{}, ErrExpiredProof
	}

	// The synthesized channel keeps refreshed tokens distinguishable from
	// originally issued ones in analytics.
	return s.Issue(ctx, IssueParams{
		ProductID:     rfq.ProductID,
		ChannelID:     "rfq-" + rfq.ID,
		ChannelName:   refreshChannelName,
		Level:         LevelAfterRFQ,
		ExpiresInDays: refreshExpiryDays,
	})
}

func shareURL(slug, secret, channelID string) string {
	values := url.Values{}
	values.Set("token", secret)
	if channelID != "" {
		values.Set("channel", channelID)
	}
	return "/p/" + url.PathEscape(slug) + "?" + values.Encode()
}
