package access

import (
	"context"
	"time"
)

// Source names which rule produced an access decision.
type Source string

const (
	SourceMerchant Source = "merchant"
	SourceToken    Source = "token"
	SourceDefault  Source = "default"
)

// Request is the explicit per-request context the resolver operates on.
// Nothing is read from ambient state; callers extract these values at the
// HTTP boundary.
type Request struct {
	MerchantView bool
	UserID       string
	ProductOrgID string
	TokenSecret  string
}

// Decision is the single authoritative access outcome for one request. It
// is recomputed every time and never persisted.
type Decision struct {
	Level     Level  `json:"level"`
	Source    Source `json:"source"`
	TokenID   string `json:"token_id,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
}

// MembershipChecker answers whether a user belongs to an organization.
type MembershipChecker interface {
	VerifyMember(ctx context.Context, userID, orgID string) bool
}

// Resolver turns request context into an access decision.
type Resolver struct {
	tokens  TokenStore
	members MembershipChecker
	now     func() time.Time
}

// NewResolver constructs a Resolver. The clock override follows the same
// convention as the service.
func NewResolver(tokens TokenStore, members MembershipChecker, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{tokens: tokens, members: members, now: now}
}

// Resolve applies the rules in priority order: verified merchant membership
// wins, then a valid token, then the public default. It is a total
// function: a missing, unknown, stale or expired token silently falls
// through to the next rule and can neither elevate nor deny.
func (r *Resolver) Resolve(ctx context.Context, req Request) Decision {
	if req.MerchantView && req.UserID != "" && r.members != nil &&
		r.members.VerifyMember(ctx, req.UserID, req.ProductOrgID) {
		return Decision{Level: LevelAfterRFQ, Source: SourceMerchant}
	}

	if req.TokenSecret != "" {
		token, err := r.tokens.FindBySecret(ctx, req.TokenSecret)
		if err == nil && token.Valid(r.now()) {
			return Decision{
				Level:     token.Level,
				Source:    SourceToken,
				TokenID:   token.ID,
				ChannelID: token.ChannelID,
			}
		}
	}

	return Decision{Level: LevelPublic, Source: SourceDefault}
}
