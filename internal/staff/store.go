package staff

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("staff: not found")
	ErrUnauthorized = errors.New("staff: unauthorized")
)

// Store describes persistence operations required by staff authentication
// and membership checks.
type Store interface {
	FindMember(ctx context.Context, id string) (*Member, error)
	FindMemberByEmail(ctx context.Context, email string) (*Member, error)
}

// Service authenticates members and answers membership questions for the
// access resolver.
type Service struct {
	store Store
}

// NewService constructs a Service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Login verifies credentials and returns the member on success. Any failure
// collapses to ErrUnauthorized so callers cannot distinguish unknown emails
// from wrong passwords.
func (s *Service) Login(ctx context.Context, email, password string) (*Member, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrUnauthorized
	}
	member, err := s.store.FindMemberByEmail(ctx, email)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if !member.Active() {
		return nil, ErrUnauthorized
	}
	if err := VerifyPassword(member.PasswordHash, password); err != nil {
		return nil, ErrUnauthorized
	}
	return member, nil
}

// VerifyMember reports whether userID is an active member of orgID. Store
// errors are treated as "not a member"; the resolver degrades rather than
// failing.
func (s *Service) VerifyMember(ctx context.Context, userID, orgID string) bool {
	if userID == "" || orgID == "" {
		return false
	}
	member, err := s.store.FindMember(ctx, userID)
	if err != nil {
		return false
	}
	return member.Active() && member.OrgID == orgID
}
