package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gatefold.io/internal/ids"
	"gatefold.io/internal/product"
)

// Service validates and records engagement events.
type Service struct {
	store   EventStore
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
func NewService(store EventStore, catalog product.Catalog, opts ...ServiceOption) *Service {
	svc := &Service{store: store, catalog: catalog, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// RecordVisit persists one page view and returns the generated access id,
// which action events reference as their parent. The organization comes
// from the product; unique-visitor status is claimed atomically in the
// store so concurrent visits from the same visitor cannot both be unique.
func (s *Service) RecordVisit(ctx context.Context, visit Visit) (*AccessEvent, error) {
	if strings.TrimSpace(visit.ProductID) == "" {
		return nil, fmt.Errorf("%w: productId", ErrMissingField)
	}
	if visit.AccessMethod == "" {
		return nil, fmt.Errorf("%w: accessMethod", ErrMissingField)
	}
	if !visit.AccessMethod.Known() {
		return nil, fmt.Errorf("%w: unknown access method %q", ErrInvalidInput, visit.AccessMethod)
	}
	if strings.TrimSpace(visit.SessionID) == "" {
		return nil, fmt.Errorf("%w: sessionId", ErrMissingField)
	}

	prod, err := s.catalog.Find(ctx, visit.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, visit.ProductID)
		}
		return nil, err
	}

	// Anonymous visits (no visitor id) count as unique by definition.
	unique := true
	if visit.VisitorID != "" {
		unique, err = s.store.MarkVisitor(ctx, visit.ProductID, visit.VisitorID)
		if err != nil {
			return nil, err
		}
	}

	event := &AccessEvent{
		ID:            ids.New(),
		ProductID:     prod.ID,
		OrgID:         prod.OrgID,
		AccessMethod:  visit.AccessMethod,
		ChannelID:     visit.ChannelID,
		ChannelName:   visit.ChannelName,
		SessionID:     visit.SessionID,
		VisitorID:     visit.VisitorID,
		IsUniqueVisit: unique,
		Context:       visit.Context,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.InsertVisit(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// RecordAction persists one in-page action. The organization is
// denormalized from the parent access event.
func (s *Service) RecordAction(ctx context.Context, action Action) (*ActionEvent, error) {
	if strings.TrimSpace(action.AccessID) == "" {
		return nil, fmt.Errorf("%w: accessId", ErrMissingField)
	}
	if strings.TrimSpace(action.ProductID) == "" {
		return nil, fmt.Errorf("%w: productId", ErrMissingField)
	}
	if action.ActionType == "" {
		return nil, fmt.Errorf("%w: actionType", ErrMissingField)
	}
	if !action.ActionType.Known() {
		return nil, fmt.Errorf("%w: unknown action type %q", ErrInvalidInput, action.ActionType)
	}

	parent, err := s.store.FindVisit(ctx, action.AccessID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: access event %s", ErrNotFound, action.AccessID)
		}
		return nil, err
	}

	event := &ActionEvent{
		ID:           ids.New(),
		AccessID:     parent.ID,
		ProductID:    action.ProductID,
		OrgID:        parent.OrgID,
		ActionType:   action.ActionType,
		ActionTarget: action.ActionTarget,
		Metadata:     action.Metadata,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.InsertAction(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}
