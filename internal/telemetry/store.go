package telemetry

import "context"

// EventStore persists visit and action rows.
type EventStore interface {
	// MarkVisitor atomically claims first-visit status for the
	// (productID, visitorID) pair. The first caller for a pair gets true;
	// every later (or concurrent) caller gets false. Implementations must
	// not use a read-then-insert sequence.
	MarkVisitor(ctx context.Context, productID, visitorID string) (bool, error)

	InsertVisit(ctx context.Context, event *AccessEvent) error
	FindVisit(ctx context.Context, accessID string) (*AccessEvent, error)
	InsertAction(ctx context.Context, event *ActionEvent) error
}
