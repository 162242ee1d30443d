package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGStore implements EventStore using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

var _ EventStore = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// MarkVisitor claims first-visit status with a single conditional insert.
// The unique constraint over (product_id, visitor_id) makes this safe under
// concurrency: exactly one inserter sees rows affected.
func (s *PGStore) MarkVisitor(ctx context.Context, productID, visitorID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		insert into access_visitors(product_id, visitor_id)
		values ($1,$2) on conflict (product_id, visitor_id) do nothing
	`, productID, visitorID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *PGStore) InsertVisit(ctx context.Context, event *AccessEvent) error {
	_, err := s.db.ExecContext(ctx, `
		insert into access_logs(id, product_id, org_id, access_method, channel_id, channel_name,
			session_id, visitor_id, is_unique_visit, ip, user_agent, referrer,
			utm_source, utm_medium, utm_campaign, country, device_type, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`, event.ID, event.ProductID, event.OrgID, string(event.AccessMethod),
		event.ChannelID, event.ChannelName, event.SessionID, event.VisitorID,
		event.IsUniqueVisit, event.Context.IP, event.Context.UserAgent,
		event.Context.Referrer, event.Context.UTMSource, event.Context.UTMMedium,
		event.Context.UTMCampaign, event.Context.Country, event.Context.DeviceType,
		event.CreatedAt.UTC())
	return err
}

func (s *PGStore) FindVisit(ctx context.Context, accessID string) (*AccessEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, product_id, org_id, access_method, channel_id, channel_name,
			session_id, visitor_id, is_unique_visit, created_at
		from access_logs where id=$1
	`, accessID)

	var (
		event  AccessEvent
		method string
	)
	err := row.Scan(&event.ID, &event.ProductID, &event.OrgID, &method,
		&event.ChannelID, &event.ChannelName, &event.SessionID, &event.VisitorID,
		&event.IsUniqueVisit, &event.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	event.AccessMethod = AccessMethod(method)
	return &event, nil
}

func (s *PGStore) InsertAction(ctx context.Context, event *ActionEvent) error {
	meta, err := json.Marshal(event.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into access_log_actions(id, access_id, product_id, org_id,
			action_type, action_target, action_metadata, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8)
	`, event.ID, event.AccessID, event.ProductID, event.OrgID,
		string(event.ActionType), event.ActionTarget, meta, event.CreatedAt.UTC())
	return err
}
