package access

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PGStore implements TokenStore and RFQStore using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

var (
	_ TokenStore = (*PGStore)(nil)
	_ RFQStore   = (*PGStore)(nil)
)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, token *Token) error {
	var expires sql.NullTime
	if token.ExpiresAt != nil {
		expires = sql.NullTime{Time: token.ExpiresAt.UTC(), Valid: true}
	}
	var createdBy sql.NullString
	if token.CreatedBy != "" {
		createdBy = sql.NullString{String: token.CreatedBy, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		insert into access_tokens(id, secret, product_id, org_id, channel_id, channel_name,
			access_level, expires_at, created_by, notes, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, token.ID, token.Secret, token.ProductID, token.OrgID, token.ChannelID, token.ChannelName,
		token.Level.String(), expires, createdBy, token.Notes, token.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateSecret
		}
		return err
	}
	return nil
}

func (s *PGStore) FindBySecret(ctx context.Context, secret string) (*Token, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, secret, product_id, org_id, channel_id, channel_name,
			access_level, expires_at, created_by, notes, created_at
		from access_tokens where secret=$1
	`, secret)

	var (
		token     Token
		level     string
		expires   sql.NullTime
		createdBy sql.NullString
	)
	err := row.Scan(&token.ID, &token.Secret, &token.ProductID, &token.OrgID,
		&token.ChannelID, &token.ChannelName, &level, &expires, &createdBy,
		&token.Notes, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	token.Level, err = ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if expires.Valid {
		t := expires.Time
		token.ExpiresAt = &t
	}
	if createdBy.Valid {
		token.CreatedBy = createdBy.String
	}
	return &token, nil
}

func (s *PGStore) Latest(ctx context.Context, productID, email string) (*RFQRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		select id, product_id, org_id, email, submitted_at
		from rfqs where product_id=$1 and email=$2
		order by submitted_at desc limit 1
	`, productID, email)

	var rfq RFQRecord
	var submitted time.Time
	if err := row.Scan(&rfq.ID, &rfq.ProductID, &rfq.OrgID, &rfq.Email, &submitted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rfq.SubmittedAt = submitted
	return &rfq, nil
}
