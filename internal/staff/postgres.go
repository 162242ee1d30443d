package staff

import (
	"context"
	"database/sql"
	"errors"
)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) FindMember(ctx context.Context, id string) (*Member, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, org_id, email, password_hash, status, created_at from staff_users where id=$1`, id)
	return scanMember(row)
}

func (s *PGStore) FindMemberByEmail(ctx context.Context, email string) (*Member, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, org_id, email, password_hash, status, created_at from staff_users where email=$1`,
		normalizeEmail(email))
	return scanMember(row)
}

func scanMember(row *sql.Row) (*Member, error) {
	var m Member
	if err := row.Scan(&m.ID, &m.OrgID, &m.Email, &m.PasswordHash, &m.Status, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
