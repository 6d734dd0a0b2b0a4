package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// User is the local record for an authenticated subject. A user is keyed by
// (issuer, subject) so the same person re-appearing through a different
// provider gets a distinct row.
type User struct {
	ID        string    `db:"id"`
	Issuer    string    `db:"issuer"`
	Subject   string    `db:"subject"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// Upsert creates the user row for (issuer, subject) on first login and
// refreshes updated_at on every later login.
//
// TODO: ON CONFLICT ... DO UPDATE covers SQLite and PostgreSQL; MySQL needs
// INSERT ... ON DUPLICATE KEY UPDATE before the mysql driver can be offered
// for production use.
func (s *UserStore) Upsert(ctx context.Context, issuer, subject string) (*User, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO users (id, issuer, subject, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (issuer, subject) DO UPDATE SET
			updated_at = excluded.updated_at
	`), id, issuer, subject, now, now)
	if err != nil {
		return nil, err
	}

	var u User
	err = s.db.GetContext(ctx, &u, s.db.Rebind(
		`SELECT * FROM users WHERE issuer = ? AND subject = ?`), issuer, subject)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT * FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
