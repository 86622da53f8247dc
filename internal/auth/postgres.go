package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, email, password_hash, refresh_token, refresh_token_expires_at, created_at, updated_at
		 from users where email=$1`, email)
	return scanIdentity(row)
}

func (s *PGStore) Find(ctx context.Context, id string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, email, password_hash, refresh_token, refresh_token_expires_at, created_at, updated_at
		 from users where id=$1`, id)
	return scanIdentity(row)
}

func (s *PGStore) Create(ctx context.Context, identity *Identity) error {
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into users(id, email, password_hash) values($1,$2,$3)`,
		identity.ID, identity.Email, identity.PasswordHash,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (s *PGStore) UpdateRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`update users set refresh_token=$2, refresh_token_expires_at=$3, updated_at=now() where id=$1`,
		id, token, expiresAt,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanIdentity(row *sql.Row) (*Identity, error) {
	var (
		identity Identity
		token    sql.NullString
		expires  sql.NullTime
	)
	err := row.Scan(&identity.ID, &identity.Email, &identity.PasswordHash,
		&token, &expires, &identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if token.Valid {
		identity.RefreshToken = &token.String
	}
	if expires.Valid {
		t := expires.Time
		identity.RefreshTokenExpiresAt = &t
	}
	return &identity, nil
}
