// Package pg provides the Postgres-backed stores for projects and
// blueprints. Queries go through database/sql over the pgx stdlib driver.
package pg

import (
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store wraps the shared connection pool. The project and blueprint stores
// hang off it so one pool serves the whole API.
type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing pool; used by tests with sqlmock.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Projects returns the Postgres project store.
func (s *Store) Projects() *ProjectStore { return &ProjectStore{db: s.db} }

// Blueprints returns the Postgres blueprint store.
func (s *Store) Blueprints() *BlueprintStore { return &BlueprintStore{db: s.db} }
