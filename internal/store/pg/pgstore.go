// Package pg implements the portal stores on PostgreSQL.
package pg

import (
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MatheusOkamura/PICTIbmecFinal/internal/enrollment"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/profiles"
	"github.com/MatheusOkamura/PICTIbmecFinal/internal/projects"
)

type Store struct {
	db *sql.DB
}

var (
	_ profiles.Store   = (*Store)(nil)
	_ projects.Store   = projectStore{}
	_ enrollment.Store = (*Store)(nil)
)

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

// NewWithDB wraps an existing connection, used by tests with sqlmock.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }
