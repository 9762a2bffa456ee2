// Package storage persists catalog data and project estimates in
// SQLite. Schema changes are managed with goose migrations embedded
// from db/migrations.
package storage

import (
	"database/sql"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"fence-cost/db/migrations"
	"fence-cost/internal/errors"
)

// Store wraps the SQLite database
type Store struct {
	db *sql.DB
}

// Open opens the database, sets recommended pragmas, runs pending
// migrations, and validates connectivity. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Storage("open sqlite database", err)
	}

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, errors.Storage("set sqlite pragmas", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Storage("ping sqlite database", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return errors.Storage("set goose dialect", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return errors.Storage("run goose migrations", err)
	}
	return nil
}
