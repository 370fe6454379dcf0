// Package storage persists extraction and annotation runs to SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Store writes runs to a SQLite database. Each write is one transaction.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and creates the schema if
// needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database, creating the schema if it has none.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}
	if version == "0" {
		if err := CreateSchema(db); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// DB returns the underlying database.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one recorded invocation.
type Run struct {
	ID        string
	Command   string
	StartedAt time.Time
}

// BeginRun records a new run of command and returns its id.
func (s *Store) BeginRun(command string) (string, error) {
	id := uuid.New().String()
	_, err := sq.Insert("runs").
		Columns("run_id", "command", "started_at").
		Values(id, command, time.Now().UTC().Format(time.RFC3339Nano)).
		RunWith(s.db).
		Exec()
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return id, nil
}

// DeleteRun removes a run and everything written under it.
func (s *Store) DeleteRun(runID string) error {
	if _, err := sq.Delete("runs").Where(sq.Eq{"run_id": runID}).RunWith(s.db).Exec(); err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	return nil
}

// withTx runs fn in a transaction with a prepared statement cache.
func (s *Store) withTx(fn func(runner sq.BaseRunner) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	cache := sq.NewStmtCache(tx)
	if err := fn(cache); err != nil {
		cache.Clear()
		return err
	}
	if err := cache.Clear(); err != nil {
		return fmt.Errorf("failed to release statements: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
