package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to the metadata table by CreateSchema.
const SchemaVersion = "1.0"

// CreateSchema creates all tables and indexes in one transaction.
//
// Every row belongs to a run; deleting a run cascades to its entries, steps,
// premises and chunks. Must be called with PRAGMA foreign_keys = ON for the
// cascades to apply.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"runs", createRunsTable},
		{"entries", createEntriesTable},
		{"steps", createStepsTable},
		{"premises", createPremisesTable},
		{"chunks", createChunksTable},
		{"metadata", createMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range allIndexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		"INSERT INTO metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)",
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion returns the schema version, or "0" for a database without
// a schema.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createRunsTable = `
CREATE TABLE runs (
    run_id TEXT PRIMARY KEY,                     -- UUID
    command TEXT NOT NULL,                       -- skeleton, statements, premises, ...
    started_at TEXT NOT NULL                     -- ISO 8601
)
`

const createEntriesTable = `
CREATE TABLE entries (
    run_id TEXT NOT NULL,
    unit TEXT NOT NULL,                          -- dotted unit id
    fqn TEXT NOT NULL,                           -- module path plus name
    name TEXT NOT NULL,
    kind TEXT NOT NULL,                          -- Lemma, Definition, ...
    docstring TEXT NOT NULL DEFAULT '',
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    statement TEXT NOT NULL,
    proof TEXT,                                  -- NULL for skeleton entries
    PRIMARY KEY (run_id, unit, fqn),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createStepsTable = `
CREATE TABLE steps (
    run_id TEXT NOT NULL,
    unit TEXT NOT NULL,
    fqn TEXT NOT NULL,
    step_index INTEGER NOT NULL,                 -- 0-indexed position in the proof
    text TEXT NOT NULL,
    is_valid INTEGER NOT NULL DEFAULT 0,         -- Boolean
    PRIMARY KEY (run_id, unit, fqn, step_index),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createPremisesTable = `
CREATE TABLE premises (
    premise_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    unit TEXT NOT NULL,
    fqn TEXT NOT NULL,
    step_index INTEGER NOT NULL,
    scope TEXT NOT NULL,                         -- current_file or outside_file
    ref_unit TEXT NOT NULL,
    ref_name TEXT NOT NULL,                      -- name relative to ref_unit
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createChunksTable = `
CREATE TABLE chunks (
    run_id TEXT NOT NULL,
    unit TEXT NOT NULL,
    chunk_index INTEGER NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    source TEXT NOT NULL,
    annotations TEXT NOT NULL,                   -- JSON array of [fqn, entry]
    PRIMARY KEY (run_id, unit, chunk_index),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
)
`

const createMetadataTable = `
CREATE TABLE metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

var allIndexes = []string{
	"CREATE INDEX idx_entries_kind ON entries(run_id, kind)",
	"CREATE INDEX idx_entries_name ON entries(name)",
	"CREATE INDEX idx_steps_valid ON steps(run_id, is_valid)",
	"CREATE INDEX idx_premises_step ON premises(run_id, unit, fqn, step_index)",
	"CREATE INDEX idx_premises_ref ON premises(ref_unit, ref_name)",
}
