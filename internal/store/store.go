// Package store implements C2 (the embedded SQLite metadata store) and
// C3 (the filesystem-backed SIR blob store). Grounded on the teacher's
// internal/store/local_core.go: a single *sql.DB opened with a short
// busy_timeout and WAL journaling so readers never block writers.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"aether/internal/logging"
)

// Store is the embedded metadata store (C2). All writes funnel through
// the single *sql.DB connection; SQLite's own locking plus the busy
// timeout below implement the "multiple readers; writes serialized"
// concurrency policy from spec §4.2.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex // serializes the occasional multi-statement write
	path string
}

// Open creates (if needed) and opens the metadata store at path, running
// schema migrations idempotently.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("failed to set synchronous=NORMAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logging.StoreDebug("failed to enable foreign_keys: %v", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	logging.Store("store opened: path=%s", path)
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// schema is applied once at open; every statement is idempotent
// (CREATE TABLE/INDEX IF NOT EXISTS) so repeated opens are safe.
const schema = `
CREATE TABLE IF NOT EXISTS symbols (
	id                    TEXT PRIMARY KEY,
	language              TEXT NOT NULL,
	file_path             TEXT NOT NULL,
	kind                  TEXT NOT NULL,
	name                  TEXT NOT NULL,
	qualified_name        TEXT NOT NULL,
	signature_fingerprint TEXT NOT NULL,
	content_hash          TEXT NOT NULL,
	start_line            INTEGER NOT NULL,
	start_col             INTEGER NOT NULL,
	end_line              INTEGER NOT NULL,
	end_col               INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_symbols_file_path ON symbols(file_path);
CREATE INDEX IF NOT EXISTS idx_symbols_qualified_name ON symbols(qualified_name);

CREATE TABLE IF NOT EXISTS edges (
	rowid_ignore          INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id             TEXT NOT NULL,
	target_qualified_name TEXT NOT NULL,
	edge_kind             TEXT NOT NULL,
	file_path             TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_qualified_name);
CREATE INDEX IF NOT EXISTS idx_edges_file ON edges(file_path);

CREATE TABLE IF NOT EXISTS sir_meta (
	symbol_id       TEXT PRIMARY KEY,
	sir_hash        TEXT NOT NULL,
	sir_version     INTEGER NOT NULL,
	provider        TEXT NOT NULL,
	model           TEXT NOT NULL,
	updated_at      INTEGER NOT NULL,
	sir_status      TEXT NOT NULL,
	last_error      TEXT,
	last_attempt_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id               TEXT PRIMARY KEY,
	content          TEXT NOT NULL,
	content_key      TEXT NOT NULL UNIQUE,
	tags             TEXT NOT NULL DEFAULT '[]',
	embedding_provider TEXT,
	embedding_model    TEXT,
	embedding          BLOB,
	created_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_content_key ON notes(content_key);

CREATE TABLE IF NOT EXISTS calibration (
	language  TEXT PRIMARY KEY,
	threshold REAL NOT NULL
);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}
