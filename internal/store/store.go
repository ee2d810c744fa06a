// Package store persists solutions and the industry, technology and
// solution-type catalog in sqlite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrSubmitted is returned when modifying a submitted solution.
var ErrSubmitted = errors.New("store: solution already submitted")

// Store is a sqlite-backed solution store. It is safe for concurrent use.
type Store struct {
	conn   *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(logger *zap.Logger, path string) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}

	s := &Store{conn: conn, logger: logger}
	if err := s.init(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	logger.Debug("store opened",
		zap.String("op", "store.Open"),
		zap.String("path", path),
	)
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS catalog (
  kind TEXT NOT NULL,
  id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  parentId TEXT NOT NULL DEFAULT '',
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(kind, id)
);
CREATE INDEX IF NOT EXISTS idx_catalog_parent ON catalog(kind, parentId);

CREATE TABLE IF NOT EXISTS solutions (
  id TEXT PRIMARY KEY,
  clientId TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL,
  status TEXT NOT NULL,
  body TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_solutions_client ON solutions(clientId);
`
	_, err := s.conn.Exec(schema)
	return err
}
