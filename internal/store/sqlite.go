package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists record content in a local SQLite database. It backs
// the dashboard's hosted review table in single-node deployments.
type SQLiteStore struct {
	db     *sql.DB
	update *sql.Stmt
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite store: create parent dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open: %w", err)
	}
	// SQLite writes are serialized; a larger pool only causes lock contention.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: create schema: %w", err)
	}

	update, err := db.Prepare(`
		INSERT INTO records (id, content, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite store: prepare update: %w", err)
	}

	return &SQLiteStore{db: db, update: update}, nil
}

// UpdateContent upserts transformed content for one record id.
func (s *SQLiteStore) UpdateContent(ctx context.Context, id, content string) error {
	if id == "" {
		return fmt.Errorf("sqlite store: id is required")
	}
	if _, err := s.update.ExecContext(ctx, id, content); err != nil {
		return fmt.Errorf("sqlite store: update %s: %w", id, err)
	}
	return nil
}

// Content returns stored content for id, for verification and tests.
func (s *SQLiteStore) Content(ctx context.Context, id string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, "SELECT content FROM records WHERE id = ?", id).Scan(&content)
	if err != nil {
		return "", err
	}
	return content, nil
}

// Close releases the prepared statement and database handle.
func (s *SQLiteStore) Close() error {
	if s.update != nil {
		_ = s.update.Close()
	}
	return s.db.Close()
}
