package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DocumentCatalog remembers which documents have been ingested and at
// what modification time, so the directory watcher survives restarts
// without re-embedding the whole corpus.
type DocumentCatalog struct {
	db     *sql.DB
	logger *slog.Logger
}

func OpenDocumentCatalog(path string, logger *slog.Logger) (*DocumentCatalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document catalog: %w", err)
	}

	c := &DocumentCatalog{db: sqlDB, logger: logger}
	if err := c.init(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return c, nil
}

func (c *DocumentCatalog) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := c.db.Exec(p); err != nil {
			return fmt.Errorf("pragma failed: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			name TEXT PRIMARY KEY,
			mtime TEXT NOT NULL,
			status TEXT NOT NULL,
			ingested_at TEXT NOT NULL
		);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}

// RecordIngested upserts the document so a later scan can tell whether
// the file on disk is newer than what the index holds.
func (c *DocumentCatalog) RecordIngested(ctx context.Context, name string, mtime time.Time, status string) error {
	ingestedAt := time.Now().UTC().Format(time.RFC3339)
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO documents (name, mtime, status, ingested_at) VALUES (?, ?, ?, ?)",
		name, mtime.UTC().Format(time.RFC3339Nano), status, ingestedAt)
	if err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}

	c.logger.Debug("Recorded ingested document",
		slog.String("name", name),
		slog.String("status", status))

	return nil
}

// LastIngested reports the recorded modification time for a document.
// The second return value is false when the document has never been
// ingested.
func (c *DocumentCatalog) LastIngested(ctx context.Context, name string) (time.Time, bool, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		"SELECT mtime FROM documents WHERE name = ?", name).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query document catalog: %w", err)
	}

	mtime, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse recorded mtime %q: %w", raw, err)
	}
	return mtime, true, nil
}

func (c *DocumentCatalog) Close() error {
	return c.db.Close()
}
