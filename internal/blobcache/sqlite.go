// Package blobcache tracks which columnar blobs have already been uploaded
// to a workspace. Blobs are content-addressed, so a cache hit means the
// payload is durably stored and re-upload can be skipped; this also makes
// retrying a failed object creation safe without compensating deletes.
package blobcache

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// Cache is a SQLite-backed record of uploaded blob digests per workspace.
type Cache struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// New creates an unopened cache.
func New(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{logger: logger}
}

// Open opens the cache database and runs pending migrations.
// Use ":memory:" for an in-memory cache.
func (c *Cache) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open blob cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping blob cache: %w", err)
	}

	c.db = db
	c.path = path

	if err := c.migrate(); err != nil {
		_ = db.Close()
		return err
	}
	return nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// IsUploaded reports whether the digest is recorded for the workspace.
func (c *Cache) IsUploaded(workspaceID, digest string) (bool, error) {
	if c.db == nil {
		return false, fmt.Errorf("blob cache not opened")
	}
	var one int
	err := c.db.QueryRow(
		`SELECT 1 FROM uploads WHERE digest = ? AND workspace_id = ?`,
		digest, workspaceID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query blob cache: %w", err)
	}
	return true, nil
}

// MarkUploaded records a digest as uploaded to the workspace. Recording the
// same digest twice is a no-op.
func (c *Cache) MarkUploaded(workspaceID, digest string, sizeBytes int64) error {
	if c.db == nil {
		return fmt.Errorf("blob cache not opened")
	}
	_, err := c.db.Exec(
		`INSERT INTO uploads (digest, workspace_id, size_bytes, uploaded_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (digest, workspace_id) DO NOTHING`,
		digest, workspaceID, sizeBytes, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	c.logger.Debug("recorded upload", "digest", digest, "workspace", workspaceID)
	return nil
}

// Count returns the number of recorded uploads for a workspace.
func (c *Cache) Count(workspaceID string) (int, error) {
	if c.db == nil {
		return 0, fmt.Errorf("blob cache not opened")
	}
	var n int
	err := c.db.QueryRow(
		`SELECT COUNT(*) FROM uploads WHERE workspace_id = ?`, workspaceID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count uploads: %w", err)
	}
	return n, nil
}
