// Package logcache persists the logs of completed workflow jobs in a local
// SQLite database. Completed-job logs never change, so reopening a job hits
// the cache instead of the network.
package logcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DBFileName is the name of the cache database file.
const DBFileName = "logs.db"

// Cache is a persistent store of job logs keyed by repository and job id.
type Cache struct {
	db *sql.DB
}

// Open opens the cache database at path, creating it and applying pending
// migrations as needed.
func Open(ctx context.Context, path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache database: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get returns the cached log for a job, reporting whether it was present.
func (c *Cache) Get(ctx context.Context, repo string, jobID int64) (string, bool, error) {
	var log string
	err := c.db.QueryRowContext(ctx,
		`SELECT log FROM job_logs WHERE repo = ? AND job_id = ?`,
		repo, jobID,
	).Scan(&log)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read cached log: %w", err)
	}
	return log, true, nil
}

// Put stores the log for a completed job, replacing any earlier copy.
func (c *Cache) Put(ctx context.Context, repo string, runID, jobID int64, log string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO job_logs (repo, run_id, job_id, log, fetched_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		repo, runID, jobID, log,
	)
	if err != nil {
		return fmt.Errorf("store log: %w", err)
	}
	return nil
}

// Prune deletes the oldest cached logs beyond keep. Non-positive keep
// leaves the cache unbounded.
func (c *Cache) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM job_logs WHERE rowid NOT IN (
			SELECT rowid FROM job_logs ORDER BY fetched_at DESC, rowid DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return fmt.Errorf("prune log cache: %w", err)
	}
	return nil
}

// Len reports the number of cached logs.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cached logs: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
