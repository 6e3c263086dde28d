package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// NewLocalCacheDB opens the on-device sqlite file backing the local mapping
// cache. WAL and a busy timeout keep it safe for a single check-in station
// process; the cache is never shared between devices.
func NewLocalCacheDB(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create cache dir")
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open cache db")
	}

	// Single connection: the cache has a single writer per device.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping cache db")
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS token_mappings (
  token        TEXT PRIMARY KEY,
  attendee_id  TEXT NOT NULL,
  scope_id     TEXT,
  created_at_ms INTEGER NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ensure token_mappings table")
	}

	return db, nil
}
