package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/eventgate/scanlink/internal/domain"
)

// LocalCache is the on-device fallback copy of this station's own mapping
// writes. It is keyed by token alone: it only ever reflects activity on this
// device, so scope partitioning buys nothing. Entries are never evicted; the
// remote store is consulted first on every read, which bounds staleness.
type LocalCache struct {
	db *sql.DB
}

func NewLocalCache(db *sql.DB) *LocalCache {
	return &LocalCache{db: db}
}

func (c *LocalCache) Put(ctx context.Context, m domain.Mapping) error {

	created := m.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err := c.db.ExecContext(ctx, `
INSERT INTO token_mappings(token, attendee_id, scope_id, created_at_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT(token) DO UPDATE SET
  attendee_id = excluded.attendee_id,
  scope_id    = excluded.scope_id;
`, m.Token, m.AttendeeID, nullable(m.ScopeID), created.UnixMilli())
	if err != nil {
		return fmt.Errorf("localcache put: %w", err)
	}

	return nil
}

func (c *LocalCache) Get(ctx context.Context, token string) (domain.Mapping, error) {

	var attendeeID string
	var scope sql.NullString
	var createdMs int64

	err := c.db.QueryRowContext(ctx, `
SELECT attendee_id, scope_id, created_at_ms
FROM token_mappings
WHERE token = ?;
`, token).Scan(&attendeeID, &scope, &createdMs)
	if err == sql.ErrNoRows {
		return domain.Mapping{}, domain.NotFoundError{Resource: "cached mapping"}
	}
	if err != nil {
		return domain.Mapping{}, fmt.Errorf("localcache get: %w", err)
	}

	return domain.Mapping{
		Token:      token,
		AttendeeID: attendeeID,
		ScopeID:    scope.String,
		CreatedAt:  time.UnixMilli(createdMs).UTC(),
	}, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
