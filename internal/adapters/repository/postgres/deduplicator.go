package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vncsmyrnk/weeklypoll/internal/adapters/dedup"
	"github.com/vncsmyrnk/weeklypoll/internal/core/ports"
)

// Deduplicator records handled event IDs in the handled_event table, so every
// replica sharing the database sees the same window.
type Deduplicator struct {
	db  *sql.DB
	ttl time.Duration
}

func NewDeduplicator(db *sql.DB, ttl time.Duration) *Deduplicator {
	if ttl <= 0 {
		ttl = dedup.DefaultTTL
	}
	return &Deduplicator{
		db:  db,
		ttl: ttl,
	}
}

var _ ports.Deduplicator = (*Deduplicator)(nil)

// Seen claims id for ttl. An expired claim is taken over as if it were new.
func (d *Deduplicator) Seen(ctx context.Context, id string) (bool, error) {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM handled_event WHERE expires_at <= NOW()`); err != nil {
		return false, fmt.Errorf("failed to prune handled events: %w", err)
	}

	query := `
		INSERT INTO handled_event (id, expires_at)
		VALUES ($1, NOW() + make_interval(secs => $2))
		ON CONFLICT (id) DO UPDATE
		SET expires_at = EXCLUDED.expires_at
		WHERE handled_event.expires_at <= NOW()
	`
	res, err := d.db.ExecContext(ctx, query, id, d.ttl.Seconds())
	if err != nil {
		return false, fmt.Errorf("failed to record event %s: %w", id, err)
	}
	claimed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to record event %s: %w", id, err)
	}
	return claimed == 0, nil
}
