package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/roundtable/internal/services/engine/storage"
)

// GetCursor returns an actor's read cursor, or ErrNotFound before the
// first director call for that actor.
func (s *Store) GetCursor(ctx context.Context, campaignID, actorID string) (storage.Cursor, error) {
	if s == nil || s.sqlDB == nil {
		return storage.Cursor{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT campaign_id, actor_id, last_seen_event_id, updated_at
FROM actor_cursors WHERE campaign_id = ? AND actor_id = ?`, campaignID, actorID)

	var cur storage.Cursor
	var updatedAt int64
	if err := row.Scan(&cur.CampaignID, &cur.ActorID, &cur.LastSeenEventID, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Cursor{}, storage.ErrNotFound
		}
		return storage.Cursor{}, fmt.Errorf("scan cursor: %w", err)
	}
	cur.UpdatedAt = fromMillis(updatedAt)
	return cur, nil
}

// PutCursor upserts an actor's read cursor.
func (s *Store) PutCursor(ctx context.Context, cur storage.Cursor) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO actor_cursors (campaign_id, actor_id, last_seen_event_id, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (campaign_id, actor_id) DO UPDATE SET
    last_seen_event_id = excluded.last_seen_event_id,
    updated_at = excluded.updated_at`,
		cur.CampaignID, cur.ActorID, cur.LastSeenEventID, toMillis(cur.UpdatedAt),
	); err != nil {
		return fmt.Errorf("upsert cursor: %w", err)
	}
	return nil
}
