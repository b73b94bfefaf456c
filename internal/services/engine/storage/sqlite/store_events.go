package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/roundtable/internal/services/engine/domain/event"
	"github.com/louisbranch/roundtable/internal/services/engine/storage"
)

// AppendEvent persists evt with a per-campaign monotonic created_at. When
// the wall clock ties or regresses against the campaign's latest stored
// event, the timestamp shifts forward by one millisecond so "after cursor"
// pagination never drops ties.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var latest sql.NullInt64
	row := tx.QueryRowContext(ctx, `
SELECT MAX(created_at) FROM events WHERE campaign_id = ?`, evt.CampaignID)
	if err := row.Scan(&latest); err != nil {
		return event.Event{}, fmt.Errorf("read latest created_at: %w", err)
	}

	createdAt := toMillis(evt.CreatedAt)
	if latest.Valid && createdAt <= latest.Int64 {
		createdAt = latest.Int64 + 1
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO events (id, campaign_id, actor_id, event_type, content, visibility, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		evt.ID, evt.CampaignID, evt.ActorID, evt.Type, evt.Content, evt.Visibility, createdAt,
	); err != nil {
		return event.Event{}, fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit event: %w", err)
	}

	evt.CreatedAt = fromMillis(createdAt)
	return evt, nil
}

// ListEvents returns a campaign's events ordered by (created_at, insertion
// order). A known afterEventID restricts the result to strictly newer
// events; an unknown id returns the full log so stale cursors never hide
// history.
func (s *Store) ListEvents(ctx context.Context, campaignID, afterEventID string) ([]event.Event, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `
SELECT id, campaign_id, actor_id, event_type, content, visibility, created_at
FROM events WHERE campaign_id = ?`
	args := []any{campaignID}

	if afterEventID != "" {
		var afterCreatedAt int64
		row := s.sqlDB.QueryRowContext(ctx, `
SELECT created_at FROM events WHERE campaign_id = ? AND id = ?`, campaignID, afterEventID)
		err := row.Scan(&afterCreatedAt)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Unknown cursor, return everything.
		case err != nil:
			return nil, fmt.Errorf("resolve after event: %w", err)
		default:
			query += ` AND created_at > ?`
			args = append(args, afterCreatedAt)
		}
	}

	query += ` ORDER BY created_at, seq`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// LatestEvent returns the newest event for a campaign, or ErrNotFound when
// the log is empty.
func (s *Store) LatestEvent(ctx context.Context, campaignID string) (event.Event, error) {
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, campaign_id, actor_id, event_type, content, visibility, created_at
FROM events WHERE campaign_id = ?
ORDER BY created_at DESC, seq DESC LIMIT 1`, campaignID)

	evt, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, storage.ErrNotFound
	}
	if err != nil {
		return event.Event{}, fmt.Errorf("scan latest event: %w", err)
	}
	return evt, nil
}

// ListRecentEvents returns up to limit events, newest first.
func (s *Store) ListRecentEvents(ctx context.Context, campaignID string, limit int) ([]event.Event, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return []event.Event{}, nil
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, campaign_id, actor_id, event_type, content, visibility, created_at
FROM events WHERE campaign_id = ?
ORDER BY created_at DESC, seq DESC LIMIT ?`, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var evt event.Event
	var createdAt int64
	if err := row.Scan(&evt.ID, &evt.CampaignID, &evt.ActorID, &evt.Type, &evt.Content, &evt.Visibility, &createdAt); err != nil {
		return event.Event{}, err
	}
	evt.CreatedAt = fromMillis(createdAt)
	return evt, nil
}

func scanEvents(rows *sql.Rows) ([]event.Event, error) {
	events := []event.Event{}
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}
