package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/louisbranch/roundtable/internal/services/engine/storage"
)

const upsertStateSQL = `
INSERT INTO state_kv (campaign_id, key, value, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (campaign_id, key) DO UPDATE SET
    value = excluded.value,
    updated_at = excluded.updated_at`

// GetState returns the value stored at key, or ErrNotFound.
func (s *Store) GetState(ctx context.Context, campaignID, key string) (string, error) {
	if s == nil || s.sqlDB == nil {
		return "", fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT value FROM state_kv WHERE campaign_id = ? AND key = ?`, campaignID, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("scan state value: %w", err)
	}
	return value, nil
}

// SetState upserts one key in the campaign state bag.
func (s *Store) SetState(ctx context.Context, campaignID, key, value string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	if _, err := s.sqlDB.ExecContext(ctx, upsertStateSQL, campaignID, key, value, toMillis(time.Now())); err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}

// SetStateMany upserts a batch of keys in one transaction. Either every
// key commits or none do.
func (s *Store) SetStateMany(ctx context.Context, campaignID string, entries map[string]string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := toMillis(time.Now())
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, upsertStateSQL, campaignID, key, entries[key], now); err != nil {
			return fmt.Errorf("upsert state key %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state batch: %w", err)
	}
	return nil
}

// ListState returns the full key/value bag for a campaign.
func (s *Store) ListState(ctx context.Context, campaignID string) (map[string]string, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT key, value FROM state_kv WHERE campaign_id = ?`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list state: %w", err)
	}
	defer rows.Close()

	state := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan state row: %w", err)
		}
		state[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read state rows: %w", err)
	}
	return state, nil
}
