package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/roundtable/internal/services/engine/domain/campaign"
	"github.com/louisbranch/roundtable/internal/services/engine/storage"
)

// CreateCampaign persists a campaign and its full roster in one transaction.
func (s *Store) CreateCampaign(ctx context.Context, c campaign.Campaign) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO campaigns (id, name, state_json, turn_owner, ai_only_streak, floor_lock, floor_lock_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.StateJSON, c.TurnOwner, c.AIOnlyStreak, c.FloorLock, toNullMillis(c.FloorLockAt), toMillis(c.CreatedAt),
	); err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}

	for _, actor := range c.Actors {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO actors (campaign_id, id, name, actor_type, is_ai)
VALUES (?, ?, ?, ?, ?)`,
			c.ID, actor.ID, actor.Name, actor.Type.Label(), boolToInt(actor.IsAI),
		); err != nil {
			return fmt.Errorf("insert actor %s: %w", actor.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit campaign: %w", err)
	}
	return nil
}

// GetCampaign loads a campaign with its roster in insertion order.
func (s *Store) GetCampaign(ctx context.Context, campaignID string) (campaign.Campaign, error) {
	if s == nil || s.sqlDB == nil {
		return campaign.Campaign{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, state_json, turn_owner, ai_only_streak, floor_lock, floor_lock_at, created_at
FROM campaigns WHERE id = ?`, campaignID)

	var c campaign.Campaign
	var floorLockAt sql.NullInt64
	var createdAt int64
	if err := row.Scan(&c.ID, &c.Name, &c.StateJSON, &c.TurnOwner, &c.AIOnlyStreak, &c.FloorLock, &floorLockAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return campaign.Campaign{}, storage.ErrNotFound
		}
		return campaign.Campaign{}, fmt.Errorf("scan campaign: %w", err)
	}
	c.FloorLockAt = fromNullMillis(floorLockAt)
	c.CreatedAt = fromMillis(createdAt)

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, actor_type, is_ai FROM actors WHERE campaign_id = ? ORDER BY rowid`, campaignID)
	if err != nil {
		return campaign.Campaign{}, fmt.Errorf("list actors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var actor campaign.Actor
		var typeLabel string
		var isAI int
		if err := rows.Scan(&actor.ID, &actor.Name, &typeLabel, &isAI); err != nil {
			return campaign.Campaign{}, fmt.Errorf("scan actor: %w", err)
		}
		actorType, err := campaign.ActorTypeFromLabel(typeLabel)
		if err != nil {
			return campaign.Campaign{}, fmt.Errorf("decode actor type: %w", err)
		}
		actor.CampaignID = c.ID
		actor.Type = actorType
		actor.IsAI = isAI != 0
		c.Actors = append(c.Actors, actor)
	}
	if err := rows.Err(); err != nil {
		return campaign.Campaign{}, fmt.Errorf("read actors: %w", err)
	}

	return c, nil
}

// UpdateTurnState persists the owner, streak, and floor lock written by a
// turn advance.
func (s *Store) UpdateTurnState(ctx context.Context, campaignID, owner string, streak int, floorLockAt time.Time) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE campaigns SET turn_owner = ?, ai_only_streak = ?, floor_lock = ?, floor_lock_at = ?
WHERE id = ?`,
		owner, streak, owner, toMillis(floorLockAt), campaignID)
	if err != nil {
		return fmt.Errorf("update turn state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update turn state rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
