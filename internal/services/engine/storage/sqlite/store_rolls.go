package sqlite

import (
	"context"
	"fmt"

	"github.com/louisbranch/roundtable/internal/services/engine/storage"
)

// PutRoll persists one resolved dice roll.
func (s *Store) PutRoll(ctx context.Context, r storage.Roll) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO rolls (id, campaign_id, actor_id, expr, reason, result, breakdown, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CampaignID, r.ActorID, r.Expr, r.Reason, r.Result, r.Breakdown, toMillis(r.CreatedAt),
	); err != nil {
		return fmt.Errorf("insert roll: %w", err)
	}
	return nil
}

// ListRolls returns a campaign's rolls ascending by created_at.
func (s *Store) ListRolls(ctx context.Context, campaignID string) ([]storage.Roll, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, campaign_id, actor_id, expr, reason, result, breakdown, created_at
FROM rolls WHERE campaign_id = ? ORDER BY created_at, rowid`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list rolls: %w", err)
	}
	defer rows.Close()

	rolls := []storage.Roll{}
	for rows.Next() {
		var r storage.Roll
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.ActorID, &r.Expr, &r.Reason, &r.Result, &r.Breakdown, &createdAt); err != nil {
			return nil, fmt.Errorf("scan roll: %w", err)
		}
		r.CreatedAt = fromMillis(createdAt)
		rolls = append(rolls, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rolls: %w", err)
	}
	return rolls, nil
}
