package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/roundtable/internal/services/engine/domain/memory"
)

// PutMemory persists a memory entry. Tags serialize to a JSON array.
func (s *Store) PutMemory(ctx context.Context, m memory.Memory) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO memories (id, campaign_id, actor_id, scope, text, tags, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.CampaignID, m.ActorID, m.Scope, m.Text, string(encoded), toMillis(m.CreatedAt),
	); err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

// ListMemories returns a campaign's memories ascending by created_at. A
// non-empty scope restricts the result to that scope string; no visibility
// filtering happens here.
func (s *Store) ListMemories(ctx context.Context, campaignID, scope string) ([]memory.Memory, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `
SELECT id, campaign_id, actor_id, scope, text, tags, created_at
FROM memories WHERE campaign_id = ?`
	args := []any{campaignID}
	if scope != "" {
		query += ` AND scope = ?`
		args = append(args, scope)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	memories := []memory.Memory{}
	for rows.Next() {
		var m memory.Memory
		var tags string
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.CampaignID, &m.ActorID, &m.Scope, &m.Text, &tags, &createdAt); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
		if m.Tags == nil {
			m.Tags = []string{}
		}
		m.CreatedAt = fromMillis(createdAt)
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read memories: %w", err)
	}
	return memories, nil
}
