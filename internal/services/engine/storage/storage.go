package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/roundtable/internal/platform/errors"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/campaign"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/event"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/memory"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// Cursor records how far an actor has read into a campaign's event log.
// An empty LastSeenEventID means the actor has seen nothing yet.
type Cursor struct {
	CampaignID      string
	ActorID         string
	LastSeenEventID string
	UpdatedAt       time.Time
}

// Roll captures one resolved dice roll for audit and replay.
type Roll struct {
	ID         string
	CampaignID string
	ActorID    string
	Expr       string
	Reason     string
	Result     int
	Breakdown  string
	CreatedAt  time.Time
}

// CampaignStore owns campaign metadata and the actor roster.
type CampaignStore interface {
	// CreateCampaign persists the campaign and its full roster in one
	// transaction. Rosters are immutable afterwards.
	CreateCampaign(ctx context.Context, c campaign.Campaign) error
	// GetCampaign returns a campaign with its roster loaded, or ErrNotFound.
	GetCampaign(ctx context.Context, campaignID string) (campaign.Campaign, error)
	// UpdateTurnState persists the owner, streak, and floor lock written by
	// a turn advance.
	UpdateTurnState(ctx context.Context, campaignID, owner string, streak int, floorLockAt time.Time) error
}

// EventStore owns the append-only per-campaign event log.
type EventStore interface {
	// AppendEvent persists evt. The stored created_at is shifted forward by
	// one millisecond whenever the wall clock would tie or regress against
	// the campaign's latest event, so per-campaign order is strict. The
	// returned event carries the stored timestamp.
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	// ListEvents returns events ordered by (created_at, insertion order).
	// With afterEventID set, only events strictly newer than the referenced
	// event return; an unknown id means no cursor and the full log returns.
	ListEvents(ctx context.Context, campaignID, afterEventID string) ([]event.Event, error)
	// LatestEvent returns the newest event for a campaign, or ErrNotFound
	// when the log is empty.
	LatestEvent(ctx context.Context, campaignID string) (event.Event, error)
	// ListRecentEvents returns up to limit events, newest first.
	ListRecentEvents(ctx context.Context, campaignID string, limit int) ([]event.Event, error)
}

// MemoryStore owns scoped campaign memories. Reads are raw; scope
// filtering is the caller's concern.
type MemoryStore interface {
	PutMemory(ctx context.Context, m memory.Memory) error
	// ListMemories returns memories ascending by created_at. A non-empty
	// scope restricts the result to that scope string.
	ListMemories(ctx context.Context, campaignID, scope string) ([]memory.Memory, error)
}

// CursorStore owns per-actor read positions in the event log.
type CursorStore interface {
	// GetCursor returns the actor's cursor, or ErrNotFound before the first
	// director call.
	GetCursor(ctx context.Context, campaignID, actorID string) (Cursor, error)
	// PutCursor upserts the cursor. Callers only ever move it forward.
	PutCursor(ctx context.Context, cur Cursor) error
}

// StateStore owns the campaign key/value state bag.
type StateStore interface {
	// GetState returns the value for key, or ErrNotFound.
	GetState(ctx context.Context, campaignID, key string) (string, error)
	// SetState upserts one key.
	SetState(ctx context.Context, campaignID, key, value string) error
	// SetStateMany upserts a batch of keys in one transaction, so a
	// mutation batch commits all keys or none.
	SetStateMany(ctx context.Context, campaignID string, entries map[string]string) error
	// ListState returns the full bag for a campaign.
	ListState(ctx context.Context, campaignID string) (map[string]string, error)
}

// RollStore persists resolved dice rolls.
type RollStore interface {
	PutRoll(ctx context.Context, r Roll) error
	// ListRolls returns rolls ascending by created_at.
	ListRolls(ctx context.Context, campaignID string) ([]Roll, error)
}

// Store bundles every persistence boundary the engine service needs.
type Store interface {
	CampaignStore
	EventStore
	MemoryStore
	CursorStore
	StateStore
	RollStore
}
