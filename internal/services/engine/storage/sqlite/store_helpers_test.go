package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/roundtable/internal/services/engine/domain/campaign"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/event"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "engine.sqlite")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func seedCampaign(t *testing.T, store *Store, campaignID string) campaign.Campaign {
	t.Helper()

	seeded := campaign.Campaign{
		ID:        campaignID,
		Name:      "Demo Campaign",
		StateJSON: "{}",
		TurnOwner: "dm",
		CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Actors: []campaign.Actor{
			{ID: "dm", CampaignID: campaignID, Name: "Dungeon Master", Type: campaign.ActorTypeDM, IsAI: true},
			{ID: "player1", CampaignID: campaignID, Name: "Player 1", Type: campaign.ActorTypePlayer, IsAI: true},
			{ID: "human", CampaignID: campaignID, Name: "Human", Type: campaign.ActorTypeHuman},
		},
	}
	if err := store.CreateCampaign(context.Background(), seeded); err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
	return seeded
}

func appendTestEvent(t *testing.T, store *Store, campaignID, eventID, actorID string, createdAt time.Time) event.Event {
	t.Helper()

	stored, err := store.AppendEvent(context.Background(), event.Event{
		ID:         eventID,
		CampaignID: campaignID,
		ActorID:    actorID,
		Type:       event.TypeUtterance,
		Content:    "content for " + eventID,
		Visibility: event.VisibilityPublic,
		CreatedAt:  createdAt,
	})
	if err != nil {
		t.Fatalf("append event %s: %v", eventID, err)
	}
	return stored
}

func TestMillisHelpers(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	value := time.Date(2026, 2, 1, 9, 0, 0, 0, loc)
	if toMillis(value) != value.UTC().UnixMilli() {
		t.Fatalf("expected millis to match UTC unix millis")
	}

	round := fromMillis(toMillis(value))
	if !round.Equal(value.UTC()) {
		t.Fatalf("expected round trip UTC time, got %v", round)
	}
}

func TestNullMillisHelpers(t *testing.T) {
	if got := toNullMillis(nil); got.Valid {
		t.Fatal("expected nil time to produce invalid NullInt64")
	}
	if got := fromNullMillis(sql.NullInt64{}); got != nil {
		t.Fatal("expected invalid NullInt64 to return nil time")
	}

	value := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	wrapped := toNullMillis(&value)
	if !wrapped.Valid {
		t.Fatal("expected valid null millis")
	}
	unwrapped := fromNullMillis(wrapped)
	if unwrapped == nil || !unwrapped.Equal(value) {
		t.Fatalf("expected round trip time, got %v", unwrapped)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
