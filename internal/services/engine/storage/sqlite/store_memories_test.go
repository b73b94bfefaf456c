package sqlite

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/roundtable/internal/services/engine/domain/memory"
)

func putTestMemory(t *testing.T, store *Store, campaignID, memoryID, scope string, createdAt time.Time, tags []string) {
	t.Helper()

	err := store.PutMemory(context.Background(), memory.Memory{
		ID:         memoryID,
		CampaignID: campaignID,
		ActorID:    "player1",
		Scope:      scope,
		Text:       "text for " + memoryID,
		Tags:       tags,
		CreatedAt:  createdAt,
	})
	if err != nil {
		t.Fatalf("put memory %s: %v", memoryID, err)
	}
}

func TestPutAndListMemories(t *testing.T) {
	store := openTestStore(t)
	seedCampaign(t, store, "camp1")

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	putTestMemory(t, store, "camp1", "mem2", "party", base.Add(time.Minute), []string{"npc", "tavern"})
	putTestMemory(t, store, "camp1", "mem1", "world", base, nil)

	memories, err := store.ListMemories(context.Background(), "camp1", "")
	if err != nil {
		t.Fatalf("list memories: %v", err)
	}
	if len(memories) != 2 {
		t.Fatalf("expected 2 memories, got %d", len(memories))
	}
	if memories[0].ID != "mem1" || memories[1].ID != "mem2" {
		t.Fatalf("expected ascending created_at order, got %q then %q", memories[0].ID, memories[1].ID)
	}
	if memories[0].Tags == nil || len(memories[0].Tags) != 0 {
		t.Fatalf("expected empty tags list, got %v", memories[0].Tags)
	}
	if !reflect.DeepEqual(memories[1].Tags, []string{"npc", "tavern"}) {
		t.Fatalf("expected tag round trip, got %v", memories[1].Tags)
	}
	if !memories[0].CreatedAt.Equal(base) {
		t.Fatalf("expected created_at %v, got %v", base, memories[0].CreatedAt)
	}
}

func TestListMemoriesScopeFilter(t *testing.T) {
	store := openTestStore(t)
	seedCampaign(t, store, "camp1")

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	putTestMemory(t, store, "camp1", "mem1", "world", base, nil)
	putTestMemory(t, store, "camp1", "mem2", "private", base.Add(time.Second), nil)

	private, err := store.ListMemories(context.Background(), "camp1", "private")
	if err != nil {
		t.Fatalf("list private memories: %v", err)
	}
	if len(private) != 1 || private[0].ID != "mem2" {
		t.Fatalf("expected scope filter to match mem2, got %+v", private)
	}

	none, err := store.ListMemories(context.Background(), "camp1", "astral")
	if err != nil {
		t.Fatalf("list unknown scope: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no memories for unknown scope, got %d", len(none))
	}
}

func TestListMemoriesIsolatedByCampaign(t *testing.T) {
	store := openTestStore(t)
	seedCampaign(t, store, "camp1")
	seedCampaign(t, store, "camp2")

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	putTestMemory(t, store, "camp1", "mem1", "world", base, nil)

	other, err := store.ListMemories(context.Background(), "camp2", "")
	if err != nil {
		t.Fatalf("list memories: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no cross-campaign reads, got %d", len(other))
	}
}
