package app

import (
	"context"
	"testing"
	"time"

	"github.com/louisbranch/roundtable/internal/services/engine/domain/campaign"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/event"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/memory"
)

func nextTestContext(t *testing.T, svc *Service, campaignID string) DirectorPackage {
	t.Helper()

	pkg, err := svc.NextContext(context.Background(), campaignID, DefaultMaxEvents, DefaultMaxMemories)
	if err != nil {
		t.Fatalf("next context: %v", err)
	}
	return pkg
}

func forceTurnOwner(t *testing.T, svc *Service, campaignID, owner string, streak int) {
	t.Helper()

	err := svc.store.UpdateTurnState(context.Background(), campaignID, owner, streak, time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("force turn owner: %v", err)
	}
}

func TestDirectorNoTurnOwner(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)
	forceTurnOwner(t, svc, created.ID, "ghost", 0)

	pkg := nextTestContext(t, svc, created.ID)
	if pkg.ShouldAct {
		t.Fatal("expected should_act false for unresolvable owner")
	}
	if pkg.Reason != ReasonNoTurnOwner {
		t.Fatalf("expected reason %q, got %q", ReasonNoTurnOwner, pkg.Reason)
	}
	if pkg.VisibleEvents == nil || len(pkg.VisibleEvents) != 0 {
		t.Fatalf("expected empty visible events, got %v", pkg.VisibleEvents)
	}
	if pkg.Constraints.MaxOutputSentences != 6 {
		t.Fatalf("expected sentence cap 6, got %d", pkg.Constraints.MaxOutputSentences)
	}
}

func TestDirectorGatesAIPlayerUntilAddressed(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)

	// Two advances from dm put the AI player on the floor.
	advanceTestTurn(t, svc, created.ID)
	result := advanceTestTurn(t, svc, created.ID)
	if result.TurnOwner != "player1" {
		t.Fatalf("expected player1 on the floor, got %q", result.TurnOwner)
	}

	pkg := nextTestContext(t, svc, created.ID)
	if pkg.ShouldAct {
		t.Fatal("expected AI player gated on empty log")
	}
	if pkg.Reason != ReasonAwaitHumanInput {
		t.Fatalf("expected reason %q, got %q", ReasonAwaitHumanInput, pkg.Reason)
	}

	// An AI dm talking does not open the gate on its own.
	appendTestEvent(t, svc, created.ID, "dm", "the corridor stretches on", event.VisibilityPublic)
	pkg = nextTestContext(t, svc, created.ID)
	if pkg.ShouldAct {
		t.Fatal("expected AI player still gated behind AI-only log")
	}

	// A direct @mention from the dm does.
	appendTestEvent(t, svc, created.ID, "dm", "@player1 what do you do?", event.VisibilityPublic)
	pkg = nextTestContext(t, svc, created.ID)
	if !pkg.ShouldAct {
		t.Fatal("expected @mention to open the gate")
	}
	if pkg.ActorID != "player1" {
		t.Fatalf("expected acting actor player1, got %q", pkg.ActorID)
	}
}

func TestDirectorGateOpensOnNameMention(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)
	forceTurnOwner(t, svc, created.ID, "player1", 0)

	appendTestEvent(t, svc, created.ID, "dm", "PLAYER ONE, the chest is yours", event.VisibilityPublic)

	pkg := nextTestContext(t, svc, created.ID)
	if !pkg.ShouldAct {
		t.Fatal("expected case-insensitive name mention to open the gate")
	}
}

func TestDirectorGateOpensOnHumanEvent(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)
	forceTurnOwner(t, svc, created.ID, "player1", 0)

	appendTestEvent(t, svc, created.ID, "human1", "I open the chest", event.VisibilityPublic)

	pkg := nextTestContext(t, svc, created.ID)
	if !pkg.ShouldAct {
		t.Fatal("expected human event in window to open the gate")
	}
	if pkg.Reason != ReasonTurnOwner {
		t.Fatalf("expected reason %q, got %q", ReasonTurnOwner, pkg.Reason)
	}
}

func TestDirectorNeverGatesDMOrHuman(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)

	appendTestEvent(t, svc, created.ID, "dm", "ai monologue", event.VisibilityPublic)

	// dm holds the floor at creation.
	pkg := nextTestContext(t, svc, created.ID)
	if !pkg.ShouldAct {
		t.Fatal("expected dm to act despite AI-only log")
	}

	forceTurnOwner(t, svc, created.ID, "human1", 0)
	pkg = nextTestContext(t, svc, created.ID)
	if !pkg.ShouldAct {
		t.Fatal("expected human to act despite AI-only log")
	}
}

func TestDirectorCursorAdvances(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)

	first := appendTestEvent(t, svc, created.ID, "dm", "one", event.VisibilityPublic)
	second := appendTestEvent(t, svc, created.ID, "dm", "two", event.VisibilityPublic)

	pkg := nextTestContext(t, svc, created.ID)
	if len(pkg.VisibleEvents) != 2 || pkg.VisibleEvents[0].ID != first.ID || pkg.VisibleEvents[1].ID != second.ID {
		t.Fatalf("expected both events on first call, got %v", eventContents(pkg.VisibleEvents))
	}

	pkg = nextTestContext(t, svc, created.ID)
	if len(pkg.VisibleEvents) != 0 {
		t.Fatalf("expected no events on second call, got %v", eventContents(pkg.VisibleEvents))
	}

	third := appendTestEvent(t, svc, created.ID, "dm", "three", event.VisibilityPublic)
	pkg = nextTestContext(t, svc, created.ID)
	if len(pkg.VisibleEvents) != 1 || pkg.VisibleEvents[0].ID != third.ID {
		t.Fatalf("expected only the third event, got %v", eventContents(pkg.VisibleEvents))
	}
}

func TestDirectorCursorHonorsMaxEvents(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)

	appendTestEvent(t, svc, created.ID, "dm", "one", event.VisibilityPublic)
	appendTestEvent(t, svc, created.ID, "dm", "two", event.VisibilityPublic)
	appendTestEvent(t, svc, created.ID, "dm", "three", event.VisibilityPublic)

	pkg, err := svc.NextContext(context.Background(), created.ID, 2, DefaultMaxMemories)
	if err != nil {
		t.Fatalf("next context: %v", err)
	}
	if got := eventContents(pkg.VisibleEvents); len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("expected capped [one two], got %v", got)
	}

	// The cursor stops at the last returned event, so nothing is skipped.
	pkg, err = svc.NextContext(context.Background(), created.ID, 2, DefaultMaxMemories)
	if err != nil {
		t.Fatalf("next context: %v", err)
	}
	if got := eventContents(pkg.VisibleEvents); len(got) != 1 || got[0] != "three" {
		t.Fatalf("expected remainder [three], got %v", got)
	}
}

func TestDirectorCursorFiltersInvisible(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)
	forceTurnOwner(t, svc, created.ID, "human1", 0)

	visible := appendTestEvent(t, svc, created.ID, "human1", "seen", event.VisibilityPublic)
	appendTestEvent(t, svc, created.ID, "dm", "secret dm note", event.VisibilityDMOnly)

	pkg := nextTestContext(t, svc, created.ID)
	if len(pkg.VisibleEvents) != 1 || pkg.VisibleEvents[0].ID != visible.ID {
		t.Fatalf("expected only the public event, got %v", eventContents(pkg.VisibleEvents))
	}

	later := appendTestEvent(t, svc, created.ID, "human1", "later", event.VisibilityPublic)
	pkg = nextTestContext(t, svc, created.ID)
	if len(pkg.VisibleEvents) != 1 || pkg.VisibleEvents[0].ID != later.ID {
		t.Fatalf("expected the later public event, got %v", eventContents(pkg.VisibleEvents))
	}
}

func TestDirectorGatedCallLeavesCursorAlone(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)
	forceTurnOwner(t, svc, created.ID, "player1", 0)

	appendTestEvent(t, svc, created.ID, "dm", "scene setting", event.VisibilityPublic)

	pkg := nextTestContext(t, svc, created.ID)
	if pkg.ShouldAct {
		t.Fatal("expected gated call")
	}

	appendTestEvent(t, svc, created.ID, "human1", "I act", event.VisibilityPublic)
	pkg = nextTestContext(t, svc, created.ID)
	if !pkg.ShouldAct {
		t.Fatal("expected gate open after human event")
	}
	if len(pkg.VisibleEvents) != 2 {
		t.Fatalf("expected both events after gated call, got %v", eventContents(pkg.VisibleEvents))
	}
}

func TestDirectorMemoryBuckets(t *testing.T) {
	svc := newTestService(t, Config{DMOmniscientPrivate: true})
	created := createTestCampaign(t, svc)

	writeTestMemory(t, svc, created.ID, "dm", memory.ScopeWorld, "world lore")
	writeTestMemory(t, svc, created.ID, "dm", memory.ScopePublic, "public note")
	writeTestMemory(t, svc, created.ID, "human1", memory.ScopeParty, "party debt")
	writeTestMemory(t, svc, created.ID, "player1", memory.ScopePrivate, "stolen gem")
	writeTestMemory(t, svc, created.ID, "dm", memory.ScopeDMOnly, "secret plot")

	pkg := nextTestContext(t, svc, created.ID)
	if !pkg.ShouldAct {
		t.Fatalf("expected dm to act, got reason %q", pkg.Reason)
	}

	if got := memoryTexts(pkg.Memories.World); len(got) != 2 || got[0] != "world lore" || got[1] != "public note" {
		t.Fatalf("expected world bucket [world lore, public note], got %v", got)
	}
	if got := memoryTexts(pkg.Memories.Party); len(got) != 1 || got[0] != "party debt" {
		t.Fatalf("expected party bucket [party debt], got %v", got)
	}
	// The omniscient dm sees the player's private memory in its bucket;
	// dm_only memories are visible but belong to no bucket.
	if got := memoryTexts(pkg.Memories.Private); len(got) != 1 || got[0] != "stolen gem" {
		t.Fatalf("expected private bucket [stolen gem], got %v", got)
	}
}

func TestDirectorMemoryBucketCaps(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)

	writeTestMemory(t, svc, created.ID, "dm", memory.ScopeWorld, "first")
	writeTestMemory(t, svc, created.ID, "dm", memory.ScopePublic, "second")
	writeTestMemory(t, svc, created.ID, "dm", memory.ScopeWorld, "third")
	writeTestMemory(t, svc, created.ID, "human1", memory.ScopeParty, "kept")

	pkg, err := svc.NextContext(context.Background(), created.ID, DefaultMaxEvents, 2)
	if err != nil {
		t.Fatalf("next context: %v", err)
	}
	if got := memoryTexts(pkg.Memories.World); len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("expected capped world bucket [first second], got %v", got)
	}
	// Caps apply per bucket, not across buckets.
	if got := memoryTexts(pkg.Memories.Party); len(got) != 1 || got[0] != "kept" {
		t.Fatalf("expected party bucket unaffected, got %v", got)
	}
}

func TestDirectorMustRefocus(t *testing.T) {
	t.Run("stored streak", func(t *testing.T) {
		svc := newTestService(t, Config{})
		created := createTestCampaign(t, svc)
		forceTurnOwner(t, svc, created.ID, "dm", 3)

		pkg := nextTestContext(t, svc, created.ID)
		if pkg.Reason != ReasonRefocus {
			t.Fatalf("expected refocus reason, got %q", pkg.Reason)
		}
		if !pkg.Constraints.MustAskQuestion {
			t.Fatal("expected must_ask_question with refocus")
		}
	})

	t.Run("three ai events", func(t *testing.T) {
		svc := newTestService(t, Config{})
		created := createTestCampaign(t, svc)

		appendTestEvent(t, svc, created.ID, "dm", "one", event.VisibilityPublic)
		appendTestEvent(t, svc, created.ID, "player1", "two", event.VisibilityPublic)
		appendTestEvent(t, svc, created.ID, "dm", "three", event.VisibilityPublic)

		pkg := nextTestContext(t, svc, created.ID)
		if pkg.Reason != ReasonRefocus {
			t.Fatalf("expected refocus after three AI events, got %q", pkg.Reason)
		}
	})

	t.Run("recent refocus event", func(t *testing.T) {
		svc := newTestService(t, Config{AIOnlyStreakLimit: 1})
		created := createTestCampaign(t, svc)

		appendTestEvent(t, svc, created.ID, "dm", "ramble", event.VisibilityPublic)
		result := advanceTestTurn(t, svc, created.ID)
		if !result.RefocusTriggered {
			t.Fatal("expected refocus with limit 1")
		}
		forceTurnOwner(t, svc, created.ID, "dm", 0)

		pkg := nextTestContext(t, svc, created.ID)
		if pkg.Reason != ReasonRefocus {
			t.Fatalf("expected refocus while marker is newest event, got %q", pkg.Reason)
		}
	})

	t.Run("quiet scene", func(t *testing.T) {
		svc := newTestService(t, Config{})
		created := createTestCampaign(t, svc)

		appendTestEvent(t, svc, created.ID, "human1", "hello there", event.VisibilityPublic)

		pkg := nextTestContext(t, svc, created.ID)
		if pkg.Reason != ReasonTurnOwner {
			t.Fatalf("expected turn_owner reason, got %q", pkg.Reason)
		}
		if pkg.Constraints.MustAskQuestion {
			t.Fatal("expected no question requirement")
		}
		if pkg.Constraints.MaxOutputSentences != 6 {
			t.Fatalf("expected sentence cap 6, got %d", pkg.Constraints.MaxOutputSentences)
		}
	})
}

func TestDirectorViewerState(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)

	appendTestEvent(t, svc, created.ID, "dm", "public", event.VisibilityPublic)
	appendTestEvent(t, svc, created.ID, "dm", "dm only", event.VisibilityDMOnly)

	pkg := nextTestContext(t, svc, created.ID)
	if pkg.ActorRole != campaign.ActorTypeDM {
		t.Fatalf("expected dm role, got %v", pkg.ActorRole)
	}
	if pkg.ViewerState.TurnOwner != "dm" {
		t.Fatalf("expected owner dm in viewer state, got %q", pkg.ViewerState.TurnOwner)
	}
	if pkg.ViewerState.VisibleEventsCount != 2 {
		t.Fatalf("expected dm to count both events, got %d", pkg.ViewerState.VisibleEventsCount)
	}
}

func TestDirectorUnknownCampaign(t *testing.T) {
	svc := newTestService(t, Config{})

	if _, err := svc.NextContext(context.Background(), "missing", 10, 10); err == nil {
		t.Fatal("expected error for unknown campaign")
	}
}
