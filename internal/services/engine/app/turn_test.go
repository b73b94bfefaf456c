package app

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/louisbranch/roundtable/internal/platform/errors"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/campaign"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/event"
)

func advanceTestTurn(t *testing.T, svc *Service, campaignID string) TurnAdvance {
	t.Helper()

	result, err := svc.AdvanceTurn(context.Background(), campaignID)
	if err != nil {
		t.Fatalf("advance turn: %v", err)
	}
	return result
}

func countRefocusEvents(t *testing.T, svc *Service, campaignID string) int {
	t.Helper()

	events, err := svc.ListEvents(context.Background(), campaignID, "dm", "")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	count := 0
	for _, evt := range events {
		if evt.Type == event.TypeSystemRefocus {
			count++
		}
	}
	return count
}

func TestAdvanceRotatesCanonicalOrder(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)

	owners := []string{"human1", "player1", "dm", "human1"}
	for _, want := range owners {
		result := advanceTestTurn(t, svc, created.ID)
		if result.TurnOwner != want {
			t.Fatalf("expected owner %q, got %q", want, result.TurnOwner)
		}
	}
}

func TestAdvanceThreeAIEventsTriggerOneRefocus(t *testing.T) {
	svc := newTestService(t, Config{AIOnlyStreakLimit: 3})
	created := createTestCampaign(t, svc)

	authors := []string{"dm", "player1", "dm"}
	var last TurnAdvance
	for i, author := range authors {
		appendTestEvent(t, svc, created.ID, author, "rambling on", event.VisibilityPublic)
		last = advanceTestTurn(t, svc, created.ID)
		if i < len(authors)-1 && last.RefocusTriggered {
			t.Fatalf("refocus fired early on advance %d", i+1)
		}
	}

	if !last.RefocusTriggered {
		t.Fatal("expected third advance to trigger refocus")
	}
	if last.AIOnlyStreak != 0 {
		t.Fatalf("expected streak reset to 0, got %d", last.AIOnlyStreak)
	}
	if got := countRefocusEvents(t, svc, created.ID); got != 1 {
		t.Fatalf("expected exactly one refocus event, got %d", got)
	}
}

func TestAdvanceRefocusEventShape(t *testing.T) {
	svc := newTestService(t, Config{AIOnlyStreakLimit: 1})
	created := createTestCampaign(t, svc)

	appendTestEvent(t, svc, created.ID, "dm", "monologue", event.VisibilityPublic)
	result := advanceTestTurn(t, svc, created.ID)
	if !result.RefocusTriggered {
		t.Fatal("expected refocus with limit 1")
	}

	events, err := svc.ListEvents(context.Background(), created.ID, "human1", "")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	refocus := events[len(events)-1]
	if refocus.Type != event.TypeSystemRefocus {
		t.Fatalf("expected system_refocus type, got %q", refocus.Type)
	}
	if refocus.ActorID != event.SystemActorID {
		t.Fatalf("expected system author, got %q", refocus.ActorID)
	}
	if refocus.Visibility != event.VisibilityPublic {
		t.Fatalf("expected public refocus, got %q", refocus.Visibility)
	}
	if refocus.Content != event.RefocusContent {
		t.Fatalf("unexpected refocus content %q", refocus.Content)
	}
}

func TestAdvanceHumanAuthorResetsStreak(t *testing.T) {
	svc := newTestService(t, Config{AIOnlyStreakLimit: 3})
	created := createTestCampaign(t, svc)

	appendTestEvent(t, svc, created.ID, "dm", "ai line", event.VisibilityPublic)
	result := advanceTestTurn(t, svc, created.ID)
	if result.AIOnlyStreak != 1 {
		t.Fatalf("expected streak 1 after ai event, got %d", result.AIOnlyStreak)
	}

	appendTestEvent(t, svc, created.ID, "human1", "I kick the door", event.VisibilityPublic)
	result = advanceTestTurn(t, svc, created.ID)
	if result.AIOnlyStreak != 0 {
		t.Fatalf("expected streak reset by human event, got %d", result.AIOnlyStreak)
	}
	if result.RefocusTriggered {
		t.Fatal("expected no refocus after human event")
	}
}

func TestAdvanceSystemAuthorResetsStreak(t *testing.T) {
	svc := newTestService(t, Config{AIOnlyStreakLimit: 2})
	created := createTestCampaign(t, svc)

	appendTestEvent(t, svc, created.ID, "dm", "one", event.VisibilityPublic)
	advanceTestTurn(t, svc, created.ID)
	appendTestEvent(t, svc, created.ID, "dm", "two", event.VisibilityPublic)
	result := advanceTestTurn(t, svc, created.ID)
	if !result.RefocusTriggered {
		t.Fatal("expected refocus at limit 2")
	}

	// The refocus event itself is system-authored, so the next advance
	// resets instead of counting it toward a new streak.
	result = advanceTestTurn(t, svc, created.ID)
	if result.AIOnlyStreak != 0 {
		t.Fatalf("expected streak 0 after system event, got %d", result.AIOnlyStreak)
	}
	if result.RefocusTriggered {
		t.Fatal("expected no second refocus")
	}
}

func TestAdvanceEmptyLogKeepsStoredStreak(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)

	result := advanceTestTurn(t, svc, created.ID)
	if result.AIOnlyStreak != 0 {
		t.Fatalf("expected streak 0 on empty log, got %d", result.AIOnlyStreak)
	}
	if result.LastEventID != "" {
		t.Fatalf("expected empty last event id, got %q", result.LastEventID)
	}
	if result.RefocusTriggered {
		t.Fatal("expected no refocus on empty log")
	}
}

func TestAdvanceReportsLastEventID(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)

	evt := appendTestEvent(t, svc, created.ID, "human1", "hello", event.VisibilityPublic)
	result := advanceTestTurn(t, svc, created.ID)
	if result.LastEventID != evt.ID {
		t.Fatalf("expected last event id %s, got %s", evt.ID, result.LastEventID)
	}
}

func TestAdvanceNoActors(t *testing.T) {
	svc := newTestService(t, Config{})

	created, err := svc.CreateCampaign(context.Background(), campaign.CreateCampaignInput{Name: "Empty Table"})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	_, err = svc.AdvanceTurn(context.Background(), created.ID)
	if !errors.Is(err, ErrNoActors) {
		t.Fatalf("expected ErrNoActors, got %v", err)
	}
	if apperrors.CodeFor(err) != apperrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", apperrors.CodeFor(err))
	}
}

func TestAdvancePersistsTurnState(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)

	advanceTestTurn(t, svc, created.ID)

	loaded, err := svc.GetCampaign(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if loaded.TurnOwner != "human1" {
		t.Fatalf("expected persisted owner human1, got %q", loaded.TurnOwner)
	}
	if loaded.FloorLock != "human1" {
		t.Fatalf("expected floor lock human1, got %q", loaded.FloorLock)
	}
	if loaded.FloorLockAt == nil {
		t.Fatal("expected floor lock timestamp")
	}
}
