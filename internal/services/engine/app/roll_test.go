package app

import (
	"context"
	"fmt"
	"testing"

	apperrors "github.com/louisbranch/roundtable/internal/platform/errors"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/dice"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/event"
)

func TestRollPersistsAndLogsEvent(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)

	roll, err := svc.Roll(context.Background(), created.ID, RollInput{
		ActorID: "player1",
		Expr:    "2d6+3",
		Reason:  "attack",
	})
	if err != nil {
		t.Fatalf("roll: %v", err)
	}

	if roll.Result < 5 || roll.Result > 15 {
		t.Fatalf("expected 2d6+3 in [5,15], got %d", roll.Result)
	}

	// The service seeds the generator with 42 under test, so the stored
	// roll must match a direct evaluation with the same seed.
	expected, err := dice.Roll("2d6+3", 42)
	if err != nil {
		t.Fatalf("reference roll: %v", err)
	}
	if roll.Result != expected.Total {
		t.Fatalf("expected deterministic total %d, got %d", expected.Total, roll.Result)
	}
	if roll.Breakdown != expected.Breakdown() {
		t.Fatalf("expected breakdown %q, got %q", expected.Breakdown(), roll.Breakdown)
	}

	events, err := svc.ListEvents(context.Background(), created.ID, "human1", "")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one logged event, got %d", len(events))
	}
	logged := events[0]
	if logged.Type != event.TypeRoll {
		t.Fatalf("expected roll event type, got %q", logged.Type)
	}
	if logged.Visibility != event.VisibilityPublic {
		t.Fatalf("expected public roll event, got %q", logged.Visibility)
	}
	want := fmt.Sprintf("Roll 2d6+3 for attack: %s", roll.Breakdown)
	if logged.Content != want {
		t.Fatalf("expected content %q, got %q", want, logged.Content)
	}

	rolls, err := svc.ListRolls(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("list rolls: %v", err)
	}
	if len(rolls) != 1 || rolls[0].ID != roll.ID {
		t.Fatalf("expected stored roll %s, got %v", roll.ID, rolls)
	}
}

func TestRollDefaultsToSystemActor(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)

	roll, err := svc.Roll(context.Background(), created.ID, RollInput{Expr: "1d4", Reason: "trap"})
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if roll.ActorID != event.SystemActorID {
		t.Fatalf("expected system actor, got %q", roll.ActorID)
	}

	events, err := svc.ListEvents(context.Background(), created.ID, "human1", "")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].ActorID != event.SystemActorID {
		t.Fatalf("expected one system-authored roll event, got %v", events)
	}
}

func TestRollInvalidExpression(t *testing.T) {
	svc := newTestService(t, Config{})
	created := createTestCampaign(t, svc)

	_, err := svc.Roll(context.Background(), created.ID, RollInput{
		ActorID: "player1",
		Expr:    "banana",
		Reason:  "attack",
	})
	if apperrors.CodeFor(err) != apperrors.CodeDiceInvalidSpec {
		t.Fatalf("expected invalid dice code, got %v", err)
	}

	// Nothing is persisted on a failed parse.
	events, listErr := svc.ListEvents(context.Background(), created.ID, "dm", "")
	if listErr != nil {
		t.Fatalf("list events: %v", listErr)
	}
	if len(events) != 0 {
		t.Fatalf("expected no logged events, got %d", len(events))
	}
	rolls, listErr := svc.ListRolls(context.Background(), created.ID)
	if listErr != nil {
		t.Fatalf("list rolls: %v", listErr)
	}
	if len(rolls) != 0 {
		t.Fatalf("expected no stored rolls, got %d", len(rolls))
	}
}

func TestRollUnknownCampaign(t *testing.T) {
	svc := newTestService(t, Config{})

	_, err := svc.Roll(context.Background(), "missing", RollInput{ActorID: "dm", Expr: "1d20", Reason: "check"})
	if err == nil {
		t.Fatal("expected error for unknown campaign")
	}
}
