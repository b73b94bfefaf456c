package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/roundtable/internal/services/engine/domain/dice"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/event"
	"github.com/louisbranch/roundtable/internal/services/engine/storage"
)

// RollInput describes one dice roll request.
type RollInput struct {
	ActorID string
	Expr    string
	Reason  string
}

// Roll resolves a dice expression, persists the roll, and logs it as a
// public event so every viewer sees the outcome. An empty actor is
// attributed to the system actor. Runs under the campaign lock because
// of the append.
func (s *Service) Roll(ctx context.Context, campaignID string, input RollInput) (storage.Roll, error) {
	unlock := s.locks.lock(campaignID)
	defer unlock()

	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return storage.Roll{}, err
	}

	if strings.TrimSpace(input.ActorID) == "" {
		input.ActorID = event.SystemActorID
	}

	seed, err := s.newSeed()
	if err != nil {
		return storage.Roll{}, fmt.Errorf("roll seed: %w", err)
	}
	result, err := dice.Roll(input.Expr, seed)
	if err != nil {
		return storage.Roll{}, err
	}

	rollID, err := s.newID()
	if err != nil {
		return storage.Roll{}, fmt.Errorf("generate roll id: %w", err)
	}

	roll := storage.Roll{
		ID:         rollID,
		CampaignID: campaignID,
		ActorID:    input.ActorID,
		Expr:       input.Expr,
		Reason:     input.Reason,
		Result:     result.Total,
		Breakdown:  result.Breakdown(),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.PutRoll(ctx, roll); err != nil {
		return storage.Roll{}, fmt.Errorf("put roll: %w", err)
	}

	_, err = s.appendLocked(ctx, campaignID, event.CreateEventInput{
		ActorID:    input.ActorID,
		Type:       event.TypeRoll,
		Content:    fmt.Sprintf("Roll %s for %s: %s", input.Expr, input.Reason, roll.Breakdown),
		Visibility: event.VisibilityPublic,
	})
	if err != nil {
		return storage.Roll{}, err
	}

	return roll, nil
}

// ListRolls returns a campaign's rolls ascending by creation time.
func (s *Service) ListRolls(ctx context.Context, campaignID string) ([]storage.Roll, error) {
	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	rolls, err := s.store.ListRolls(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list rolls: %w", err)
	}
	return rolls, nil
}
