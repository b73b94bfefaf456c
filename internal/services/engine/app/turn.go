package app

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/roundtable/internal/platform/errors"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/campaign"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/event"
	"github.com/louisbranch/roundtable/internal/services/engine/storage"
)

// ErrNoActors indicates a turn advance on a campaign without a roster.
var ErrNoActors = apperrors.New(apperrors.CodeNotFound, "No actors in campaign")

// TurnAdvance is the outcome of one turn advance. LastEventID names the
// newest event observed before any refocus injection; empty means the log
// was empty.
type TurnAdvance struct {
	TurnOwner        string
	AIOnlyStreak     int
	RefocusTriggered bool
	LastEventID      string
}

// AdvanceTurn moves the floor to the next actor in the canonical order
// and maintains the anti-ramble streak. When the streak reaches the
// configured limit a public system_refocus event is appended and the
// streak resets. The whole transition runs under the campaign lock.
func (s *Service) AdvanceTurn(ctx context.Context, campaignID string) (TurnAdvance, error) {
	unlock := s.locks.lock(campaignID)
	defer unlock()

	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return TurnAdvance{}, err
	}
	if len(c.Actors) == 0 {
		return TurnAdvance{}, ErrNoActors
	}

	lastEventID := ""
	streak := c.AIOnlyStreak

	latest, err := s.store.LatestEvent(ctx, campaignID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// Empty log: the stored streak carries over untouched.
	case err != nil:
		return TurnAdvance{}, fmt.Errorf("latest event: %w", err)
	default:
		lastEventID = latest.ID
		if author, ok := c.ActorByID(latest.ActorID); ok && author.IsAI {
			streak++
		} else {
			streak = 0
		}
	}

	refocusTriggered := false
	if streak >= s.cfg.AIOnlyStreakLimit {
		refocusTriggered = true
		if _, err := s.appendLocked(ctx, campaignID, event.RefocusInput()); err != nil {
			return TurnAdvance{}, err
		}
		streak = 0
	}

	nextOwner := campaign.NextOwner(c.Actors, c.TurnOwner)
	if err := s.store.UpdateTurnState(ctx, campaignID, nextOwner, streak, s.now().UTC()); err != nil {
		return TurnAdvance{}, fmt.Errorf("update turn state: %w", err)
	}

	return TurnAdvance{
		TurnOwner:        nextOwner,
		AIOnlyStreak:     streak,
		RefocusTriggered: refocusTriggered,
		LastEventID:      lastEventID,
	}, nil
}
