package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/louisbranch/roundtable/internal/services/engine/domain/campaign"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/event"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/memory"
	"github.com/louisbranch/roundtable/internal/services/engine/storage"
)

// Director package reasons.
const (
	// ReasonTurnOwner means the actor simply holds the floor.
	ReasonTurnOwner = "turn_owner"
	// ReasonRefocus means the actor holds the floor and the scene needs
	// steering back to the humans.
	ReasonRefocus = "refocus"
	// ReasonNoTurnOwner means the campaign's turn owner resolves to no
	// roster entry.
	ReasonNoTurnOwner = "no_turn_owner"
	// ReasonAwaitHumanInput means an AI player is gated until a human
	// speaks or the dm addresses it directly.
	ReasonAwaitHumanInput = "await_human_input"
)

// Default caps applied by transports when a request omits them.
const (
	DefaultMaxEvents   = 50
	DefaultMaxMemories = 30
)

// Director thresholds. These are fixed: the configurable streak limit
// tunes the turn-advance breaker, not the prompt-side flag.
const (
	directorRecentWindow  = 6
	directorRefocusStreak = 3
	directorAIRunLength   = 3
)

// DirectorConstraints bound the output of the acting actor.
type DirectorConstraints struct {
	MustAskQuestion    bool
	MaxOutputSentences int
}

// DirectorMemories buckets the acting actor's visible memories by reach.
// World carries world and public scopes.
type DirectorMemories struct {
	World   []memory.Memory
	Party   []memory.Memory
	Private []memory.Memory
}

// DirectorPackage is the assembled bundle that drives one turn. When
// ShouldAct is false only Reason and Constraints carry meaning.
type DirectorPackage struct {
	ShouldAct     bool
	Reason        string
	ActorID       string
	ActorRole     campaign.ActorType
	ViewerState   CampaignState
	VisibleEvents []event.Event
	Memories      DirectorMemories
	Constraints   DirectorConstraints
}

func emptyDirectorPackage(reason string) DirectorPackage {
	return DirectorPackage{
		Reason:        reason,
		VisibleEvents: []event.Event{},
		Memories: DirectorMemories{
			World:   []memory.Memory{},
			Party:   []memory.Memory{},
			Private: []memory.Memory{},
		},
		Constraints: DirectorConstraints{MaxOutputSentences: defaultMaxOutputSentences},
	}
}

// NextContext assembles the package for the current turn owner: gate
// check, cursor advance over the actor's filtered view of the log,
// bucketed memories, and the refocus flag. The call serializes against
// appends and turn advances on the same campaign. Cursor creation and
// advancement are its only writes.
func (s *Service) NextContext(ctx context.Context, campaignID string, maxEvents, maxMemories int) (DirectorPackage, error) {
	unlock := s.locks.lock(campaignID)
	defer unlock()

	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return DirectorPackage{}, err
	}

	actor, ok := c.ActorByID(c.TurnOwner)
	if !ok {
		return emptyDirectorPackage(ReasonNoTurnOwner), nil
	}

	recent, err := s.store.ListRecentEvents(ctx, campaignID, directorRecentWindow)
	if err != nil {
		return DirectorPackage{}, fmt.Errorf("list recent events: %w", err)
	}

	if actor.Type == campaign.ActorTypePlayer && actor.IsAI {
		gated := !anyNonAIAuthor(c, recent)
		if gated {
			addressed, err := s.lastDMAddresses(ctx, c, actor)
			if err != nil {
				return DirectorPackage{}, err
			}
			if !addressed {
				return emptyDirectorPackage(ReasonAwaitHumanInput), nil
			}
		}
	}

	visibleEvents, err := s.advanceCursor(ctx, c, actor, maxEvents)
	if err != nil {
		return DirectorPackage{}, err
	}

	memories, err := s.bucketMemories(ctx, c, actor, maxMemories)
	if err != nil {
		return DirectorPackage{}, err
	}

	mustRefocus := refocusNeeded(c, recent)

	state, err := s.assembleState(ctx, c, actor.ID)
	if err != nil {
		return DirectorPackage{}, err
	}

	reason := ReasonTurnOwner
	if mustRefocus {
		reason = ReasonRefocus
	}

	return DirectorPackage{
		ShouldAct:     true,
		Reason:        reason,
		ActorID:       actor.ID,
		ActorRole:     actor.Type,
		ViewerState:   state,
		VisibleEvents: visibleEvents,
		Memories:      memories,
		Constraints: DirectorConstraints{
			MustAskQuestion:    mustRefocus,
			MaxOutputSentences: defaultMaxOutputSentences,
		},
	}, nil
}

// advanceCursor lists the events the actor has not yet seen, filtered to
// its visibility, capped at maxEvents. The cursor row is created on the
// first call and moves only when new events were returned, so it walks
// filtered history without skipping anything the actor could see.
func (s *Service) advanceCursor(ctx context.Context, c campaign.Campaign, actor campaign.Actor, maxEvents int) ([]event.Event, error) {
	cursor, err := s.store.GetCursor(ctx, c.ID, actor.ID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		cursor = storage.Cursor{
			CampaignID: c.ID,
			ActorID:    actor.ID,
			UpdatedAt:  s.now().UTC(),
		}
		if err := s.store.PutCursor(ctx, cursor); err != nil {
			return nil, fmt.Errorf("create cursor: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("get cursor: %w", err)
	}

	events, err := s.store.ListEvents(ctx, c.ID, cursor.LastSeenEventID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	visible := make([]event.Event, 0, len(events))
	for _, evt := range events {
		if len(visible) >= maxEvents {
			break
		}
		if event.Visible(evt.Visibility, actor.ID, actor.IsDM()) {
			visible = append(visible, evt)
		}
	}

	if len(visible) > 0 {
		cursor.LastSeenEventID = visible[len(visible)-1].ID
		cursor.UpdatedAt = s.now().UTC()
		if err := s.store.PutCursor(ctx, cursor); err != nil {
			return nil, fmt.Errorf("advance cursor: %w", err)
		}
	}
	return visible, nil
}

// bucketMemories groups the actor's visible memories by scope reach with
// an independent cap per bucket. Overflow drops from that bucket only.
func (s *Service) bucketMemories(ctx context.Context, c campaign.Campaign, actor campaign.Actor, maxMemories int) (DirectorMemories, error) {
	all, err := s.readMemoriesFor(ctx, c.ID, actor.ID, actor.IsDM(), "")
	if err != nil {
		return DirectorMemories{}, err
	}

	buckets := DirectorMemories{
		World:   []memory.Memory{},
		Party:   []memory.Memory{},
		Private: []memory.Memory{},
	}
	for _, m := range all {
		switch m.Scope {
		case memory.ScopeWorld, memory.ScopePublic:
			if len(buckets.World) < maxMemories {
				buckets.World = append(buckets.World, m)
			}
		case memory.ScopeParty:
			if len(buckets.Party) < maxMemories {
				buckets.Party = append(buckets.Party, m)
			}
		case memory.ScopePrivate:
			if len(buckets.Private) < maxMemories {
				buckets.Private = append(buckets.Private, m)
			}
		}
	}
	return buckets, nil
}

// anyNonAIAuthor reports whether any event in the window resolves to a
// non-AI roster author. The synthetic system author never counts.
func anyNonAIAuthor(c campaign.Campaign, events []event.Event) bool {
	for _, evt := range events {
		if author, ok := c.ActorByID(evt.ActorID); ok && !author.IsAI {
			return true
		}
	}
	return false
}

// lastDMAddresses reports whether the newest dm-authored event mentions
// the actor, by @id or by name, case-insensitively.
func (s *Service) lastDMAddresses(ctx context.Context, c campaign.Campaign, actor campaign.Actor) (bool, error) {
	events, err := s.store.ListEvents(ctx, c.ID, "")
	if err != nil {
		return false, fmt.Errorf("list events: %w", err)
	}
	for i := len(events) - 1; i >= 0; i-- {
		author, ok := c.ActorByID(events[i].ActorID)
		if !ok || !author.IsDM() {
			continue
		}
		content := events[i].Content
		return foldContains(content, "@"+actor.ID) || foldContains(content, actor.Name), nil
	}
	return false, nil
}

// refocusNeeded flags scenes that drifted into AI-only exchange: the
// stored streak hit the threshold, the last three events were all
// AI-authored, or the newest event is already a refocus marker. The
// recent window is newest first.
func refocusNeeded(c campaign.Campaign, recent []event.Event) bool {
	if c.AIOnlyStreak >= directorRefocusStreak {
		return true
	}
	if len(recent) > 0 && recent[0].Type == event.TypeSystemRefocus {
		return true
	}
	if len(recent) < directorAIRunLength {
		return false
	}
	for _, evt := range recent[:directorAIRunLength] {
		author, ok := c.ActorByID(evt.ActorID)
		if !ok || !author.IsAI {
			return false
		}
	}
	return true
}

func foldContains(haystack, needle string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(haystack), fold.String(needle))
}
