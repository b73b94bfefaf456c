package app

import (
	"context"
	"fmt"
	"log"

	"github.com/louisbranch/roundtable/internal/services/engine/domain/event"
)

// AppendEvent appends one event to a campaign's log. The append runs
// under the campaign lock so the monotonic timestamp shim never races a
// concurrent turn advance or director call.
func (s *Service) AppendEvent(ctx context.Context, campaignID string, input event.CreateEventInput) (event.Event, error) {
	unlock := s.locks.lock(campaignID)
	defer unlock()

	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return event.Event{}, err
	}
	if subject, ok := event.PrivateSubject(input.Visibility); ok {
		if _, known := c.ActorByID(subject); !known {
			log.Printf("append event: private visibility names unknown actor %q", subject)
		}
	}
	return s.appendLocked(ctx, campaignID, input)
}

// appendLocked builds and persists an event for callers already holding
// the campaign lock.
func (s *Service) appendLocked(ctx context.Context, campaignID string, input event.CreateEventInput) (event.Event, error) {
	evt, err := event.New(campaignID, input, s.now, s.newID)
	if err != nil {
		return event.Event{}, err
	}
	stored, err := s.store.AppendEvent(ctx, evt)
	if err != nil {
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}
	return stored, nil
}

// ListEvents returns the events a viewer may see, ascending by per-
// campaign order. An afterEventID restricts the result to strictly newer
// events; an unknown id returns the full filtered log.
func (s *Service) ListEvents(ctx context.Context, campaignID, viewerActorID, afterEventID string) ([]event.Event, error) {
	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	viewer, _ := c.ActorByID(viewerActorID)

	events, err := s.store.ListEvents(ctx, campaignID, afterEventID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	visible := make([]event.Event, 0, len(events))
	for _, evt := range events {
		if event.Visible(evt.Visibility, viewerActorID, viewer.IsDM()) {
			visible = append(visible, evt)
		}
	}
	return visible, nil
}
