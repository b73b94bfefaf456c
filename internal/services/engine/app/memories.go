package app

import (
	"context"
	"fmt"

	"github.com/louisbranch/roundtable/internal/services/engine/domain/memory"
)

// WriteMemory persists one scoped memory entry. Scopes are not validated:
// unknown scopes are stored and fail closed on every read.
func (s *Service) WriteMemory(ctx context.Context, campaignID string, input memory.WriteMemoryInput) (memory.Memory, error) {
	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return memory.Memory{}, err
	}

	m, err := memory.New(campaignID, input, s.now, s.newID)
	if err != nil {
		return memory.Memory{}, err
	}
	if err := s.store.PutMemory(ctx, m); err != nil {
		return memory.Memory{}, fmt.Errorf("put memory: %w", err)
	}
	return m, nil
}

// ReadMemories returns the memories a viewer may see, ascending by
// created_at. A non-empty scope restricts the result to that scope before
// visibility filtering.
func (s *Service) ReadMemories(ctx context.Context, campaignID, viewerActorID, scope string) ([]memory.Memory, error) {
	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	viewer, _ := c.ActorByID(viewerActorID)

	return s.readMemoriesFor(ctx, campaignID, viewerActorID, viewer.IsDM(), scope)
}

func (s *Service) readMemoriesFor(ctx context.Context, campaignID, viewerActorID string, viewerIsDM bool, scope string) ([]memory.Memory, error) {
	memories, err := s.store.ListMemories(ctx, campaignID, scope)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}

	visible := make([]memory.Memory, 0, len(memories))
	for _, m := range memories {
		if memory.Visible(m, viewerActorID, viewerIsDM, s.cfg.DMOmniscientPrivate) {
			visible = append(visible, m)
		}
	}
	return visible, nil
}
