package app

import (
	"context"
	"fmt"

	"github.com/louisbranch/roundtable/internal/services/engine/domain/campaign"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/event"
)

// CampaignState is a campaign snapshot as one viewer sees it. StateKV is
// the full bag; only the event count is visibility-dependent.
type CampaignState struct {
	CampaignID         string
	TurnOwner          string
	AIOnlyStreak       int
	Actors             []campaign.Actor
	StateKV            map[string]string
	VisibleEventsCount int
}

// CreateCampaign validates the roster and persists the campaign in one
// transaction. The initial turn owner is the first dm actor by id.
func (s *Service) CreateCampaign(ctx context.Context, input campaign.CreateCampaignInput) (campaign.Campaign, error) {
	created, err := campaign.CreateCampaign(input, s.now, s.newID)
	if err != nil {
		return campaign.Campaign{}, err
	}
	if err := s.store.CreateCampaign(ctx, created); err != nil {
		return campaign.Campaign{}, fmt.Errorf("create campaign: %w", err)
	}
	return created, nil
}

// GetCampaign loads a campaign with its roster.
func (s *Service) GetCampaign(ctx context.Context, campaignID string) (campaign.Campaign, error) {
	return s.store.GetCampaign(ctx, campaignID)
}

// State assembles the campaign state for a viewer. An unknown viewer is
// treated as an outsider: no dm privileges, public and party events only.
func (s *Service) State(ctx context.Context, campaignID, viewerActorID string) (CampaignState, error) {
	unlock := s.locks.lock(campaignID)
	defer unlock()

	return s.stateLocked(ctx, campaignID, viewerActorID)
}

// stateLocked is State without lock acquisition, for callers already
// holding the campaign lock.
func (s *Service) stateLocked(ctx context.Context, campaignID, viewerActorID string) (CampaignState, error) {
	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return CampaignState{}, err
	}
	return s.assembleState(ctx, c, viewerActorID)
}

func (s *Service) assembleState(ctx context.Context, c campaign.Campaign, viewerActorID string) (CampaignState, error) {
	viewer, _ := c.ActorByID(viewerActorID)
	viewerIsDM := viewer.IsDM()

	stateKV, err := s.store.ListState(ctx, c.ID)
	if err != nil {
		return CampaignState{}, fmt.Errorf("list state: %w", err)
	}

	events, err := s.store.ListEvents(ctx, c.ID, "")
	if err != nil {
		return CampaignState{}, fmt.Errorf("list events: %w", err)
	}
	visible := 0
	for _, evt := range events {
		if event.Visible(evt.Visibility, viewerActorID, viewerIsDM) {
			visible++
		}
	}

	return CampaignState{
		CampaignID:         c.ID,
		TurnOwner:          c.TurnOwner,
		AIOnlyStreak:       c.AIOnlyStreak,
		Actors:             c.Actors,
		StateKV:            stateKV,
		VisibleEventsCount: visible,
	}, nil
}
