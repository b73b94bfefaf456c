package api

import (
	"encoding/json"
	"time"

	"github.com/louisbranch/roundtable/internal/services/engine/app"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/campaign"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/event"
	"github.com/louisbranch/roundtable/internal/services/engine/domain/memory"
	"github.com/louisbranch/roundtable/internal/services/engine/storage"
)

// Wire types shared by the HTTP handlers and the Go client. Field names
// follow the engine's JSON contract.

// Wire values engine clients reference when composing requests or reading
// director packages.
const (
	EventTypeUtterance   = "utterance"
	EventTypeRunnerError = "runner_error"

	VisibilityPublic = "public"
	VisibilityParty  = "party"

	MemoryScopePrivate = "private"

	RoleDM = "dm"

	ReasonTurnOwner = "turn_owner"
)

// ActorCreate is one roster entry in a campaign creation request.
type ActorCreate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ActorType string `json:"actor_type"`
	IsAI      bool   `json:"is_ai"`
}

// Actor is a roster entry as returned by the engine.
type Actor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ActorType string `json:"actor_type"`
	IsAI      bool   `json:"is_ai"`
}

// CampaignCreate is the campaign creation request body.
type CampaignCreate struct {
	Name   string        `json:"name"`
	Actors []ActorCreate `json:"actors"`
}

// Campaign is a campaign as returned by the engine.
type Campaign struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	TurnOwner    string    `json:"turn_owner"`
	AIOnlyStreak int       `json:"ai_only_streak"`
	Actors       []Actor   `json:"actors"`
}

// EventCreate is the event append request body. An empty visibility
// defaults to public.
type EventCreate struct {
	ActorID    string `json:"actor_id"`
	EventType  string `json:"event_type"`
	Content    string `json:"content"`
	Visibility string `json:"visibility,omitempty"`
}

// Event is one log entry as returned by the engine.
type Event struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	ActorID    string    `json:"actor_id"`
	EventType  string    `json:"event_type"`
	Content    string    `json:"content"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
}

// RollRequest is the dice roll request body.
type RollRequest struct {
	Expr    string `json:"expr"`
	Reason  string `json:"reason"`
	ActorID string `json:"actor_id"`
}

// Roll is a resolved dice roll as returned by the engine.
type Roll struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	ActorID    string    `json:"actor_id"`
	Expr       string    `json:"expr"`
	Reason     string    `json:"reason"`
	Result     int       `json:"result"`
	Breakdown  string    `json:"breakdown"`
	CreatedAt  time.Time `json:"created_at"`
}

// MutationItem is one entry in a mutation batch.
type MutationItem struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MutateRequest is the state mutation request body. ActorID names the
// requesting actor for auditability; it does not scope the mutations.
type MutateRequest struct {
	ActorID   string         `json:"actor_id"`
	Mutations []MutationItem `json:"mutations"`
}

// MutationResult echoes one applied mutation.
type MutationResult struct {
	Type  string `json:"type"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// MutateResult summarizes an applied mutation batch.
type MutateResult struct {
	MutationsApplied int              `json:"mutations_applied"`
	Results          []MutationResult `json:"results"`
}

// TurnAdvance is the turn advance response body. LastEventID is null when
// the log was empty at advance time.
type TurnAdvance struct {
	TurnOwner        string  `json:"turn_owner"`
	AIOnlyStreak     int     `json:"ai_only_streak"`
	RefocusTriggered bool    `json:"refocus_triggered"`
	LastEventID      *string `json:"last_event_id"`
}

// MemoryWrite is the memory write request body.
type MemoryWrite struct {
	ActorID string   `json:"actor_id"`
	Scope   string   `json:"scope"`
	Text    string   `json:"text"`
	Tags    []string `json:"tags,omitempty"`
}

// Memory is one scoped memory entry as returned by the engine.
type Memory struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	ActorID    string    `json:"actor_id"`
	Scope      string    `json:"scope"`
	Text       string    `json:"text"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
}

// State is a campaign snapshot as seen by one viewer.
type State struct {
	CampaignID         string            `json:"campaign_id"`
	TurnOwner          string            `json:"turn_owner"`
	AIOnlyStreak       int               `json:"ai_only_streak"`
	Actors             []Actor           `json:"actors"`
	StateKV            map[string]string `json:"state_kv"`
	VisibleEventsCount int               `json:"visible_events_count"`
}

// DirectorNextRequest is the director request body. Zero caps take the
// engine defaults.
type DirectorNextRequest struct {
	MaxEvents   int `json:"max_events,omitempty"`
	MaxMemories int `json:"max_memories,omitempty"`
}

// DirectorMemories buckets the acting actor's memories by reach.
type DirectorMemories struct {
	World   []Memory `json:"world"`
	Party   []Memory `json:"party"`
	Private []Memory `json:"private"`
}

// DirectorConstraints bound the acting actor's output.
type DirectorConstraints struct {
	MustAskQuestion    bool `json:"must_ask_question"`
	MaxOutputSentences int  `json:"max_output_sentences"`
}

// DirectorNext is the assembled director package. ViewerState, ActorID,
// and ActorRole are present only when ShouldAct is true.
type DirectorNext struct {
	ShouldAct     bool                `json:"should_act"`
	ActorID       string              `json:"actor_id,omitempty"`
	ActorRole     string              `json:"actor_role,omitempty"`
	Reason        string              `json:"reason"`
	ViewerState   *State              `json:"viewer_state,omitempty"`
	VisibleEvents []Event             `json:"visible_events"`
	Memories      DirectorMemories    `json:"memories"`
	Constraints   DirectorConstraints `json:"constraints"`
}

func actorToWire(a campaign.Actor) Actor {
	return Actor{
		ID:        a.ID,
		Name:      a.Name,
		ActorType: a.Type.Label(),
		IsAI:      a.IsAI,
	}
}

func actorsToWire(actors []campaign.Actor) []Actor {
	wire := make([]Actor, len(actors))
	for i, a := range actors {
		wire[i] = actorToWire(a)
	}
	return wire
}

func campaignToWire(c campaign.Campaign) Campaign {
	return Campaign{
		ID:           c.ID,
		Name:         c.Name,
		CreatedAt:    c.CreatedAt,
		TurnOwner:    c.TurnOwner,
		AIOnlyStreak: c.AIOnlyStreak,
		Actors:       actorsToWire(c.Actors),
	}
}

func campaignInputFromWire(req CampaignCreate) (campaign.CreateCampaignInput, error) {
	actors := make([]campaign.ActorInput, 0, len(req.Actors))
	for _, a := range req.Actors {
		actorType, err := campaign.ActorTypeFromLabel(a.ActorType)
		if err != nil {
			return campaign.CreateCampaignInput{}, err
		}
		actors = append(actors, campaign.ActorInput{
			ID:   a.ID,
			Name: a.Name,
			Type: actorType,
			IsAI: a.IsAI,
		})
	}
	return campaign.CreateCampaignInput{Name: req.Name, Actors: actors}, nil
}

func eventToWire(evt event.Event) Event {
	return Event{
		ID:         evt.ID,
		CampaignID: evt.CampaignID,
		ActorID:    evt.ActorID,
		EventType:  evt.Type,
		Content:    evt.Content,
		Visibility: evt.Visibility,
		CreatedAt:  evt.CreatedAt,
	}
}

func eventsToWire(events []event.Event) []Event {
	wire := make([]Event, len(events))
	for i, evt := range events {
		wire[i] = eventToWire(evt)
	}
	return wire
}

func memoryToWire(m memory.Memory) Memory {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return Memory{
		ID:         m.ID,
		CampaignID: m.CampaignID,
		ActorID:    m.ActorID,
		Scope:      m.Scope,
		Text:       m.Text,
		Tags:       tags,
		CreatedAt:  m.CreatedAt,
	}
}

func memoriesToWire(memories []memory.Memory) []Memory {
	wire := make([]Memory, len(memories))
	for i, m := range memories {
		wire[i] = memoryToWire(m)
	}
	return wire
}

func rollToWire(r storage.Roll) Roll {
	return Roll{
		ID:         r.ID,
		CampaignID: r.CampaignID,
		ActorID:    r.ActorID,
		Expr:       r.Expr,
		Reason:     r.Reason,
		Result:     r.Result,
		Breakdown:  r.Breakdown,
		CreatedAt:  r.CreatedAt,
	}
}

func stateToWire(s app.CampaignState) State {
	stateKV := s.StateKV
	if stateKV == nil {
		stateKV = map[string]string{}
	}
	return State{
		CampaignID:         s.CampaignID,
		TurnOwner:          s.TurnOwner,
		AIOnlyStreak:       s.AIOnlyStreak,
		Actors:             actorsToWire(s.Actors),
		StateKV:            stateKV,
		VisibleEventsCount: s.VisibleEventsCount,
	}
}

func turnToWire(result app.TurnAdvance) TurnAdvance {
	wire := TurnAdvance{
		TurnOwner:        result.TurnOwner,
		AIOnlyStreak:     result.AIOnlyStreak,
		RefocusTriggered: result.RefocusTriggered,
	}
	if result.LastEventID != "" {
		wire.LastEventID = &result.LastEventID
	}
	return wire
}

func mutationsFromWire(items []MutationItem) []app.Mutation {
	mutations := make([]app.Mutation, len(items))
	for i, item := range items {
		mutations[i] = app.Mutation{Type: item.Type, Payload: item.Payload}
	}
	return mutations
}

func mutateToWire(outcome app.MutationOutcome) MutateResult {
	results := make([]MutationResult, len(outcome.Results))
	for i, r := range outcome.Results {
		results[i] = MutationResult{Type: r.Type, Key: r.Key, Value: r.Value}
	}
	return MutateResult{
		MutationsApplied: outcome.MutationsApplied,
		Results:          results,
	}
}

func directorToWire(pkg app.DirectorPackage) DirectorNext {
	wire := DirectorNext{
		ShouldAct:     pkg.ShouldAct,
		Reason:        pkg.Reason,
		VisibleEvents: eventsToWire(pkg.VisibleEvents),
		Memories: DirectorMemories{
			World:   memoriesToWire(pkg.Memories.World),
			Party:   memoriesToWire(pkg.Memories.Party),
			Private: memoriesToWire(pkg.Memories.Private),
		},
		Constraints: DirectorConstraints{
			MustAskQuestion:    pkg.Constraints.MustAskQuestion,
			MaxOutputSentences: pkg.Constraints.MaxOutputSentences,
		},
	}
	if pkg.ShouldAct {
		wire.ActorID = pkg.ActorID
		wire.ActorRole = pkg.ActorRole.Label()
		state := stateToWire(pkg.ViewerState)
		wire.ViewerState = &state
	}
	return wire
}
