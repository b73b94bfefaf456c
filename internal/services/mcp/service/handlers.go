package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/roundtable/internal/services/engine/api"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// EngineClient is the slice of the engine HTTP client the tool handlers
// call. *client.Client satisfies it.
type EngineClient interface {
	CreateCampaign(ctx context.Context, req api.CampaignCreate) (api.Campaign, error)
	State(ctx context.Context, campaignID, viewer string) (api.State, error)
	AppendEvent(ctx context.Context, campaignID string, req api.EventCreate) (api.Event, error)
	ListEvents(ctx context.Context, campaignID, viewer, after string) ([]api.Event, error)
	Roll(ctx context.Context, campaignID string, req api.RollRequest) (api.Roll, error)
	WriteMemory(ctx context.Context, campaignID string, req api.MemoryWrite) (api.Memory, error)
	ReadMemories(ctx context.Context, campaignID, viewer, scope string) ([]api.Memory, error)
	AdvanceTurn(ctx context.Context, campaignID string) (api.TurnAdvance, error)
	DirectorNext(ctx context.Context, campaignID string, req api.DirectorNextRequest) (api.DirectorNext, error)
	Mutate(ctx context.Context, campaignID string, req api.MutateRequest) (api.MutateResult, error)
}

// CampaignCreateHandler executes a campaign creation request.
func CampaignCreateHandler(engine EngineClient) mcp.ToolHandlerFor[CampaignCreateInput, CampaignCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CampaignCreateInput) (*mcp.CallToolResult, CampaignCreateResult, error) {
		req := api.CampaignCreate{Name: input.Name}
		for _, actor := range input.Actors {
			req.Actors = append(req.Actors, api.ActorCreate{
				ID:        actor.ID,
				Name:      actor.Name,
				ActorType: actor.ActorType,
				IsAI:      actor.IsAI,
			})
		}

		created, err := engine.CreateCampaign(ctx, req)
		if err != nil {
			return nil, CampaignCreateResult{}, fmt.Errorf("campaign create failed: %w", err)
		}

		return nil, CampaignCreateResult{
			ID:        created.ID,
			Name:      created.Name,
			TurnOwner: created.TurnOwner,
			Actors:    actorEntries(created.Actors),
			CreatedAt: formatTimestamp(created.CreatedAt),
		}, nil
	}
}

// CampaignStateHandler executes a state snapshot request.
func CampaignStateHandler(engine EngineClient) mcp.ToolHandlerFor[CampaignStateInput, CampaignStateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CampaignStateInput) (*mcp.CallToolResult, CampaignStateResult, error) {
		if err := requireCampaignID(input.CampaignID); err != nil {
			return nil, CampaignStateResult{}, err
		}

		state, err := engine.State(ctx, input.CampaignID, input.ViewerID)
		if err != nil {
			return nil, CampaignStateResult{}, fmt.Errorf("campaign state failed: %w", err)
		}

		return nil, CampaignStateResult{
			CampaignID:         state.CampaignID,
			TurnOwner:          state.TurnOwner,
			AIOnlyStreak:       state.AIOnlyStreak,
			Actors:             actorEntries(state.Actors),
			StateKV:            state.StateKV,
			VisibleEventsCount: state.VisibleEventsCount,
		}, nil
	}
}

// EventAppendHandler executes an event append request.
func EventAppendHandler(engine EngineClient) mcp.ToolHandlerFor[EventAppendInput, EventAppendResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EventAppendInput) (*mcp.CallToolResult, EventAppendResult, error) {
		if err := requireCampaignID(input.CampaignID); err != nil {
			return nil, EventAppendResult{}, err
		}
		eventType := input.EventType
		if eventType == "" {
			eventType = api.EventTypeUtterance
		}

		appended, err := engine.AppendEvent(ctx, input.CampaignID, api.EventCreate{
			ActorID:    input.ActorID,
			EventType:  eventType,
			Content:    input.Content,
			Visibility: input.Visibility,
		})
		if err != nil {
			return nil, EventAppendResult{}, fmt.Errorf("event append failed: %w", err)
		}

		return nil, EventAppendResult{
			ID:         appended.ID,
			ActorID:    appended.ActorID,
			EventType:  appended.EventType,
			Visibility: appended.Visibility,
			CreatedAt:  formatTimestamp(appended.CreatedAt),
		}, nil
	}
}

// EventsListHandler executes an event list request.
func EventsListHandler(engine EngineClient) mcp.ToolHandlerFor[EventsListInput, EventsListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EventsListInput) (*mcp.CallToolResult, EventsListResult, error) {
		if err := requireCampaignID(input.CampaignID); err != nil {
			return nil, EventsListResult{}, err
		}

		events, err := engine.ListEvents(ctx, input.CampaignID, input.ViewerID, input.AfterID)
		if err != nil {
			return nil, EventsListResult{}, fmt.Errorf("events list failed: %w", err)
		}

		return nil, EventsListResult{Events: eventEntries(events)}, nil
	}
}

// RollDiceHandler executes a dice roll request.
func RollDiceHandler(engine EngineClient) mcp.ToolHandlerFor[RollDiceInput, RollDiceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollDiceInput) (*mcp.CallToolResult, RollDiceResult, error) {
		if err := requireCampaignID(input.CampaignID); err != nil {
			return nil, RollDiceResult{}, err
		}

		roll, err := engine.Roll(ctx, input.CampaignID, api.RollRequest{
			Expr:    input.Expr,
			Reason:  input.Reason,
			ActorID: input.ActorID,
		})
		if err != nil {
			return nil, RollDiceResult{}, fmt.Errorf("roll dice failed: %w", err)
		}

		return nil, RollDiceResult{
			ID:        roll.ID,
			ActorID:   roll.ActorID,
			Expr:      roll.Expr,
			Result:    roll.Result,
			Breakdown: roll.Breakdown,
			CreatedAt: formatTimestamp(roll.CreatedAt),
		}, nil
	}
}

// MemoryWriteHandler executes a memory write request.
func MemoryWriteHandler(engine EngineClient) mcp.ToolHandlerFor[MemoryWriteInput, MemoryWriteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MemoryWriteInput) (*mcp.CallToolResult, MemoryWriteResult, error) {
		if err := requireCampaignID(input.CampaignID); err != nil {
			return nil, MemoryWriteResult{}, err
		}
		scope := input.Scope
		if scope == "" {
			scope = api.MemoryScopePrivate
		}

		written, err := engine.WriteMemory(ctx, input.CampaignID, api.MemoryWrite{
			ActorID: input.ActorID,
			Scope:   scope,
			Text:    input.Text,
			Tags:    input.Tags,
		})
		if err != nil {
			return nil, MemoryWriteResult{}, fmt.Errorf("memory write failed: %w", err)
		}

		return nil, MemoryWriteResult{
			ID:        written.ID,
			ActorID:   written.ActorID,
			Scope:     written.Scope,
			CreatedAt: formatTimestamp(written.CreatedAt),
		}, nil
	}
}

// MemoryReadHandler executes a memory read request.
func MemoryReadHandler(engine EngineClient) mcp.ToolHandlerFor[MemoryReadInput, MemoryReadResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MemoryReadInput) (*mcp.CallToolResult, MemoryReadResult, error) {
		if err := requireCampaignID(input.CampaignID); err != nil {
			return nil, MemoryReadResult{}, err
		}

		memories, err := engine.ReadMemories(ctx, input.CampaignID, input.ViewerID, input.Scope)
		if err != nil {
			return nil, MemoryReadResult{}, fmt.Errorf("memory read failed: %w", err)
		}

		return nil, MemoryReadResult{Memories: memoryEntries(memories)}, nil
	}
}

// TurnAdvanceHandler executes a turn advance request.
func TurnAdvanceHandler(engine EngineClient) mcp.ToolHandlerFor[TurnAdvanceInput, TurnAdvanceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TurnAdvanceInput) (*mcp.CallToolResult, TurnAdvanceResult, error) {
		if err := requireCampaignID(input.CampaignID); err != nil {
			return nil, TurnAdvanceResult{}, err
		}

		turn, err := engine.AdvanceTurn(ctx, input.CampaignID)
		if err != nil {
			return nil, TurnAdvanceResult{}, fmt.Errorf("turn advance failed: %w", err)
		}

		result := TurnAdvanceResult{
			TurnOwner:        turn.TurnOwner,
			AIOnlyStreak:     turn.AIOnlyStreak,
			RefocusTriggered: turn.RefocusTriggered,
		}
		if turn.LastEventID != nil {
			result.LastEventID = *turn.LastEventID
		}
		return nil, result, nil
	}
}

// DirectorNextHandler executes a director package request.
func DirectorNextHandler(engine EngineClient) mcp.ToolHandlerFor[DirectorNextInput, DirectorNextResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DirectorNextInput) (*mcp.CallToolResult, DirectorNextResult, error) {
		if err := requireCampaignID(input.CampaignID); err != nil {
			return nil, DirectorNextResult{}, err
		}

		pkg, err := engine.DirectorNext(ctx, input.CampaignID, api.DirectorNextRequest{
			MaxEvents:   input.MaxEvents,
			MaxMemories: input.MaxMemories,
		})
		if err != nil {
			return nil, DirectorNextResult{}, fmt.Errorf("director next failed: %w", err)
		}

		result := DirectorNextResult{
			ShouldAct:          pkg.ShouldAct,
			ActorID:            pkg.ActorID,
			ActorRole:          pkg.ActorRole,
			Reason:             pkg.Reason,
			MustAskQuestion:    pkg.Constraints.MustAskQuestion,
			MaxOutputSentences: pkg.Constraints.MaxOutputSentences,
			VisibleEvents:      eventEntries(pkg.VisibleEvents),
			WorldMemories:      memoryEntries(pkg.Memories.World),
			PartyMemories:      memoryEntries(pkg.Memories.Party),
			PrivateMemories:    memoryEntries(pkg.Memories.Private),
		}
		if pkg.ViewerState != nil {
			result.TurnOwner = pkg.ViewerState.TurnOwner
		}
		return nil, result, nil
	}
}

// StateMutateHandler executes a state mutation request.
func StateMutateHandler(engine EngineClient) mcp.ToolHandlerFor[StateMutateInput, StateMutateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input StateMutateInput) (*mcp.CallToolResult, StateMutateResult, error) {
		if err := requireCampaignID(input.CampaignID); err != nil {
			return nil, StateMutateResult{}, err
		}

		req := api.MutateRequest{ActorID: input.ActorID}
		for _, mut := range input.Mutations {
			payload, err := json.Marshal(mut.Payload)
			if err != nil {
				return nil, StateMutateResult{}, fmt.Errorf("encode mutation payload: %w", err)
			}
			req.Mutations = append(req.Mutations, api.MutationItem{Type: mut.Type, Payload: payload})
		}

		outcome, err := engine.Mutate(ctx, input.CampaignID, req)
		if err != nil {
			return nil, StateMutateResult{}, fmt.Errorf("state mutate failed: %w", err)
		}

		results := make([]MutationEntry, 0, len(outcome.Results))
		for _, res := range outcome.Results {
			results = append(results, MutationEntry{
				Type:  res.Type,
				Key:   res.Key,
				Value: mutationValue(res.Value),
			})
		}
		return nil, StateMutateResult{
			MutationsApplied: outcome.MutationsApplied,
			Results:          results,
		}, nil
	}
}

func requireCampaignID(campaignID string) error {
	if strings.TrimSpace(campaignID) == "" {
		return fmt.Errorf("campaign_id is required")
	}
	return nil
}

// formatTimestamp renders an engine timestamp for tool results.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// mutationValue renders a post-mutation value as JSON. Values arrive with
// the natural type per mutation (numbers, lists, strings), so rendering
// keeps tool results schema-stable.
func mutationValue(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}

func actorEntries(actors []api.Actor) []ActorEntry {
	entries := make([]ActorEntry, 0, len(actors))
	for _, actor := range actors {
		entries = append(entries, ActorEntry{
			ID:        actor.ID,
			Name:      actor.Name,
			ActorType: actor.ActorType,
			IsAI:      actor.IsAI,
		})
	}
	return entries
}

func eventEntries(events []api.Event) []EventEntry {
	entries := make([]EventEntry, 0, len(events))
	for _, evt := range events {
		entries = append(entries, EventEntry{
			ID:         evt.ID,
			ActorID:    evt.ActorID,
			EventType:  evt.EventType,
			Content:    evt.Content,
			Visibility: evt.Visibility,
			CreatedAt:  formatTimestamp(evt.CreatedAt),
		})
	}
	return entries
}

func memoryEntries(memories []api.Memory) []MemoryEntry {
	entries := make([]MemoryEntry, 0, len(memories))
	for _, mem := range memories {
		entries = append(entries, MemoryEntry{
			ID:        mem.ID,
			ActorID:   mem.ActorID,
			Scope:     mem.Scope,
			Text:      mem.Text,
			Tags:      mem.Tags,
			CreatedAt: formatTimestamp(mem.CreatedAt),
		})
	}
	return entries
}
