package service

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ActorInput is one roster entry in a campaign creation input.
type ActorInput struct {
	ID        string `json:"id" jsonschema:"actor identifier, unique within the campaign"`
	Name      string `json:"name" jsonschema:"display name"`
	ActorType string `json:"actor_type" jsonschema:"actor type (dm, player, human)"`
	IsAI      bool   `json:"is_ai,omitempty" jsonschema:"whether a model drives this actor (humans must be false)"`
}

// ActorEntry is one roster entry in a tool result.
type ActorEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ActorType string `json:"actor_type"`
	IsAI      bool   `json:"is_ai"`
}

// EventEntry is one log entry in a tool result.
type EventEntry struct {
	ID         string `json:"id"`
	ActorID    string `json:"actor_id"`
	EventType  string `json:"event_type"`
	Content    string `json:"content"`
	Visibility string `json:"visibility"`
	CreatedAt  string `json:"created_at"`
}

// MemoryEntry is one scoped memory in a tool result.
type MemoryEntry struct {
	ID        string   `json:"id"`
	ActorID   string   `json:"actor_id"`
	Scope     string   `json:"scope"`
	Text      string   `json:"text"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
}

// CampaignCreateInput represents the MCP tool input for campaign creation.
type CampaignCreateInput struct {
	Name   string       `json:"name" jsonschema:"campaign name"`
	Actors []ActorInput `json:"actors,omitempty" jsonschema:"initial roster; a campaign without actors has no turn owner"`
}

// CampaignCreateResult represents the MCP tool output for campaign creation.
type CampaignCreateResult struct {
	ID        string       `json:"id" jsonschema:"campaign identifier"`
	Name      string       `json:"name" jsonschema:"campaign name"`
	TurnOwner string       `json:"turn_owner" jsonschema:"actor holding the first turn"`
	Actors    []ActorEntry `json:"actors"`
	CreatedAt string       `json:"created_at" jsonschema:"RFC3339 timestamp when the campaign was created"`
}

// CampaignCreateTool defines the MCP tool schema for campaign creation.
func CampaignCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "campaign_create",
		Description: "Creates a campaign with its actor roster and seats the turn order",
	}
}

// CampaignStateInput represents the MCP tool input for state snapshots.
type CampaignStateInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ViewerID   string `json:"viewer_id,omitempty" jsonschema:"actor whose visibility filters the snapshot; empty sees only public and party entries"`
}

// CampaignStateResult represents the MCP tool output for state snapshots.
type CampaignStateResult struct {
	CampaignID         string            `json:"campaign_id" jsonschema:"campaign identifier"`
	TurnOwner          string            `json:"turn_owner" jsonschema:"actor holding the current turn"`
	AIOnlyStreak       int               `json:"ai_only_streak" jsonschema:"consecutive turns closed by AI actors"`
	Actors             []ActorEntry      `json:"actors"`
	StateKV            map[string]string `json:"state_kv" jsonschema:"campaign key/value state written by mutations"`
	VisibleEventsCount int               `json:"visible_events_count" jsonschema:"number of events the viewer can see"`
}

// CampaignStateTool defines the MCP tool schema for state snapshots.
func CampaignStateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "campaign_state",
		Description: "Returns a campaign snapshot filtered by one viewer's visibility",
	}
}

// EventAppendInput represents the MCP tool input for appending events.
type EventAppendInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id" jsonschema:"authoring actor"`
	EventType  string `json:"event_type,omitempty" jsonschema:"event type; defaults to utterance"`
	Content    string `json:"content" jsonschema:"event body"`
	Visibility string `json:"visibility,omitempty" jsonschema:"public, party, dm_only, or private:<actor_id>; defaults to public"`
}

// EventAppendResult represents the MCP tool output for appending events.
type EventAppendResult struct {
	ID         string `json:"id" jsonschema:"event identifier"`
	ActorID    string `json:"actor_id"`
	EventType  string `json:"event_type"`
	Visibility string `json:"visibility"`
	CreatedAt  string `json:"created_at" jsonschema:"RFC3339 timestamp when the event was logged"`
}

// EventAppendTool defines the MCP tool schema for appending events.
func EventAppendTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "event_append",
		Description: "Appends one event to a campaign's log",
	}
}

// EventsListInput represents the MCP tool input for listing events.
type EventsListInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ViewerID   string `json:"viewer_id,omitempty" jsonschema:"actor whose visibility filters the log; empty sees only public and party entries"`
	AfterID    string `json:"after_id,omitempty" jsonschema:"return only events logged after this event id"`
}

// EventsListResult represents the MCP tool output for listing events.
type EventsListResult struct {
	Events []EventEntry `json:"events"`
}

// EventsListTool defines the MCP tool schema for listing events.
func EventsListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "events_list",
		Description: "Lists a campaign's events in log order, filtered by one viewer's visibility",
	}
}

// RollDiceInput represents the MCP tool input for dice rolls.
type RollDiceInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string `json:"actor_id,omitempty" jsonschema:"rolling actor; defaults to the system actor"`
	Expr       string `json:"expr" jsonschema:"dice expression such as 2d6+1"`
	Reason     string `json:"reason,omitempty" jsonschema:"optional reason recorded with the roll"`
}

// RollDiceResult represents the MCP tool output for dice rolls.
type RollDiceResult struct {
	ID        string `json:"id" jsonschema:"roll identifier"`
	ActorID   string `json:"actor_id"`
	Expr      string `json:"expr"`
	Result    int    `json:"result" jsonschema:"total after the modifier"`
	Breakdown string `json:"breakdown" jsonschema:"per-die faces and modifier"`
	CreatedAt string `json:"created_at"`
}

// RollDiceTool defines the MCP tool schema for dice rolls.
func RollDiceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_dice",
		Description: "Rolls a dice expression and logs the outcome as a public event",
	}
}

// MemoryWriteInput represents the MCP tool input for memory writes.
type MemoryWriteInput struct {
	CampaignID string   `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string   `json:"actor_id" jsonschema:"authoring actor"`
	Scope      string   `json:"scope,omitempty" jsonschema:"memory reach: private, party, world, or dm_only; defaults to private"`
	Text       string   `json:"text" jsonschema:"memory body"`
	Tags       []string `json:"tags,omitempty" jsonschema:"optional labels"`
}

// MemoryWriteResult represents the MCP tool output for memory writes.
type MemoryWriteResult struct {
	ID        string `json:"id" jsonschema:"memory identifier"`
	ActorID   string `json:"actor_id"`
	Scope     string `json:"scope"`
	CreatedAt string `json:"created_at"`
}

// MemoryWriteTool defines the MCP tool schema for memory writes.
func MemoryWriteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "memory_write",
		Description: "Writes one scoped memory for an actor",
	}
}

// MemoryReadInput represents the MCP tool input for memory reads.
type MemoryReadInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
	ViewerID   string `json:"viewer_id" jsonschema:"actor whose reach filters the memories"`
	Scope      string `json:"scope,omitempty" jsonschema:"restrict to one scope: private, party, world, or dm_only"`
}

// MemoryReadResult represents the MCP tool output for memory reads.
type MemoryReadResult struct {
	Memories []MemoryEntry `json:"memories"`
}

// MemoryReadTool defines the MCP tool schema for memory reads.
func MemoryReadTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "memory_read",
		Description: "Reads the memories one viewer can reach, oldest first",
	}
}

// TurnAdvanceInput represents the MCP tool input for turn advances.
type TurnAdvanceInput struct {
	CampaignID string `json:"campaign_id" jsonschema:"campaign identifier"`
}

// TurnAdvanceResult represents the MCP tool output for turn advances.
type TurnAdvanceResult struct {
	TurnOwner        string `json:"turn_owner" jsonschema:"actor holding the turn after the advance"`
	AIOnlyStreak     int    `json:"ai_only_streak" jsonschema:"consecutive turns closed by AI actors"`
	RefocusTriggered bool   `json:"refocus_triggered" jsonschema:"whether the anti-ramble breaker fired on this advance"`
	LastEventID      string `json:"last_event_id,omitempty" jsonschema:"event that closed the previous turn; empty when the log was empty"`
}

// TurnAdvanceTool defines the MCP tool schema for turn advances.
func TurnAdvanceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "turn_advance",
		Description: "Rotates the turn to the next actor and reports the anti-ramble state",
	}
}

// DirectorNextInput represents the MCP tool input for director packages.
type DirectorNextInput struct {
	CampaignID  string `json:"campaign_id" jsonschema:"campaign identifier"`
	MaxEvents   int    `json:"max_events,omitempty" jsonschema:"cap on visible events in the package"`
	MaxMemories int    `json:"max_memories,omitempty" jsonschema:"cap on memories per reach"`
}

// DirectorNextResult represents the MCP tool output for director packages.
type DirectorNextResult struct {
	ShouldAct          bool          `json:"should_act" jsonschema:"whether an AI actor should take the current turn"`
	ActorID            string        `json:"actor_id,omitempty" jsonschema:"acting actor when should_act is true"`
	ActorRole          string        `json:"actor_role,omitempty" jsonschema:"acting actor's role"`
	Reason             string        `json:"reason" jsonschema:"why the director picked or skipped this turn"`
	TurnOwner          string        `json:"turn_owner,omitempty" jsonschema:"actor holding the turn"`
	MustAskQuestion    bool          `json:"must_ask_question" jsonschema:"refocus constraint: the reply must end with a question"`
	MaxOutputSentences int           `json:"max_output_sentences" jsonschema:"cap on sentences in the actor's reply"`
	VisibleEvents      []EventEntry  `json:"visible_events"`
	WorldMemories      []MemoryEntry `json:"world_memories"`
	PartyMemories      []MemoryEntry `json:"party_memories"`
	PrivateMemories    []MemoryEntry `json:"private_memories"`
}

// DirectorNextTool defines the MCP tool schema for director packages.
func DirectorNextTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "director_next",
		Description: "Assembles the prompt package for the current turn owner",
	}
}

// MutationInput is one entry in a state mutation batch.
type MutationInput struct {
	Type    string         `json:"type" jsonschema:"mutation type (hp_set, hp_delta, inventory_add, inventory_remove, flag_set, time_advance)"`
	Payload map[string]any `json:"payload" jsonschema:"mutation payload; the shape depends on the type"`
}

// StateMutateInput represents the MCP tool input for state mutations.
type StateMutateInput struct {
	CampaignID string          `json:"campaign_id" jsonschema:"campaign identifier"`
	ActorID    string          `json:"actor_id,omitempty" jsonschema:"requesting actor recorded with the batch"`
	Mutations  []MutationInput `json:"mutations" jsonschema:"mutations applied in order; the batch is atomic"`
}

// MutationEntry echoes one applied mutation in a tool result. Value is
// the post-mutation value rendered as JSON.
type MutationEntry struct {
	Type  string `json:"type"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// StateMutateResult represents the MCP tool output for state mutations.
type StateMutateResult struct {
	MutationsApplied int             `json:"mutations_applied" jsonschema:"number of mutations applied"`
	Results          []MutationEntry `json:"results"`
}

// StateMutateTool defines the MCP tool schema for state mutations.
func StateMutateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "state_mutate",
		Description: "Applies an atomic batch of typed mutations to campaign state",
	}
}
