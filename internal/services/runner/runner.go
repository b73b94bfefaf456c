// Package runner drives AI actors through the engine API. Each tick asks
// the director who should act, calls the model for that actor, applies the
// structured output as events, memories, and mutations, and advances the
// turn. The runner never touches the engine store.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/roundtable/internal/services/engine/api"
)

// Defaults for tick bounds and polling.
const (
	DefaultMaxEvents    = 50
	DefaultMaxMemories  = 30
	DefaultMaxAutoTurns = 2
	DefaultPollInterval = time.Second

	modelAttempts = 2

	dmRefocusMaxSentences = 2
	dmRefocusAskFallback  = "What do you do next?"
)

// Engine is the slice of the engine client the runner drives.
type Engine interface {
	DirectorNext(ctx context.Context, campaignID string, req api.DirectorNextRequest) (api.DirectorNext, error)
	AppendEvent(ctx context.Context, campaignID string, req api.EventCreate) (api.Event, error)
	WriteMemory(ctx context.Context, campaignID string, req api.MemoryWrite) (api.Memory, error)
	Mutate(ctx context.Context, campaignID string, req api.MutateRequest) (api.MutateResult, error)
	AdvanceTurn(ctx context.Context, campaignID string) (api.TurnAdvance, error)
}

// Model produces a structured response for one actor turn.
type Model interface {
	Complete(ctx context.Context, model, actorID, actorRole string, director api.DirectorNext) (ActorOutput, error)
}

// ActorOutput is the structured model response. DM turns carry StateUpdates
// and Notes; player turns carry Think and Intent.
type ActorOutput struct {
	Say          string             `json:"say"`
	Ask          string             `json:"ask"`
	Think        string             `json:"think,omitempty"`
	Intent       map[string]any     `json:"intent,omitempty"`
	StateUpdates []api.MutationItem `json:"state_updates,omitempty"`
	Notes        string             `json:"notes,omitempty"`
}

// Config tunes one runner instance.
type Config struct {
	CampaignID   string
	DMModel      string
	PlayerModel  string
	MaxEvents    int
	MaxMemories  int
	MaxAutoTurns int
	PollInterval time.Duration
}

// Runner polls the engine and acts for AI actors.
type Runner struct {
	engine Engine
	model  Model
	cfg    Config
}

// New builds a runner. Zero bounds fall back to the defaults above.
func New(engine Engine, model Model, cfg Config) (*Runner, error) {
	if engine == nil {
		return nil, errors.New("engine client is required")
	}
	if model == nil {
		return nil, errors.New("model is required")
	}
	if strings.TrimSpace(cfg.CampaignID) == "" {
		return nil, errors.New("campaign id is required")
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = DefaultMaxEvents
	}
	if cfg.MaxMemories <= 0 {
		cfg.MaxMemories = DefaultMaxMemories
	}
	if cfg.MaxAutoTurns <= 0 {
		cfg.MaxAutoTurns = DefaultMaxAutoTurns
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Runner{engine: engine, model: model, cfg: cfg}, nil
}

// Run ticks until the context ends, sleeping the poll interval between
// passes. Tick errors are logged and the loop keeps polling.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := r.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("runner tick: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Tick runs one bounded automation pass and reports how many actors acted.
func (r *Runner) Tick(ctx context.Context) (int, error) {
	acted := 0
	for i := 0; i < r.cfg.MaxAutoTurns; i++ {
		director, err := r.engine.DirectorNext(ctx, r.cfg.CampaignID, api.DirectorNextRequest{
			MaxEvents:   r.cfg.MaxEvents,
			MaxMemories: r.cfg.MaxMemories,
		})
		if err != nil {
			return acted, fmt.Errorf("director next: %w", err)
		}
		if !director.ShouldAct {
			log.Printf("runner stopped: should_act=false reason=%s", director.Reason)
			break
		}
		if director.ActorID == "" {
			log.Printf("runner stopped: director response missing actor id")
			break
		}
		if blockedByAIGuard(director) {
			log.Printf("runner stopped: ai-to-ai guard triggered for actor %q", director.ActorID)
			break
		}

		output, ok := r.callModel(ctx, director)
		if !ok {
			return acted, nil
		}
		if director.ActorRole == api.RoleDM {
			output = enforceDMConstraints(output, director.Constraints)
		}
		if err := r.apply(ctx, director, output); err != nil {
			return acted, err
		}
		log.Printf("runner actor %q acted (role=%s)", director.ActorID, director.ActorRole)
		acted++
	}
	return acted, nil
}

// blockedByAIGuard stops AI actors from replying to other AI actors unless
// the rotation itself put them on the floor. The last visible event is the
// newest one the acting actor can see.
func blockedByAIGuard(director api.DirectorNext) bool {
	if director.Reason == api.ReasonTurnOwner {
		return false
	}
	if !actorIsAI(director, director.ActorID) {
		return false
	}
	return actorIsAI(director, lastVisibleAuthor(director))
}

func lastVisibleAuthor(director api.DirectorNext) string {
	if len(director.VisibleEvents) == 0 {
		return ""
	}
	return director.VisibleEvents[len(director.VisibleEvents)-1].ActorID
}

func actorIsAI(director api.DirectorNext, actorID string) bool {
	if director.ViewerState == nil || actorID == "" {
		return false
	}
	for _, actor := range director.ViewerState.Actors {
		if actor.ID == actorID {
			return actor.IsAI
		}
	}
	return false
}

// callModel tries the model up to modelAttempts times. Persistent failure
// logs a public runner_error event through the engine and ends the tick.
func (r *Runner) callModel(ctx context.Context, director api.DirectorNext) (ActorOutput, bool) {
	model := r.cfg.PlayerModel
	if director.ActorRole == api.RoleDM {
		model = r.cfg.DMModel
	}

	var lastErr error
	for attempt := 0; attempt < modelAttempts; attempt++ {
		output, err := r.model.Complete(ctx, model, director.ActorID, director.ActorRole, director)
		if err == nil {
			return output, true
		}
		lastErr = err
	}

	message := fmt.Sprintf("[runner] model call failed for actor '%s'", director.ActorID)
	if errors.Is(lastErr, ErrInvalidModelJSON) {
		message = fmt.Sprintf("[runner] invalid JSON from model for actor '%s'", director.ActorID)
	}
	log.Printf("runner model call failed for actor %q: %v", director.ActorID, lastErr)
	r.logRunnerError(ctx, message)
	return ActorOutput{}, false
}

func (r *Runner) logRunnerError(ctx context.Context, message string) {
	_, err := r.engine.AppendEvent(ctx, r.cfg.CampaignID, api.EventCreate{
		ActorID:    "system",
		EventType:  api.EventTypeRunnerError,
		Content:    message,
		Visibility: api.VisibilityPublic,
	})
	if err != nil {
		log.Printf("runner error event not logged: %v", err)
	}
}

// apply turns model output into engine calls. The turn always advances,
// even when every field came back empty, so a silent model cannot stall
// the rotation.
func (r *Runner) apply(ctx context.Context, director api.DirectorNext, output ActorOutput) error {
	if say := strings.TrimSpace(output.Say); say != "" {
		_, err := r.engine.AppendEvent(ctx, r.cfg.CampaignID, api.EventCreate{
			ActorID:    director.ActorID,
			EventType:  api.EventTypeUtterance,
			Content:    say,
			Visibility: api.VisibilityParty,
		})
		if err != nil {
			return fmt.Errorf("append utterance: %w", err)
		}
	}

	if director.ActorRole == api.RoleDM {
		if len(output.StateUpdates) > 0 {
			_, err := r.engine.Mutate(ctx, r.cfg.CampaignID, api.MutateRequest{
				ActorID:   director.ActorID,
				Mutations: output.StateUpdates,
			})
			if err != nil {
				return fmt.Errorf("apply state updates: %w", err)
			}
		}
	} else if think := strings.TrimSpace(output.Think); think != "" {
		_, err := r.engine.WriteMemory(ctx, r.cfg.CampaignID, api.MemoryWrite{
			ActorID: director.ActorID,
			Scope:   api.MemoryScopePrivate,
			Text:    think,
			Tags:    []string{},
		})
		if err != nil {
			return fmt.Errorf("write memory: %w", err)
		}
	}

	if _, err := r.engine.AdvanceTurn(ctx, r.cfg.CampaignID); err != nil {
		return fmt.Errorf("advance turn: %w", err)
	}
	return nil
}

// enforceDMConstraints applies the refocus contract to dm output: a short
// say and an ask that actually ends in a question mark.
func enforceDMConstraints(output ActorOutput, constraints api.DirectorConstraints) ActorOutput {
	if !constraints.MustAskQuestion {
		return output
	}
	output.Say = shortenText(strings.TrimSpace(output.Say), dmRefocusMaxSentences)
	ask := strings.TrimSpace(output.Ask)
	if ask == "" || !strings.HasSuffix(ask, "?") {
		ask = dmRefocusAskFallback
	}
	output.Ask = ask
	return output
}

// shortenText keeps the first maxSentences sentences, rejoined with
// periods. Sentence boundaries are runs of '.', '!', or '?'.
func shortenText(text string, maxSentences int) string {
	parts := splitSentences(text)
	if len(parts) == 0 {
		return ""
	}
	if len(parts) > maxSentences {
		parts = parts[:maxSentences]
	}
	return strings.Join(parts, ". ") + "."
}

func splitSentences(text string) []string {
	var parts []string
	var current strings.Builder
	flush := func() {
		if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
			parts = append(parts, trimmed)
		}
		current.Reset()
	}
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return parts
}
