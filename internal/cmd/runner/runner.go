// Package runner parses runner command flags and launches the turn runner.
package runner

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/roundtable/internal/platform/cmd"
	"github.com/louisbranch/roundtable/internal/services/engine/client"
	runnersvc "github.com/louisbranch/roundtable/internal/services/runner"
)

// Config holds runner command configuration. POLL_SECONDS is a plain
// float of seconds, so it parses into PollInterval instead of a
// duration field.
type Config struct {
	EngineURL    string  `env:"ENGINE_URL" envDefault:"http://localhost:8088"`
	EngineKey    string  `env:"ENGINE_KEY" envDefault:"dev-secret-key"`
	CampaignID   string  `env:"CAMPAIGN_ID"`
	LLMBaseURL   string  `env:"OPENAI_BASE_URL" envDefault:"http://localhost:11434/v1"`
	LLMAPIKey    string  `env:"OPENAI_API_KEY" envDefault:"ollama"`
	DMModel      string  `env:"DM_MODEL" envDefault:"llama3"`
	PlayerModel  string  `env:"PLAYER_MODEL" envDefault:"llama3"`
	PollSeconds  float64 `env:"POLL_SECONDS" envDefault:"1"`
	MaxEvents    int     `env:"RUNNER_MAX_EVENTS" envDefault:"50"`
	MaxMemories  int     `env:"RUNNER_MAX_MEMORIES" envDefault:"30"`
	MaxAutoTurns int     `env:"MAX_AUTO_TURNS_PER_TICK" envDefault:"2"`

	PollInterval time.Duration

	// Once runs a single tick and exits; Watch polls until interrupted.
	// Watch is the default when neither flag is set.
	Once  bool
	Watch bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.PollInterval = time.Duration(cfg.PollSeconds * float64(time.Second))

	fs.StringVar(&cfg.EngineURL, "engine-url", cfg.EngineURL, "The engine HTTP API base URL")
	fs.StringVar(&cfg.EngineKey, "engine-key", cfg.EngineKey, "The pre-shared engine API key")
	fs.StringVar(&cfg.CampaignID, "campaign", cfg.CampaignID, "The campaign to run turns for")
	fs.StringVar(&cfg.LLMBaseURL, "llm-base-url", cfg.LLMBaseURL, "The OpenAI-compatible chat API base URL")
	fs.StringVar(&cfg.LLMAPIKey, "llm-api-key", cfg.LLMAPIKey, "The chat API key")
	fs.StringVar(&cfg.DMModel, "dm-model", cfg.DMModel, "The model used for dm turns")
	fs.StringVar(&cfg.PlayerModel, "player-model", cfg.PlayerModel, "The model used for player turns")
	fs.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "The watch-mode poll interval")
	fs.IntVar(&cfg.MaxEvents, "max-events", cfg.MaxEvents, "The visible event cap per prompt package")
	fs.IntVar(&cfg.MaxMemories, "max-memories", cfg.MaxMemories, "The memory cap per prompt package")
	fs.IntVar(&cfg.MaxAutoTurns, "max-auto-turns", cfg.MaxAutoTurns, "The AI turn cap per tick")
	fs.BoolVar(&cfg.Once, "once", false, "Run a single tick and exit")
	fs.BoolVar(&cfg.Watch, "watch", false, "Poll for turns until interrupted (default)")

	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Once && cfg.Watch {
		return Config{}, fmt.Errorf("-once and -watch are mutually exclusive")
	}
	return cfg, nil
}

// Run starts the runner in the mode the flags selected.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRunner, func(context.Context) error {
		engine := client.New(cfg.EngineURL, cfg.EngineKey, nil)
		model := runnersvc.NewChatClient(cfg.LLMBaseURL, cfg.LLMAPIKey, nil)

		r, err := runnersvc.New(engine, model, runnersvc.Config{
			CampaignID:   cfg.CampaignID,
			DMModel:      cfg.DMModel,
			PlayerModel:  cfg.PlayerModel,
			MaxEvents:    cfg.MaxEvents,
			MaxMemories:  cfg.MaxMemories,
			MaxAutoTurns: cfg.MaxAutoTurns,
			PollInterval: cfg.PollInterval,
		})
		if err != nil {
			return fmt.Errorf("init runner: %w", err)
		}

		if cfg.Once {
			_, err := r.Tick(ctx)
			return err
		}
		return r.Run(ctx)
	})
}
