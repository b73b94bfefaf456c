// Package engine parses engine command flags and launches the engine runtime.
package engine

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/roundtable/internal/platform/cmd"
	engineserver "github.com/louisbranch/roundtable/internal/services/engine"
)

// Config holds engine command configuration.
type Config struct {
	Port                int    `env:"ENGINE_PORT" envDefault:"8088"`
	DatabaseURL         string `env:"DATABASE_URL" envDefault:"sqlite:///./ttrpg.db"`
	EngineKey           string `env:"ENGINE_KEY" envDefault:"dev-secret-key"`
	AIOnlyStreakLimit   int    `env:"AI_ONLY_STREAK_LIMIT" envDefault:"3"`
	DMOmniscientPrivate bool   `env:"DM_OMNISCIENT_PRIVATE" envDefault:"true"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "The engine HTTP server port")
	fs.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "The engine store URL or file path")
	fs.StringVar(&cfg.EngineKey, "engine-key", cfg.EngineKey, "The pre-shared engine API key")
	fs.IntVar(&cfg.AIOnlyStreakLimit, "ai-only-streak-limit", cfg.AIOnlyStreakLimit, "The AI-only turn streak that trips the refocus breaker")
	fs.BoolVar(&cfg.DMOmniscientPrivate, "dm-omniscient-private", cfg.DMOmniscientPrivate, "Whether dm viewers read private memories")

	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the engine runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceEngine, func(context.Context) error {
		return engineserver.Run(ctx, engineserver.Config{
			HTTPAddr:            fmt.Sprintf(":%d", cfg.Port),
			DatabaseURL:         cfg.DatabaseURL,
			EngineKey:           cfg.EngineKey,
			AIOnlyStreakLimit:   cfg.AIOnlyStreakLimit,
			DMOmniscientPrivate: cfg.DMOmniscientPrivate,
		})
	})
}
