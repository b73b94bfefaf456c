// Package seed parses seed command flags and creates the demo campaign.
package seed

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/roundtable/internal/platform/cmd"
	seedsvc "github.com/louisbranch/roundtable/internal/services/seed"
)

// Config holds seed command configuration.
type Config struct {
	EngineURL string `env:"ENGINE_URL" envDefault:"http://localhost:8088"`
	EngineKey string `env:"ENGINE_KEY" envDefault:"dev-secret-key"`

	// Name overrides the demo campaign name. Flag only.
	Name string
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.EngineURL, "engine-url", cfg.EngineURL, "The engine HTTP API base URL")
	fs.StringVar(&cfg.EngineKey, "engine-key", cfg.EngineKey, "The pre-shared engine API key")
	fs.StringVar(&cfg.Name, "name", cfg.Name, "The demo campaign name override")

	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run seeds the demo campaign against the configured engine.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(context.Context) error {
		return seedsvc.Run(ctx, seedsvc.Config{
			EngineURL: cfg.EngineURL,
			EngineKey: cfg.EngineKey,
			Name:      cfg.Name,
		})
	})
}
