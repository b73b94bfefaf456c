// Package mcp parses MCP command flags and launches the MCP stdio adapter.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/roundtable/internal/platform/cmd"
	mcpservice "github.com/louisbranch/roundtable/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	EngineURL string `env:"ENGINE_URL" envDefault:"http://localhost:8088"`
	EngineKey string `env:"ENGINE_KEY" envDefault:"dev-secret-key"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.EngineURL, "engine-url", cfg.EngineURL, "The engine HTTP API base URL")
	fs.StringVar(&cfg.EngineKey, "engine-key", cfg.EngineKey, "The pre-shared engine API key")

	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server over stdio.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{
			EngineURL: cfg.EngineURL,
			EngineKey: cfg.EngineKey,
		})
	})
}
