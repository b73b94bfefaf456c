package seed

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.EngineURL != "http://localhost:8088" {
		t.Fatalf("engine_url = %q, want %q", cfg.EngineURL, "http://localhost:8088")
	}
	if cfg.EngineKey != "dev-secret-key" {
		t.Fatalf("engine_key = %q, want %q", cfg.EngineKey, "dev-secret-key")
	}
	if cfg.Name != "" {
		t.Fatalf("name = %q, want empty", cfg.Name)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("ENGINE_KEY", "env-key")

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-engine-url", "http://engine:9001",
		"-name", "Friday Night Table",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.EngineURL != "http://engine:9001" {
		t.Fatalf("engine_url = %q, want %q", cfg.EngineURL, "http://engine:9001")
	}
	if cfg.EngineKey != "env-key" {
		t.Fatalf("engine_key = %q, want %q", cfg.EngineKey, "env-key")
	}
	if cfg.Name != "Friday Night Table" {
		t.Fatalf("name = %q, want %q", cfg.Name, "Friday Night Table")
	}
}
