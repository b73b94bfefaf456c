package engine

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("engine", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8088 {
		t.Fatalf("port = %d, want 8088", cfg.Port)
	}
	if cfg.DatabaseURL != "sqlite:///./ttrpg.db" {
		t.Fatalf("database_url = %q, want %q", cfg.DatabaseURL, "sqlite:///./ttrpg.db")
	}
	if cfg.EngineKey != "dev-secret-key" {
		t.Fatalf("engine_key = %q, want %q", cfg.EngineKey, "dev-secret-key")
	}
	if cfg.AIOnlyStreakLimit != 3 {
		t.Fatalf("ai_only_streak_limit = %d, want 3", cfg.AIOnlyStreakLimit)
	}
	if !cfg.DMOmniscientPrivate {
		t.Fatal("dm_omniscient_private = false, want true")
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("ENGINE_PORT", "9000")
	t.Setenv("DATABASE_URL", "sqlite:///./custom.db")

	fs := flag.NewFlagSet("engine", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-port", "9001",
		"-engine-key", "table-key",
		"-ai-only-streak-limit", "5",
		"-dm-omniscient-private=false",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9001 {
		t.Fatalf("port = %d, want 9001", cfg.Port)
	}
	if cfg.DatabaseURL != "sqlite:///./custom.db" {
		t.Fatalf("database_url = %q, want %q", cfg.DatabaseURL, "sqlite:///./custom.db")
	}
	if cfg.EngineKey != "table-key" {
		t.Fatalf("engine_key = %q, want %q", cfg.EngineKey, "table-key")
	}
	if cfg.AIOnlyStreakLimit != 5 {
		t.Fatalf("ai_only_streak_limit = %d, want 5", cfg.AIOnlyStreakLimit)
	}
	if cfg.DMOmniscientPrivate {
		t.Fatal("dm_omniscient_private = true, want false")
	}
}
