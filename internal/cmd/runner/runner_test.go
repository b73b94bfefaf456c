package runner

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("runner", flag.ContinueOnError)
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
	if cfg.CampaignID != "" {
		t.Fatalf("campaign_id = %q, want empty", cfg.CampaignID)
	}
	if cfg.LLMBaseURL != "http://localhost:11434/v1" {
		t.Fatalf("llm_base_url = %q, want %q", cfg.LLMBaseURL, "http://localhost:11434/v1")
	}
	if cfg.LLMAPIKey != "ollama" {
		t.Fatalf("llm_api_key = %q, want %q", cfg.LLMAPIKey, "ollama")
	}
	if cfg.DMModel != "llama3" {
		t.Fatalf("dm_model = %q, want %q", cfg.DMModel, "llama3")
	}
	if cfg.PlayerModel != "llama3" {
		t.Fatalf("player_model = %q, want %q", cfg.PlayerModel, "llama3")
	}
	if cfg.PollInterval != time.Second {
		t.Fatalf("poll_interval = %s, want %s", cfg.PollInterval, time.Second)
	}
	if cfg.MaxEvents != 50 {
		t.Fatalf("max_events = %d, want 50", cfg.MaxEvents)
	}
	if cfg.MaxMemories != 30 {
		t.Fatalf("max_memories = %d, want 30", cfg.MaxMemories)
	}
	if cfg.MaxAutoTurns != 2 {
		t.Fatalf("max_auto_turns = %d, want 2", cfg.MaxAutoTurns)
	}
	if cfg.Once || cfg.Watch {
		t.Fatalf("once = %t, watch = %t, want both false", cfg.Once, cfg.Watch)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("CAMPAIGN_ID", "camp-env")
	t.Setenv("DM_MODEL", "mistral")

	fs := flag.NewFlagSet("runner", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-engine-url", "http://engine:9999",
		"-player-model", "qwen",
		"-poll", "2s",
		"-max-events", "10",
		"-max-auto-turns", "4",
		"-once",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.EngineURL != "http://engine:9999" {
		t.Fatalf("engine_url = %q, want %q", cfg.EngineURL, "http://engine:9999")
	}
	if cfg.CampaignID != "camp-env" {
		t.Fatalf("campaign_id = %q, want %q", cfg.CampaignID, "camp-env")
	}
	if cfg.DMModel != "mistral" {
		t.Fatalf("dm_model = %q, want %q", cfg.DMModel, "mistral")
	}
	if cfg.PlayerModel != "qwen" {
		t.Fatalf("player_model = %q, want %q", cfg.PlayerModel, "qwen")
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("poll_interval = %s, want %s", cfg.PollInterval, 2*time.Second)
	}
	if cfg.MaxEvents != 10 {
		t.Fatalf("max_events = %d, want 10", cfg.MaxEvents)
	}
	if cfg.MaxAutoTurns != 4 {
		t.Fatalf("max_auto_turns = %d, want 4", cfg.MaxAutoTurns)
	}
	if !cfg.Once {
		t.Fatal("once = false, want true")
	}
}

func TestParseConfigFractionalPollSeconds(t *testing.T) {
	t.Setenv("POLL_SECONDS", "0.5")

	fs := flag.NewFlagSet("runner", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.PollSeconds != 0.5 {
		t.Fatalf("poll_seconds = %v, want 0.5", cfg.PollSeconds)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Fatalf("poll_interval = %s, want %s", cfg.PollInterval, 500*time.Millisecond)
	}
}

func TestParseConfigRejectsOnceAndWatch(t *testing.T) {
	fs := flag.NewFlagSet("runner", flag.ContinueOnError)
	_, err := ParseConfig(fs, []string{"-once", "-watch"})
	if err == nil {
		t.Fatal("expected error for -once with -watch")
	}
}
