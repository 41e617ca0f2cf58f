package config

import "testing"

func TestLoadRequiresBaseURL(t *testing.T) {
	t.Setenv("COACH_BASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without COACH_BASE_URL")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COACH_BASE_URL", "http://localhost:8000")
	t.Setenv("COACH_WS_URL", "")
	t.Setenv("COACH_SIDE", "")
	t.Setenv("COACH_BOT_DIFFICULTY", "")
	t.Setenv("COACH_PUSH_QUEUE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultSide != "white" || cfg.DefaultDifficulty != "medium" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.PushQueueSize != 16 || cfg.CoachVerbosity != 2 {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.CoachWSURL != "" {
		t.Fatalf("ws url should stay empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("COACH_BASE_URL", "http://coach:9000/")
	t.Setenv("COACH_SIDE", "BLACK")
	t.Setenv("COACH_BOT_DIFFICULTY", "hard")
	t.Setenv("COACH_VERBOSITY", "3")
	t.Setenv("COACH_PUSH_QUEUE", "64")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultSide != "black" {
		t.Fatalf("side = %q", cfg.DefaultSide)
	}
	if cfg.DefaultDifficulty != "hard" || cfg.CoachVerbosity != 3 || cfg.PushQueueSize != 64 {
		t.Fatalf("overrides: %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("COACH_BASE_URL", "http://localhost:8000")
	t.Setenv("COACH_SIDE", "green")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad side")
	}

	t.Setenv("COACH_SIDE", "white")
	t.Setenv("COACH_BOT_DIFFICULTY", "impossible")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad difficulty")
	}
}
