package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	CoachBaseURL string
	CoachWSURL   string

	RedisURL    string
	DatabaseURL string

	DefaultSide       string
	DefaultDifficulty string
	CoachVerbosity    int

	PushQueueSize  int
	HTTPTimeoutSec int

	ExportDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		DefaultSide:       "white",
		DefaultDifficulty: "medium",
		CoachVerbosity:    2,
		PushQueueSize:     16,
		HTTPTimeoutSec:    30,
		ExportDir:         "exports",
	}

	cfg.CoachBaseURL = strings.TrimSpace(os.Getenv("COACH_BASE_URL"))
	cfg.CoachWSURL = strings.TrimSpace(os.Getenv("COACH_WS_URL"))

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.ToLower(strings.TrimSpace(os.Getenv("COACH_SIDE"))); v != "" {
		if v != "white" && v != "black" {
			return nil, errors.New("COACH_SIDE must be white or black")
		}
		cfg.DefaultSide = v
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("COACH_BOT_DIFFICULTY"))); v != "" {
		switch v {
		case "easy", "medium", "hard":
			cfg.DefaultDifficulty = v
		default:
			return nil, errors.New("COACH_BOT_DIFFICULTY must be easy|medium|hard")
		}
	}
	if v := strings.TrimSpace(os.Getenv("COACH_VERBOSITY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 3 {
			cfg.CoachVerbosity = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("COACH_PUSH_QUEUE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PushQueueSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("COACH_HTTP_TIMEOUT")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeoutSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("COACH_EXPORT_DIR")); v != "" {
		cfg.ExportDir = v
	}

	if cfg.CoachBaseURL == "" {
		return nil, errors.New("COACH_BASE_URL is required")
	}
	// COACH_WS_URL stays optional: without it the push channel is off and the
	// request/response path carries everything.

	return cfg, nil
}
