package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken  string
	StorageBackend string
	DatabaseURL    string
	SweepInterval  time.Duration
	SummaryTime    string // HH:MM, empty disables the daily summary
	Location       *time.Location
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		StorageBackend: strings.TrimSpace(os.Getenv("STORAGE_BACKEND")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SweepInterval:  parseMinutes(strings.TrimSpace(os.Getenv("SWEEP_INTERVAL_MINUTES"))),
		SummaryTime:    strings.TrimSpace(os.Getenv("SUMMARY_TIME")),
	}

	if cfg.StorageBackend == "" {
		cfg.StorageBackend = BackendSQLite
	}
	if cfg.StorageBackend != BackendSQLite && cfg.StorageBackend != BackendPostgres {
		return cfg, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.DatabaseURL == "" {
		if cfg.StorageBackend == BackendPostgres {
			return cfg, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		cfg.DatabaseURL = "coursebot.db"
	}

	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 15 * time.Minute
	}

	loc := time.Local
	if tz := strings.TrimSpace(os.Getenv("TIMEZONE")); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return cfg, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
		loc = parsed
	}
	cfg.Location = loc

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func parseMinutes(raw string) time.Duration {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Minute
}
