// Package config loads runtime settings from the environment and optional
// .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/zaykha/JLPT-flashcard-sub001/internal/daykey"
	"github.com/zaykha/JLPT-flashcard-sub001/internal/progress"
)

// Config holds all runtime configuration.
type Config struct {
	// Driver selects the store backend: "sqlite" or "postgres".
	Driver string
	// DSN is the database path or connection string. Empty means the
	// default SQLite file.
	DSN string

	OffsetHours int
	PerDay      int
	// Level is the level name or "start-end" range the queue draws from.
	Level string
	Range progress.LevelRange

	// RedisAddr enables the Redis mirror when set.
	RedisAddr string
	RedisTTL  time.Duration

	LogMode     string
	LogHashSalt string

	// SweepAt is the HH:MM learner-zone time of the daily sweep.
	SweepAt          string
	SweepConcurrency int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Driver:           "sqlite",
		OffsetHours:      daykey.DefaultOffsetHours,
		PerDay:           2,
		Level:            "A",
		Range:            progress.Levels[0].Range,
		RedisTTL:         7 * 24 * time.Hour,
		LogMode:          "dev",
		SweepAt:          "00:05",
		SweepConcurrency: 4,
	}
}

// LoadEnvFile loads variables from path into the process environment
// without overriding ones already set. An empty path loads ./.env when it
// exists.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from FLASHCARD_* environment variables, falling
// back to defaults for unset values.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("FLASHCARD_DRIVER"); v != "" {
		cfg.Driver = v
	}
	if v := os.Getenv("FLASHCARD_DB"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("FLASHCARD_TZ_OFFSET_HOURS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("FLASHCARD_TZ_OFFSET_HOURS: %w", err)
		}
		cfg.OffsetHours = n
	}
	if v := os.Getenv("FLASHCARD_PER_DAY"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("FLASHCARD_PER_DAY: %w", err)
		}
		cfg.PerDay = n
	}
	if v := os.Getenv("FLASHCARD_LEVEL"); v != "" {
		if err := cfg.SetLevel(v); err != nil {
			return cfg, fmt.Errorf("FLASHCARD_LEVEL: %w", err)
		}
	}
	if v := os.Getenv("FLASHCARD_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("FLASHCARD_REDIS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("FLASHCARD_REDIS_TTL: %w", err)
		}
		cfg.RedisTTL = d
	}
	if v := os.Getenv("FLASHCARD_LOG_MODE"); v != "" {
		cfg.LogMode = v
	}
	if v := os.Getenv("FLASHCARD_LOG_HASH_SALT"); v != "" {
		cfg.LogHashSalt = v
	}
	if v := os.Getenv("FLASHCARD_SWEEP_AT"); v != "" {
		cfg.SweepAt = v
	}
	if v := os.Getenv("FLASHCARD_SWEEP_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("FLASHCARD_SWEEP_CONCURRENCY: %w", err)
		}
		cfg.SweepConcurrency = n
	}

	return cfg, nil
}

// SetLevel sets Level and Range from a level name or "start-end".
func (c *Config) SetLevel(level string) error {
	r, err := progress.ParseRange(level)
	if err != nil {
		return err
	}
	c.Level = level
	c.Range = r
	return nil
}

// Validate checks the configuration for values the engine cannot use.
func (c Config) Validate() error {
	switch c.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown driver: %q", c.Driver)
	}
	if c.Driver == "postgres" && c.DSN == "" {
		return fmt.Errorf("FLASHCARD_DB is required for the postgres driver")
	}
	if c.OffsetHours < -12 || c.OffsetHours > 14 {
		return fmt.Errorf("offset %d hours is outside UTC-12..UTC+14", c.OffsetHours)
	}
	if c.PerDay < 1 {
		return fmt.Errorf("per-day quota must be at least 1, got %d", c.PerDay)
	}
	if err := c.Range.Validate(); err != nil {
		return err
	}
	if _, err := time.Parse("15:04", c.SweepAt); err != nil {
		return fmt.Errorf("sweep time %q: want HH:MM", c.SweepAt)
	}
	if c.SweepConcurrency < 1 {
		return fmt.Errorf("sweep concurrency must be at least 1, got %d", c.SweepConcurrency)
	}
	return nil
}
