package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB        DatabaseConfig
	Redis     RedisConfig
	Ranking   RankingConfig
	Assistant AssistantRuntimeConfig
	Worker    WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RankingConfig drives the commission ranking period resolution.
// BiweeklyAnchor is the admin-configured start of the biweekly cadence;
// periods before the anchor are valid (floor bucketing).
type RankingConfig struct {
	PeriodType       string
	BiweeklyAnchor   time.Time
	CustomPeriodDays int
}

// AssistantRuntimeConfig contains process-level tuning for the business
// assistant (the domain thresholds live in the database singleton, not here).
type AssistantRuntimeConfig struct {
	ConfigCacheTTL time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	JobPollInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Ranking
	cfg.Ranking = RankingConfig{
		PeriodType:       getEnv("RANKING_PERIOD_TYPE", "monthly"),
		CustomPeriodDays: getEnvInt("RANKING_CUSTOM_PERIOD_DAYS", 15),
	}
	anchorRaw := getEnv("RANKING_BIWEEKLY_ANCHOR", "2024-01-01")
	anchor, err := time.ParseInLocation("2006-01-02", anchorRaw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid RANKING_BIWEEKLY_ANCHOR: %w", err)
	}
	cfg.Ranking.BiweeklyAnchor = anchor

	switch cfg.Ranking.PeriodType {
	case "daily", "weekly", "biweekly", "monthly", "custom":
	default:
		return nil, fmt.Errorf("invalid RANKING_PERIOD_TYPE: %q", cfg.Ranking.PeriodType)
	}

	// Assistant runtime
	if cfg.Assistant.ConfigCacheTTL, err = parseDurationEnv("ASSISTANT_CONFIG_CACHE_TTL", "5s"); err != nil {
		return nil, fmt.Errorf("invalid ASSISTANT_CONFIG_CACHE_TTL: %w", err)
	}

	// Workers (durations)
	if cfg.Worker.JobPollInterval, err = parseDurationEnv("RECO_JOB_POLL_INTERVAL", "2s"); err != nil {
		return nil, fmt.Errorf("invalid RECO_JOB_POLL_INTERVAL: %w", err)
	}

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
