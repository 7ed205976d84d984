package config

import (
	"os"
	"strconv"
)

// Config holds the engine configuration
type Config struct {
	// Environment
	Environment string
	LogLevel    string // debug, info, warn or error

	// Observability
	SentryDSN string // Sentry DSN for error tracking

	// Catalog
	CatalogFile  string // optional YAML catalog replacing the embedded one
	DefaultStyle string

	// Harmony
	MinNotes    int // distinct pitch classes needed to recognize a chord
	MaxMovement int // preferred per-voice movement in semitones
}

func Load() *Config {
	return &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		SentryDSN:    getEnv("SENTRY_DSN", ""),
		CatalogFile:  getEnv("HARMONY_CATALOG_FILE", ""),
		DefaultStyle: getEnv("HARMONY_DEFAULT_STYLE", "pop-8beat"),
		MinNotes:     getEnvInt("HARMONY_MIN_NOTES", 3),
		MaxMovement:  getEnvInt("HARMONY_MAX_MOVEMENT", 7),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to defaultValue when the variable is unset or not a number
func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// IsProduction returns true when running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
