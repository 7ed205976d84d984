package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "LOG_LEVEL", "SENTRY_DSN", "HARMONY_CATALOG_FILE", "HARMONY_DEFAULT_STYLE", "HARMONY_MIN_NOTES", "HARMONY_MAX_MOVEMENT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "pop-8beat", cfg.DefaultStyle)
	assert.Equal(t, 3, cfg.MinNotes)
	assert.Equal(t, 7, cfg.MaxMovement)
	assert.Empty(t, cfg.CatalogFile)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("HARMONY_MIN_NOTES", "2")
	t.Setenv("HARMONY_MAX_MOVEMENT", "not-a-number")
	t.Setenv("HARMONY_CATALOG_FILE", "/etc/harmony/catalog.yaml")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2, cfg.MinNotes)
	assert.Equal(t, 7, cfg.MaxMovement)
	assert.Equal(t, "/etc/harmony/catalog.yaml", cfg.CatalogFile)
}
