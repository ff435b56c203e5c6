package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TWSE_BASE_URL", "")
	t.Setenv("CODES_CACHE_DIR", "")
	t.Setenv("CODES_CSV_PATH", "")
	t.Setenv("HTTP_TIMEOUT", "")

	cfg := Load()
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.BaseURL)
	assert.Equal(t, "cache", cfg.CacheDir)
	assert.Equal(t, "codes.csv", cfg.CSVPath)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/codes")
	t.Setenv("TWSE_BASE_URL", "http://127.0.0.1:1234")
	t.Setenv("CODES_CACHE_DIR", "/tmp/codes-cache")
	t.Setenv("CODES_CSV_PATH", "/data/codes.csv")
	t.Setenv("HTTP_TIMEOUT", "5s")

	cfg := Load()
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres://localhost/codes", cfg.DatabaseURL)
	assert.Equal(t, "http://127.0.0.1:1234", cfg.BaseURL)
	assert.Equal(t, "/tmp/codes-cache", cfg.CacheDir)
	assert.Equal(t, "/data/codes.csv", cfg.CSVPath)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
}

func TestLoadInvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "not-a-duration")

	cfg := Load()
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
}
