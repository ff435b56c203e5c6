// Package config loads application configuration from the environment.
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Env selects the logging setup ("production" or "development").
	Env string

	// Port is the HTTP listen port in serve mode.
	Port string

	// DatabaseURL is the PostgreSQL connection string. Empty means the
	// process runs without the persisted-store tier.
	DatabaseURL string

	// BaseURL overrides the ISIN lookup host; empty selects production.
	BaseURL string

	// CacheDir holds one CSV file per queried category.
	CacheDir string

	// CSVPath is the bundled CSV fallback snapshot.
	CSVPath string

	// HTTPTimeout bounds each listing-page fetch.
	HTTPTimeout time.Duration
}

// Load reads configuration from environment variables, consulting a .env
// file when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Env:         getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		BaseURL:     os.Getenv("TWSE_BASE_URL"),
		CacheDir:    getEnv("CODES_CACHE_DIR", "cache"),
		CSVPath:     getEnv("CODES_CSV_PATH", "codes.csv"),
	}

	timeoutStr := getEnv("HTTP_TIMEOUT", "60s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		log.Printf("Warning: invalid HTTP_TIMEOUT value %q, falling back to 60s", timeoutStr)
		timeout = 60 * time.Second
	}
	cfg.HTTPTimeout = timeout

	return cfg
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
