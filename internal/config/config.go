package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all runtime settings. Every value is read once at startup;
// nothing in the server reaches for the environment after Load returns.
type Config struct {
	Port          string
	DBPath        string
	JWTSecret     string
	TokenValidity time.Duration
	ResetCodeTTL  time.Duration
	PostmarkToken string
	FromEmail     string
	LogLevel      string
	LogFormat     string
}

// Load reads configuration from FOLIO_* environment variables.
// FOLIO_JWT_SECRET is required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("FOLIO_PORT", "8080"),
		DBPath:        getEnv("FOLIO_DB_PATH", "folio.db"),
		JWTSecret:     os.Getenv("FOLIO_JWT_SECRET"),
		TokenValidity: 24 * time.Hour,
		ResetCodeTTL:  time.Hour,
		PostmarkToken: os.Getenv("FOLIO_POSTMARK_TOKEN"),
		FromEmail:     getEnv("FOLIO_FROM_EMAIL", "noreply@folio.local"),
		LogLevel:      getEnv("FOLIO_LOG_LEVEL", "info"),
		LogFormat:     getEnv("FOLIO_LOG_FORMAT", "text"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("FOLIO_JWT_SECRET is required")
	}

	if v := os.Getenv("FOLIO_TOKEN_VALIDITY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse FOLIO_TOKEN_VALIDITY: %w", err)
		}
		cfg.TokenValidity = d
	}
	if v := os.Getenv("FOLIO_RESET_CODE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse FOLIO_RESET_CODE_TTL: %w", err)
		}
		cfg.ResetCodeTTL = d
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
