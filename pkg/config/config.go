// Package config resolves environment-driven defaults for the item bank CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/Sternrassler/itembank-client/pkg/itembank"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when present; its absence is not an error.
const DefaultEnvFile = ".env"

// DefaultUserAgent identifies the CLI to the Data API.
const DefaultUserAgent = "itembank-fetch/0.1.0"

// Environment variable names.
const (
	EnvBaseURL     = "ITEMBANK_BASE_URL"
	EnvCredentials = "ITEMBANK_CREDENTIALS"
	EnvLogLevel    = "ITEMBANK_LOG_LEVEL"
	EnvLogPretty   = "ITEMBANK_LOG_PRETTY"
	EnvMetricsFile = "ITEMBANK_METRICS_FILE"
	EnvUserAgent   = "ITEMBANK_USER_AGENT"
)

// Config holds values that flags fall back to.
type Config struct {
	BaseURL     string
	Credentials string
	LogLevel    string
	LogPretty   bool
	MetricsFile string
	UserAgent   string
}

// Load reads envFile into the process environment, without overriding
// variables that are already set, and resolves the configuration. A missing
// DefaultEnvFile is skipped; any other missing file is an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !(envFile == DefaultEnvFile && errors.Is(err, fs.ErrNotExist)) {
				return Config{}, fmt.Errorf("load environment from %s: %w", envFile, err)
			}
		}
	}

	pretty, err := boolEnv(EnvLogPretty)
	if err != nil {
		return Config{}, err
	}

	return Config{
		BaseURL:     envOr(EnvBaseURL, itembank.DefaultBaseURL),
		Credentials: os.Getenv(EnvCredentials),
		LogLevel:    envOr(EnvLogLevel, "warn"),
		LogPretty:   pretty,
		MetricsFile: os.Getenv(EnvMetricsFile),
		UserAgent:   envOr(EnvUserAgent, DefaultUserAgent),
	}, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func boolEnv(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
