// Package config loads the ledger configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// MemoryDB is the database path that selects an in-memory ledger.
const MemoryDB = ":memory:"

// DefaultModel is the Gemini model used when LEDGER_MODEL is not set.
const DefaultModel = "gemini-2.5-flash"

// Environment variables read by Load.
const (
	EnvDBPath = "LEDGER_DB_PATH"
	EnvModel  = "LEDGER_MODEL"
	EnvDebug  = "LEDGER_DEBUG"
)

// Config represents the application configuration.
type Config struct {
	DBPath string // LEDGER_DB_PATH
	Model  string // LEDGER_MODEL
	APIKey string // GEMINI_API_KEY, or GOOGLE_API_KEY
	Debug  bool   // LEDGER_DEBUG
}

// Load loads configuration from environment variables.
// It loads the .env file from the current directory if available, or envPath when given.
// Variables already set in the environment take precedence over the file.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	debug, err := parseBoolEnv(EnvDebug, false)
	if err != nil {
		return nil, err
	}
	return &Config{
		DBPath: getEnvOrDefault(EnvDBPath, defaultDBPath()),
		Model:  getEnvOrDefault(EnvModel, DefaultModel),
		APIKey: getEnvOrDefault("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		Debug:  debug,
	}, nil
}

// RequireAPIKey fails when no model API key is configured.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("missing required configuration: GEMINI_API_KEY\nPlease check your .env file or environment variables")
	}
	return nil
}

// defaultDBPath is ledger.db in the user's config directory, or in the current directory when
// there is none.
func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ledger.db"
	}
	return filepath.Join(dir, "ledger", "ledger.db")
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean value for %s: %s", key, value)
	}
	return parsed, nil
}
