// Package config loads process settings from the environment and the account
// and trading-style definitions from YAML.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the control plane.
type Config struct {
	Port string

	// Files
	AccountsPath string
	StylesPath   string
	AuditDBPath  string

	// Event bus retention
	BusCapacity int

	// API auth
	JWTSecret string

	// Logging
	LogLevel  string
	LogFormat string

	// Scheduler poll cadence in milliseconds
	PollIntervalMS int

	// Contract rollover
	RolloverSymbols  []string
	RolloverCalendar string
}

// Load reads environment variables (optionally via .env) into Config.
func Load() (*Config, error) {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AccountsPath:   getEnv("ACCOUNTS_PATH", "./config/accounts.yaml"),
		StylesPath:     getEnv("STYLES_PATH", "./config/trading_styles.yaml"),
		AuditDBPath:    getEnv("AUDIT_DB_PATH", "./data/audit.db"),
		BusCapacity:    getEnvInt("BUS_CAPACITY", 1000),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		PollIntervalMS: getEnvInt("POLL_INTERVAL_MS", 1000),

		RolloverSymbols:  splitAndTrim(getEnv("ROLLOVER_SYMBOLS", "")),
		RolloverCalendar: getEnv("ROLLOVER_CALENDAR", "CME"),
	}, nil
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
