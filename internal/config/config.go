package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Logging
	LogLevel  string
	LogFormat string

	// Fixtures. An empty path means the embedded demo set; a DSN replaces
	// both with a read-only import from PostgreSQL.
	FixturesPath string
	FixturesDSN  string

	// Identity
	DemoPassword      string
	MinPasswordLength int
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) *Config {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("no .env file loaded, using process environment", "error", err)
	}

	return &Config{
		LogLevel:  getEnv("LMS_LOG_LEVEL", "info"),
		LogFormat: getEnv("LMS_LOG_FORMAT", "text"),

		FixturesPath: getEnv("LMS_FIXTURES_PATH", ""),
		FixturesDSN:  getEnv("LMS_FIXTURES_DSN", ""),

		DemoPassword:      getEnv("LMS_DEMO_PASSWORD", "password"),
		MinPasswordLength: getInt("LMS_MIN_PASSWORD_LENGTH", 6),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
