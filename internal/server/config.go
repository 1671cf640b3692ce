// Package server exposes the extraction pipeline over a small JSON API.
package server

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds server configuration sourced from the environment.
type Config struct {
	HTTPPort           string
	NavigationTimeout  int // seconds
	RateLimitPerMinute int
	Verbose            bool
}

// LoadConfig reads configuration from the environment, loading a .env file
// first if one exists.
func LoadConfig() Config {
	// Load .env file if it exists.
	_ = godotenv.Load()

	return Config{
		HTTPPort:           getEnv("HTTP_PORT", ":8080"),
		NavigationTimeout:  getEnvInt("NAVIGATION_TIMEOUT_SECONDS", 30),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		Verbose:            getEnvBool("VERBOSE", false),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
