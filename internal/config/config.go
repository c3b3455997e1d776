package config

import (
	"os"
	"strconv"
)

type Config struct {
	// App
	AppEnv  string
	Port    string
	LogFile string

	// Database
	DatabaseURL string

	// Auth
	JWTSecret string

	// TickTick integration
	TickTickBaseURL      string
	TickTickClientID     string
	TickTickClientSecret string
	TickTickRedirectURL  string

	// Gamification
	XPPerCreate   int
	XPPerComplete int
	XPPerSync     int
}

func Load() (*Config, error) {
	cfg := &Config{
		// App
		AppEnv:  getEnv("APP_ENV", "development"),
		Port:    getEnv("PORT", "8000"),
		LogFile: getEnv("LOG_FILE", ""),

		// DB
		DatabaseURL: getEnv("DATABASE_URL",
			"host=127.0.0.1 port=5432 user=postgres password=postgres dbname=secondbrain sslmode=disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "secret123"),

		// TickTick
		TickTickBaseURL:      getEnv("TICKTICK_BASE_URL", "https://api.ticktick.com"),
		TickTickClientID:     getEnv("TICKTICK_CLIENT_ID", ""),
		TickTickClientSecret: getEnv("TICKTICK_CLIENT_SECRET", ""),
		TickTickRedirectURL:  getEnv("TICKTICK_REDIRECT_URL", "http://localhost:8000/api/v1/integrations/ticktick/callback"),

		// XP settings
		XPPerCreate:   getEnvInt("XP_PER_CREATE", 10),
		XPPerComplete: getEnvInt("XP_PER_COMPLETE", 25),
		XPPerSync:     getEnvInt("XP_PER_SYNC", 5),
	}

	return cfg, nil
}

// getEnv returns environment variable or default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns int from env or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
