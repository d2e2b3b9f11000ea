package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey string

	// DatabasePath is the location of the SQLite document database.
	DatabasePath string

	// SessionTTLHours is the idle lifetime of an onboarding session.
	SessionTTLHours int

	// JWTSecretKey signs access tokens. The default is only suitable for
	// local development.
	JWTSecretKey string

	// GoogleClientID enables Google Sign-In when set.
	GoogleClientID string

	Port string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	databasePath := os.Getenv("DATABASE_PATH")
	if databasePath == "" {
		databasePath = "data/menumaster.db"
	}

	sessionTTLHours := 1
	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("SESSION_TTL_HOURS must be a positive integer, got %q", v)
		}
		sessionTTLHours = parsed
	}

	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key-change-in-production"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		GeminiAPIKey:    geminiAPIKey,
		DatabasePath:    databasePath,
		SessionTTLHours: sessionTTLHours,
		JWTSecretKey:    jwtSecret,
		GoogleClientID:  os.Getenv("GOOGLE_CLIENT_ID"),
		Port:            port,
	}, nil
}
