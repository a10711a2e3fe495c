package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// JWT
	JWTSecret          string
	JWTExpirationHours int

	// Discord OAuth2
	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURI  string

	// The one account whose role can never be changed
	FounderDiscordID string

	// Power actions
	PowerActionDelay   time.Duration
	PowerActionTimeout time.Duration

	// Expired grants are swept on this interval
	GrantPurgeInterval time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         getEnv("ENVIRONMENT", "development"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTExpirationHours:  getEnvInt("JWT_EXPIRATION_HOURS", 24),
		DiscordClientID:     getEnv("DISCORD_CLIENT_ID", ""),
		DiscordClientSecret: getEnv("DISCORD_CLIENT_SECRET", ""),
		DiscordRedirectURI:  getEnv("DISCORD_REDIRECT_URI", "http://localhost:8080/auth/callback"),
		FounderDiscordID:    getEnv("FOUNDER_DISCORD_ID", ""),
		PowerActionDelay:    time.Duration(getEnvInt("POWER_ACTION_DELAY_MS", 1500)) * time.Millisecond,
		PowerActionTimeout:  time.Duration(getEnvInt("POWER_ACTION_TIMEOUT_MS", 10000)) * time.Millisecond,
		GrantPurgeInterval:  time.Duration(getEnvInt("GRANT_PURGE_INTERVAL_MINUTES", 60)) * time.Minute,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.FounderDiscordID == "" {
		return nil, fmt.Errorf("FOUNDER_DISCORD_ID environment variable is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
