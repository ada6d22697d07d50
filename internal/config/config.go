package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AppEnv          string
	Debug           bool
	Version         string
	BotToken        string
	AdminID         int64
	AdminContact    string
	SentryDSN       string
	MongoDBURI      string
	MongoDBDatabase string
	DefaultLanguage string
	MetricsAddr     string

	AckDeleteDelay       time.Duration
	BroadcastConcurrency int
	BroadcastRate        int
	BroadcastTimeout     time.Duration
}

// LoadConfig loads configuration from environment variables.
// It attempts to load a .env file if present but prioritizes
// actual environment variables set in the system (e.g., by Docker).
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	debug, _ := strconv.ParseBool(getEnv("DEBUG", "false"))

	adminIDStr := getEnv("ADMIN_ID", "")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_ID is required")
	}
	adminID, err := strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_ID: %w", err)
	}
	if adminID == 0 {
		return nil, fmt.Errorf("ADMIN_ID must be non-zero")
	}

	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Debug:           debug,
		Version:         getEnv("VERSION", "dev"),
		BotToken:        getEnv("BOT_TOKEN", ""),
		AdminID:         adminID,
		AdminContact:    getEnv("ADMIN_CONTACT", ""),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		MongoDBURI:      getEnv("MONGODB_URL", ""),
		MongoDBDatabase: getEnv("MONGODB_DATABASE", "premium_bot"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
		MetricsAddr:     getEnv("METRICS_ADDR", ""),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URL is required")
	}
	if cfg.SentryDSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}

	if cfg.AckDeleteDelay, err = getDuration("ACK_DELETE_DELAY", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.BroadcastTimeout, err = getDuration("BROADCAST_TIMEOUT", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.BroadcastConcurrency, err = getPositiveInt("BROADCAST_CONCURRENCY", 8); err != nil {
		return nil, err
	}
	if cfg.BroadcastRate, err = getPositiveInt("BROADCAST_RATE", 25); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return n, nil
}
