package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	// JWTSecret signs and verifies API bearer tokens
	JWTSecret string

	// Semantic validation service
	ValidatorEndpoint     string
	ValidatorTokenURL     string
	ValidatorClientID     string
	ValidatorClientSecret string
	ValidatorTimeout      time.Duration

	// Per-user rate limit for semantic validation calls
	ValidationRateLimit  int
	ValidationRateWindow time.Duration

	// Session defaults
	SessionWordCount     int
	SessionMinimumWords  int
	QuickFireWordCount   int
	QuickFireTimeSeconds int

	// Email notifications (AWS SES)
	EmailEnabled bool
	EmailSender  string
	AWSRegion    string

	// AppBaseURL is used to build links in outgoing emails
	AppBaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is read first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./vocabduet.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		ValidatorEndpoint:     getEnv("VALIDATOR_ENDPOINT", ""),
		ValidatorTokenURL:     getEnv("VALIDATOR_TOKEN_URL", ""),
		ValidatorClientID:     getEnv("VALIDATOR_CLIENT_ID", ""),
		ValidatorClientSecret: getEnv("VALIDATOR_CLIENT_SECRET", ""),
		ValidatorTimeout:      getEnvDuration("VALIDATOR_TIMEOUT", 8*time.Second),

		ValidationRateLimit:  getEnvInt("VALIDATION_RATE_LIMIT", 30),
		ValidationRateWindow: getEnvDuration("VALIDATION_RATE_WINDOW", time.Minute),

		SessionWordCount:     getEnvInt("SESSION_WORD_COUNT", 10),
		SessionMinimumWords:  getEnvInt("SESSION_MINIMUM_WORDS", 4),
		QuickFireWordCount:   getEnvInt("QUICKFIRE_WORD_COUNT", 10),
		QuickFireTimeSeconds: getEnvInt("QUICKFIRE_TIME_SECONDS", 60),

		EmailEnabled: getEnvBool("EMAIL_ENABLED", false),
		EmailSender:  getEnv("EMAIL_SENDER", ""),
		AWSRegion:    getEnv("AWS_REGION", "eu-west-2"),

		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:8080"),
	}
}

// Validate checks settings the server cannot safely run without. An empty
// signing secret would let forged tokens verify, so there is no default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool reads a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration reads a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
