package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Poll configuration
	PollInterval time.Duration
	RunOnce      bool

	// Postgres configuration
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresMaxConns int
	PostgresMaxIdle  int

	// Provider credentials and models
	OpenAIAPIKey     string
	OpenAIModel      string
	PerplexityAPIKey string
	PerplexityModel  string
	SerpAPIKey       string
	SerpResultCap    int
	ProviderTimeout  time.Duration

	// Enrichment policy
	AlertThreshold   float64
	InsightMinLength int
	EnrichmentModel  string

	// Notification configuration
	SlackWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		PollInterval: getDurationEnv("POLL_INTERVAL", 6*time.Hour),
		RunOnce:      getBoolEnv("RUN_ONCE", false),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getIntEnv("POSTGRES_PORT", 5433),
		PostgresDB:       getEnv("POSTGRES_DB", "ai_visibility"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresMaxConns: getIntEnv("POSTGRES_MAX_CONNS", 10),
		PostgresMaxIdle:  getIntEnv("POSTGRES_MAX_IDLE", 5),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		PerplexityAPIKey: getEnv("PERPLEXITY_API_KEY", ""),
		PerplexityModel:  getEnv("PERPLEXITY_MODEL", "sonar-medium-online"),
		SerpAPIKey:       getEnv("SERPAPI_KEY", ""),
		SerpResultCap:    getIntEnv("SERP_RESULT_CAP", 3),
		ProviderTimeout:  getDurationEnv("PROVIDER_TIMEOUT", 45*time.Second),

		AlertThreshold:   getFloatEnv("SENTIMENT_THRESHOLD", -0.3),
		InsightMinLength: getIntEnv("INSIGHT_MIN_LENGTH", 300),
		EnrichmentModel:  getEnv("ENRICHMENT_MODEL", "gpt-4o-mini"),

		SlackWebhookURL:   getEnv("SLACK_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required (enrichment cannot run without it)")
	}

	if c.PostgresHost == "" || c.PostgresDB == "" || c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_HOST, POSTGRES_DB and POSTGRES_USER must be set")
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}

	if c.SerpResultCap < 1 || c.SerpResultCap > 5 {
		return fmt.Errorf("SERP_RESULT_CAP must be between 1 and 5")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// PostgresDSN builds the connection string for lib/pq.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
	)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
