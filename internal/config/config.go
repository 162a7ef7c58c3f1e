// Package config loads service configuration from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	ServerPort  string `yaml:"server_port"`
	FrontendURL string `yaml:"frontend_url"`
	DataDir     string `yaml:"data_dir"`

	// Remote sync backend (shared Postgres reached by every device)
	RemoteURL string `yaml:"remote_url"`
	// Notifier selects the remote change-notification transport:
	// "postgres" (LISTEN/NOTIFY on the remote database) or "amqp".
	Notifier string `yaml:"notifier"`
	AMQPURL  string `yaml:"amqp_url"`

	// Device auth
	DeviceTokenSecret string `yaml:"device_token_secret"`
	DeviceTokenTTL    time.Duration `yaml:"device_token_ttl"`

	// Rate limiting
	RedisURL  string `yaml:"redis_url"`
	RateLimit string `yaml:"rate_limit"`

	// Source collaborators
	PhotoLibraryDir    string `yaml:"photo_library_dir"`
	CalendarGatewayURL string `yaml:"calendar_gateway_url"`
	CalendarToken      string `yaml:"calendar_token"`
	EnrichmentProvider string `yaml:"enrichment_provider"` // "history" or "news"
	NewsAPIURL         string `yaml:"news_api_url"`
	NewsAPIKey         string `yaml:"news_api_key"`

	// Location tracking policy
	LocationRetentionDays int     `yaml:"location_retention_days"`
	LocationAccuracyMax   float64 `yaml:"location_accuracy_max"`

	// Summaries
	OpenAIKey string `yaml:"openai_key"`
	AIModel   string `yaml:"ai_model"`
	AIBaseURL string `yaml:"ai_base_url"`

	ServerDebugMode bool   `yaml:"server_debug_mode"`
	OTELEnabled     bool   `yaml:"otel_enabled"`
	OTELEndpoint    string `yaml:"otel_endpoint"`
}

// Load reads the optional config file named by MIRRORDAY_CONFIG, then applies
// environment-variable overrides.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:            "8080",
		FrontendURL:           "http://localhost:3000",
		DataDir:               defaultDataDir(),
		Notifier:              "postgres",
		DeviceTokenTTL:        90 * 24 * time.Hour,
		RedisURL:              "redis://localhost:6379/0",
		RateLimit:             "5-S",
		EnrichmentProvider:    "history",
		LocationRetentionDays: 90,
		LocationAccuracyMax:   100,
	}

	if path := os.Getenv("MIRRORDAY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.RemoteURL == "" {
		return nil, fmt.Errorf("REMOTE_URL is required (shared sync database)")
	}
	if cfg.DeviceTokenSecret == "" {
		return nil, fmt.Errorf("DEVICE_TOKEN_SECRET is required")
	}
	if cfg.Notifier != "postgres" && cfg.Notifier != "amqp" {
		return nil, fmt.Errorf("NOTIFIER must be \"postgres\" or \"amqp\", got %q", cfg.Notifier)
	}
	if cfg.Notifier == "amqp" && cfg.AMQPURL == "" {
		return nil, fmt.Errorf("AMQP_URL is required when NOTIFIER=amqp")
	}
	if cfg.EnrichmentProvider != "history" && cfg.EnrichmentProvider != "news" {
		return nil, fmt.Errorf("ENRICHMENT_PROVIDER must be \"history\" or \"news\", got %q", cfg.EnrichmentProvider)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.RemoteURL = getEnv("REMOTE_URL", cfg.RemoteURL)
	cfg.Notifier = getEnv("NOTIFIER", cfg.Notifier)
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.DeviceTokenSecret = getEnv("DEVICE_TOKEN_SECRET", cfg.DeviceTokenSecret)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RateLimit = getEnv("RATE_LIMIT", cfg.RateLimit)
	cfg.PhotoLibraryDir = getEnv("PHOTO_LIBRARY_DIR", cfg.PhotoLibraryDir)
	cfg.CalendarGatewayURL = getEnv("CALENDAR_GATEWAY_URL", cfg.CalendarGatewayURL)
	cfg.CalendarToken = getEnv("CALENDAR_TOKEN", cfg.CalendarToken)
	cfg.EnrichmentProvider = getEnv("ENRICHMENT_PROVIDER", cfg.EnrichmentProvider)
	cfg.NewsAPIURL = getEnv("NEWS_API_URL", cfg.NewsAPIURL)
	cfg.NewsAPIKey = getEnv("NEWS_API_KEY", cfg.NewsAPIKey)
	cfg.LocationRetentionDays = getEnvInt("LOCATION_RETENTION_DAYS", cfg.LocationRetentionDays)
	cfg.LocationAccuracyMax = getEnvFloat("LOCATION_ACCURACY_MAX", cfg.LocationAccuracyMax)
	cfg.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.AIModel = getEnv("AI_MODEL", cfg.AIModel)
	cfg.AIBaseURL = getEnv("AI_BASE_URL", cfg.AIBaseURL)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)
}

// RemindersFile is where the store persists the reminder collection. The
// widget reads the same file.
func (c *Config) RemindersFile() string {
	return c.DataDir + "/reminders.json"
}

// LocationsFile holds the rolling location-point history
func (c *Config) LocationsFile() string {
	return c.DataDir + "/locations.json"
}

// ProfileFile holds the singleton user profile and onboarding flag
func (c *Config) ProfileFile() string {
	return c.DataDir + "/profile.json"
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.mirrorday"
	}
	return "."
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
