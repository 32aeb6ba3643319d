package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable pointing at an optional YAML overlay
const ConfigFileEnv = "FOCUSDOCK_CONFIG"

// Config holds application configuration
type Config struct {
	DatabaseURL         string        `yaml:"database_url"`
	ServerPort          string        `yaml:"server_port"`
	FrontendURL         string        `yaml:"frontend_url"`
	EnableHSTS          bool          `yaml:"enable_hsts"`
	RedisURL            string        `yaml:"redis_url"`
	RabbitMQURL         string        `yaml:"rabbitmq_url"`
	RabbitMQPrefetch    int           `yaml:"rabbitmq_prefetch"`
	RateLimit           string        `yaml:"rate_limit"`
	CacheTTL            time.Duration `yaml:"cache_ttl"`
	DefaultTimerMinutes int           `yaml:"default_timer_minutes"`
	WorkerDebugMode     bool          `yaml:"worker_debug_mode"`
	ServerDebugMode     bool          `yaml:"server_debug_mode"`
	OTELEnabled         bool          `yaml:"otel_enabled"`
	OTELEndpoint        string        `yaml:"otel_exporter_otlp_endpoint"`
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() Config {
	return Config{
		DatabaseURL:         "sqlite://focusdock.db",
		ServerPort:          "8080",
		FrontendURL:         "http://localhost:3000",
		RabbitMQPrefetch:    1,
		RateLimit:           "20-S",
		CacheTTL:            24 * time.Hour,
		DefaultTimerMinutes: 25,
	}
}

// Load reads an optional .env file, then the YAML file named by
// FOCUSDOCK_CONFIG, then environment variables. Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	return fromEnv(cfg, os.Getenv)
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// fromEnv overlays environment values on base and validates the result
func fromEnv(base Config, getenv func(string) string) (*Config, error) {
	env := envReader{getenv: getenv}
	cfg := &Config{
		DatabaseURL:         env.getString("DATABASE_URL", base.DatabaseURL),
		ServerPort:          env.getString("SERVER_PORT", base.ServerPort),
		FrontendURL:         env.getString("FRONTEND_URL", base.FrontendURL),
		EnableHSTS:          env.getBool("ENABLE_HSTS", base.EnableHSTS),
		RedisURL:            env.getString("REDIS_URL", base.RedisURL),
		RabbitMQURL:         env.getString("RABBITMQ_URL", base.RabbitMQURL),
		RabbitMQPrefetch:    env.getInt("RABBITMQ_PREFETCH", base.RabbitMQPrefetch),
		RateLimit:           env.getString("RATE_LIMIT", base.RateLimit),
		CacheTTL:            env.getDuration("CACHE_TTL", base.CacheTTL),
		DefaultTimerMinutes: env.getInt("DEFAULT_TIMER_MINUTES", base.DefaultTimerMinutes),
		WorkerDebugMode:     env.getBool("WORKER_DEBUG_MODE", base.WorkerDebugMode),
		ServerDebugMode:     env.getBool("SERVER_DEBUG_MODE", base.ServerDebugMode),
		OTELEnabled:         env.getBool("OTEL_ENABLED", base.OTELEnabled),
		OTELEndpoint:        env.getString("OTEL_EXPORTER_OTLP_ENDPOINT", base.OTELEndpoint),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.DefaultTimerMinutes <= 0 {
		return nil, fmt.Errorf("DEFAULT_TIMER_MINUTES must be positive, got %d", cfg.DefaultTimerMinutes)
	}
	if cfg.RabbitMQPrefetch <= 0 {
		return nil, fmt.Errorf("RABBITMQ_PREFETCH must be positive, got %d", cfg.RabbitMQPrefetch)
	}

	return cfg, nil
}

type envReader struct {
	getenv func(string) string
}

func (e envReader) getString(key, defaultValue string) string {
	if value := e.getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (e envReader) getBool(key string, defaultValue bool) bool {
	return parseBool(e.getenv(key), defaultValue)
}

func (e envReader) getInt(key string, defaultValue int) int {
	if value := e.getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := e.getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseBool(value string, defaultValue bool) bool {
	if value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
