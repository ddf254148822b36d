package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	EventBus      EventBusConfig      `yaml:"eventbus"`
	Platform      PlatformConfig      `yaml:"platform"`
	Scoreboard    ScoreboardConfig    `yaml:"scoreboard"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// DatabaseConfig holds database configuration. Driver is "postgres",
// "pgx" or "sqlite".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// EventBusConfig holds event bus configuration. Driver is "nats" or
// "gochannel".
type EventBusConfig struct {
	Driver    string `yaml:"driver"`
	URL       string `yaml:"url"`
	JetStream bool   `yaml:"jetstream"`
	NKeySeed  string `yaml:"nkey_seed"`
}

// PlatformConfig holds the request-reply connection to the chat platform
// client.
type PlatformConfig struct {
	NATSURL           string        `yaml:"nats_url"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

// ScoreboardConfig holds scoreboard behavior.
type ScoreboardConfig struct {
	PageGroups int `yaml:"page_groups"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

// Defaults.
const (
	DefaultPageGroups     = 10
	DefaultRequestTimeout = 5 * time.Second
	DefaultRequestsPerSec = 40
	DefaultEventBusDriver = "nats"
	DefaultDatabaseDriver = "postgres"
)

// LoadConfig loads the configuration from a YAML file. Environment
// variables override file values; without a file the environment is the
// only source.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, cfg.validate()
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	if cfg.EventBus.Driver == DefaultEventBusDriver && cfg.EventBus.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}
	return &cfg, cfg.validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("EVENTBUS_DRIVER"); v != "" {
		cfg.EventBus.Driver = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.EventBus.URL = v
	}
	if v := os.Getenv("NATS_JETSTREAM"); v != "" {
		cfg.EventBus.JetStream = v == "true"
	}
	if v := os.Getenv("NATS_NKEY_SEED"); v != "" {
		cfg.EventBus.NKeySeed = v
	}
	if v := os.Getenv("PLATFORM_NATS_URL"); v != "" {
		cfg.Platform.NATSURL = v
	}
	if v := os.Getenv("PLATFORM_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PLATFORM_REQUEST_TIMEOUT value: %w", err)
		}
		cfg.Platform.RequestTimeout = d
	}
	if v := os.Getenv("PLATFORM_REQUESTS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PLATFORM_REQUESTS_PER_SECOND value: %w", err)
		}
		cfg.Platform.RequestsPerSecond = f
	}
	if v := os.Getenv("SCORES_PAGE_GROUPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCORES_PAGE_GROUPS value: %w", err)
		}
		cfg.Scoreboard.PageGroups = n
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDatabaseDriver
	}
	if cfg.EventBus.Driver == "" {
		cfg.EventBus.Driver = DefaultEventBusDriver
	}
	// The platform client dials the event bus server unless told otherwise.
	if cfg.Platform.NATSURL == "" {
		cfg.Platform.NATSURL = cfg.EventBus.URL
	}
	if cfg.Platform.RequestTimeout <= 0 {
		cfg.Platform.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Platform.RequestsPerSecond == 0 {
		cfg.Platform.RequestsPerSecond = DefaultRequestsPerSec
	}
	if cfg.Scoreboard.PageGroups == 0 {
		cfg.Scoreboard.PageGroups = DefaultPageGroups
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	if c.Scoreboard.PageGroups < 1 {
		return fmt.Errorf("scoreboard page groups must be positive, got %d", c.Scoreboard.PageGroups)
	}
	return nil
}
