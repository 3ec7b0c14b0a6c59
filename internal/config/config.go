package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Resolver  ResolverConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"7900"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// StorageConfig holds document-store configuration.
type StorageConfig struct {
	URI      string        `envconfig:"STORAGE_URI" default:"mongodb://localhost:27017"`
	Database string        `envconfig:"STORAGE_DB" default:"rez_launcher"`
	Timeout  time.Duration `envconfig:"STORAGE_TIMEOUT" default:"10s"`
}

// ResolverConfig holds external resolver tool configuration.
type ResolverConfig struct {
	Bin     string `envconfig:"RESOLVER_BIN" default:"rez"`
	Workers int    `envconfig:"RESOLVER_WORKERS" default:"4"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	File        string `envconfig:"LOG_FILE" default:""`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "7900",
			Host: "127.0.0.1",
		},
		Storage: StorageConfig{
			URI:      "mongodb://localhost:27017",
			Database: "rez_launcher",
			Timeout:  10 * time.Second,
		},
		Resolver: ResolverConfig{
			Bin:     "rez",
			Workers: 4,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
