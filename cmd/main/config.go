package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

// Environment variables that override values from the config file.
const (
	envAPIURL   = "QUOTEFAULT_API_URL"
	envAPIKey   = "QUOTEFAULT_API_KEY"
	envLogLevel = "QUOTECHAIN_LOG_LEVEL"
)

// ServerConfig holds the configuration for the HTTP server and local storage.
type ServerConfig struct {
	ApiAddr      string `json:"api_addr"`
	LogLevel     string `json:"log_level"`
	DataDir      string `json:"data_dir"`
	DatabasePath string `json:"database_path"`
}

// QuoteSourceConfig holds the settings for the quotefault API client.
type QuoteSourceConfig struct {
	APIURL            string  `json:"api_url"`
	APIKey            string  `json:"api_key"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	TimeoutSec        int     `json:"timeout_sec"`
}

// GenerationConfig holds settings for building and sampling the chain.
type GenerationConfig struct {
	MaxLength      int  `json:"max_length"`
	DefaultCount   int  `json:"default_count"`
	MaxCount       int  `json:"max_count"`
	SkipEmpty      bool `json:"skip_empty"`
	RefreshOnStart bool `json:"refresh_on_start"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server      *ServerConfig      `json:"server_config"`
	QuoteSource *QuoteSourceConfig `json:"quote_source_config"`
	Generation  *GenerationConfig  `json:"generation_config"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: &ServerConfig{
			ApiAddr:      ":7278",
			LogLevel:     "info",
			DataDir:      "./data",
			DatabasePath: "./data/quotechain.db?_journal_mode=WAL&_busy_timeout=5000",
		},
		QuoteSource: &QuoteSourceConfig{
			APIURL:            "http://localhost:8080/",
			APIKey:            "",
			RequestsPerSecond: 2,
			TimeoutSec:        30,
		},
		Generation: &GenerationConfig{
			MaxLength:      100,
			DefaultCount:   1,
			MaxCount:       50,
			SkipEmpty:      true,
			RefreshOnStart: true,
		},
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values. Environment
// variables are applied last and win over the file.
func LoadConfig(path string) (*Config, error) {
	// Initialize with default configurations
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		// If the file doesn't exist, create it with the default config.
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var data []byte
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
			// Log a warning instead of failing, as we can still run with defaults.
			fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
		}
	} else if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(config)
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overrides config values with any set environment variables.
func applyEnv(config *Config) {
	if v, ok := os.LookupEnv(envAPIURL); ok {
		config.QuoteSource.APIURL = v
	}
	if v, ok := os.LookupEnv(envAPIKey); ok {
		config.QuoteSource.APIKey = v
	}
	if v, ok := os.LookupEnv(envLogLevel); ok {
		config.Server.LogLevel = v
	}
}

// Validate checks the values a config file could have broken.
func (c *Config) Validate() error {
	if c.Server == nil || c.QuoteSource == nil || c.Generation == nil {
		return fmt.Errorf("config is missing a section")
	}
	if c.QuoteSource.APIURL == "" {
		return fmt.Errorf("quote_source_config.api_url must be set")
	}
	if c.Generation.MaxCount < 1 {
		return fmt.Errorf("generation_config.max_count must be positive, got %d", c.Generation.MaxCount)
	}
	if c.Generation.DefaultCount < 0 || c.Generation.DefaultCount > c.Generation.MaxCount {
		return fmt.Errorf("generation_config.default_count must be between 0 and %d, got %d", c.Generation.MaxCount, c.Generation.DefaultCount)
	}
	return nil
}

// parseLogLevel maps a config string onto a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
