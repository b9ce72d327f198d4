package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Search   SearchConfig
	Pipeline PipelineConfig
	Cache    CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SearchConfig holds search API configuration
type SearchConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// PipelineConfig holds the tunable query-pipeline parameters
type PipelineConfig struct {
	RelevanceFloor float64       `mapstructure:"relevance_floor"`
	FetchAttempts  int           `mapstructure:"fetch_attempts"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	QueryDeadline  time.Duration `mapstructure:"query_deadline"`
	MaxConcurrent  int           `mapstructure:"max_concurrent"`
	DefaultLimit   int           `mapstructure:"default_limit"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricescout/")

	// Environment variable settings
	v.SetEnvPrefix("PRICESCOUT")
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Search API defaults
	v.SetDefault("search.base_url", "https://serpapi.com")

	// Pipeline defaults
	v.SetDefault("pipeline.relevance_floor", 0.3)
	v.SetDefault("pipeline.fetch_attempts", 2)
	v.SetDefault("pipeline.fetch_timeout", "30s")
	v.SetDefault("pipeline.query_deadline", "45s")
	v.SetDefault("pipeline.max_concurrent", 8)
	v.SetDefault("pipeline.default_limit", 10)

	// Cache defaults
	v.SetDefault("cache.ttl", "15m")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Search.APIKey == "" {
		return fmt.Errorf("search API key is required (set PRICESCOUT_SEARCH_API_KEY)")
	}

	if config.Pipeline.RelevanceFloor < 0 || config.Pipeline.RelevanceFloor > 1 {
		return fmt.Errorf("relevance floor must be in [0,1], got: %v", config.Pipeline.RelevanceFloor)
	}

	if config.Pipeline.FetchAttempts < 1 {
		return fmt.Errorf("fetch attempts must be at least 1, got: %d", config.Pipeline.FetchAttempts)
	}

	if config.Pipeline.DefaultLimit < 1 || config.Pipeline.DefaultLimit > 50 {
		return fmt.Errorf("default limit must be between 1 and 50, got: %d", config.Pipeline.DefaultLimit)
	}

	return nil
}
