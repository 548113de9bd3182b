package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the service reads
const EnvPrefix = "BASKET"

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	USDA       USDAConfig       `mapstructure:"usda"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Optimizer  OptimizerConfig  `mapstructure:"optimizer"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	LogLevel       string   `mapstructure:"log_level"` // "info" or "debug"
}

// USDAConfig holds USDA API configuration
type USDAConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute per client
	USDA  int `mapstructure:"usda"`   // requests per hour
}

// CatalogConfig points at the substitute catalog; empty uses the embedded default
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// ScoringConfig tunes the health scoring model
type ScoringConfig struct {
	HealthyThreshold int                `mapstructure:"healthy_threshold"`
	Priors           map[string]float64 `mapstructure:"priors"`
}

// OptimizerConfig tunes the substitution optimizer
type OptimizerConfig struct {
	DefaultBudgetRatio float64 `mapstructure:"default_budget_ratio"`
	SimilarPriceRatio  float64 `mapstructure:"similar_price_ratio"`
}

// EnrichmentConfig controls USDA nutrient enrichment of receipt items
type EnrichmentConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Workers       int           `mapstructure:"workers"`
	MinConfidence float64       `mapstructure:"min_confidence"`
	FuzzyMatching bool          `mapstructure:"fuzzy_matching"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Debug reports whether verbose logging is enabled
func (c *Config) Debug() bool {
	return strings.EqualFold(c.Server.LogLevel, "debug")
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/basket/")

	// BASKET_SERVER_PORT -> server.port
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory if one exists.
// Variables that are already set are never overridden.
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Every key gets a default so
// AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.log_level", "info")

	// USDA defaults
	v.SetDefault("usda.api_key", "")
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "720h") // 30 days

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.usda", 1000)

	v.SetDefault("catalog.path", "")

	v.SetDefault("scoring.healthy_threshold", 70)
	v.SetDefault("scoring.priors", map[string]float64{})

	v.SetDefault("optimizer.default_budget_ratio", 0.0)
	v.SetDefault("optimizer.similar_price_ratio", 0.10)

	v.SetDefault("enrichment.enabled", false)
	v.SetDefault("enrichment.workers", 4)
	v.SetDefault("enrichment.min_confidence", 40.0)
	v.SetDefault("enrichment.fuzzy_matching", true)
	v.SetDefault("enrichment.timeout", "10s")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Enrichment.Enabled && config.USDA.APIKey == "" {
		return fmt.Errorf("USDA API key is required when enrichment is enabled (set %s_USDA_API_KEY)", EnvPrefix)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return errors.New("redis URL is required when cache type is 'redis'")
	}

	if r := config.Optimizer.DefaultBudgetRatio; r < 0 || r > 1 {
		return fmt.Errorf("optimizer.default_budget_ratio must be within [0,1], got: %v", r)
	}

	if r := config.Optimizer.SimilarPriceRatio; r < 0 || r > 1 {
		return fmt.Errorf("optimizer.similar_price_ratio must be within [0,1], got: %v", r)
	}

	if t := config.Scoring.HealthyThreshold; t < 0 || t > 100 {
		return fmt.Errorf("scoring.healthy_threshold must be within [0,100], got: %d", t)
	}

	if config.RateLimit.PerIP < 0 || config.RateLimit.USDA < 0 {
		return errors.New("rate limits must not be negative")
	}

	return nil
}
