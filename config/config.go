package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for cellar.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Resolve   ResolveConfig   `yaml:"resolve"`
	Pairing   PairingConfig   `yaml:"pairing"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Batch     BatchConfig     `yaml:"batch"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CatalogConfig selects the catalog files picked up by `cellar import`.
type CatalogConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// ResolveConfig holds entity resolution configuration.
type ResolveConfig struct {
	Threshold   float64 `yaml:"threshold"`
	FoldAccents bool    `yaml:"fold_accents"`
}

// PairingConfig holds pairing and ranking configuration.
type PairingConfig struct {
	RuleWeight             float64       `yaml:"rule_weight"`
	SemanticWeight         float64       `yaml:"semantic_weight"`
	DefaultLimit           int           `yaml:"default_limit"`
	MaxLimit               int           `yaml:"max_limit"`
	MaxDishLength          int           `yaml:"max_dish_length"`
	Workers                int           `yaml:"workers"`
	DegradeOnProviderError bool          `yaml:"degrade_on_provider_error"`
	CacheSize              int           `yaml:"cache_size"`
	CacheTTL               time.Duration `yaml:"cache_ttl"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Provider  string        `yaml:"provider"`    // "openai", "jina", "ollama", "mock"
	Model     string        `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv string        `yaml:"api_key_env"` // Environment variable for API key
	BaseURL   string        `yaml:"base_url"`
	Dimension int           `yaml:"dimension"`
	BatchSize int           `yaml:"batch_size"`
	Timeout   time.Duration `yaml:"timeout"`
	Breaker   BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the circuit breaker around the provider.
type BreakerConfig struct {
	MinRequests  uint32        `yaml:"min_requests"`
	FailureRatio float64       `yaml:"failure_ratio"`
	OpenTimeout  time.Duration `yaml:"open_timeout"`
}

// BatchConfig paces batch embedding.
type BatchConfig struct {
	Workers  int           `yaml:"workers"`
	Interval time.Duration `yaml:"interval"` // minimum gap between provider calls
	Burst    int           `yaml:"burst"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Addr              string `yaml:"addr"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Includes: []string{"**/*.yaml", "**/*.yml"},
			Excludes: []string{"**/.git/**", "**/.cellar/**", "cellar.yaml"},
		},
		Resolve: ResolveConfig{
			Threshold:   0.85,
			FoldAccents: false,
		},
		Pairing: PairingConfig{
			RuleWeight:             0.4,
			SemanticWeight:         0.6,
			DefaultLimit:           10,
			MaxLimit:               50,
			MaxDishLength:          500,
			Workers:                8,
			DegradeOnProviderError: true,
			CacheSize:              256,
			CacheTTL:               5 * time.Minute,
		},
		Embedding: EmbeddingConfig{
			Enabled:   false,
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
			Timeout:   30 * time.Second,
			Breaker: BreakerConfig{
				MinRequests:  5,
				FailureRatio: 0.6,
				OpenTimeout:  30 * time.Second,
			},
		},
		Batch: BatchConfig{
			Workers:  4,
			Interval: 200 * time.Millisecond,
			Burst:    1,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			RequestsPerMinute: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks value ranges that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Resolve.Threshold <= 0 || c.Resolve.Threshold >= 1 {
		return fmt.Errorf("resolve.threshold must be in (0,1), got %v", c.Resolve.Threshold)
	}

	p := c.Pairing
	if p.RuleWeight < 0 || p.SemanticWeight < 0 {
		return fmt.Errorf("pairing weights must be non-negative")
	}
	if math.Abs(p.RuleWeight+p.SemanticWeight-1) > 1e-9 {
		return fmt.Errorf("pairing.rule_weight + pairing.semantic_weight must equal 1, got %v", p.RuleWeight+p.SemanticWeight)
	}
	if p.SemanticWeight < p.RuleWeight {
		return fmt.Errorf("pairing.semantic_weight (%v) must not be lower than pairing.rule_weight (%v)", p.SemanticWeight, p.RuleWeight)
	}
	if p.MaxLimit < 1 {
		return fmt.Errorf("pairing.max_limit must be at least 1")
	}
	if p.DefaultLimit < 1 || p.DefaultLimit > p.MaxLimit {
		return fmt.Errorf("pairing.default_limit must be in [1,%d], got %d", p.MaxLimit, p.DefaultLimit)
	}
	if p.MaxDishLength < 1 {
		return fmt.Errorf("pairing.max_dish_length must be at least 1")
	}
	if p.Workers < 1 {
		return fmt.Errorf("pairing.workers must be at least 1")
	}

	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1")
	}
	if c.Batch.Interval < 0 {
		return fmt.Errorf("batch.interval must not be negative")
	}
	if c.Embedding.Enabled && c.Embedding.Dimension < 1 {
		return fmt.Errorf("embedding.dimension must be at least 1")
	}
	return nil
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for cellar.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "cellar.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".cellar", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CatalogDBPath returns the path to the catalog database.
func CatalogDBPath(dir string) string {
	return filepath.Join(dir, ".cellar", "catalog.db")
}

// EnsureCellarDir ensures the .cellar directory exists.
func EnsureCellarDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".cellar"), 0755)
}
