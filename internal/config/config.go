package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the config file at the root of a books directory.
const FileName = "tally.yaml"

// Storage drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSnapshot = "snapshot"
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Business BusinessConfig        `yaml:"business"`
	Fiscal   FiscalConfig          `yaml:"fiscal"`
	Storage  StorageConfig         `yaml:"storage"`
	Cache    CacheConfig           `yaml:"cache,omitempty"`
	Server   ServerConfig          `yaml:"server"`
	Log      LogConfig             `yaml:"log"`
	Ratios   map[string]Thresholds `yaml:"ratios,omitempty"`
	Git      GitConfig             `yaml:"git"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name       string `yaml:"name"`
	EntityType string `yaml:"entity_type"`
}

// FiscalConfig defines the fiscal year and retained earnings carried in.
type FiscalConfig struct {
	YearStart               string `yaml:"year_start"` // "MM-DD" format, e.g. "01-01"
	RetainedEarningsOpening string `yaml:"retained_earnings_opening,omitempty"`
}

// StorageConfig selects where accounts and transactions are read from.
type StorageConfig struct {
	Driver       string `yaml:"driver"`
	DatabaseURL  string `yaml:"database_url,omitempty"`
	SnapshotPath string `yaml:"snapshot_path,omitempty"`
}

// CacheConfig enables the Redis report cache when RedisURL is set.
type CacheConfig struct {
	RedisURL string        `yaml:"redis_url,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allow_origins,omitempty"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// Thresholds overrides the band cut-offs of one ratio.
type Thresholds struct {
	Good    float64 `yaml:"good"`
	Warning float64 `yaml:"warning"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName, entityType string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: entityType,
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
		Storage: StorageConfig{
			Driver: DriverFile,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Tally",
			AuthorEmail: "books@tally.local",
		},
	}
}

// ApplyEnv overrides settings from environment variables. The TALLY_
// prefixed name wins over the generic one.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	first := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}

	if v, ok := first("TALLY_DATABASE_URL", "DATABASE_URL"); ok {
		c.Storage.DatabaseURL = v
	}
	if v, ok := first("TALLY_REDIS_URL", "REDIS_URL"); ok {
		c.Cache.RedisURL = v
	}
	if v, ok := first("TALLY_STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := first("TALLY_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := first("TALLY_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

// Validate checks values that cannot be fixed by defaults.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile:
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("storage driver %q needs database_url or DATABASE_URL", c.Storage.Driver)
		}
	case DriverSnapshot:
		if c.Storage.SnapshotPath == "" {
			return fmt.Errorf("storage driver %q needs snapshot_path", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if _, err := c.RetainedEarningsOpening(); err != nil {
		return err
	}
	return nil
}

// RetainedEarningsOpening parses the configured opening retained earnings.
// Unset means zero.
func (c *Config) RetainedEarningsOpening() (decimal.Decimal, error) {
	s := strings.TrimSpace(c.Fiscal.RetainedEarningsOpening)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing retained_earnings_opening %q: %w", s, err)
	}
	return d, nil
}
