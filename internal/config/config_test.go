package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Test Biz", "retail")
	cfg.Fiscal.RetainedEarningsOpening = "1250.00"
	cfg.Storage = StorageConfig{Driver: DriverSnapshot, SnapshotPath: "export.json"}
	cfg.Cache = CacheConfig{RedisURL: "redis://localhost:6379/0", TTL: 90 * time.Second}
	cfg.Server.AllowOrigins = []string{"http://localhost:5173"}
	cfg.Ratios = map[string]Thresholds{"current_ratio": {Good: 2.5, Warning: 1.2}}

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Company", "small_business")

	assert.Equal(t, "My Company", cfg.Business.Name)
	assert.Equal(t, "small_business", cfg.Business.EntityType)
	assert.Equal(t, "01-01", cfg.Fiscal.YearStart)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Git.AutoCommit)
	assert.Empty(t, cfg.Ratios)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("business:\n  name: Corner Shop\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", cfg.Business.Name)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("business: [unclosed"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Test Biz", "retail")
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Test Biz")
	assert.Contains(t, contents, "entity_type: retail")
	assert.Contains(t, contents, "year_start: 01-01")
	assert.Contains(t, contents, "driver: file")
	assert.Contains(t, contents, "ttl: 5m0s")
	assert.Contains(t, contents, "auto_commit: true")
	assert.NotContains(t, contents, "ratios:")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DATABASE_URL":         "postgres://generic",
		"TALLY_DATABASE_URL":   "postgres://tally",
		"REDIS_URL":            "redis://generic",
		"TALLY_STORAGE_DRIVER": "POSTGRES",
		"TALLY_ADDR":           "127.0.0.1:9000",
		"TALLY_LOG_LEVEL":      "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default("x", "retail")
	cfg.ApplyEnv(lookup)

	assert.Equal(t, "postgres://tally", cfg.Storage.DatabaseURL)
	assert.Equal(t, "redis://generic", cfg.Cache.RedisURL)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level, "empty values are ignored")
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, "unknown storage driver"},
		{"postgres without url", func(c *Config) { c.Storage.Driver = DriverPostgres }, "database_url"},
		{"snapshot without path", func(c *Config) { c.Storage.Driver = DriverSnapshot }, "snapshot_path"},
		{"bad retained earnings", func(c *Config) { c.Fiscal.RetainedEarningsOpening = "lots" }, "retained_earnings_opening"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("x", "retail")
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestRetainedEarningsOpening(t *testing.T) {
	cfg := Default("x", "retail")
	got, err := cfg.RetainedEarningsOpening()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	cfg.Fiscal.RetainedEarningsOpening = " 1200.50 "
	got, err = cfg.RetainedEarningsOpening()
	require.NoError(t, err)
	assert.Equal(t, "1200.5", got.String())
}
