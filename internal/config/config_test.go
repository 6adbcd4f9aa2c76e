package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-lab/internal/backtest"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signal-lab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, backtest.DefaultConfig(), cfg.EngineConfig())
	assert.Equal(t, 13, cfg.Backtest.TopN)
	assert.Equal(t, "contains", cfg.Backtest.Matcher)
	assert.Equal(t, 10.0, cfg.Portfolio.CapThreshold)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
backtest:
  window_size: 12
  look_ahead: 36
  target_percentage: 1.1
  top_n: 5
  matcher: prefix
  workers: 4
  strategies: [rising, dip]
data:
  source: db
  pairs: [BTC-USD, ETH-BTC]
  output_dir: /tmp/out
storage:
  clickhouse_dsn: clickhouse://localhost:9000/prices
provider:
  timeout: 5s
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, backtest.Config{WindowSize: 12, LookAhead: 36, TargetPercentage: 1.1}, cfg.EngineConfig())
	assert.Equal(t, 5, cfg.Backtest.TopN)
	assert.Equal(t, []string{"rising", "dip"}, cfg.Backtest.Strategies)
	assert.Equal(t, SourceDatabase, cfg.Data.Source)
	assert.Equal(t, []string{"BTC-USD", "ETH-BTC"}, cfg.Data.Pairs)
	assert.Equal(t, 5*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// unset keys keep their defaults
	assert.Equal(t, 5, cfg.Provider.RequestsPerSec)
	assert.Equal(t, "buys.csv", cfg.Portfolio.BuysCSV)

	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://u:p@localhost/db")
	t.Setenv("CLICKHOUSE_DSN", "clickhouse://localhost/prices")
	t.Setenv("CRYPTOCOMPARE_API_KEY", "key")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SIGNAL_LAB_TOP_N", "3")
	t.Setenv("SIGNAL_LAB_WORKERS", "8")
	t.Setenv("SIGNAL_LAB_TARGET_PERCENTAGE", "1.02")
	t.Setenv("SIGNAL_LAB_PAIRS", "BTC-USD, ETH-BTC ,")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@localhost/db", cfg.Storage.PostgresDSN)
	assert.Equal(t, "clickhouse://localhost/prices", cfg.Storage.ClickhouseDSN)
	assert.Equal(t, "key", cfg.Provider.APIKey)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Backtest.TopN)
	assert.Equal(t, 8, cfg.Backtest.Workers)
	assert.InDelta(t, 1.02, cfg.Backtest.TargetPercentage, 1e-12)
	assert.Equal(t, []string{"BTC-USD", "ETH-BTC"}, cfg.Data.Pairs)
}

func TestLoad_BadEnvInt(t *testing.T) {
	t.Setenv("SIGNAL_LAB_WINDOW_SIZE", "abc")
	_, err := Load("")
	assert.ErrorContains(t, err, "SIGNAL_LAB_WINDOW_SIZE")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "backtest: [not, a, map]"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad window", func(c *Config) { c.Backtest.LookAhead = c.Backtest.WindowSize }},
		{"negative top", func(c *Config) { c.Backtest.TopN = -1 }},
		{"no workers", func(c *Config) { c.Backtest.Workers = 0 }},
		{"bad matcher", func(c *Config) { c.Backtest.Matcher = "regex" }},
		{"unknown source", func(c *Config) { c.Data.Source = "ftp" }},
		{"db without dsn", func(c *Config) { c.Data.Source = SourceDatabase }},
		{"csv without file", func(c *Config) { c.Data.PricesCSV = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
