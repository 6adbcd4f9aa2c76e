// Package config loads signal-lab configuration from YAML, an optional .env
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"signal-lab/internal/backtest"
	"signal-lab/internal/portfolio"
	"signal-lab/internal/provider"
	"signal-lab/internal/ranking"
)

// Data sources.
const (
	SourceCSV      = "csv"
	SourceDatabase = "db"
)

// Config is the top-level configuration.
type Config struct {
	Backtest  Backtest  `yaml:"backtest"`
	Data      Data      `yaml:"data"`
	Storage   Storage   `yaml:"storage"`
	Provider  Provider  `yaml:"provider"`
	Portfolio Portfolio `yaml:"portfolio"`
	Logging   Logging   `yaml:"logging"`
	Metrics   Metrics   `yaml:"metrics"`
}

// Backtest holds window and ranking parameters.
type Backtest struct {
	WindowSize       int      `yaml:"window_size"`
	LookAhead        int      `yaml:"look_ahead"`
	TargetPercentage float64  `yaml:"target_percentage"`
	TopN             int      `yaml:"top_n"`
	Matcher          string   `yaml:"matcher"`
	Workers          int      `yaml:"workers"`
	Strategies       []string `yaml:"strategies"` // strategy families, empty for all
}

// Data selects where price series come from and where reports go.
type Data struct {
	Source    string   `yaml:"source"` // csv | db
	PricesCSV string   `yaml:"prices_csv"`
	Pairs     []string `yaml:"pairs"` // FROM-TO, used by ingest
	OutputDir string   `yaml:"output_dir"`
}

// Storage holds database connection strings.
type Storage struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// Provider configures the CryptoCompare client.
type Provider struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	HistoryHours   int           `yaml:"history_hours"`
	RequestsPerSec int           `yaml:"requests_per_sec"`
	MaxRetries     int           `yaml:"max_retries"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Portfolio configures position summaries.
type Portfolio struct {
	BuysCSV      string  `yaml:"buys_csv"`
	SellsCSV     string  `yaml:"sells_csv"`
	CapThreshold float64 `yaml:"cap_threshold"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics configures the Prometheus listener. Empty address disables it.
type Metrics struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	bt := backtest.DefaultConfig()
	return &Config{
		Backtest: Backtest{
			WindowSize:       bt.WindowSize,
			LookAhead:        bt.LookAhead,
			TargetPercentage: bt.TargetPercentage,
			TopN:             ranking.DefaultTopN,
			Matcher:          ranking.MatchContains,
			Workers:          1,
		},
		Data: Data{
			Source:    SourceCSV,
			PricesCSV: "prices.csv",
			OutputDir: "out",
		},
		Provider: Provider{
			HistoryHours:   provider.MaxHistoryHours,
			RequestsPerSec: 5,
			MaxRetries:     5,
			Timeout:        30 * time.Second,
		},
		Portfolio: Portfolio{
			BuysCSV:      "buys.csv",
			SellsCSV:     "sells.csv",
			CapThreshold: portfolio.DefaultCapThreshold,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads an optional .env file, the YAML file at path (skipped when path
// is empty) and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv("CRYPTOCOMPARE_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SIGNAL_LAB_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SIGNAL_LAB_DATA_SOURCE"); v != "" {
		cfg.Data.Source = v
	}
	if v := os.Getenv("SIGNAL_LAB_PRICES_CSV"); v != "" {
		cfg.Data.PricesCSV = v
	}
	if v := os.Getenv("SIGNAL_LAB_OUTPUT_DIR"); v != "" {
		cfg.Data.OutputDir = v
	}
	if v := os.Getenv("SIGNAL_LAB_PAIRS"); v != "" {
		cfg.Data.Pairs = splitList(v)
	}
	if v := os.Getenv("SIGNAL_LAB_STRATEGIES"); v != "" {
		cfg.Backtest.Strategies = splitList(v)
	}
	if v := os.Getenv("SIGNAL_LAB_MATCHER"); v != "" {
		cfg.Backtest.Matcher = v
	}
	if v := os.Getenv("SIGNAL_LAB_METRICS_ADDR"); v != "" {
		cfg.Metrics.ListenAddr = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SIGNAL_LAB_WINDOW_SIZE", &cfg.Backtest.WindowSize},
		{"SIGNAL_LAB_LOOK_AHEAD", &cfg.Backtest.LookAhead},
		{"SIGNAL_LAB_TOP_N", &cfg.Backtest.TopN},
		{"SIGNAL_LAB_WORKERS", &cfg.Backtest.Workers},
		{"SIGNAL_LAB_HISTORY_HOURS", &cfg.Provider.HistoryHours},
	}
	for _, e := range ints {
		if err := envInt(e.key, e.dst); err != nil {
			return err
		}
	}

	if v := os.Getenv("SIGNAL_LAB_TARGET_PERCENTAGE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SIGNAL_LAB_TARGET_PERCENTAGE: %w", err)
		}
		cfg.Backtest.TargetPercentage = f
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// EngineConfig returns the backtest window parameters.
func (c *Config) EngineConfig() backtest.Config {
	return backtest.Config{
		WindowSize:       c.Backtest.WindowSize,
		LookAhead:        c.Backtest.LookAhead,
		TargetPercentage: c.Backtest.TargetPercentage,
	}
}

// Validate checks the configuration for the backtest command.
func (c *Config) Validate() error {
	if err := c.EngineConfig().Validate(); err != nil {
		return err
	}
	if c.Backtest.TopN < 0 {
		return fmt.Errorf("top_n must not be negative")
	}
	if c.Backtest.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if _, err := ranking.NewMatcher(c.Backtest.Matcher); err != nil {
		return err
	}
	switch c.Data.Source {
	case SourceCSV:
		if c.Data.PricesCSV == "" {
			return fmt.Errorf("prices_csv required for csv source")
		}
	case SourceDatabase:
		if c.Storage.ClickhouseDSN == "" {
			return fmt.Errorf("clickhouse_dsn required for db source")
		}
	default:
		return fmt.Errorf("unknown data source %q", c.Data.Source)
	}
	return nil
}
