// Command backtest evaluates the strategy library over hourly price series,
// ranks strategies by hit rate and reports which top strategies fire on the
// latest window of each pair.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"signal-lab/internal/config"
	"signal-lab/internal/domain"
	"signal-lab/internal/logging"
	"signal-lab/internal/observability"
	"signal-lab/internal/pipeline"
	"signal-lab/internal/provider"
	"signal-lab/internal/ranking"
	"signal-lab/internal/storage"
	chstore "signal-lab/internal/storage/clickhouse"
	pgstore "signal-lab/internal/storage/postgres"
	"signal-lab/internal/strategy"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	source := flag.String("source", "", "Price source: csv or db (overrides config)")
	pricesCSV := flag.String("prices", "", "Prices CSV file (overrides config)")
	outputDir := flag.String("output-dir", "", "Report output directory (overrides config)")
	workers := flag.Int("workers", 0, "Parallel series workers (overrides config)")
	topN := flag.Int("top-n", -1, "Number of top strategies (overrides config)")
	matcher := flag.String("matcher", "", "Name matcher: contains, equal, prefix (overrides config)")
	strategies := flag.String("strategies", "", "Comma-separated strategy families (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (overrides config)")
	listFamilies := flag.Bool("list-families", false, "Print strategy families and exit")
	flag.Parse()

	if *listFamilies {
		for _, f := range strategy.Families() {
			fmt.Println(f)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if *source != "" {
		cfg.Data.Source = *source
	}
	if *pricesCSV != "" {
		cfg.Data.PricesCSV = *pricesCSV
	}
	if *outputDir != "" {
		cfg.Data.OutputDir = *outputDir
	}
	if *workers > 0 {
		cfg.Backtest.Workers = *workers
	}
	if *topN >= 0 {
		cfg.Backtest.TopN = *topN
	}
	if *matcher != "" {
		cfg.Backtest.Matcher = *matcher
	}
	if *strategies != "" {
		cfg.Backtest.Strategies = strings.Split(*strategies, ",")
	}
	if *metricsAddr != "" {
		cfg.Metrics.ListenAddr = *metricsAddr
	}

	logger := logging.Component(logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format), "backtest")

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("backtest failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	m := observability.NewMetrics("", nil)
	if cfg.Metrics.ListenAddr != "" {
		go observability.Serve(ctx, cfg.Metrics.ListenAddr, logger)
	}

	library, err := strategy.FromFamilies(cfg.Backtest.Strategies)
	if err != nil {
		return err
	}
	nameMatcher, err := ranking.NewMatcher(cfg.Backtest.Matcher)
	if err != nil {
		return err
	}

	series, pairCount, err := loadSeries(ctx, cfg, logger, m)
	if err != nil {
		return err
	}
	logger.Info().
		Int("pairs", pairCount).
		Int("series", len(series)).
		Str("source", cfg.Data.Source).
		Msg("loaded price series")

	bt := pipeline.NewBacktester(cfg.EngineConfig(), library).
		WithTopN(cfg.Backtest.TopN).
		WithMatcher(nameMatcher).
		WithWorkers(cfg.Backtest.Workers).
		WithLogger(logger).
		WithMetrics(m)

	start := time.Now()
	result, err := bt.Run(ctx, series, pairCount)
	if err != nil {
		return err
	}

	paths, err := pipeline.WriteReports(cfg.Data.OutputDir, result.Report(bt.Now(), bt.TopN()))
	if err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	m.RecordReport()

	logger.Info().
		Int("windows", result.Summary.WindowsProcessed).
		Int("strategies", result.Summary.Strategies).
		Int("orders", result.Summary.Orders).
		Float64("hit_rate", result.Summary.OverallHitRate).
		Int("recommendations", len(result.Recommendations)).
		Strs("files", paths).
		Dur("elapsed", time.Since(start)).
		Msg("backtest complete")
	return nil
}

// loadSeries reads price series from the configured source.
func loadSeries(ctx context.Context, cfg *config.Config, logger zerolog.Logger, m *observability.Metrics) ([]domain.PriceSeries, int, error) {
	if cfg.Data.Source == config.SourceCSV {
		f, err := os.Open(cfg.Data.PricesCSV)
		if err != nil {
			return nil, 0, fmt.Errorf("open prices: %w", err)
		}
		defer f.Close()

		series, err := provider.ReadPriceCSV(f)
		if err != nil {
			return nil, 0, fmt.Errorf("read prices: %w", err)
		}
		return series, len(series), nil
	}

	conn, err := chstore.NewConn(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		return nil, 0, err
	}
	defer conn.Close()

	// Registered pairs keep their registration order; without postgres every
	// pair with stored samples is loaded.
	var pairs storage.PairStore
	if cfg.Storage.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, 0, err
		}
		defer pool.Close()
		pairs = pgstore.NewPairStore(pool)
	} else {
		logger.Warn().Msg("no postgres dsn, loading every stored pair")
	}

	start := time.Now()
	series, n, err := pipeline.LoadSeries(ctx, pairs, chstore.NewPriceSampleStore(conn))
	m.RecordDBQuery("clickhouse", "load_series", time.Since(start).Seconds(), err)
	return series, n, err
}
