// Command ingest backfills hourly price history from CryptoCompare (or an
// existing prices CSV) into ClickHouse, registers the pairs in PostgreSQL and
// optionally writes the fetched series as a prices CSV.
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
	"signal-lab/internal/ingestion"
	"signal-lab/internal/logging"
	"signal-lab/internal/observability"
	"signal-lab/internal/provider"
	chstore "signal-lab/internal/storage/clickhouse"
	"signal-lab/internal/storage/migrations"
	pgstore "signal-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	pairsFlag := flag.String("pairs", "", "Comma-separated pairs FROM-TO (overrides config)")
	hours := flag.Int("hours", 0, "Hours of history per pair (overrides config)")
	csvOut := flag.String("csv-out", "", "Also write fetched series to this prices CSV")
	fromCSV := flag.String("from-csv", "", "Import this prices CSV instead of calling CryptoCompare")
	noDB := flag.Bool("no-db", false, "Skip database storage even when DSNs are configured")
	migrate := flag.Bool("migrate", true, "Apply embedded migrations before ingesting")
	workers := flag.Int("workers", 4, "Concurrent pair fetches")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *pairsFlag != "" {
		cfg.Data.Pairs = strings.Split(*pairsFlag, ",")
	}
	if *hours > 0 {
		cfg.Provider.HistoryHours = *hours
	}
	if *metricsAddr != "" {
		cfg.Metrics.ListenAddr = *metricsAddr
	}
	if *noDB {
		cfg.Storage.PostgresDSN = ""
		cfg.Storage.ClickhouseDSN = ""
	}

	logger := logging.Component(logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format), "ingest")

	if cfg.Storage.ClickhouseDSN == "" && *csvOut == "" {
		logger.Fatal().Msg("nothing to do: configure clickhouse_dsn or pass --csv-out")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := ingestOptions{
		fromCSV: *fromCSV,
		csvOut:  *csvOut,
		migrate: *migrate,
		workers: *workers,
	}
	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Error().Err(err).Msg("ingest failed")
		os.Exit(1)
	}
}

type ingestOptions struct {
	fromCSV string
	csvOut  string
	migrate bool
	workers int
}

func run(ctx context.Context, cfg *config.Config, opts ingestOptions, logger zerolog.Logger) error {
	m := observability.NewMetrics("", nil)
	if cfg.Metrics.ListenAddr != "" {
		go observability.Serve(ctx, cfg.Metrics.ListenAddr, logger)
	}

	source, pairs, err := newSource(cfg, opts.fromCSV, logger, m)
	if err != nil {
		return err
	}

	bfOpts := ingestion.BackfillOptions{
		Source:  source,
		Hours:   cfg.Provider.HistoryHours,
		Workers: opts.workers,
		Logger:  logger,
		Metrics: m,
	}

	if cfg.Storage.ClickhouseDSN != "" {
		if opts.migrate {
			if err := chstore.EnsureDatabase(ctx, cfg.Storage.ClickhouseDSN); err != nil {
				return err
			}
		}
		conn, err := chstore.NewConn(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return err
		}
		defer conn.Close()
		if opts.migrate {
			if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
				return err
			}
		}
		bfOpts.PriceStore = chstore.NewPriceSampleStore(conn)
	}

	if cfg.Storage.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		if opts.migrate {
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				return err
			}
		}
		bfOpts.PairStore = pgstore.NewPairStore(pool)
	}

	logger.Info().
		Int("pairs", len(pairs)).
		Int("hours", cfg.Provider.HistoryHours).
		Msg("starting backfill")

	res, err := ingestion.NewBackfiller(bfOpts).Backfill(ctx, pairs)
	if err != nil {
		return err
	}

	if opts.csvOut != "" {
		if err := writeCSV(opts.csvOut, res.Series); err != nil {
			return err
		}
		logger.Info().Str("path", opts.csvOut).Msg("prices written")
	}

	logger.Info().
		Int("registered", res.PairsRegistered).
		Int("fetched", res.SamplesFetched).
		Int("ingested", res.SamplesIngested).
		Int("skipped", res.DuplicatesSkipped).
		Dur("elapsed", res.Duration.Round(time.Millisecond)).
		Msg("backfill complete")
	return nil
}

// newSource returns the history source and the pairs to backfill. Configured
// pairs win; a CSV import falls back to every pair in the file.
func newSource(cfg *config.Config, fromCSV string, logger zerolog.Logger, m *observability.Metrics) (ingestion.HourlySource, []domain.Pair, error) {
	if fromCSV == "" {
		pairs, err := parsePairs(cfg.Data.Pairs)
		if err != nil {
			return nil, nil, err
		}
		client := provider.NewCryptoCompareClient(provider.ClientOptions{
			BaseURL:        cfg.Provider.BaseURL,
			APIKey:         cfg.Provider.APIKey,
			Timeout:        cfg.Provider.Timeout,
			RequestsPerSec: cfg.Provider.RequestsPerSec,
			MaxRetries:     uint64(cfg.Provider.MaxRetries),
			Logger:         logger,
			Metrics:        m,
		})
		return client, pairs, nil
	}

	f, err := os.Open(fromCSV)
	if err != nil {
		return nil, nil, fmt.Errorf("open prices: %w", err)
	}
	defer f.Close()
	series, err := provider.ReadPriceCSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read prices: %w", err)
	}

	// the last sample of each series is taken as the current hour
	lastHour := time.Now().UTC().Truncate(time.Hour).UnixMilli()
	src := provider.NewCSVSource(series, lastHour)

	if len(cfg.Data.Pairs) == 0 {
		return src, src.Pairs(), nil
	}
	pairs, err := parsePairs(cfg.Data.Pairs)
	if err != nil {
		return nil, nil, err
	}
	return src, pairs, nil
}

func parsePairs(labels []string) ([]domain.Pair, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("no pairs configured")
	}
	pairs := make([]domain.Pair, 0, len(labels))
	for _, l := range labels {
		p, ok := domain.ParsePair(strings.TrimSpace(l))
		if !ok {
			return nil, fmt.Errorf("bad pair %q, want FROM-TO", l)
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func writeCSV(path string, series []domain.PriceSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := provider.WritePriceCSV(f, series); err != nil {
		f.Close()
		return fmt.Errorf("write prices: %w", err)
	}
	return f.Close()
}
