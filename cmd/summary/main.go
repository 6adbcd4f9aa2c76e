// Command summary reports how recorded positions performed per strategy and
// splits the returns into small and big cap buys.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"signal-lab/internal/config"
	"signal-lab/internal/domain"
	"signal-lab/internal/logging"
	"signal-lab/internal/observability"
	"signal-lab/internal/pipeline"
	"signal-lab/internal/portfolio"
	"signal-lab/internal/provider"
	"signal-lab/internal/storage/migrations"
	pgstore "signal-lab/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	source := flag.String("source", config.SourceCSV, "Position source: csv or db")
	buys := flag.String("buys", "", "Open positions CSV (overrides config)")
	sells := flag.String("sells", "", "Closed positions CSV (overrides config)")
	outputDir := flag.String("output-dir", "", "Report output directory (overrides config)")
	capThreshold := flag.Float64("cap-threshold", 0, "Buy price separating small and big cap (overrides config)")
	importCSV := flag.Bool("import", false, "Store the CSV positions in PostgreSQL before summarising")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *buys != "" {
		cfg.Portfolio.BuysCSV = *buys
	}
	if *sells != "" {
		cfg.Portfolio.SellsCSV = *sells
	}
	if *outputDir != "" {
		cfg.Data.OutputDir = *outputDir
	}
	if *capThreshold > 0 {
		cfg.Portfolio.CapThreshold = *capThreshold
	}

	logger := logging.Component(logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format), "summary")

	if *source != config.SourceCSV && *source != config.SourceDatabase {
		logger.Fatal().Str("source", *source).Msg("unknown position source")
	}
	if (*source == config.SourceDatabase || *importCSV) && cfg.Storage.PostgresDSN == "" {
		logger.Fatal().Msg("postgres_dsn required for db source or --import")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *source, *importCSV, logger); err != nil {
		logger.Error().Err(err).Msg("summary failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, source string, importCSV bool, logger zerolog.Logger) error {
	m := observability.NewMetrics("", nil)

	var positions []*domain.Position
	if source == config.SourceCSV || importCSV {
		var err error
		positions, err = readPositions(cfg.Portfolio.BuysCSV, cfg.Portfolio.SellsCSV)
		if err != nil {
			return err
		}
	}

	if source == config.SourceDatabase || importCSV {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return err
		}
		store := pgstore.NewPositionStore(pool)

		if importCSV {
			start := time.Now()
			err := store.InsertBulk(ctx, positions)
			m.RecordDBQuery("postgres", "insert_positions", time.Since(start).Seconds(), err)
			if err != nil {
				return fmt.Errorf("import positions: %w", err)
			}
			logger.Info().Int("positions", len(positions)).Msg("positions imported")
		}
		if source == config.SourceDatabase {
			start := time.Now()
			positions, err = store.GetAll(ctx)
			m.RecordDBQuery("postgres", "get_positions", time.Since(start).Seconds(), err)
			if err != nil {
				return fmt.Errorf("load positions: %w", err)
			}
		}
	}

	sum := portfolio.Summarize(positions)
	small, big := portfolio.SplitByCap(positions, cfg.Portfolio.CapThreshold)
	report := portfolio.Report(sum, small, big, portfolio.CountPairs(positions), time.Now().UTC())

	paths, err := pipeline.WritePortfolioReports(cfg.Data.OutputDir, report)
	if err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	m.RecordReport()

	logger.Info().
		Int("open", sum.Open).
		Int("closed", sum.Closed).
		Int("strategies", len(sum.Strategies)).
		Float64("return_pct", sum.TotalReturnPct()).
		Strs("files", paths).
		Msg("summary complete")
	return nil
}

// readPositions reads open positions from buys and closed ones from sells.
// A missing file contributes no positions.
func readPositions(buys, sells string) ([]*domain.Position, error) {
	var all []*domain.Position
	for _, in := range []struct {
		path   string
		closed bool
	}{{buys, false}, {sells, true}} {
		f, err := os.Open(in.path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		positions, err := provider.ReadPositionCSV(f, in.closed)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.path, err)
		}
		all = append(all, positions...)
	}
	return all, nil
}
