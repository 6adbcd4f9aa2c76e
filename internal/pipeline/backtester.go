// Package pipeline runs a full backtest: historical pass, ranking, rescan
// of the current windows and report output.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"signal-lab/internal/backtest"
	"signal-lab/internal/domain"
	"signal-lab/internal/metrics"
	"signal-lab/internal/observability"
	"signal-lab/internal/ranking"
	"signal-lab/internal/reporting"
	"signal-lab/internal/strategy"
)

// Result is the output of one backtest run.
type Result struct {
	Summary         domain.RunSummary
	Records         []*domain.OutcomeRecord // first-seen order
	Ranking         []domain.RankingRow     // hit rate descending
	Top             []string
	Recommendations []domain.Recommendation
}

// Report converts the result into a reporting.Report.
func (r *Result) Report(at time.Time, topN int) *reporting.Report {
	return &reporting.Report{
		GeneratedAt:     at,
		Summary:         r.Summary,
		Ranking:         r.Ranking,
		TopN:            topN,
		Recommendations: r.Recommendations,
	}
}

// Backtester orchestrates the engine, aggregator, ranker and recommender.
type Backtester struct {
	cfg     backtest.Config
	library strategy.Library
	topN    int
	matcher ranking.Matcher
	workers int
	logger  zerolog.Logger
	metrics *observability.Metrics
	clock   func() time.Time
}

// NewBacktester creates a sequential backtester with the default top-N and
// containment matching.
func NewBacktester(cfg backtest.Config, library strategy.Library) *Backtester {
	return &Backtester{
		cfg:     cfg,
		library: library,
		topN:    ranking.DefaultTopN,
		matcher: ranking.ContainsMatcher{},
		workers: 1,
		logger:  zerolog.Nop(),
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// WithTopN sets how many ranked strategies are matched against current windows.
func (b *Backtester) WithTopN(n int) *Backtester {
	b.topN = n
	return b
}

// WithMatcher sets the fired/top name matcher.
func (b *Backtester) WithMatcher(m ranking.Matcher) *Backtester {
	if m != nil {
		b.matcher = m
	}
	return b
}

// WithWorkers enables per-series parallel evaluation. The library must be
// safe for concurrent use when n > 1.
func (b *Backtester) WithWorkers(n int) *Backtester {
	if n < 1 {
		n = 1
	}
	b.workers = n
	return b
}

// WithLogger sets the logger.
func (b *Backtester) WithLogger(logger zerolog.Logger) *Backtester {
	b.logger = logger.With().Str("component", "backtester").Logger()
	return b
}

// WithMetrics sets the Prometheus metrics sink.
func (b *Backtester) WithMetrics(m *observability.Metrics) *Backtester {
	b.metrics = m
	return b
}

// WithClock sets a custom clock function for deterministic output.
func (b *Backtester) WithClock(clock func() time.Time) *Backtester {
	b.clock = clock
	return b
}

// TopN returns the configured top-N.
func (b *Backtester) TopN() int {
	return b.topN
}

// Now returns the backtester clock's current time.
func (b *Backtester) Now() time.Time {
	return b.clock()
}

// Run evaluates series and returns ranking and recommendations.
// pairCount is the number of tracked pairs reported in the summary.
// Empty input yields an empty result, not an error.
func (b *Backtester) Run(ctx context.Context, series []domain.PriceSeries, pairCount int) (*Result, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	started := b.clock()

	result, err := b.run(ctx, series, pairCount)

	status := "success"
	if err != nil {
		status = "error"
	}
	finished := b.clock()
	b.metrics.RecordPipelineRun(status, finished.Sub(started).Seconds(), finished.Unix())
	return result, err
}

func (b *Backtester) run(ctx context.Context, series []domain.PriceSeries, pairCount int) (*Result, error) {
	engine := backtest.NewEngine(b.cfg, b.library)
	agg := metrics.NewAggregator()
	sink := &meteredSink{agg: agg, metrics: b.metrics}

	summary := domain.RunSummary{
		Pairs:            pairCount,
		Series:           len(series),
		WindowSize:       b.cfg.WindowSize,
		LookAheadHours:   b.cfg.LookAheadHours(),
		TargetPercentage: b.cfg.TargetPercentage,
	}

	b.logger.Info().
		Int("series", len(series)).
		Int("workers", b.workers).
		Int("window_size", b.cfg.WindowSize).
		Int("look_ahead", b.cfg.LookAhead).
		Msg("starting historical pass")

	var err error
	if b.workers > 1 {
		err = b.evaluateParallel(ctx, engine, series, sink, &summary)
	} else {
		err = b.evaluateSequential(ctx, engine, series, sink, &summary)
	}
	if err != nil {
		return nil, err
	}

	records := agg.Records()
	totals := metrics.ComputeTotals(records)
	summary.Strategies = totals.Strategies
	summary.Orders = totals.Orders
	summary.OverallHitRate = totals.HitRate

	rows := ranking.Rank(records)
	top := ranking.TopNames(rows, b.topN)

	recs := ranking.NewRecommender(b.library, b.matcher, b.cfg.WindowSize, top).Recommend(series)
	b.metrics.RecordRanking(len(rows), len(recs))

	b.logger.Info().
		Int("windows", summary.WindowsProcessed).
		Int("strategies", summary.Strategies).
		Int("orders", summary.Orders).
		Int("recommendations", len(recs)).
		Msg("backtest complete")

	return &Result{
		Summary:         summary,
		Records:         records,
		Ranking:         rows,
		Top:             top,
		Recommendations: recs,
	}, nil
}

func (b *Backtester) evaluateSequential(ctx context.Context, engine *backtest.Engine, series []domain.PriceSeries, sink *meteredSink, summary *domain.RunSummary) error {
	for _, s := range series {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("historical pass: %w", err)
		}
		windows := engine.Run(s, sink)
		b.recordSeries(s, windows, summary)
	}
	return nil
}

// evaluateParallel evaluates series concurrently and merges the buffered
// results in series order, so first-seen order matches a sequential run.
func (b *Backtester) evaluateParallel(ctx context.Context, engine *backtest.Engine, series []domain.PriceSeries, sink *meteredSink, summary *domain.RunSummary) error {
	results := make([]backtest.SeriesResult, len(series))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range series {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = engine.EvaluateSeries(series[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("historical pass: %w", err)
	}

	for i, res := range results {
		for _, e := range res.Emissions {
			sink.Add(e.StrategyName, e.Success)
		}
		b.recordSeries(series[i], res.Windows, summary)
	}
	return nil
}

func (b *Backtester) recordSeries(s domain.PriceSeries, windows int, summary *domain.RunSummary) {
	summary.WindowsProcessed += windows

	reason := ""
	switch {
	case s.IsEmpty():
		reason = observability.SkipEmpty
	case windows == 0:
		reason = observability.SkipShortHistory
	default:
		summary.SeriesWithData++
	}
	if reason != "" {
		b.logger.Debug().Str("pair", s.Pair.Label()).Int("samples", s.Len()).Str("reason", reason).Msg("series skipped")
	}
	b.metrics.RecordSeries(windows, reason)
}

// meteredSink forwards emissions to the aggregator and counts them.
type meteredSink struct {
	agg     *metrics.Aggregator
	metrics *observability.Metrics
}

func (s *meteredSink) Add(name string, success int) {
	s.agg.Add(name, success)
	s.metrics.RecordOutcome(success == domain.OutcomeSuccess)
}
