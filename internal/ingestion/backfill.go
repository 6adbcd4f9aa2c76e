// Package ingestion backfills hourly price history into storage.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"signal-lab/internal/domain"
	"signal-lab/internal/observability"
	"signal-lab/internal/storage"
)

// HourlySource fetches the most recent hours of hourly prices for a pair.
type HourlySource interface {
	FetchHourly(ctx context.Context, pair domain.Pair, hours int) ([]*domain.PriceSample, error)
}

// Backfiller fetches price history for a set of pairs and stores it.
type Backfiller struct {
	source     HourlySource
	priceStore storage.PriceSampleStore
	pairStore  storage.PairStore
	hours      int
	workers    int
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// BackfillOptions contains configuration for creating a Backfiller.
type BackfillOptions struct {
	Source     HourlySource
	PriceStore storage.PriceSampleStore // nil skips sample storage
	PairStore  storage.PairStore        // nil skips pair registration
	Hours      int
	Workers    int
	Logger     zerolog.Logger
	Metrics    *observability.Metrics
}

// NewBackfiller creates a new price history backfiller.
func NewBackfiller(opts BackfillOptions) *Backfiller {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	return &Backfiller{
		source:     opts.Source,
		priceStore: opts.PriceStore,
		pairStore:  opts.PairStore,
		hours:      opts.Hours,
		workers:    workers,
		logger:     opts.Logger.With().Str("component", "backfiller").Logger(),
		metrics:    opts.Metrics,
	}
}

// BackfillResult contains statistics from a backfill operation.
type BackfillResult struct {
	Series            []domain.PriceSeries // fetched series in pair order
	PairsRegistered   int
	SamplesFetched    int
	SamplesIngested   int
	DuplicatesSkipped int
	Duration          time.Duration
}

// Backfill fetches every pair concurrently, then registers and stores them
// in pair order. A fetch failure aborts the run before anything is written.
func (b *Backfiller) Backfill(ctx context.Context, pairs []domain.Pair) (*BackfillResult, error) {
	start := time.Now()

	for _, p := range pairs {
		if !p.IsValid() {
			return nil, fmt.Errorf("%w: pair %q", storage.ErrInvalidInput, p.Label())
		}
	}

	fetched := make([][]*domain.PriceSample, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, p := range pairs {
		g.Go(func() error {
			samples, err := b.source.FetchHourly(gctx, p, b.hours)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", p.Label(), err)
			}
			fetched[i] = samples
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &BackfillResult{Series: make([]domain.PriceSeries, 0, len(pairs))}
	for i, p := range pairs {
		samples := fetched[i]
		result.SamplesFetched += len(samples)
		result.Series = append(result.Series, domain.SeriesFromSamples(p, samples))

		registered, err := b.register(ctx, p)
		if err != nil {
			return nil, err
		}
		if registered {
			result.PairsRegistered++
		}

		ingested, skipped, err := b.store(ctx, p, samples)
		if err != nil {
			return nil, err
		}
		result.SamplesIngested += ingested
		result.DuplicatesSkipped += skipped

		b.logger.Info().
			Str("pair", p.Label()).
			Int("fetched", len(samples)).
			Int("ingested", ingested).
			Int("skipped", skipped).
			Msg("pair backfilled")
	}

	b.metrics.RecordSamplesIngested(result.SamplesIngested)
	result.Duration = time.Since(start)
	return result, nil
}

// register adds p to the pair registry. Already tracked pairs are not an error.
func (b *Backfiller) register(ctx context.Context, p domain.Pair) (bool, error) {
	if b.pairStore == nil {
		return false, nil
	}
	err := b.pairStore.Insert(ctx, p)
	if errors.Is(err, storage.ErrDuplicateKey) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("register %s: %w", p.Label(), err)
	}
	return true, nil
}

// store inserts the samples not already stored for p.
func (b *Backfiller) store(ctx context.Context, p domain.Pair, samples []*domain.PriceSample) (int, int, error) {
	if b.priceStore == nil || len(samples) == 0 {
		return 0, 0, nil
	}

	existing, err := b.priceStore.GetByPair(ctx, p)
	if err != nil {
		return 0, 0, fmt.Errorf("load stored prices for %s: %w", p.Label(), err)
	}
	seen := make(map[int64]struct{}, len(existing)+len(samples))
	for _, s := range existing {
		seen[s.TimestampMs] = struct{}{}
	}

	fresh := make([]*domain.PriceSample, 0, len(samples))
	for _, s := range samples {
		if _, dup := seen[s.TimestampMs]; dup {
			continue
		}
		seen[s.TimestampMs] = struct{}{}
		fresh = append(fresh, s)
	}

	if len(fresh) > 0 {
		if err := b.priceStore.InsertBulk(ctx, fresh); err != nil {
			return 0, 0, fmt.Errorf("store prices for %s: %w", p.Label(), err)
		}
	}
	return len(fresh), len(samples) - len(fresh), nil
}
