package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-lab/internal/domain"
	"signal-lab/internal/observability"
	"signal-lab/internal/storage"
	"signal-lab/internal/storage/memory"
)

var (
	btcUSD = domain.Pair{From: "BTC", To: "USD"}
	ethBTC = domain.Pair{From: "ETH", To: "BTC"}
)

// fakeSource serves fixed prices ending at lastMs for every pair.
type fakeSource struct {
	mu     sync.Mutex
	prices map[domain.Pair][]float64
	lastMs int64
	err    map[domain.Pair]error
	hours  []int
}

func (f *fakeSource) FetchHourly(_ context.Context, pair domain.Pair, hours int) ([]*domain.PriceSample, error) {
	f.mu.Lock()
	f.hours = append(f.hours, hours)
	f.mu.Unlock()

	if err := f.err[pair]; err != nil {
		return nil, err
	}
	prices := f.prices[pair]
	out := make([]*domain.PriceSample, len(prices))
	for i, p := range prices {
		out[i] = &domain.PriceSample{
			Pair:        pair,
			TimestampMs: f.lastMs - int64(len(prices)-1-i)*domain.SampleIntervalMs,
			Price:       p,
		}
	}
	return out, nil
}

func newBackfiller(src HourlySource, prices storage.PriceSampleStore, pairs storage.PairStore, m *observability.Metrics) *Backfiller {
	return NewBackfiller(BackfillOptions{
		Source:     src,
		PriceStore: prices,
		PairStore:  pairs,
		Hours:      2000,
		Workers:    2,
		Logger:     zerolog.Nop(),
		Metrics:    m,
	})
}

func TestBackfill_StoresSeriesInPairOrder(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{
		prices: map[domain.Pair][]float64{
			btcUSD: {1, 2, 3},
			ethBTC: {0.05, 0.06},
		},
		lastMs: 10 * domain.SampleIntervalMs,
	}
	prices := memory.NewPriceSampleStore()
	pairs := memory.NewPairStore()
	m := observability.NewMetrics("test", prometheus.NewRegistry())

	res, err := newBackfiller(src, prices, pairs, m).Backfill(ctx, []domain.Pair{ethBTC, btcUSD})
	require.NoError(t, err)

	assert.Equal(t, 2, res.PairsRegistered)
	assert.Equal(t, 5, res.SamplesFetched)
	assert.Equal(t, 5, res.SamplesIngested)
	assert.Equal(t, 0, res.DuplicatesSkipped)
	require.Len(t, res.Series, 2)
	assert.Equal(t, ethBTC, res.Series[0].Pair)
	assert.Equal(t, []float64{1, 2, 3}, res.Series[1].Samples)
	assert.Equal(t, []int{2000, 2000}, src.hours)

	registered, err := pairs.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Pair{ethBTC, btcUSD}, registered)

	stored, err := prices.GetByPair(ctx, btcUSD)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, 10*domain.SampleIntervalMs, stored[2].TimestampMs)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.SamplesIngested))
}

func TestBackfill_SkipsStoredSamples(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{
		prices: map[domain.Pair][]float64{btcUSD: {1, 2, 3}},
		lastMs: 10 * domain.SampleIntervalMs,
	}
	prices := memory.NewPriceSampleStore()
	pairs := memory.NewPairStore()
	b := newBackfiller(src, prices, pairs, nil)

	_, err := b.Backfill(ctx, []domain.Pair{btcUSD})
	require.NoError(t, err)

	// one hour later: two overlapping samples and one new
	src.prices[btcUSD] = []float64{2, 3, 4}
	src.lastMs = 11 * domain.SampleIntervalMs

	res, err := b.Backfill(ctx, []domain.Pair{btcUSD})
	require.NoError(t, err)
	assert.Equal(t, 0, res.PairsRegistered)
	assert.Equal(t, 1, res.SamplesIngested)
	assert.Equal(t, 2, res.DuplicatesSkipped)

	stored, err := prices.GetByPair(ctx, btcUSD)
	require.NoError(t, err)
	got := domain.SeriesFromSamples(btcUSD, stored)
	assert.Equal(t, []float64{1, 2, 3, 4}, got.Samples)
}

func TestBackfill_WithoutStores(t *testing.T) {
	src := &fakeSource{prices: map[domain.Pair][]float64{btcUSD: {1, 2}}}

	res, err := newBackfiller(src, nil, nil, nil).Backfill(context.Background(), []domain.Pair{btcUSD})
	require.NoError(t, err)
	assert.Equal(t, 2, res.SamplesFetched)
	assert.Equal(t, 0, res.SamplesIngested)
	assert.Equal(t, []float64{1, 2}, res.Series[0].Samples)
}

func TestBackfill_FetchErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	src := &fakeSource{
		prices: map[domain.Pair][]float64{btcUSD: {1, 2}},
		err:    map[domain.Pair]error{ethBTC: boom},
	}
	prices := memory.NewPriceSampleStore()
	pairs := memory.NewPairStore()

	_, err := newBackfiller(src, prices, pairs, nil).Backfill(ctx, []domain.Pair{btcUSD, ethBTC})
	require.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "ETH-BTC")

	registered, err := pairs.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, registered)
}

func TestBackfill_InvalidPair(t *testing.T) {
	src := &fakeSource{}
	_, err := newBackfiller(src, nil, nil, nil).Backfill(context.Background(), []domain.Pair{{From: "BTC"}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
	assert.Empty(t, src.hours)
}
