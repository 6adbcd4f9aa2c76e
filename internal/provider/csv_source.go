package provider

import (
	"context"
	"fmt"

	"signal-lab/internal/domain"
	"signal-lab/internal/storage"
)

// CSVSource serves hourly history from series read with ReadPriceCSV.
// The last sample of every series is stamped lastTimestampMs.
type CSVSource struct {
	series          map[domain.Pair]domain.PriceSeries
	pairs           []domain.Pair
	lastTimestampMs int64
}

// NewCSVSource indexes series by pair. Later duplicates replace earlier ones.
func NewCSVSource(series []domain.PriceSeries, lastTimestampMs int64) *CSVSource {
	src := &CSVSource{
		series:          make(map[domain.Pair]domain.PriceSeries, len(series)),
		lastTimestampMs: lastTimestampMs,
	}
	for _, s := range series {
		if _, ok := src.series[s.Pair]; !ok {
			src.pairs = append(src.pairs, s.Pair)
		}
		src.series[s.Pair] = s
	}
	return src
}

// FetchHourly returns the most recent hours samples of pair.
// hours <= 0 returns the whole series.
func (s *CSVSource) FetchHourly(_ context.Context, pair domain.Pair, hours int) ([]*domain.PriceSample, error) {
	series, ok := s.series[pair]
	if !ok {
		return nil, fmt.Errorf("%w: no prices for %s", storage.ErrNotFound, pair.Label())
	}
	if hours > 0 && len(series.Samples) > hours {
		series.Samples = series.Samples[len(series.Samples)-hours:]
	}
	return ToSamples(series, s.lastTimestampMs), nil
}

// Pairs returns the indexed pairs in first-seen order.
func (s *CSVSource) Pairs() []domain.Pair {
	return append([]domain.Pair(nil), s.pairs...)
}
