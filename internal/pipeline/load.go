package pipeline

import (
	"context"
	"fmt"

	"signal-lab/internal/domain"
	"signal-lab/internal/storage"
)

// LoadSeries builds one series per pair from storage.
// Pairs come from pairs in registration order; when pairs is nil, every pair
// with stored samples is loaded in label order. Pairs without samples yield
// empty series. The returned count is the number of tracked pairs.
func LoadSeries(ctx context.Context, pairs storage.PairStore, prices storage.PriceSampleStore) ([]domain.PriceSeries, int, error) {
	var tracked []domain.Pair
	var err error
	if pairs != nil {
		tracked, err = pairs.GetAll(ctx)
	} else {
		tracked, err = prices.ListPairs(ctx)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("list pairs: %w", err)
	}

	series := make([]domain.PriceSeries, 0, len(tracked))
	for _, p := range tracked {
		samples, err := prices.GetByPair(ctx, p)
		if err != nil {
			return nil, 0, fmt.Errorf("load prices for %s: %w", p.Label(), err)
		}
		series = append(series, domain.SeriesFromSamples(p, samples))
	}
	return series, len(tracked), nil
}
