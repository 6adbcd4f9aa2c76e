package domain

// SampleIntervalMs is the spacing between consecutive price samples (one hour).
const SampleIntervalMs = int64(60 * 60 * 1000)

// PriceSample is a single hourly close for a pair.
// Corresponds to price_samples table in ClickHouse.
type PriceSample struct {
	Pair        Pair
	TimestampMs int64   // Unix timestamp in milliseconds
	Price       float64 // close price in quote currency
}

// PriceSeries is the ordered price history of one pair, oldest first.
// Samples are uniformly spaced by SampleIntervalMs and never mutated after load.
type PriceSeries struct {
	Pair    Pair
	Samples []float64
}

// Len returns the number of samples.
func (s PriceSeries) Len() int {
	return len(s.Samples)
}

// IsEmpty reports whether the series carries no samples.
func (s PriceSeries) IsEmpty() bool {
	return len(s.Samples) == 0
}

// SeriesFromSamples builds a PriceSeries from samples already sorted by timestamp.
func SeriesFromSamples(pair Pair, samples []*PriceSample) PriceSeries {
	prices := make([]float64, len(samples))
	for i, s := range samples {
		prices[i] = s.Price
	}
	return PriceSeries{Pair: pair, Samples: prices}
}
