package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePair(t *testing.T) {
	tests := []struct {
		in   string
		want Pair
		ok   bool
	}{
		{"BTC-USD", Pair{From: "BTC", To: "USD"}, true},
		{"eth/btc", Pair{From: "ETH", To: "BTC"}, true},
		{"BTC", Pair{}, false},
		{"-USD", Pair{}, false},
		{"BTC-", Pair{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePair(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
				assert.Equal(t, tt.want.From+"-"+tt.want.To, got.Label())
			}
		})
	}
}

func TestOutcomeRecord_HitRate(t *testing.T) {
	r := &OutcomeRecord{StrategyName: "A", Outcomes: []int{1, 0, 1, 1}}

	assert.Equal(t, 3, r.Successes())
	assert.Equal(t, 4, r.OrderCount())
	assert.InDelta(t, 75.0, r.HitRate(), 1e-9)
	assert.Equal(t, RankingRow{StrategyName: "A", HitRate: 75.0, OrderCount: 4}, r.Row())

	empty := &OutcomeRecord{StrategyName: "B"}
	assert.Equal(t, 0.0, empty.HitRate())
}

func TestPosition_YieldAndDuration(t *testing.T) {
	p := &Position{BuyPrice: 50, SellPrice: 55, BuyTimeMs: 1000, SellTimeMs: 4000}
	assert.InDelta(t, 1.1, p.Yield(), 1e-9)
	assert.Equal(t, int64(3000), p.DurationMs())

	zero := &Position{BuyPrice: 0, SellPrice: 10, BuyTimeMs: 5, SellTimeMs: 1}
	assert.Equal(t, 0.0, zero.Yield())
	assert.Equal(t, int64(0), zero.DurationMs())
}

func TestSeriesFromSamples(t *testing.T) {
	pair := Pair{From: "BTC", To: "USD"}
	s := SeriesFromSamples(pair, []*PriceSample{
		{Pair: pair, TimestampMs: 0, Price: 1},
		{Pair: pair, TimestampMs: SampleIntervalMs, Price: 2},
	})

	assert.Equal(t, []float64{1, 2}, s.Samples)
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.IsEmpty())
}
