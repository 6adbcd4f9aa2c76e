package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-lab/internal/domain"
	"signal-lab/internal/strategy"
)

var (
	btcUSD = domain.Pair{From: "BTC", To: "USD"}
	ethBTC = domain.Pair{From: "ETH", To: "BTC"}
)

func fixed(names ...string) strategy.Library {
	return strategy.LibraryFunc(func([]float64) []string { return names })
}

func series(pair domain.Pair, n int) domain.PriceSeries {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = float64(i + 1)
	}
	return domain.PriceSeries{Pair: pair, Samples: samples}
}

func TestRecommender_ContainmentMatch(t *testing.T) {
	rec := NewRecommender(fixed("rising 3", "flat 1", "dip 5"), nil, 24, []string{"rising", "dip 5"})

	got := rec.Recommend([]domain.PriceSeries{series(btcUSD, 30)})
	assert.Equal(t, []domain.Recommendation{
		{Pair: btcUSD, StrategyName: "rising 3", MatchedBy: "rising"},
		{Pair: btcUSD, StrategyName: "dip 5", MatchedBy: "dip 5"},
	}, got)
}

func TestRecommender_ContainmentIsOneWay(t *testing.T) {
	rec := NewRecommender(fixed("rising"), ContainsMatcher{}, 24, []string{"rising 3"})
	assert.Empty(t, rec.Recommend([]domain.PriceSeries{series(btcUSD, 24)}))
}

func TestRecommender_OneRecommendationPerFiredName(t *testing.T) {
	rec := NewRecommender(fixed("rising 12"), nil, 24, []string{"rising 1", "rising", "rising 12"})

	got := rec.Recommend([]domain.PriceSeries{series(btcUSD, 24)})
	require.Len(t, got, 1)
	assert.Equal(t, "rising 1", got[0].MatchedBy)
}

func TestRecommender_UsesFinalWindow(t *testing.T) {
	var seen [][]float64
	lib := strategy.LibraryFunc(func(w []float64) []string {
		seen = append(seen, append([]float64(nil), w...))
		return []string{"A"}
	})
	rec := NewRecommender(lib, nil, 24, []string{"A"})

	rec.Recommend([]domain.PriceSeries{series(btcUSD, 100)})

	require.Len(t, seen, 1)
	require.Len(t, seen[0], 24)
	assert.Equal(t, 77.0, seen[0][0])
	assert.Equal(t, 100.0, seen[0][23])
}

func TestRecommender_SkipsShortSeriesAndKeepsOrder(t *testing.T) {
	rec := NewRecommender(fixed("A", "B"), nil, 24, []string{"B", "A"})

	got := rec.Recommend([]domain.PriceSeries{
		series(ethBTC, 30),
		series(domain.Pair{From: "XRP", To: "USD"}, 23),
		series(btcUSD, 24),
	})

	assert.Equal(t, []domain.Recommendation{
		{Pair: ethBTC, StrategyName: "A", MatchedBy: "A"},
		{Pair: ethBTC, StrategyName: "B", MatchedBy: "B"},
		{Pair: btcUSD, StrategyName: "A", MatchedBy: "A"},
		{Pair: btcUSD, StrategyName: "B", MatchedBy: "B"},
	}, got)
}

func TestRecommender_EmptyTop(t *testing.T) {
	rec := NewRecommender(fixed("A"), nil, 24, nil)
	assert.Empty(t, rec.Recommend([]domain.PriceSeries{series(btcUSD, 50)}))
}

func TestRecommender_EqualMatcher(t *testing.T) {
	rec := NewRecommender(fixed("rising 3", "rising"), EqualMatcher{}, 24, []string{"rising"})

	got := rec.Recommend([]domain.PriceSeries{series(btcUSD, 24)})
	require.Len(t, got, 1)
	assert.Equal(t, "rising", got[0].StrategyName)
}
