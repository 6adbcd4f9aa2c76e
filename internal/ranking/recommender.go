package ranking

import (
	"signal-lab/internal/domain"
	"signal-lab/internal/strategy"
)

// Recommender rescans the latest window of every series.
type Recommender struct {
	library    strategy.Library
	matcher    Matcher
	windowSize int
	top        []string
}

// NewRecommender creates a recommender matching against top.
// A nil matcher selects ContainsMatcher.
func NewRecommender(library strategy.Library, matcher Matcher, windowSize int, top []string) *Recommender {
	if matcher == nil {
		matcher = ContainsMatcher{}
	}
	return &Recommender{
		library:    library,
		matcher:    matcher,
		windowSize: windowSize,
		top:        append([]string(nil), top...),
	}
}

// Recommend fires the library on the final window of each series with at
// least windowSize samples and keeps the names matching a top-ranked name.
// A fired name is promoted when it matches any top name, and yields exactly
// one recommendation attributed to the first top name it matches: a fired
// "rising 12" against top {"rising 1", "rising", "rising 12"} is listed once,
// not once per matching top name. Output follows series order, then library
// order.
func (r *Recommender) Recommend(series []domain.PriceSeries) []domain.Recommendation {
	if len(r.top) == 0 {
		return nil
	}

	var recs []domain.Recommendation
	for _, s := range series {
		n := len(s.Samples)
		if n < r.windowSize || r.windowSize < 1 {
			continue
		}
		for _, fired := range r.library.Fire(s.Samples[n-r.windowSize : n : n]) {
			if top, ok := r.match(fired); ok {
				recs = append(recs, domain.Recommendation{
					Pair:         s.Pair,
					StrategyName: fired,
					MatchedBy:    top,
				})
			}
		}
	}
	return recs
}

// Top returns the names matched against.
func (r *Recommender) Top() []string {
	return append([]string(nil), r.top...)
}

func (r *Recommender) match(fired string) (string, bool) {
	for _, top := range r.top {
		if r.matcher.Match(fired, top) {
			return top, true
		}
	}
	return "", false
}
