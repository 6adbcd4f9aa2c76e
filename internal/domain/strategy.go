package domain

// Outcome values recorded per fired window.
const (
	OutcomeFailure = 0
	OutcomeSuccess = 1
)

// OutcomeRecord holds every outcome recorded for one strategy name,
// one entry per (series, window) in which the strategy fired.
type OutcomeRecord struct {
	StrategyName string
	Outcomes     []int // OutcomeSuccess | OutcomeFailure, in scan order
}

// Successes returns the number of successful outcomes.
func (r *OutcomeRecord) Successes() int {
	sum := 0
	for _, o := range r.Outcomes {
		sum += o
	}
	return sum
}

// OrderCount returns the number of recorded outcomes.
func (r *OutcomeRecord) OrderCount() int {
	return len(r.Outcomes)
}

// HitRate returns the success percentage in [0, 100].
// An empty record has a hit rate of 0.
func (r *OutcomeRecord) HitRate() float64 {
	if len(r.Outcomes) == 0 {
		return 0
	}
	return 100.0 * float64(r.Successes()) / float64(len(r.Outcomes))
}

// Row converts the record into a ranking row.
func (r *OutcomeRecord) Row() RankingRow {
	return RankingRow{
		StrategyName: r.StrategyName,
		HitRate:      r.HitRate(),
		OrderCount:   r.OrderCount(),
	}
}

// RankingRow is one line of the strategy performance table.
type RankingRow struct {
	StrategyName string
	HitRate      float64 // percent
	OrderCount   int
}

// Recommendation is a strategy firing on the latest window of a pair
// that matches one of the top-ranked strategies.
type Recommendation struct {
	Pair         Pair
	StrategyName string // name fired on the current window
	MatchedBy    string // top-ranked name it matched
}
