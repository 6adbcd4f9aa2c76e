package domain

import "math"

// RunSummary holds the counters printed above the strategy performance table.
type RunSummary struct {
	Pairs            int     // tracked pairs
	Series           int     // price series loaded
	SeriesWithData   int     // series contributing at least one window
	WindowSize       int     // hours per evaluation window
	LookAheadHours   int     // hours searched for the target
	TargetPercentage float64 // spot multiplier, e.g. 1.05
	WindowsProcessed int
	Strategies       int // distinct strategy names observed
	Orders           int // total outcomes recorded
	OverallHitRate   float64
}

// TargetProfitPct returns the required profit as a percentage, e.g. 5 for 1.05.
func (s RunSummary) TargetProfitPct() float64 {
	return math.Round((100.0*s.TargetPercentage-100.0)*1e6) / 1e6
}
