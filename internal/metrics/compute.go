package metrics

import "signal-lab/internal/domain"

// Totals summarises every outcome across all strategies.
type Totals struct {
	Strategies int
	Orders     int
	Successes  int
	HitRate    float64 // percent over all orders, 0 when there are none
}

// ComputeTotals sums records into Totals.
func ComputeTotals(records []*domain.OutcomeRecord) Totals {
	var t Totals
	for _, r := range records {
		t.Strategies++
		t.Orders += r.OrderCount()
		t.Successes += r.Successes()
	}
	if t.Orders > 0 {
		t.HitRate = 100.0 * float64(t.Successes) / float64(t.Orders)
	}
	return t
}
