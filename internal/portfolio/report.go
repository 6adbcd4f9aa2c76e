package portfolio

import (
	"time"

	"signal-lab/internal/reporting"
)

// Report converts a summary and cap split into a reporting.PortfolioReport.
func Report(sum Summary, small, big []CapSummary, pairs int, at time.Time) *reporting.PortfolioReport {
	r := &reporting.PortfolioReport{
		GeneratedAt: at,
		Pairs:       pairs,
		Open:        sum.Open,
		Closed:      sum.Closed,
		TotalReturn: sum.TotalReturnPct(),
	}
	r.TotalIn, _ = sum.TotalIn.Float64()
	r.TotalOut, _ = sum.TotalOut.Float64()

	for _, s := range sum.Strategies {
		in, _ := s.In.Float64()
		out, _ := s.Out.Float64()
		r.Rows = append(r.Rows, reporting.PortfolioRow{
			Strategy:      s.Strategy,
			In:            in,
			Out:           out,
			DurationHours: s.DurationHours,
			ReturnPct:     s.ReturnPct(),
		})
	}
	r.SmallCap = capRows(small)
	r.BigCap = capRows(big)
	return r
}

func capRows(in []CapSummary) []reporting.CapRow {
	rows := make([]reporting.CapRow, len(in))
	for i, c := range in {
		rows[i] = reporting.CapRow{Strategy: c.Strategy, Positions: c.Positions, ReturnPct: c.ReturnPct}
	}
	return rows
}
