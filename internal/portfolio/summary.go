// Package portfolio summarises recorded buy/sell positions per strategy.
package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"signal-lab/internal/domain"
)

// DefaultCapThreshold separates small-cap from big-cap buys (quote currency).
const DefaultCapThreshold = 10.0

// stake is the notional amount put into every position.
var stake = decimal.NewFromInt(100)

// StrategySummary is the performance of one strategy.
type StrategySummary struct {
	Strategy      string
	Positions     int
	In            decimal.Decimal // stake per position
	Out           decimal.Decimal // stake * yield per position
	DurationHours float64         // mean holding time
}

// ReturnPct returns 100 * Out / In.
func (s StrategySummary) ReturnPct() float64 {
	return returnPct(s.In, s.Out)
}

// Summary is the per-strategy and overall performance of a set of positions.
type Summary struct {
	Strategies []StrategySummary // sorted by strategy name
	Open       int
	Closed     int
	TotalIn    decimal.Decimal
	TotalOut   decimal.Decimal
}

// TotalReturnPct returns 100 * TotalOut / TotalIn.
func (s Summary) TotalReturnPct() float64 {
	return returnPct(s.TotalIn, s.TotalOut)
}

// Summarize aggregates positions by strategy.
func Summarize(positions []*domain.Position) Summary {
	type acc struct {
		count    int
		out      decimal.Decimal
		duration int64
	}
	byStrategy := make(map[string]*acc)

	var sum Summary
	for _, p := range positions {
		if p.Closed {
			sum.Closed++
		} else {
			sum.Open++
		}

		a, ok := byStrategy[p.Strategy]
		if !ok {
			a = &acc{}
			byStrategy[p.Strategy] = a
		}
		a.count++
		a.out = a.out.Add(stake.Mul(decimal.NewFromFloat(p.Yield())))
		a.duration += p.DurationMs()
	}

	names := make([]string, 0, len(byStrategy))
	for name := range byStrategy {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		a := byStrategy[name]
		in := stake.Mul(decimal.NewFromInt(int64(a.count)))
		sum.Strategies = append(sum.Strategies, StrategySummary{
			Strategy:      name,
			Positions:     a.count,
			In:            in,
			Out:           a.out,
			DurationHours: float64(a.duration) / float64(a.count) / float64(domain.SampleIntervalMs),
		})
		sum.TotalIn = sum.TotalIn.Add(in)
		sum.TotalOut = sum.TotalOut.Add(a.out)
	}

	return sum
}

// CapSummary is the mean return of one strategy within a cap bucket.
type CapSummary struct {
	Strategy  string
	Positions int
	ReturnPct float64 // 100 * mean yield
}

// SplitByCap partitions positions by buy price and summarises each bucket
// per strategy. Buys below threshold are small cap.
func SplitByCap(positions []*domain.Position, threshold float64) (small, big []CapSummary) {
	smallYields := make(map[string][]decimal.Decimal)
	bigYields := make(map[string][]decimal.Decimal)

	for _, p := range positions {
		y := decimal.NewFromFloat(p.Yield())
		if p.BuyPrice < threshold {
			smallYields[p.Strategy] = append(smallYields[p.Strategy], y)
		} else {
			bigYields[p.Strategy] = append(bigYields[p.Strategy], y)
		}
	}

	return capSummaries(smallYields), capSummaries(bigYields)
}

func capSummaries(yields map[string][]decimal.Decimal) []CapSummary {
	names := make([]string, 0, len(yields))
	for name := range yields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]CapSummary, 0, len(names))
	for _, name := range names {
		ys := yields[name]
		mean := decimal.Sum(ys[0], ys[1:]...).Div(decimal.NewFromInt(int64(len(ys))))
		pct, _ := stake.Mul(mean).Float64()
		out = append(out, CapSummary{Strategy: name, Positions: len(ys), ReturnPct: pct})
	}
	return out
}

func returnPct(in, out decimal.Decimal) float64 {
	if in.IsZero() {
		return 0
	}
	pct, _ := out.Div(in).Mul(stake).Float64()
	return pct
}

// CountPairs returns the number of distinct pairs among positions.
func CountPairs(positions []*domain.Position) int {
	seen := make(map[domain.Pair]struct{})
	for _, p := range positions {
		seen[p.Pair] = struct{}{}
	}
	return len(seen)
}
