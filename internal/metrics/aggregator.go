// Package metrics accumulates per-strategy outcomes produced by the backtest.
package metrics

import (
	"signal-lab/internal/backtest"
	"signal-lab/internal/domain"
)

// Aggregator is an insertion-ordered association from strategy name to its
// outcomes. Records are kept in the order their names were first seen.
// It is not safe for concurrent use; parallel evaluation merges into a
// single aggregator from one goroutine.
type Aggregator struct {
	records []*domain.OutcomeRecord
	index   map[string]int
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{index: make(map[string]int)}
}

// Add appends success to the record for name, creating it on first sight.
func (a *Aggregator) Add(name string, success int) {
	i, ok := a.index[name]
	if !ok {
		i = len(a.records)
		a.index[name] = i
		a.records = append(a.records, &domain.OutcomeRecord{StrategyName: name})
	}
	a.records[i].Outcomes = append(a.records[i].Outcomes, success)
}

// Merge adds every emission of a series result in emission order.
func (a *Aggregator) Merge(res backtest.SeriesResult) {
	for _, e := range res.Emissions {
		a.Add(e.StrategyName, e.Success)
	}
}

// Get returns the record for name.
func (a *Aggregator) Get(name string) (*domain.OutcomeRecord, bool) {
	i, ok := a.index[name]
	if !ok {
		return nil, false
	}
	return a.records[i], true
}

// Records returns copies of all records in first-seen order.
func (a *Aggregator) Records() []*domain.OutcomeRecord {
	out := make([]*domain.OutcomeRecord, len(a.records))
	for i, r := range a.records {
		out[i] = &domain.OutcomeRecord{
			StrategyName: r.StrategyName,
			Outcomes:     append([]int(nil), r.Outcomes...),
		}
	}
	return out
}

// Rows returns one ranking row per record in first-seen order.
func (a *Aggregator) Rows() []domain.RankingRow {
	rows := make([]domain.RankingRow, len(a.records))
	for i, r := range a.records {
		rows[i] = r.Row()
	}
	return rows
}

// Len returns the number of distinct strategy names.
func (a *Aggregator) Len() int {
	return len(a.records)
}

// Ensure Aggregator can receive engine output directly
var _ backtest.OutcomeSink = (*Aggregator)(nil)
