// Package ranking orders strategies by hit rate and matches the strategies
// firing on the latest window of each series against the top-ranked set.
package ranking

import (
	"sort"

	"signal-lab/internal/domain"
)

// DefaultTopN is the number of top-ranked strategies used for matching.
const DefaultTopN = 13

// Rank returns one row per record sorted by hit rate, highest first.
// Equal hit rates keep the input (first-seen) order.
func Rank(records []*domain.OutcomeRecord) []domain.RankingRow {
	rows := make([]domain.RankingRow, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	SortRows(rows)
	return rows
}

// SortRows sorts rows in place by hit rate descending, stable on ties.
func SortRows(rows []domain.RankingRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].HitRate > rows[j].HitRate
	})
}

// TopNames returns the names of the first min(n, len(rows)) rows.
func TopNames(rows []domain.RankingRow, n int) []string {
	if n < 0 {
		n = 0
	}
	if n > len(rows) {
		n = len(rows)
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = rows[i].StrategyName
	}
	return names
}
