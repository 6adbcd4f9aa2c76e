package reporting

import (
	"fmt"
	"strings"

	"signal-lab/internal/domain"
)

// RenderCSV renders ranking rows as CSV string.
func RenderCSV(rows []domain.RankingRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("strategy,hit_rate,orders\n")

	// Rows
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%d\n", csvField(row.StrategyName), row.HitRate, row.OrderCount))
	}

	return sb.String()
}

// RenderRecommendationsCSV renders recommendations as CSV string.
func RenderRecommendationsCSV(recs []domain.Recommendation) string {
	var sb strings.Builder

	sb.WriteString("from,to,strategy,matched_by\n")
	for _, rec := range recs {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s\n",
			csvField(rec.Pair.From), csvField(rec.Pair.To), csvField(rec.StrategyName), csvField(rec.MatchedBy)))
	}

	return sb.String()
}

// csvField quotes s when it contains a separator, quote or newline.
func csvField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
