package reporting

import (
	"fmt"
	"strings"
	"time"
)

// NothingPopping is printed when no current window matches the top strategies.
const NothingPopping = "I GOT NOTHING :("

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Recommendations
	sb.WriteString("# What's popping, bro?\n")
	sb.WriteString(fmt.Sprintf("Recent recommendations by the top %d performing strategies below.", r.TopN))
	if r.PricesLink != "" {
		sb.WriteString(fmt.Sprintf(" See the [raw price data](%s)", r.PricesLink))
	}
	sb.WriteString("\n<pre>\n")
	if len(r.Recommendations) == 0 {
		sb.WriteString(NothingPopping + "\n")
	}
	for _, rec := range r.Recommendations {
		sb.WriteString(fmt.Sprintf("%s %s\n", rec.Pair.Label(), rec.StrategyName))
	}
	sb.WriteString("</pre>\n\n")

	// Strategy performance
	s := r.Summary
	sb.WriteString("# Strategy performance\n")
	sb.WriteString(fmt.Sprintf("Strategies are sorted by percentage of orders that returned a profit of at least %g %% within %d hours. ",
		s.TargetProfitPct(), s.LookAheadHours))
	sb.WriteString("The more orders the greater the confidence in the result.\n")
	sb.WriteString(fmt.Sprintf("* %d pairs\n", s.Pairs))
	sb.WriteString(fmt.Sprintf("* %d series of prices\n", s.Series))
	sb.WriteString(fmt.Sprintf("* %d hours window size\n", s.WindowSize))
	sb.WriteString(fmt.Sprintf("* %d hours look ahead\n", s.LookAheadHours))
	sb.WriteString(fmt.Sprintf("* %d windows processed\n", s.WindowsProcessed))
	sb.WriteString("<pre>\n")
	sb.WriteString("STRATEGY\t\t%\torders\n")
	for _, row := range r.Ranking {
		sb.WriteString(fmt.Sprintf("%s\t%.1f\t%d\n", row.StrategyName, row.HitRate, row.OrderCount))
	}
	sb.WriteString("</pre>\n")

	if !r.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("\nGenerated: %s\n", r.GeneratedAt.Format(time.RFC3339)))
	}

	return sb.String()
}

// RenderPortfolioMarkdown renders a portfolio summary as Markdown string.
func RenderPortfolioMarkdown(p *PortfolioReport) string {
	var sb strings.Builder

	sb.WriteString("# Portfolio summary\n\n")
	sb.WriteString(fmt.Sprintf("* %d coins analysed\n", p.Pairs))
	sb.WriteString(fmt.Sprintf("* %d positions held\n", p.Open))
	sb.WriteString(fmt.Sprintf("* %d complete transactions\n\n", p.Closed))

	if len(p.Rows) == 0 {
		sb.WriteString("No positions recorded.\n")
	} else {
		sb.WriteString("| Strategy | $ In | $ Out | Duration (hrs) | % Return |\n")
		sb.WriteString("|----------|------|-------|----------------|----------|\n")
		for _, row := range p.Rows {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.2f |\n",
				row.Strategy, row.In, row.Out, row.DurationHours, row.ReturnPct))
		}
		sb.WriteString(fmt.Sprintf("| **TOTAL** | %.2f | %.2f | | %.2f |\n", p.TotalIn, p.TotalOut, p.TotalReturn))
		sb.WriteString("\nFees not included.\n")
	}

	if len(p.SmallCap) > 0 || len(p.BigCap) > 0 {
		writeCapTable(&sb, "Small cap", p.SmallCap)
		writeCapTable(&sb, "Big cap", p.BigCap)
	}

	if !p.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("\nGenerated: %s\n", p.GeneratedAt.Format(time.RFC3339)))
	}

	return sb.String()
}

func writeCapTable(sb *strings.Builder, title string, rows []CapRow) {
	sb.WriteString(fmt.Sprintf("\n## %s\n\n", title))
	if len(rows) == 0 {
		sb.WriteString("No positions.\n")
		return
	}
	sb.WriteString("| Strategy | Positions | % Return |\n")
	sb.WriteString("|----------|-----------|----------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.2f |\n", row.Strategy, row.Positions, row.ReturnPct))
	}
}
