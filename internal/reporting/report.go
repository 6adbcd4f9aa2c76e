// Package reporting renders backtest and portfolio results.
package reporting

import (
	"time"

	"signal-lab/internal/domain"
)

// Report is the output of one backtest run.
type Report struct {
	GeneratedAt time.Time
	Summary     domain.RunSummary

	// Ranking is sorted by hit rate, highest first.
	Ranking []domain.RankingRow

	// TopN is the number of ranked strategies matched against current windows.
	TopN int

	// Recommendations in series order, then library order.
	Recommendations []domain.Recommendation

	// PricesLink is an optional link to the raw price data.
	PricesLink string
}

// PortfolioReport is the output of a position summary.
type PortfolioReport struct {
	GeneratedAt time.Time
	Pairs       int // pairs with prices
	Open        int // positions held
	Closed      int // complete transactions
	Rows        []PortfolioRow
	TotalIn     float64
	TotalOut    float64
	TotalReturn float64 // percent

	// Cap tables from the small/big split, optional.
	SmallCap []CapRow
	BigCap   []CapRow
}

// PortfolioRow is one strategy line of the portfolio summary.
type PortfolioRow struct {
	Strategy      string
	In            float64
	Out           float64
	DurationHours float64
	ReturnPct     float64
}

// CapRow is one strategy line of a cap-size table.
type CapRow struct {
	Strategy  string
	Positions int
	ReturnPct float64
}
