package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-lab/internal/domain"
)

func sampleReport() *Report {
	return &Report{
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Summary: domain.RunSummary{
			Pairs:            3,
			Series:           2,
			SeriesWithData:   2,
			WindowSize:       24,
			LookAheadHours:   48,
			TargetPercentage: 1.05,
			WindowsProcessed: 56,
		},
		Ranking: []domain.RankingRow{
			{StrategyName: "rising 3", HitRate: 66.666, OrderCount: 3},
			{StrategyName: "flat 1", HitRate: 0, OrderCount: 28},
		},
		TopN: 13,
		Recommendations: []domain.Recommendation{
			{Pair: domain.Pair{From: "BTC", To: "USD"}, StrategyName: "rising 3", MatchedBy: "rising 3"},
		},
		PricesLink: "prices.csv",
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleReport())

	assert.Contains(t, md, "# What's popping, bro?")
	assert.Contains(t, md, "top 13 performing strategies")
	assert.Contains(t, md, "[raw price data](prices.csv)")
	assert.Contains(t, md, "BTC-USD rising 3\n")
	assert.NotContains(t, md, NothingPopping)

	assert.Contains(t, md, "at least 5 % within 48 hours")
	assert.Contains(t, md, "* 3 pairs\n")
	assert.Contains(t, md, "* 2 series of prices\n")
	assert.Contains(t, md, "* 24 hours window size\n")
	assert.Contains(t, md, "* 48 hours look ahead\n")
	assert.Contains(t, md, "* 56 windows processed\n")
	assert.Contains(t, md, "STRATEGY\t\t%\torders\n")
	assert.Contains(t, md, "rising 3\t66.7\t3\n")
	assert.Contains(t, md, "flat 1\t0.0\t28\n")
	assert.Contains(t, md, "Generated: 2024-01-02T03:04:05Z")

	assert.Less(t, strings.Index(md, "rising 3\t"), strings.Index(md, "flat 1\t"), "ranking order preserved")
}

func TestRenderMarkdown_NothingPopping(t *testing.T) {
	r := sampleReport()
	r.Recommendations = nil
	r.Ranking = nil

	md := RenderMarkdown(r)
	assert.Contains(t, md, "<pre>\nI GOT NOTHING :(\n</pre>")
}

func TestRenderHTML(t *testing.T) {
	page, err := RenderHTML(sampleReport())
	require.NoError(t, err)

	assert.Contains(t, page, `<meta http-equiv="refresh" content="30">`)
	assert.Contains(t, page, `id="disclaimer"`)
	assert.Contains(t, page, "BTC-USD rising 3")
	assert.Contains(t, page, "<td>rising 3</td><td>66.7</td><td>3</td>")
	assert.Contains(t, page, "<li>56 windows processed</li>")
	assert.NotContains(t, page, "I GOT NOTHING")
}

func TestRenderHTML_EscapesNames(t *testing.T) {
	r := sampleReport()
	r.Ranking = []domain.RankingRow{{StrategyName: "<script>", HitRate: 1, OrderCount: 1}}
	r.Recommendations = nil

	page, err := RenderHTML(r)
	require.NoError(t, err)
	assert.NotContains(t, page, "<td><script></td>")
	assert.Contains(t, page, "&lt;script&gt;")
	assert.Contains(t, page, "I GOT NOTHING :(")
}

func TestRenderCSV(t *testing.T) {
	out := RenderCSV([]domain.RankingRow{
		{StrategyName: "rising 3", HitRate: 50, OrderCount: 2},
		{StrategyName: "a,b", HitRate: 0, OrderCount: 1},
	})

	assert.Equal(t, "strategy,hit_rate,orders\nrising 3,50.000000,2\n\"a,b\",0.000000,1\n", out)
}

func TestRenderRecommendationsCSV(t *testing.T) {
	out := RenderRecommendationsCSV(sampleReport().Recommendations)
	assert.Equal(t, "from,to,strategy,matched_by\nBTC,USD,rising 3,rising 3\n", out)
}

func TestRenderPortfolioMarkdown(t *testing.T) {
	p := &PortfolioReport{
		Pairs:  4,
		Open:   2,
		Closed: 1,
		Rows: []PortfolioRow{
			{Strategy: "dip 5", In: 200, Out: 210, DurationHours: 1.5, ReturnPct: 105},
		},
		TotalIn:     200,
		TotalOut:    210,
		TotalReturn: 105,
		SmallCap:    []CapRow{{Strategy: "dip 5", Positions: 2, ReturnPct: 105}},
	}

	md := RenderPortfolioMarkdown(p)
	assert.Contains(t, md, "* 4 coins analysed")
	assert.Contains(t, md, "| dip 5 | 200.00 | 210.00 | 1.50 | 105.00 |")
	assert.Contains(t, md, "| **TOTAL** | 200.00 | 210.00 | | 105.00 |")
	assert.Contains(t, md, "## Small cap")
	assert.Contains(t, md, "## Big cap\n\nNo positions.")

	empty := RenderPortfolioMarkdown(&PortfolioReport{})
	assert.Contains(t, empty, "No positions recorded.")
}

func TestRenderPortfolioHTML(t *testing.T) {
	page, err := RenderPortfolioHTML(&PortfolioReport{
		Pairs:  1,
		BigCap: []CapRow{{Strategy: "breakout", Positions: 3, ReturnPct: 98.5}},
	})
	require.NoError(t, err)

	assert.Contains(t, page, "1 coins analysed")
	assert.Contains(t, page, "<h2>Big cap</h2>")
	assert.Contains(t, page, "<td>breakout</td><td>3</td><td>98.50</td>")
}
