package reporting

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// RefreshSeconds is the page auto-refresh interval.
const RefreshSeconds = 30

var pageTemplates = template.Must(template.New("page").Funcs(template.FuncMap{
	"pct":  func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"pct2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"ts":   func(t time.Time) string { return t.Format(time.RFC3339) },
}).Parse(`{{define "header"}}<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="robots" content="index,follow">
<meta http-equiv="refresh" content="{{.Refresh}}">
<style>
body { font-family: sans-serif; }
</style>
<title>signal-lab</title>
</head>
<body>
<h1>HAVE A NICE DAY TRADER</h1>
<p id="disclaimer">History is no indicator of future performance. Don't invest
what you can't afford to lose. Prices fetched periodically from
<a href="https://www.cryptocompare.com/api/">CryptoCompare</a>.</p>
{{end}}
{{define "footer"}}{{if not .GeneratedAt.IsZero}}<p>Generated: {{ts .GeneratedAt}}</p>
{{end}}</body>
</html>
{{end}}
{{define "backtest"}}{{template "header" .}}<h2>What's popping, bro?</h2>
<p>Recent recommendations by the top {{.Report.TopN}} performing strategies below.{{if .Report.PricesLink}} See the <a href="{{.Report.PricesLink}}">raw price data</a>.{{end}}</p>
<pre>
{{if .Report.Recommendations}}{{range .Report.Recommendations}}{{.Pair.Label}} {{.StrategyName}}
{{end}}{{else}}I GOT NOTHING :(
{{end}}</pre>
<h2>Strategy performance</h2>
<p>Strategies are sorted by percentage of orders that returned a profit of at least {{.Report.Summary.TargetProfitPct}} % within {{.Report.Summary.LookAheadHours}} hours.
The more orders the greater the confidence in the result.</p>
<ul>
<li>{{.Report.Summary.Pairs}} pairs</li>
<li>{{.Report.Summary.Series}} series of prices</li>
<li>{{.Report.Summary.WindowSize}} hours window size</li>
<li>{{.Report.Summary.LookAheadHours}} hours look ahead</li>
<li>{{.Report.Summary.WindowsProcessed}} windows processed</li>
</ul>
<table id="strategies">
<tr><th>Strategy</th><th>%</th><th>Orders</th></tr>
{{range .Report.Ranking}}<tr><td>{{.StrategyName}}</td><td>{{pct .HitRate}}</td><td>{{.OrderCount}}</td></tr>
{{end}}</table>
{{template "footer" .}}{{end}}
{{define "portfolio"}}{{template "header" .}}<pre>
{{.Portfolio.Pairs}} coins analysed
{{.Portfolio.Open}} positions held
{{.Portfolio.Closed}} complete transactions
</pre>
{{range .Caps}}<h2>{{.Title}}</h2>
<table>
<tr><th>Strategy</th><th>Positions</th><th>% Return</th></tr>
{{range .Rows}}<tr><td>{{.Strategy}}</td><td>{{.Positions}}</td><td>{{pct2 .ReturnPct}}</td></tr>
{{end}}</table>
{{end}}{{template "footer" .}}{{end}}`))

type capTable struct {
	Title string
	Rows  []CapRow
}

// RenderHTML renders report as a self-refreshing HTML page.
func RenderHTML(r *Report) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Refresh     int
		GeneratedAt time.Time
		Report      *Report
	}{RefreshSeconds, r.GeneratedAt, r}

	if err := pageTemplates.ExecuteTemplate(&buf, "backtest", data); err != nil {
		return "", fmt.Errorf("render backtest html: %w", err)
	}
	return buf.String(), nil
}

// RenderPortfolioHTML renders the small/big cap tables of p as an HTML page.
func RenderPortfolioHTML(p *PortfolioReport) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Refresh     int
		GeneratedAt time.Time
		Portfolio   *PortfolioReport
		Caps        []capTable
	}{
		Refresh:     RefreshSeconds,
		GeneratedAt: p.GeneratedAt,
		Portfolio:   p,
		Caps:        []capTable{{"Small cap", p.SmallCap}, {"Big cap", p.BigCap}},
	}

	if err := pageTemplates.ExecuteTemplate(&buf, "portfolio", data); err != nil {
		return "", fmt.Errorf("render portfolio html: %w", err)
	}
	return buf.String(), nil
}
