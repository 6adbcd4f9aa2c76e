package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"signal-lab/internal/reporting"
)

// Output file names written by WriteReports.
const (
	MarkdownFile        = "popping.md"
	HTMLFile            = "index.html"
	StrategiesFile      = "strategies.csv"
	RecommendationsFile = "recommendations.csv"

	PortfolioMarkdownFile = "portfolio.md"
	PortfolioHTMLFile     = "portfolio.html"
)

// WriteReports renders report into dir and returns the written paths:
// - popping.md
// - index.html
// - strategies.csv
// - recommendations.csv
func WriteReports(dir string, report *reporting.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	page, err := reporting.RenderHTML(report)
	if err != nil {
		return nil, err
	}

	return writeFiles(dir, []outputFile{
		{MarkdownFile, reporting.RenderMarkdown(report)},
		{HTMLFile, page},
		{StrategiesFile, reporting.RenderCSV(report.Ranking)},
		{RecommendationsFile, reporting.RenderRecommendationsCSV(report.Recommendations)},
	})
}

// WritePortfolioReports renders a position summary into dir as
// portfolio.md and portfolio.html.
func WritePortfolioReports(dir string, report *reporting.PortfolioReport) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	page, err := reporting.RenderPortfolioHTML(report)
	if err != nil {
		return nil, err
	}

	return writeFiles(dir, []outputFile{
		{PortfolioMarkdownFile, reporting.RenderPortfolioMarkdown(report)},
		{PortfolioHTMLFile, page},
	})
}

type outputFile struct {
	name    string
	content string
}

func writeFiles(dir string, files []outputFile) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
