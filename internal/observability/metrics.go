// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons for series that contribute no windows.
const (
	SkipEmpty        = "empty"
	SkipShortHistory = "short_history"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Backtest metrics
	SeriesEvaluated     prometheus.Counter
	SeriesSkipped       *prometheus.CounterVec
	WindowsProcessed    prometheus.Counter
	LibraryInvocations  prometheus.Counter
	OutcomesRecorded    *prometheus.CounterVec
	StrategiesRanked    prometheus.Gauge
	RecommendationsMade prometheus.Counter

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec
	ReportsGenerated  prometheus.Counter

	// Provider metrics
	ProviderRequestLatency *prometheus.HistogramVec
	ProviderRequestErrors  *prometheus.CounterVec
	SamplesIngested        prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulPipeline prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "signal_lab"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		// Backtest metrics
		SeriesEvaluated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "series_evaluated_total",
			Help:      "Total number of price series evaluated",
		}),
		SeriesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "series_skipped_total",
			Help:      "Total number of series contributing no windows, by reason",
		}, []string{"reason"}),
		WindowsProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "windows_processed_total",
			Help:      "Total number of sliding windows evaluated",
		}),
		LibraryInvocations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "library_invocations_total",
			Help:      "Total number of strategy library calls",
		}),
		OutcomesRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "outcomes_recorded_total",
			Help:      "Total number of strategy outcomes by result",
		}, []string{"result"}),
		StrategiesRanked: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "strategies_ranked",
			Help:      "Number of distinct strategies in the last ranking",
		}),
		RecommendationsMade: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "recommendations_total",
			Help:      "Total number of current-window recommendations",
		}),

		// Pipeline metrics
		PipelineRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"status"}),
		ReportsGenerated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		// Provider metrics
		ProviderRequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_latency_seconds",
			Help:      "Price provider request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		ProviderRequestErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_errors_total",
			Help:      "Total number of failed provider requests",
		}, []string{"provider"}),
		SamplesIngested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "samples_ingested_total",
			Help:      "Total number of price samples ingested",
		}),

		// Database metrics
		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulPipeline: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordSeries records one evaluated series and the windows it produced.
// skipReason is empty when the series contributed windows.
func (m *Metrics) RecordSeries(windows int, skipReason string) {
	if m == nil {
		return
	}
	m.SeriesEvaluated.Inc()
	m.WindowsProcessed.Add(float64(windows))
	m.LibraryInvocations.Add(float64(windows))
	if skipReason != "" {
		m.SeriesSkipped.WithLabelValues(skipReason).Inc()
	}
}

// RecordOutcome records one emitted outcome.
func (m *Metrics) RecordOutcome(success bool) {
	if m == nil {
		return
	}
	if success {
		m.OutcomesRecorded.WithLabelValues("success").Inc()
		return
	}
	m.OutcomesRecorded.WithLabelValues("failure").Inc()
}

// RecordRanking records the size of a ranking and its recommendations.
func (m *Metrics) RecordRanking(strategies, recommendations int) {
	if m == nil {
		return
	}
	m.StrategiesRanked.Set(float64(strategies))
	m.RecommendationsMade.Add(float64(recommendations))
}

// RecordPipelineRun records a pipeline run.
func (m *Metrics) RecordPipelineRun(status string, durationSeconds float64, finishedUnix int64) {
	if m == nil {
		return
	}
	m.PipelineRunsTotal.WithLabelValues(status).Inc()
	m.PipelineDuration.WithLabelValues(status).Observe(durationSeconds)
	if status == "success" {
		m.LastSuccessfulPipeline.Set(float64(finishedUnix))
	}
}

// RecordReport increments the reports generated counter.
func (m *Metrics) RecordReport() {
	if m == nil {
		return
	}
	m.ReportsGenerated.Inc()
}

// RecordProviderRequest records a provider request.
func (m *Metrics) RecordProviderRequest(provider string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.ProviderRequestLatency.WithLabelValues(provider).Observe(seconds)
	if err != nil {
		m.ProviderRequestErrors.WithLabelValues(provider).Inc()
	}
}

// RecordSamplesIngested adds n ingested samples.
func (m *Metrics) RecordSamplesIngested(n int) {
	if m == nil {
		return
	}
	m.SamplesIngested.Add(float64(n))
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
