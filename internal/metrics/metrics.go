package metrics

import (
	"sync"

	"github.com/go-authgate/stravaexport/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements Recorder interface at compile time
var _ core.Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Strava Metrics
	TokenExchangeTotal    *prometheus.CounterVec
	TokenExchangeDuration prometheus.Histogram
	ActivityPagesTotal    prometheus.Counter
	ActivitiesFetched     prometheus.Counter

	// Export Pipeline Metrics
	ExportsTotal     *prometheus.CounterVec
	ExportDuration   *prometheus.HistogramVec
	ExportActivities prometheus.Histogram
	PersistTotal     *prometheus.CounterVec
	RetrievalsTotal  *prometheus.CounterVec
	StoredCSVFiles   prometheus.Gauge

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) core.Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	m := &Metrics{
		// Strava Metrics
		TokenExchangeTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "strava_token_exchange_total",
				Help: "Total number of authorization code exchanges",
			},
			[]string{"result"}, // success, error
		),
		TokenExchangeDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "strava_token_exchange_duration_seconds",
				Help:    "Time taken by the Strava token endpoint",
				Buckets: prometheus.DefBuckets,
			},
		),
		ActivityPagesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "strava_activity_pages_total",
				Help: "Total number of non-empty activity pages fetched",
			},
		),
		ActivitiesFetched: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "strava_activities_fetched_total",
				Help: "Total number of activities fetched from Strava",
			},
		),

		// Export Pipeline Metrics
		ExportsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csv_exports_total",
				Help: "Total number of export attempts",
			},
			[]string{"status"}, // succeeded, token_exchange_failed, fetch_failed, persist_failed
		),
		ExportDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "csv_export_duration_seconds",
				Help: "End-to-end duration of an export",
				Buckets: []float64{
					0.1,
					0.5,
					1,
					2.5,
					5,
					10,
					30,
					60,
					120,
				},
			},
			[]string{"status"},
		),
		ExportActivities: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "csv_export_activities",
				Help:    "Number of activities written per successful export",
				Buckets: prometheus.ExponentialBuckets(10, 4, 6), // 10 .. 10240
			},
		),
		PersistTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csv_persist_total",
				Help: "Total number of CSV writes by backend",
			},
			[]string{"backend", "result"},
		),
		RetrievalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csv_retrievals_total",
				Help: "Total number of CSV retrieval requests",
			},
			[]string{"operation", "result"}, // operation: get, download, list; result: found, not_found
		),
		StoredCSVFiles: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "csv_files_stored",
				Help: "Current number of stored CSV exports",
			},
		),

		// HTTP Request Metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				Buckets: []float64{
					0.001,
					0.005,
					0.010,
					0.025,
					0.050,
					0.100,
					0.250,
					0.500,
					1.0,
					2.5,
					5.0,
					10.0,
					30.0,
				},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		// Database Query Metrics
		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors during metric collection",
			},
			[]string{"operation"}, // count_csv_files
		),
	}

	return m
}
