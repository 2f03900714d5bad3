package metrics

import (
	"strconv"
	"time"

	"github.com/go-authgate/stravaexport/internal/core"

	"github.com/gin-gonic/gin"
)

const (
	resultSuccess  = "success"
	resultError    = "error"
	resultFound    = "found"
	resultNotFound = "not_found"
)

// HTTPMetricsMiddleware creates a Gin middleware that records HTTP metrics
func HTTPMetricsMiddleware(m core.Recorder) gin.HandlerFunc {
	// If NoopMetrics, return a lightweight middleware that does nothing
	if _, ok := m.(*NoopMetrics); ok {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	// Type assert to concrete Metrics for Prometheus access
	metrics, ok := m.(*Metrics)
	if !ok {
		// Fallback if unknown implementation
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid self-recording
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := normalizePath(c.FullPath()) // Use route pattern, not actual path
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath converts the actual request path to route pattern
// Returns the route pattern (e.g., "/api/csvfiles/:userId") or "unknown" if no route matched
func normalizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

// RecordTokenExchange records an authorization code exchange
func (m *Metrics) RecordTokenExchange(success bool, duration time.Duration) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.TokenExchangeTotal.WithLabelValues(result).Inc()
	m.TokenExchangeDuration.Observe(duration.Seconds())
}

// RecordActivityPage records one non-empty page of activities
func (m *Metrics) RecordActivityPage(activities int) {
	m.ActivityPagesTotal.Inc()
	m.ActivitiesFetched.Add(float64(activities))
}

// RecordExport records the outcome of an export attempt
func (m *Metrics) RecordExport(status string, duration time.Duration, activities int) {
	m.ExportsTotal.WithLabelValues(status).Inc()
	m.ExportDuration.WithLabelValues(status).Observe(duration.Seconds())
	if status == "succeeded" {
		m.ExportActivities.Observe(float64(activities))
	}
}

// RecordPersist records a CSV write
func (m *Metrics) RecordPersist(backend string, success bool) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.PersistTotal.WithLabelValues(backend, result).Inc()
}

// RecordRetrieval records a CSV lookup
func (m *Metrics) RecordRetrieval(operation string, found bool) {
	result := resultFound
	if !found {
		result = resultNotFound
	}
	m.RetrievalsTotal.WithLabelValues(operation, result).Inc()
}

// SetStoredCSVFilesCount sets the current count of stored exports (for periodic updates)
func (m *Metrics) SetStoredCSVFilesCount(count int) {
	m.StoredCSVFiles.Set(float64(count))
}

// RecordDatabaseQueryError records a database query error during metric collection
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
