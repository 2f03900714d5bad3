package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Export pipeline
	RecordTokenExchange(success bool, duration time.Duration)
	RecordActivityPage(activities int)
	RecordExport(status string, duration time.Duration, activities int)
	RecordPersist(backend string, success bool)

	// Retrieval
	RecordRetrieval(operation string, found bool)

	// Gauge Setters (for periodic updates)
	SetStoredCSVFilesCount(count int)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}

// MetricsStore defines the DB operations needed by CacheWrapper.
type MetricsStore interface {
	CountCSVFiles() (int64, error)
}
