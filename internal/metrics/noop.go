package metrics

import (
	"time"

	"github.com/go-authgate/stravaexport/internal/core"
)

// NoopMetrics is a no-operation implementation of Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ core.Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() core.Recorder {
	return &NoopMetrics{}
}

// Export pipeline - noop implementations
func (n *NoopMetrics) RecordTokenExchange(success bool, duration time.Duration)           {}
func (n *NoopMetrics) RecordActivityPage(activities int)                                  {}
func (n *NoopMetrics) RecordExport(status string, duration time.Duration, activities int) {}
func (n *NoopMetrics) RecordPersist(backend string, success bool)                         {}

// Retrieval - noop implementations
func (n *NoopMetrics) RecordRetrieval(operation string, found bool) {}

// Gauge Setters - noop implementations
func (n *NoopMetrics) SetStoredCSVFilesCount(count int) {}

// Database Operations - noop implementations
func (n *NoopMetrics) RecordDatabaseQueryError(operation string) {}
