package models

import (
	"time"
)

// ExportStatus describes how far an export attempt got
type ExportStatus string

const (
	ExportStatusSucceeded           ExportStatus = "succeeded"
	ExportStatusTokenExchangeFailed ExportStatus = "token_exchange_failed"
	ExportStatusFetchFailed         ExportStatus = "fetch_failed"
	ExportStatusPersistFailed       ExportStatus = "persist_failed"
)

// ExportRun records one pass through the export pipeline
type ExportRun struct {
	ID           string       `gorm:"primaryKey"              json:"id"`
	UserID       string       `gorm:"index"                   json:"userID"` // empty when token exchange failed
	Status       ExportStatus `gorm:"not null;index"          json:"status"`
	Backend      string       `gorm:"not null"                json:"backend"` // "file" or "database"
	Activities   int          `json:"activities"`
	Pages        int          `json:"pages"`
	ErrorMessage string       `gorm:"type:text"               json:"errorMessage,omitempty"`
	ClientIP     string       `json:"clientIP,omitempty"`
	StartedAt    time.Time    `gorm:"not null"                json:"startedAt"`
	FinishedAt   time.Time    `gorm:"not null;index"          json:"finishedAt"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// TableName overrides the table name used by ExportRun to `export_runs`
func (ExportRun) TableName() string {
	return "export_runs"
}

// Duration returns how long the run took
func (r *ExportRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Persisted reports whether the run left a CSV behind
func (r *ExportRun) Persisted() bool {
	return r.Status == ExportStatusSucceeded
}
