package core

import (
	"context"
	"errors"

	"github.com/go-authgate/stravaexport/internal/models"
)

// ErrNotFound is returned by Sink.Load when no CSV is stored for the user.
var ErrNotFound = errors.New("csv file not found")

// Sink persists one CSV export per user ID. Implementations exist for the
// local filesystem and for the relational store; deployments pick one.
type Sink interface {
	// Save creates or fully replaces the CSV stored for userID.
	Save(ctx context.Context, userID, csvData string) error
	// Load returns the stored CSV for userID, or ErrNotFound.
	Load(ctx context.Context, userID string) (*models.CSVFile, error)
	// Name identifies the backend ("file", "database").
	Name() string
}

// Lister is implemented by sinks that can enumerate every stored record.
type Lister interface {
	List(ctx context.Context) ([]models.CSVFile, error)
}
