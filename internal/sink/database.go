package sink

import (
	"context"
	"errors"

	"github.com/go-authgate/stravaexport/internal/core"
	"github.com/go-authgate/stravaexport/internal/models"
	"github.com/go-authgate/stravaexport/internal/store"
)

// csvStore is the slice of store.Store the database sink needs.
type csvStore interface {
	GetCSVFile(ctx context.Context, userID string) (*models.CSVFile, error)
	UpsertCSVFile(ctx context.Context, userID, csvData string) (*models.CSVFile, error)
	ListCSVFiles(ctx context.Context) ([]models.CSVFile, error)
}

var (
	_ core.Sink   = (*DatabaseSink)(nil)
	_ core.Lister = (*DatabaseSink)(nil)
)

// DatabaseSink keeps exports in the csv_files table.
type DatabaseSink struct {
	store csvStore
}

func NewDatabaseSink(s *store.Store) *DatabaseSink {
	return &DatabaseSink{store: s}
}

func (s *DatabaseSink) Name() string {
	return BackendDatabase
}

func (s *DatabaseSink) Save(ctx context.Context, userID, csvData string) error {
	_, err := s.store.UpsertCSVFile(ctx, userID, csvData)
	return err
}

func (s *DatabaseSink) Load(ctx context.Context, userID string) (*models.CSVFile, error) {
	file, err := s.store.GetCSVFile(ctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (s *DatabaseSink) List(ctx context.Context) ([]models.CSVFile, error) {
	files, err := s.store.ListCSVFiles(ctx)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []models.CSVFile{}
	}
	return files, nil
}
