package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-authgate/stravaexport/internal/core"
	"github.com/go-authgate/stravaexport/internal/models"
)

// Backend names reported by Name.
const (
	BackendFile     = "file"
	BackendDatabase = "database"
)

// ErrInvalidUserID is returned when a user ID cannot be used as a file name.
var ErrInvalidUserID = errors.New("invalid user id")

var _ core.Sink = (*FileSink)(nil)

// FileSink stores each export as <dir>/<userID>.csv. Writes overwrite the
// previous file; there is no locking between concurrent writers.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (s *FileSink) Name() string {
	return BackendFile
}

// Dir returns the output directory.
func (s *FileSink) Dir() string {
	return s.dir
}

func (s *FileSink) Save(_ context.Context, userID, csvData string) error {
	path, err := s.path(userID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(csvData), 0o644); err != nil { //nolint:gosec // exports are meant to be readable
		return fmt.Errorf("failed to write csv file: %w", err)
	}
	return nil
}

func (s *FileSink) Load(_ context.Context, userID string) (*models.CSVFile, error) {
	path, err := s.path(userID)
	if err != nil {
		// Names that could never have been written are simply absent.
		return nil, core.ErrNotFound
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv file: %w", err)
	}

	file := &models.CSVFile{
		UserID:  userID,
		CSVData: string(data),
	}
	if info, err := os.Stat(path); err == nil {
		file.CreatedAt = info.ModTime()
		file.UpdatedAt = info.ModTime()
	}
	return file, nil
}

// CountCSVFiles returns how many exports are stored in the output directory.
// A missing directory counts as empty.
func (s *FileSink) CountCSVFiles() (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read output directory: %w", err)
	}

	var count int64
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ".csv") {
			count++
		}
	}
	return count, nil
}

func (s *FileSink) path(userID string) (string, error) {
	if userID == "" ||
		userID == "." ||
		userID == ".." ||
		strings.ContainsAny(userID, `/\`) ||
		strings.ContainsRune(userID, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	return filepath.Join(s.dir, userID+".csv"), nil
}
