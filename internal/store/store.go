package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-authgate/stravaexport/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

// New opens the database and migrates the schema. ctx bounds the
// initial connection check and migration.
func New(ctx context.Context, driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is a separate database.
	if isMemorySQLite(driver, dsn) {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto migrate
	if err := db.WithContext(ctx).AutoMigrate(
		&models.CSVFile{},
		&models.ExportRun{},
	); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// CSV file operations

// GetCSVFile returns the stored export for userID or ErrRecordNotFound.
func (s *Store) GetCSVFile(ctx context.Context, userID string) (*models.CSVFile, error) {
	var file models.CSVFile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// UpsertCSVFile replaces the CSV for userID, creating the row when absent.
// The lookup and the write are separate statements; concurrent exports for
// the same user race and the last writer wins.
func (s *Store) UpsertCSVFile(ctx context.Context, userID, csvData string) (*models.CSVFile, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	db := s.db.WithContext(ctx)

	var file models.CSVFile
	err := db.Where("user_id = ?", userID).First(&file).Error
	if err == nil {
		file.CSVData = csvData
		file.UpdatedAt = time.Now()
		if err := db.Save(&file).Error; err != nil {
			return nil, fmt.Errorf("failed to update csv file: %w", err)
		}
		return &file, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to query csv file: %w", err)
	}

	file = models.CSVFile{
		UserID:  userID,
		CSVData: csvData,
	}
	if err := db.Create(&file).Error; err != nil {
		return nil, fmt.Errorf("failed to create csv file: %w", err)
	}
	return &file, nil
}

func (s *Store) ListCSVFiles(ctx context.Context) ([]models.CSVFile, error) {
	var files []models.CSVFile
	if err := s.db.WithContext(ctx).Order("updated_at DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// CountCSVFiles returns the number of stored exports
func (s *Store) CountCSVFiles() (int64, error) {
	var count int64
	err := s.db.Model(&models.CSVFile{}).Count(&count).Error
	return count, err
}

// Export run operations

func (s *Store) CreateExportRun(run *models.ExportRun) error {
	return s.db.Create(run).Error
}

// CreateExportRunBatch inserts several history rows in one round trip
func (s *Store) CreateExportRunBatch(runs []*models.ExportRun) error {
	if len(runs) == 0 {
		return nil
	}
	return s.db.CreateInBatches(runs, 100).Error
}

func (s *Store) GetExportRun(id string) (*models.ExportRun, error) {
	var run models.ExportRun
	err := s.db.Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListExportRuns returns export runs newest first with pagination metadata
func (s *Store) ListExportRuns(
	params PaginationParams,
	filters ExportRunFilters,
) ([]models.ExportRun, PaginationResult, error) {
	var total int64
	if err := s.exportRunQuery(filters).Count(&total).Error; err != nil {
		return nil, PaginationResult{}, fmt.Errorf("failed to count export runs: %w", err)
	}

	var runs []models.ExportRun
	if err := s.exportRunQuery(filters).
		Order("started_at DESC").
		Offset(params.Offset()).
		Limit(params.PageSize).
		Find(&runs).Error; err != nil {
		return nil, PaginationResult{}, fmt.Errorf("failed to list export runs: %w", err)
	}

	return runs, CalculatePagination(total, params), nil
}

func (s *Store) exportRunQuery(filters ExportRunFilters) *gorm.DB {
	query := s.db.Model(&models.ExportRun{})
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("user_id LIKE ? OR error_message LIKE ?", like, like)
	}
	return query
}

// DeleteExportRunsBefore removes history rows that finished before cutoff
func (s *Store) DeleteExportRunsBefore(cutoff time.Time) (int64, error) {
	result := s.db.Where("finished_at < ?", cutoff).Delete(&models.ExportRun{})
	return result.RowsAffected, result.Error
}

// Health checks the database connection
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the underlying GORM database connection (for transactions)
func (s *Store) DB() *gorm.DB {
	return s.db
}
