package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sync"
	"time"

	"github.com/go-authgate/stravaexport/internal/models"
	"github.com/go-authgate/stravaexport/internal/store"
	"github.com/go-authgate/stravaexport/internal/util"

	"github.com/google/uuid"
)

const (
	historyBatchSize     = 100
	historyFlushInterval = time.Second
)

// HistoryService records export runs in the database
type HistoryService struct {
	store      *store.Store
	enabled    bool
	bufferSize int

	// Async recording channel
	runChan chan *models.ExportRun

	// Batch buffer
	batchBuffer []*models.ExportRun
	batchMutex  sync.Mutex
	batchTicker *time.Ticker

	// Graceful shutdown
	wg           sync.WaitGroup
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// NewHistoryService creates a new history service
func NewHistoryService(s *store.Store, enabled bool, bufferSize int) *HistoryService {
	if bufferSize <= 0 {
		bufferSize = 1000 // Default buffer size
	}

	service := &HistoryService{
		store:       s,
		enabled:     enabled,
		bufferSize:  bufferSize,
		runChan:     make(chan *models.ExportRun, bufferSize),
		batchBuffer: make([]*models.ExportRun, 0, historyBatchSize),
		batchTicker: time.NewTicker(historyFlushInterval),
		shutdownCh:  make(chan struct{}),
	}

	if enabled {
		service.wg.Add(1)
		go service.worker()
		log.Printf("[Export] History service started with buffer size %d", bufferSize)
	} else {
		service.batchTicker.Stop()
		log.Println("[Export] History service is disabled")
	}

	return service
}

// Enabled reports whether runs are being recorded
func (s *HistoryService) Enabled() bool {
	return s.enabled
}

func (s *HistoryService) worker() {
	defer s.wg.Done()

	for {
		select {
		case run := <-s.runChan:
			s.addToBatch(run)

		case <-s.batchTicker.C:
			s.flushBatch()

		case <-s.shutdownCh:
			// Drain whatever is still queued
			for {
				select {
				case run := <-s.runChan:
					s.addToBatch(run)
				default:
					s.flushBatch()
					return
				}
			}
		}
	}
}

func (s *HistoryService) addToBatch(run *models.ExportRun) {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()

	s.batchBuffer = append(s.batchBuffer, run)

	if len(s.batchBuffer) >= historyBatchSize {
		s.flushBatchUnsafe()
	}
}

func (s *HistoryService) flushBatch() {
	s.batchMutex.Lock()
	defer s.batchMutex.Unlock()
	s.flushBatchUnsafe()
}

// flushBatchUnsafe writes the batch buffer; caller must hold batchMutex
func (s *HistoryService) flushBatchUnsafe() {
	if len(s.batchBuffer) == 0 {
		return
	}

	toWrite := make([]*models.ExportRun, len(s.batchBuffer))
	copy(toWrite, s.batchBuffer)
	s.batchBuffer = s.batchBuffer[:0]

	if err := s.store.CreateExportRunBatch(toWrite); err != nil {
		log.Printf("[Export] Failed to write export history batch: %v", err)
	}
}

// Record queues run for insertion. It never blocks; when the buffer is full
// the run is dropped with a warning.
func (s *HistoryService) Record(ctx context.Context, run *models.ExportRun) {
	if !s.enabled {
		return
	}

	s.prepare(ctx, run)

	select {
	case s.runChan <- run:
	default:
		log.Printf("[Export] WARNING: history buffer full, dropping run %s", run.ID)
	}
}

// RecordSync writes run immediately
func (s *HistoryService) RecordSync(ctx context.Context, run *models.ExportRun) error {
	if !s.enabled {
		return nil
	}

	s.prepare(ctx, run)
	return s.store.CreateExportRun(run)
}

func (s *HistoryService) prepare(ctx context.Context, run *models.ExportRun) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.ClientIP == "" {
		run.ClientIP = util.GetIPFromContext(ctx)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.ErrorMessage = redactSecrets(run.ErrorMessage)
}

// ListRuns returns recorded runs, newest first
func (s *HistoryService) ListRuns(
	params store.PaginationParams,
	filters store.ExportRunFilters,
) ([]models.ExportRun, store.PaginationResult, error) {
	return s.store.ListExportRuns(params, filters)
}

// GetRun returns one run or store.ErrRecordNotFound
func (s *HistoryService) GetRun(id string) (*models.ExportRun, error) {
	return s.store.GetExportRun(id)
}

// CleanupOldRuns deletes runs that finished before the retention window
func (s *HistoryService) CleanupOldRuns(retention time.Duration) (int64, error) {
	return s.store.DeleteExportRunsBefore(time.Now().Add(-retention))
}

// Shutdown flushes queued runs and stops the worker
func (s *HistoryService) Shutdown(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	s.shutdownOnce.Do(func() {
		s.batchTicker.Stop()
		close(s.shutdownCh)
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[Export] History service shut down gracefully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("history service shutdown timeout: %w", ctx.Err())
	}
}

var secretPattern = regexp.MustCompile(
	`(?i)((?:access_token|refresh_token|client_secret|code)["']?\s*[:=]\s*["']?)([^\s&"',}]+)`,
)

// redactSecrets masks credential values that upstream error bodies may echo
func redactSecrets(msg string) string {
	if msg == "" {
		return msg
	}
	return secretPattern.ReplaceAllString(msg, "${1}***REDACTED***")
}
