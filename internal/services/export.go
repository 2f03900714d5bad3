package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-authgate/stravaexport/internal/core"
	"github.com/go-authgate/stravaexport/internal/csvexport"
	"github.com/go-authgate/stravaexport/internal/models"
	"github.com/go-authgate/stravaexport/internal/strava"

	"github.com/google/uuid"
)

// ProcessingErrorMessage is the only failure detail exposed to API callers.
const ProcessingErrorMessage = "An error occurred while processing the data."

// ErrProcessing wraps every token exchange or activity fetch failure.
var ErrProcessing = errors.New("export processing failed")

// ExportResult describes a completed export
type ExportResult struct {
	RunID       string
	AccessToken string
	AthleteID   string
	Activities  int
	Pages       int
	Persisted   bool
}

// ExportService runs the code -> token -> activities -> CSV -> sink pipeline
type ExportService struct {
	provider *strava.Provider
	sink     core.Sink
	history  *HistoryService
	metrics  core.Recorder
}

// NewExportService creates a new export service. history may be nil.
func NewExportService(
	provider *strava.Provider,
	sink core.Sink,
	history *HistoryService,
	m core.Recorder,
) *ExportService {
	return &ExportService{
		provider: provider,
		sink:     sink,
		history:  history,
		metrics:  m,
	}
}

// Backend returns the name of the configured sink
func (s *ExportService) Backend() string {
	return s.sink.Name()
}

// Export exchanges code for a token, collects every activity and stores the
// resulting CSV under the athlete ID. Token and fetch failures return an
// error wrapping ErrProcessing and leave the sink untouched. A failed write
// is logged and reported through ExportResult.Persisted.
func (s *ExportService) Export(ctx context.Context, code string) (*ExportResult, error) {
	run := &models.ExportRun{
		ID:        uuid.New().String(),
		Backend:   s.sink.Name(),
		StartedAt: time.Now(),
	}

	exchangeStart := time.Now()
	grant, err := s.provider.ExchangeCode(ctx, code)
	s.metrics.RecordTokenExchange(err == nil, time.Since(exchangeStart))
	if err != nil {
		log.Printf("[Export] Token exchange failed: %v", err)
		s.finish(ctx, run, models.ExportStatusTokenExchangeFailed, err)
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	run.UserID = grant.AthleteID

	it := s.provider.Activities(ctx, grant.AccessToken)
	src := &meteredSource{src: it, metrics: s.metrics}
	csvData, count, err := csvexport.Build(ctx, src)
	src.close()
	run.Activities = count
	run.Pages = it.Pages()
	if err != nil {
		log.Printf("[Export] Fetching activities for athlete %s failed: %v", grant.AthleteID, err)
		s.finish(ctx, run, models.ExportStatusFetchFailed, err)
		return nil, fmt.Errorf("%w: %w", ErrProcessing, err)
	}

	result := &ExportResult{
		RunID:       run.ID,
		AccessToken: grant.AccessToken,
		AthleteID:   grant.AthleteID,
		Activities:  count,
		Pages:       run.Pages,
	}

	if err := s.sink.Save(ctx, grant.AthleteID, csvData); err != nil {
		log.Printf("[Sink] Failed to save CSV for athlete %s to %s: %v",
			grant.AthleteID, s.sink.Name(), err)
		s.metrics.RecordPersist(s.sink.Name(), false)
		s.finish(ctx, run, models.ExportStatusPersistFailed, err)
		return result, nil
	}
	s.metrics.RecordPersist(s.sink.Name(), true)
	log.Printf("[Sink] Saved %d activities for athlete %s (%s)",
		count, grant.AthleteID, s.sink.Name())

	result.Persisted = true
	s.finish(ctx, run, models.ExportStatusSucceeded, nil)
	return result, nil
}

func (s *ExportService) finish(
	ctx context.Context,
	run *models.ExportRun,
	status models.ExportStatus,
	err error,
) {
	run.Status = status
	run.FinishedAt = time.Now()
	if err != nil {
		run.ErrorMessage = err.Error()
	}

	s.metrics.RecordExport(string(status), run.Duration(), run.Activities)

	if s.history != nil {
		s.history.Record(ctx, run)
	}
}

// pagedSource is an activity source that also reports fetched pages
type pagedSource interface {
	csvexport.Source
	Pages() int
}

// meteredSource records a metric sample for every completed page
type meteredSource struct {
	src     pagedSource
	metrics core.Recorder
	pages   int
	inPage  int
}

func (m *meteredSource) Next(ctx context.Context) bool {
	ok := m.src.Next(ctx)
	if p := m.src.Pages(); p != m.pages {
		m.close()
		m.pages = p
	}
	if ok {
		m.inPage++
	}
	return ok
}

func (m *meteredSource) Activity() models.Activity {
	return m.src.Activity()
}

func (m *meteredSource) Err() error {
	return m.src.Err()
}

// close records the page in progress, if any
func (m *meteredSource) close() {
	if m.inPage > 0 {
		m.metrics.RecordActivityPage(m.inPage)
		m.inPage = 0
	}
}
