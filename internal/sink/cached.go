package sink

import (
	"context"
	"log"
	"time"

	"github.com/go-authgate/stravaexport/internal/core"
	"github.com/go-authgate/stravaexport/internal/models"
)

const cacheKeyPrefix = "csv:"

var _ core.Sink = (*CachedSink)(nil)

// CachedSink fronts another sink with a read cache. Load is cache-aside,
// Save writes through and drops the cached entry.
type CachedSink struct {
	next  core.Sink
	cache core.Cache[models.CSVFile]
	ttl   time.Duration
}

func NewCachedSink(next core.Sink, cache core.Cache[models.CSVFile], ttl time.Duration) *CachedSink {
	return &CachedSink{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func (s *CachedSink) Name() string {
	return s.next.Name()
}

func (s *CachedSink) Save(ctx context.Context, userID, csvData string) error {
	if err := s.next.Save(ctx, userID, csvData); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKeyPrefix+userID); err != nil {
		log.Printf("[Sink] Failed to invalidate cached csv for user %s: %v", userID, err)
	}
	return nil
}

func (s *CachedSink) Load(ctx context.Context, userID string) (*models.CSVFile, error) {
	file, err := s.cache.GetWithFetch(
		ctx,
		cacheKeyPrefix+userID,
		s.ttl,
		func(ctx context.Context, _ string) (models.CSVFile, error) {
			f, err := s.next.Load(ctx, userID)
			if err != nil {
				return models.CSVFile{}, err
			}
			return *f, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}
