package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-authgate/stravaexport/internal/config"
	"github.com/go-authgate/stravaexport/internal/core"
	"github.com/go-authgate/stravaexport/internal/metrics"
	"github.com/go-authgate/stravaexport/internal/services"
	"github.com/go-authgate/stravaexport/internal/store"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
)

// createHTTPServer creates the HTTP server instance.
// WriteTimeout is left unset: an export walks every activity page before answering.
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, cfg *config.Config, srv *http.Server) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(m *graceful.Manager, cfg *config.Config, redisClient *redis.Client) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		log.Println("Closing Redis connection...")
		if err := closeWithTimeout(redisClient.Close, cfg.RedisCloseTimeout); err != nil {
			log.Printf("Error closing Redis client: %v", err)
			return err
		}
		log.Println("Redis connection closed")
		return nil
	})
}

// addHistoryCleanupJob adds periodic export history cleanup job
func addHistoryCleanupJob(
	m *graceful.Manager,
	cfg *config.Config,
	historyService *services.HistoryService,
) {
	if !cfg.ExportHistoryEnabled || cfg.ExportHistoryRetention <= 0 {
		return
	}

	cleanup := func() {
		if deleted, err := historyService.CleanupOldRuns(cfg.ExportHistoryRetention); err != nil {
			log.Printf("Failed to cleanup old export runs: %v", err)
		} else if deleted > 0 {
			log.Printf("Cleaned up %d old export runs", deleted)
		}
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		// Run cleanup immediately on startup
		cleanup()

		for {
			select {
			case <-ticker.C:
				cleanup()
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addMetricsGaugeUpdateJob adds periodic metrics gauge update job
func addMetricsGaugeUpdateJob(
	m *graceful.Manager,
	cfg *config.Config,
	counter core.MetricsStore,
	prometheusMetrics core.Recorder,
	metricsCache core.Cache[int64],
) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled || metricsCache == nil {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.MetricsGaugeUpdateInterval)
		defer ticker.Stop()

		cacheWrapper := metrics.NewCacheWrapper(counter, metricsCache)

		// Update immediately on startup
		updateGaugeMetricsWithCache(
			ctx,
			cacheWrapper,
			prometheusMetrics,
			cfg.MetricsGaugeUpdateInterval,
		)

		for {
			select {
			case <-ticker.C:
				updateGaugeMetricsWithCache(
					ctx,
					cacheWrapper,
					prometheusMetrics,
					cfg.MetricsGaugeUpdateInterval,
				)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addCacheCleanupJob adds cache cleanup on shutdown
func addCacheCleanupJob(
	m *graceful.Manager,
	cfg *config.Config,
	name string,
	closer func() error,
) {
	if closer == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := closeWithTimeout(closer, cfg.CacheCloseTimeout); err != nil {
			log.Printf("Error closing %s: %v", name, err)
		} else {
			log.Printf("%s closed", name)
		}
		return nil
	})
}

// addDatabaseShutdownJob flushes queued export runs, then closes the database.
// Both happen in one job because shutdown jobs run concurrently.
func addDatabaseShutdownJob(
	m *graceful.Manager,
	cfg *config.Config,
	db *store.Store,
	historyService *services.HistoryService,
) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down export history...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := historyService.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down export history: %v", err)
		}

		if err := closeWithTimeout(db.Close, cfg.DBCloseTimeout); err != nil {
			log.Printf("Error closing database: %v", err)
			return err
		}
		log.Println("Database connection closed")
		return nil
	})
}

// closeWithTimeout runs closer and gives up after timeout. A non-positive
// timeout waits for closer to return.
func closeWithTimeout(closer func() error, timeout time.Duration) error {
	if timeout <= 0 {
		return closer()
	}

	done := make(chan error, 1)
	go func() { done <- closer() }()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("close timed out after %s: %w", timeout, context.DeadlineExceeded)
	}
}

// errorLogger handles rate-limited error logging
type errorLogger struct {
	mu              sync.Mutex
	lastErrorTimes  map[string]time.Time
	rateLimitWindow time.Duration
}

// newErrorLogger creates a new error logger with rate limiting
func newErrorLogger() *errorLogger {
	return &errorLogger{
		lastErrorTimes:  make(map[string]time.Time),
		rateLimitWindow: 5 * time.Minute, // Log at most once per 5 minutes per operation
	}
}

// logIfNeeded logs an error only if rate limit allows
func (e *errorLogger) logIfNeeded(operation string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	lastTime, exists := e.lastErrorTimes[operation]

	if !exists || now.Sub(lastTime) >= e.rateLimitWindow {
		log.Printf("Count query failed for %s: %v (further errors will be suppressed for %v)",
			operation, err, e.rateLimitWindow)
		e.lastErrorTimes[operation] = now
	}
}

var gaugeErrorLogger = newErrorLogger()

// updateGaugeMetricsWithCache refreshes the stored CSV gauge through the cache,
// so several instances sharing Redis do not all hit the backend each interval.
func updateGaugeMetricsWithCache(
	ctx context.Context,
	cacheWrapper *metrics.CacheWrapper,
	m core.Recorder,
	cacheTTL time.Duration,
) {
	stored, err := cacheWrapper.GetStoredCSVFilesCount(ctx, cacheTTL)
	if err != nil {
		m.RecordDatabaseQueryError("count_csv_files")
		gaugeErrorLogger.logIfNeeded("count_csv_files", err)
		return
	}
	m.SetStoredCSVFilesCount(int(stored))
}
