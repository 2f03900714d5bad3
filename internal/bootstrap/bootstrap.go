package bootstrap

import (
	"context"
	"net/http"

	"github.com/go-authgate/stravaexport/internal/config"
	"github.com/go-authgate/stravaexport/internal/core"
	"github.com/go-authgate/stravaexport/internal/models"
	"github.com/go-authgate/stravaexport/internal/services"
	"github.com/go-authgate/stravaexport/internal/store"
	"github.com/go-authgate/stravaexport/internal/strava"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB                   *store.Store
	MetricsRecorder      core.Recorder
	MetricsCache         core.Cache[int64]
	MetricsCacheCloser   func() error
	CSVCache             core.Cache[models.CSVFile]
	CSVCacheCloser       func() error
	RateLimitRedisClient *redis.Client

	// Persistence
	Sink       core.Sink
	CSVCounter core.MetricsStore

	// Strava and services
	StravaProvider *strava.Provider
	HistoryService *services.HistoryService
	ExportService  *services.ExportService

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application, blocking until shutdown
func Run(ctx context.Context, cfg *config.Config) error {
	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}

	app.startWithGracefulShutdown()
	return nil
}

// New validates configuration and wires every component without starting the server
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}

	// Phase 1: Validate configuration
	if err := validateAllConfiguration(cfg); err != nil {
		return nil, err
	}

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		app.closeInfrastructure()
		return nil, err
	}

	// Phase 3: Initialize business layer
	if err := app.initializeBusinessLayer(); err != nil {
		app.closeInfrastructure()
		return nil, err
	}

	// Phase 4: Initialize HTTP layer
	if err := app.initializeHTTPLayer(); err != nil {
		app.closeInfrastructure()
		return nil, err
	}

	return app, nil
}

// initializeInfrastructure sets up database, metrics, caches, and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Database (stored CSVs for the database backend, export history for both)
	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	// Metrics
	app.MetricsRecorder = initializeMetrics(app.Config)
	app.MetricsCache, app.MetricsCacheCloser, err = initializeMetricsCache(ctx, app.Config)
	if err != nil {
		return err
	}

	// CSV read cache
	app.CSVCache, app.CSVCacheCloser, err = initializeCSVCache(ctx, app.Config)
	if err != nil {
		return err
	}

	// Redis (for rate limiting)
	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(ctx, app.Config)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up the sink, the Strava provider and services
func (app *Application) initializeBusinessLayer() error {
	p, err := initializeSink(app.Config, app.DB, app.CSVCache)
	if err != nil {
		return err
	}
	app.Sink = p.sink
	app.CSVCounter = p.counter

	app.StravaProvider, err = initializeStravaProvider(app.Config)
	if err != nil {
		return err
	}

	app.HistoryService, app.ExportService = initializeServices(
		app.Config,
		app.DB,
		app.StravaProvider,
		app.Sink,
		app.MetricsRecorder,
	)

	app.HandlerSet = initializeHandlers(
		app.StravaProvider,
		app.ExportService,
		app.HistoryService,
		p,
		app.MetricsRecorder,
	)
	return nil
}

// initializeHTTPLayer sets up the router and server
func (app *Application) initializeHTTPLayer() error {
	var err error
	app.Router, err = setupRouter(
		app.Config,
		app.DB,
		app.HandlerSet,
		app.MetricsRecorder,
		app.RateLimitRedisClient,
	)
	if err != nil {
		return err
	}

	app.Server = createHTTPServer(app.Config, app.Router)
	return nil
}

// closeInfrastructure releases whatever was opened before a failed startup
func (app *Application) closeInfrastructure() {
	if app.HistoryService != nil {
		_ = app.HistoryService.Shutdown(context.Background())
	}
	if app.RateLimitRedisClient != nil {
		_ = app.RateLimitRedisClient.Close()
	}
	if app.CSVCacheCloser != nil {
		_ = app.CSVCacheCloser()
	}
	if app.MetricsCacheCloser != nil {
		_ = app.MetricsCacheCloser()
	}
	if app.DB != nil {
		_ = app.DB.Close()
	}
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	// Add jobs
	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Config, app.Server)
	addRedisClientShutdownJob(m, app.Config, app.RateLimitRedisClient)
	addHistoryCleanupJob(m, app.Config, app.HistoryService)
	addMetricsGaugeUpdateJob(
		m,
		app.Config,
		app.CSVCounter,
		app.MetricsRecorder,
		app.MetricsCache,
	)
	addCacheCleanupJob(m, app.Config, "Metrics cache", app.MetricsCacheCloser)
	addCacheCleanupJob(m, app.Config, "CSV cache", app.CSVCacheCloser)
	addDatabaseShutdownJob(m, app.Config, app.DB, app.HistoryService)

	// Wait for graceful shutdown
	<-m.Done()
}
