package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/go-authgate/stravaexport/internal/cache"
	"github.com/go-authgate/stravaexport/internal/config"
	"github.com/go-authgate/stravaexport/internal/metrics"
	"github.com/go-authgate/stravaexport/internal/mocks"
	"github.com/go-authgate/stravaexport/internal/models"
	"github.com/go-authgate/stravaexport/internal/sink"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	return &config.Config{
		ServerAddr:            ":0",
		BaseURL:               "http://localhost:3002",
		ServerShutdownTimeout: time.Second,
		SessionSecret:         "test-secret",
		SessionMaxAge:         600,
		CORSAllowedOrigins:    []string{"*"},

		StravaClientID:     "12345",
		StravaClientSecret: "secret",
		StravaRedirectURI:  "http://localhost:3000/redirect",
		StravaScopes:       []string{"read", "activity:read_all"},
		StravaAuthURL:      config.DefaultStravaAuthURL,
		StravaTokenURL:     config.DefaultStravaTokenURL,
		StravaAPIURL:       config.DefaultStravaAPIURL,

		StorageBackend: backend,
		CSVOutputDir:   t.TempDir(),

		DatabaseDriver: "sqlite",
		DatabaseDSN:    ":memory:",
		DBInitTimeout:  5 * time.Second,
		DBCloseTimeout: time.Second,

		CSVCacheType:     config.CSVCacheTypeNone,
		CSVCacheTTL:      time.Minute,
		CacheInitTimeout: time.Second,

		RateLimitStore:           config.RateLimitStoreMemory,
		ExportRateLimit:          10,
		RateLimitCleanupInterval: time.Minute,

		ExportHistoryEnabled:    true,
		ExportHistoryBufferSize: 10,
		ExportHistoryRetention:  24 * time.Hour,

		MetricsGaugeUpdateInterval: time.Minute,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	app, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(app.closeInfrastructure)
	return app
}

func serve(app *Application, method, path string, header http.Header) *httptest.ResponseRecorder {
	req, _ := http.NewRequestWithContext(context.Background(), method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func TestValidateRateLimitConfig(t *testing.T) {
	assert.NoError(t, validateRateLimitConfig(&config.Config{EnableRateLimit: false}))
	assert.NoError(t, validateRateLimitConfig(&config.Config{
		EnableRateLimit: true,
		RateLimitStore:  config.RateLimitStoreMemory,
		ExportRateLimit: 5,
	}))

	err := validateRateLimitConfig(&config.Config{EnableRateLimit: true, ExportRateLimit: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXPORT_RATE_LIMIT must be positive")

	err = validateRateLimitConfig(&config.Config{
		EnableRateLimit: true,
		RateLimitStore:  config.RateLimitStoreRedis,
		ExportRateLimit: 5,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_ADDR is required")
}

func TestValidateAllConfiguration(t *testing.T) {
	cfg := testConfig(t, config.StorageBackendFile)
	require.NoError(t, validateAllConfiguration(cfg))

	cfg.StravaClientSecret = ""
	err := validateAllConfiguration(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRAVA_CLIENT_SECRET is required")
}

func TestInitializeMetrics(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		cfg := &config.Config{MetricsEnabled: enabled}
		m := initializeMetrics(cfg)
		require.NotNil(t, m)
	}
}

func TestInitializeMetricsCacheDisabled(t *testing.T) {
	ctx := context.Background()

	// Metrics disabled - no cache
	c, closer, err := initializeMetricsCache(
		ctx,
		&config.Config{MetricsEnabled: false, MetricsGaugeUpdateEnabled: true},
	)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Nil(t, closer)

	// Gauge updates disabled - no cache
	c, closer, err = initializeMetricsCache(
		ctx,
		&config.Config{MetricsEnabled: true, MetricsGaugeUpdateEnabled: false},
	)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Nil(t, closer)
}

func TestInitializeMetricsCacheMemory(t *testing.T) {
	cfg := &config.Config{
		MetricsEnabled:            true,
		MetricsGaugeUpdateEnabled: true,
		CSVCacheType:              config.CSVCacheTypeNone,
		CacheInitTimeout:          time.Second,
	}
	c, closer, err := initializeMetricsCache(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, c)
	require.NotNil(t, closer)
	assert.IsType(t, &cache.MemoryCache[int64]{}, c)
	_ = closer()
}

func TestInitializeCSVCache(t *testing.T) {
	ctx := context.Background()

	c, closer, err := initializeCSVCache(ctx, &config.Config{CSVCacheType: config.CSVCacheTypeNone})
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Nil(t, closer)

	c, closer, err = initializeCSVCache(ctx, &config.Config{
		CSVCacheType:     config.CSVCacheTypeMemory,
		CacheInitTimeout: time.Second,
	})
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.IsType(t, &cache.MemoryCache[models.CSVFile]{}, c)
	_ = closer()

	_, _, err = initializeCSVCache(ctx, &config.Config{
		CSVCacheType:     config.CSVCacheTypeRedis,
		RedisAddr:        "127.0.0.1:1",
		CacheInitTimeout: 200 * time.Millisecond,
	})
	assert.Error(t, err)
}

func TestInitializeSink(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		cfg := testConfig(t, config.StorageBackendFile)
		p, err := initializeSink(cfg, nil, nil)
		require.NoError(t, err)
		assert.IsType(t, &sink.FileSink{}, p.sink)
		assert.Nil(t, p.lister)
		assert.True(t, p.rawGet)
		assert.NotNil(t, p.counter)
	})

	t.Run("database with cache", func(t *testing.T) {
		cfg := testConfig(t, config.StorageBackendDatabase)
		db, err := initializeDatabase(context.Background(), cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		p, err := initializeSink(cfg, db, cache.NewMemoryCache[models.CSVFile]())
		require.NoError(t, err)
		assert.IsType(t, &sink.CachedSink{}, p.sink)
		assert.Equal(t, config.StorageBackendDatabase, p.sink.Name())
		// Listing bypasses the cache and goes to the base sink
		assert.IsType(t, &sink.DatabaseSink{}, p.lister)
		assert.False(t, p.rawGet)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := testConfig(t, "s3")
		_, err := initializeSink(cfg, nil, nil)
		assert.Error(t, err)
	})
}

func TestNew_FileBackend(t *testing.T) {
	app := newTestApp(t, testConfig(t, config.StorageBackendFile))

	w := serve(app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"connected"}`, w.Body.String())

	// File backend cannot list stored CSVs
	w = serve(app, http.MethodGet, "/api/csvfiles", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(app, http.MethodGet, "/api/csvfiles/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "CSV file not found")

	w = serve(app, http.MethodGet, "/api/exports", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Metrics disabled by default
	w = serve(app, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNew_DatabaseBackend(t *testing.T) {
	app := newTestApp(t, testConfig(t, config.StorageBackendDatabase))

	w := serve(app, http.MethodGet, "/api/csvfiles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	_, err := app.DB.UpsertCSVFile(context.Background(), "5", "data")
	require.NoError(t, err)

	w = serve(app, http.MethodGet, "/api/csvfiles/5/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "data", w.Body.String())
}

func TestNew_LoginRedirectsToStrava(t *testing.T) {
	app := newTestApp(t, testConfig(t, config.StorageBackendFile))

	w := serve(app, http.MethodGet, "/auth/strava/login", nil)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), config.DefaultStravaAuthURL))
	assert.Contains(t, w.Header().Get("Set-Cookie"), sessionName+"=")
}

func TestNew_InvalidConfiguration(t *testing.T) {
	cfg := testConfig(t, config.StorageBackendFile)
	cfg.StravaClientID = ""

	app, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, app)
}

func TestNew_InvalidCORSOrigin(t *testing.T) {
	cfg := testConfig(t, config.StorageBackendFile)
	cfg.CORSAllowedOrigins = []string{"example.com"}

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ALLOWED_ORIGINS")
}

func TestNew_CORSPreflight(t *testing.T) {
	cfg := testConfig(t, config.StorageBackendFile)
	cfg.CORSAllowedOrigins = []string{"http://localhost:3000"}
	app := newTestApp(t, cfg)

	w := serve(app, http.MethodOptions, "/api/open", http.Header{
		"Origin":                        {"http://localhost:3000"},
		"Access-Control-Request-Method": {http.MethodPost},
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(app, http.MethodOptions, "/api/open", http.Header{
		"Origin":                        {"http://evil.example"},
		"Access-Control-Request-Method": {http.MethodPost},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNew_ExportRateLimit(t *testing.T) {
	cfg := testConfig(t, config.StorageBackendFile)
	cfg.EnableRateLimit = true
	cfg.ExportRateLimit = 1
	app := newTestApp(t, cfg)

	// No body: the handler answers 400 without contacting Strava
	w := serve(app, http.MethodPost, "/api/open", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(app, http.MethodPost, "/api/open", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests. Please try again later."}`, w.Body.String())

	// The callback is counted separately
	w = serve(app, http.MethodGet, "/auth/strava/callback?state=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNew_MetricsEndpointWithToken(t *testing.T) {
	cfg := testConfig(t, config.StorageBackendFile)
	cfg.MetricsEnabled = true
	cfg.MetricsToken = "scrape"
	app := newTestApp(t, cfg)

	w := serve(app, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(app, http.MethodGet, "/metrics", http.Header{"Authorization": {"Bearer scrape"}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateGaugeMetricsWithCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMetricsStore(ctrl)
	recorder := mocks.NewMockRecorder(ctrl)
	wrapper := metrics.NewCacheWrapper(store, cache.NewMemoryCache[int64]())

	// Second call is served from the cache
	store.EXPECT().CountCSVFiles().Return(int64(3), nil).Times(1)
	recorder.EXPECT().SetStoredCSVFilesCount(3).Times(2)

	updateGaugeMetricsWithCache(context.Background(), wrapper, recorder, time.Minute)
	updateGaugeMetricsWithCache(context.Background(), wrapper, recorder, time.Minute)
}

func TestUpdateGaugeMetricsWithCache_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMetricsStore(ctrl)
	recorder := mocks.NewMockRecorder(ctrl)
	wrapper := metrics.NewCacheWrapper(store, cache.NewMemoryCache[int64]())

	store.EXPECT().CountCSVFiles().Return(int64(0), errors.New("disk gone"))
	recorder.EXPECT().RecordDatabaseQueryError("count_csv_files")
	recorder.EXPECT().SetStoredCSVFilesCount(gomock.Any()).Times(0)

	updateGaugeMetricsWithCache(context.Background(), wrapper, recorder, time.Minute)
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}
