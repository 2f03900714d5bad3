package bootstrap

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-authgate/stravaexport/internal/config"
	"github.com/go-authgate/stravaexport/internal/core"
	"github.com/go-authgate/stravaexport/internal/metrics"
	"github.com/go-authgate/stravaexport/internal/middleware"
	"github.com/go-authgate/stravaexport/internal/store"
	"github.com/go-authgate/stravaexport/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const sessionName = "strava_session"

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	h handlerSet,
	prometheusMetrics core.Recorder,
	rateLimitRedisClient *redis.Client,
) (*gin.Engine, error) {
	// Setup Gin mode
	setupGinMode(cfg)
	r := gin.New()

	// Setup middleware
	r.Use(metrics.HTTPMetricsMiddleware(prometheusMetrics))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	corsMiddleware, err := newCORSMiddleware(cfg)
	if err != nil {
		return nil, err
	}
	r.Use(corsMiddleware)

	// Setup session middleware (OAuth state for the consent flow)
	setupSessionMiddleware(r, cfg)

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db))

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg)

	// Setup rate limiting
	rateLimiters, err := setupRateLimiting(cfg, rateLimitRedisClient)
	if err != nil {
		return nil, err
	}

	// Setup all routes
	setupAllRoutes(r, h, rateLimiters)

	// Log server startup info
	logServerStartup(cfg, h)

	return r, nil
}

// newCORSMiddleware allows the browser front end to call the JSON API
func newCORSMiddleware(cfg *config.Config) (gin.HandlerFunc, error) {
	corsConfig := cors.Config{
		AllowOrigins:  cfg.CORSAllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if err := corsConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid CORS_ALLOWED_ORIGINS: %w", err)
	}
	return cors.New(corsConfig), nil
}

// setupSessionMiddleware configures session handling middleware
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	h handlerSet,
	rateLimiters rateLimitMiddlewares,
) {
	api := r.Group("/api")
	{
		// Export
		api.POST("/open", rateLimiters.open, h.export.Open)

		// Stored CSVs
		if h.csvFile.CanList() {
			api.GET("/csvfiles", h.csvFile.List)
		}
		api.GET("/csvfiles/:userId", h.csvFile.Get)
		api.GET("/csvfiles/:userId/download", h.csvFile.Download)

		// Export history
		api.GET("/exports", h.history.ListRuns)
		api.GET("/exports/:id", h.history.GetRun)
	}

	// Server-side consent flow
	strava := r.Group("/auth/strava")
	{
		strava.GET("/login", h.oauth.Login)
		strava.GET("/callback", rateLimiters.callback, h.oauth.Callback)
	}
}

// createHealthCheckHandler reports database connectivity
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := db.Health(); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	mode := ginModeMap[cfg.IsProduction]
	gin.SetMode(mode)
	log.Printf("Gin mode: %s", ginModeLogMessage[cfg.IsProduction])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config, h handlerSet) {
	log.Printf("Strava export server starting on %s", cfg.ServerAddr)
	log.Printf("Storage backend: %s", cfg.StorageBackend)
	log.Printf("Consent flow: %s/auth/strava/login", cfg.BaseURL)
	if !h.csvFile.CanList() {
		log.Printf("GET /api/csvfiles disabled (backend cannot list stored files)")
	}
}
