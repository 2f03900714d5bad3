package bootstrap

import (
	"fmt"
	"log"

	"github.com/go-authgate/stravaexport/internal/config"
	"github.com/go-authgate/stravaexport/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitMiddlewares holds rate limiting middlewares for the export entry points
type rateLimitMiddlewares struct {
	open     gin.HandlerFunc
	callback gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration.
// redisClient is nil unless RATE_LIMIT_STORE=redis.
func setupRateLimiting(
	cfg *config.Config,
	redisClient *redis.Client,
) (rateLimitMiddlewares, error) {
	if !cfg.EnableRateLimit {
		noOpMiddleware := func(c *gin.Context) { c.Next() }
		return rateLimitMiddlewares{
			open:     noOpMiddleware,
			callback: noOpMiddleware,
		}, nil
	}
	return createRateLimiters(cfg, redisClient)
}

// createRateLimiters creates one limiter per export entry point so that the
// JSON API and the consent callback are counted separately.
func createRateLimiters(
	cfg *config.Config,
	redisClient *redis.Client,
) (rateLimitMiddlewares, error) {
	log.Printf(
		"Rate limiting enabled (store: %s, %d requests/min per IP)",
		cfg.RateLimitStore,
		cfg.ExportRateLimit,
	)

	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)
	if storeType == middleware.RateLimitStoreRedis {
		log.Printf("Using shared Redis client for rate limiting")
	} else {
		log.Printf("In-memory rate limiting configured (single instance only)")
	}

	createLimiter := func(endpoint, prefix string) (gin.HandlerFunc, error) {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.ExportRateLimit,
			StoreType:         storeType,
			RedisClient:       redisClient,
			CleanupInterval:   cfg.RateLimitCleanupInterval,
			Prefix:            prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter for %s: %w", endpoint, err)
		}
		return limiter, nil
	}

	open, err := createLimiter("/api/open", "ratelimit:open")
	if err != nil {
		return rateLimitMiddlewares{}, err
	}
	callback, err := createLimiter("/auth/strava/callback", "ratelimit:callback")
	if err != nil {
		return rateLimitMiddlewares{}, err
	}

	return rateLimitMiddlewares{
		open:     open,
		callback: callback,
	}, nil
}
