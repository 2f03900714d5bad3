package bootstrap

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-authgate/stravaexport/internal/config"
)

const defaultSessionSecret = "session-secret-change-in-production"

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validateRateLimitConfig(cfg); err != nil {
		return fmt.Errorf("invalid rate limit configuration: %w", err)
	}
	warnConfiguration(cfg)
	return nil
}

// validateRateLimitConfig checks limits only when rate limiting is on
func validateRateLimitConfig(cfg *config.Config) error {
	if !cfg.EnableRateLimit {
		return nil
	}
	if cfg.ExportRateLimit <= 0 {
		return fmt.Errorf("EXPORT_RATE_LIMIT must be positive, got %d", cfg.ExportRateLimit)
	}
	if cfg.RateLimitStore == config.RateLimitStoreRedis && cfg.RedisAddr == "" {
		return errors.New("REDIS_ADDR is required when RATE_LIMIT_STORE=redis")
	}
	return nil
}

// warnConfiguration logs settings that work but are unsafe in production
func warnConfiguration(cfg *config.Config) {
	if cfg.IsProduction && cfg.SessionSecret == defaultSessionSecret {
		log.Println("WARNING: SESSION_SECRET is the default value; set a random secret in production")
	}
	if cfg.MetricsEnabled && cfg.MetricsToken == "" && cfg.IsProduction {
		log.Println("WARNING: /metrics is exposed without authentication (METRICS_TOKEN is empty)")
	}
	if cfg.StravaTimeout == 0 {
		log.Println("Strava requests have no timeout (STRAVA_TIMEOUT=0)")
	}
}
