package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/go-authgate/stravaexport/internal/cache"
	"github.com/go-authgate/stravaexport/internal/config"
	"github.com/go-authgate/stravaexport/internal/core"
	"github.com/go-authgate/stravaexport/internal/metrics"
	"github.com/go-authgate/stravaexport/internal/models"
)

const (
	metricsCachePrefix = "stravaexport:metrics:"
	csvCachePrefix     = "stravaexport:csv:"
)

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) core.Recorder {
	prometheusMetrics := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return prometheusMetrics
}

// initializeMetricsCache initializes the cache in front of the stored CSV count.
// It shares Redis with the CSV cache when one is configured, memory otherwise.
func initializeMetricsCache(
	ctx context.Context,
	cfg *config.Config,
) (core.Cache[int64], func() error, error) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled {
		return nil, nil, nil
	}

	cacheType := config.CSVCacheTypeMemory
	switch cfg.CSVCacheType {
	case config.CSVCacheTypeRedis, config.CSVCacheTypeRedisAside:
		cacheType = cfg.CSVCacheType
	}

	return newCache[int64](ctx, cfg, cacheType, metricsCachePrefix, "Metrics cache")
}

// initializeCSVCache initializes the read cache in front of the sink.
// CSV_CACHE_TYPE=none returns a nil cache.
func initializeCSVCache(
	ctx context.Context,
	cfg *config.Config,
) (core.Cache[models.CSVFile], func() error, error) {
	if cfg.CSVCacheType == config.CSVCacheTypeNone || cfg.CSVCacheType == "" {
		log.Println("CSV cache: disabled")
		return nil, nil, nil
	}
	return newCache[models.CSVFile](ctx, cfg, cfg.CSVCacheType, csvCachePrefix, "CSV cache")
}

// newCache builds a cache of the requested type and returns it with its closer
func newCache[T any](
	ctx context.Context,
	cfg *config.Config,
	cacheType, prefix, label string,
) (core.Cache[T], func() error, error) {
	// Create timeout context for cache initialization
	ctx, cancel := context.WithTimeout(ctx, cfg.CacheInitTimeout)
	defer cancel()

	redisOpts := cache.RedisOptions{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		KeyPrefix: prefix,
	}

	switch cacheType {
	case config.CSVCacheTypeRedisAside:
		c, err := cache.NewRueidisAsideCache[T](
			ctx,
			redisOpts,
			cfg.CSVCacheClientTTL,
			cfg.CSVCacheSizeMB,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis-aside %s: %w", label, err)
		}
		log.Printf(
			"%s: redis-aside (addr=%s, db=%d, client_ttl=%s, cache_size_per_conn=%dMB)",
			label,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.CSVCacheClientTTL,
			cfg.CSVCacheSizeMB,
		)
		return c, c.Close, nil

	case config.CSVCacheTypeRedis:
		c, err := cache.NewRueidisCache[T](ctx, redisOpts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis %s: %w", label, err)
		}
		log.Printf("%s: redis (addr=%s, db=%d)", label, cfg.RedisAddr, cfg.RedisDB)
		return c, c.Close, nil

	default: // memory
		c := cache.NewMemoryCache[T](cache.WithMaxEntries(cfg.CSVCacheMaxEntries))
		log.Printf("%s: memory (single instance only, max_entries=%d)", label, cfg.CSVCacheMaxEntries)
		return c, c.Close, nil
	}
}
