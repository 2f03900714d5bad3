package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backend constants
const (
	StorageBackendFile     = "file"
	StorageBackendDatabase = "database"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// CSV cache type constants
const (
	CSVCacheTypeNone       = "none"
	CSVCacheTypeMemory     = "memory"
	CSVCacheTypeRedis      = "redis"
	CSVCacheTypeRedisAside = "redis-aside"
)

// Strava endpoints
const (
	DefaultStravaAuthURL  = "https://www.strava.com/oauth/authorize"
	DefaultStravaTokenURL = "https://www.strava.com/api/v3/oauth/token"
	DefaultStravaAPIURL   = "https://www.strava.com/api/v3"
)

type Config struct {
	// Server settings
	ServerAddr            string
	BaseURL               string
	IsProduction          bool
	ServerShutdownTimeout time.Duration

	// Session settings (OAuth state for the server-side consent flow)
	SessionSecret string
	SessionMaxAge int // seconds

	// CORS
	CORSAllowedOrigins []string

	// Strava OAuth application
	StravaClientID     string
	StravaClientSecret string
	StravaRedirectURI  string
	StravaScopes       []string
	StravaAuthURL      string
	StravaTokenURL     string
	StravaAPIURL       string

	// Outbound HTTP client
	StravaTimeout            time.Duration // 0 means no timeout
	StravaInsecureSkipVerify bool

	// Persistence
	StorageBackend string // "file" or "database"
	CSVOutputDir   string

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)
	DBInitTimeout  time.Duration
	DBCloseTimeout time.Duration

	// CSV read cache
	CSVCacheType       string // "none", "memory", "redis", "redis-aside"
	CSVCacheTTL        time.Duration
	CSVCacheClientTTL  time.Duration // redis-aside local TTL
	CSVCacheSizeMB     int           // redis-aside per-connection cache size
	CSVCacheMaxEntries int           // memory cache bound, 0 for unbounded
	CacheInitTimeout   time.Duration
	CacheCloseTimeout  time.Duration

	// Redis (rate limiting and cache)
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisConnTimeout  time.Duration
	RedisCloseTimeout time.Duration

	// Rate limiting (inbound export routes)
	EnableRateLimit          bool
	RateLimitStore           string // "memory" or "redis"
	ExportRateLimit          int    // requests per minute per IP
	RateLimitCleanupInterval time.Duration

	// Export history
	ExportHistoryEnabled    bool
	ExportHistoryBufferSize int
	ExportHistoryRetention  time.Duration // 0 keeps runs forever

	// Metrics
	MetricsEnabled             bool
	MetricsToken               string
	MetricsGaugeUpdateEnabled  bool
	MetricsGaugeUpdateInterval time.Duration
}

// fileConfig is the subset of settings accepted from a YAML file.
// Environment variables take precedence over values in the file.
type fileConfig struct {
	Server struct {
		Addr    string `yaml:"addr"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`
	Strava struct {
		ClientID    string   `yaml:"client_id"`
		RedirectURI string   `yaml:"redirect_uri"`
		Scopes      []string `yaml:"scopes"`
		Timeout     string   `yaml:"timeout"`
	} `yaml:"strava"`
	Storage struct {
		Backend   string `yaml:"backend"`
		OutputDir string `yaml:"output_dir"`
	} `yaml:"storage"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
}

// Load reads configuration from .env, an optional YAML file (CONFIG_FILE)
// and the process environment, in increasing order of precedence.
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(path); err != nil {
			return nil, err
		}
	}

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "database.sqlite"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:   getEnv("SERVER_ADDR", ":3002"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:3002"),
		IsProduction: getEnv("ENVIRONMENT", "development") == "production",
		ServerShutdownTimeout: getEnvDuration(
			"SERVER_SHUTDOWN_TIMEOUT",
			5*time.Second,
		),
		SessionSecret: getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 600),

		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		// Strava OAuth application (no defaults for credentials)
		StravaClientID: getEnv("STRAVA_CLIENT_ID", getEnv("REACT_APP_CLIENT_ID", "")),
		StravaClientSecret: getEnv(
			"STRAVA_CLIENT_SECRET",
			getEnv("CLIENT_SECRET", ""),
		),
		StravaRedirectURI: getEnv(
			"STRAVA_REDIRECT_URI",
			getEnv("REACT_APP_REDIRECT_URI", ""),
		),
		StravaScopes:   getEnvSlice("STRAVA_SCOPES", []string{"read", "activity:read_all"}),
		StravaAuthURL:  getEnv("STRAVA_AUTH_URL", DefaultStravaAuthURL),
		StravaTokenURL: getEnv("STRAVA_TOKEN_URL", DefaultStravaTokenURL),
		StravaAPIURL:   getEnv("STRAVA_API_URL", DefaultStravaAPIURL),

		StravaTimeout:            getEnvDuration("STRAVA_TIMEOUT", 0),
		StravaInsecureSkipVerify: getEnvBool("STRAVA_INSECURE_SKIP_VERIFY", false),

		// Persistence
		StorageBackend: getEnv("STORAGE_BACKEND", StorageBackendDatabase),
		CSVOutputDir:   getEnv("CSV_OUTPUT_DIR", "csv_files"),

		// Database
		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		DBInitTimeout:  getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),
		DBCloseTimeout: getEnvDuration("DB_CLOSE_TIMEOUT", 5*time.Second),

		// CSV read cache
		CSVCacheType:       getEnv("CSV_CACHE_TYPE", CSVCacheTypeNone),
		CSVCacheTTL:        getEnvDuration("CSV_CACHE_TTL", 5*time.Minute),
		CSVCacheClientTTL:  getEnvDuration("CSV_CACHE_CLIENT_TTL", 30*time.Second),
		CSVCacheSizeMB:     getEnvInt("CSV_CACHE_SIZE_PER_CONN", 32),
		CSVCacheMaxEntries: getEnvInt("CSV_CACHE_MAX_ENTRIES", 1000),
		CacheInitTimeout:   getEnvDuration("CACHE_INIT_TIMEOUT", 5*time.Second),
		CacheCloseTimeout:  getEnvDuration("CACHE_CLOSE_TIMEOUT", 5*time.Second),

		// Redis
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisConnTimeout:  getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),
		RedisCloseTimeout: getEnvDuration("REDIS_CLOSE_TIMEOUT", 5*time.Second),

		// Rate limiting
		EnableRateLimit:          getEnvBool("ENABLE_RATE_LIMIT", false),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		ExportRateLimit:          getEnvInt("EXPORT_RATE_LIMIT", 10),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),

		// Export history
		ExportHistoryEnabled:    getEnvBool("EXPORT_HISTORY_ENABLED", true),
		ExportHistoryBufferSize: getEnvInt("EXPORT_HISTORY_BUFFER_SIZE", 1000),
		ExportHistoryRetention: getEnvDuration(
			"EXPORT_HISTORY_RETENTION",
			90*24*time.Hour,
		),

		// Metrics
		MetricsEnabled:            getEnvBool("METRICS_ENABLED", false),
		MetricsToken:              getEnv("METRICS_TOKEN", ""),
		MetricsGaugeUpdateEnabled: getEnvBool("METRICS_GAUGE_UPDATE_ENABLED", true),
		MetricsGaugeUpdateInterval: getEnvDuration(
			"METRICS_GAUGE_UPDATE_INTERVAL",
			5*time.Minute,
		),
	}, nil
}

// applyFile copies values from the YAML file into the environment for keys
// that are not already set, so the regular getEnv lookups pick them up.
func applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	defaults := map[string]string{
		"SERVER_ADDR":         fc.Server.Addr,
		"BASE_URL":            fc.Server.BaseURL,
		"STRAVA_CLIENT_ID":    fc.Strava.ClientID,
		"STRAVA_REDIRECT_URI": fc.Strava.RedirectURI,
		"STRAVA_SCOPES":       strings.Join(fc.Strava.Scopes, ","),
		"STRAVA_TIMEOUT":      fc.Strava.Timeout,
		"STORAGE_BACKEND":     fc.Storage.Backend,
		"CSV_OUTPUT_DIR":      fc.Storage.OutputDir,
		"DATABASE_DRIVER":     fc.Database.Driver,
		"DATABASE_DSN":        fc.Database.DSN,
	}
	for key, value := range defaults {
		if value == "" || os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("apply %s from config file: %w", key, err)
		}
	}
	return nil
}

// Validate checks enumerated settings and required Strava credentials.
func (c *Config) Validate() error {
	var errs []error

	if c.StravaClientID == "" {
		errs = append(errs, errors.New("STRAVA_CLIENT_ID is required"))
	}
	if c.StravaClientSecret == "" {
		errs = append(errs, errors.New("STRAVA_CLIENT_SECRET is required"))
	}
	if c.StravaRedirectURI == "" {
		errs = append(errs, errors.New("STRAVA_REDIRECT_URI is required"))
	}

	switch c.StorageBackend {
	case StorageBackendFile:
		if c.CSVOutputDir == "" {
			errs = append(errs, errors.New("CSV_OUTPUT_DIR is required when STORAGE_BACKEND=file"))
		}
	case StorageBackendDatabase:
	default:
		errs = append(errs, fmt.Errorf(
			"invalid STORAGE_BACKEND value: %q (must be %q or %q)",
			c.StorageBackend, StorageBackendFile, StorageBackendDatabase,
		))
	}

	if c.RateLimitStore != RateLimitStoreMemory && c.RateLimitStore != RateLimitStoreRedis {
		errs = append(errs, fmt.Errorf(
			"invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore, RateLimitStoreMemory, RateLimitStoreRedis,
		))
	}

	switch c.CSVCacheType {
	case CSVCacheTypeNone:
	case CSVCacheTypeMemory, CSVCacheTypeRedis, CSVCacheTypeRedisAside:
		if c.CSVCacheTTL <= 0 {
			errs = append(errs, fmt.Errorf("CSV_CACHE_TTL must be positive, got %s", c.CSVCacheTTL))
		}
		if c.CSVCacheMaxEntries < 0 {
			errs = append(errs, fmt.Errorf(
				"CSV_CACHE_MAX_ENTRIES must not be negative, got %d", c.CSVCacheMaxEntries,
			))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"invalid CSV_CACHE_TYPE value: %q (must be none, memory, redis, redis-aside)",
			c.CSVCacheType,
		))
	}

	if c.StravaTimeout < 0 {
		errs = append(errs, fmt.Errorf("STRAVA_TIMEOUT must not be negative, got %s", c.StravaTimeout))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		if parts := splitAndTrim(value, ","); len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
