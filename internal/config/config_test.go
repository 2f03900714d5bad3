package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		StravaClientID:     "12345",
		StravaClientSecret: "secret",
		StravaRedirectURI:  "http://localhost:3000/redirect",
		StorageBackend:     StorageBackendDatabase,
		CSVOutputDir:       "csv_files",
		RateLimitStore:     RateLimitStoreMemory,
		CSVCacheType:       CSVCacheTypeNone,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid database backend",
			mutate: func(c *Config) {},
		},
		{
			name: "valid file backend",
			mutate: func(c *Config) {
				c.StorageBackend = StorageBackendFile
			},
		},
		{
			name: "valid redis rate limit store",
			mutate: func(c *Config) {
				c.RateLimitStore = RateLimitStoreRedis
			},
		},
		{
			name: "valid redis-aside cache",
			mutate: func(c *Config) {
				c.CSVCacheType = CSVCacheTypeRedisAside
				c.CSVCacheTTL = time.Minute
			},
		},
		{
			name: "missing client id",
			mutate: func(c *Config) {
				c.StravaClientID = ""
			},
			expectError: true,
			errorMsg:    "STRAVA_CLIENT_ID is required",
		},
		{
			name: "missing client secret",
			mutate: func(c *Config) {
				c.StravaClientSecret = ""
			},
			expectError: true,
			errorMsg:    "STRAVA_CLIENT_SECRET is required",
		},
		{
			name: "missing redirect uri",
			mutate: func(c *Config) {
				c.StravaRedirectURI = ""
			},
			expectError: true,
			errorMsg:    "STRAVA_REDIRECT_URI is required",
		},
		{
			name: "invalid storage backend",
			mutate: func(c *Config) {
				c.StorageBackend = "s3"
			},
			expectError: true,
			errorMsg:    `invalid STORAGE_BACKEND value: "s3"`,
		},
		{
			name: "file backend without directory",
			mutate: func(c *Config) {
				c.StorageBackend = StorageBackendFile
				c.CSVOutputDir = ""
			},
			expectError: true,
			errorMsg:    "CSV_OUTPUT_DIR is required",
		},
		{
			name: "invalid store - typo",
			mutate: func(c *Config) {
				c.RateLimitStore = "reddis"
			},
			expectError: true,
			errorMsg:    `invalid RATE_LIMIT_STORE value: "reddis"`,
		},
		{
			name: "invalid store - uppercase",
			mutate: func(c *Config) {
				c.RateLimitStore = "MEMORY"
			},
			expectError: true,
			errorMsg:    `invalid RATE_LIMIT_STORE value: "MEMORY"`,
		},
		{
			name: "invalid cache type",
			mutate: func(c *Config) {
				c.CSVCacheType = "memcached"
			},
			expectError: true,
			errorMsg:    `invalid CSV_CACHE_TYPE value: "memcached"`,
		},
		{
			name: "cache without ttl",
			mutate: func(c *Config) {
				c.CSVCacheType = CSVCacheTypeMemory
				c.CSVCacheTTL = 0
			},
			expectError: true,
			errorMsg:    "CSV_CACHE_TTL must be positive",
		},
		{
			name: "negative strava timeout",
			mutate: func(c *Config) {
				c.StravaTimeout = -time.Second
			},
			expectError: true,
			errorMsg:    "STRAVA_TIMEOUT must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3002", cfg.ServerAddr)
	assert.Equal(t, StorageBackendDatabase, cfg.StorageBackend)
	assert.Equal(t, "csv_files", cfg.CSVOutputDir)
	assert.Equal(t, DefaultStravaTokenURL, cfg.StravaTokenURL)
	assert.Equal(t, DefaultStravaAPIURL, cfg.StravaAPIURL)
	assert.Equal(t, []string{"read", "activity:read_all"}, cfg.StravaScopes)
	assert.Equal(t, CSVCacheTypeNone, cfg.CSVCacheType)
	assert.Equal(t, time.Duration(0), cfg.StravaTimeout, "outbound calls have no timeout by default")
}

func TestDefaultTimeoutValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.DBInitTimeout, "DB init timeout should be 30s")
	assert.Equal(t, 5*time.Second, cfg.DBCloseTimeout, "DB close timeout should be 5s")
	assert.Equal(t, 5*time.Second, cfg.RedisConnTimeout, "Redis connection timeout should be 5s")
	assert.Equal(t, 5*time.Second, cfg.RedisCloseTimeout, "Redis close timeout should be 5s")
	assert.Equal(t, 5*time.Second, cfg.CacheInitTimeout, "Cache init timeout should be 5s")
	assert.Equal(t, 5*time.Second, cfg.CacheCloseTimeout, "Cache close timeout should be 5s")
	assert.Equal(t, 5*time.Second, cfg.ServerShutdownTimeout, "Server shutdown timeout should be 5s")
}

func TestLoad_LegacyCredentialNames(t *testing.T) {
	t.Setenv("REACT_APP_CLIENT_ID", "legacy-id")
	t.Setenv("CLIENT_SECRET", "legacy-secret")
	t.Setenv("REACT_APP_REDIRECT_URI", "http://localhost:3000/redirect")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "legacy-id", cfg.StravaClientID)
	assert.Equal(t, "legacy-secret", cfg.StravaClientSecret)
	assert.Equal(t, "http://localhost:3000/redirect", cfg.StravaRedirectURI)
}

func TestLoad_StravaNamesWinOverLegacy(t *testing.T) {
	t.Setenv("REACT_APP_CLIENT_ID", "legacy-id")
	t.Setenv("STRAVA_CLIENT_ID", "new-id")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "new-id", cfg.StravaClientID)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "file")
	t.Setenv("CSV_OUTPUT_DIR", "/tmp/exports")
	t.Setenv("STRAVA_TIMEOUT", "15s")
	t.Setenv("STRAVA_SCOPES", "read, activity:read")
	t.Setenv("ENABLE_RATE_LIMIT", "true")
	t.Setenv("EXPORT_RATE_LIMIT", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageBackendFile, cfg.StorageBackend)
	assert.Equal(t, "/tmp/exports", cfg.CSVOutputDir)
	assert.Equal(t, 15*time.Second, cfg.StravaTimeout)
	assert.Equal(t, []string{"read", "activity:read"}, cfg.StravaScopes)
	assert.True(t, cfg.EnableRateLimit)
	assert.Equal(t, 3, cfg.ExportRateLimit)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":8080"
strava:
  client_id: "from-file"
  scopes: ["read"]
  timeout: "20s"
storage:
  backend: file
  output_dir: exports
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	// Registering with t.Setenv restores the variables that applyFile sets.
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("STRAVA_CLIENT_ID", "")
	t.Setenv("STRAVA_SCOPES", "")
	t.Setenv("STRAVA_TIMEOUT", "")
	t.Setenv("CSV_OUTPUT_DIR", "")
	// Environment wins over the file.
	t.Setenv("STORAGE_BACKEND", "database")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "from-file", cfg.StravaClientID)
	assert.Equal(t, []string{"read"}, cfg.StravaScopes)
	assert.Equal(t, 20*time.Second, cfg.StravaTimeout)
	assert.Equal(t, "exports", cfg.CSVOutputDir)
	assert.Equal(t, StorageBackendDatabase, cfg.StorageBackend)
}

func TestLoad_ConfigFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))
		t.Setenv("CONFIG_FILE", path)

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config file")
	})
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , ,b ", ","))
	assert.Nil(t, splitAndTrim(" , ", ","))
}
