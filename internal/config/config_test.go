package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"ENV", "LOG_LEVEL", "DATA_PATH",
	"SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
	"CORS_ORIGINS", "RATE_LIMIT_PER_MINUTE", "TRUST_PROXY",
	"STORE_DRIVER", "SQLITE_PATH", "SPREADSHEET_ID",
	"GOOGLE_APPLICATION_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS_JSON",
	"CACHE_DRIVER", "CACHE_TTL", "CACHE_MAX_ENTRY_BYTES", "BADGER_PATH", "REDIS_ADDR", "REDIS_PREFIX",
	"CATEGORIES_PATH", "CATEGORIES_WATCH",
}

// clearEnv unsets every config key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key) //nolint:errcheck // Restored by t.Setenv
	}
}

// loadArgs points -env-file at an empty temp dir so a stray .env never leaks in.
func loadArgs(t *testing.T, args ...string) []string {
	t.Helper()
	return append([]string{"-env-file", filepath.Join(t.TempDir(), ".env"), "-data-path", t.TempDir()}, args...)
}

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development", DataPath: "/data"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{Port: "8080", WritesPerMinute: 60},
		Store:  StoreConfig{Driver: StoreSQLite, SQLitePath: "/data/knowledge.db"},
		Cache:  CacheConfig{Driver: CacheMemory, TTL: 6 * time.Hour},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_DriverPrerequisites(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"memory store", func(c *Config) { c.Store.Driver = StoreMemory }, ""},
		{"gsheets with id", func(c *Config) { c.Store.Driver = StoreGSheets; c.Store.SpreadsheetID = "abc" }, ""},
		{"gsheets without id", func(c *Config) { c.Store.Driver = StoreGSheets }, "SPREADSHEET_ID"},
		{"unknown store", func(c *Config) { c.Store.Driver = "excel" }, "invalid store driver"},
		{"redis with addr", func(c *Config) { c.Cache.Driver = CacheRedis; c.Cache.RedisAddr = "localhost:6379" }, ""},
		{"redis without addr", func(c *Config) { c.Cache.Driver = CacheRedis }, "REDIS_ADDR"},
		{"badger", func(c *Config) { c.Cache.Driver = CacheBadger; c.Cache.BadgerPath = "/data/cache" }, ""},
		{"unknown cache", func(c *Config) { c.Cache.Driver = "memcached" }, "invalid cache driver"},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, "cache TTL"},
		{"negative entry limit", func(c *Config) { c.Cache.MaxEntryBytes = -1 }, "CACHE_MAX_ENTRY_BYTES"},
		{"zero write budget", func(c *Config) { c.Server.WritesPerMinute = 0 }, "RATE_LIMIT_PER_MINUTE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(loadArgs(t))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 60, cfg.Server.WritesPerMinute)
	assert.Empty(t, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Server.TrustProxy)

	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, filepath.Join(cfg.App.DataPath, "knowledge.db"), cfg.Store.SQLitePath)

	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, filepath.Join(cfg.App.DataPath, "cache"), cfg.Cache.BadgerPath)
	assert.Equal(t, "knowledge:", cfg.Cache.RedisPrefix)

	assert.Empty(t, cfg.Categories.Path)
	assert.True(t, cfg.Categories.Watch)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(loadArgs(t, "-port", "9100"))
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_DRIVER", "memory")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# Local overrides
ENV=staging
STORE_DRIVER=memory
CACHE_DRIVER=redis
REDIS_ADDR=localhost:6379
CORS_ORIGINS="https://a.example.com, https://b.example.com"
RATE_LIMIT_PER_MINUTE=10
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	cfg, err := Load([]string{"-env-file", envFile, "-data-path", t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	// Variables already in the environment win over the file.
	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10, cfg.Server.WritesPerMinute)
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_TTL", "forever")

	_, err := Load(loadArgs(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_TTL")
}

func TestLoad_BareSecondsDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_READ_TIMEOUT", "5")

	cfg, err := Load(loadArgs(t))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_GSheetsWithoutSpreadsheetFails(t *testing.T) {
	clearEnv(t)

	_, err := Load(loadArgs(t, "-store", "gsheets"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestExpandPath_EmptyUsesDefault(t *testing.T) {
	got, err := expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)
}

func TestExpandPath_TildeExpansion(t *testing.T) {
	got, err := expandPath("~/my-data", "")
	require.NoError(t, err)

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, "my-data"), got)
}

func TestExpandPath_RelativePath(t *testing.T) {
	got, err := expandPath("relative/path", "")
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(got))
	assert.Contains(t, got, "relative/path")
}

func TestGetConfigValue_Precedence(t *testing.T) {
	assert.Equal(t, "flag-value", getConfigValue("flag-value", "TEST_ENV_KEY", "default-value"))

	t.Setenv("TEST_ENV_KEY", "env-value")
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default-value"))

	assert.Equal(t, "default-value", getConfigValue("", "NONEXISTENT_KEY", "default-value"))
}

func TestGetBoolConfigValue(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"YES", true},
		{"1", true},
		{"false", false},
		{"nope", false},
		{"", true}, // default
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL_KEY", tt.value)
			assert.Equal(t, tt.want, getBoolConfigValue("", "TEST_BOOL_KEY", true))
		})
	}
}

func TestGetIntConfigValue_InvalidFallsBack(t *testing.T) {
	t.Setenv("TEST_INT_KEY", "lots")
	assert.Equal(t, 7, getIntConfigValue("", "TEST_INT_KEY", 7))

	t.Setenv("TEST_INT_KEY", " 12 ")
	assert.Equal(t, 12, getIntConfigValue("", "TEST_INT_KEY", 7))
}
