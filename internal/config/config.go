// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreSQLite  = "sqlite"
	StoreMemory  = "memory"
	StoreGSheets = "gsheets"
)

// Cache drivers.
const (
	CacheMemory = "memory"
	CacheBadger = "badger"
	CacheRedis  = "redis"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Server     ServerConfig
	Store      StoreConfig
	Cache      CacheConfig
	Categories CategoriesConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	// DataPath holds the SQLite database and the Badger cache directory.
	DataPath string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port            string        // Server port (default: 8080)
	ReadTimeout     time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout    time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout     time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins     []string      // Allowed origins; empty allows any
	WritesPerMinute int           // Per-IP budget for POST/PUT/DELETE (default: 60)
	TrustProxy      bool          // Take the client IP from X-Forwarded-For / X-Real-IP
}

// StoreConfig selects and configures the table store.
type StoreConfig struct {
	Driver          string
	SQLitePath      string // Defaults to {data}/knowledge.db
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
}

// CacheConfig selects and configures the list cache backend.
type CacheConfig struct {
	Driver        string
	TTL           time.Duration
	MaxEntryBytes int    // Memory driver only; 0 disables the limit
	BadgerPath    string // Defaults to {data}/cache
	RedisAddr     string
	RedisPrefix   string
}

// CategoriesConfig points at an optional category override file.
type CategoriesConfig struct {
	Path  string
	Watch bool
}

// LoadConfig loads configuration from the process arguments. See Load.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("knowledge-server", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for local data (default: ~/KnowledgeBoard)")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins")
	writesPerMinute := fs.String("rate-limit-per-minute", "", "Per-IP write requests per minute (default: 60)")
	trustProxy := fs.String("trust-proxy", "", "Trust X-Forwarded-For / X-Real-IP from a reverse proxy (default: false)")

	// Store flags
	storeDriver := fs.String("store", "", "Table store driver: sqlite, memory, gsheets (default: sqlite)")
	spreadsheetID := fs.String("spreadsheet-id", "", "Google spreadsheet id for the gsheets store")

	// Cache flags
	cacheDriver := fs.String("cache", "", "Cache driver: memory, badger, redis (default: memory)")
	cacheTTL := fs.String("cache-ttl", "", "List cache TTL (default: 6h)")
	redisAddr := fs.String("redis-addr", "", "Redis address for the redis cache")

	categoriesPath := fs.String("categories", "", "YAML file overriding the category configuration")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists; variables already set win.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			DataPath:    getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:            getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins:     splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "")),
			WritesPerMinute: getIntConfigValue(*writesPerMinute, "RATE_LIMIT_PER_MINUTE", 60),
			TrustProxy:      getBoolConfigValue(*trustProxy, "TRUST_PROXY", false),
		},
		Store: StoreConfig{
			Driver:          strings.ToLower(getConfigValue(*storeDriver, "STORE_DRIVER", StoreSQLite)),
			SQLitePath:      getConfigValue("", "SQLITE_PATH", ""),
			SpreadsheetID:   getConfigValue(*spreadsheetID, "SPREADSHEET_ID", ""),
			CredentialsFile: getConfigValue("", "GOOGLE_APPLICATION_CREDENTIALS", ""),
			CredentialsJSON: getConfigValue("", "GOOGLE_APPLICATION_CREDENTIALS_JSON", ""),
		},
		Cache: CacheConfig{
			Driver:        strings.ToLower(getConfigValue(*cacheDriver, "CACHE_DRIVER", CacheMemory)),
			MaxEntryBytes: getIntConfigValue("", "CACHE_MAX_ENTRY_BYTES", 0),
			BadgerPath:    getConfigValue("", "BADGER_PATH", ""),
			RedisAddr:     getConfigValue(*redisAddr, "REDIS_ADDR", ""),
			RedisPrefix:   getConfigValue("", "REDIS_PREFIX", "knowledge:"),
		},
		Categories: CategoriesConfig{
			Path:  getConfigValue(*categoriesPath, "CATEGORIES_PATH", ""),
			Watch: getBoolConfigValue("", "CATEGORIES_WATCH", true),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Cache.TTL, err = getDurationConfigValue(*cacheTTL, "CACHE_TTL", "6h"); err != nil {
		return nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("sqlite store requires a database path")
		}
	case StoreGSheets:
		if c.Store.SpreadsheetID == "" {
			return errors.New("gsheets store requires SPREADSHEET_ID")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be sqlite, memory, or gsheets)", c.Store.Driver)
	}

	switch c.Cache.Driver {
	case CacheMemory:
	case CacheBadger:
		if c.Cache.BadgerPath == "" {
			return errors.New("badger cache requires a directory")
		}
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("redis cache requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("invalid cache driver: %s (must be memory, badger, or redis)", c.Cache.Driver)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.MaxEntryBytes < 0 {
		return errors.New("CACHE_MAX_ENTRY_BYTES cannot be negative")
	}
	if c.Server.WritesPerMinute <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}

	return nil
}

// expandPaths resolves the data directory and the paths derived from it.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.App.DataPath, err = expandPath(c.App.DataPath, filepath.Join(homeDir, "KnowledgeBoard")); err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	if c.Store.SQLitePath, err = expandPath(c.Store.SQLitePath, filepath.Join(c.App.DataPath, "knowledge.db")); err != nil {
		return fmt.Errorf("invalid sqlite path: %w", err)
	}
	if c.Cache.BadgerPath, err = expandPath(c.Cache.BadgerPath, filepath.Join(c.App.DataPath, "cache")); err != nil {
		return fmt.Errorf("invalid badger path: %w", err)
	}
	if c.Categories.Path != "" {
		if c.Categories.Path, err = expandPath(c.Categories.Path, ""); err != nil {
			return fmt.Errorf("invalid categories path: %w", err)
		}
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue parses a duration from flag, env var, or default.
// Bare integers are read as seconds.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
