package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	CORS     CORSConfig
	Matching MatchingConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Schedule ScheduleConfig
	External ExternalConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        // Default: "127.0.0.1"
	Port            int           // Default: 8080
	ShutdownTimeout time.Duration // Default: 30s
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // Default: "info" (trace, debug, info, warn, error, fatal, panic)
	Environment string // production|development|staging|test (affects format)
	NoColor     bool   // Disable colors in the console writer
}

// CORSConfig holds CORS middleware settings
type CORSConfig struct {
	AllowAll    bool   // Default: true
	FrontendURL string // Used when AllowAll=false
}

// MatchingConfig holds defaults for matching runs
type MatchingConfig struct {
	Threshold          float64  // Default: 0.7
	MaxTextLen         int      // Default: 5000 characters of content compared
	Workers            int      // Default: 1 (sequential scan)
	ExtractConcurrency int      // Default: 4 concurrent content extractions
	Extensions         []string // Default: [".pdf"]
	MaxFileSize        int64    // Default: 64 MiB, larger files are not extracted
}

// StorageConfig holds the remote object storage endpoint and credentials
type StorageConfig struct {
	URL      string        // STORAGE_URL or SUPABASE_URL
	Key      string        // STORAGE_KEY, SUPABASE_SERVICE_ROLE_KEY or SUPABASE_ANON_KEY
	Bucket   string        // Default: "Repository"
	PageSize int           // Default: 1000
	Timeout  time.Duration // Default: 60s
}

// DatabaseConfig holds run history database settings. History is disabled
// when URL is empty.
type DatabaseConfig struct {
	URL            string        // Optional
	MigrationsPath string        // Default: "migrations"
	MaxConns       int32         // Default: 4
	HealthTimeout  time.Duration // Default: 5s
}

// ScheduleConfig holds the optional periodic matching job
type ScheduleConfig struct {
	Cron   string // Empty disables the job
	Source string // Default: "filesystem"
	First  string
	Second string
}

// ExternalConfig holds credentials for callers of the API
type ExternalConfig struct {
	APIKey string // Optional; when set every /api/v1 request must present it
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Constants for default values
const (
	DefaultServerHost         = "127.0.0.1"
	DefaultServerPort         = 8080
	DefaultShutdownTimeout    = 30 * time.Second
	DefaultLogLevel           = "info"
	DefaultEnvironment        = "development"
	DefaultThreshold          = 0.7
	DefaultMaxTextLen         = 5000
	DefaultExtractConcurrency = 4
	DefaultMaxFileSize        = 64 << 20
	DefaultBucket             = "Repository"
	DefaultPageSize           = 1000
	DefaultStorageTimeout     = 60 * time.Second
	DefaultMigrationsPath     = "migrations"
	DefaultMaxConns           = 4
	DefaultHealthCheckTimeout = 5 * time.Second
	DefaultScheduleSource     = "filesystem"
)

// DefaultExtensions lists the document extensions matched when none are configured.
var DefaultExtensions = []string{".pdf"}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("HOST", DefaultServerHost),
			Port:            getEnvAsInt("PORT", DefaultServerPort),
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", DefaultLogLevel),
			Environment: getEnv("APP_ENV", DefaultEnvironment),
			NoColor:     getEnvAsBool("NO_COLOR", false),
		},
		CORS: CORSConfig{
			AllowAll:    getEnvAsBool("CORS_ALLOW_ALL", true),
			FrontendURL: getEnv("FRONTEND_URL", ""),
		},
		Matching: MatchingConfig{
			Threshold:          getEnvAsFloat("MATCH_THRESHOLD", DefaultThreshold),
			MaxTextLen:         getEnvAsInt("MATCH_MAX_TEXT_LEN", DefaultMaxTextLen),
			Workers:            getEnvAsInt("MATCH_WORKERS", 1),
			ExtractConcurrency: getEnvAsInt("EXTRACT_CONCURRENCY", DefaultExtractConcurrency),
			Extensions:         getEnvAsList("DOCUMENT_EXTENSIONS", DefaultExtensions),
			MaxFileSize:        int64(getEnvAsInt("MAX_FILE_SIZE", DefaultMaxFileSize)),
		},
		Storage: StorageConfig{
			URL:      getEnv("STORAGE_URL", getEnv("SUPABASE_URL", "")),
			Key:      getEnv("STORAGE_KEY", getEnv("SUPABASE_SERVICE_ROLE_KEY", getEnv("SUPABASE_ANON_KEY", ""))),
			Bucket:   getEnv("STORAGE_BUCKET", DefaultBucket),
			PageSize: getEnvAsInt("STORAGE_PAGE_SIZE", DefaultPageSize),
			Timeout:  DefaultStorageTimeout,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MigrationsPath: getEnv("MIGRATIONS_PATH", DefaultMigrationsPath),
			MaxConns:       int32(getEnvAsInt("DB_MAX_CONNS", DefaultMaxConns)),
			HealthTimeout:  DefaultHealthCheckTimeout,
		},
		Schedule: ScheduleConfig{
			Cron:   getEnv("SCHEDULE_CRON", ""),
			Source: getEnv("SCHEDULE_SOURCE", DefaultScheduleSource),
			First:  getEnv("SCHEDULE_FIRST", ""),
			Second: getEnv("SCHEDULE_SECOND", ""),
		},
		External: ExternalConfig{
			APIKey: getEnv("API_KEY", ""),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	var errors ValidationErrors

	// Server port range
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "PORT",
			Message: fmt.Sprintf("port must be between 0 and 65535, got %d", c.Server.Port),
		})
	}

	// Log level validation
	validLogLevels := []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic"}
	if !contains(validLogLevels, strings.ToLower(c.Logger.Level)) {
		errors = append(errors, ValidationError{
			Field:   "LOG_LEVEL",
			Message: fmt.Sprintf("invalid log level %q, must be one of: %v", c.Logger.Level, validLogLevels),
		})
	}

	// Environment validation
	validEnvs := []string{"production", "development", "staging", "test"}
	if !contains(validEnvs, c.Logger.Environment) {
		errors = append(errors, ValidationError{
			Field:   "APP_ENV",
			Message: fmt.Sprintf("invalid environment %q, must be one of: %v", c.Logger.Environment, validEnvs),
		})
	}

	if c.Matching.Threshold < 0 || c.Matching.Threshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "MATCH_THRESHOLD",
			Message: fmt.Sprintf("threshold must be between 0 and 1, got %g", c.Matching.Threshold),
		})
	}

	if c.Matching.MaxTextLen <= 0 {
		errors = append(errors, ValidationError{
			Field:   "MATCH_MAX_TEXT_LEN",
			Message: fmt.Sprintf("max text length must be positive, got %d", c.Matching.MaxTextLen),
		})
	}

	if c.Matching.ExtractConcurrency <= 0 {
		errors = append(errors, ValidationError{
			Field:   "EXTRACT_CONCURRENCY",
			Message: fmt.Sprintf("extract concurrency must be positive, got %d", c.Matching.ExtractConcurrency),
		})
	}

	if len(c.Matching.Extensions) == 0 {
		errors = append(errors, ValidationError{
			Field:   "DOCUMENT_EXTENSIONS",
			Message: "at least one document extension is required",
		})
	}

	// Dependency validation: a schedule needs both collection roots
	if c.Schedule.Cron != "" && (c.Schedule.First == "" || c.Schedule.Second == "") {
		errors = append(errors, ValidationError{
			Field:   "SCHEDULE_CRON",
			Message: "SCHEDULE_FIRST and SCHEDULE_SECOND are required when SCHEDULE_CRON is set",
		})
	}

	// CORS validation: FrontendURL should be set if not allowing all
	if !c.CORS.AllowAll && c.CORS.FrontendURL == "" {
		errors = append(errors, ValidationError{
			Field:   "FRONTEND_URL",
			Message: "frontend URL should be set when CORS_ALLOW_ALL is false",
		})
	}

	if len(errors) > 0 {
		return errors
	}

	return nil
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Logger.Environment == "production"
}

// GetBindAddress returns the server bind address in format "host:port"
func (c *Config) GetBindAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Configured reports whether remote storage credentials are present.
// Partial credentials leave storage unregistered rather than failing startup.
func (s StorageConfig) Configured() bool {
	return s.URL != "" && s.Key != ""
}

// HistoryEnabled reports whether match runs are persisted
func (d DatabaseConfig) HistoryEnabled() bool {
	return d.URL != ""
}

// Helper functions for parsing environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated value, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// TestConfig creates a test configuration with sensible defaults for testing
func TestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultServerHost,
			Port:            0, // Random port for tests
			ShutdownTimeout: 5 * time.Second,
		},
		Logger: LoggerConfig{
			Level:       "debug",
			Environment: "test",
			NoColor:     true,
		},
		CORS: CORSConfig{
			AllowAll: true,
		},
		Matching: MatchingConfig{
			Threshold:          DefaultThreshold,
			MaxTextLen:         DefaultMaxTextLen,
			Workers:            1,
			ExtractConcurrency: 2,
			Extensions:         []string{".pdf"},
			MaxFileSize:        DefaultMaxFileSize,
		},
		Storage: StorageConfig{
			Bucket:   DefaultBucket,
			PageSize: DefaultPageSize,
			Timeout:  5 * time.Second,
		},
		Database: DatabaseConfig{
			MigrationsPath: "../../migrations",
			MaxConns:       DefaultMaxConns,
			HealthTimeout:  DefaultHealthCheckTimeout,
		},
		Schedule: ScheduleConfig{
			Source: DefaultScheduleSource,
		},
	}
}
