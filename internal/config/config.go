package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Data source names accepted by DATA_SOURCE.
const (
	SourceStatic   = "static"
	SourceSQLite   = "sqlite"
	SourceSupabase = "supabase"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string
	Locale   string

	// Data source
	DataSource   string
	SQLiteDBPath string

	// Supabase
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration
	ViewTTL  time.Duration

	// Auth redirect
	RedirectDelay time.Duration
	RedirectPath  string

	// Session / Auth
	AuthRequired  bool
	JWTSecret     string
	SecureCookies bool

	// Observability
	TracingEnabled bool
	OTLPEndpoint   string

	// Dev mode
	DevTools bool // DEV_TOOLS=true exposes /v1/dev helpers
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Locale:   getEnv("LOCALE", "fr"),

		DataSource:   strings.ToLower(getEnv("DATA_SOURCE", SourceStatic)),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "data/dashboard.db"),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),
		ViewTTL:  getEnvDuration("VIEW_TTL", 30*time.Minute),

		RedirectDelay: getEnvDuration("REDIRECT_DELAY", time.Second),
		RedirectPath:  getEnv("REDIRECT_PATH", "/"),

		AuthRequired:  getEnvBool("AUTH_REQUIRED", false),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		SecureCookies: getEnvBool("SECURE_COOKIES", false),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		DevTools: getEnvBool("DEV_TOOLS", false),
	}
}

// Validate reports every inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.DataSource {
	case SourceStatic:
	case SourceSQLite:
		if c.SQLiteDBPath == "" {
			errs = append(errs, errors.New("SQLITE_DB_PATH is required when DATA_SOURCE=sqlite"))
		}
	case SourceSupabase:
		if c.SupabaseURL == "" {
			errs = append(errs, errors.New("SUPABASE_URL is required when DATA_SOURCE=supabase"))
		}
		if c.SupabaseAnonKey == "" {
			errs = append(errs, errors.New("SUPABASE_ANON_KEY is required when DATA_SOURCE=supabase"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATA_SOURCE must be one of static, sqlite, supabase, got %q", c.DataSource))
	}

	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("MAX_RETRIES must not be negative, got %d", c.MaxRetries))
	}
	if c.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("MAX_CONCURRENCY must be at least 1, got %d", c.MaxConcurrency))
	}
	if c.RedirectDelay <= 0 {
		errs = append(errs, fmt.Errorf("REDIRECT_DELAY must be positive, got %s", c.RedirectDelay))
	}
	if !strings.HasPrefix(c.RedirectPath, "/") || strings.HasPrefix(c.RedirectPath, "//") {
		errs = append(errs, fmt.Errorf("REDIRECT_PATH must be an application path, got %q", c.RedirectPath))
	}
	if c.AuthRequired && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when AUTH_REQUIRED=true"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
