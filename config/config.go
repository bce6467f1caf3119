package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/guttosm/margintrend/internal/fetcher"
	"github.com/guttosm/margintrend/internal/pipeline"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system.
// A Config value is built once at startup and passed explicitly to every component;
// nothing in the codebase reads a package-level configuration.
//
// Example ENV equivalent:
//
//	NASDAQ_API_KEY=xxxx
//	RECORDS_PER_PAGE=10000
//	WINDOW_SIZE=3
//	FILTER_INDICATOR="EBITDA Margin"
//	FILTER_DENYLIST="Immutep Ltd"
//	APP_USERNAME=analyst
//	APP_PASSWORD=secret
//	SERVER_PORT=8080
//	POSTGRES_ENABLED=false
type Config struct {
	Nasdaq   NasdaqConfig   // Remote datatable API settings
	Pipeline PipelineConfig // Filtering and smoothing options
	Auth     AuthConfig     // Login gate credentials
	Chart    ChartConfig    // Rendering output
	Server   ServerConfig   // HTTP server configuration
	Postgres PostgresConfig // PostgreSQL connection settings (run audit)
	Log      LogConfig      // Logger settings
}

// NasdaqConfig holds the datatable endpoint, credentials and request sizing.
type NasdaqConfig struct {
	APIKey         string
	BaseURL        string
	Timeout        time.Duration
	RecordsPerPage int
}

// PipelineConfig defines the fixed predicates and the moving-average window.
type PipelineConfig struct {
	WindowSize int
	Indicator  string
	Denylist   []string
}

// AuthConfig holds the credentials the login prompt is compared against.
// PasswordHash, when set, is a bcrypt hash and takes precedence over Password.
type AuthConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

// ChartConfig holds the path of the rendered HTML chart.
type ChartConfig struct {
	Output string
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port           string        // The TCP port the HTTP server will listen on (e.g., "8080")
	RateLimit      int           // Requests per minute allowed per client IP
	RequestTimeout time.Duration // Upper bound on a request's context
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Enabled: whether pipeline runs are recorded at all.
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// LogConfig holds logger level and output style.
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load builds a Config from .env file or environment variables without
// validating it, so callers can apply overrides first.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Behavior:
//   - Uses a private viper instance, so repeated calls do not share state.
//   - Constructs the PostgreSQL connection string (DSN).
func Load() Config {
	v := viper.New()

	v.SetDefault("NASDAQ_API_KEY", "")
	v.SetDefault("NASDAQ_BASE_URL", fetcher.DefaultBaseURL)
	v.SetDefault("NASDAQ_TIMEOUT", "30s")
	v.SetDefault("RECORDS_PER_PAGE", fetcher.DefaultPerPage)

	v.SetDefault("WINDOW_SIZE", pipeline.DefaultWindow)
	v.SetDefault("FILTER_INDICATOR", pipeline.DefaultIndicator)
	v.SetDefault("FILTER_DENYLIST", pipeline.DefaultDenied)

	v.SetDefault("APP_USERNAME", "")
	v.SetDefault("APP_PASSWORD", "")
	v.SetDefault("APP_PASSWORD_HASH", "")

	v.SetDefault("CHART_OUTPUT", "ebitda_margin.html")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_RATE_LIMIT", 60)
	v.SetDefault("SERVER_REQUEST_TIMEOUT", "10s")

	v.SetDefault("POSTGRES_ENABLED", false)
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "margintrend")
	v.SetDefault("POSTGRES_SSLMODE", "disable")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)

	// Optionally read from .env if present (common in local dev)
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore error if no .env

	v.AutomaticEnv()

	cfg := Config{
		Nasdaq: NasdaqConfig{
			APIKey:         strings.TrimSpace(v.GetString("NASDAQ_API_KEY")),
			BaseURL:        v.GetString("NASDAQ_BASE_URL"),
			Timeout:        v.GetDuration("NASDAQ_TIMEOUT"),
			RecordsPerPage: v.GetInt("RECORDS_PER_PAGE"),
		},
		Pipeline: PipelineConfig{
			WindowSize: v.GetInt("WINDOW_SIZE"),
			Indicator:  v.GetString("FILTER_INDICATOR"),
			Denylist:   SplitList(v.GetString("FILTER_DENYLIST")),
		},
		Auth: AuthConfig{
			Username:     v.GetString("APP_USERNAME"),
			Password:     v.GetString("APP_PASSWORD"),
			PasswordHash: v.GetString("APP_PASSWORD_HASH"),
		},
		Chart: ChartConfig{
			Output: v.GetString("CHART_OUTPUT"),
		},
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			RateLimit:      v.GetInt("SERVER_RATE_LIMIT"),
			RequestTimeout: v.GetDuration("SERVER_REQUEST_TIMEOUT"),
		},
		Postgres: PostgresConfig{
			Enabled:  v.GetBool("POSTGRES_ENABLED"),
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetInt("POSTGRES_PORT"),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			DBName:   v.GetString("POSTGRES_DB"),
			SSLMode:  v.GetString("POSTGRES_SSLMODE"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Pretty: v.GetBool("LOG_PRETTY"),
		},
	}

	cfg.Postgres.URL = cfg.Postgres.DSN()
	return cfg
}

// DSN returns the PostgreSQL connection string used by database/sql.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

// Validate ensures required values are present and usable.
//
// An empty NASDAQ_API_KEY is deliberately not reported here: the fetcher
// rejects it before issuing any request.
func (c Config) Validate() error {
	var missing []string

	if c.Nasdaq.BaseURL == "" {
		missing = append(missing, "NASDAQ_BASE_URL")
	}
	if c.Nasdaq.RecordsPerPage <= 0 {
		missing = append(missing, "RECORDS_PER_PAGE")
	}
	if c.Pipeline.WindowSize <= 0 {
		missing = append(missing, "WINDOW_SIZE")
	}
	if c.Pipeline.Indicator == "" {
		missing = append(missing, "FILTER_INDICATOR")
	}
	if c.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if c.Postgres.Enabled {
		if c.Postgres.Host == "" {
			missing = append(missing, "POSTGRES_HOST")
		}
		if c.Postgres.Port == 0 {
			missing = append(missing, "POSTGRES_PORT")
		}
		if c.Postgres.User == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if c.Postgres.Password == "" {
			missing = append(missing, "POSTGRES_PASSWORD")
		}
		if c.Postgres.DBName == "" {
			missing = append(missing, "POSTGRES_DB")
		}
	}

	if len(missing) > 0 {
		return &ValidationError{Keys: missing}
	}
	return nil
}

// ValidationError lists every configuration key that is missing or invalid.
type ValidationError struct {
	Keys []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid configuration: " + strings.Join(e.Keys, ", ")
}

// ErrInvalidConfig matches any *ValidationError with errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// SplitList turns a comma separated value into trimmed, non-empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
