package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrServerAddrRequired = errors.New("portfolio config: server address is required")
var ErrDatabaseDriverUnknown = errors.New("portfolio config: database driver is invalid")
var ErrDatabaseDSNRequired = errors.New("portfolio config: database dsn is required")
var ErrAuthAdminIncomplete = errors.New("portfolio config: admin username and password hash must be set together")
var ErrAuthSecretRequired = errors.New("portfolio config: session secret must be at least 16 characters when an admin is configured")
var ErrAuthSessionMaxAgeInvalid = errors.New("portfolio config: session max age must be positive")
var ErrAuthLoginRateInvalid = errors.New("portfolio config: login rate and burst must be positive")
var ErrLoggingProviderUnknown = errors.New("portfolio config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("portfolio config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("portfolio config: logging format is invalid")
var ErrEventsURLRequired = errors.New("portfolio config: nats url is required when events are enabled")
var ErrExportDestinationUnknown = errors.New("portfolio config: export destination is invalid")
var ErrExportBucketRequired = errors.New("portfolio config: s3 export requires a bucket")

const minSecretLength = 16

// Supported database drivers after NormalizeDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config aggregates everything the portfolio runtime needs at start-up.
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Auth     AuthConfig     `yaml:"auth" toml:"auth"`
	Markdown MarkdownConfig `yaml:"markdown" toml:"markdown"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Events   EventsConfig   `yaml:"events" toml:"events"`
	Export   ExportConfig   `yaml:"export" toml:"export"`
	Site     SiteConfig     `yaml:"site" toml:"site"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr" toml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" toml:"max_body_bytes"`
}

// DatabaseConfig selects the bun dialect and connection pool.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver" toml:"driver"`
	DSN             string        `yaml:"dsn" toml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns" toml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" toml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate" toml:"auto_migrate"`
}

// AuthConfig describes the single admin account and its session cookie.
type AuthConfig struct {
	AdminUsername     string        `yaml:"admin_username" toml:"admin_username"`
	AdminPasswordHash string        `yaml:"admin_password_hash" toml:"admin_password_hash"`
	SecretKey         string        `yaml:"secret_key" toml:"secret_key"`
	CookieName        string        `yaml:"cookie_name" toml:"cookie_name"`
	SecureCookie      bool          `yaml:"secure_cookie" toml:"secure_cookie"`
	SessionMaxAge     time.Duration `yaml:"session_max_age" toml:"session_max_age"`
	LoginRate         float64       `yaml:"login_rate" toml:"login_rate"`
	LoginBurst        int           `yaml:"login_burst" toml:"login_burst"`
}

// MarkdownConfig mirrors interfaces.ParseOptions.
type MarkdownConfig struct {
	Extensions []string `yaml:"extensions" toml:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps" toml:"hard_wraps"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider" toml:"provider"`
	Level     string   `yaml:"level" toml:"level"`
	Format    string   `yaml:"format" toml:"format"`
	AddSource bool     `yaml:"add_source" toml:"add_source"`
	Focus     []string `yaml:"focus" toml:"focus"`
}

// EventsConfig controls section change notifications over NATS.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	NATSURL string `yaml:"nats_url" toml:"nats_url"`
}

// ExportConfig holds defaults for the export command.
type ExportConfig struct {
	Destination string `yaml:"destination" toml:"destination"`
	Path        string `yaml:"path" toml:"path"`
	S3Bucket    string `yaml:"s3_bucket" toml:"s3_bucket"`
	S3Key       string `yaml:"s3_key" toml:"s3_key"`
	S3Region    string `yaml:"s3_region" toml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint" toml:"s3_endpoint"`
}

// SiteConfig feeds the page templates.
type SiteConfig struct {
	Name    string `yaml:"name" toml:"name"`
	Tagline string `yaml:"tagline" toml:"tagline"`
	URL     string `yaml:"url" toml:"url"`
}

// DefaultConfig returns a configuration that runs locally against a sqlite
// file with console logging and no admin account.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "file:portfolio.db?cache=shared&_fk=1",
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: 5 * time.Minute,
			AutoMigrate:     true,
		},
		Auth: AuthConfig{
			CookieName:    "session",
			SessionMaxAge: 7 * 24 * time.Hour,
			LoginRate:     0.2,
			LoginBurst:    5,
		},
		Markdown: MarkdownConfig{
			HardWraps: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Export: ExportConfig{
			Destination: "file",
			Path:        "sections.jsonl",
			S3Key:       "portfolio/sections.jsonl",
			S3Region:    "us-east-1",
		},
		Site: SiteConfig{
			Name:    "Portfolio",
			Tagline: "Notes, work and what I am up to now",
			URL:     "http://localhost:8000",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return ErrServerAddrRequired
	}
	if driver := NormalizeDriver(cfg.Database.Driver); driver != DriverSQLite && driver != DriverPostgres {
		return fmt.Errorf("%w: %s", ErrDatabaseDriverUnknown, cfg.Database.Driver)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return ErrDatabaseDSNRequired
	}

	hasUser := strings.TrimSpace(cfg.Auth.AdminUsername) != ""
	hasHash := strings.TrimSpace(cfg.Auth.AdminPasswordHash) != ""
	if hasUser != hasHash {
		return ErrAuthAdminIncomplete
	}
	if hasUser && len(cfg.Auth.SecretKey) < minSecretLength {
		return ErrAuthSecretRequired
	}
	if cfg.Auth.SessionMaxAge <= 0 {
		return ErrAuthSessionMaxAgeInvalid
	}
	if cfg.Auth.LoginRate <= 0 || cfg.Auth.LoginBurst <= 0 {
		return ErrAuthLoginRateInvalid
	}

	provider := normalize(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider != "console" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}

	if cfg.Events.Enabled && strings.TrimSpace(cfg.Events.NATSURL) == "" {
		return ErrEventsURLRequired
	}

	switch normalize(cfg.Export.Destination) {
	case "", "file":
	case "s3":
		if strings.TrimSpace(cfg.Export.S3Bucket) == "" {
			return ErrExportBucketRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrExportDestinationUnknown, cfg.Export.Destination)
	}
	return nil
}

// NormalizeDriver maps driver aliases ("sqlite3", "pg", "postgresql") to the
// two supported names.
func NormalizeDriver(driver string) string {
	switch normalize(driver) {
	case "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	default:
		return normalize(driver)
	}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "zap":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
