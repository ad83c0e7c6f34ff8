package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"server addr", func(c *runtimeconfig.Config) { c.Server.Addr = " " }, runtimeconfig.ErrServerAddrRequired},
		{"driver", func(c *runtimeconfig.Config) { c.Database.Driver = "mysql" }, runtimeconfig.ErrDatabaseDriverUnknown},
		{"dsn", func(c *runtimeconfig.Config) { c.Database.DSN = "" }, runtimeconfig.ErrDatabaseDSNRequired},
		{"admin without hash", func(c *runtimeconfig.Config) { c.Auth.AdminUsername = "admin" }, runtimeconfig.ErrAuthAdminIncomplete},
		{"short secret", func(c *runtimeconfig.Config) {
			c.Auth.AdminUsername = "admin"
			c.Auth.AdminPasswordHash = "$2a$10$hash"
			c.Auth.SecretKey = "short"
		}, runtimeconfig.ErrAuthSecretRequired},
		{"session age", func(c *runtimeconfig.Config) { c.Auth.SessionMaxAge = 0 }, runtimeconfig.ErrAuthSessionMaxAgeInvalid},
		{"login burst", func(c *runtimeconfig.Config) { c.Auth.LoginBurst = 0 }, runtimeconfig.ErrAuthLoginRateInvalid},
		{"log provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"log level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"log format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
		{"events url", func(c *runtimeconfig.Config) { c.Events.Enabled = true }, runtimeconfig.ErrEventsURLRequired},
		{"export destination", func(c *runtimeconfig.Config) { c.Export.Destination = "ftp" }, runtimeconfig.ErrExportDestinationUnknown},
		{"export bucket", func(c *runtimeconfig.Config) { c.Export.Destination = "s3" }, runtimeconfig.ErrExportBucketRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidate_ConsoleIgnoresFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected console provider to ignore format, got %v", err)
	}
}

func TestNormalizeDriver(t *testing.T) {
	cases := map[string]string{
		"sqlite3":    "sqlite",
		" SQLite ":   "sqlite",
		"pg":         "postgres",
		"postgresql": "postgres",
		"mysql":      "mysql",
	}
	for input, want := range cases {
		if got := runtimeconfig.NormalizeDriver(input); got != want {
			t.Fatalf("NormalizeDriver(%q) = %q, want %q", input, got, want)
		}
	}
}
