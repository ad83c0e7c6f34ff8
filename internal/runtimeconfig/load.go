package runtimeconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PORTFOLIO_"

var ErrConfigFormatUnsupported = errors.New("portfolio config: unsupported config file extension")

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// Path is an optional YAML (.yaml, .yml) or TOML (.toml) file.
	Path string
	// EnvFile is an optional dotenv file. Defaults to ".env"; a missing
	// file is ignored.
	EnvFile string
	// Lookup resolves environment variables. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Load layers defaults, the config file, the dotenv file and PORTFOLIO_*
// variables (process environment wins over dotenv) and validates the result.
func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	if path := strings.TrimSpace(opts.Path); path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	dotenv, err := readDotenv(opts.EnvFile)
	if err != nil {
		return Config{}, err
	}
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	resolve := func(key string) (string, bool) {
		if value, ok := lookup(key); ok {
			return value, true
		}
		value, ok := dotenv[key]
		return value, ok
	}

	if err := applyEnv(&cfg, resolve); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("portfolio config: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("portfolio config: decode %s: %w", path, err)
		}
	case ".toml":
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return fmt.Errorf("portfolio config: decode %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("portfolio config: unknown keys in %s: %v", path, undecoded)
		}
	default:
		return fmt.Errorf("%w: %s", ErrConfigFormatUnsupported, path)
	}
	return nil
}

func readDotenv(path string) (map[string]string, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = ".env"
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("portfolio config: read %s: %w", path, err)
	}
	return values, nil
}

type envBinding struct {
	name  string
	apply func(cfg *Config, value string) error
}

var envBindings = []envBinding{
	{"ADDR", setString(func(c *Config) *string { return &c.Server.Addr })},
	{"DATABASE_DRIVER", setString(func(c *Config) *string { return &c.Database.Driver })},
	{"DATABASE_URL", setString(func(c *Config) *string { return &c.Database.DSN })},
	{"DATABASE_AUTO_MIGRATE", setBool(func(c *Config) *bool { return &c.Database.AutoMigrate })},
	{"ADMIN_USERNAME", setString(func(c *Config) *string { return &c.Auth.AdminUsername })},
	{"ADMIN_PASSWORD_HASH", setString(func(c *Config) *string { return &c.Auth.AdminPasswordHash })},
	{"SECRET_KEY", setString(func(c *Config) *string { return &c.Auth.SecretKey })},
	{"SECURE_COOKIE", setBool(func(c *Config) *bool { return &c.Auth.SecureCookie })},
	{"SESSION_MAX_AGE", setDuration(func(c *Config) *time.Duration { return &c.Auth.SessionMaxAge })},
	{"LOG_PROVIDER", setString(func(c *Config) *string { return &c.Logging.Provider })},
	{"LOG_LEVEL", setString(func(c *Config) *string { return &c.Logging.Level })},
	{"LOG_FORMAT", setString(func(c *Config) *string { return &c.Logging.Format })},
	{"NATS_URL", func(c *Config, value string) error {
		c.Events.NATSURL = value
		c.Events.Enabled = strings.TrimSpace(value) != ""
		return nil
	}},
	{"EXPORT_DESTINATION", setString(func(c *Config) *string { return &c.Export.Destination })},
	{"EXPORT_PATH", setString(func(c *Config) *string { return &c.Export.Path })},
	{"EXPORT_S3_BUCKET", setString(func(c *Config) *string { return &c.Export.S3Bucket })},
	{"EXPORT_S3_KEY", setString(func(c *Config) *string { return &c.Export.S3Key })},
	{"EXPORT_S3_REGION", setString(func(c *Config) *string { return &c.Export.S3Region })},
	{"EXPORT_S3_ENDPOINT", setString(func(c *Config) *string { return &c.Export.S3Endpoint })},
	{"SITE_NAME", setString(func(c *Config) *string { return &c.Site.Name })},
	{"SITE_TAGLINE", setString(func(c *Config) *string { return &c.Site.Tagline })},
	{"SITE_URL", setString(func(c *Config) *string { return &c.Site.URL })},
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, binding := range envBindings {
		value, ok := lookup(EnvPrefix + binding.name)
		if !ok {
			continue
		}
		if err := binding.apply(cfg, strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("portfolio config: %s%s: %w", EnvPrefix, binding.name, err)
		}
	}
	return nil
}

func setString(field func(*Config) *string) func(*Config, string) error {
	return func(cfg *Config, value string) error {
		*field(cfg) = value
		return nil
	}
}

func setBool(field func(*Config) *bool) func(*Config, string) error {
	return func(cfg *Config, value string) error {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		*field(cfg) = parsed
		return nil
	}
}

func setDuration(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(cfg *Config, value string) error {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*field(cfg) = parsed
		return nil
	}
}
