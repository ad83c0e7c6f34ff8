package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

//go:embed migrations
var migrationsFS embed.FS

// ErrUnsupportedDriver is returned for database drivers other than sqlite
// and postgres.
var ErrUnsupportedDriver = errors.New("storage: unsupported database driver")

// MigrationsFS returns the embedded migrations, one directory per driver.
func MigrationsFS() fs.FS {
	return migrationsFS
}

// Open connects to the configured database, applies pool settings and pings.
func Open(ctx context.Context, cfg runtimeconfig.DatabaseConfig) (*bun.DB, error) {
	driver := runtimeconfig.NormalizeDriver(cfg.Driver)

	var (
		sqlDriver string
		open      func(*sql.DB) *bun.DB
	)
	switch driver {
	case runtimeconfig.DriverSQLite:
		sqlDriver = "sqlite3"
		open = func(db *sql.DB) *bun.DB { return bun.NewDB(db, sqlitedialect.New()) }
	case runtimeconfig.DriverPostgres:
		sqlDriver = "postgres"
		open = func(db *sql.DB) *bun.DB { return bun.NewDB(db, pgdialect.New()) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	sqldb, err := sql.Open(sqlDriver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return open(sqldb), nil
}

// MigrateOption configures Migrate.
type MigrateOption func(*migrateOptions)

type migrateOptions struct {
	source fs.FS
	logger interfaces.Logger
}

// WithMigrations overrides the embedded migration tree. It must hold one
// directory per driver.
func WithMigrations(source fs.FS) MigrateOption {
	return func(o *migrateOptions) {
		if source != nil {
			o.source = source
		}
	}
}

// WithLogger sets the migration logger.
func WithLogger(logger interfaces.Logger) MigrateOption {
	return func(o *migrateOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Migrate applies all pending up migrations for driver. Already applied
// migrations are not an error.
func Migrate(ctx context.Context, db *sql.DB, driver string, opts ...MigrateOption) error {
	options := migrateOptions{source: migrationsFS, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(&options)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	driver = runtimeconfig.NormalizeDriver(driver)
	source, err := iofs.New(options.source, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	defer source.Close()

	var m *migrate.Migrate
	switch driver {
	case runtimeconfig.DriverSQLite:
		dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("create migration db driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, "sqlite3", dbDriver)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
	case runtimeconfig.DriverPostgres:
		dbDriver, err := migratepostgres.WithInstance(db, &migratepostgres.Config{})
		if err != nil {
			return fmt.Errorf("create migration db driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, "postgres", dbDriver)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	options.logger.WithContext(ctx).Info("storage.migrated", "driver", driver, "version", version, "dirty", dirty)
	return nil
}
