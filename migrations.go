package portfolio

import (
	"context"
	"io/fs"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-portfolio/internal/storage"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// GetMigrationsFS returns the embedded SQL migrations, one directory per
// database driver under migrations/.
func GetMigrationsFS() fs.FS {
	return storage.MigrationsFS()
}

// OpenDB connects to the configured database.
func OpenDB(ctx context.Context, cfg DatabaseConfig) (*bun.DB, error) {
	return storage.Open(ctx, cfg)
}

// Migrate applies pending migrations for driver against db.
func Migrate(ctx context.Context, db *bun.DB, driver string, logger interfaces.Logger) error {
	return storage.Migrate(ctx, db.DB, driver, storage.WithLogger(logger))
}
