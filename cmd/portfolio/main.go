package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-portfolio"
	"github.com/goliatone/go-portfolio/internal/di"
	"github.com/goliatone/go-portfolio/internal/events"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

type globalOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "Personal portfolio site with inline Markdown section editing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML or TOML config file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file (defaults to .env when present)")

	root.AddGroup(
		&cobra.Group{ID: "server", Title: "Server:"},
		&cobra.Group{ID: "content", Title: "Content:"},
		&cobra.Group{ID: "tools", Title: "Tools:"},
	)
	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newExportCmd(opts),
		newSetCmd(opts),
		newPreviewCmd(opts),
		newHashPasswordCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the opened runtime shared by the subcommands.
type app struct {
	cfg    portfolio.Config
	db     *bun.DB
	module *portfolio.Module
	logger interfaces.Logger
}

type openOptions struct {
	// withEvents connects the configured publisher. Only serve forwards
	// change events.
	withEvents bool
	// forceMigrate applies migrations even when auto_migrate is off.
	forceMigrate bool
}

func openApp(ctx context.Context, global *globalOptions, open openOptions) (*app, error) {
	cfg, err := portfolio.LoadConfig(portfolio.LoadOptions{
		Path:    global.configPath,
		EnvFile: global.envFile,
	})
	if err != nil {
		return nil, err
	}

	db, err := portfolio.OpenDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	diOpts := []di.Option{di.WithBunDB(db)}
	if !open.withEvents {
		diOpts = append(diOpts, di.WithPublisher(&events.NoopPublisher{}))
	}
	module, err := portfolio.New(cfg, diOpts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		db:     db,
		module: module,
		logger: logging.ModuleLogger(module.Logger(), "portfolio.cli"),
	}
	if open.forceMigrate || cfg.Database.AutoMigrate {
		if err := portfolio.Migrate(ctx, db, cfg.Database.Driver, logging.StorageLogger(module.Logger())); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.module.Close(); err != nil {
		a.logger.Error("cli.close.module_failed", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("cli.close.db_failed", "error", err)
	}
}
