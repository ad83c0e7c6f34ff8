package di

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-portfolio/internal/auth"
	sectionscmd "github.com/goliatone/go-portfolio/internal/commands/sections"
	"github.com/goliatone/go-portfolio/internal/events"
	"github.com/goliatone/go-portfolio/internal/export"
	portfoliohttp "github.com/goliatone/go-portfolio/internal/http"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/logging/console"
	"github.com/goliatone/go-portfolio/internal/logging/gologger"
	"github.com/goliatone/go-portfolio/internal/logging/zaplog"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/internal/site"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	bunDB          *bun.DB

	repo          sections.Repository
	renderer      interfaces.MarkdownRenderer
	catalog       *sections.Catalog
	sectionSvc    sections.Service
	authenticator *auth.Authenticator
	publisher     events.Publisher
	commands      *sectionscmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by logging.provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithBunDB switches section storage to the given database.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithRepository injects a section store, taking precedence over WithBunDB.
func WithRepository(repo sections.Repository) Option {
	return func(c *Container) {
		if repo != nil {
			c.repo = repo
		}
	}
}

// WithRenderer overrides the goldmark renderer.
func WithRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(c *Container) {
		if renderer != nil {
			c.renderer = renderer
		}
	}
}

// WithCatalog overrides the embedded default catalog.
func WithCatalog(catalog *sections.Catalog) Option {
	return func(c *Container) {
		if catalog != nil {
			c.catalog = catalog
		}
	}
}

// WithPublisher overrides the events publisher.
func WithPublisher(publisher events.Publisher) Option {
	return func(c *Container) {
		if publisher != nil {
			c.publisher = publisher
		}
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureSections(); err != nil {
		return nil, err
	}
	if err := c.configurePublisher(); err != nil {
		return nil, err
	}

	c.authenticator = auth.New(cfg.Auth, auth.WithLogger(logging.AuthLogger(c.loggerProvider)))

	handlers, err := sectionscmd.RegisterSectionCommands(nil, c.sectionSvc, c.repo, c.exportDestination, c.loggerProvider)
	if err != nil {
		return nil, err
	}
	c.commands = handlers

	logging.ModuleLogger(c.loggerProvider, "portfolio.container").Info("container.configured",
		"storage", c.storageKind(),
		"events", cfg.Events.Enabled,
		"admin", strings.TrimSpace(cfg.Auth.AdminUsername) != "",
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	cfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return fmt.Errorf("configure go-logger provider: %w", err)
		}
		c.loggerProvider = provider
	case "zap":
		provider, err := zaplog.NewProvider(zaplog.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
		})
		if err != nil {
			return fmt.Errorf("configure zap provider: %w", err)
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureSections() error {
	if c.repo == nil {
		if c.bunDB != nil {
			c.repo = sections.NewBunRepository(c.bunDB)
		} else {
			c.repo = sections.NewMemoryRepository()
		}
	}
	if c.renderer == nil {
		c.renderer = markdown.NewRenderer(interfaces.ParseOptions{
			Extensions: c.Config.Markdown.Extensions,
			HardWraps:  c.Config.Markdown.HardWraps,
		})
	}
	if c.catalog == nil {
		catalog, err := sections.DefaultCatalog()
		if err != nil {
			return fmt.Errorf("load default catalog: %w", err)
		}
		c.catalog = catalog
	}
	c.sectionSvc = sections.NewService(c.repo, c.renderer,
		sections.WithCatalog(c.catalog),
		sections.WithLogger(logging.SectionsLogger(c.loggerProvider)),
	)
	return nil
}

func (c *Container) configurePublisher() error {
	if c.publisher != nil {
		return nil
	}
	if !c.Config.Events.Enabled {
		c.publisher = &events.NoopPublisher{}
		return nil
	}
	publisher, err := events.NewNATSPublisher(c.Config.Events.NATSURL)
	if err != nil {
		return err
	}
	c.publisher = publisher
	return nil
}

func (c *Container) exportDestination(ctx context.Context, msg sectionscmd.ExportSectionsCommand) (export.Destination, error) {
	switch strings.ToLower(strings.TrimSpace(msg.Destination)) {
	case sectionscmd.DestinationS3:
		return export.NewS3Destination(ctx, export.S3Options{
			Bucket:   msg.Bucket,
			Key:      msg.Key,
			Region:   c.Config.Export.S3Region,
			Endpoint: c.Config.Export.S3Endpoint,
		})
	default:
		return export.NewFileDestination(msg.Path), nil
	}
}

func (c *Container) storageKind() string {
	switch c.repo.(type) {
	case *sections.BunRepository:
		return "bun"
	case *sections.MemoryRepository:
		return "memory"
	default:
		return "custom"
	}
}

// HTTPHandler assembles the site pages, the JSON API, the session endpoints
// and the health check behind the shared middleware chain.
func (c *Container) HTTPHandler() (http.Handler, error) {
	httpLogger := logging.HTTPLogger(c.loggerProvider)
	mux := http.NewServeMux()

	sectionAPI := portfoliohttp.NewSectionAPI(c.sectionSvc,
		portfoliohttp.WithLogger(httpLogger),
		portfoliohttp.WithMaxBodyBytes(c.Config.Server.MaxBodyBytes),
	)
	if err := sectionAPI.Register(mux); err != nil {
		return nil, err
	}
	if err := portfoliohttp.NewSessionAPI(c.authenticator, httpLogger).Register(mux); err != nil {
		return nil, err
	}

	var pinger portfoliohttp.Pinger
	if c.bunDB != nil {
		pinger = c.bunDB
	}
	portfoliohttp.RegisterHealth(mux, pinger, httpLogger)

	pages, err := site.New(c.sectionSvc, c.Config.Site, site.WithLogger(httpLogger))
	if err != nil {
		return nil, err
	}
	if err := pages.Register(mux); err != nil {
		return nil, err
	}

	return portfoliohttp.Chain(mux,
		portfoliohttp.RequestID,
		portfoliohttp.AccessLog(httpLogger),
		portfoliohttp.Recover(httpLogger),
		c.authenticator.Middleware,
	), nil
}

// EventsBridge builds the bridge from the section store to the publisher.
func (c *Container) EventsBridge() (*events.Bridge, error) {
	return events.NewBridge(c.repo, c.publisher, events.WithLogger(logging.EventsLogger(c.loggerProvider)))
}

// Close releases the publisher connection.
func (c *Container) Close() error {
	if c.publisher == nil {
		return nil
	}
	return c.publisher.Close()
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) SectionRepository() sections.Repository {
	return c.repo
}

func (c *Container) SectionService() sections.Service {
	return c.sectionSvc
}

func (c *Container) Renderer() interfaces.MarkdownRenderer {
	return c.renderer
}

func (c *Container) Catalog() *sections.Catalog {
	return c.catalog
}

func (c *Container) Authenticator() *auth.Authenticator {
	return c.authenticator
}

func (c *Container) Commands() *sectionscmd.HandlerSet {
	return c.commands
}
