package portfolio

import (
	"net/http"

	"github.com/goliatone/go-portfolio/internal/auth"
	sectionscmd "github.com/goliatone/go-portfolio/internal/commands/sections"
	"github.com/goliatone/go-portfolio/internal/di"
	"github.com/goliatone/go-portfolio/internal/events"
	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// SectionService exports the section service contract.
type SectionService = sections.Service

// SectionRepository exports the section store contract.
type SectionRepository = sections.Repository

// Section exports the section record.
type Section = sections.Section

// SectionCommands exports the command handler set.
type SectionCommands = sectionscmd.HandlerSet

// SeedOptions exports the seed selection.
type SeedOptions = sections.SeedOptions

// EventsBridge exports the change forwarding bridge.
type EventsBridge = events.Bridge

// Module is the entry point for embedding the portfolio in a host program.
type Module struct {
	container *di.Container
}

// New builds the module from cfg.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Sections returns the section service.
func (m *Module) Sections() SectionService {
	return m.container.SectionService()
}

// Repository returns the section store.
func (m *Module) Repository() SectionRepository {
	return m.container.SectionRepository()
}

// Commands returns the seed, export and update handlers.
func (m *Module) Commands() *SectionCommands {
	return m.container.Commands()
}

// Markdown returns the renderer used for every stored section.
func (m *Module) Markdown() interfaces.MarkdownRenderer {
	return m.container.Renderer()
}

// Auth returns the admin authenticator.
func (m *Module) Auth() *auth.Authenticator {
	return m.container.Authenticator()
}

// Logger returns the configured logger provider.
func (m *Module) Logger() interfaces.LoggerProvider {
	return m.container.LoggerProvider()
}

// Handler builds the HTTP handler serving pages, API and assets.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.HTTPHandler()
}

// EventsBridge builds the bridge that forwards section changes.
func (m *Module) EventsBridge() (*EventsBridge, error) {
	return m.container.EventsBridge()
}

// Close releases external connections.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
