package sectionscmd

import (
	"errors"

	"github.com/goliatone/go-portfolio/internal/commands"
	"github.com/goliatone/go-portfolio/internal/export"
	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract used when wiring
// handlers into go-command.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the section command handlers.
type HandlerSet struct {
	Seed   *SeedSectionsHandler
	Export *ExportSectionsHandler
	Update *UpdateSectionHandler
}

// RegisterSectionCommands builds the handlers and registers them with reg
// when it is non-nil.
func RegisterSectionCommands(reg CommandRegistry, service sections.Service, lister export.Lister, factory DestinationFactory, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("sections command registration: service is nil")
	}
	if lister == nil {
		return nil, errors.New("sections command registration: lister is nil")
	}

	logger := commands.CommandLogger(provider, "sections")
	set := &HandlerSet{
		Seed:   NewSeedSectionsHandler(service, logger),
		Export: NewExportSectionsHandler(lister, factory, logger),
		Update: NewUpdateSectionHandler(service, logger),
	}

	if reg != nil {
		for _, handler := range []any{set.Seed, set.Export, set.Update} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
