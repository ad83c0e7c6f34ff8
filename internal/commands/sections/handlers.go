package sectionscmd

import (
	"bytes"
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-portfolio/internal/commands"
	"github.com/goliatone/go-portfolio/internal/export"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

const (
	seedOperation   = "sections.seed"
	exportOperation = "sections.export"
	updateOperation = "sections.update"
)

// ErrDestinationFactoryRequired is returned when an export runs without a
// way to build its destination.
var ErrDestinationFactoryRequired = errors.New("sections command: export destination factory is required")

var (
	_ command.Commander[SeedSectionsCommand]   = (*SeedSectionsHandler)(nil)
	_ command.Commander[ExportSectionsCommand] = (*ExportSectionsHandler)(nil)
	_ command.Commander[UpdateSectionCommand]  = (*UpdateSectionHandler)(nil)
)

// DestinationFactory builds the export target for a command.
type DestinationFactory func(ctx context.Context, msg ExportSectionsCommand) (export.Destination, error)

// SeedSectionsHandler runs catalog seeding through the shared handler.
type SeedSectionsHandler struct {
	inner *commands.Handler[SeedSectionsCommand]
}

// NewSeedSectionsHandler binds the handler to service.
func NewSeedSectionsHandler(service sections.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SeedSectionsCommand]) *SeedSectionsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg SeedSectionsCommand) error {
		result, err := service.Seed(ctx, sections.SeedOptions{
			Pages:     msg.Pages,
			Overwrite: msg.Overwrite,
		})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"created_count": result.Created,
			"updated_count": result.Updated,
			"skipped_count": result.Skipped,
			"overwrite":     msg.Overwrite,
		}).Info("sections.command.seed.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[SeedSectionsCommand]{
		commands.WithLogger[SeedSectionsCommand](baseLogger),
		commands.WithOperation[SeedSectionsCommand](seedOperation),
		commands.WithMessageFields(func(msg SeedSectionsCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Pages) > 0 {
				fields["pages"] = strings.Join(msg.Pages, ",")
			}
			if msg.Overwrite {
				fields["overwrite"] = true
			}
			return fields
		}),
	}
	return &SeedSectionsHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[SeedSectionsCommand].
func (h *SeedSectionsHandler) Execute(ctx context.Context, msg SeedSectionsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ExportSectionsHandler serialises the store and hands the payload to a
// destination.
type ExportSectionsHandler struct {
	inner *commands.Handler[ExportSectionsCommand]
}

// NewExportSectionsHandler binds the handler to lister and factory.
func NewExportSectionsHandler(lister export.Lister, factory DestinationFactory, logger interfaces.Logger, opts ...commands.HandlerOption[ExportSectionsCommand]) *ExportSectionsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ExportSectionsCommand) error {
		if factory == nil {
			return ErrDestinationFactoryRequired
		}
		var buf bytes.Buffer
		if err := export.WriteJSONL(ctx, lister, &buf); err != nil {
			return err
		}
		dest, err := factory(ctx, msg)
		if err != nil {
			return err
		}
		if err := dest.Write(ctx, buf.Bytes()); err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"bytes":       buf.Len(),
			"destination": msg.Destination,
		}).Info("sections.command.export.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[ExportSectionsCommand]{
		commands.WithLogger[ExportSectionsCommand](baseLogger),
		commands.WithOperation[ExportSectionsCommand](exportOperation),
		commands.WithMessageFields(func(msg ExportSectionsCommand) map[string]any {
			fields := map[string]any{"destination": msg.Destination}
			if msg.Path != "" {
				fields["path"] = msg.Path
			}
			if msg.Bucket != "" {
				fields["bucket"] = msg.Bucket
				fields["key"] = msg.Key
			}
			return fields
		}),
	}
	return &ExportSectionsHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[ExportSectionsCommand].
func (h *ExportSectionsHandler) Execute(ctx context.Context, msg ExportSectionsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpdateSectionHandler overwrites one section through the service.
type UpdateSectionHandler struct {
	inner *commands.Handler[UpdateSectionCommand]
}

// NewUpdateSectionHandler binds the handler to service.
func NewUpdateSectionHandler(service sections.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateSectionCommand]) *UpdateSectionHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg UpdateSectionCommand) error {
		_, err := service.Update(ctx, sections.UpdateRequest{
			Page:    msg.Page,
			Key:     msg.Key,
			Title:   msg.Title,
			Content: msg.Content,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[UpdateSectionCommand]{
		commands.WithLogger[UpdateSectionCommand](baseLogger),
		commands.WithOperation[UpdateSectionCommand](updateOperation),
		commands.WithMessageFields(func(msg UpdateSectionCommand) map[string]any {
			return map[string]any{
				"page":        msg.Page,
				"section_key": msg.Key,
			}
		}),
	}
	return &UpdateSectionHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[UpdateSectionCommand].
func (h *UpdateSectionHandler) Execute(ctx context.Context, msg UpdateSectionCommand) error {
	return h.inner.Execute(ctx, msg)
}
