package sectionscmd

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-portfolio/internal/export"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

type captureLogger struct {
	fields       []map[string]any
	infoMessages []string
}

var _ interfaces.Logger = (*captureLogger)(nil)

func (c *captureLogger) Trace(string, ...any) {}
func (c *captureLogger) Debug(string, ...any) {}
func (c *captureLogger) Info(msg string, _ ...any) {
	c.infoMessages = append(c.infoMessages, msg)
}
func (c *captureLogger) Warn(string, ...any)  {}
func (c *captureLogger) Error(string, ...any) {}
func (c *captureLogger) Fatal(string, ...any) {}

func (c *captureLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	c.fields = append(c.fields, copied)
	return c
}

func (c *captureLogger) WithContext(context.Context) interfaces.Logger {
	return c
}

type memoryDestination struct {
	data []byte
	err  error
}

func (d *memoryDestination) Write(_ context.Context, data []byte) error {
	if d.err != nil {
		return d.err
	}
	d.data = append([]byte(nil), data...)
	return nil
}

func newService(repo sections.Repository) sections.Service {
	return sections.NewService(repo, markdown.NewRenderer(interfaces.ParseOptions{HardWraps: true}))
}

func TestSeedSectionsHandlerSeedsRequestedPages(t *testing.T) {
	repo := sections.NewMemoryRepository()
	logger := &captureLogger{}
	handler := NewSeedSectionsHandler(newService(repo), logger)

	if err := handler.Execute(context.Background(), SeedSectionsCommand{Pages: []string{"home"}}); err != nil {
		t.Fatalf("execute seed: %v", err)
	}

	stored, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(stored) == 0 {
		t.Fatal("expected seeded sections")
	}
	for _, section := range stored {
		if section.Page != "home" {
			t.Fatalf("unexpected page %q seeded", section.Page)
		}
		if section.RenderedHTML == "" {
			t.Fatalf("expected rendered html for %s", section.Key)
		}
	}

	found := false
	for _, fields := range logger.fields {
		if count, ok := fields["created_count"]; ok {
			found = true
			if count != len(stored) {
				t.Fatalf("expected created_count %d, got %v", len(stored), count)
			}
		}
	}
	if !found {
		t.Fatalf("expected summary fields recorded, got %#v", logger.fields)
	}
}

func TestSeedSectionsCommandRejectsBlankPage(t *testing.T) {
	handler := NewSeedSectionsHandler(newService(sections.NewMemoryRepository()), logging.NoOp())
	err := handler.Execute(context.Background(), SeedSectionsCommand{Pages: []string{" "}})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestSeedSectionsHandlerUnknownPage(t *testing.T) {
	handler := NewSeedSectionsHandler(newService(sections.NewMemoryRepository()), logging.NoOp())
	err := handler.Execute(context.Background(), SeedSectionsCommand{Pages: []string{"blog"}})
	if !errors.Is(err, sections.ErrUnknownPage) {
		t.Fatalf("expected ErrUnknownPage, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestExportSectionsHandlerWritesJSONL(t *testing.T) {
	repo := sections.NewMemoryRepository()
	if _, _, err := repo.Upsert(context.Background(), sections.UpsertInput{Page: "now", Key: "intro", Title: "Intro", Content: "x"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	dest := &memoryDestination{}
	var got ExportSectionsCommand
	factory := func(_ context.Context, msg ExportSectionsCommand) (export.Destination, error) {
		got = msg
		return dest, nil
	}
	handler := NewExportSectionsHandler(repo, factory, logging.NoOp())

	cmd := ExportSectionsCommand{Destination: DestinationFile, Path: "out.jsonl"}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute export: %v", err)
	}
	if got != cmd {
		t.Fatalf("factory received %+v", got)
	}

	lines := strings.Split(strings.TrimSpace(string(dest.data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one section, got %d lines", len(lines))
	}
	var header export.Header
	if err := json.Unmarshal([]byte(lines[0]), &header); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if header.SectionCount != 1 {
		t.Fatalf("unexpected header %+v", header)
	}
}

func TestExportSectionsCommandValidation(t *testing.T) {
	cases := []struct {
		name string
		cmd  ExportSectionsCommand
		ok   bool
	}{
		{name: "file", cmd: ExportSectionsCommand{Destination: "file", Path: "a.jsonl"}, ok: true},
		{name: "file without path", cmd: ExportSectionsCommand{Destination: "file"}},
		{name: "s3", cmd: ExportSectionsCommand{Destination: "s3", Bucket: "b", Key: "k"}, ok: true},
		{name: "s3 without bucket", cmd: ExportSectionsCommand{Destination: "s3", Key: "k"}},
		{name: "unknown destination", cmd: ExportSectionsCommand{Destination: "ftp", Path: "x"}},
		{name: "missing destination", cmd: ExportSectionsCommand{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid command, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestExportSectionsHandlerDestinationFailure(t *testing.T) {
	dest := &memoryDestination{err: errors.New("disk full")}
	handler := NewExportSectionsHandler(sections.NewMemoryRepository(), func(context.Context, ExportSectionsCommand) (export.Destination, error) {
		return dest, nil
	}, logging.NoOp())

	err := handler.Execute(context.Background(), ExportSectionsCommand{Destination: "file", Path: "x"})
	if err == nil || !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category error, got %v", err)
	}
}

func TestUpdateSectionHandlerRendersAndStores(t *testing.T) {
	repo := sections.NewMemoryRepository()
	handler := NewUpdateSectionHandler(newService(repo), logging.NoOp())

	err := handler.Execute(context.Background(), UpdateSectionCommand{
		Page:    "about",
		Key:     "intro",
		Title:   "Hello",
		Content: "**bold**",
	})
	if err != nil {
		t.Fatalf("execute update: %v", err)
	}
	stored, err := repo.Get(context.Background(), "about", "intro")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Title != "Hello" || stored.RenderedHTML != "<p><strong>bold</strong></p>" {
		t.Fatalf("unexpected stored section %+v", stored)
	}
}

func TestUpdateSectionCommandRequiresTitle(t *testing.T) {
	repo := sections.NewMemoryRepository()
	handler := NewUpdateSectionHandler(newService(repo), logging.NoOp())

	err := handler.Execute(context.Background(), UpdateSectionCommand{Page: "about", Key: "intro", Title: "  "})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if _, err := repo.Get(context.Background(), "about", "intro"); !errors.Is(err, sections.ErrSectionNotFound) {
		t.Fatalf("expected nothing stored, got %v", err)
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func TestRegisterSectionCommands(t *testing.T) {
	repo := sections.NewMemoryRepository()
	reg := &recordingRegistry{}
	set, err := RegisterSectionCommands(reg, newService(repo), repo, nil, nil)
	if err != nil {
		t.Fatalf("RegisterSectionCommands() error = %v", err)
	}
	if set.Seed == nil || set.Export == nil || set.Update == nil {
		t.Fatalf("expected all handlers, got %+v", set)
	}
	if len(reg.handlers) != 3 {
		t.Fatalf("expected 3 registrations, got %d", len(reg.handlers))
	}

	err = set.Export.Execute(context.Background(), ExportSectionsCommand{Destination: "file", Path: "x"})
	if !errors.Is(err, ErrDestinationFactoryRequired) {
		t.Fatalf("expected ErrDestinationFactoryRequired, got %v", err)
	}
}
