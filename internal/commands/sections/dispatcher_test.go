package sectionscmd

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/sections"
)

type flakyRepository struct {
	sections.Repository
	failures atomic.Int32
}

func (r *flakyRepository) Upsert(ctx context.Context, input sections.UpsertInput) (*sections.Section, sections.ChangeType, error) {
	if r.failures.Load() > 0 {
		r.failures.Add(-1)
		return nil, "", errors.New("database is locked")
	}
	return r.Repository.Upsert(ctx, input)
}

func TestDispatchedSeedRetriesTransientStoreFailure(t *testing.T) {
	repo := &flakyRepository{Repository: sections.NewMemoryRepository()}
	repo.failures.Store(1)

	handler := NewSeedSectionsHandler(newService(repo), logging.NoOp())
	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), SeedSectionsCommand{Pages: []string{"contact"}}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}

	stored, err := repo.List(context.Background(), "contact")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	catalog := sections.MustDefaultCatalog()
	if want := len(catalog.Page("contact")); len(stored) != want {
		t.Fatalf("expected %d seeded sections, got %d", want, len(stored))
	}
}

func TestDispatchedUpdateSurfacesValidationWithoutRetry(t *testing.T) {
	repo := &flakyRepository{Repository: sections.NewMemoryRepository()}
	handler := NewUpdateSectionHandler(newService(repo), logging.NoOp())
	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	err := dispatcher.Dispatch(context.Background(), UpdateSectionCommand{Page: "now", Key: "", Content: "x"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	list, _ := repo.ListAll(context.Background())
	if len(list) != 0 {
		t.Fatalf("invalid command must not write, got %d sections", len(list))
	}
}
