package sections

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMemoryRepository_CRUDEvents(t *testing.T) {
	clock := fixedClock(time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC))
	repo := NewMemoryRepository(WithMemoryClock(clock))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := repo.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if _, err := repo.Get(ctx, "about", "intro"); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}

	stored, change, err := repo.Upsert(ctx, UpsertInput{
		Page:            "about",
		Key:             "intro",
		Title:           "Intro",
		Content:         "Hi",
		RenderedHTML:    "<p>Hi</p>",
		DefaultPosition: 3,
	})
	if err != nil {
		t.Fatalf("Upsert() create error = %v", err)
	}
	if change != ChangeCreated || !stored.Visible || stored.Position != 3 || !stored.Persisted {
		t.Fatalf("unexpected create result %v %+v", change, stored)
	}
	assertEvent(t, events, ChangeCreated)

	hidden := false
	updated, change, err := repo.Upsert(ctx, UpsertInput{
		Page:         "about",
		Key:          "intro",
		Title:        "Intro",
		Content:      "Hello",
		RenderedHTML: "<p>Hello</p>",
		Visible:      &hidden,
	})
	if err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	if change != ChangeUpdated || updated.Visible || updated.Position != 3 {
		t.Fatalf("unexpected update result %v %+v", change, updated)
	}
	if !updated.CreatedAt.Equal(stored.CreatedAt) {
		t.Fatalf("expected created_at to be preserved")
	}
	assertEvent(t, events, ChangeUpdated)

	if err := repo.Delete(ctx, "about", "intro"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertEvent(t, events, ChangeDeleted)

	if err := repo.Delete(ctx, "about", "intro"); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	stored, _, err := repo.Upsert(ctx, UpsertInput{Page: "home", Key: "hero", Title: "Hero", Content: "x"})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	stored.Content = "mutated"

	fetched, err := repo.Get(ctx, "home", "hero")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if fetched.Content != "x" {
		t.Fatalf("expected stored copy to be isolated, got %q", fetched.Content)
	}
}

func TestMemoryRepository_ListOrdering(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for i, key := range []string{"b", "a", "c"} {
		position := 1
		if i == 2 {
			position = 0
		}
		if _, _, err := repo.Upsert(ctx, UpsertInput{Page: "now", Key: key, Position: &position}); err != nil {
			t.Fatalf("Upsert(%s) error = %v", key, err)
		}
	}
	if _, _, err := repo.Upsert(ctx, UpsertInput{Page: "about", Key: "intro"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	list, err := repo.List(ctx, "now")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got := keys(list); fmt.Sprint(got) != "[c a b]" {
		t.Fatalf("unexpected order %v", got)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 4 || all[0].Page != "about" {
		t.Fatalf("unexpected ListAll result %v", keys(all))
	}
}

func TestMemoryRepository_InvalidIdentifiers(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "", "intro"); !errors.Is(err, ErrInvalidPage) {
		t.Fatalf("expected ErrInvalidPage, got %v", err)
	}
	if _, _, err := repo.Upsert(ctx, UpsertInput{Page: "about", Key: "../etc"}); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestMemoryRepository_ConcurrentWritesLastWriteWins(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			content := fmt.Sprintf("v%d", i)
			if _, _, err := repo.Upsert(ctx, UpsertInput{Page: "about", Key: "intro", Content: content, RenderedHTML: "<p>" + content + "</p>"}); err != nil {
				t.Errorf("Upsert() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	section, err := repo.Get(ctx, "about", "intro")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if section.RenderedHTML != "<p>"+section.Content+"</p>" {
		t.Fatalf("content and html come from different writes: %q vs %q", section.Content, section.RenderedHTML)
	}
}

func TestBroadcaster_ClosesWatchersOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := newChangeBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	b.Broadcast(ChangeEvent{Type: ChangeCreated})
	assertEvent(t, ch, ChangeCreated)

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for channel close")
	}

	b.Broadcast(ChangeEvent{Type: ChangeDeleted})
}

func TestBroadcaster_CancelledContext(t *testing.T) {
	b := newChangeBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
}

func assertEvent(t *testing.T, ch <-chan ChangeEvent, want ChangeType) ChangeEvent {
	t.Helper()
	select {
	case evt := <-ch:
		if evt.Type != want {
			t.Fatalf("expected %s event, got %s", want, evt.Type)
		}
		return evt
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for %s event", want)
	}
	return ChangeEvent{}
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func keys(list []*Section) []string {
	out := make([]string, len(list))
	for i, section := range list {
		out[i] = section.Key
	}
	return out
}
