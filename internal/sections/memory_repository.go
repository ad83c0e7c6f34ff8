package sections

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-portfolio/internal/identity"
)

// MemoryRepository stores sections in-memory for tests and lightweight deployments.
type MemoryRepository struct {
	mu          sync.RWMutex
	sections    map[string]*Section
	now         func() time.Time
	broadcaster *changeBroadcaster
}

// MemoryOption configures a MemoryRepository.
type MemoryOption func(*MemoryRepository)

// WithMemoryClock overrides the clock used to stamp writes.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(r *MemoryRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository(opts ...MemoryOption) *MemoryRepository {
	r := &MemoryRepository{
		sections:    make(map[string]*Section),
		now:         time.Now,
		broadcaster: newChangeBroadcaster(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func memoryKey(page, key string) string {
	return page + "\x00" + key
}

// Get returns the stored section or ErrSectionNotFound.
func (r *MemoryRepository) Get(ctx context.Context, page, key string) (*Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, key, err := validateIdentifiers(page, key)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	section, ok := r.sections[memoryKey(page, key)]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSectionNotFound
	}
	return cloneSection(section), nil
}

// Upsert creates or overwrites the section for input.Page and input.Key.
func (r *MemoryRepository) Upsert(ctx context.Context, input UpsertInput) (*Section, ChangeType, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	page, key, err := validateIdentifiers(input.Page, input.Key)
	if err != nil {
		return nil, "", err
	}
	now := r.now().UTC()

	r.mu.Lock()
	existing, exists := r.sections[memoryKey(page, key)]
	var stored Section
	if exists {
		stored = *existing
	} else {
		stored = Section{
			ID:        identity.SectionUUID(page, key),
			Page:      page,
			Key:       key,
			Position:  input.DefaultPosition,
			Visible:   true,
			CreatedAt: now,
			Persisted: true,
		}
	}
	stored.Title = input.Title
	stored.Content = input.Content
	stored.RenderedHTML = input.RenderedHTML
	if input.Position != nil {
		stored.Position = *input.Position
	}
	if input.Visible != nil {
		stored.Visible = *input.Visible
	}
	stored.UpdatedAt = now
	r.sections[memoryKey(page, key)] = &stored
	r.mu.Unlock()

	changeType := ChangeCreated
	if exists {
		changeType = ChangeUpdated
	}
	r.broadcaster.Broadcast(newChangeEvent(changeType, &stored))
	return cloneSection(&stored), changeType, nil
}

// List returns a page's sections ordered by position then key.
func (r *MemoryRepository) List(ctx context.Context, page string) ([]*Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page = NormalizeIdentifier(page)
	if err := ValidatePage(page); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]*Section, 0)
	for _, section := range r.sections {
		if section.Page == page {
			out = append(out, cloneSection(section))
		}
	}
	r.mu.RUnlock()

	SortSections(out)
	return out, nil
}

// ListAll returns every section ordered by page, position and key.
func (r *MemoryRepository) ListAll(ctx context.Context) ([]*Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]*Section, 0, len(r.sections))
	for _, section := range r.sections {
		out = append(out, cloneSection(section))
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return lessSection(out[i], out[j])
	})
	return out, nil
}

// Delete removes a section or returns ErrSectionNotFound.
func (r *MemoryRepository) Delete(ctx context.Context, page, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	page, key, err := validateIdentifiers(page, key)
	if err != nil {
		return err
	}

	r.mu.Lock()
	section, ok := r.sections[memoryKey(page, key)]
	if !ok {
		r.mu.Unlock()
		return ErrSectionNotFound
	}
	delete(r.sections, memoryKey(page, key))
	r.mu.Unlock()

	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, section))
	return nil
}

// Subscribe delivers change events until the context is cancelled.
func (r *MemoryRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

// SortSections orders sections by position then key in place.
func SortSections(list []*Section) {
	sort.SliceStable(list, func(i, j int) bool {
		return lessSection(list[i], list[j])
	})
}

func lessSection(a, b *Section) bool {
	if a.Position != b.Position {
		return a.Position < b.Position
	}
	return a.Key < b.Key
}
