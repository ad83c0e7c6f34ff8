package sections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-portfolio/internal/identity"
)

// defaultPageSize is the batch size List and ListAll read with. Results are
// never truncated; further batches are fetched until one comes back short.
const defaultPageSize = 500

// NewSectionRepository creates the generic repository for section records.
func NewSectionRepository(db *bun.DB) repository.Repository[*Section] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Section]{
		NewRecord: func() *Section { return &Section{} },
		GetID: func(section *Section) uuid.UUID {
			return section.ID
		},
		SetID: func(section *Section, id uuid.UUID) {
			section.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(section *Section) string {
			return section.ID.String()
		},
	})
}

// BunRepository persists sections with Bun. Reads, lists and deletes go
// through go-repository-bun; writes are a single INSERT ... ON CONFLICT
// keyed by (page, section_key).
type BunRepository struct {
	db          *bun.DB
	repo        repository.Repository[*Section]
	now         func() time.Time
	pageSize    int
	broadcaster *changeBroadcaster
}

// BunOption configures a BunRepository.
type BunOption func(*BunRepository)

// WithBunClock overrides the clock used to stamp writes.
func WithBunClock(now func() time.Time) BunOption {
	return func(r *BunRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithBunPageSize sets the batch size used by List and ListAll.
func WithBunPageSize(size int) BunOption {
	return func(r *BunRepository) {
		if size > 0 {
			r.pageSize = size
		}
	}
}

// NewBunRepository constructs a Bun-backed repository.
func NewBunRepository(db *bun.DB, opts ...BunOption) *BunRepository {
	r := &BunRepository{
		db:          db,
		repo:        NewSectionRepository(db),
		now:         time.Now,
		pageSize:    defaultPageSize,
		broadcaster: newChangeBroadcaster(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the stored section or ErrSectionNotFound.
func (r *BunRepository) Get(ctx context.Context, page, key string) (*Section, error) {
	page, key, err := validateIdentifiers(page, key)
	if err != nil {
		return nil, err
	}
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page = ?", page).Where("?TableAlias.section_key = ?", key)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, page, key)
	}
	if len(records) == 0 {
		return nil, ErrSectionNotFound
	}
	return markPersisted(records[0]), nil
}

// Upsert writes input in one transaction and reads the stored row back.
func (r *BunRepository) Upsert(ctx context.Context, input UpsertInput) (*Section, ChangeType, error) {
	page, key, err := validateIdentifiers(input.Page, input.Key)
	if err != nil {
		return nil, "", err
	}

	now := r.now().UTC()
	record := &Section{
		ID:           identity.SectionUUID(page, key),
		Page:         page,
		Key:          key,
		Title:        input.Title,
		Content:      input.Content,
		RenderedHTML: input.RenderedHTML,
		Position:     input.DefaultPosition,
		Visible:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.Position != nil {
		record.Position = *input.Position
	}
	if input.Visible != nil {
		record.Visible = *input.Visible
	}

	var (
		stored  Section
		created bool
	)
	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*Section)(nil)).
			Where("page = ?", page).
			Where("section_key = ?", key).
			Exists(ctx)
		if err != nil {
			return err
		}
		created = !exists

		q := tx.NewInsert().
			Model(record).
			On("CONFLICT (page, section_key) DO UPDATE").
			Set("title = EXCLUDED.title").
			Set("content = EXCLUDED.content").
			Set("rendered_html = EXCLUDED.rendered_html").
			Set("updated_at = EXCLUDED.updated_at")
		if input.Position != nil {
			q = q.Set("position = EXCLUDED.position")
		}
		if input.Visible != nil {
			q = q.Set("visible = EXCLUDED.visible")
		}
		if _, err := q.Exec(ctx); err != nil {
			return err
		}

		return tx.NewSelect().
			Model(&stored).
			Where("?TableAlias.page = ?", page).
			Where("?TableAlias.section_key = ?", key).
			Scan(ctx)
	})
	if err != nil {
		return nil, "", fmt.Errorf("sections: upsert %s/%s: %w", page, key, err)
	}

	changeType := ChangeUpdated
	if created {
		changeType = ChangeCreated
	}
	stored.Persisted = true
	r.broadcaster.Broadcast(newChangeEvent(changeType, &stored))
	return cloneSection(&stored), changeType, nil
}

// List returns a page's sections ordered by position then key.
func (r *BunRepository) List(ctx context.Context, page string) ([]*Section, error) {
	page = NormalizeIdentifier(page)
	if err := ValidatePage(page); err != nil {
		return nil, err
	}
	records, err := r.listAll(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.page = ?", page).
			OrderExpr("?TableAlias.position ASC, ?TableAlias.section_key ASC")
	})
	if err != nil {
		return nil, fmt.Errorf("sections: list %s: %w", page, err)
	}
	return records, nil
}

// ListAll returns every section ordered by page, position and key.
func (r *BunRepository) ListAll(ctx context.Context) ([]*Section, error) {
	records, err := r.listAll(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.page ASC, ?TableAlias.position ASC, ?TableAlias.section_key ASC")
	})
	if err != nil {
		return nil, fmt.Errorf("sections: list all: %w", err)
	}
	return records, nil
}

// listAll reads every row matched by scope in pageSize batches. The scope
// must impose a total order so batches do not overlap.
func (r *BunRepository) listAll(ctx context.Context, scope func(*bun.SelectQuery) *bun.SelectQuery) ([]*Section, error) {
	var all []*Section
	for offset := 0; ; offset += r.pageSize {
		batch, _, err := r.repo.List(ctx,
			repository.SelectRawProcessor(scope),
			repository.SelectPaginate(r.pageSize, offset),
		)
		if err != nil {
			return nil, err
		}
		for _, record := range batch {
			all = append(all, markPersisted(record))
		}
		if len(batch) < r.pageSize {
			return all, nil
		}
	}
}

// Delete removes a section or returns ErrSectionNotFound.
func (r *BunRepository) Delete(ctx context.Context, page, key string) error {
	section, err := r.Get(ctx, page, key)
	if err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, &Section{ID: section.ID}); err != nil {
		return mapRepositoryError(err, section.Page, section.Key)
	}
	r.broadcaster.Broadcast(newChangeEvent(ChangeDeleted, section))
	return nil
}

// Subscribe delivers change events until the context is cancelled.
func (r *BunRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

func markPersisted(section *Section) *Section {
	if section != nil {
		section.Persisted = true
	}
	return section
}

func mapRepositoryError(err error, page, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows) {
		return ErrSectionNotFound
	}
	return fmt.Errorf("sections: %s/%s: %w", page, key, err)
}
