package sections

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-portfolio/internal/identity"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// Service describes the section lifecycle used by the API, the public pages
// and the CLI.
type Service interface {
	Get(ctx context.Context, page, key string) (*Section, error)
	Update(ctx context.Context, req UpdateRequest) (*Section, error)
	Preview(ctx context.Context, content string) (string, error)
	ListPage(ctx context.Context, page string) ([]*Section, error)
	Create(ctx context.Context, req CreateRequest) (*Section, error)
	Delete(ctx context.Context, page, key string) error
	Seed(ctx context.Context, opts SeedOptions) (SeedResult, error)
}

// UpdateRequest is a full overwrite of a section's title and content.
type UpdateRequest struct {
	Page    string
	Key     string
	Title   string
	Content string
}

// CreateRequest adds a section that does not exist yet. An empty Key is
// derived from Title.
type CreateRequest struct {
	Page     string
	Key      string
	Title    string
	Content  string
	Position *int
	Visible  *bool
}

// SeedOptions selects catalog pages to persist. Empty Pages means all.
type SeedOptions struct {
	Pages     []string
	Overwrite bool
}

// SeedResult counts what a seed run did.
type SeedResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithCatalog replaces the embedded default catalog.
func WithCatalog(catalog *Catalog) ServiceOption {
	return func(s *service) {
		if catalog != nil {
			s.catalog = catalog
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo     Repository
	renderer interfaces.MarkdownRenderer
	catalog  *Catalog
	logger   interfaces.Logger
}

// NewService constructs the section service.
func NewService(repo Repository, renderer interfaces.MarkdownRenderer, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	if renderer == nil {
		panic(ErrRendererRequired)
	}
	s := &service{
		repo:     repo,
		renderer: renderer,
		catalog:  defaultCatalog(),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the stored section. A missing section yields its catalog
// default, or an empty section titled after the key. Reads never persist.
func (s *service) Get(ctx context.Context, page, key string) (*Section, error) {
	page, key, err := validateIdentifiers(page, key)
	if err != nil {
		return nil, err
	}
	section, err := s.repo.Get(ctx, page, key)
	if err == nil {
		return section, nil
	}
	if !errors.Is(err, ErrSectionNotFound) {
		return nil, err
	}
	return s.placeholder(ctx, page, key)
}

func (s *service) placeholder(ctx context.Context, page, key string) (*Section, error) {
	section := &Section{
		ID:      identity.SectionUUID(page, key),
		Page:    page,
		Key:     key,
		Title:   TitleFromKey(key),
		Visible: true,
	}
	if def, ok := s.catalog.Lookup(page, key); ok {
		section.Title = def.Title
		section.Content = def.Content
		section.Position = def.Position
	}
	html, err := s.renderer.Render(ctx, section.Content)
	if err != nil {
		return nil, err
	}
	section.RenderedHTML = html
	return section, nil
}

// Update renders req.Content and overwrites the section, creating it when
// absent. The stored HTML always matches the stored content.
func (s *service) Update(ctx context.Context, req UpdateRequest) (*Section, error) {
	page, key, err := validateIdentifiers(req.Page, req.Key)
	if err != nil {
		return nil, err
	}
	html, err := s.renderer.Render(ctx, req.Content)
	if err != nil {
		return nil, err
	}

	input := UpsertInput{
		Page:         page,
		Key:          key,
		Title:        req.Title,
		Content:      req.Content,
		RenderedHTML: html,
	}
	if def, ok := s.catalog.Lookup(page, key); ok {
		input.DefaultPosition = def.Position
	}

	section, change, err := s.repo.Upsert(ctx, input)
	if err != nil {
		logging.WithSection(s.logger.WithContext(ctx), page, key).Error("section.update.failed", "error", err)
		return nil, err
	}
	logging.WithSection(s.logger.WithContext(ctx), page, key).Info("section."+string(change),
		"updated_at", section.UpdatedAt,
		"content_bytes", len(section.Content),
	)
	return section, nil
}

// Preview renders content without touching the store.
func (s *service) Preview(ctx context.Context, content string) (string, error) {
	return s.renderer.Render(ctx, content)
}

// ListPage merges stored sections with the page's catalog defaults that
// have not been saved yet.
func (s *service) ListPage(ctx context.Context, page string) ([]*Section, error) {
	page = NormalizeIdentifier(page)
	if err := ValidatePage(page); err != nil {
		return nil, err
	}
	stored, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(stored))
	for _, section := range stored {
		seen[section.Key] = struct{}{}
	}
	out := stored
	for _, def := range s.catalog.Page(page) {
		if _, ok := seen[def.Key]; ok {
			continue
		}
		section, err := s.placeholder(ctx, page, def.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, section)
	}
	SortSections(out)
	return out, nil
}

// Create adds a new section and fails with ErrSectionExists when the key is
// already stored.
func (s *service) Create(ctx context.Context, req CreateRequest) (*Section, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	key := req.Key
	if strings.TrimSpace(key) == "" {
		derived, err := KeyFromTitle(title)
		if err != nil {
			return nil, err
		}
		key = derived
	}
	page, key, err := validateIdentifiers(req.Page, key)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Get(ctx, page, key); err == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrSectionExists, page, key)
	} else if !errors.Is(err, ErrSectionNotFound) {
		return nil, err
	}

	html, err := s.renderer.Render(ctx, req.Content)
	if err != nil {
		return nil, err
	}
	section, _, err := s.repo.Upsert(ctx, UpsertInput{
		Page:         page,
		Key:          key,
		Title:        title,
		Content:      req.Content,
		RenderedHTML: html,
		Position:     req.Position,
		Visible:      req.Visible,
	})
	if err != nil {
		return nil, err
	}
	logging.WithSection(s.logger.WithContext(ctx), page, key).Info("section.created", "position", section.Position)
	return section, nil
}

// Delete removes a stored section.
func (s *service) Delete(ctx context.Context, page, key string) error {
	page, key, err := validateIdentifiers(page, key)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, page, key); err != nil {
		return err
	}
	logging.WithSection(s.logger.WithContext(ctx), page, key).Info("section.deleted")
	return nil
}

// Seed persists catalog defaults. Existing sections are skipped unless
// opts.Overwrite is set.
func (s *service) Seed(ctx context.Context, opts SeedOptions) (SeedResult, error) {
	var result SeedResult
	pages := opts.Pages
	if len(pages) == 0 {
		pages = s.catalog.Pages()
	}

	for _, raw := range pages {
		page := NormalizeIdentifier(raw)
		defaults := s.catalog.Page(page)
		if len(defaults) == 0 {
			return result, fmt.Errorf("%w: %q", ErrUnknownPage, raw)
		}
		for _, def := range defaults {
			if !opts.Overwrite {
				_, err := s.repo.Get(ctx, page, def.Key)
				if err == nil {
					result.Skipped++
					continue
				}
				if !errors.Is(err, ErrSectionNotFound) {
					return result, err
				}
			}

			html, err := s.renderer.Render(ctx, def.Content)
			if err != nil {
				return result, err
			}
			position := def.Position
			_, change, err := s.repo.Upsert(ctx, UpsertInput{
				Page:         page,
				Key:          def.Key,
				Title:        def.Title,
				Content:      def.Content,
				RenderedHTML: html,
				Position:     &position,
			})
			if err != nil {
				return result, err
			}
			if change == ChangeCreated {
				result.Created++
			} else {
				result.Updated++
			}
		}
	}

	s.logger.WithContext(ctx).Info("sections.seeded",
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
	)
	return result, nil
}

// KeyFromTitle derives a section key from a title: "What I Do" becomes
// "what_i_do".
func KeyFromTitle(title string) (string, error) {
	normalized, err := slug.Normalize(title)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	key := strings.ReplaceAll(normalized, "-", "_")
	if key == "" {
		return "", ErrInvalidKey
	}
	return key, nil
}
