package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-portfolio/internal/auth"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/internal/validation"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

var (
	updateSectionSchema = validation.MustCompile("section_update", map[string]any{
		"type":     "object",
		"required": []any{"content", "title"},
		"properties": map[string]any{
			"content": map[string]any{"type": "string"},
			"title":   map[string]any{"type": "string"},
		},
	})
	createSectionSchema = validation.MustCompile("section_create", map[string]any{
		"type":     "object",
		"required": []any{"page", "title"},
		"properties": map[string]any{
			"page":        map[string]any{"type": "string"},
			"section_key": map[string]any{"type": "string"},
			"title":       map[string]any{"type": "string"},
			"content":     map[string]any{"type": "string"},
			"position":    map[string]any{"type": "integer"},
			"visible":     map[string]any{"type": "boolean"},
		},
	})
	previewSchema = validation.MustCompile("markdown_preview", map[string]any{
		"type":     "object",
		"required": []any{"content"},
		"properties": map[string]any{
			"content": map[string]any{"type": "string"},
		},
	})
)

type sectionUpdatePayload struct {
	Content string `json:"content"`
	Title   string `json:"title"`
}

type sectionCreatePayload struct {
	Page     string `json:"page"`
	Key      string `json:"section_key"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Position *int   `json:"position"`
	Visible  *bool  `json:"visible"`
}

type previewPayload struct {
	Content string `json:"content"`
}

type sectionSourceResponse struct {
	Content string `json:"content"`
	Title   string `json:"title"`
}

type sectionSavedResponse struct {
	HTML  string `json:"html"`
	Title string `json:"title"`
}

type previewResponse struct {
	HTML string `json:"html"`
}

type sectionView struct {
	Page      string     `json:"page"`
	Key       string     `json:"section_key"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	HTML      string     `json:"html"`
	Position  int        `json:"position"`
	Visible   bool       `json:"visible"`
	Persisted bool       `json:"persisted"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func newSectionView(section *sections.Section) sectionView {
	view := sectionView{
		Page:      section.Page,
		Key:       section.Key,
		Title:     section.Title,
		Content:   section.Content,
		HTML:      section.RenderedHTML,
		Position:  section.Position,
		Visible:   section.Visible,
		Persisted: section.Persisted,
	}
	if !section.UpdatedAt.IsZero() {
		updated := section.UpdatedAt.UTC()
		view.UpdatedAt = &updated
	}
	return view
}

// SectionAPI registers the section editing and preview endpoints.
type SectionAPI struct {
	basePath     string
	service      sections.Service
	logger       interfaces.Logger
	maxBodyBytes int64
}

// SectionOption mutates the SectionAPI configuration.
type SectionOption func(*SectionAPI)

// NewSectionAPI constructs a SectionAPI mounted under /api by default.
func NewSectionAPI(service sections.Service, opts ...SectionOption) *SectionAPI {
	api := &SectionAPI{
		basePath:     "/api",
		service:      service,
		logger:       logging.NoOp(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path.
func WithBasePath(path string) SectionOption {
	return func(api *SectionAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithLogger sets the logger used for server side failures.
func WithLogger(logger interfaces.Logger) SectionOption {
	return func(api *SectionAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// WithMaxBodyBytes caps request body size.
func WithMaxBodyBytes(limit int64) SectionOption {
	return func(api *SectionAPI) {
		if limit > 0 {
			api.maxBodyBytes = limit
		}
	}
}

// Register attaches the section endpoints to mux.
func (api *SectionAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api.service == nil {
		return fmt.Errorf("http: section service is required")
	}
	section := joinPath(api.basePath, "section")
	mux.HandleFunc("GET "+section+"/{page}/{section_key}", api.handleGet)
	mux.HandleFunc("PUT "+section+"/{page}/{section_key}", api.handleUpdate)
	mux.HandleFunc("DELETE "+section+"/{page}/{section_key}", api.handleDelete)
	mux.HandleFunc("POST "+section, api.handleCreate)
	mux.HandleFunc("GET "+joinPath(api.basePath, "sections")+"/{page}", api.handleList)
	mux.HandleFunc("POST "+joinPath(api.basePath, "markdown"), api.handlePreview)
	return nil
}

func (api *SectionAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	if err := auth.Require(r.Context()); err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	section, err := api.service.Get(r.Context(), r.PathValue("page"), r.PathValue("section_key"))
	if err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sectionSourceResponse{Content: section.Content, Title: section.Title})
}

func (api *SectionAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := auth.Require(r.Context()); err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	var payload sectionUpdatePayload
	if err := decodeJSON(w, r, api.maxBodyBytes, updateSectionSchema, &payload); err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	section, err := api.service.Update(r.Context(), sections.UpdateRequest{
		Page:    r.PathValue("page"),
		Key:     r.PathValue("section_key"),
		Title:   payload.Title,
		Content: payload.Content,
	})
	if err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sectionSavedResponse{HTML: section.RenderedHTML, Title: section.Title})
}

func (api *SectionAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := auth.Require(r.Context()); err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	if err := api.service.Delete(r.Context(), r.PathValue("page"), r.PathValue("section_key")); err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *SectionAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := auth.Require(r.Context()); err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	var payload sectionCreatePayload
	if err := decodeJSON(w, r, api.maxBodyBytes, createSectionSchema, &payload); err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	created, err := api.service.Create(r.Context(), sections.CreateRequest{
		Page:     payload.Page,
		Key:      payload.Key,
		Title:    payload.Title,
		Content:  payload.Content,
		Position: payload.Position,
		Visible:  payload.Visible,
	})
	if err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSectionView(created))
}

func (api *SectionAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if err := auth.Require(r.Context()); err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	list, err := api.service.ListPage(r.Context(), r.PathValue("page"))
	if err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	views := make([]sectionView, len(list))
	for i, section := range list {
		views[i] = newSectionView(section)
	}
	writeJSON(w, http.StatusOK, views)
}

func (api *SectionAPI) handlePreview(w http.ResponseWriter, r *http.Request) {
	if err := auth.Require(r.Context()); err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	var payload previewPayload
	if err := decodeJSON(w, r, api.maxBodyBytes, previewSchema, &payload); err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	html, err := api.service.Preview(r.Context(), payload.Content)
	if err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{HTML: html})
}
