package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/goliatone/go-portfolio/internal/auth"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is a public route backed by the sections of one page.
type Page struct {
	Name  string
	Path  string
	Label string
	Title string
}

// DefaultPages are the site's public pages in navigation order.
var DefaultPages = []Page{
	{Name: "home", Path: "/", Label: "Home"},
	{Name: "about", Path: "/about", Label: "About", Title: "About"},
	{Name: "now", Path: "/now", Label: "Now", Title: "Now"},
	{Name: "resume", Path: "/resume", Label: "Resume", Title: "Resume"},
	{Name: "contact", Path: "/contact", Label: "Contact", Title: "Contact"},
}

const descriptionLength = 160

type navItem struct {
	Path   string
	Label  string
	Active bool
}

type sectionData struct {
	Key     string
	Title   string
	HTML    template.HTML
	Visible bool
}

type pageData struct {
	Site          runtimeconfig.SiteConfig
	Page          string
	Title         string
	Description   string
	Nav           []navItem
	Sections      []sectionData
	Authenticated bool
	Username      string
}

// Handler renders public pages and serves the editor assets.
type Handler struct {
	service sections.Service
	site    runtimeconfig.SiteConfig
	pages   []Page
	logger  interfaces.Logger
	page    *template.Template
	login   *template.Template
	static  fs.FS
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithPages overrides the public page list.
func WithPages(pages []Page) Option {
	return func(h *Handler) {
		if len(pages) > 0 {
			h.pages = pages
		}
	}
}

// New parses the embedded templates and builds a Handler.
func New(service sections.Service, site runtimeconfig.SiteConfig, opts ...Option) (*Handler, error) {
	if service == nil {
		return nil, fmt.Errorf("site: section service is required")
	}
	layout, err := template.ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("site: parse layout: %w", err)
	}
	page, err := extend(layout, "templates/page.html")
	if err != nil {
		return nil, err
	}
	login, err := extend(layout, "templates/login.html")
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	h := &Handler{
		service: service,
		site:    site,
		pages:   DefaultPages,
		logger:  logging.NoOp(),
		page:    page,
		login:   login,
		static:  static,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func extend(layout *template.Template, name string) (*template.Template, error) {
	clone, err := layout.Clone()
	if err != nil {
		return nil, err
	}
	tmpl, err := clone.ParseFS(templatesFS, name)
	if err != nil {
		return nil, fmt.Errorf("site: parse %s: %w", name, err)
	}
	return tmpl, nil
}

// Register mounts the pages, the login form and /static/ on mux.
func (h *Handler) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("site: mux is required")
	}
	for _, page := range h.pages {
		pattern := "GET " + page.Path
		if page.Path == "/" {
			pattern = "GET /{$}"
		}
		mux.HandleFunc(pattern, h.pageHandler(page))
	}
	mux.HandleFunc("GET /admin/login", h.handleLogin)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(h.static)))
	return nil
}

func (h *Handler) pageHandler(page Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac := auth.FromContext(r.Context())
		list, err := h.service.ListPage(r.Context(), page.Name)
		if err != nil {
			h.fail(w, r, "site.page.failed", err, "page", page.Name)
			return
		}

		data := h.baseData(r, page.Path)
		data.Page = page.Name
		data.Title = page.Title
		for _, section := range list {
			if !section.Visible && !ac.Authenticated {
				continue
			}
			data.Sections = append(data.Sections, sectionData{
				Key:     section.Key,
				Title:   section.Title,
				HTML:    template.HTML(section.RenderedHTML),
				Visible: section.Visible,
			})
			if data.Description == "" && section.Visible {
				data.Description = markdown.Excerpt(section.Content, descriptionLength)
			}
		}
		h.render(w, r, h.page, data)
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	data := h.baseData(r, "")
	data.Title = "Login"
	h.render(w, r, h.login, data)
}

func (h *Handler) baseData(r *http.Request, activePath string) pageData {
	ac := auth.FromContext(r.Context())
	nav := make([]navItem, len(h.pages))
	for i, page := range h.pages {
		nav[i] = navItem{Path: page.Path, Label: page.Label, Active: page.Path == activePath}
	}
	return pageData{
		Site:          h.site,
		Nav:           nav,
		Authenticated: ac.Authenticated,
		Username:      ac.Username,
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data pageData) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.fail(w, r, "site.render.failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if data.Authenticated {
		w.Header().Set("Cache-Control", "no-store")
	}
	_, _ = buf.WriteTo(w)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error, args ...any) {
	h.logger.WithContext(r.Context()).Error(msg, append(args, "error", err)...)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
