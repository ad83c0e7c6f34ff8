package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-portfolio/internal/auth"
	"github.com/goliatone/go-portfolio/internal/markdown"
	"github.com/goliatone/go-portfolio/internal/runtimeconfig"
	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

func setupSite(t *testing.T) (http.Handler, sections.Service) {
	t.Helper()
	svc := sections.NewService(sections.NewMemoryRepository(), markdown.NewRenderer(interfaces.ParseOptions{}),
		sections.WithCatalog(sections.MustDefaultCatalog()))
	h, err := New(svc, runtimeconfig.SiteConfig{Name: "Jane Doe", Tagline: "Engineer"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mux := http.NewServeMux()
	if err := h.Register(mux); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return mux, svc
}

func get(t *testing.T, h http.Handler, path string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if admin {
		req = req.WithContext(auth.WithContext(req.Context(), auth.Context{Username: "admin", Authenticated: true}))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPagesRenderSections(t *testing.T) {
	h, svc := setupSite(t)
	if _, err := svc.Update(context.Background(), sections.UpdateRequest{Page: "about", Key: "intro", Title: "Intro", Content: "Hello **world**"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rec := get(t, h, "/about", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`<div class="editable-section" data-page="about" data-section="intro">`,
		`<div class="section-content"><p>Hello <strong>world</strong></p></div>`,
		`data-section="looking_for"`,
		`<title>About · Jane Doe</title>`,
		`<meta name="description" content="Hello world">`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in page:\n%s", want, body)
		}
	}
	if strings.Contains(body, "editor.js") {
		t.Fatalf("visitors must not receive the editor")
	}
}

func TestPagesIncludeEditorForAdmins(t *testing.T) {
	h, _ := setupSite(t)
	rec := get(t, h, "/", true)
	body := rec.Body.String()
	if !strings.Contains(body, `<script src="/static/editor.js" defer></script>`) {
		t.Fatalf("expected editor script for admins")
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("expected admin pages to skip caches")
	}
}

func TestHiddenSectionsSkippedForVisitors(t *testing.T) {
	h, svc := setupSite(t)
	hidden := false
	if _, err := svc.Create(context.Background(), sections.CreateRequest{Page: "now", Key: "secret", Title: "Secret", Content: "shh", Visible: &hidden}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if strings.Contains(get(t, h, "/now", false).Body.String(), `data-section="secret"`) {
		t.Fatalf("hidden section rendered for a visitor")
	}
	if !strings.Contains(get(t, h, "/now", true).Body.String(), `editable-section is-hidden`) {
		t.Fatalf("expected hidden section marked for admins")
	}
}

func TestLoginAndStatic(t *testing.T) {
	h, _ := setupSite(t)

	if rec := get(t, h, "/admin/login", false); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `id="login-form"`) {
		t.Fatalf("unexpected login page %d", rec.Code)
	}
	rec := get(t, h, "/static/editor.js", false)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "PREVIEW_DELAY_MS = 300") {
		t.Fatalf("expected editor asset, got %d", rec.Code)
	}
	if rec := get(t, h, "/missing", false); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", rec.Code)
	}
}
