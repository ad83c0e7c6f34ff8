package sections

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/goliatone/go-portfolio/internal/markdown"
)

//go:embed defaults
var defaultsFS embed.FS

// Default is the seed content for one section of the catalog.
type Default struct {
	Page     string
	Key      string
	Title    string
	Content  string
	Position int
}

type defaultMeta struct {
	Title    string `yaml:"title"`
	Position int    `yaml:"position"`
}

// Catalog holds the default sections per page.
type Catalog struct {
	pages map[string][]Default
}

// DefaultCatalog loads the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	sub, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		return nil, err
	}
	return LoadCatalog(sub)
}

// defaultCatalog parses the embedded catalog once per process.
var defaultCatalog = sync.OnceValue(MustDefaultCatalog)

// MustDefaultCatalog is DefaultCatalog for package initialisation.
func MustDefaultCatalog() *Catalog {
	catalog, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return catalog
}

// LoadCatalog reads <page>/<key>.md files with title and position front
// matter from fsys.
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	catalog := &Catalog{pages: map[string][]Default{}}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".md" {
			return nil
		}
		page := path.Base(path.Dir(p))
		key := strings.TrimSuffix(path.Base(p), ".md")
		if err := ValidatePage(page); err != nil {
			return fmt.Errorf("catalog %s: %w", p, err)
		}
		if err := ValidateKey(key); err != nil {
			return fmt.Errorf("catalog %s: %w", p, err)
		}

		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		var meta defaultMeta
		body, err := markdown.ParseFrontMatter(raw, &meta)
		if err != nil {
			return fmt.Errorf("catalog %s: %w", p, err)
		}
		title := strings.TrimSpace(meta.Title)
		if title == "" {
			title = TitleFromKey(key)
		}
		catalog.pages[page] = append(catalog.pages[page], Default{
			Page:     page,
			Key:      key,
			Title:    title,
			Content:  strings.TrimSpace(string(body)),
			Position: meta.Position,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	for page := range catalog.pages {
		defaults := catalog.pages[page]
		sort.SliceStable(defaults, func(i, j int) bool {
			if defaults[i].Position != defaults[j].Position {
				return defaults[i].Position < defaults[j].Position
			}
			return defaults[i].Key < defaults[j].Key
		})
	}
	return catalog, nil
}

// Pages returns the catalog's page names in lexical order.
func (c *Catalog) Pages() []string {
	if c == nil {
		return nil
	}
	pages := make([]string, 0, len(c.pages))
	for page := range c.pages {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages
}

// Page returns the defaults for page in display order.
func (c *Catalog) Page(page string) []Default {
	if c == nil {
		return nil
	}
	return append([]Default(nil), c.pages[page]...)
}

// Lookup finds the default for a page and key.
func (c *Catalog) Lookup(page, key string) (Default, bool) {
	if c == nil {
		return Default{}, false
	}
	for _, def := range c.pages[page] {
		if def.Key == key {
			return def, true
		}
	}
	return Default{}, false
}

// TitleFromKey turns a section key such as "what_i_do" into "What I Do".
func TitleFromKey(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-'
	})
	// Casers carry state and cannot be shared between goroutines.
	return cases.Title(language.English).String(strings.Join(words, " "))
}
