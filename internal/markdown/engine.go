package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// feature is a configurable Markdown capability. A nil extender means core
// goldmark already covers it.
type feature struct {
	extender  goldmark.Extender
	hardWraps bool
}

// features accepts goldmark names and the Python-Markdown names older
// configuration files use (tables, nl2br, fenced_code, toc).
var features = map[string]feature{
	"gfm":           {extender: extension.GFM},
	"table":         {extender: extension.Table},
	"tables":        {extender: extension.Table},
	"strikethrough": {extender: extension.Strikethrough},
	"linkify":       {extender: extension.Linkify},
	"autolink":      {extender: extension.Linkify},
	"tasklist":      {extender: extension.TaskList},
	"footnote":      {extender: extension.Footnote},
	"definition":    {extender: extension.DefinitionList},
	"typographer":   {extender: extension.Typographer},
	"nl2br":         {hardWraps: true},
	"fenced_code":   {},
	"toc":           {},
}

// DefaultExtensions is used when no extension names are configured.
var DefaultExtensions = []string{"gfm", "footnote"}

// resolveFeatures maps names to extenders. Unknown names are ignored and
// duplicates collapse.
func resolveFeatures(names []string) ([]goldmark.Extender, bool) {
	if len(names) == 0 {
		names = DefaultExtensions
	}
	var (
		extenders []goldmark.Extender
		hardWraps bool
		seen      = map[string]bool{}
	)
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		f, ok := features[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		hardWraps = hardWraps || f.hardWraps
		if f.extender != nil {
			extenders = append(extenders, f.extender)
		}
	}
	return extenders, hardWraps
}

// engine is a goldmark instance built once per renderer. Raw HTML in the
// source is replaced by an omission comment because html.WithUnsafe is
// never set.
type engine struct {
	md goldmark.Markdown
}

func newEngine(opts interfaces.ParseOptions) *engine {
	extenders, hardWraps := resolveFeatures(opts.Extensions)
	options := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithExtensions(extenders...),
	}
	if opts.HardWraps || hardWraps {
		options = append(options, goldmark.WithRendererOptions(html.WithHardWraps()))
	}
	return &engine{md: goldmark.New(options...)}
}

func (e *engine) convert(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.md.Convert(source, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
