package interfaces

import "context"

// MarkdownRenderer converts Markdown source into sanitised HTML that is safe
// to embed in visitor-facing pages.
type MarkdownRenderer interface {
	Render(ctx context.Context, markdown string) (string, error)
}

// ParseOptions customises the goldmark engine. Option names stay readable
// for configuration files and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
}
