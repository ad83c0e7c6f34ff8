package markdown

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// ErrRenderFailed wraps failures of the underlying Markdown engine.
var ErrRenderFailed = errors.New("markdown: render failed")

// Renderer is the trust boundary between admin-authored Markdown and visitor
// pages. Output is deterministic for a given input and options.
type Renderer struct {
	engine *engine
	policy *bluemonday.Policy
}

var _ interfaces.MarkdownRenderer = (*Renderer)(nil)

// NewRenderer builds a renderer for opts.
func NewRenderer(opts interfaces.ParseOptions) *Renderer {
	return &Renderer{
		engine: newEngine(opts),
		policy: newPolicy(),
	}
}

// Render converts markdown to sanitised HTML. Blank input renders to "".
func (r *Renderer) Render(ctx context.Context, markdown string) (string, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	raw, err := r.engine.convert([]byte(markdown))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return strings.TrimSpace(string(r.policy.SanitizeBytes(raw))), nil
}
