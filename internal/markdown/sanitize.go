package markdown

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	classPattern    = regexp.MustCompile(`^[a-zA-Z0-9\s\-_:]+$`)
	checkboxPattern = regexp.MustCompile(`^checkbox$`)
)

// newPolicy extends the bluemonday UGC policy with the markup goldmark's
// extensions produce: task list checkboxes and footnote classes/roles.
func newPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(classPattern).Globally()
	policy.AllowAttrs("role").Matching(regexp.MustCompile(`^doc-[a-z]+$`)).Globally()
	policy.AllowAttrs("type").Matching(checkboxPattern).OnElements("input")
	policy.AllowAttrs("checked", "disabled").OnElements("input")
	return policy
}
