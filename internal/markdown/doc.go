// Package markdown turns section Markdown into sanitised HTML. goldmark does
// the parsing and bluemonday scrubs the result before it reaches a page.
package markdown
