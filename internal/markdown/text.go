package markdown

import (
	"math"
	"regexp"
	"strings"
)

// WordsPerMinute is the reading speed used by ReadTime.
const WordsPerMinute = 200

// DefaultExcerptLength is the excerpt size used when callers pass max <= 0.
const DefaultExcerptLength = 200

var (
	fencedCode  = regexp.MustCompile("```[\\s\\S]*?```")
	inlineCode  = regexp.MustCompile("`[^`]+`")
	headings    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	images      = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	emphasis    = regexp.MustCompile(`\*{1,2}([^*]+)\*{1,2}`)
	listMarkers = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+`)
	whitespace  = regexp.MustCompile(`\s+`)
	wordPattern = regexp.MustCompile(`\w+`)
)

// Plain strips common Markdown syntax and collapses whitespace.
func Plain(markdown string) string {
	text := fencedCode.ReplaceAllString(markdown, "")
	text = inlineCode.ReplaceAllString(text, "")
	text = headings.ReplaceAllString(text, "")
	text = images.ReplaceAllString(text, "")
	text = links.ReplaceAllString(text, "$1")
	text = emphasis.ReplaceAllString(text, "$1")
	text = listMarkers.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// Excerpt returns the plain text of markdown cut at a word boundary so the
// result, before the "..." suffix, is at most limit bytes.
func Excerpt(markdown string, limit int) string {
	if limit <= 0 {
		limit = DefaultExcerptLength
	}
	plain := Plain(markdown)
	if len(plain) <= limit {
		return plain
	}
	cut := plain[:limit]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.ToValidUTF8(cut, "") + "..."
}

// ReadTime estimates reading time in whole minutes, never less than one.
func ReadTime(markdown string) int {
	words := len(wordPattern.FindAllString(markdown, -1))
	return max(1, int(math.Round(float64(words)/WordsPerMinute)))
}
