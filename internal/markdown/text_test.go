package markdown

import (
	"strings"
	"testing"
)

func TestPlain(t *testing.T) {
	input := "## Heading\n\nSome **bold** and *italic* with [a link](https://x.test) and `code`.\n\n```go\nfmt.Println()\n```\n\n- item"
	got := Plain(input)
	want := "Heading Some bold and italic with a link and . item"
	if got != want {
		t.Fatalf("Plain() = %q, want %q", got, want)
	}
}

func TestExcerpt(t *testing.T) {
	short := "Just a short line"
	if got := Excerpt(short, 0); got != short {
		t.Fatalf("expected short text unchanged, got %q", got)
	}

	long := strings.Repeat("word ", 60)
	got := Excerpt(long, 20)
	if got != "word word word word..." {
		t.Fatalf("unexpected excerpt %q", got)
	}
}

func TestReadTime(t *testing.T) {
	if got := ReadTime(""); got != 1 {
		t.Fatalf("expected minimum of one minute, got %d", got)
	}
	if got := ReadTime(strings.Repeat("word ", 500)); got != 3 {
		t.Fatalf("expected 3 minutes for 500 words, got %d", got)
	}
}

func TestParseFrontMatter(t *testing.T) {
	source := []byte("---\ntitle: What I Do\nposition: 2\n---\nI build **things**.\n")

	var meta struct {
		Title    string `yaml:"title"`
		Position int    `yaml:"position"`
	}
	body, err := ParseFrontMatter(source, &meta)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if meta.Title != "What I Do" || meta.Position != 2 {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if strings.TrimSpace(string(body)) != "I build **things**." {
		t.Fatalf("unexpected body %q", body)
	}
}
