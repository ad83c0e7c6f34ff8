package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/goliatone/go-portfolio/internal/sections"
)

func seededRepo(t *testing.T) *sections.MemoryRepository {
	t.Helper()
	repo := sections.NewMemoryRepository()
	ctx := context.Background()
	inputs := []sections.UpsertInput{
		{Page: "now", Key: "reading", Title: "Reading", Content: "Books", DefaultPosition: 3},
		{Page: "about", Key: "intro", Title: "Intro", Content: "<b>Hi</b> & welcome", RenderedHTML: "<p><b>Hi</b> &amp; welcome</p>", DefaultPosition: 0},
		{Page: "now", Key: "goals", Title: "Goals", Content: "Ship", DefaultPosition: 3},
		{Page: "now", Key: "intro", Title: "Intro", Content: "Now", DefaultPosition: 0},
	}
	for _, input := range inputs {
		if _, _, err := repo.Upsert(ctx, input); err != nil {
			t.Fatalf("Upsert(%s/%s) error = %v", input.Page, input.Key, err)
		}
	}
	return repo
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestWriteJSONLEmpty(t *testing.T) {
	var buf bytes.Buffer
	stamp := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	if err := writeJSONL(context.Background(), sections.NewMemoryRepository(), &buf, func() time.Time { return stamp }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := nonEmptyLines(buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected header only, got %d lines", len(lines))
	}
	var h Header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Type != "header" || h.Version != FormatVersion || h.SectionCount != 0 || !h.Timestamp.Equal(stamp) || h.Timestamp.Location() != time.UTC {
		t.Fatalf("unexpected header %+v", h)
	}
}

func TestWriteJSONLOrdersSections(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONL(context.Background(), seededRepo(t), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := nonEmptyLines(buf.String())
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), buf.String())
	}

	want := []string{"about/intro", "now/intro", "now/goals", "now/reading"}
	for i, line := range lines[1:] {
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unmarshal record %d: %v", i, err)
		}
		if rec.Type != "section" {
			t.Fatalf("record %d type = %q", i, rec.Type)
		}
		if got := rec.Data.Page + "/" + rec.Data.Key; got != want[i] {
			t.Fatalf("record %d = %s, want %s", i, got, want[i])
		}
	}
	if !strings.Contains(lines[1], "<p><b>Hi</b> &amp; welcome</p>") {
		t.Fatalf("expected unescaped html in %s", lines[1])
	}
}

type failingLister struct{}

func (failingLister) ListAll(context.Context) ([]*sections.Section, error) {
	return nil, errors.New("db gone")
}

func TestWriteJSONLPropagatesListError(t *testing.T) {
	err := WriteJSONL(context.Background(), failingLister{}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "list sections") {
		t.Fatalf("expected list error, got %v", err)
	}
}

func TestFileDestinationReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sections.jsonl")
	dest := NewFileDestination(path)

	if err := dest.Write(context.Background(), []byte("first\n")); err != nil {
		t.Fatalf("first Write() error = %v", err)
	}
	if err := dest.Write(context.Background(), []byte("second\n")); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != "second\n" {
		t.Fatalf("unexpected contents %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

type recordingPutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (p *recordingPutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	p.input = params
	if params.Body != nil {
		p.body, _ = io.ReadAll(params.Body)
	}
	if p.err != nil {
		return nil, p.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3DestinationPutsObject(t *testing.T) {
	putter := &recordingPutter{}
	dest := NewS3DestinationWithClient(putter, "backups", "portfolio/sections.jsonl")

	if err := dest.Write(context.Background(), []byte("{}\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if aws.ToString(putter.input.Bucket) != "backups" || aws.ToString(putter.input.Key) != "portfolio/sections.jsonl" {
		t.Fatalf("unexpected target %s/%s", aws.ToString(putter.input.Bucket), aws.ToString(putter.input.Key))
	}
	if aws.ToString(putter.input.ContentType) != jsonlContentType || string(putter.body) != "{}\n" {
		t.Fatalf("unexpected upload %q (%s)", putter.body, aws.ToString(putter.input.ContentType))
	}

	putter.err = errors.New("access denied")
	if err := dest.Write(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "s3 put object") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
