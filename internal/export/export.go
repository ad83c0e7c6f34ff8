package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/goliatone/go-portfolio/internal/sections"
)

// FormatVersion is written in the header of every export.
const FormatVersion = "1"

// Lister is the read side of the section store used by exports.
type Lister interface {
	ListAll(ctx context.Context) ([]*sections.Section, error)
}

// Destination receives a complete export payload.
type Destination interface {
	Write(ctx context.Context, data []byte) error
}

// Header is the first JSONL record of an export.
type Header struct {
	Type         string    `json:"type"`
	Version      string    `json:"version"`
	Timestamp    time.Time `json:"timestamp"`
	SectionCount int       `json:"section_count"`
}

// Record wraps one JSONL line after the header.
type Record struct {
	Type string            `json:"type"`
	Data *sections.Section `json:"data"`
}

// WriteJSONL writes every stored section as JSONL to w, ordered by page,
// position and key.
func WriteJSONL(ctx context.Context, lister Lister, w io.Writer) error {
	return writeJSONL(ctx, lister, w, time.Now)
}

func writeJSONL(ctx context.Context, lister Lister, w io.Writer, now func() time.Time) error {
	list, err := lister.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list sections: %w", err)
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Page != list[j].Page {
			return list[i].Page < list[j].Page
		}
		if list[i].Position != list[j].Position {
			return list[i].Position < list[j].Position
		}
		return list[i].Key < list[j].Key
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(Header{
		Type:         "header",
		Version:      FormatVersion,
		Timestamp:    now().UTC(),
		SectionCount: len(list),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	for _, section := range list {
		if err := enc.Encode(Record{Type: "section", Data: section}); err != nil {
			return fmt.Errorf("encode section %s/%s: %w", section.Page, section.Key, err)
		}
	}
	return nil
}
