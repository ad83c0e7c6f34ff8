package sections

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Section is an independently editable block of Markdown on a page.
// RenderedHTML is always the rendering of Content at the time of the last
// write; nothing updates it on its own.
type Section struct {
	bun.BaseModel `bun:"table:sections,alias:s" json:"-"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Page         string    `bun:"page,notnull,unique:sections_page_key" json:"page"`
	Key          string    `bun:"section_key,notnull,unique:sections_page_key" json:"section_key"`
	Title        string    `bun:"title,notnull" json:"title"`
	Content      string    `bun:"content,notnull" json:"content"`
	RenderedHTML string    `bun:"rendered_html,notnull" json:"rendered_html"`
	Position     int       `bun:"position,notnull" json:"position"`
	Visible      bool      `bun:"visible,notnull" json:"visible"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updated_at"`

	// Persisted is false for catalog defaults that have never been saved.
	Persisted bool `bun:"-" json:"persisted"`
}

// UpsertInput carries a full write for the section identified by Page and
// Key. RenderedHTML must already be the rendering of Content.
type UpsertInput struct {
	Page         string
	Key          string
	Title        string
	Content      string
	RenderedHTML string

	// Position and Visible overwrite stored values when set. New rows
	// without them take DefaultPosition and are visible.
	Position        *int
	Visible         *bool
	DefaultPosition int
}

// ChangeType enumerates section change events.
type ChangeType string

const (
	// ChangeCreated indicates a new section row was persisted.
	ChangeCreated ChangeType = "created"
	// ChangeUpdated indicates an existing section was overwritten.
	ChangeUpdated ChangeType = "updated"
	// ChangeDeleted indicates a section was removed.
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent reports section mutations to interested subscribers.
type ChangeEvent struct {
	Type    ChangeType
	Section Section
}

func cloneSection(section *Section) *Section {
	if section == nil {
		return nil
	}
	cloned := *section
	return &cloned
}

func cloneSections(src []*Section) []*Section {
	out := make([]*Section, len(src))
	for i, section := range src {
		out[i] = cloneSection(section)
	}
	return out
}

func newChangeEvent(changeType ChangeType, section *Section) ChangeEvent {
	evt := ChangeEvent{Type: changeType}
	if section != nil {
		evt.Section = *section
	}
	return evt
}
