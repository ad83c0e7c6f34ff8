package events

import (
	"context"
	"time"

	"github.com/goliatone/go-portfolio/internal/sections"
)

// Section change subjects.
const (
	TopicSectionCreated = "portfolio.section.created"
	TopicSectionUpdated = "portfolio.section.updated"
	TopicSectionDeleted = "portfolio.section.deleted"
)

// Publisher delivers events to an external bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// SectionChanged is the payload published for every section mutation.
// Content is left out; subscribers fetch it if they need it.
type SectionChanged struct {
	Type       sections.ChangeType `json:"type"`
	Page       string              `json:"page"`
	SectionKey string              `json:"section_key"`
	Title      string              `json:"title"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// TopicFor maps a change type to its subject.
func TopicFor(change sections.ChangeType) string {
	switch change {
	case sections.ChangeCreated:
		return TopicSectionCreated
	case sections.ChangeDeleted:
		return TopicSectionDeleted
	default:
		return TopicSectionUpdated
	}
}

// NewSectionChanged builds the wire payload for evt.
func NewSectionChanged(evt sections.ChangeEvent) SectionChanged {
	return SectionChanged{
		Type:       evt.Type,
		Page:       evt.Section.Page,
		SectionKey: evt.Section.Key,
		Title:      evt.Section.Title,
		UpdatedAt:  evt.Section.UpdatedAt,
	}
}
