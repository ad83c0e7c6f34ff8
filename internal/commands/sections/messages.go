package sectionscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	seedMessageType   = "portfolio.sections.seed"
	exportMessageType = "portfolio.sections.export"
	updateMessageType = "portfolio.sections.update"
)

// Export destinations.
const (
	DestinationFile = "file"
	DestinationS3   = "s3"
)

// SeedSectionsCommand writes catalog defaults into the store.
type SeedSectionsCommand struct {
	// Pages limits seeding to the listed pages. Empty seeds every page.
	Pages []string `json:"pages,omitempty"`
	// Overwrite replaces sections that already exist.
	Overwrite bool `json:"overwrite,omitempty"`
}

// Type implements command.Message.
func (SeedSectionsCommand) Type() string { return seedMessageType }

// Validate rejects blank page names.
func (cmd SeedSectionsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Pages, validation.Each(validation.By(notBlank("portfolio.sections.seed.page_required", "page must not be blank")))),
	)
}

// ExportSectionsCommand writes every stored section as JSONL to a file or an
// S3 object.
type ExportSectionsCommand struct {
	Destination string `json:"destination"`
	Path        string `json:"path,omitempty"`
	Bucket      string `json:"bucket,omitempty"`
	Key         string `json:"key,omitempty"`
}

// Type implements command.Message.
func (ExportSectionsCommand) Type() string { return exportMessageType }

// Validate checks the destination and the fields it requires.
func (cmd ExportSectionsCommand) Validate() error {
	destination := strings.ToLower(strings.TrimSpace(cmd.Destination))
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Destination, validation.Required, validation.In(DestinationFile, DestinationS3)),
		validation.Field(&cmd.Path, validation.When(destination == DestinationFile,
			validation.Required, validation.By(notBlank("portfolio.sections.export.path_required", "path is required")))),
		validation.Field(&cmd.Bucket, validation.When(destination == DestinationS3,
			validation.Required, validation.By(notBlank("portfolio.sections.export.bucket_required", "bucket is required")))),
		validation.Field(&cmd.Key, validation.When(destination == DestinationS3,
			validation.Required, validation.By(notBlank("portfolio.sections.export.key_required", "key is required")))),
	)
}

// UpdateSectionCommand overwrites a section's title and content.
type UpdateSectionCommand struct {
	Page    string `json:"page"`
	Key     string `json:"section_key"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Type implements command.Message.
func (UpdateSectionCommand) Type() string { return updateMessageType }

// Validate ensures the section address and title are present. Content may
// be empty.
func (cmd UpdateSectionCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Page, validation.Required, validation.By(notBlank("portfolio.sections.update.page_required", "page is required"))),
		validation.Field(&cmd.Key, validation.Required, validation.By(notBlank("portfolio.sections.update.key_required", "section key is required"))),
		validation.Field(&cmd.Title, validation.Required, validation.By(notBlank("portfolio.sections.update.title_required", "title is required"))),
	)
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		text, _ := value.(string)
		if strings.TrimSpace(text) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
