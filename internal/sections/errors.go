package sections

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrRepositoryRequired = errors.New("sections: repository required")
	ErrRendererRequired   = errors.New("sections: renderer required")
	ErrSectionNotFound    = errors.New("sections: section not found")
	ErrSectionExists      = errors.New("sections: section already exists")
	ErrInvalidPage        = errors.New("sections: page is invalid")
	ErrInvalidKey         = errors.New("sections: section key is invalid")
	ErrTitleRequired      = errors.New("sections: title is required")
)

const maxPageLength = 50

var identifierPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,99}$`)

// NormalizeIdentifier trims and lowercases a page or section key.
func NormalizeIdentifier(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// ValidatePage reports whether page is a well formed page name.
func ValidatePage(page string) error {
	if len(page) > maxPageLength || !identifierPattern.MatchString(page) {
		return fmt.Errorf("%w: %q", ErrInvalidPage, page)
	}
	return nil
}

// ValidateKey reports whether key is a well formed section key.
func ValidateKey(key string) error {
	if !identifierPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func validateIdentifiers(page, key string) (string, string, error) {
	page = NormalizeIdentifier(page)
	key = NormalizeIdentifier(key)
	if err := ValidatePage(page); err != nil {
		return "", "", err
	}
	if err := ValidateKey(key); err != nil {
		return "", "", err
	}
	return page, key, nil
}

// ErrUnknownPage is returned when seeding a page the catalog does not define.
var ErrUnknownPage = errors.New("sections: page has no defaults")
