// Package identity derives stable section ids so the same page and key map
// to the same UUID in every database, export and event payload.
package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// fallbackSpace seeds the SHA1 UUID used when hashid cannot produce one.
var fallbackSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/goliatone/go-portfolio/sections"))

// SectionKey is the canonical name hashed into a section id.
func SectionKey(page, key string) string {
	page = strings.ToLower(strings.TrimSpace(page))
	key = strings.ToLower(strings.TrimSpace(key))
	if page == "" || key == "" {
		return ""
	}
	return "section:" + page + "/" + key
}

// SectionUUID returns the id of the section addressed by page and key, or
// uuid.Nil when either part is blank.
func SectionUUID(page, key string) uuid.UUID {
	name := SectionKey(page, key)
	if name == "" {
		return uuid.Nil
	}
	id, err := hashid.NewUUID(name, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || id == uuid.Nil {
		return uuid.NewSHA1(fallbackSpace, []byte(name))
	}
	return id
}
