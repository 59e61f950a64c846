// internal/app/system/htmlsanitize/htmlsanitize.go
// Package htmlsanitize strips markup from free-text fields before they are
// stored, so client apps can render them without escaping concerns.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	strict *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	once.Do(func() { strict = bluemonday.StrictPolicy() })
	return strict
}

// PlainText removes every tag (and the contents of script/style) and
// returns trimmed plain text with entities decoded.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	out := s
	// Decoding can surface entity-encoded tags; strip until stable.
	for i := 0; i < 3; i++ {
		next := html.UnescapeString(policy().Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}

// PlainTextPtr applies PlainText to *s in place when s is non-nil.
func PlainTextPtr(s *string) {
	if s != nil {
		*s = PlainText(*s)
	}
}

// All applies PlainText to every pointed-to field.
func All(fields ...*string) {
	for _, f := range fields {
		PlainTextPtr(f)
	}
}

// IsPlainText reports whether s contains no tag-like sequence.
func IsPlainText(s string) bool {
	lt := strings.Index(s, "<")
	return lt < 0 || !strings.Contains(s[lt:], ">")
}
