// internal/app/system/normalize/normalize.go
// Package normalize canonicalizes user-supplied keys before uniqueness
// checks and storage.
package normalize

import (
	"strings"
	"unicode"

	"github.com/dalemusser/waffle/pantry/text"
)

// Plate upper-cases a vehicle plate and removes spaces and dashes, so
// "1234-abc" and "1234 ABC" are the same plate.
func Plate(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) || r == '-' {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// ClientNumber trims a company client number.
func ClientNumber(s string) string {
	return strings.TrimSpace(s)
}

// Email trims and lower-cases an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses inner whitespace, preserving case.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Username trims a login name; the folded form is used for uniqueness.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// Fold returns the case- and accent-insensitive form used for *_ci fields.
func Fold(s string) string {
	return text.Fold(Name(s))
}

// Slug derives a URL-safe identifier from a name.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range Fold(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// QueryParam trims a query string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
