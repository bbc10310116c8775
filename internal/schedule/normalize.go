package schedule

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Fyzika
// tělesa" -> "Fyzika telesa").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SubjectSlug normalizes a subject name into a stable ASCII identifier for
// API responses and log lines (lowercase, no diacritics, spaces to dashes).
// Display names from the school system vary in casing and accents; the slug
// does not.
func SubjectSlug(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Join(strings.Fields(name), "-")
	return name
}
