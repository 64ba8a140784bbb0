package recognition

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeDisplayName normalizes a display name for comparison (lowercase,
// no diacritics, collapsed whitespace). Used by the deprecated
// delete-by-name path; identity IDs are the canonical lookup key.
func NormalizeDisplayName(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ToLower(name)
	return strings.Join(strings.Fields(name), " ")
}
