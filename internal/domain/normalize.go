package domain

import (
	"strings"
)

// NormalizeWord produces the cache key for a looked-up word:
//   - trims leading/trailing whitespace
//   - collapses internal runs of whitespace into a single space
//   - converts to lowercase
//
// It is applied on every write and every read so that "  Hello " and "hello"
// resolve to the same cached term. Diacritics, hyphens, and apostrophes are preserved.
func NormalizeWord(word string) string {
	fields := strings.Fields(word)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Join(fields, " "))
}
