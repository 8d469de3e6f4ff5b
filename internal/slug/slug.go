// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonSlug       = regexp.MustCompile(`[^\w\s-]`)
	separatorRuns = regexp.MustCompile(`[\s_-]+`)
)

// Make turns a display name into a slug: diacritics are decomposed away,
// everything is lowercased, characters outside the word/space/hyphen class are
// dropped, and runs of whitespace, underscores and hyphens collapse into a
// single hyphen. Make is idempotent: Make(Make(s)) == Make(s).
func Make(text string) string {
	decomposed := norm.NFKD.String(text)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		// Drop the combining marks left behind by decomposition.
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	s := strings.ToLower(b.String())
	s = nonSlug.ReplaceAllString(s, "")
	s = separatorRuns.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.Trim(s, "-")
}
