package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTitle produces the comparison key for a title: lowercased,
// accents folded, a leading definite article dropped, whitespace trimmed.
// The key is only ever compared against other keys, never shown.
func NormalizeTitle(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	folded, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		folded = lowered
	}
	folded = strings.TrimPrefix(folded, "the ")
	return strings.TrimSpace(folded)
}
