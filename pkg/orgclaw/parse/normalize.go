// Package parse turns natural-language time, date and recurrence expressions
// in the four supported languages into schedules, and defines the intent
// classification schema used with the parser model.
package parse

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold lowercases text and strips diacritics so that "Amanhã às 10h" and
// "amanha as 10h" match the same patterns. Matching is always done on folded
// text; original text is kept for message extraction.
func Fold(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	decomposed := norm.NFD.String(lowered)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// CollapseSpaces folds runs of whitespace into single spaces.
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
