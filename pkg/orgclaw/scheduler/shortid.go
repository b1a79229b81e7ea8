package scheduler

import (
	"strings"
	"unicode"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/parse"
)

// idStopwords are filler words skipped when deriving a short id from the
// reminder topic.
var idStopwords = map[string]bool{
	"de": true, "da": true, "do": true, "a": true, "o": true, "e": true,
	"the": true, "of": true, "to": true, "el": true, "la": true, "y": true,
	"um": true, "uma": true, "un": true, "una": true, "para": true, "pra": true,
	"me": true, "te": true, "que": true,
}

// ShortID derives a 2-4 uppercase-letter id from the reminder topic, with a
// numeric collision suffix as a last resort. taken reports ids already in
// use; preferred, when non-empty, is tried first.
func ShortID(topic, preferred string, taken func(string) bool) string {
	if preferred != "" {
		p := normalizeID(preferred)
		if p != "" && !taken(p) {
			return p
		}
	}

	letters := topicLetters(topic)
	if len(letters) < 2 {
		letters = append(letters, 'X', 'X')
	}

	for n := 2; n <= 4 && n <= len(letters); n++ {
		candidate := string(letters[:n])
		if !taken(candidate) {
			return candidate
		}
	}

	// All prefixes taken: suffix the 2-letter base with a counter.
	base := string(letters[:2])
	for i := 2; ; i++ {
		candidate := base + string(rune('0'+i%10))
		if i >= 10 {
			candidate = base + string(rune('A'+(i-10)%26))
		}
		if !taken(candidate) {
			return candidate
		}
	}
}

// topicLetters returns the uppercase letters of the first meaningful word,
// extended with initials of following words when short.
func topicLetters(topic string) []rune {
	folded := parse.Fold(topic)
	words := strings.Fields(folded)

	var letters []rune
	for _, w := range words {
		if idStopwords[w] {
			continue
		}
		for _, r := range w {
			if unicode.IsLetter(r) {
				letters = append(letters, unicode.ToUpper(r))
			}
			if len(letters) >= 4 {
				return letters
			}
		}
		if len(letters) >= 2 {
			return letters
		}
	}
	return letters
}

func normalizeID(id string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(id)) {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > 4 {
		s = s[:4]
	}
	if len(s) < 2 {
		return ""
	}
	return s
}
