// Package locale holds every user-visible string in the four supported
// languages, plus phone-prefix inference of default language and timezone.
// Handlers never embed reply text; they render a template key with arguments
// so replies always follow the user's language.
package locale

import (
	"strings"
)

// Language is one of the four supported output languages.
type Language string

const (
	PortuguesePT Language = "pt-PT"
	PortugueseBR Language = "pt-BR"
	Spanish      Language = "es"
	English      Language = "en"
)

// DefaultLanguage is used when nothing can be inferred.
const DefaultLanguage = English

// Supported reports whether lang is one of the four produced languages.
func Supported(lang string) bool {
	switch Language(lang) {
	case PortuguesePT, PortugueseBR, Spanish, English:
		return true
	}
	return false
}

// Normalize maps loose user input ("pt", "português", "english") to a
// supported language. Returns false when the input names no known language.
func Normalize(input string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "pt-pt", "pt_pt", "portugal", "português de portugal", "portugues de portugal":
		return PortuguesePT, true
	case "pt-br", "pt_br", "br", "brasil", "brazil", "português do brasil", "portugues do brasil", "brasileiro":
		return PortugueseBR, true
	case "pt", "português", "portugues":
		return PortuguesePT, true
	case "es", "es-es", "espanhol", "español", "espanol", "spanish", "castellano":
		return Spanish, true
	case "en", "en-us", "en-gb", "inglês", "ingles", "english", "inglés":
		return English, true
	}
	return "", false
}

// T renders the template key in the given language, replacing {name}
// placeholders with the supplied pairs. Unknown keys fall back to English,
// then to the key itself so a missing translation never panics.
func T(lang Language, key string, args ...string) string {
	table, ok := templates[lang]
	if !ok {
		table = templates[English]
	}
	text, ok := table[key]
	if !ok {
		if text, ok = templates[English][key]; !ok {
			return key
		}
	}
	if len(args) == 0 {
		return text
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		pairs = append(pairs, "{"+args[i]+"}", args[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Has reports whether key exists for the language (or its English fallback).
func Has(lang Language, key string) bool {
	if _, ok := templates[lang][key]; ok {
		return true
	}
	_, ok := templates[English][key]
	return ok
}
