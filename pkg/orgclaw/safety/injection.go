package safety

import (
	"regexp"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/parse"
)

// injectionPatterns catalogues prompt-injection phrasings over PT, EN and
// ES. Input is folded (lowercased, diacritics stripped) before matching.
var injectionPatterns = []*regexp.Regexp{
	// "ignore your instructions / previous rules"
	regexp.MustCompile(`\b(?:ignora?|ignore|olvida|esquece|forget|disregard)\b.{0,30}\b(?:instrucoes|instructions|instrucciones|regras|rules|reglas|prompt|anteriores?|previous|above)\b`),
	// "from now on you are ..."
	regexp.MustCompile(`\b(?:a partir de agora|de agora em diante|desde ahora|from now on|voce agora e|you are now|agora es|ahora eres)\b`),
	// "pretend / act as if you are"
	regexp.MustCompile(`\b(?:finge|finja|pretend|imagina|act as|atua como|actua como|haz de cuenta)\b.{0,30}\b(?:que (?:es|e|eres)|you are|ser)\b`),
	// bracketed role markers
	regexp.MustCompile(`\[\s*(?:system|sistema|assistant|developer)\s*\]`),
	// "reveal / show your prompt"
	regexp.MustCompile(`\b(?:mostra|mostre|muestra|reveal|show|imprime|print)\b.{0,30}\b(?:prompt|instrucoes|instructions|instrucciones|system)\b`),
	// "new instructions:" override
	regexp.MustCompile(`\b(?:novas instrucoes|new instructions|nuevas instrucciones)\s*:`),
	// jailbreak staples
	regexp.MustCompile(`\b(?:dan mode|jailbreak|developer mode|modo desenvolvedor|modo desarrollador|sem restricoes|without restrictions|sin restricciones)\b`),
}

// IsInjection reports whether the message matches the injection catalogue.
func IsInjection(content string) bool {
	folded := parse.Fold(content)
	for _, re := range injectionPatterns {
		if re.MatchString(folded) {
			return true
		}
	}
	return false
}
