package safety

import (
	"strings"
	"unicode"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/parse"
)

// trivialTokens is the closed set of no-op messages: short affirmations and
// acknowledgements that warrant no reply at all.
var trivialTokens = map[string]bool{
	"ok": true, "okay": true, "okey": true, "k": true, "kk": true, "kkk": true,
	"ta": true, "ta bom": true, "ta bem": true, "tudo bem": true,
	"sim": true, "si": true, "yes": true, "yep": true, "yeah": true, "ya": true,
	"nao": true, "no": true, "nope": true,
	"obrigado": true, "obrigada": true, "brigado": true, "valeu": true, "vlw": true,
	"gracias": true, "thanks": true, "thank you": true, "thx": true, "ty": true,
	"legal": true, "boa": true, "top": true, "show": true, "nice": true, "cool": true,
	"blz": true, "beleza": true, "certo": true, "right": true, "vale": true,
	"entendi": true, "got it": true, "perfeito": true, "perfecto": true, "perfect": true,
	"haha": true, "hahaha": true, "rs": true, "rsrs": true, "lol": true, "jaja": true, "jajaja": true,
}

// IsTrivial reports whether the message is a no-op token or a bare emoji
// sequence. Confirmation words are NOT trivial when a confirmation is
// pending; the router checks pendings before this guard fires.
func IsTrivial(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return true
	}
	folded := strings.TrimRight(parse.Fold(trimmed), ".!?")
	if trivialTokens[folded] {
		return true
	}
	return isEmojiOnly(trimmed)
}

// isEmojiOnly reports whether the content has no letters or digits at all.
func isEmojiOnly(s string) bool {
	if len(s) > 32 {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
