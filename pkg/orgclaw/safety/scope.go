package safety

import (
	"context"
	"regexp"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/parse"
)

// ScopeJudge is the parser-model half of the scope filter. Failures fall
// back to the regex catalogue.
type ScopeJudge interface {
	InScope(ctx context.Context, message string) (bool, error)
}

// scopePatterns is the fast-path catalogue: anything mentioning reminders,
// lists, schedules, dates, times or the organizer's event types is in scope.
var scopePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:lembr|record|remind|avis|alarm|agend|schedul|marcar?)\w*`),
	regexp.MustCompile(`\b(?:lista|list|compra|shopping|mercado|tarefa|task|pendente|to-?do)\w*`),
	regexp.MustCompile(`\b(?:evento|event|consulta|reuniao|reunion|meeting|aniversario|cumpleanos|birthday|cita)\w*`),
	regexp.MustCompile(`\b(?:filme|movie|livro|book|musica|music|receita|recipe|habito|habit|meta|goal|nota|note|projeto|project)\w*`),
	regexp.MustCompile(`\b(?:hoje|amanha|manana|tomorrow|today|semana|week|mes|month|daqui|cada|every|diariamente|daily)\b`),
	regexp.MustCompile(`\b\d{1,2}[:h]\d{0,2}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}\b`),
	regexp.MustCompile(`\b(?:cancela|cancel|apaga|delete|remove|feito|done|conclui|complete)\w*`),
	regexp.MustCompile(`\b(?:timezone|fuso|horario|hora|time|quando|when|cuando)\b`),
}

// InScopeFast runs the regex catalogue only.
func InScopeFast(message string) bool {
	folded := parse.Fold(message)
	for _, re := range scopePatterns {
		if re.MatchString(folded) {
			return true
		}
	}
	return false
}

// InScope combines the LLM judge with the regex fallback: the judge decides
// when available; on judge failure the catalogue decides.
func InScope(ctx context.Context, judge ScopeJudge, message string) bool {
	if judge != nil {
		ok, err := judge.InScope(ctx, message)
		if err == nil {
			return ok
		}
	}
	return InScopeFast(message)
}
