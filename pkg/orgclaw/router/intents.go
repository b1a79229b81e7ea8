package router

import (
	"context"
	"regexp"
	"strings"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/parse"
)

// Natural-language list phrases.
var (
	reCreateList = regexp.MustCompile(`^(?:cria|criar|crea|create) (?:uma |una |a )?(?:lista|list) (?:de |do |da |of )?(.+)$`)
	reAddToList  = regexp.MustCompile(`^(?:adiciona|adicionar|poe|mete|agrega|add) (.+?) (?:a|na|en la|to) (?:lista|list) (.+)$`)
	reObligation = regexp.MustCompile(`^(?:tenho (?:de|que)|preciso (?:de)?|tengo que|i (?:have|need) to) (.+)$`)
)

// handleIntent resolves unambiguous natural-language requests without the
// model: complete schedule expressions, list phrases and multi-item
// obligations. Anything uncertain is left for the flows or the assistant.
func (r *Router) handleIntent(ctx context.Context, t *Turn, text string) ([]string, bool) {
	folded := normalize(text)

	if m := reCreateList.FindStringSubmatch(folded); m != nil {
		list, err := r.store.Lists.Create(ctx, t.Msg.ChatID, m[1])
		if err != nil {
			r.logger.Error("list create failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		return []string{locale.T(t.Lang, "list.created", "name", list.Name)}, true
	}

	if m := reAddToList.FindStringSubmatch(folded); m != nil {
		return r.addListItems(ctx, t, strings.TrimSpace(m[2]), m[1])
	}

	// "tenho de pagar a renda, ligar ao banco e marcar o dentista": two or
	// more obligations get the list/reminders/both question.
	if m := reObligation.FindStringSubmatch(folded); m != nil {
		items := splitItems(m[1])
		if len(items) >= 2 && !containsSchedule(text, t, r) {
			r.confirms.Install(t.Key(), Pending{Action: ActionListOrEvents, Items: items})
			return []string{locale.T(t.Lang, "list.or_events_choice")}, true
		}
	}

	// Complete schedule expressions create directly; incomplete ones are the
	// flows' job.
	now := r.now().In(t.Loc)
	res, ok := parse.Schedule(text, now, t.Loc)
	if !ok || res.Message == "" {
		return nil, false
	}
	switch res.Kind {
	case parse.KindEvery:
		return r.scheduleFromText(ctx, t, text)
	case parse.KindCron:
		return r.scheduleFromText(ctx, t, text)
	case parse.KindAt:
		if !hasReminderKeyword(text) {
			return nil, false
		}
		if res.PastDate || (res.HasTime && (res.HasDate || sameDayIntent(text))) {
			return r.scheduleFromText(ctx, t, text)
		}
	}
	return nil, false
}

// containsSchedule reports whether the text already carries a concrete
// schedule, in which case it is a reminder rather than a braindump.
func containsSchedule(text string, t *Turn, r *Router) bool {
	res, ok := parse.Schedule(text, r.now().In(t.Loc), t.Loc)
	return ok && (res.HasTime || res.Kind != parse.KindAt)
}
