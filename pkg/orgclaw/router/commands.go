package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/parse"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/store"
)

// handleCommand dispatches slash commands and their aliases.
func (r *Router) handleCommand(ctx context.Context, t *Turn, text string) ([]string, bool) {
	if !strings.HasPrefix(text, "/") {
		return nil, false
	}
	body := strings.TrimSpace(text[1:])
	if body == "" {
		return nil, false
	}
	word := body
	args := ""
	if i := strings.IndexAny(body, " \t"); i >= 0 {
		word, args = body[:i], strings.TrimSpace(body[i+1:])
	}
	name, ok := locale.CanonicalCommand(normalize(word))
	if !ok {
		return []string{locale.T(t.Lang, "help")}, true
	}

	switch name {
	case "help":
		return []string{locale.T(t.Lang, "help")}, true
	case "lembrete":
		return r.cmdLembrete(ctx, t, args)
	case "recorrente":
		return r.cmdRecorrente(ctx, t, args)
	case "list":
		return r.cmdList(ctx, t, args)
	case "add":
		return r.cmdAdd(ctx, t, args)
	case "feito":
		return r.cmdFeito(ctx, t, args)
	case "remove":
		return r.cmdRemove(ctx, t, args)
	case "hoje":
		return r.cmdAgenda(ctx, t, "hoje")
	case "agenda":
		return r.cmdAgenda(ctx, t, "hoje")
	case "semana":
		return r.cmdAgenda(ctx, t, "semana")
	case "mes":
		return r.cmdAgenda(ctx, t, "mes")
	case "timeline":
		return r.cmdTimeline(ctx, t)
	case "stats":
		return r.cmdStats(ctx, t)
	case "resumo":
		return r.cmdResumo(ctx, t)
	case "produtividade":
		return r.cmdProdutividade(ctx, t)
	case "revisao":
		return r.cmdRevisao(ctx, t)
	case "habito":
		return r.cmdHabito(ctx, t, args)
	case "meta":
		return r.cmdMeta(ctx, t, args)
	case "nota":
		return r.cmdNota(ctx, t, args)
	case "projeto":
		return r.cmdProjeto(ctx, t, args)
	case "template":
		return r.cmdTemplate(ctx, t, args)
	case "save":
		return r.cmdSave(ctx, t, args)
	case "bookmark":
		return r.cmdBookmarks(ctx, t)
	case "find":
		return r.cmdFind(ctx, t, args)
	case "pomodoro":
		return r.cmdPomodoro(ctx, t, args)
	case "tz":
		return r.cmdTZ(ctx, t, args)
	case "lang":
		return r.cmdLang(ctx, t, args)
	case "reset":
		return r.cmdReset(ctx, t)
	case "quiet":
		return r.cmdQuiet(ctx, t, args)
	case "nuke":
		r.confirms.Install(t.Key(), Pending{Action: ActionNukeAll})
		return []string{locale.T(t.Lang, "confirm.nuke")}, true
	case "exportar":
		r.confirms.Install(t.Key(), Pending{Action: ActionExportar})
		return []string{locale.T(t.Lang, "confirm.export")}, true
	case "deletar_tudo":
		r.confirms.Install(t.Key(), Pending{Action: ActionDeletarTudo})
		return []string{locale.T(t.Lang, "confirm.delete_all")}, true
	case "start":
		r.sched.SetChatEnabled(ctx, t.Msg.ChatID, true)
		return []string{locale.T(t.Lang, "start.done")}, true
	case "stop":
		r.sched.SetChatEnabled(ctx, t.Msg.ChatID, false)
		return []string{locale.T(t.Lang, "stop.done")}, true
	case "pendente":
		return r.cmdPendente(ctx, t)
	}
	return nil, false
}

// cmdLembrete lists reminders, removes one by id, or schedules from the
// remaining text.
func (r *Router) cmdLembrete(ctx context.Context, t *Turn, args string) ([]string, bool) {
	if args == "" {
		return []string{r.renderJobs(t)}, true
	}

	fields := strings.Fields(args)
	switch normalize(fields[0]) {
	case "remove", "remover", "cancelar", "cancel", "rm":
		if len(fields) < 2 {
			return []string{locale.T(t.Lang, "reminder.what_for")}, true
		}
		return r.removeJob(ctx, t, fields[1])
	}

	return r.scheduleFromText(ctx, t, args)
}

// scheduleFromText parses a natural schedule expression and creates the job,
// installing the matching flow or confirmation when incomplete.
func (r *Router) scheduleFromText(ctx context.Context, t *Turn, text string) ([]string, bool) {
	now := r.now().In(t.Loc)
	res, ok := parse.Schedule(text, now, t.Loc)
	if !ok {
		// No time expression at all: ask for the time, keep the text.
		t.Session.SetMetaJSON(session.MetaReminderFlow, reminderFlow{
			Stage:   flowNeedTime,
			Message: strings.TrimSpace(text),
		})
		return []string{locale.T(t.Lang, "flow.need_time", "what", strings.TrimSpace(text))}, true
	}
	if res.Message == "" {
		return []string{locale.T(t.Lang, "reminder.what_for")}, true
	}

	if res.PastDate {
		r.confirms.Install(t.Key(), Pending{
			Action:  ActionDatePastNextYear,
			At:      res.At,
			Message: res.Message,
		})
		return []string{locale.T(t.Lang, "reminder.past_date",
			"date", locale.FormatDate(t.Lang, res.At.In(t.Loc)))}, true
	}

	switch res.Kind {
	case parse.KindAt:
		if res.HasDate && !res.HasTime {
			t.Session.SetMetaJSON(session.MetaReminderFlow, reminderFlow{
				Stage:   flowNeedTime,
				Message: res.Message,
				Day:     res.At.Format("2006-01-02"),
				HasDate: true,
			})
			return []string{locale.T(t.Lang, "flow.need_time", "what", res.Message)}, true
		}
		return r.scheduleOneShot(ctx, t, res.At, res.Message)

	case parse.KindEvery:
		return r.scheduleRecurring(ctx, t, scheduler.Every(res.Every), res)

	case parse.KindCron:
		sched := scheduler.Cron(res.CronExpr, t.Loc.String())
		if res.NotBefore != nil {
			sched.NotBeforeMS = res.NotBefore.UnixMilli()
		}
		return r.scheduleRecurring(ctx, t, sched, res)
	}
	return nil, false
}

// scheduleRecurring creates a recurring job, relaxing the minimum-interval
// floor when the recent transcript shows genuine insistence.
func (r *Router) scheduleRecurring(ctx context.Context, t *Turn, sched scheduler.Schedule, res *parse.Result) ([]string, bool) {
	if res.NotBefore != nil && sched.NotBeforeMS == 0 {
		sched.NotBeforeMS = res.NotBefore.UnixMilli()
	}
	req := scheduler.AddJobRequest{
		Name:     res.Message,
		Schedule: sched,
		Payload: scheduler.Payload{
			Kind:    scheduler.PayloadAgentTurn,
			Message: res.Message,
			Channel: t.Msg.Channel,
			ChatID:  t.Msg.ChatID,
			Locale:  string(t.Lang),
			Deliver: true,
		},
		Location: t.Loc,
	}
	add, err := r.sched.AddJob(ctx, req)
	if errors.Is(err, scheduler.ErrIntervalTooShort) && r.parser != nil {
		transcript := session.RenderTranscript(t.Session.Tail(6))
		if insists, jerr := r.parser.Insistence(ctx, transcript); jerr == nil && insists {
			req.RelaxMinInterval = true
			add, err = r.sched.AddJob(ctx, req)
		}
	}
	if err != nil {
		return []string{r.schedulerErrorReply(t, err)}, true
	}
	reply := locale.T(t.Lang, "reminder.scheduled_recurring",
		"id", add.Job.ID, "schedule", res.Message)
	if add.QuotaWarn {
		reply += locale.T(t.Lang, "quota.warning", "percent", "70")
	}
	return []string{reply}, true
}

// cmdRecorrente forces the recurring interpretation of the text.
func (r *Router) cmdRecorrente(ctx context.Context, t *Turn, args string) ([]string, bool) {
	if args == "" {
		return []string{r.renderJobs(t)}, true
	}
	if p, ok := parse.Weekly(args); ok {
		desc := r.describePattern(t, p)
		t.Session.SetMetaJSON(session.MetaRecurringFlow, recurringFlow{
			Stage:    recNeedConfirm,
			CronExpr: p.CronExpr(),
			Topic:    p.Topic,
			Desc:     desc,
		})
		return []string{locale.T(t.Lang, "recurring.confirm", "description", desc)}, true
	}
	now := r.now().In(t.Loc)
	res, ok := parse.Schedule(args, now, t.Loc)
	if !ok || (res.Kind != parse.KindEvery && res.Kind != parse.KindCron) {
		return []string{locale.T(t.Lang, "reminder.what_for")}, true
	}
	if res.Kind == parse.KindEvery {
		return r.scheduleRecurring(ctx, t, scheduler.Every(res.Every), res)
	}
	sched := scheduler.Cron(res.CronExpr, t.Loc.String())
	return r.scheduleRecurring(ctx, t, sched, res)
}

// renderJobs lists the chat's visible reminders.
func (r *Router) renderJobs(t *Turn) string {
	jobs := r.sched.JobsForChat(t.Msg.ChatID)
	visible := jobs[:0]
	for _, j := range jobs {
		if j.Payload.Kind != scheduler.PayloadDeadlineCheck {
			visible = append(visible, j)
		}
	}
	if len(visible) == 0 {
		return locale.T(t.Lang, "reminder.list_empty")
	}
	var b strings.Builder
	b.WriteString(locale.T(t.Lang, "reminder.list_header"))
	for _, j := range visible {
		next := "—"
		if j.State.NextRunAtMS > 0 {
			next = locale.FormatDateTime(t.Lang, time.UnixMilli(j.State.NextRunAtMS).In(t.Loc))
		}
		fmt.Fprintf(&b, "\n• %s — %s (%s)", j.ID, j.Payload.Message, next)
	}
	return b.String()
}

func (r *Router) removeJob(ctx context.Context, t *Turn, id string) ([]string, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	ok, err := r.sched.RemoveJobAndDeadlineFollowups(ctx, id)
	if err != nil {
		r.logger.Error("remove failed", "id", id, "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	if !ok {
		return []string{locale.T(t.Lang, "reminder.not_found", "id", id)}, true
	}
	return []string{locale.T(t.Lang, "reminder.cancelled", "id", id)}, true
}

// cmdList handles "/list", "/list name", "/list name add itens",
// "/list name remove item" and "/list name feito item".
func (r *Router) cmdList(ctx context.Context, t *Turn, args string) ([]string, bool) {
	if args == "" {
		lists, err := r.store.Lists.ByUser(ctx, t.Msg.ChatID)
		if err != nil {
			r.logger.Error("lists failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		if len(lists) == 0 {
			return []string{locale.T(t.Lang, "list.no_lists")}, true
		}
		var b strings.Builder
		b.WriteString(locale.T(t.Lang, "list.lists_header"))
		for _, l := range lists {
			fmt.Fprintf(&b, "\n• %s", l.Name)
		}
		return []string{b.String()}, true
	}

	fields := strings.Fields(args)
	name := fields[0]
	if len(fields) == 1 {
		return []string{r.renderList(ctx, t, name)}, true
	}

	verb := normalize(fields[1])
	rest := strings.TrimSpace(strings.Join(fields[2:], " "))

	switch verb {
	case "add", "adicionar", "adiciona":
		return r.addListItems(ctx, t, name, rest)
	case "remove", "remover", "rm":
		return r.listItemOp(ctx, t, name, rest, false)
	case "feito", "done", "hecho":
		return r.listItemOp(ctx, t, name, rest, true)
	case "delete", "apagar", "deletar":
		list, err := r.store.Lists.GetByName(ctx, t.Msg.ChatID, name)
		if errors.Is(err, store.ErrNotFound) {
			return []string{locale.T(t.Lang, "list.not_found", "name", name)}, true
		}
		if err == nil {
			err = r.store.Lists.Delete(ctx, list)
		}
		if err != nil {
			r.logger.Error("list delete failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		return []string{locale.T(t.Lang, "list.removed", "name", name)}, true
	}

	// "/list mercado leite" is shorthand for add.
	return r.addListItems(ctx, t, name, strings.TrimSpace(strings.Join(fields[1:], " ")))
}

func (r *Router) renderList(ctx context.Context, t *Turn, name string) string {
	list, err := r.store.Lists.GetByName(ctx, t.Msg.ChatID, name)
	if errors.Is(err, store.ErrNotFound) {
		return locale.T(t.Lang, "list.not_found", "name", name)
	}
	if err != nil {
		r.logger.Error("list read failed", "error", err)
		return locale.T(t.Lang, "agent.error")
	}
	items, err := r.store.Lists.Items(ctx, list.ID, false)
	if err != nil {
		r.logger.Error("items read failed", "error", err)
		return locale.T(t.Lang, "agent.error")
	}
	if len(items) == 0 {
		return locale.T(t.Lang, "list.empty", "name", list.Name)
	}
	var b strings.Builder
	b.WriteString(locale.T(t.Lang, "list.header", "name", list.Name))
	for _, it := range items {
		fmt.Fprintf(&b, "\n• %s", it.Text)
	}
	return b.String()
}

func (r *Router) addListItems(ctx context.Context, t *Turn, name, itemText string) ([]string, bool) {
	itemText = strings.TrimSpace(itemText)
	if itemText == "" {
		return []string{locale.T(t.Lang, "list.item_not_found", "name", name)}, true
	}
	list, err := r.store.Lists.Create(ctx, t.Msg.ChatID, name)
	if err != nil {
		r.logger.Error("list create failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	items := splitItems(itemText)
	for _, item := range items {
		if _, err := r.store.Lists.AddItem(ctx, list, item); err != nil {
			r.logger.Error("item add failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
	}
	return []string{locale.T(t.Lang, "list.item_added",
		"item", strings.Join(items, ", "), "name", list.Name)}, true
}

// listItemOp marks done (done=true) or removes an item matched by text.
func (r *Router) listItemOp(ctx context.Context, t *Turn, name, itemText string, done bool) ([]string, bool) {
	list, err := r.store.Lists.GetByName(ctx, t.Msg.ChatID, name)
	if errors.Is(err, store.ErrNotFound) {
		return []string{locale.T(t.Lang, "list.not_found", "name", name)}, true
	}
	if err != nil {
		r.logger.Error("list read failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	item, ok := r.matchItem(ctx, list, itemText)
	if !ok {
		return []string{locale.T(t.Lang, "list.item_not_found", "name", list.Name)}, true
	}
	if done {
		if err := r.store.Lists.MarkDone(ctx, t.Msg.ChatID, item); err != nil {
			r.logger.Error("mark done failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		return []string{locale.T(t.Lang, "list.item_done", "item", item.Text)}, true
	}
	if err := r.store.Lists.RemoveItem(ctx, t.Msg.ChatID, item); err != nil {
		r.logger.Error("remove item failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	return []string{locale.T(t.Lang, "list.item_removed",
		"item", item.Text, "name", list.Name)}, true
}

func (r *Router) matchItem(ctx context.Context, list *store.List, text string) (*store.ListItem, bool) {
	items, err := r.store.Lists.Items(ctx, list.ID, false)
	if err != nil {
		return nil, false
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	var prefix *store.ListItem
	for _, it := range items {
		itLower := strings.ToLower(it.Text)
		if itLower == lower {
			return it, true
		}
		if prefix == nil && strings.HasPrefix(itLower, lower) {
			prefix = it
		}
	}
	return prefix, prefix != nil
}

// cmdAdd appends to the default "tarefas" list.
func (r *Router) cmdAdd(ctx context.Context, t *Turn, args string) ([]string, bool) {
	if args == "" {
		return []string{locale.T(t.Lang, "list.no_lists")}, true
	}
	return r.addListItems(ctx, t, "tarefas", args)
}

// cmdFeito completes a reminder (by short id) or a list item (by text).
func (r *Router) cmdFeito(ctx context.Context, t *Turn, args string) ([]string, bool) {
	args = strings.TrimSpace(args)
	if args == "" {
		return []string{locale.T(t.Lang, "reminder.what_for")}, true
	}
	if looksLikeJobID(args) {
		id := strings.ToUpper(args)
		if _, err := r.sched.GetJob(id); err == nil {
			if err := r.sched.MarkComplete(ctx, id); err != nil {
				r.logger.Warn("complete failed", "id", id, "error", err)
				return []string{locale.T(t.Lang, "agent.error")}, true
			}
			return []string{locale.T(t.Lang, "reminder.completed")}, true
		}
	}
	// Search all lists for the item.
	lists, err := r.store.Lists.ByUser(ctx, t.Msg.ChatID)
	if err != nil {
		r.logger.Error("lists failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	for _, l := range lists {
		if item, ok := r.matchItem(ctx, l, args); ok {
			if err := r.store.Lists.MarkDone(ctx, t.Msg.ChatID, item); err != nil {
				r.logger.Error("mark done failed", "error", err)
				return []string{locale.T(t.Lang, "agent.error")}, true
			}
			return []string{locale.T(t.Lang, "list.item_done", "item", item.Text)}, true
		}
	}
	return []string{locale.T(t.Lang, "list.item_not_found", "name", "tarefas")}, true
}

// cmdRemove removes a reminder by id or a list item by text.
func (r *Router) cmdRemove(ctx context.Context, t *Turn, args string) ([]string, bool) {
	args = strings.TrimSpace(args)
	if args == "" {
		return []string{locale.T(t.Lang, "reminder.what_for")}, true
	}
	if looksLikeJobID(args) {
		if _, err := r.sched.GetJob(strings.ToUpper(args)); err == nil {
			return r.removeJob(ctx, t, args)
		}
	}
	lists, err := r.store.Lists.ByUser(ctx, t.Msg.ChatID)
	if err != nil {
		r.logger.Error("lists failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	for _, l := range lists {
		if item, ok := r.matchItem(ctx, l, args); ok {
			if err := r.store.Lists.RemoveItem(ctx, t.Msg.ChatID, item); err != nil {
				r.logger.Error("remove item failed", "error", err)
				return []string{locale.T(t.Lang, "agent.error")}, true
			}
			return []string{locale.T(t.Lang, "list.item_removed",
				"item", item.Text, "name", l.Name)}, true
		}
	}
	return []string{locale.T(t.Lang, "reminder.not_found", "id", args)}, true
}

// cmdTZ shows or sets the timezone.
func (r *Router) cmdTZ(ctx context.Context, t *Turn, args string) ([]string, bool) {
	if args == "" {
		if t.User.Timezone == "" {
			return []string{locale.T(t.Lang, "tz.invalid")}, true
		}
		return []string{locale.T(t.Lang, "tz.current",
			"tz", t.User.Timezone,
			"time", locale.FormatTime(r.now().In(t.Loc)))}, true
	}
	loc, err := time.LoadLocation(args)
	if err != nil {
		// Maybe a city name; let the parser resolve it.
		if r.parser != nil {
			if _, tz, ok, rerr := r.parser.ResolveCity(ctx, args); rerr == nil && ok {
				if l2, lerr := time.LoadLocation(tz); lerr == nil {
					loc, args = l2, tz
					err = nil
				}
			}
		}
		if err != nil {
			return []string{locale.T(t.Lang, "tz.invalid")}, true
		}
	}
	t.User.Timezone = args
	t.Loc = loc
	r.saveUser(ctx, t)
	return []string{locale.T(t.Lang, "tz.set", "tz", args)}, true
}

// cmdLang switches the output language.
func (r *Router) cmdLang(ctx context.Context, t *Turn, args string) ([]string, bool) {
	lang, ok := locale.Normalize(args)
	if !ok {
		return []string{locale.T(t.Lang, "help")}, true
	}
	t.User.Language = string(lang)
	t.Lang = lang
	r.saveUser(ctx, t)
	return []string{locale.T(lang, "lang.switched")}, true
}

// cmdReset clears preferences, keeping data.
func (r *Router) cmdReset(ctx context.Context, t *Turn) ([]string, bool) {
	if err := r.store.Users.Reset(ctx, t.Msg.ChatID); err != nil {
		r.logger.Error("reset failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	t.User.Timezone = ""
	t.User.City = ""
	t.User.QuietStart = ""
	t.User.QuietEnd = ""
	return []string{locale.T(t.Lang, "reset.done")}, true
}

// cmdQuiet sets or clears the quiet window ("/quiet 22:00 08:00", "/quiet off").
func (r *Router) cmdQuiet(ctx context.Context, t *Turn, args string) ([]string, bool) {
	fields := strings.Fields(args)
	if len(fields) == 1 && (normalize(fields[0]) == "off" || normalize(fields[0]) == "desligar") {
		t.User.QuietStart, t.User.QuietEnd = "", ""
		r.saveUser(ctx, t)
		return []string{locale.T(t.Lang, "quiet.cleared")}, true
	}
	if len(fields) != 2 {
		return []string{locale.T(t.Lang, "help")}, true
	}
	start, okS := normalizeClock(fields[0])
	end, okE := normalizeClock(fields[1])
	if !okS || !okE {
		return []string{locale.T(t.Lang, "help")}, true
	}
	t.User.QuietStart, t.User.QuietEnd = start, end
	r.saveUser(ctx, t)
	return []string{locale.T(t.Lang, "quiet.set", "start", start, "end", end)}, true
}

// cmdPendente summarizes today's open work.
func (r *Router) cmdPendente(ctx context.Context, t *Turn) ([]string, bool) {
	now := r.now().In(t.Loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, t.Loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var lines []string
	for _, j := range r.sched.JobsForChat(t.Msg.ChatID) {
		if j.Payload.Kind == scheduler.PayloadDeadlineCheck || j.State.NextRunAtMS == 0 {
			continue
		}
		next := time.UnixMilli(j.State.NextRunAtMS)
		if next.Before(dayStart) || !next.Before(dayEnd) {
			continue
		}
		lines = append(lines, fmt.Sprintf("• %s — %s (%s)",
			j.ID, j.Payload.Message, locale.FormatTime(next.In(t.Loc))))
	}
	events, err := r.store.Events.Between(ctx, t.Msg.ChatID, dayStart, dayEnd)
	if err == nil {
		for _, ev := range events {
			lines = append(lines, fmt.Sprintf("• %s (%s)",
				ev.Name(), locale.FormatTime(ev.StartAt.In(t.Loc))))
		}
	}
	if len(lines) == 0 {
		return []string{locale.T(t.Lang, "pendente.empty")}, true
	}
	return []string{locale.T(t.Lang, "pendente.header") + "\n" + strings.Join(lines, "\n")}, true
}

// doExport renders the user's data snapshot.
func (r *Router) doExport(ctx context.Context, t *Turn) ([]string, bool) {
	raw, err := r.store.Lists.ExportJSON(ctx, t.Msg.ChatID)
	if err != nil {
		r.logger.Error("export failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	lists, _ := r.store.Lists.ByUser(ctx, t.Msg.ChatID)
	events, _ := r.store.Events.ByUser(ctx, t.Msg.ChatID, "")
	jobs := r.sched.JobsForChat(t.Msg.ChatID)
	summary := fmt.Sprintf("%d listas, %d eventos, %d lembretes", len(lists), len(events), len(jobs))
	return []string{
		locale.T(t.Lang, "export.done", "summary", summary),
		string(raw),
	}, true
}

// doDeleteAll purges user data; nuke additionally resets preferences,
// session and memory.
func (r *Router) doDeleteAll(ctx context.Context, t *Turn, nuke bool) ([]string, bool) {
	if err := r.store.PurgeUser(ctx, t.Msg.ChatID); err != nil {
		r.logger.Error("purge failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	for _, j := range r.sched.JobsForChat(t.Msg.ChatID) {
		if _, err := r.sched.RemoveJob(ctx, j.ID); err != nil {
			r.logger.Warn("job purge failed", "id", j.ID, "error", err)
		}
	}
	if !nuke {
		return []string{locale.T(t.Lang, "delete_all.done")}, true
	}
	if err := r.store.Users.Reset(ctx, t.Msg.ChatID); err != nil {
		r.logger.Warn("prefs reset failed", "error", err)
	}
	t.Session.ClearHistory()
	if err := r.sessions.Delete(t.Key()); err != nil {
		r.logger.Warn("session delete failed", "error", err)
	}
	return []string{locale.T(t.Lang, "nuke.done")}, true
}

// splitItems breaks "leite, ovos e pão" into items.
func splitItems(text string) []string {
	text = strings.ReplaceAll(text, " e ", ", ")
	text = strings.ReplaceAll(text, " y ", ", ")
	text = strings.ReplaceAll(text, " and ", ", ")
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// looksLikeJobID reports a 2–4 letter uppercase-able token, optionally with
// a trailing digit.
func looksLikeJobID(s string) bool {
	if len(s) < 2 || len(s) > 5 {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i == len(s)-1:
		default:
			return false
		}
	}
	return true
}

// normalizeClock validates and canonicalizes an HH:MM token.
func normalizeClock(s string) (string, bool) {
	h, m, ok := parse.TimeOfDay(s)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}
