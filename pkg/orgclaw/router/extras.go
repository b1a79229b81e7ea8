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

// pomodoroLength is the focus interval of one pomodoro.
const pomodoroLength = 25 * time.Minute

// cmdHabito handles "/habito", "/habito nome", "/habito feito nome" and
// "/habito remover nome".
func (r *Router) cmdHabito(ctx context.Context, t *Turn, args string) ([]string, bool) {
	if args == "" {
		habits, err := r.store.Habits.ByUser(ctx, t.Msg.ChatID)
		if err != nil {
			r.logger.Error("habits failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		if len(habits) == 0 {
			return []string{locale.T(t.Lang, "habit.empty")}, true
		}
		today := r.now().In(t.Loc)
		var b strings.Builder
		b.WriteString(locale.T(t.Lang, "habit.list_header"))
		for _, h := range habits {
			streak, _ := r.store.Habits.Streak(ctx, h.ID, today)
			fmt.Fprintf(&b, "\n• %s — %d 🔥", h.Name, streak)
		}
		return []string{b.String()}, true
	}

	fields := strings.Fields(args)
	verb := normalize(fields[0])
	rest := strings.TrimSpace(strings.Join(fields[1:], " "))

	switch verb {
	case "feito", "done", "check", "hecho":
		if rest == "" {
			return []string{locale.T(t.Lang, "habit.empty")}, true
		}
		habit, err := r.store.Habits.GetByName(ctx, t.Msg.ChatID, rest)
		if errors.Is(err, store.ErrNotFound) {
			habit, err = r.store.Habits.Create(ctx, t.Msg.ChatID, rest)
		}
		if err != nil {
			r.logger.Error("habit check failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		today := r.now().In(t.Loc)
		if err := r.store.Habits.Check(ctx, habit, today); err != nil {
			r.logger.Error("habit check failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		streak, _ := r.store.Habits.Streak(ctx, habit.ID, today)
		return []string{locale.T(t.Lang, "habit.checked",
			"name", habit.Name, "streak", fmt.Sprint(streak))}, true

	case "remover", "remove", "rm", "apagar":
		habit, err := r.store.Habits.GetByName(ctx, t.Msg.ChatID, rest)
		if err != nil {
			return []string{locale.T(t.Lang, "habit.empty")}, true
		}
		if err := r.store.Habits.Archive(ctx, t.Msg.ChatID, habit.ID); err != nil {
			r.logger.Error("habit archive failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		return []string{locale.T(t.Lang, "list.removed", "name", habit.Name)}, true
	}

	habit, err := r.store.Habits.Create(ctx, t.Msg.ChatID, args)
	if err != nil {
		r.logger.Error("habit create failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	return []string{locale.T(t.Lang, "habit.added", "name", habit.Name)}, true
}

// cmdMeta handles "/meta", "/meta texto [até data]" and "/meta feito texto".
func (r *Router) cmdMeta(ctx context.Context, t *Turn, args string) ([]string, bool) {
	if args == "" {
		goals, err := r.store.Goals.ByUser(ctx, t.Msg.ChatID, false)
		if err != nil {
			r.logger.Error("goals failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		if len(goals) == 0 {
			return []string{locale.T(t.Lang, "goal.empty")}, true
		}
		var b strings.Builder
		b.WriteString(locale.T(t.Lang, "goal.list_header"))
		for _, g := range goals {
			line := "\n• " + g.Text
			if g.DueAt != nil {
				line += " (" + locale.FormatDate(t.Lang, g.DueAt.In(t.Loc)) + ")"
			}
			b.WriteString(line)
		}
		return []string{b.String()}, true
	}

	fields := strings.Fields(args)
	if normalize(fields[0]) == "feito" || normalize(fields[0]) == "done" {
		text := strings.TrimSpace(strings.Join(fields[1:], " "))
		goal, err := r.store.Goals.MarkDone(ctx, t.Msg.ChatID, text)
		if errors.Is(err, store.ErrNotFound) {
			return []string{locale.T(t.Lang, "goal.empty")}, true
		}
		if err != nil {
			r.logger.Error("goal done failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		return []string{locale.T(t.Lang, "goal.done", "name", goal.Text)}, true
	}

	text := args
	var dueAt *time.Time
	if res, ok := parse.Schedule(args, r.now().In(t.Loc), t.Loc); ok && res.Kind == parse.KindAt && res.HasDate {
		text = res.Message
		due := res.At
		dueAt = &due
	}
	goal, err := r.store.Goals.Add(ctx, t.Msg.ChatID, text, dueAt)
	if err != nil {
		r.logger.Error("goal add failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	return []string{locale.T(t.Lang, "goal.added", "name", goal.Text)}, true
}

// cmdNota handles "/nota", "/nota texto" and "/nota buscar termo".
func (r *Router) cmdNota(ctx context.Context, t *Turn, args string) ([]string, bool) {
	if args == "" {
		notes, err := r.store.Notes.Recent(ctx, t.Msg.ChatID, 10)
		if err != nil {
			r.logger.Error("notes failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		return []string{renderNotes(t, notes, "note.empty")}, true
	}

	fields := strings.Fields(args)
	if normalize(fields[0]) == "buscar" || normalize(fields[0]) == "procurar" || normalize(fields[0]) == "search" {
		query := strings.TrimSpace(strings.Join(fields[1:], " "))
		notes, err := r.store.Notes.Search(ctx, t.Msg.ChatID, query, 10)
		if err != nil {
			r.logger.Error("note search failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		if len(notes) == 0 {
			return []string{locale.T(t.Lang, "find.none", "query", query)}, true
		}
		return []string{renderNotes(t, notes, "note.empty")}, true
	}

	if _, err := r.store.Notes.Add(ctx, t.Msg.ChatID, args); err != nil {
		r.logger.Error("note add failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	return []string{locale.T(t.Lang, "note.added")}, true
}

func renderNotes(t *Turn, notes []*store.Note, emptyKey string) string {
	if len(notes) == 0 {
		return locale.T(t.Lang, emptyKey)
	}
	var b strings.Builder
	b.WriteString(locale.T(t.Lang, "note.list_header"))
	for _, n := range notes {
		fmt.Fprintf(&b, "\n• %s (%s)", n.Text, locale.FormatDate(t.Lang, n.CreatedAt.In(t.Loc)))
	}
	return b.String()
}

// cmdProjeto handles "/projeto", "/projeto nome", "/projeto arquivar nome"
// and "/projeto nome lista nome-da-lista".
func (r *Router) cmdProjeto(ctx context.Context, t *Turn, args string) ([]string, bool) {
	if args == "" {
		projects, err := r.store.Projects.ByUser(ctx, t.Msg.ChatID)
		if err != nil {
			r.logger.Error("projects failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		if len(projects) == 0 {
			return []string{locale.T(t.Lang, "project.empty")}, true
		}
		var b strings.Builder
		b.WriteString(locale.T(t.Lang, "project.list_header"))
		for _, p := range projects {
			fmt.Fprintf(&b, "\n• %s", p.Name)
		}
		return []string{b.String()}, true
	}

	fields := strings.Fields(args)
	if normalize(fields[0]) == "arquivar" || normalize(fields[0]) == "archive" {
		name := strings.TrimSpace(strings.Join(fields[1:], " "))
		project, err := r.store.Projects.GetByName(ctx, t.Msg.ChatID, name)
		if err != nil {
			return []string{locale.T(t.Lang, "project.empty")}, true
		}
		if err := r.store.Projects.Archive(ctx, t.Msg.ChatID, project.ID); err != nil {
			r.logger.Error("project archive failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		return []string{locale.T(t.Lang, "list.removed", "name", project.Name)}, true
	}

	// "nome lista nome-da-lista" links an existing list to the project.
	for i, f := range fields {
		if normalize(f) == "lista" && i > 0 && i < len(fields)-1 {
			projName := strings.Join(fields[:i], " ")
			listName := strings.Join(fields[i+1:], " ")
			project, err := r.store.Projects.Create(ctx, t.Msg.ChatID, projName)
			if err != nil {
				r.logger.Error("project create failed", "error", err)
				return []string{locale.T(t.Lang, "agent.error")}, true
			}
			list, err := r.store.Lists.GetByName(ctx, t.Msg.ChatID, listName)
			if errors.Is(err, store.ErrNotFound) {
				return []string{locale.T(t.Lang, "list.not_found", "name", listName)}, true
			}
			if err == nil {
				err = r.store.Projects.AssignList(ctx, t.Msg.ChatID, list.ID, project.ID)
			}
			if err != nil {
				r.logger.Error("project link failed", "error", err)
				return []string{locale.T(t.Lang, "agent.error")}, true
			}
			return []string{locale.T(t.Lang, "project.added", "name", project.Name)}, true
		}
	}

	project, err := r.store.Projects.Create(ctx, t.Msg.ChatID, args)
	if err != nil {
		r.logger.Error("project create failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	return []string{locale.T(t.Lang, "project.added", "name", project.Name)}, true
}

// cmdTemplate handles "/template", "/template nome: item, item",
// "/template usar nome" and "/template apagar nome".
func (r *Router) cmdTemplate(ctx context.Context, t *Turn, args string) ([]string, bool) {
	if args == "" {
		templates, err := r.store.Templates.ByUser(ctx, t.Msg.ChatID)
		if err != nil {
			r.logger.Error("templates failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		if len(templates) == 0 {
			return []string{locale.T(t.Lang, "template.empty")}, true
		}
		var b strings.Builder
		b.WriteString(locale.T(t.Lang, "template.list_header"))
		for _, tpl := range templates {
			fmt.Fprintf(&b, "\n• %s (%d)", tpl.Name, len(tpl.Items))
		}
		return []string{b.String()}, true
	}

	fields := strings.Fields(args)
	verb := normalize(fields[0])
	rest := strings.TrimSpace(strings.Join(fields[1:], " "))

	switch verb {
	case "usar", "use", "aplicar", "apply":
		tpl, err := r.store.Templates.GetByName(ctx, t.Msg.ChatID, rest)
		if errors.Is(err, store.ErrNotFound) {
			return []string{locale.T(t.Lang, "template.empty")}, true
		}
		if err != nil {
			r.logger.Error("template read failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		list, err := r.store.Lists.CreateFromTemplate(ctx, t.Msg.ChatID, tpl.Name, tpl.Items)
		if err != nil {
			r.logger.Error("template apply failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		return []string{locale.T(t.Lang, "template.applied",
			"name", tpl.Name, "list", list.Name)}, true

	case "apagar", "delete", "remover", "rm":
		if err := r.store.Templates.Delete(ctx, t.Msg.ChatID, rest); err != nil {
			return []string{locale.T(t.Lang, "template.empty")}, true
		}
		return []string{locale.T(t.Lang, "list.removed", "name", rest)}, true
	}

	// "nome: item, item, item" saves a template.
	name, itemText, found := strings.Cut(args, ":")
	if !found {
		return []string{locale.T(t.Lang, "template.empty")}, true
	}
	items := splitItems(itemText)
	if len(items) == 0 {
		return []string{locale.T(t.Lang, "template.empty")}, true
	}
	tpl, err := r.store.Templates.Save(ctx, t.Msg.ChatID, strings.TrimSpace(name), items)
	if err != nil {
		r.logger.Error("template save failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	return []string{locale.T(t.Lang, "template.saved", "name", tpl.Name)}, true
}

// cmdSave stores a bookmark: "/save url [título #tags]".
func (r *Router) cmdSave(ctx context.Context, t *Turn, args string) ([]string, bool) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return []string{locale.T(t.Lang, "bookmark.empty")}, true
	}
	url := fields[0]
	var title, tags []string
	for _, f := range fields[1:] {
		if strings.HasPrefix(f, "#") {
			tags = append(tags, strings.TrimPrefix(f, "#"))
		} else {
			title = append(title, f)
		}
	}
	_, err := r.store.Bookmarks.Save(ctx, t.Msg.ChatID, url,
		strings.Join(title, " "), strings.Join(tags, ","))
	if err != nil {
		r.logger.Error("bookmark save failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	return []string{locale.T(t.Lang, "bookmark.saved")}, true
}

// cmdBookmarks lists recent bookmarks.
func (r *Router) cmdBookmarks(ctx context.Context, t *Turn) ([]string, bool) {
	marks, err := r.store.Bookmarks.ByUser(ctx, t.Msg.ChatID, 20)
	if err != nil {
		r.logger.Error("bookmarks failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	if len(marks) == 0 {
		return []string{locale.T(t.Lang, "bookmark.empty")}, true
	}
	var b strings.Builder
	b.WriteString(locale.T(t.Lang, "bookmark.list_header"))
	for _, m := range marks {
		line := "\n• " + m.URL
		if m.Title != "" {
			line = "\n• " + m.Title + " — " + m.URL
		}
		b.WriteString(line)
	}
	return []string{b.String()}, true
}

// cmdFind searches notes and bookmarks.
func (r *Router) cmdFind(ctx context.Context, t *Turn, args string) ([]string, bool) {
	query := strings.TrimSpace(args)
	if query == "" {
		return []string{locale.T(t.Lang, "find.none", "query", query)}, true
	}
	var lines []string
	notes, err := r.store.Notes.Search(ctx, t.Msg.ChatID, query, 5)
	if err != nil {
		r.logger.Error("find notes failed", "error", err)
	}
	for _, n := range notes {
		lines = append(lines, "• 📝 "+n.Text)
	}
	marks, err := r.store.Bookmarks.Search(ctx, t.Msg.ChatID, query, 5)
	if err != nil {
		r.logger.Error("find bookmarks failed", "error", err)
	}
	for _, m := range marks {
		if m.Title != "" {
			lines = append(lines, "• 🔗 "+m.Title+" — "+m.URL)
		} else {
			lines = append(lines, "• 🔗 "+m.URL)
		}
	}
	if len(lines) == 0 {
		return []string{locale.T(t.Lang, "find.none", "query", query)}, true
	}
	return []string{locale.T(t.Lang, "find.header", "query", query) + "\n" +
		strings.Join(lines, "\n")}, true
}

// cmdPomodoro starts, stops or reports the 25-minute focus timer. The finish
// ping rides the scheduler as a one-shot system event.
func (r *Router) cmdPomodoro(ctx context.Context, t *Turn, args string) ([]string, bool) {
	verb := normalize(strings.TrimSpace(args))

	activeJobID := t.Session.MetaString(session.MetaPomodoroJobID)
	active := false
	if activeJobID != "" {
		if _, err := r.sched.GetJob(activeJobID); err == nil {
			active = true
		} else {
			t.Session.DeleteMeta(session.MetaPomodoroJobID)
			t.Session.DeleteMeta(session.MetaPomodoroStartedAt)
		}
	}

	switch verb {
	case "stop", "parar", "cancelar":
		if !active {
			return []string{locale.T(t.Lang, "pomodoro.none")}, true
		}
		if _, err := r.sched.RemoveJob(ctx, activeJobID); err != nil {
			r.logger.Warn("pomodoro stop failed", "job", activeJobID, "error", err)
		}
		t.Session.DeleteMeta(session.MetaPomodoroJobID)
		t.Session.DeleteMeta(session.MetaPomodoroStartedAt)
		return []string{locale.T(t.Lang, "pomodoro.stopped")}, true

	case "status", "estado":
		if !active {
			return []string{locale.T(t.Lang, "pomodoro.none")}, true
		}
		started := t.Session.MetaTime(session.MetaPomodoroStartedAt)
		remaining := pomodoroLength - r.now().Sub(started)
		if remaining < 0 {
			remaining = 0
		}
		return []string{locale.T(t.Lang, "pomodoro.status",
			"remaining", remaining.Round(time.Minute).String())}, true
	}

	if active {
		started := t.Session.MetaTime(session.MetaPomodoroStartedAt)
		remaining := pomodoroLength - r.now().Sub(started)
		if remaining > 0 {
			return []string{locale.T(t.Lang, "pomodoro.status",
				"remaining", remaining.Round(time.Minute).String())}, true
		}
	}

	now := r.now()
	add, err := r.sched.AddJob(ctx, scheduler.AddJobRequest{
		Name:     "pomodoro",
		Schedule: scheduler.At(now.Add(pomodoroLength)),
		Payload: scheduler.Payload{
			Kind:    scheduler.PayloadSystemEvent,
			Message: locale.T(t.Lang, "pomodoro.finished"),
			Channel: t.Msg.Channel,
			ChatID:  t.Msg.ChatID,
			Locale:  string(t.Lang),
			Deliver: true,
		},
		DeleteAfterRun: true,
		Location:       t.Loc,
		SkipDedupe:     true,
	})
	if err != nil {
		return []string{r.schedulerErrorReply(t, err)}, true
	}
	t.Session.SetMeta(session.MetaPomodoroJobID, add.Job.ID)
	t.Session.SetMeta(session.MetaPomodoroStartedAt, now.Format(time.RFC3339))
	return []string{locale.T(t.Lang, "pomodoro.started")}, true
}
