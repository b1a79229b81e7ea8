package router

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
)

// agendaEntry is one row of the /hoje, /semana and /mes views.
type agendaEntry struct {
	at   time.Time
	text string
}

// cmdAgenda renders scheduled reminders and events for the period.
func (r *Router) cmdAgenda(ctx context.Context, t *Turn, period string) ([]string, bool) {
	now := r.now().In(t.Loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, t.Loc)

	var from, to time.Time
	var label string
	switch period {
	case "semana":
		from, to = dayStart, dayStart.AddDate(0, 0, 7)
		label = fmt.Sprintf("%02d/%02d–%02d/%02d",
			from.Day(), int(from.Month()), to.Day(), int(to.Month()))
	case "mes":
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, t.Loc)
		to = from.AddDate(0, 1, 0)
		label = locale.MonthName(t.Lang, now.Month())
	default:
		from, to = dayStart, dayStart.AddDate(0, 0, 1)
		label = locale.FormatDate(t.Lang, now)
	}

	var entries []agendaEntry
	for _, j := range r.sched.JobsForChat(t.Msg.ChatID) {
		if j.Payload.Kind == scheduler.PayloadDeadlineCheck || j.State.NextRunAtMS == 0 {
			continue
		}
		next := time.UnixMilli(j.State.NextRunAtMS).In(t.Loc)
		if next.Before(from) || !next.Before(to) {
			continue
		}
		entries = append(entries, agendaEntry{at: next, text: j.Payload.Message + " (" + j.ID + ")"})
	}
	events, err := r.store.Events.Between(ctx, t.Msg.ChatID, from, to)
	if err != nil {
		r.logger.Error("agenda events failed", "error", err)
	}
	for _, ev := range events {
		entries = append(entries, agendaEntry{at: ev.StartAt.In(t.Loc), text: ev.Name()})
	}

	if len(entries) == 0 {
		return []string{locale.T(t.Lang, "agenda.empty", "period", label)}, true
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })

	var b strings.Builder
	b.WriteString(locale.T(t.Lang, "agenda.header", "period", label))
	lastDay := ""
	for _, e := range entries {
		day := e.at.Format("2006-01-02")
		if period != "hoje" && day != lastDay {
			fmt.Fprintf(&b, "\n%s:", locale.FormatDate(t.Lang, e.at))
			lastDay = day
		}
		fmt.Fprintf(&b, "\n• %s — %s", locale.FormatTime(e.at), e.text)
	}
	return []string{b.String()}, true
}

// cmdTimeline renders the user's recent audit activity.
func (r *Router) cmdTimeline(ctx context.Context, t *Turn) ([]string, bool) {
	entries, err := r.store.Audit.Recent(ctx, 200)
	if err != nil {
		r.logger.Error("timeline failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	var lines []string
	for _, e := range entries {
		if e.UserID != t.Msg.ChatID {
			continue
		}
		lines = append(lines, fmt.Sprintf("• %s — %s",
			locale.FormatDateTime(t.Lang, e.CreatedAt.In(t.Loc)), timelineLabel(e.Action, e.Payload)))
		if len(lines) >= 10 {
			break
		}
	}
	if len(lines) == 0 {
		return []string{locale.T(t.Lang, "timeline.empty")}, true
	}
	return []string{locale.T(t.Lang, "timeline.header") + "\n" + strings.Join(lines, "\n")}, true
}

// timelineLabel renders an audit action with its most useful payload field.
func timelineLabel(action string, payload map[string]any) string {
	detail := ""
	for _, k := range []string{"item", "name", "text", "nome", "list"} {
		if v, ok := payload[k].(string); ok && v != "" {
			detail = v
			break
		}
	}
	if detail == "" {
		return action
	}
	return action + ": " + detail
}

// cmdStats renders overall totals.
func (r *Router) cmdStats(ctx context.Context, t *Turn) ([]string, bool) {
	lists, err := r.store.Lists.ByUser(ctx, t.Msg.ChatID)
	if err != nil {
		r.logger.Error("stats failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	open, _ := r.store.Lists.CountOpenItems(ctx, t.Msg.ChatID)
	done, _ := r.store.Lists.CountDoneSince(ctx, t.Msg.ChatID, time.Time{})
	events, _ := r.store.Events.ByUser(ctx, t.Msg.ChatID, "")

	reminders := 0
	for _, j := range r.sched.JobsForChat(t.Msg.ChatID) {
		if j.Payload.Kind != scheduler.PayloadDeadlineCheck {
			reminders++
		}
	}
	return []string{locale.T(t.Lang, "stats.summary",
		"lists", fmt.Sprint(len(lists)),
		"items", fmt.Sprint(open+done),
		"done", fmt.Sprint(done),
		"events", fmt.Sprint(len(events)),
		"reminders", fmt.Sprint(reminders))}, true
}

// cmdResumo renders a short "where things stand" digest.
func (r *Router) cmdResumo(ctx context.Context, t *Turn) ([]string, bool) {
	now := r.now().In(t.Loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, t.Loc)

	open, _ := r.store.Lists.CountOpenItems(ctx, t.Msg.ChatID)
	doneToday, _ := r.store.Lists.CountDoneSince(ctx, t.Msg.ChatID, dayStart)

	todayReminders := 0
	var nextAt time.Time
	var nextText string
	for _, j := range r.sched.JobsForChat(t.Msg.ChatID) {
		if j.Payload.Kind == scheduler.PayloadDeadlineCheck || j.State.NextRunAtMS == 0 {
			continue
		}
		next := time.UnixMilli(j.State.NextRunAtMS).In(t.Loc)
		if next.Before(dayStart.AddDate(0, 0, 1)) && !next.Before(dayStart) {
			todayReminders++
		}
		if next.After(now) && (nextAt.IsZero() || next.Before(nextAt)) {
			nextAt, nextText = next, j.Payload.Message
		}
	}

	var b strings.Builder
	b.WriteString(locale.T(t.Lang, "resumo.header"))
	fmt.Fprintf(&b, "\n• %d / %d", doneToday, open+doneToday)
	fmt.Fprintf(&b, "\n• ⏰ %d", todayReminders)
	if !nextAt.IsZero() {
		fmt.Fprintf(&b, "\n• → %s (%s)", nextText, locale.FormatDateTime(t.Lang, nextAt))
	}
	return []string{b.String()}, true
}

// cmdProdutividade renders the 7-day completion rate.
func (r *Router) cmdProdutividade(ctx context.Context, t *Turn) ([]string, bool) {
	since := r.now().AddDate(0, 0, -7)
	done, err := r.store.Lists.CountDoneSince(ctx, t.Msg.ChatID, since)
	if err != nil {
		r.logger.Error("productivity failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	avg := float64(done) / 7
	return []string{locale.T(t.Lang, "productivity.summary",
		"done", fmt.Sprint(done),
		"avg", fmt.Sprintf("%.1f", avg))}, true
}

// cmdRevisao renders open work and overdue deadline-protected reminders.
func (r *Router) cmdRevisao(ctx context.Context, t *Turn) ([]string, bool) {
	open, err := r.store.Lists.CountOpenItems(ctx, t.Msg.ChatID)
	if err != nil {
		r.logger.Error("review failed", "error", err)
		return []string{locale.T(t.Lang, "agent.error")}, true
	}
	nowMS := r.now().UnixMilli()
	overdue := 0
	var lines []string
	for _, j := range r.sched.JobsForChat(t.Msg.ChatID) {
		if !j.Payload.HasDeadline || j.State.Completed {
			continue
		}
		if j.Schedule.Kind == scheduler.KindAt && j.Schedule.AtMS < nowMS {
			overdue++
			lines = append(lines, fmt.Sprintf("• %s — %s", j.ID, j.Payload.Message))
		}
	}
	reply := locale.T(t.Lang, "review.header",
		"open", fmt.Sprint(open), "overdue", fmt.Sprint(overdue))
	if len(lines) > 0 {
		reply += "\n" + strings.Join(lines, "\n")
	}
	return []string{reply}, true
}
