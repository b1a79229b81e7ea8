package router

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/parse"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
)

// Vague-time flow stages.
const (
	flowNeedTime          = "need_time"
	flowNeedDate          = "need_date"
	flowNeedAdvancePref   = "need_advance_preference"
	flowNeedAdvanceAmount = "need_advance_amount"
)

// Recurring-event flow stages.
const (
	recNeedConfirm = "need_confirm"
	recNeedEndDate = "need_end_date"
)

// maxFlowAttempts backs out of a flow after repeated unparseable answers.
const maxFlowAttempts = 3

// reminderFlow is the vague-time state persisted in session metadata.
type reminderFlow struct {
	Stage    string   `json:"stage"`
	Message  string   `json:"message"`
	JobID    string   `json:"job_id,omitempty"`   // reschedule target, removed on success
	Queue    []string `json:"queue,omitempty"`    // remaining items from a "both" choice
	Day      string   `json:"day,omitempty"`      // YYYY-MM-DD once known
	Hour     int      `json:"hour"`
	Minute   int      `json:"minute"`
	HasTime  bool     `json:"has_time"`
	HasDate  bool     `json:"has_date"`
	Attempts int      `json:"attempts"`
	MainID   string   `json:"main_id,omitempty"` // created job awaiting lead alerts
	AtMS     int64    `json:"at_ms,omitempty"`
}

// recurringFlow is the weekly-pattern confirmation state.
type recurringFlow struct {
	Stage    string `json:"stage"`
	CronExpr string `json:"cron_expr"`
	Topic    string `json:"topic"`
	Desc     string `json:"desc"`
	Attempts int    `json:"attempts"`
}

// continueFlow advances an installed flow with the user's answer.
func (r *Router) continueFlow(ctx context.Context, t *Turn, text string) ([]string, bool) {
	var rf reminderFlow
	if t.Session.MetaJSON(session.MetaReminderFlow, &rf) && rf.Stage != "" {
		return r.continueReminderFlow(ctx, t, text, rf)
	}
	var cf recurringFlow
	if t.Session.MetaJSON(session.MetaRecurringFlow, &cf) && cf.Stage != "" {
		return r.continueRecurringFlow(ctx, t, text, cf)
	}
	return nil, false
}

func (r *Router) continueReminderFlow(ctx context.Context, t *Turn, text string, rf reminderFlow) ([]string, bool) {
	switch rf.Stage {
	case flowNeedTime:
		hour, minute, ok := parse.TimeOfDay(text)
		if !ok {
			return r.flowRetry(t, rf, locale.T(t.Lang, "flow.need_time", "what", rf.Message))
		}
		rf.Hour, rf.Minute, rf.HasTime = hour, minute, true
		if !rf.HasDate && rf.Day == "" {
			rf.Stage = flowNeedDate
			rf.Attempts = 0
			t.Session.SetMetaJSON(session.MetaReminderFlow, rf)
			return []string{locale.T(t.Lang, "flow.need_date", "what", rf.Message)}, true
		}
		return r.finishReminderFlow(ctx, t, rf)

	case flowNeedDate:
		day, ok := r.flowDate(text, t)
		if !ok {
			return r.flowRetry(t, rf, locale.T(t.Lang, "flow.need_date", "what", rf.Message))
		}
		rf.Day = day.Format("2006-01-02")
		rf.HasDate = true
		if !rf.HasTime {
			rf.Stage = flowNeedTime
			rf.Attempts = 0
			t.Session.SetMetaJSON(session.MetaReminderFlow, rf)
			return []string{locale.T(t.Lang, "flow.need_time", "what", rf.Message)}, true
		}
		return r.finishReminderFlow(ctx, t, rf)

	case flowNeedAdvancePref:
		switch answerValue(text) {
		case 1:
			rf.Stage = flowNeedAdvanceAmount
			rf.Attempts = 0
			t.Session.SetMetaJSON(session.MetaReminderFlow, rf)
			return []string{locale.T(t.Lang, "reminder.advance_amount")}, true
		case 2:
			return r.flowDone(ctx, t, rf, nil)
		}
		return r.flowRetry(t, rf, locale.T(t.Lang, "reminder.advance_question"))

	case flowNeedAdvanceAmount:
		lead, ok := parse.Duration(text)
		if !ok {
			return r.flowRetry(t, rf, locale.T(t.Lang, "reminder.advance_amount"))
		}
		if main, err := r.sched.GetJob(rf.MainID); err == nil {
			r.sched.AddLeadAlerts(ctx, main, []time.Duration{lead})
		}
		return r.flowDone(ctx, t, rf, nil)
	}
	t.Session.DeleteMeta(session.MetaReminderFlow)
	return nil, false
}

// flowDate interprets a date-only answer ("dia 12", "12/09", "amanhã").
func (r *Router) flowDate(text string, t *Turn) (time.Time, bool) {
	now := r.now().In(t.Loc)
	res, ok := parse.Schedule(text, now, t.Loc)
	if ok && res.Kind == parse.KindAt && res.HasDate {
		return res.At, true
	}
	folded := normalize(text)
	if m := strings.TrimPrefix(folded, "dia "); m != folded {
		if d, err := strconv.Atoi(strings.Fields(m)[0]); err == nil && d >= 1 && d <= 31 {
			at := time.Date(now.Year(), now.Month(), d, 0, 0, 0, 0, t.Loc)
			if at.Before(now.Truncate(24 * time.Hour)) {
				at = at.AddDate(0, 1, 0)
			}
			return at, true
		}
	}
	return time.Time{}, false
}

// flowRetry re-asks the pending question, giving up after maxFlowAttempts.
func (r *Router) flowRetry(t *Turn, rf reminderFlow, question string) ([]string, bool) {
	rf.Attempts++
	if rf.Attempts >= maxFlowAttempts {
		t.Session.DeleteMeta(session.MetaReminderFlow)
		return []string{locale.T(t.Lang, "flow.gave_up")}, true
	}
	t.Session.SetMetaJSON(session.MetaReminderFlow, rf)
	return []string{locale.T(t.Lang, "flow.invalid_attempt",
		"attempt", strconv.Itoa(rf.Attempts), "question", question)}, true
}

// finishReminderFlow creates the job once date and time are known, then asks
// about advance alerts when the event is far enough out to matter.
func (r *Router) finishReminderFlow(ctx context.Context, t *Turn, rf reminderFlow) ([]string, bool) {
	now := r.now().In(t.Loc)
	day := now
	if rf.Day != "" {
		if d, err := time.ParseInLocation("2006-01-02", rf.Day, t.Loc); err == nil {
			day = d
		}
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), rf.Hour, rf.Minute, 0, 0, t.Loc)
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}

	res, err := r.sched.AddJob(ctx, scheduler.AddJobRequest{
		Name:     rf.Message,
		Schedule: scheduler.At(at),
		Payload: scheduler.Payload{
			Kind:    scheduler.PayloadAgentTurn,
			Message: rf.Message,
			Channel: t.Msg.Channel,
			ChatID:  t.Msg.ChatID,
			Locale:  string(t.Lang),
			Deliver: true,
		},
		DeleteAfterRun: true,
		Location:       t.Loc,
	})
	if err != nil {
		t.Session.DeleteMeta(session.MetaReminderFlow)
		return []string{r.schedulerErrorReply(t, err)}, true
	}

	// A reschedule replaces the old job.
	if rf.JobID != "" {
		if _, err := r.sched.RemoveJobAndDeadlineFollowups(ctx, rf.JobID); err != nil {
			r.logger.Warn("reschedule cleanup failed", "job", rf.JobID, "error", err)
		}
		rf.JobID = ""
	}

	scheduled := locale.T(t.Lang, "reminder.scheduled",
		"id", res.Job.ID, "time", locale.FormatDateTime(t.Lang, at.In(t.Loc)))
	if res.QuotaWarn {
		scheduled += locale.T(t.Lang, "quota.warning", "percent", "70")
	}

	// Same-day events fire soon; asking about advance alerts would be noise.
	if at.Sub(now) > 6*time.Hour {
		rf.Stage = flowNeedAdvancePref
		rf.Attempts = 0
		rf.MainID = res.Job.ID
		rf.AtMS = at.UnixMilli()
		t.Session.SetMetaJSON(session.MetaReminderFlow, rf)
		return []string{scheduled, locale.T(t.Lang, "reminder.advance_question")}, true
	}
	return r.flowDone(ctx, t, rf, []string{scheduled})
}

// flowDone clears the flow or moves on to the next queued item.
func (r *Router) flowDone(ctx context.Context, t *Turn, rf reminderFlow, replies []string) ([]string, bool) {
	if len(rf.Queue) > 0 {
		next := reminderFlow{Stage: flowNeedTime, Message: rf.Queue[0], Queue: rf.Queue[1:]}
		t.Session.SetMetaJSON(session.MetaReminderFlow, next)
		return append(replies, locale.T(t.Lang, "flow.need_time", "what", next.Message)), true
	}
	t.Session.DeleteMeta(session.MetaReminderFlow)
	if len(replies) == 0 {
		replies = []string{locale.T(t.Lang, "confirm.cancelled")}
	}
	return replies, true
}

func (r *Router) continueRecurringFlow(ctx context.Context, t *Turn, text string, cf recurringFlow) ([]string, bool) {
	switch cf.Stage {
	case recNeedConfirm:
		switch answerValue(text) {
		case 1:
			cf.Stage = recNeedEndDate
			cf.Attempts = 0
			t.Session.SetMetaJSON(session.MetaRecurringFlow, cf)
			return []string{locale.T(t.Lang, "recurring.until_when")}, true
		case 2:
			t.Session.DeleteMeta(session.MetaRecurringFlow)
			return []string{locale.T(t.Lang, "confirm.cancelled")}, true
		}
		cf.Attempts++
		if cf.Attempts >= maxFlowAttempts {
			t.Session.DeleteMeta(session.MetaRecurringFlow)
			return []string{locale.T(t.Lang, "flow.gave_up")}, true
		}
		t.Session.SetMetaJSON(session.MetaRecurringFlow, cf)
		return []string{locale.T(t.Lang, "recurring.confirm", "description", cf.Desc)}, true

	case recNeedEndDate:
		notAfter, ok := r.recurringEnd(text, t)
		if !ok {
			cf.Attempts++
			if cf.Attempts >= maxFlowAttempts {
				t.Session.DeleteMeta(session.MetaRecurringFlow)
				return []string{locale.T(t.Lang, "flow.gave_up")}, true
			}
			t.Session.SetMetaJSON(session.MetaRecurringFlow, cf)
			return []string{locale.T(t.Lang, "recurring.until_when")}, true
		}
		t.Session.DeleteMeta(session.MetaRecurringFlow)

		sched := scheduler.Cron(cf.CronExpr, t.Loc.String())
		if !notAfter.IsZero() {
			sched.NotAfterMS = notAfter.UnixMilli()
		}
		res, err := r.sched.AddJob(ctx, scheduler.AddJobRequest{
			Name:     cf.Topic,
			Schedule: sched,
			Payload: scheduler.Payload{
				Kind:    scheduler.PayloadAgentTurn,
				Message: cf.Topic,
				Channel: t.Msg.Channel,
				ChatID:  t.Msg.ChatID,
				Locale:  string(t.Lang),
				Deliver: true,
			},
			Location: t.Loc,
		})
		if err != nil {
			return []string{r.schedulerErrorReply(t, err)}, true
		}
		return []string{locale.T(t.Lang, "recurring.saved",
			"description", cf.Desc, "id", res.Job.ID)}, true
	}
	t.Session.DeleteMeta(session.MetaRecurringFlow)
	return nil, false
}

// recurringEnd maps the "until when" answer to a window end. A zero time
// means indefinite.
func (r *Router) recurringEnd(text string, t *Turn) (time.Time, bool) {
	now := r.now().In(t.Loc)
	switch normalize(text) {
	case "indefinido", "indefinidamente", "sempre", "forever", "indefinite", "indefinitely", "sem fim":
		return time.Time{}, true
	case "fim da semana", "fim de semana", "ate ao fim da semana", "fim_semana", "end of week":
		days := (6 - int(now.Weekday()) + 7) % 7
		return endOfDay(now.AddDate(0, 0, days)), true
	case "fim do mes", "fim de mes", "fim_mes", "end of month":
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, t.Loc)
		return endOfDay(first.AddDate(0, 1, -1)), true
	case "fim do ano", "fim de ano", "fim_ano", "end of year":
		return endOfDay(time.Date(now.Year(), 12, 31, 0, 0, 0, 0, t.Loc)), true
	}
	if d, ok := r.flowDate(text, t); ok {
		return endOfDay(d), true
	}
	return time.Time{}, false
}

func endOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, d.Location())
}

// startFlow installs a flow for a message the direct intents could not
// fully resolve: weekly shapes and reminder-like texts missing a component.
func (r *Router) startFlow(ctx context.Context, t *Turn, text string) ([]string, bool) {
	// Weekly shape without an explicit recurrence marker: confirm first.
	if p, ok := parse.Weekly(text); ok {
		desc := r.describePattern(t, p)
		t.Session.SetMetaJSON(session.MetaRecurringFlow, recurringFlow{
			Stage:    recNeedConfirm,
			CronExpr: p.CronExpr(),
			Topic:    p.Topic,
			Desc:     desc,
		})
		return []string{locale.T(t.Lang, "recurring.confirm", "description", desc)}, true
	}

	if !hasReminderKeyword(text) {
		return nil, false
	}
	now := r.now().In(t.Loc)
	res, ok := parse.Schedule(text, now, t.Loc)
	if !ok || res.Kind != parse.KindAt || res.Message == "" {
		return nil, false
	}

	switch {
	case res.HasDate && !res.HasTime:
		rf := reminderFlow{
			Stage:   flowNeedTime,
			Message: res.Message,
			Day:     res.At.Format("2006-01-02"),
			HasDate: true,
		}
		t.Session.SetMetaJSON(session.MetaReminderFlow, rf)
		return []string{locale.T(t.Lang, "flow.need_time", "what", res.Message)}, true
	case res.HasTime && !res.HasDate && !sameDayIntent(text):
		rf := reminderFlow{
			Stage:   flowNeedDate,
			Message: res.Message,
			Hour:    res.At.Hour(),
			Minute:  res.At.Minute(),
			HasTime: true,
		}
		t.Session.SetMetaJSON(session.MetaReminderFlow, rf)
		return []string{locale.T(t.Lang, "flow.need_date", "what", res.Message)}, true
	}
	return nil, false
}

// describePattern renders "segunda e quarta às 19:00" in the user's language.
func (r *Router) describePattern(t *Turn, p *parse.Pattern) string {
	names := make([]string, len(p.Days))
	for i, d := range p.Days {
		names[i] = locale.WeekdayName(t.Lang, time.Weekday(d))
	}
	return fmt.Sprintf("%s — %s %02d:%02d", p.Topic, strings.Join(names, ", "), p.Hour, p.Minute)
}

// reminderKeywords mark a text as a scheduling request.
var reminderKeywords = []string{
	"lembra", "lembrar", "lembre", "lembrete", "me lembra", "avisa", "aviso",
	"remind", "reminder", "recuerda", "recordatorio", "avisame",
	"consulta", "reuniao", "medico", "dentista", "entrevista", "prova", "exame",
	"pagar", "pagamento", "appointment", "meeting",
}

func hasReminderKeyword(text string) bool {
	folded := normalize(text)
	for _, kw := range reminderKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// sameDayIntent reports an explicit "today" marker, which needs no date
// question.
func sameDayIntent(text string) bool {
	folded := normalize(text)
	return strings.Contains(folded, "hoje") || strings.Contains(folded, "hoy") ||
		strings.Contains(folded, "today") || strings.Contains(folded, "daqui a") ||
		strings.Contains(folded, "em ")
}

// schedulerErrorReply maps scheduler sentinels to localized replies.
func (r *Router) schedulerErrorReply(t *Turn, err error) string {
	switch {
	case errors.Is(err, scheduler.ErrDuplicateJob):
		return locale.T(t.Lang, "reminder.duplicate", "id", duplicateJobID(err))
	case errors.Is(err, scheduler.ErrQuotaExceeded):
		msg := err.Error()
		if strings.Contains(msg, "events") {
			return locale.T(t.Lang, "quota.events_exceeded")
		}
		if strings.Contains(msg, "combined") {
			return locale.T(t.Lang, "quota.combined_exceeded")
		}
		return locale.T(t.Lang, "quota.reminders_exceeded")
	case errors.Is(err, scheduler.ErrIntervalTooShort):
		return locale.T(t.Lang, "reminder.min_interval", "hours", minIntervalText(err))
	case errors.Is(err, scheduler.ErrInvalidSchedule):
		return locale.T(t.Lang, "agent.error")
	}
	r.logger.Error("scheduling failed", "error", err)
	return locale.T(t.Lang, "agent.error")
}

// minIntervalText renders the recurring floor carried by an interval error:
// the relaxed floor after insistence, the strict one otherwise.
func minIntervalText(err error) string {
	d, ok := scheduler.IntervalFloor(err)
	if !ok {
		d = 2 * time.Hour
	}
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	return fmt.Sprintf("%dmin", int(d/time.Minute))
}

// duplicateJobID extracts the "(id XX)" suffix from a duplicate error.
func duplicateJobID(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, "(id "); i >= 0 {
		return strings.TrimSuffix(msg[i+4:], ")")
	}
	return "?"
}
