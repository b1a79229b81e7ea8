package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/parse"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
)

// CronTool lets the assistant create, list and remove reminders.
type CronTool struct {
	sched *scheduler.Scheduler
}

// NewCronTool wires the cron tool.
func NewCronTool(s *scheduler.Scheduler) *CronTool {
	return &CronTool{sched: s}
}

func (t *CronTool) Name() string { return "cron" }

func (t *CronTool) Description() string {
	return "Schedule, list or remove reminders. 'message' must describe the task itself (e.g. 'tomar remédio'), never the word 'reminder'. Use in_seconds for one-shots, every_seconds for intervals, cron_expr for recurring times."
}

func (t *CronTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []string{"add", "list", "remove"},
			},
			"message":      map[string]any{"type": "string", "description": "what the reminder is about"},
			"in_seconds":   map[string]any{"type": "integer", "description": "one-shot delay from now"},
			"every_seconds": map[string]any{
				"type": "integer", "description": "recurring interval (minimum 2 hours unless justified)",
			},
			"cron_expr":  map[string]any{"type": "string", "description": "five-field cron in the user's timezone"},
			"start_date": map[string]any{"type": "string", "description": "YYYY-MM-DD window start for recurring jobs"},
			"end_date":   map[string]any{"type": "string", "description": "YYYY-MM-DD window end for recurring jobs"},
			"job_id":     map[string]any{"type": "string", "description": "short id for remove"},
			"remind_again_if_unconfirmed_seconds": map[string]any{"type": "integer"},
			"depends_on_job_id":                   map[string]any{"type": "string"},
			"has_deadline":                        map[string]any{"type": "boolean"},
		},
		"required": []string{"action"},
	}
}

func (t *CronTool) Execute(ctx context.Context, tc Context, args map[string]any) (string, error) {
	switch argString(args, "action") {
	case "add":
		return t.add(ctx, tc, args)
	case "list":
		return t.list(tc), nil
	case "remove":
		id := strings.ToUpper(strings.TrimSpace(argString(args, "job_id")))
		if id == "" {
			return "job_id is required for remove", nil
		}
		ok, err := t.sched.RemoveJobAndDeadlineFollowups(ctx, id)
		if err != nil {
			return "", err
		}
		if !ok {
			return locale.T(tc.Language, "reminder.not_found", "id", id), nil
		}
		return locale.T(tc.Language, "reminder.cancelled", "id", id), nil
	}
	return "unknown action", nil
}

func (t *CronTool) add(ctx context.Context, tc Context, args map[string]any) (string, error) {
	message := strings.TrimSpace(argString(args, "message"))
	if message == "" || isReminderWord(message) {
		return locale.T(tc.Language, "reminder.what_for"), nil
	}

	loc := tc.Location
	if loc == nil {
		loc = time.UTC
	}

	var sched scheduler.Schedule
	switch {
	case argInt64(args, "in_seconds") > 0:
		sched = scheduler.At(t.sched.Now().Add(time.Duration(argInt64(args, "in_seconds")) * time.Second))
	case argInt64(args, "every_seconds") > 0:
		sched = scheduler.Every(time.Duration(argInt64(args, "every_seconds")) * time.Second)
	case argString(args, "cron_expr") != "":
		sched = scheduler.Cron(argString(args, "cron_expr"), loc.String())
	default:
		return "one of in_seconds, every_seconds or cron_expr is required", nil
	}

	if start := argString(args, "start_date"); start != "" {
		if d, err := time.ParseInLocation("2006-01-02", start, loc); err == nil {
			sched.NotBeforeMS = d.UnixMilli()
		}
	}
	if end := argString(args, "end_date"); end != "" {
		if d, err := time.ParseInLocation("2006-01-02", end, loc); err == nil {
			sched.NotAfterMS = d.Add(24*time.Hour - time.Second).UnixMilli()
		}
	}

	res, err := t.sched.AddJob(ctx, scheduler.AddJobRequest{
		Name:     message,
		Schedule: sched,
		Payload: scheduler.Payload{
			Kind:               scheduler.PayloadAgentTurn,
			Message:            message,
			Channel:            tc.Channel,
			ChatID:             tc.ChatID,
			Locale:             string(tc.Language),
			Deliver:            true,
			RemindAgainSeconds: argInt64(args, "remind_again_if_unconfirmed_seconds"),
			DependsOnJobID:     strings.ToUpper(argString(args, "depends_on_job_id")),
			HasDeadline:        argBool(args, "has_deadline"),
		},
		DeleteAfterRun: sched.Kind == scheduler.KindAt,
		Location:       loc,
	})
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrDuplicateJob):
			return locale.T(tc.Language, "reminder.duplicate", "id", duplicateID(err)), nil
		case errors.Is(err, scheduler.ErrQuotaExceeded):
			return locale.T(tc.Language, "quota.reminders_exceeded"), nil
		case errors.Is(err, scheduler.ErrIntervalTooShort):
			return locale.T(tc.Language, "reminder.min_interval", "hours", minIntervalText(err)), nil
		}
		return "", err
	}

	job := res.Job
	var reply string
	if job.Schedule.Kind != scheduler.KindAt {
		reply = locale.T(tc.Language, "reminder.scheduled_recurring", "id", job.ID, "schedule", message)
	} else if job.State.NextRunAtMS > 0 {
		when := locale.FormatDateTime(tc.Language, time.UnixMilli(job.State.NextRunAtMS).In(loc))
		reply = locale.T(tc.Language, "reminder.scheduled", "id", job.ID, "time", when)
	} else {
		reply = locale.T(tc.Language, "reminder.scheduled", "id", job.ID, "time", "—")
	}
	if res.QuotaWarn {
		reply += locale.T(tc.Language, "quota.warning", "percent", "70")
	}
	return reply, nil
}

func (t *CronTool) list(tc Context) string {
	jobs := t.sched.JobsForChat(tc.ChatID)
	if len(jobs) == 0 {
		return locale.T(tc.Language, "reminder.list_empty")
	}
	loc := tc.Location
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	b.WriteString(locale.T(tc.Language, "reminder.list_header"))
	for _, j := range jobs {
		if j.Payload.Kind == scheduler.PayloadDeadlineCheck {
			continue
		}
		b.WriteString("\n")
		next := "—"
		if j.State.NextRunAtMS > 0 {
			next = locale.FormatDateTime(tc.Language, time.UnixMilli(j.State.NextRunAtMS).In(loc))
		}
		fmt.Fprintf(&b, "• %s — %s (%s)", j.ID, j.Payload.Message, next)
	}
	return b.String()
}

// isReminderWord rejects messages that only restate "reminder" without
// describing the task.
func isReminderWord(message string) bool {
	folded := parse.Fold(message)
	switch folded {
	case "lembrete", "reminder", "recordatorio", "lembrar", "remind", "aviso", "alarme", "alarm":
		return true
	}
	return false
}

// minIntervalText renders the recurring floor carried by an interval error.
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

// duplicateID extracts the "(id XX)" suffix from a duplicate error.
func duplicateID(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, "(id "); i >= 0 {
		return strings.TrimSuffix(msg[i+4:], ")")
	}
	return "?"
}
