// Package scheduler implements the durable job store and ticking executor
// behind every reminder: one-shot, interval and cron schedules with optional
// windows, dependent jobs, deadline follow-ups, snooze, duplicate suppression
// and per-day quotas. Cron expressions are evaluated with robfig/cron in the
// user's timezone; all time arithmetic uses the effective clock.
package scheduler

import (
	"errors"
	"strings"
	"time"
)

// Schedule kinds.
const (
	KindAt    = "at"
	KindEvery = "every"
	KindCron  = "cron"
)

// Payload kinds.
const (
	PayloadAgentTurn     = "agent_turn"
	PayloadSystemEvent   = "system_event"
	PayloadDeadlineCheck = "deadline_check"
)

// Job statuses recorded in State.LastStatus.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// Sentinel errors callers branch on.
var (
	ErrQuotaExceeded    = errors.New("scheduler: MAX_REMINDERS_EXCEEDED")
	ErrDuplicateJob     = errors.New("scheduler: duplicate job")
	ErrIntervalTooShort = errors.New("scheduler: interval below minimum")
	ErrInvalidSchedule  = errors.New("scheduler: invalid schedule")
	ErrJobNotFound      = errors.New("scheduler: job not found")
)

// IntervalFloor extracts the floor a too-short interval was rejected
// against, so replies can name the limit actually in effect (the relaxed
// floor after insistence, the strict one otherwise). ok is false for any
// other error.
func IntervalFloor(err error) (time.Duration, bool) {
	if !errors.Is(err, ErrIntervalTooShort) {
		return 0, false
	}
	msg := err.Error()
	i := strings.LastIndex(msg, " below ")
	if i < 0 {
		return 0, false
	}
	d, perr := time.ParseDuration(msg[i+len(" below "):])
	if perr != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// MaxSnoozes caps State.SnoozeCount.
const MaxSnoozes = 3

// DefaultRemindAgainMaxCount bounds the unconfirmed-reminder follow-up chain.
const DefaultRemindAgainMaxCount = 10

// Schedule is the timing contract of a job: exactly one of the three shapes.
type Schedule struct {
	Kind string `json:"kind"`

	// AtMS is the one-shot instant (kind "at").
	AtMS int64 `json:"at_ms,omitempty"`

	// EveryMS is the fixed interval (kind "every").
	EveryMS int64 `json:"every_ms,omitempty"`

	// Expr is a five-field cron expression (kind "cron") evaluated in TZ.
	Expr string `json:"expr,omitempty"`
	TZ   string `json:"tz,omitempty"`

	// Optional window. A job whose next run would fall past NotAfterMS is
	// disabled or removed.
	NotBeforeMS int64 `json:"not_before_ms,omitempty"`
	NotAfterMS  int64 `json:"not_after_ms,omitempty"`
}

// At builds a one-shot schedule.
func At(t time.Time) Schedule {
	return Schedule{Kind: KindAt, AtMS: t.UnixMilli()}
}

// Every builds an interval schedule.
func Every(d time.Duration) Schedule {
	return Schedule{Kind: KindEvery, EveryMS: d.Milliseconds()}
}

// Cron builds a cron schedule in the given timezone.
func Cron(expr, tz string) Schedule {
	return Schedule{Kind: KindCron, Expr: expr, TZ: tz}
}

// Payload carries what a job delivers and to whom.
type Payload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Channel string `json:"channel"`
	ChatID  string `json:"chat_id"`

	// Locale hints the language of generated follow-up texts.
	Locale string `json:"locale,omitempty"`

	// Deliver selects between sending Message as an outbound (true) and
	// feeding it to the agent loop as a synthetic user turn (false).
	Deliver bool `json:"deliver"`

	// RemindAgainSeconds re-sends the reminder until a completion reaction,
	// bounded by RemindAgainMaxCount (default 10).
	RemindAgainSeconds  int64 `json:"remind_again_if_unconfirmed_seconds,omitempty"`
	RemindAgainMaxCount int   `json:"remind_again_max_count,omitempty"`
	RemindAgainCount    int   `json:"remind_again_count,omitempty"`

	// DependsOnJobID makes this job inert until the named job completes.
	DependsOnJobID string `json:"depends_on_job_id,omitempty"`

	// ParentJobID links follow-ups to their origin so a single completion
	// reaction cancels the whole chain.
	ParentJobID string `json:"parent_job_id,omitempty"`

	// Deadline pair. A main job with HasDeadline survives delivery until
	// confirmed complete or three post-deadline follow-ups have fired.
	HasDeadline       bool   `json:"has_deadline,omitempty"`
	DeadlineMainJobID string `json:"deadline_main_job_id,omitempty"`
	DeadlinePostIndex int    `json:"deadline_post_index,omitempty"`
}

// State is the mutable run bookkeeping of a job.
type State struct {
	NextRunAtMS int64  `json:"next_run_at_ms,omitempty"`
	LastRunAtMS int64  `json:"last_run_at_ms,omitempty"`
	LastStatus  string `json:"last_status,omitempty"`
	LastError   string `json:"last_error,omitempty"`
	SnoozeCount int    `json:"snooze_count,omitempty"`

	// Completed marks a deadline-protected job as confirmed done, and a
	// dependency predecessor as fired.
	Completed bool `json:"completed,omitempty"`

	// Released marks a dependent job whose predecessor has completed.
	Released bool `json:"released,omitempty"`
}

// Job is one scheduled unit of work.
type Job struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Enabled        bool     `json:"enabled"`
	Schedule       Schedule `json:"schedule"`
	Payload        Payload  `json:"payload"`
	State          State    `json:"state"`
	DeleteAfterRun bool     `json:"delete_after_run"`
	CreatedAtMS    int64    `json:"created_at_ms"`
	UpdatedAtMS    int64    `json:"updated_at_ms"`
}

// OneShot reports whether the job fires at most once.
func (j *Job) OneShot() bool {
	return j.Schedule.Kind == KindAt
}

// Dependent reports whether the job waits on a predecessor.
func (j *Job) Dependent() bool {
	return j.Payload.DependsOnJobID != ""
}

// remindAgainLimit returns the effective follow-up cap.
func (j *Job) remindAgainLimit() int {
	if j.Payload.RemindAgainMaxCount > 0 {
		return j.Payload.RemindAgainMaxCount
	}
	return DefaultRemindAgainMaxCount
}
