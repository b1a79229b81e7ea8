package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/parse"
)

// Config carries the scheduler's operational knobs.
type Config struct {
	// TickInterval is the executor granularity. Never above one second.
	TickInterval time.Duration `yaml:"tick_interval"`

	// MinRecurringInterval is the floor for every/cron schedules.
	MinRecurringInterval time.Duration `yaml:"min_recurring_interval"`

	// RelaxedMinInterval applies when insistence was detected. Never lower.
	RelaxedMinInterval time.Duration `yaml:"relaxed_min_interval"`

	// DeadlineFollowupMinutes spaces the three post-deadline reminders at
	// +0, +N and +2N minutes.
	DeadlineFollowupMinutes int `yaml:"deadline_followup_minutes"`

	// Per-day quotas per user.
	MaxRemindersPerDay int `yaml:"max_reminders_per_day"`
	MaxEventsPerDay    int `yaml:"max_events_per_day"`
	MaxCombinedPerDay  int `yaml:"max_combined_per_day"`

	// QuotaWarnRatio triggers the soft warning appended to replies.
	QuotaWarnRatio float64 `yaml:"quota_warn_ratio"`

	// SnoozeDelay is the push applied by the snooze reaction.
	SnoozeDelay time.Duration `yaml:"snooze_delay"`

	// AutoLeadThreshold is how far out a one-shot must be to receive the
	// automatic 24h-before alert.
	AutoLeadThreshold time.Duration `yaml:"auto_lead_threshold"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval:            time.Second,
		MinRecurringInterval:    2 * time.Hour,
		RelaxedMinInterval:      30 * time.Minute,
		DeadlineFollowupMinutes: 30,
		MaxRemindersPerDay:      40,
		MaxEventsPerDay:         40,
		MaxCombinedPerDay:       80,
		QuotaWarnRatio:          0.7,
		SnoozeDelay:             5 * time.Minute,
		AutoLeadThreshold:       5 * 24 * time.Hour,
	}
}

// Judge decides whether two reminder texts refer to the same underlying
// task. Implemented by the parser-profile LLM; failures are recoverable.
type Judge interface {
	SameTask(ctx context.Context, a, b string) (bool, error)
}

// EventCounter reports how many calendar events a user has on a day.
// Implemented by the events repository.
type EventCounter interface {
	CountEventsOnDay(ctx context.Context, chatID string, dayStart, dayEnd time.Time) (int, error)
}

// HistorySink records scheduling and delivery events. Implemented by the
// reminder-history repository.
type HistorySink interface {
	Append(ctx context.Context, userID, jobID, kind, detail string) error
}

// Scheduler owns the job store and implements the public contract. The
// executor (executor.go) drives it on a tick.
type Scheduler struct {
	cfg     Config
	store   *FileStore
	now     func() time.Time
	judge   Judge
	events  EventCounter
	history HistorySink
	logger  *slog.Logger
}

// New creates a scheduler. judge, events and history may be nil; the
// corresponding checks then degrade (judge-less dedupe, quota on jobs only,
// no history rows).
func New(cfg Config, store *FileStore, now func() time.Time, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	if cfg.TickInterval <= 0 || cfg.TickInterval > time.Second {
		cfg.TickInterval = time.Second
	}
	return &Scheduler{
		cfg:    cfg,
		store:  store,
		now:    now,
		logger: logger.With("component", "scheduler"),
	}
}

// SetJudge wires the duplicate judge.
func (s *Scheduler) SetJudge(j Judge) { s.judge = j }

// SetEventCounter wires the per-day event counter.
func (s *Scheduler) SetEventCounter(ec EventCounter) { s.events = ec }

// SetHistory wires the reminder-history sink.
func (s *Scheduler) SetHistory(h HistorySink) { s.history = h }

// Config returns the active configuration.
func (s *Scheduler) Config() Config { return s.cfg }

// Now returns the scheduler's effective time: the clock wired at
// construction, wall time plus any drift correction. Callers computing fire
// instants must use this, never the wall clock.
func (s *Scheduler) Now() time.Time { return s.now() }

// AddJobRequest is the creation contract.
type AddJobRequest struct {
	Name           string
	Schedule       Schedule
	Payload        Payload
	DeleteAfterRun bool

	// SuggestedPrefix is tried as the short id before derivation.
	SuggestedPrefix string

	// Location is the user's timezone for the per-day quota window.
	Location *time.Location

	// RelaxMinInterval lowers the recurring floor after detected insistence.
	RelaxMinInterval bool

	// SkipDedupe bypasses duplicate suppression (internal follow-ups).
	SkipDedupe bool
}

// AddResult carries the created job plus a soft quota warning, when the user
// crossed the warn ratio.
type AddResult struct {
	Job       *Job
	QuotaWarn bool
}

// AddJob validates, deduplicates, quota-checks and persists a new job,
// computing its initial next run. Dependent jobs stay inert until released.
func (s *Scheduler) AddJob(ctx context.Context, req AddJobRequest) (*AddResult, error) {
	if err := ValidateSchedule(req.Schedule); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Payload.Message) == "" && req.Payload.Kind != PayloadDeadlineCheck {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidSchedule)
	}

	nowMS := s.now().UnixMilli()

	// Recurring floor.
	if min := MinimumFireInterval(req.Schedule); min > 0 {
		floor := s.cfg.MinRecurringInterval
		if req.RelaxMinInterval {
			floor = s.cfg.RelaxedMinInterval
		}
		if min < floor {
			return nil, fmt.Errorf("%w: %s below %s", ErrIntervalTooShort, min, floor)
		}
	}

	if !req.SkipDedupe {
		if dup := s.findDuplicate(ctx, req); dup != nil {
			return nil, fmt.Errorf("%w (id %s)", ErrDuplicateJob, dup.ID)
		}
	}

	var nextRun int64
	if !dependentPayload(req.Payload) {
		next, ok := NextRun(req.Schedule, 0, nowMS)
		if !ok {
			return nil, fmt.Errorf("%w: no future fire instant", ErrInvalidSchedule)
		}
		nextRun = next
	}

	warn := false
	if nextRun > 0 && req.Payload.Kind != PayloadDeadlineCheck {
		var err error
		warn, err = s.checkQuota(ctx, req.Payload.ChatID, time.UnixMilli(nextRun), req.Location)
		if err != nil {
			return nil, err
		}
	}

	topic := req.Payload.Message
	if topic == "" {
		topic = req.Name
	}
	job := &Job{
		ID:             ShortID(topic, req.SuggestedPrefix, s.store.Exists),
		Name:           req.Name,
		Enabled:        true,
		Schedule:       req.Schedule,
		Payload:        req.Payload,
		DeleteAfterRun: req.DeleteAfterRun,
		CreatedAtMS:    nowMS,
		UpdatedAtMS:    nowMS,
	}
	job.State.NextRunAtMS = nextRun
	if job.Name == "" {
		job.Name = req.Payload.Message
	}

	if err := s.store.Save(job); err != nil {
		return nil, fmt.Errorf("persisting job: %w", err)
	}
	s.appendHistory(ctx, job, "scheduled", job.Payload.Message)
	s.logger.Info("job added",
		"id", job.ID,
		"kind", job.Schedule.Kind,
		"next_run", formatMS(job.State.NextRunAtMS),
		"chat", job.Payload.ChatID)

	// Automatic 24h-before alert for far-out one-shots. Failure here never
	// blocks the main job.
	if job.OneShot() && !req.SkipDedupe &&
		time.UnixMilli(job.Schedule.AtMS).Sub(s.now()) > s.cfg.AutoLeadThreshold {
		if err := s.addLeadAlert(ctx, job, 24*time.Hour); err != nil {
			s.logger.Debug("auto lead alert skipped", "id", job.ID, "error", err)
		}
	}

	// Deadline-protected one-shots get their deadline_check pair, scheduled
	// just after the main fire instant.
	if job.OneShot() && job.Payload.HasDeadline && job.Payload.Kind == PayloadAgentTurn {
		if err := s.addDeadlineCheck(ctx, job); err != nil {
			s.logger.Warn("deadline check not created", "id", job.ID, "error", err)
		}
	}

	return &AddResult{Job: job, QuotaWarn: warn}, nil
}

// dependentPayload reports whether a payload waits on a predecessor.
func dependentPayload(p Payload) bool { return p.DependsOnJobID != "" }

// ListJobs returns jobs, optionally including disabled ones.
func (s *Scheduler) ListJobs(includeDisabled bool) []*Job {
	all := s.store.All()
	if includeDisabled {
		return all
	}
	out := all[:0]
	for _, j := range all {
		if j.Enabled {
			out = append(out, j)
		}
	}
	return out
}

// JobsForChat returns enabled jobs targeting a chat.
func (s *Scheduler) JobsForChat(chatID string) []*Job {
	var out []*Job
	for _, j := range s.store.All() {
		if j.Enabled && j.Payload.ChatID == chatID {
			out = append(out, j)
		}
	}
	return out
}

// GetJob returns a job by id, or ErrJobNotFound.
func (s *Scheduler) GetJob(id string) (*Job, error) {
	j := s.store.Get(id)
	if j == nil {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return j, nil
}

// RemoveJob deletes a job. Returns false when absent.
func (s *Scheduler) RemoveJob(ctx context.Context, id string) (bool, error) {
	j := s.store.Get(id)
	ok, err := s.store.Delete(id)
	if err != nil {
		return false, err
	}
	if ok && j != nil {
		s.appendHistory(ctx, j, "removed", "")
		s.logger.Info("job removed", "id", id)
	}
	return ok, nil
}

// RemoveJobAndDeadlineFollowups deletes a job plus its deadline_check pair
// and any post-deadline siblings.
func (s *Scheduler) RemoveJobAndDeadlineFollowups(ctx context.Context, id string) (bool, error) {
	for _, j := range s.store.All() {
		if j.Payload.DeadlineMainJobID == id {
			if _, err := s.store.Delete(j.ID); err != nil {
				return false, err
			}
		}
	}
	return s.RemoveJob(ctx, id)
}

// TriggerDependents releases every job waiting on the completed job: each
// fires once within a second and is then handled per its delete rule.
func (s *Scheduler) TriggerDependents(ctx context.Context, completedJobID string) error {
	nowMS := s.now().UnixMilli()
	for _, j := range s.store.All() {
		if j.Payload.DependsOnJobID != completedJobID || j.State.Released {
			continue
		}
		j.State.Released = true
		j.State.NextRunAtMS = nowMS + time.Second.Milliseconds()
		j.UpdatedAtMS = nowMS
		if err := s.store.Save(j); err != nil {
			return err
		}
		s.appendHistory(ctx, j, "released", "predecessor "+completedJobID)
		s.logger.Info("dependent job released", "id", j.ID, "predecessor", completedJobID)
	}
	return nil
}

// MarkComplete confirms a reminder done (👍 reaction or explicit command):
// removes the remind-again chain and deadline follow-ups, releases
// dependents, and deletes one-shots marked delete-after-run.
func (s *Scheduler) MarkComplete(ctx context.Context, id string) error {
	j := s.store.Get(id)
	if j == nil {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	// Cancel the unconfirmed-reminder chain rooted at this job.
	for _, child := range s.store.All() {
		if child.Payload.ParentJobID == id || child.Payload.DeadlineMainJobID == id {
			if _, err := s.store.Delete(child.ID); err != nil {
				return err
			}
		}
	}

	j.State.Completed = true
	j.UpdatedAtMS = s.now().UnixMilli()
	if err := s.store.Save(j); err != nil {
		return err
	}
	s.appendHistory(ctx, j, "completed", "")

	if err := s.TriggerDependents(ctx, id); err != nil {
		return err
	}

	if j.OneShot() && j.DeleteAfterRun {
		_, err := s.store.Delete(id)
		return err
	}
	return nil
}

// Snooze pushes a job's next run by the configured delay, capped at
// MaxSnoozes. Returns the new snooze count.
func (s *Scheduler) Snooze(ctx context.Context, id string) (int, error) {
	j := s.store.Get(id)
	if j == nil {
		return 0, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if j.State.SnoozeCount >= MaxSnoozes {
		return j.State.SnoozeCount, fmt.Errorf("scheduler: snooze limit reached")
	}
	j.State.SnoozeCount++
	j.State.NextRunAtMS = s.now().Add(s.cfg.SnoozeDelay).UnixMilli()
	j.Enabled = true
	j.UpdatedAtMS = s.now().UnixMilli()
	if err := s.store.Save(j); err != nil {
		return 0, err
	}
	s.appendHistory(ctx, j, "snoozed", fmt.Sprintf("count=%d", j.State.SnoozeCount))
	return j.State.SnoozeCount, nil
}

// AddLeadAlerts creates extra one-shots before a main one-shot at the given
// lead offsets. Failures skip the lead alert, never the main job.
func (s *Scheduler) AddLeadAlerts(ctx context.Context, main *Job, leads []time.Duration) {
	if !main.OneShot() {
		return
	}
	for _, lead := range leads {
		if err := s.addLeadAlert(ctx, main, lead); err != nil {
			s.logger.Debug("lead alert skipped", "id", main.ID, "lead", lead, "error", err)
		}
	}
}

// addDeadlineCheck schedules the deadline_check pair one minute after the
// main fire instant. The check expands into post-deadline follow-ups only if
// the main job is still unconfirmed when it fires.
func (s *Scheduler) addDeadlineCheck(ctx context.Context, main *Job) error {
	at := time.UnixMilli(main.Schedule.AtMS).Add(time.Minute)
	payload := Payload{
		Kind:              PayloadDeadlineCheck,
		Channel:           main.Payload.Channel,
		ChatID:            main.Payload.ChatID,
		Locale:            main.Payload.Locale,
		DeadlineMainJobID: main.ID,
	}
	_, err := s.AddJob(ctx, AddJobRequest{
		Name:           main.Name + " (deadline)",
		Schedule:       At(at),
		Payload:        payload,
		DeleteAfterRun: true,
		SkipDedupe:     true,
	})
	return err
}

func (s *Scheduler) addLeadAlert(ctx context.Context, main *Job, lead time.Duration) error {
	at := time.UnixMilli(main.Schedule.AtMS).Add(-lead)
	if !at.After(s.now()) {
		return fmt.Errorf("lead instant already past")
	}
	payload := main.Payload
	payload.Message = main.Payload.Message + " (" + formatLead(lead, main.Payload.Locale) + ")"
	payload.ParentJobID = main.ID
	payload.HasDeadline = false
	payload.RemindAgainSeconds = 0

	_, err := s.AddJob(ctx, AddJobRequest{
		Name:           main.Name + " (antes)",
		Schedule:       At(at),
		Payload:        payload,
		DeleteAfterRun: true,
		SkipDedupe:     true,
	})
	return err
}

// formatLead renders the lead offset for the alert text.
func formatLead(lead time.Duration, localeHint string) string {
	switch {
	case lead >= 24*time.Hour:
		days := int(lead / (24 * time.Hour))
		if strings.HasPrefix(localeHint, "en") {
			if days == 1 {
				return "in 1 day"
			}
			return fmt.Sprintf("in %d days", days)
		}
		if days == 1 {
			return "falta 1 dia"
		}
		return fmt.Sprintf("faltam %d dias", days)
	case lead >= time.Hour:
		h := int(lead / time.Hour)
		if strings.HasPrefix(localeHint, "en") {
			return fmt.Sprintf("in %dh", h)
		}
		return fmt.Sprintf("falta %dh", h)
	default:
		m := int(lead / time.Minute)
		if strings.HasPrefix(localeHint, "en") {
			return fmt.Sprintf("in %dmin", m)
		}
		return fmt.Sprintf("faltam %dmin", m)
	}
}

// SetChatEnabled pauses or resumes every job of a chat (/stop and /start).
// Returns the number of jobs toggled.
func (s *Scheduler) SetChatEnabled(ctx context.Context, chatID string, enabled bool) int {
	nowMS := s.now().UnixMilli()
	toggled := 0
	for _, j := range s.store.All() {
		if j.Payload.ChatID != chatID || j.Enabled == enabled {
			continue
		}
		j.Enabled = enabled
		j.UpdatedAtMS = nowMS
		if err := s.store.Save(j); err != nil {
			s.logger.Warn("toggle failed", "id", j.ID, "error", err)
			continue
		}
		toggled++
	}
	if toggled > 0 {
		kind := "paused"
		if enabled {
			kind = "resumed"
		}
		s.appendHistory(ctx, &Job{Payload: Payload{ChatID: chatID}}, kind, fmt.Sprintf("%d jobs", toggled))
	}
	return toggled
}

// RemoveStaleJobs disables or removes enabled one-shots whose fire instant
// is already past (after a downtime). Returns per-chat counts so the agent
// loop can apologise on the next user turn.
func (s *Scheduler) RemoveStaleJobs(ctx context.Context) map[string]int {
	nowMS := s.now().UnixMilli()
	removed := make(map[string]int)
	for _, j := range s.store.All() {
		if !j.Enabled || !j.OneShot() || j.Dependent() {
			continue
		}
		// Grace of one tick; anything older than a minute is stale.
		if j.Schedule.AtMS > 0 && j.Schedule.AtMS < nowMS-time.Minute.Milliseconds() {
			if _, err := s.store.Delete(j.ID); err != nil {
				s.logger.Warn("stale job removal failed", "id", j.ID, "error", err)
				continue
			}
			removed[j.Payload.ChatID]++
			s.appendHistory(ctx, j, "stale_removed", "")
		}
	}
	return removed
}

// ---------- duplicate suppression ----------

// findDuplicate returns an existing enabled job for the same destination with
// a matching schedule and the same underlying task, or nil.
func (s *Scheduler) findDuplicate(ctx context.Context, req AddJobRequest) *Job {
	normalized := parse.Fold(req.Payload.Message)
	for _, j := range s.store.All() {
		if !j.Enabled ||
			j.Payload.ChatID != req.Payload.ChatID ||
			j.Payload.Channel != req.Payload.Channel {
			continue
		}
		if !scheduleEqual(j.Schedule, req.Schedule) {
			continue
		}
		if parse.Fold(j.Payload.Message) == normalized {
			return j
		}
		// Same slot, different text: ask the parser model whether both refer
		// to the same task. On judge failure, creation proceeds.
		if s.judge != nil {
			same, err := s.judge.SameTask(ctx, j.Payload.Message, req.Payload.Message)
			if err == nil && same {
				return j
			}
		}
	}
	return nil
}

func scheduleEqual(a, b Schedule) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindAt:
		// Same minute counts as the same slot.
		return a.AtMS/60000 == b.AtMS/60000
	case KindEvery:
		return a.EveryMS == b.EveryMS
	case KindCron:
		return a.Expr == b.Expr && a.TZ == b.TZ
	}
	return false
}

// ---------- quotas ----------

// checkQuota enforces spec'd per-day limits for the chat owning the new job.
// Returns true when the user crossed the warn ratio.
func (s *Scheduler) checkQuota(ctx context.Context, chatID string, fireAt time.Time, loc *time.Location) (bool, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := fireAt.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	reminders := s.countRemindersBetween(chatID, dayStart, dayEnd)

	events := 0
	if s.events != nil {
		n, err := s.events.CountEventsOnDay(ctx, chatID, dayStart, dayEnd)
		if err == nil {
			events = n
		}
	}

	if reminders+1 > s.cfg.MaxRemindersPerDay {
		return false, fmt.Errorf("%w: %d reminders on %s", ErrQuotaExceeded, reminders, dayStart.Format("2006-01-02"))
	}
	if events > s.cfg.MaxEventsPerDay {
		return false, fmt.Errorf("%w: %d events on %s", ErrQuotaExceeded, events, dayStart.Format("2006-01-02"))
	}
	if reminders+1+events > s.cfg.MaxCombinedPerDay {
		return false, fmt.Errorf("%w: %d combined on %s", ErrQuotaExceeded, reminders+events, dayStart.Format("2006-01-02"))
	}

	warn := float64(reminders+1) >= s.cfg.QuotaWarnRatio*float64(s.cfg.MaxRemindersPerDay)
	return warn, nil
}

// countRemindersBetween counts enabled jobs for a chat whose next run falls
// inside the window.
func (s *Scheduler) countRemindersBetween(chatID string, from, to time.Time) int {
	fromMS, toMS := from.UnixMilli(), to.UnixMilli()
	n := 0
	for _, j := range s.store.All() {
		if !j.Enabled || j.Payload.ChatID != chatID {
			continue
		}
		if j.State.NextRunAtMS >= fromMS && j.State.NextRunAtMS < toMS {
			n++
		}
	}
	return n
}

// ---------- helpers ----------

func (s *Scheduler) appendHistory(ctx context.Context, j *Job, kind, detail string) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(ctx, j.Payload.ChatID, j.ID, kind, detail); err != nil {
		s.logger.Debug("history append failed", "id", j.ID, "kind", kind, "error", err)
	}
}

func formatMS(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
