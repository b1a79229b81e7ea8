package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
)

// Publisher delivers outbound messages. Implemented by the message bus so
// reminder deliveries serialise with conversational replies.
type Publisher interface {
	PublishOutbound(ctx context.Context, msg bus.OutboundMessage) error
}

// AgentInvoker feeds a job payload to the agent loop as a synthetic user
// turn (agent_turn with deliver=false).
type AgentInvoker func(ctx context.Context, channel, chatID, text string)

// QuietLookup reports a user's quiet window. ok is false when none is set.
type QuietLookup func(ctx context.Context, chatID string) (start, end string, loc *time.Location, ok bool)

// Executor ticks the scheduler, firing due jobs through the dispatcher.
type Executor struct {
	sched   *Scheduler
	pub     Publisher
	invoke  AgentInvoker
	quiet   QuietLookup
	running map[string]bool
}

// NewExecutor wires the executor. invoke and quiet may be nil.
func NewExecutor(sched *Scheduler, pub Publisher) *Executor {
	return &Executor{
		sched:   sched,
		pub:     pub,
		running: make(map[string]bool),
	}
}

// SetAgentInvoker wires the synthetic-turn callback.
func (e *Executor) SetAgentInvoker(fn AgentInvoker) { e.invoke = fn }

// SetQuietLookup wires the quiet-window source.
func (e *Executor) SetQuietLookup(fn QuietLookup) { e.quiet = fn }

// Start runs the tick loop until the context ends.
func (e *Executor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(e.sched.cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.Tick(ctx)
			}
		}
	}()
}

// minFireGap guards against spin loops when a recomputed next run lands on
// the same tick.
const minFireGap = 2 * time.Second

// Tick fires every due job once. Exported so tests can drive time manually.
func (e *Executor) Tick(ctx context.Context) {
	nowMS := e.sched.now().UnixMilli()

	for _, job := range e.sched.store.All() {
		if !job.Enabled || job.State.NextRunAtMS == 0 || job.State.NextRunAtMS > nowMS {
			continue
		}
		if job.Dependent() && !job.State.Released {
			continue
		}
		if job.State.LastRunAtMS > 0 && nowMS-job.State.LastRunAtMS < minFireGap.Milliseconds() {
			continue
		}
		if e.running[job.ID] {
			continue
		}

		// Quiet window: advance past it without firing.
		if e.deferForQuietWindow(ctx, job) {
			continue
		}

		e.running[job.ID] = true
		e.fire(ctx, job)
		delete(e.running, job.ID)
	}
}

// deferForQuietWindow pushes the job past the user's quiet window. Returns
// true when the job was deferred.
func (e *Executor) deferForQuietWindow(ctx context.Context, job *Job) bool {
	if e.quiet == nil || job.Payload.Kind == PayloadDeadlineCheck {
		return false
	}
	start, end, loc, ok := e.quiet(ctx, job.Payload.ChatID)
	if !ok {
		return false
	}
	now := e.sched.now().In(loc)
	until, inside := quietWindowEnd(now, start, end)
	if !inside {
		return false
	}
	job.State.NextRunAtMS = until.UnixMilli()
	job.State.LastStatus = StatusSkipped
	job.UpdatedAtMS = e.sched.now().UnixMilli()
	if err := e.sched.store.Save(job); err != nil {
		e.sched.logger.Warn("quiet-window defer not persisted", "id", job.ID, "error", err)
	}
	e.sched.logger.Debug("job deferred past quiet window", "id", job.ID, "until", until)
	return true
}

// quietWindowEnd reports whether now falls inside the HH:MM window and, if
// so, when the window ends. Windows may wrap midnight.
func quietWindowEnd(now time.Time, start, end string) (time.Time, bool) {
	st, err1 := time.Parse("15:04", start)
	en, err2 := time.Parse("15:04", end)
	if err1 != nil || err2 != nil {
		return time.Time{}, false
	}
	mins := now.Hour()*60 + now.Minute()
	startMin := st.Hour()*60 + st.Minute()
	endMin := en.Hour()*60 + en.Minute()

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	windowEnd := dayStart.Add(time.Duration(endMin) * time.Minute)

	if startMin <= endMin {
		if mins >= startMin && mins < endMin {
			return windowEnd, true
		}
		return time.Time{}, false
	}
	// Wrapping window, e.g. 22:00-07:00.
	if mins >= startMin {
		return windowEnd.Add(24 * time.Hour), true
	}
	if mins < endMin {
		return windowEnd, true
	}
	return time.Time{}, false
}

// fire dispatches one job and updates its state. Panics are isolated so one
// bad job never stops the tick loop.
func (e *Executor) fire(ctx context.Context, job *Job) {
	defer func() {
		if r := recover(); r != nil {
			job.State.LastStatus = StatusError
			job.State.LastError = fmt.Sprintf("panic: %v", r)
			job.UpdatedAtMS = e.sched.now().UnixMilli()
			e.sched.store.Save(job)
			e.sched.logger.Error("job dispatch panicked", "id", job.ID, "panic", r)
		}
	}()

	nowMS := e.sched.now().UnixMilli()
	job.State.LastRunAtMS = nowMS

	var err error
	switch job.Payload.Kind {
	case PayloadDeadlineCheck:
		// The deadline check deletes itself; no rescheduling. A failed
		// expansion is saved back with its error so the next tick retries.
		if err := e.runDeadlineCheck(ctx, job); err != nil {
			job.State.LastStatus = StatusError
			job.State.LastError = err.Error()
			job.UpdatedAtMS = nowMS
			if serr := e.sched.store.Save(job); serr != nil {
				e.sched.logger.Warn("deadline check state not persisted", "id", job.ID, "error", serr)
			}
			e.sched.logger.Error("deadline expansion failed", "id", job.ID, "error", err)
		}
		return
	case PayloadAgentTurn, PayloadSystemEvent:
		err = e.deliver(ctx, job)
	default:
		err = fmt.Errorf("unknown payload kind %q", job.Payload.Kind)
	}

	if err != nil {
		job.State.LastStatus = StatusError
		job.State.LastError = err.Error()
		e.sched.logger.Error("job delivery failed", "id", job.ID, "error", err)
	} else {
		job.State.LastStatus = StatusOK
		job.State.LastError = ""
	}
	job.UpdatedAtMS = nowMS

	e.reschedule(ctx, job, err == nil)
}

// deliver emits the payload as an outbound message or a synthetic agent
// turn, then schedules the unconfirmed-reminder follow-up when configured.
func (e *Executor) deliver(ctx context.Context, job *Job) error {
	if job.Payload.Kind == PayloadAgentTurn && !job.Payload.Deliver {
		if e.invoke == nil {
			return fmt.Errorf("no agent invoker configured")
		}
		e.invoke(ctx, job.Payload.Channel, job.Payload.ChatID, job.Payload.Message)
		e.sched.appendHistory(ctx, job, "invoked", "")
		return nil
	}

	err := e.pub.PublishOutbound(ctx, bus.OutboundMessage{
		Channel: job.Payload.Channel,
		ChatID:  job.Payload.ChatID,
		Content: job.Payload.Message,
		Metadata: map[string]string{
			"job_id": job.ID,
			"kind":   job.Payload.Kind,
		},
	})
	if err != nil {
		return err
	}
	e.sched.appendHistory(ctx, job, "delivered", job.Payload.Message)
	e.scheduleRemindAgain(ctx, job)
	return nil
}

// scheduleRemindAgain chains a follow-up one-shot sharing the parent id so a
// single completion reaction cancels the whole chain.
func (e *Executor) scheduleRemindAgain(ctx context.Context, job *Job) {
	secs := job.Payload.RemindAgainSeconds
	if secs <= 0 || job.Payload.RemindAgainCount >= job.remindAgainLimit() {
		return
	}
	payload := job.Payload
	payload.RemindAgainCount++
	if payload.ParentJobID == "" {
		payload.ParentJobID = job.ID
	}
	payload.HasDeadline = false

	_, err := e.sched.AddJob(ctx, AddJobRequest{
		Name:           job.Name,
		Schedule:       At(e.sched.now().Add(time.Duration(secs) * time.Second)),
		Payload:        payload,
		DeleteAfterRun: true,
		SkipDedupe:     true,
	})
	if err != nil {
		e.sched.logger.Debug("remind-again follow-up skipped", "id", job.ID, "error", err)
	}
}

// runDeadlineCheck expands into three post-deadline reminders when the main
// job is still incomplete, then removes itself.
func (e *Executor) runDeadlineCheck(ctx context.Context, job *Job) error {
	defer e.sched.store.Delete(job.ID)

	main := e.sched.store.Get(job.Payload.DeadlineMainJobID)
	if main == nil || main.State.Completed {
		return nil
	}

	lang, _ := locale.Normalize(job.Payload.Locale)
	spacing := time.Duration(e.sched.cfg.DeadlineFollowupMinutes) * time.Minute
	for i := 1; i <= 3; i++ {
		at := e.sched.now().Add(time.Duration(i-1) * spacing)
		payload := main.Payload
		payload.Kind = PayloadAgentTurn
		payload.Deliver = true
		payload.Message = locale.T(lang, "reminder.deadline_followup", "text", main.Payload.Message)
		payload.DeadlineMainJobID = main.ID
		payload.DeadlinePostIndex = i
		payload.HasDeadline = false
		payload.RemindAgainSeconds = 0

		_, err := e.sched.AddJob(ctx, AddJobRequest{
			Name:           main.Name,
			Schedule:       At(at.Add(time.Second)),
			Payload:        payload,
			DeleteAfterRun: true,
			SkipDedupe:     true,
		})
		if err != nil {
			return fmt.Errorf("creating post-deadline reminder %d: %w", i, err)
		}
	}
	e.sched.appendHistory(ctx, main, "deadline_followups", "3 created")
	return nil
}

// reschedule computes the job's next run after a fire, applying the one-shot
// and window-exhaustion removal rules.
func (e *Executor) reschedule(ctx context.Context, job *Job, delivered bool) {
	// Released dependents fire once and follow one-shot semantics.
	if job.Dependent() && job.State.Released {
		if job.DeleteAfterRun && !job.Payload.HasDeadline {
			e.sched.store.Delete(job.ID)
			return
		}
		job.State.NextRunAtMS = 0
		job.Enabled = false
		e.sched.store.Save(job)
		return
	}

	next, ok := NextRun(job.Schedule, job.State.LastRunAtMS, e.sched.now().UnixMilli())
	if ok {
		job.State.NextRunAtMS = next
		e.sched.store.Save(job)
		return
	}

	// No future instant: one-shot delivered, or window exhausted.
	if job.DeleteAfterRun && !job.Payload.HasDeadline && delivered {
		e.sched.store.Delete(job.ID)
		return
	}
	job.State.NextRunAtMS = 0
	if !job.Payload.HasDeadline {
		job.Enabled = false
	}
	e.sched.store.Save(job)
}
