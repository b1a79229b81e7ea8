package router

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
)

// deliveryTTL bounds how long a delivered reminder accepts reactions.
const deliveryTTL = 24 * time.Hour

type delivery struct {
	MessageID string
	JobID     string
	At        time.Time
}

// Deliveries remembers which outbound message carried which reminder, so an
// emoji reaction can be traced back to its job. Per chat only the most recent
// few are kept.
type Deliveries struct {
	mu     sync.Mutex
	byChat map[session.Key][]delivery
	now    func() time.Time
}

// NewDeliveries creates the registry.
func NewDeliveries(now func() time.Time) *Deliveries {
	if now == nil {
		now = time.Now
	}
	return &Deliveries{byChat: make(map[session.Key][]delivery), now: now}
}

// Record registers a delivered reminder message.
func (d *Deliveries) Record(key session.Key, messageID, jobID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := append(d.byChat[key], delivery{MessageID: messageID, JobID: jobID, At: d.now()})
	if len(entries) > 8 {
		entries = entries[len(entries)-8:]
	}
	d.byChat[key] = entries
}

// Resolve maps a reaction target to a job id. An empty or unknown target
// falls back to the most recent delivery in the chat.
func (d *Deliveries) Resolve(key session.Key, targetID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := d.byChat[key]
	cutoff := d.now().Add(-deliveryTTL)
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].At.Before(cutoff) {
			continue
		}
		if targetID == "" || entries[i].MessageID == targetID {
			return entries[i].JobID, true
		}
	}
	// Unknown target: assume the latest reminder was meant.
	for i := len(entries) - 1; i >= 0; i-- {
		if !entries[i].At.Before(cutoff) {
			return entries[i].JobID, true
		}
	}
	return "", false
}

// Deliveries exposes the registry so the agent loop can record sends.
func (r *Router) Deliveries() *Deliveries { return r.deliveries }

// handleReaction maps emoji reactions on delivered reminders: 👍 completes,
// ⏰ snoozes, 👎 offers reschedule-or-cancel. Removals and reactions with no
// traceable reminder are ignored.
func (r *Router) handleReaction(ctx context.Context, t *Turn) ([]string, bool) {
	react := t.Msg.Reaction
	if react == nil || react.Remove {
		return nil, false
	}
	jobID, ok := r.deliveries.Resolve(t.Key(), react.TargetID)
	if !ok {
		return nil, false
	}

	switch reactionKind(react.Emoji) {
	case "complete":
		if err := r.sched.MarkComplete(ctx, jobID); err != nil {
			if errors.Is(err, scheduler.ErrJobNotFound) {
				return nil, false
			}
			r.logger.Warn("reaction complete failed", "job", jobID, "error", err)
			return nil, false
		}
		return []string{locale.T(t.Lang, "reminder.completed")}, true

	case "snooze":
		count, err := r.sched.Snooze(ctx, jobID)
		if err != nil {
			if count >= scheduler.MaxSnoozes {
				job, gerr := r.sched.GetJob(jobID)
				msg := ""
				if gerr == nil {
					msg = job.Payload.Message
				}
				r.confirms.Install(t.Key(), Pending{
					Action:  ActionRescheduleCancel,
					JobID:   jobID,
					Message: msg,
				})
				return []string{locale.T(t.Lang, "reminder.snooze_limit")}, true
			}
			r.logger.Warn("snooze failed", "job", jobID, "error", err)
			return nil, false
		}
		return []string{locale.T(t.Lang, "reminder.snoozed")}, true

	case "reject":
		job, err := r.sched.GetJob(jobID)
		if err != nil {
			return nil, false
		}
		r.confirms.Install(t.Key(), Pending{
			Action:  ActionRescheduleCancel,
			JobID:   jobID,
			Message: job.Payload.Message,
		})
		return []string{locale.T(t.Lang, "reminder.reschedule_or_cancel")}, true
	}
	return nil, false
}

// reactionKind buckets the emoji. Skin-tone and gender modifiers are ignored
// by matching on the base rune prefix.
func reactionKind(emoji string) string {
	switch {
	case hasAnyPrefix(emoji, "👍", "✅", "👌", "💪", "🙏"):
		return "complete"
	case hasAnyPrefix(emoji, "⏰", "⏲", "😴", "💤", "🕐"):
		return "snooze"
	case hasAnyPrefix(emoji, "👎", "❌", "🚫"):
		return "reject"
	}
	return ""
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
