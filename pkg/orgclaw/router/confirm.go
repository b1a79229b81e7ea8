package router

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
)

// Confirmation actions.
const (
	ActionExportar         = "exportar"
	ActionDeletarTudo      = "deletar_tudo"
	ActionNukeAll          = "nuke_all"
	ActionCompletion       = "completion_confirmation"
	ActionRecipeList       = "create_shopping_list_from_recipe"
	ActionDatePastNextYear = "date_past_next_year"
	ActionListOrEvents     = "list_or_events_choice"
	ActionRescheduleCancel = "reschedule_or_cancel"
)

// confirmationTTL evicts unanswered confirmations lazily.
const confirmationTTL = 5 * time.Minute

// Pending is one awaiting yes/no (or 1/2/3) question.
type Pending struct {
	Action    string
	JobID     string
	At        time.Time
	Message   string
	Items     []string
	CreatedAt time.Time
}

// Confirmations is the process-wide pending map keyed by chat.
type Confirmations struct {
	mu      sync.Mutex
	pending map[session.Key]Pending
	now     func() time.Time
}

// NewConfirmations creates the map.
func NewConfirmations(now func() time.Time) *Confirmations {
	if now == nil {
		now = time.Now
	}
	return &Confirmations{pending: make(map[session.Key]Pending), now: now}
}

// Install replaces the chat's pending confirmation.
func (c *Confirmations) Install(key session.Key, p Pending) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.CreatedAt = c.now()
	c.pending[key] = p
}

// Take removes and returns the chat's pending confirmation, skipping expired
// entries.
func (c *Confirmations) Take(key session.Key) (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[key]
	if !ok {
		return Pending{}, false
	}
	delete(c.pending, key)
	if c.now().Sub(p.CreatedAt) > confirmationTTL {
		return Pending{}, false
	}
	return p, true
}

// Peek returns the pending entry without consuming it.
func (c *Confirmations) Peek(key session.Key) (Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[key]
	if !ok || c.now().Sub(p.CreatedAt) > confirmationTTL {
		return Pending{}, false
	}
	return p, true
}

// answerValue decodes 1/2/3, yes/no words. Returns 0 when the text is not an
// answer at all.
func answerValue(text string) int {
	switch normalize(strings.TrimRight(text, ".!?")) {
	case "1", "sim", "si", "yes", "yep", "claro", "pode", "pode ser", "confirmo", "isso":
		return 1
	case "2", "nao", "no", "nope", "cancela", "cancelar", "deixa", "esquece":
		return 2
	case "3", "ambos", "both", "os dois", "los dos":
		return 3
	}
	return 0
}

// resolveConfirmation consumes the chat's pending entry when the text is an
// answer. A non-answer leaves the entry in place for the TTL.
func (r *Router) resolveConfirmation(ctx context.Context, t *Turn, text string) ([]string, bool) {
	key := t.Key()
	if _, ok := r.confirms.Peek(key); !ok {
		return nil, false
	}
	answer := answerValue(text)
	if answer == 0 {
		return nil, false
	}
	p, ok := r.confirms.Take(key)
	if !ok {
		return nil, false
	}

	switch p.Action {
	case ActionExportar:
		if answer != 1 {
			return []string{locale.T(t.Lang, "confirm.cancelled")}, true
		}
		return r.doExport(ctx, t)

	case ActionDeletarTudo:
		if answer != 1 {
			return []string{locale.T(t.Lang, "confirm.cancelled")}, true
		}
		return r.doDeleteAll(ctx, t, false)

	case ActionNukeAll:
		if answer != 1 {
			return []string{locale.T(t.Lang, "confirm.cancelled")}, true
		}
		return r.doDeleteAll(ctx, t, true)

	case ActionCompletion:
		if answer == 1 {
			if err := r.sched.MarkComplete(ctx, p.JobID); err != nil {
				r.logger.Warn("completion failed", "job", p.JobID, "error", err)
				return []string{locale.T(t.Lang, "reminder.not_found", "id", p.JobID)}, true
			}
			return []string{locale.T(t.Lang, "reminder.completed")}, true
		}
		return []string{locale.T(t.Lang, "confirm.cancelled")}, true

	case ActionDatePastNextYear:
		if answer != 1 {
			return []string{locale.T(t.Lang, "confirm.cancelled")}, true
		}
		return r.scheduleOneShot(ctx, t, p.At, p.Message)

	case ActionRescheduleCancel:
		if answer == 2 {
			if _, err := r.sched.RemoveJobAndDeadlineFollowups(ctx, p.JobID); err != nil {
				r.logger.Warn("cancel failed", "job", p.JobID, "error", err)
			}
			return []string{locale.T(t.Lang, "reminder.cancelled", "id", p.JobID)}, true
		}
		// Reschedule: fall through to the vague-time flow asking for the
		// new time of the same message.
		t.Session.SetMetaJSON(session.MetaReminderFlow, reminderFlow{
			Stage:   flowNeedTime,
			Message: p.Message,
			JobID:   p.JobID,
		})
		return []string{locale.T(t.Lang, "flow.need_time", "what", p.Message)}, true

	case ActionListOrEvents:
		return r.resolveListOrEvents(ctx, t, answer, p.Items)

	case ActionRecipeList:
		if answer != 1 {
			return []string{locale.T(t.Lang, "confirm.cancelled")}, true
		}
		list, err := r.store.Lists.CreateFromTemplate(ctx, t.Msg.ChatID, "compras", p.Items)
		if err != nil {
			r.logger.Error("recipe list failed", "error", err)
			return []string{locale.T(t.Lang, "agent.error")}, true
		}
		return []string{locale.T(t.Lang, "list.item_added",
			"item", strings.Join(p.Items, ", "), "name", list.Name)}, true
	}
	return []string{locale.T(t.Lang, "confirm.unknown")}, true
}

// resolveListOrEvents applies the "list / reminders / both?" choice.
func (r *Router) resolveListOrEvents(ctx context.Context, t *Turn, answer int, items []string) ([]string, bool) {
	var replies []string
	if answer == 1 || answer == 3 {
		list, err := r.store.Lists.Create(ctx, t.Msg.ChatID, "tarefas")
		if err == nil {
			for _, item := range items {
				if _, err := r.store.Lists.AddItem(ctx, list, item); err != nil {
					r.logger.Warn("item add failed", "error", err)
				}
			}
			replies = append(replies, locale.T(t.Lang, "list.item_added",
				"item", strings.Join(items, ", "), "name", list.Name))
		}
	}
	if answer == 2 || answer == 3 {
		// Reminders need times; hand each item to the vague-time flow in
		// sequence, starting with the first.
		if len(items) > 0 {
			t.Session.SetMetaJSON(session.MetaReminderFlow, reminderFlow{
				Stage:   flowNeedTime,
				Message: items[0],
				Queue:   items[1:],
			})
			replies = append(replies, locale.T(t.Lang, "flow.need_time", "what", items[0]))
		}
	}
	if len(replies) == 0 {
		replies = append(replies, locale.T(t.Lang, "confirm.cancelled"))
	}
	return replies, true
}

// scheduleOneShot creates a confirmed one-shot reminder.
func (r *Router) scheduleOneShot(ctx context.Context, t *Turn, at time.Time, message string) ([]string, bool) {
	res, err := r.sched.AddJob(ctx, scheduler.AddJobRequest{
		Name:     message,
		Schedule: scheduler.At(at),
		Payload: scheduler.Payload{
			Kind:    scheduler.PayloadAgentTurn,
			Message: message,
			Channel: t.Msg.Channel,
			ChatID:  t.Msg.ChatID,
			Locale:  string(t.Lang),
			Deliver: true,
		},
		DeleteAfterRun: true,
		Location:       t.Loc,
	})
	if err != nil {
		return []string{r.schedulerErrorReply(t, err)}, true
	}
	reply := locale.T(t.Lang, "reminder.next_year_scheduled",
		"date", locale.FormatDateTime(t.Lang, at.In(t.Loc)), "id", res.Job.ID)
	if res.QuotaWarn {
		reply += locale.T(t.Lang, "quota.warning", "percent", "70")
	}
	return []string{reply}, true
}
