package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/router"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
)

const (
	actionRecapWeekly  = "recap_weekly_delivered"
	actionRecapMonthly = "recap_monthly_delivered"
)

// pendingRecaps prepends the weekly and monthly recap on the first message of
// a new period. Session metadata is the fast gate; the audit marker row makes
// delivery idempotent across restarts and session resets.
func (l *Loop) pendingRecaps(ctx context.Context, t *router.Turn) []string {
	now := l.now().In(t.Loc)
	var out []string

	year, week := now.ISOWeek()
	weekID := fmt.Sprintf("%d-W%02d", year, week)
	if t.Session.MetaString(session.MetaLastRecapWeek) != weekID {
		t.Session.SetMeta(session.MetaLastRecapWeek, weekID)
		if reply, ok := l.recap(ctx, t, actionRecapWeekly, weekID, "recap.weekly", now.AddDate(0, 0, -7)); ok {
			out = append(out, reply)
		}
	}

	monthID := now.Format("2006-01")
	if t.Session.MetaString(session.MetaLastRecapMonth) != monthID {
		t.Session.SetMeta(session.MetaLastRecapMonth, monthID)
		if reply, ok := l.recap(ctx, t, actionRecapMonthly, monthID, "recap.monthly", now.AddDate(0, -1, 0)); ok {
			out = append(out, reply)
		}
	}
	return out
}

// recap builds one recap line when the marker for the period is absent. A
// period with no activity at all produces nothing.
func (l *Loop) recap(ctx context.Context, t *router.Turn, action, period, key string, since time.Time) (string, bool) {
	delivered, err := l.store.Audit.HasMarker(ctx, t.Msg.ChatID, action, period)
	if err != nil || delivered {
		return "", false
	}

	done, _ := l.store.Lists.CountDoneSince(ctx, t.Msg.ChatID, since)
	added, _ := l.store.Audit.CountActionSince(ctx, t.Msg.ChatID, "list_add", since)
	events, _ := l.store.Audit.CountActionSince(ctx, t.Msg.ChatID, "event_add", since)
	if done == 0 && added == 0 && events == 0 {
		return "", false
	}

	if err := l.store.Audit.WriteMarker(ctx, t.Msg.ChatID, action, period); err != nil {
		l.logger.Warn("recap marker not written", "action", action, "error", err)
		return "", false
	}
	return locale.T(t.Lang, key,
		"done", fmt.Sprint(done),
		"added", fmt.Sprint(added),
		"events", fmt.Sprint(events)), true
}
