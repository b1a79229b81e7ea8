package agent

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// smartReminderThreshold is how many messages a chat must send in one local
// day before the engagement nudge may fire.
const smartReminderThreshold = 2

// Activity counts inbound messages per chat per local day and remembers which
// chats already got the engagement nudge, persisted so a restart does not
// nudge twice on the same day.
type Activity struct {
	mu   sync.Mutex
	path string
	data activityState
}

type activityState struct {
	// Counts maps chat id -> "2006-01-02" -> inbound messages.
	Counts map[string]map[string]int `json:"counts"`
	// NudgeSent maps chat id -> last day the engagement nudge was sent.
	NudgeSent map[string]string `json:"nudge_sent"`
}

// NewActivity loads the counters from path.
func NewActivity(path string) (*Activity, error) {
	a := &Activity{
		path: path,
		data: activityState{
			Counts:    make(map[string]map[string]int),
			NudgeSent: make(map[string]string),
		},
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return a, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &a.data); err != nil || a.data.Counts == nil {
		a.data = activityState{
			Counts:    make(map[string]map[string]int),
			NudgeSent: make(map[string]string),
		}
	}
	if a.data.NudgeSent == nil {
		a.data.NudgeSent = make(map[string]string)
	}
	return a, nil
}

// RecordInbound bumps the chat's counter for the local day and drops counters
// older than two days.
func (a *Activity) RecordInbound(chatID string, now time.Time) {
	day := now.Format("2006-01-02")
	a.mu.Lock()
	defer a.mu.Unlock()
	days := a.data.Counts[chatID]
	if days == nil {
		days = make(map[string]int)
		a.data.Counts[chatID] = days
	}
	days[day]++

	cutoff := now.AddDate(0, 0, -2).Format("2006-01-02")
	for d := range days {
		if d < cutoff {
			delete(days, d)
		}
	}
	a.flush()
}

// CountToday returns the chat's inbound count for the local day.
func (a *Activity) CountToday(chatID string, now time.Time) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data.Counts[chatID][now.Format("2006-01-02")]
}

// ShouldNudge reports whether the chat crossed the engagement threshold today
// without having been nudged, and marks the nudge as sent when it has.
func (a *Activity) ShouldNudge(chatID string, now time.Time) bool {
	day := now.Format("2006-01-02")
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.data.Counts[chatID][day] < smartReminderThreshold {
		return false
	}
	if a.data.NudgeSent[chatID] == day {
		return false
	}
	a.data.NudgeSent[chatID] = day
	a.flush()
	return true
}

// flush persists the counters. Must be called with the lock held.
func (a *Activity) flush() {
	raw, err := json.MarshalIndent(a.data, "", "  ")
	if err != nil {
		return
	}
	tmp := a.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return
	}
	os.Rename(tmp, a.path)
}
