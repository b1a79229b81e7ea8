package session

import (
	"encoding/json"
	"time"
)

// Metadata keys used across the router and agent loop. Kept in one place so
// flows and onboarding agree on spelling.
const (
	MetaOnboardingIntroSent  = "onboarding_intro_sent"
	MetaOnboardingNudges     = "onboarding_nudge_count"
	MetaPendingTimezone      = "pending_timezone"
	MetaPendingTimeConfirm   = "pending_time_confirm"
	MetaPendingPreferredName = "pending_preferred_name"
	MetaProposedTZ           = "proposed_tz_iana"
	MetaNudgeAppendDone      = "nudge_append_done"
	MetaReminderFlow         = "pending_reminder_flow"
	MetaRecurringFlow        = "pending_recurring_event_flow"
	MetaPomodoroJobID        = "pomodoro_job_id"
	MetaPomodoroStartedAt    = "pomodoro_started_at"
	MetaLastRecapWeek        = "last_recap_week"
	MetaLastRecapMonth       = "last_recap_month"
)

// SetMeta stores a metadata value.
func (s *Session) SetMeta(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[key] = value
	s.touch()
}

// DeleteMeta removes a metadata key.
func (s *Session) DeleteMeta(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.metadata, key)
	s.touch()
}

// MetaString returns a string metadata value, or "" when absent.
func (s *Session) MetaString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, _ := s.metadata[key].(string)
	return v
}

// MetaBool returns a boolean metadata value; absent keys are false.
func (s *Session) MetaBool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, _ := s.metadata[key].(bool)
	return v
}

// MetaInt returns an integer metadata value; absent keys are zero. JSON
// round-trips store numbers as float64, so both forms are accepted.
func (s *Session) MetaInt(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch v := s.metadata[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// IncrMeta increments an integer metadata value and returns the new value.
func (s *Session) IncrMeta(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	switch v := s.metadata[key].(type) {
	case int:
		n = v
	case float64:
		n = int(v)
	}
	n++
	s.metadata[key] = n
	s.touch()
	return n
}

// MetaTime returns a time metadata value; absent or malformed keys are zero.
func (s *Session) MetaTime(key string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch v := s.metadata[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

// SetMetaJSON stores a struct as metadata via its JSON form, so it survives
// persistence round-trips unchanged.
func (s *Session) SetMetaJSON(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.SetMeta(key, string(raw))
	return nil
}

// MetaJSON decodes a struct previously stored with SetMetaJSON. Returns
// false when the key is absent.
func (s *Session) MetaJSON(key string, out any) bool {
	raw := s.MetaString(key)
	if raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}
