package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// NextRun computes the next fire instant in Unix milliseconds for a schedule,
// given the job's last run and the effective now. Returns 0, false when the
// schedule yields no future instant (one-shot already past, window exhausted,
// unparseable cron).
//
// Invariant: any returned instant t satisfies
// NotBeforeMS <= t <= NotAfterMS when the bounds are set.
func NextRun(s Schedule, lastRunMS, nowMS int64) (int64, bool) {
	switch s.Kind {
	case KindAt:
		if s.AtMS > nowMS {
			return clamp(s, s.AtMS)
		}
		return 0, false

	case KindEvery:
		if s.EveryMS <= 0 {
			return 0, false
		}
		next := nowMS
		if lastRunMS > 0 && lastRunMS+s.EveryMS > next {
			next = lastRunMS + s.EveryMS
		}
		return clamp(s, next)

	case KindCron:
		sched, err := cronParser.Parse(s.Expr)
		if err != nil {
			return 0, false
		}
		loc := time.UTC
		if s.TZ != "" {
			if l, lerr := time.LoadLocation(s.TZ); lerr == nil {
				loc = l
			}
		}
		from := nowMS
		if s.NotBeforeMS > from {
			from = s.NotBeforeMS
		}
		next := sched.Next(time.UnixMilli(from).In(loc))
		if next.IsZero() {
			return 0, false
		}
		return clamp(s, next.UnixMilli())
	}
	return 0, false
}

// clamp applies the window bounds, pushing forward past NotBefore and
// rejecting anything past NotAfter.
func clamp(s Schedule, candidate int64) (int64, bool) {
	if s.NotBeforeMS > 0 && candidate < s.NotBeforeMS {
		candidate = s.NotBeforeMS
	}
	if s.NotAfterMS > 0 && candidate > s.NotAfterMS {
		return 0, false
	}
	return candidate, true
}

// MinimumFireInterval estimates the smallest gap between two consecutive
// fires, used to enforce the recurring floor. One-shots return 0.
func MinimumFireInterval(s Schedule) time.Duration {
	switch s.Kind {
	case KindEvery:
		return time.Duration(s.EveryMS) * time.Millisecond
	case KindCron:
		sched, err := cronParser.Parse(s.Expr)
		if err != nil {
			return 0
		}
		loc := time.UTC
		if s.TZ != "" {
			if l, lerr := time.LoadLocation(s.TZ); lerr == nil {
				loc = l
			}
		}
		// Sample a few consecutive fires and take the tightest gap; a cron
		// like "*/10 * * * *" is denser than its first two fires suggest.
		t := sched.Next(time.Now().In(loc))
		min := time.Duration(0)
		for i := 0; i < 4; i++ {
			n := sched.Next(t)
			if n.IsZero() {
				break
			}
			gap := n.Sub(t)
			if min == 0 || gap < min {
				min = gap
			}
			t = n
		}
		return min
	}
	return 0
}

// ValidateSchedule rejects malformed schedules before they reach the store.
func ValidateSchedule(s Schedule) error {
	switch s.Kind {
	case KindAt:
		if s.AtMS <= 0 {
			return fmt.Errorf("%w: at requires a timestamp", ErrInvalidSchedule)
		}
	case KindEvery:
		if s.EveryMS <= 0 {
			return fmt.Errorf("%w: every requires a positive interval", ErrInvalidSchedule)
		}
	case KindCron:
		if _, err := cronParser.Parse(s.Expr); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		if s.TZ != "" {
			if _, err := time.LoadLocation(s.TZ); err != nil {
				return fmt.Errorf("%w: unknown timezone %q", ErrInvalidSchedule, s.TZ)
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSchedule, s.Kind)
	}
	if s.NotBeforeMS > 0 && s.NotAfterMS > 0 && s.NotAfterMS < s.NotBeforeMS {
		return fmt.Errorf("%w: empty window", ErrInvalidSchedule)
	}
	return nil
}
