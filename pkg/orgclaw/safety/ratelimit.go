// Package safety implements the guard rails wrapped around every inbound
// message: rate limiting, a command blocklist, a prompt-injection catalogue,
// the scope filter, the trivial-reply set and the provider circuit breaker.
// All state is process-wide and mutex-protected; entries carry timestamps so
// stale state is evicted lazily.
package safety

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter keyed by chat. Besides the allow
// decision it tracks when the "too many messages" notice was last sent, so
// the notice itself is rate limited to once per window.
type RateLimiter struct {
	maxPerWindow int
	window       time.Duration
	noticeEvery  time.Duration

	mu       sync.Mutex
	hits     map[string][]time.Time
	notified map[string]time.Time
	now      func() time.Time
}

// NewRateLimiter creates a limiter. Zero values select the defaults
// (20 messages per minute, one notice per 60s).
func NewRateLimiter(maxPerWindow int, window time.Duration) *RateLimiter {
	if maxPerWindow <= 0 {
		maxPerWindow = 20
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		maxPerWindow: maxPerWindow,
		window:       window,
		noticeEvery:  time.Minute,
		hits:         make(map[string][]time.Time),
		notified:     make(map[string]time.Time),
		now:          time.Now,
	}
}

// SetNow replaces the clock. Tests only.
func (rl *RateLimiter) SetNow(now func() time.Time) { rl.now = now }

// Allow records a message for the chat and reports whether it is within the
// limit. notify is true when the breach notice should be sent — at most once
// per notice window per chat.
func (rl *RateLimiter) Allow(chatKey string) (allowed, notify bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	kept := rl.hits[chatKey][:0]
	for _, t := range rl.hits[chatKey] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= rl.maxPerWindow {
		rl.hits[chatKey] = kept
		if last, ok := rl.notified[chatKey]; !ok || now.Sub(last) >= rl.noticeEvery {
			rl.notified[chatKey] = now
			return false, true
		}
		return false, false
	}

	rl.hits[chatKey] = append(kept, now)
	return true, false
}

// Evict drops state older than the window for all chats. Called
// opportunistically by the agent loop.
func (rl *RateLimiter) Evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, times := range rl.hits {
		kept := times[:0]
		for _, t := range times {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(rl.hits, key)
		} else {
			rl.hits[key] = kept
		}
	}
	for key, t := range rl.notified {
		if t.Before(cutoff) {
			delete(rl.notified, key)
		}
	}
}
