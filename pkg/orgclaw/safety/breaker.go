package safety

import (
	"sync"
	"time"
)

// Breaker states.
const (
	BreakerClosed   = "closed"
	BreakerOpen     = "open"
	BreakerHalfOpen = "half_open"
)

// CircuitBreaker protects the LLM providers: after the failure threshold it
// opens for the recovery window, during which the agent answers with the
// degraded template without calling any provider. The first call after the
// window is a half-open probe.
type CircuitBreaker struct {
	threshold int
	recovery  time.Duration

	mu          sync.Mutex
	failures    int
	state       string
	lastFailure time.Time
	now         func() time.Time
}

// NewCircuitBreaker creates a breaker. Zero values select the defaults
// (3 failures, 60s recovery).
func NewCircuitBreaker(threshold int, recovery time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if recovery <= 0 {
		recovery = time.Minute
	}
	return &CircuitBreaker{
		threshold: threshold,
		recovery:  recovery,
		state:     BreakerClosed,
		now:       time.Now,
	}
}

// SetNow replaces the clock. Tests only.
func (cb *CircuitBreaker) SetNow(now func() time.Time) { cb.now = now }

// Allow reports whether a provider call may proceed. While open it returns
// false until the recovery window passes, then lets one probe through.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerOpen:
		if cb.now().Sub(cb.lastFailure) >= cb.recovery {
			cb.state = BreakerHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess closes the breaker and clears the failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.state = BreakerClosed
}

// RecordFailure counts a failure; at the threshold (or on a failed
// half-open probe) the breaker opens.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = cb.now()
	if cb.state == BreakerHalfOpen || cb.failures >= cb.threshold {
		cb.state = BreakerOpen
	}
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == BreakerOpen && cb.now().Sub(cb.lastFailure) >= cb.recovery {
		return BreakerHalfOpen
	}
	return cb.state
}
