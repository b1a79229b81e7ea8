// Package clock provides the effective time used by all scheduling and
// display. Effective time is the wall clock plus a process-wide offset that a
// background watcher adjusts when the local clock drifts from an external UTC
// source. Only the drift comparison reads the raw clock.
package clock

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	// DefaultCheckInterval is how often the watcher queries the UTC source.
	DefaultCheckInterval = 45 * time.Minute
	// DefaultDriftThreshold is the absolute drift that triggers an alert and
	// an offset correction.
	DefaultDriftThreshold = 60 * time.Second
)

// UTCSource provides an external reading of the current UTC time.
type UTCSource interface {
	UTCNow(ctx context.Context) (time.Time, error)
}

// Service exposes the effective time. Safe for concurrent use.
type Service struct {
	offsetMS atomic.Int64
	source   UTCSource
	logger   *slog.Logger

	checkInterval  time.Duration
	driftThreshold time.Duration

	// wallNow is replaceable in tests.
	wallNow func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCheckInterval overrides the watcher period.
func WithCheckInterval(d time.Duration) Option {
	return func(s *Service) { s.checkInterval = d }
}

// WithDriftThreshold overrides the correction threshold.
func WithDriftThreshold(d time.Duration) Option {
	return func(s *Service) { s.driftThreshold = d }
}

// WithWallClock replaces the raw clock. Tests only.
func WithWallClock(now func() time.Time) Option {
	return func(s *Service) { s.wallNow = now }
}

// New creates a clock service. initialOffset applies the operator override
// (CLOCK_OFFSET_SECONDS); zero means none.
func New(source UTCSource, initialOffset time.Duration, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		source:         source,
		logger:         logger.With("component", "clock"),
		checkInterval:  DefaultCheckInterval,
		driftThreshold: DefaultDriftThreshold,
		wallNow:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.offsetMS.Store(initialOffset.Milliseconds())
	return s
}

// Now returns the effective time.
func (s *Service) Now() time.Time {
	return s.wallNow().Add(time.Duration(s.offsetMS.Load()) * time.Millisecond)
}

// NowMS returns the effective time as Unix milliseconds.
func (s *Service) NowMS() int64 {
	return s.Now().UnixMilli()
}

// Offset returns the currently applied offset.
func (s *Service) Offset() time.Duration {
	return time.Duration(s.offsetMS.Load()) * time.Millisecond
}

// Start runs the drift watcher until the context ends.
func (s *Service) Start(ctx context.Context) {
	if s.source == nil {
		s.logger.Debug("no UTC source configured, drift watch disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(s.checkInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.checkDrift(ctx)
			}
		}
	}()
}

// checkDrift compares the raw wall clock to the external source. A fetch
// failure never alters the offset.
func (s *Service) checkDrift(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	external, err := s.source.UTCNow(ctx)
	if err != nil {
		s.logger.Debug("UTC source unavailable, keeping current offset", "error", err)
		return
	}

	wall := s.wallNow()
	drift := external.Sub(wall)
	abs := drift
	if abs < 0 {
		abs = -abs
	}

	if abs > s.driftThreshold {
		s.logger.Error("clock drift detected",
			"tag", "CLOCK_DRIFT_ALERT",
			"drift", drift.String(),
			"wall", wall.UTC().Format(time.RFC3339),
			"external", external.UTC().Format(time.RFC3339))
		s.offsetMS.Store(drift.Milliseconds())
		s.logger.Warn("clock offset applied",
			"tag", "CLOCK_DRIFT_CORRECTED",
			"offset", drift.String())
		return
	}

	// Healthy reading: clear any previously applied offset.
	if s.offsetMS.Load() != 0 {
		s.offsetMS.Store(0)
		s.logger.Info("clock drift resolved, offset cleared")
	}
}

// HTTPDateSource reads UTC time from the Date header of an HTTP response.
type HTTPDateSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPDateSource creates a source against the given URL.
func NewHTTPDateSource(url string) *HTTPDateSource {
	if url == "" {
		url = "https://www.google.com"
	}
	return &HTTPDateSource{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// UTCNow performs a HEAD request and parses the Date header.
func (h *HTTPDateSource) UTCNow(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, h.URL, nil)
	if err != nil {
		return time.Time{}, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()

	date := resp.Header.Get("Date")
	t, err := http.ParseTime(date)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
