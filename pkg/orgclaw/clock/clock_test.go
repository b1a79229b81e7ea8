package clock

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeSource struct {
	t   time.Time
	err error
}

func (f *fakeSource) UTCNow(context.Context) (time.Time, error) {
	return f.t, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEffectiveTimeUsesOffset(t *testing.T) {
	t.Parallel()

	wall := time.Date(2025, 2, 10, 14, 0, 0, 0, time.UTC)
	s := New(nil, 90*time.Second, discard(), WithWallClock(func() time.Time { return wall }))

	want := wall.Add(90 * time.Second)
	if got := s.Now(); !got.Equal(want) {
		t.Errorf("Now() = %v, want %v", got, want)
	}
	if got := s.NowMS(); got != want.UnixMilli() {
		t.Errorf("NowMS() = %d, want %d", got, want.UnixMilli())
	}
}

func TestDriftCorrectionApplied(t *testing.T) {
	t.Parallel()

	wall := time.Date(2025, 2, 10, 14, 0, 0, 0, time.UTC)
	src := &fakeSource{t: wall.Add(2 * time.Minute)}
	s := New(src, 0, discard(), WithWallClock(func() time.Time { return wall }))

	s.checkDrift(context.Background())

	if got := s.Offset(); got != 2*time.Minute {
		t.Errorf("Offset() = %v, want 2m", got)
	}
	if got := s.Now(); !got.Equal(wall.Add(2 * time.Minute)) {
		t.Errorf("Now() = %v, want corrected time", got)
	}
}

func TestDriftWithinThresholdClearsOffset(t *testing.T) {
	t.Parallel()

	wall := time.Date(2025, 2, 10, 14, 0, 0, 0, time.UTC)
	src := &fakeSource{t: wall.Add(5 * time.Second)}
	s := New(src, 3*time.Minute, discard(), WithWallClock(func() time.Time { return wall }))

	s.checkDrift(context.Background())

	if got := s.Offset(); got != 0 {
		t.Errorf("Offset() = %v, want 0 after healthy check", got)
	}
}

func TestSourceFailureKeepsOffset(t *testing.T) {
	t.Parallel()

	wall := time.Date(2025, 2, 10, 14, 0, 0, 0, time.UTC)
	src := &fakeSource{err: errors.New("network down")}
	s := New(src, 42*time.Second, discard(), WithWallClock(func() time.Time { return wall }))

	s.checkDrift(context.Background())

	if got := s.Offset(); got != 42*time.Second {
		t.Errorf("Offset() = %v, want unchanged 42s", got)
	}
}
