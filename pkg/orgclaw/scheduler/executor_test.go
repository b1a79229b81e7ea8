package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
)

type recordingPub struct {
	sent []bus.OutboundMessage
}

func (p *recordingPub) PublishOutbound(_ context.Context, msg bus.OutboundMessage) error {
	p.sent = append(p.sent, msg)
	return nil
}

func TestDeadlineExpansionFailureKeepsCheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()
	// One reminder per day: the deadline check itself holds the only slot,
	// so expanding into post-deadline reminders must fail.
	cfg.MaxRemindersPerDay = 1
	s := newTestScheduler(t, cfg, &now)
	pub := &recordingPub{}
	ex := NewExecutor(s, pub)

	req := oneShot("chat", "entregar o relatório", now.Add(30*time.Minute))
	req.Payload.HasDeadline = true
	res, err := s.AddJob(ctx, req)
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	var check *Job
	for _, j := range s.ListJobs(true) {
		if j.Payload.Kind == PayloadDeadlineCheck {
			check = j
		}
	}
	if check == nil {
		t.Fatal("deadline check not created")
	}

	// Main fires and, protected by its deadline, stays stored.
	now = now.Add(30*time.Minute + time.Second)
	ex.Tick(ctx)
	if len(pub.sent) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(pub.sent))
	}
	if s.store.Get(res.Job.ID) == nil {
		t.Fatal("deadline-protected one-shot must survive its fire")
	}

	// The check fires and the expansion fails on the quota.
	now = now.Add(5 * time.Minute)
	ex.Tick(ctx)

	got := s.store.Get(check.ID)
	if got == nil {
		t.Fatal("failed check must stay stored for retry")
	}
	if got.State.LastStatus != StatusError {
		t.Fatalf("LastStatus = %q, want %q", got.State.LastStatus, StatusError)
	}
	if got.State.LastError == "" {
		t.Fatal("LastError must record the expansion failure")
	}

	// No partial follow-ups were delivered or stored.
	for _, j := range s.ListJobs(true) {
		if j.Payload.DeadlinePostIndex > 0 {
			t.Fatalf("post-deadline reminder %d should not exist", j.Payload.DeadlinePostIndex)
		}
	}
}

func TestDeadlineExpansionSucceedsAndRemovesCheck(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, DefaultConfig(), &now)
	ex := NewExecutor(s, &recordingPub{})

	req := oneShot("chat", "entregar o relatório", now.Add(30*time.Minute))
	req.Payload.HasDeadline = true
	if _, err := s.AddJob(ctx, req); err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	now = now.Add(30*time.Minute + time.Second)
	ex.Tick(ctx)
	now = now.Add(5 * time.Minute)
	ex.Tick(ctx)

	followups := 0
	for _, j := range s.ListJobs(true) {
		if j.Payload.Kind == PayloadDeadlineCheck {
			t.Fatal("expanded check must delete itself")
		}
		if j.Payload.DeadlinePostIndex > 0 {
			followups++
		}
	}
	if followups != 3 {
		t.Fatalf("post-deadline reminders = %d, want 3", followups)
	}
}

func TestIntervalFloor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, DefaultConfig(), &now)

	req := AddJobRequest{
		Name:     "beber água",
		Schedule: Every(10 * time.Minute),
		Payload: Payload{
			Kind: PayloadAgentTurn, Message: "beber água",
			Channel: "whatsapp", ChatID: "chat", Deliver: true,
		},
	}
	_, err := s.AddJob(ctx, req)
	if d, ok := IntervalFloor(err); !ok || d != 2*time.Hour {
		t.Fatalf("strict floor = %v, %v; want 2h, true", d, ok)
	}

	req.RelaxMinInterval = true
	_, err = s.AddJob(ctx, req)
	if d, ok := IntervalFloor(err); !ok || d != 30*time.Minute {
		t.Fatalf("relaxed floor = %v, %v; want 30m, true", d, ok)
	}

	if _, ok := IntervalFloor(ErrQuotaExceeded); ok {
		t.Fatal("unrelated errors carry no floor")
	}
	if _, ok := IntervalFloor(fmt.Errorf("wrapping: %w", ErrIntervalTooShort)); ok {
		t.Fatal("a bare sentinel carries no parseable floor")
	}
}
