package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestScheduler(t *testing.T, cfg Config, now *time.Time) *Scheduler {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "jobs.json"), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return New(cfg, fs, func() time.Time { return *now }, nil)
}

func oneShot(chatID, msg string, at time.Time) AddJobRequest {
	return AddJobRequest{
		Name:     msg,
		Schedule: At(at),
		Payload: Payload{
			Kind:    PayloadAgentTurn,
			Message: msg,
			Channel: "whatsapp",
			ChatID:  chatID,
			Deliver: true,
		},
		DeleteAfterRun: true,
	}
}

func TestNextRun(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	nowMS := now.UnixMilli()

	tests := []struct {
		name     string
		s        Schedule
		lastMS   int64
		want     int64
		wantOK   bool
	}{
		{"at future", At(now.Add(time.Hour)), 0, now.Add(time.Hour).UnixMilli(), true},
		{"at past", At(now.Add(-time.Hour)), 0, 0, false},
		{"every first fire", Every(10 * time.Minute), 0, nowMS, true},
		{"every after last run", Every(10 * time.Minute), nowMS - 2*60_000, nowMS + 8*60_000, true},
		{"every stale last run fires now", Every(10 * time.Minute), nowMS - 30*60_000, nowMS, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := NextRun(tt.s, tt.lastMS, nowMS)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("NextRun = %d, %v; want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNextRunWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	nowMS := now.UnixMilli()

	// NotBefore pushes the candidate forward.
	s := Every(time.Hour)
	s.NotBeforeMS = nowMS + 30*60_000
	got, ok := NextRun(s, 0, nowMS)
	if !ok || got != s.NotBeforeMS {
		t.Fatalf("NotBefore clamp = %d, %v; want %d, true", got, ok, s.NotBeforeMS)
	}

	// NotAfter rejects anything past the window.
	s2 := At(now.Add(2 * time.Hour))
	s2.NotAfterMS = nowMS + 60*60_000
	if _, ok := NextRun(s2, 0, nowMS); ok {
		t.Fatal("candidate past NotAfter should be rejected")
	}
}

func TestNextRunCron(t *testing.T) {
	t.Parallel()

	// 12:00 UTC; daily at 14:30 fires today.
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	got, ok := NextRun(Cron("30 14 * * *", "UTC"), 0, now.UnixMilli())
	if !ok {
		t.Fatal("daily cron should have a next fire")
	}
	want := time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC).UnixMilli()
	if got != want {
		t.Fatalf("cron next = %s, want %s", time.UnixMilli(got), time.UnixMilli(want))
	}

	// Same expression in São Paulo fires at 14:30 local.
	got, ok = NextRun(Cron("30 14 * * *", "America/Sao_Paulo"), 0, now.UnixMilli())
	if !ok {
		t.Fatal("tz cron should have a next fire")
	}
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	want = time.Date(2026, 8, 25, 14, 30, 0, 0, loc).UnixMilli()
	if got != want {
		t.Fatalf("tz cron next = %s, want %s", time.UnixMilli(got), time.UnixMilli(want))
	}

	if _, ok := NextRun(Cron("not a cron", ""), 0, now.UnixMilli()); ok {
		t.Fatal("unparseable cron should yield no fire")
	}
}

func TestValidateSchedule(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		s       Schedule
		wantErr bool
	}{
		{"valid at", At(now), false},
		{"at without timestamp", Schedule{Kind: KindAt}, true},
		{"valid every", Every(time.Hour), false},
		{"every zero", Schedule{Kind: KindEvery}, true},
		{"valid cron", Cron("0 9 * * 1", "America/Sao_Paulo"), false},
		{"bad cron expr", Cron("61 9 * * *", ""), true},
		{"bad cron tz", Cron("0 9 * * *", "Mars/Olympus"), true},
		{"unknown kind", Schedule{Kind: "someday"}, true},
		{"empty window", Schedule{Kind: KindAt, AtMS: 1, NotBeforeMS: 10, NotAfterMS: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateSchedule(tt.s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSchedule(%+v) err = %v, wantErr %v", tt.s, err, tt.wantErr)
			}
		})
	}
}

func TestAddJobOneShot(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, DefaultConfig(), &now)
	ctx := context.Background()

	at := now.Add(30 * time.Minute)
	res, err := s.AddJob(ctx, oneShot("551199", "pagar a conta de luz", at))
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if res.QuotaWarn {
		t.Fatal("first job should not warn")
	}
	job := res.Job
	if job.State.NextRunAtMS != at.UnixMilli() {
		t.Fatalf("next run = %d, want %d", job.State.NextRunAtMS, at.UnixMilli())
	}
	if !job.Enabled || !job.DeleteAfterRun {
		t.Fatalf("job flags wrong: %+v", job)
	}

	got, err := s.GetJob(job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Payload.Message != "pagar a conta de luz" {
		t.Fatalf("payload = %+v", got.Payload)
	}
	if len(s.ListJobs(false)) != 1 {
		t.Fatalf("ListJobs = %d jobs, want 1", len(s.ListJobs(false)))
	}

	// A one-shot in the past has no future fire instant.
	if _, err := s.AddJob(ctx, oneShot("551199", "outra coisa", now.Add(-time.Hour))); !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("past one-shot err = %v, want ErrInvalidSchedule", err)
	}
}

func TestAddJobRecurringFloor(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, DefaultConfig(), &now)
	ctx := context.Background()

	req := AddJobRequest{
		Name:     "beber água",
		Schedule: Every(10 * time.Minute),
		Payload:  Payload{Kind: PayloadAgentTurn, Message: "beber água", Channel: "whatsapp", ChatID: "c", Deliver: true},
	}
	if _, err := s.AddJob(ctx, req); !errors.Is(err, ErrIntervalTooShort) {
		t.Fatalf("10min interval err = %v, want ErrIntervalTooShort", err)
	}

	// Below the relaxed floor even with insistence.
	req.RelaxMinInterval = true
	if _, err := s.AddJob(ctx, req); !errors.Is(err, ErrIntervalTooShort) {
		t.Fatalf("10min relaxed err = %v, want ErrIntervalTooShort", err)
	}

	// 30 minutes passes only with insistence.
	req.Schedule = Every(30 * time.Minute)
	req.RelaxMinInterval = false
	if _, err := s.AddJob(ctx, req); !errors.Is(err, ErrIntervalTooShort) {
		t.Fatalf("30min strict err = %v, want ErrIntervalTooShort", err)
	}
	req.RelaxMinInterval = true
	if _, err := s.AddJob(ctx, req); err != nil {
		t.Fatalf("30min relaxed: %v", err)
	}
}

func TestAddJobDuplicateSuppression(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, DefaultConfig(), &now)
	ctx := context.Background()

	at := now.Add(2 * time.Hour)
	if _, err := s.AddJob(ctx, oneShot("551199", "Pagar o aluguel", at)); err != nil {
		t.Fatalf("first AddJob: %v", err)
	}

	// Same minute, same text modulo case and accents.
	if _, err := s.AddJob(ctx, oneShot("551199", "pagar o aluguél", at.Add(20*time.Second))); !errors.Is(err, ErrDuplicateJob) {
		t.Fatalf("folded duplicate err = %v, want ErrDuplicateJob", err)
	}

	// Different minute is a different slot.
	if _, err := s.AddJob(ctx, oneShot("551199", "Pagar o aluguel", at.Add(5*time.Minute))); err != nil {
		t.Fatalf("different slot: %v", err)
	}

	// Other chats never collide.
	if _, err := s.AddJob(ctx, oneShot("other", "Pagar o aluguel", at)); err != nil {
		t.Fatalf("other chat: %v", err)
	}
}

type sameTaskJudge struct {
	same bool
	err  error
}

func (j sameTaskJudge) SameTask(_ context.Context, _, _ string) (bool, error) { return j.same, j.err }

func TestAddJobJudgeDedupe(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, DefaultConfig(), &now)
	ctx := context.Background()

	at := now.Add(2 * time.Hour)
	if _, err := s.AddJob(ctx, oneShot("551199", "pagar a conta de luz", at)); err != nil {
		t.Fatalf("first AddJob: %v", err)
	}

	// Same slot, different wording, judge says same task.
	s.SetJudge(sameTaskJudge{same: true})
	if _, err := s.AddJob(ctx, oneShot("551199", "lembrar da fatura da Enel", at)); !errors.Is(err, ErrDuplicateJob) {
		t.Fatalf("judge duplicate err = %v, want ErrDuplicateJob", err)
	}

	// Judge failure lets creation proceed.
	s.SetJudge(sameTaskJudge{err: errors.New("provider down")})
	if _, err := s.AddJob(ctx, oneShot("551199", "comprar presente", at)); err != nil {
		t.Fatalf("judge failure should not block: %v", err)
	}
}

func TestAddJobQuota(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()
	cfg.MaxRemindersPerDay = 3
	s := newTestScheduler(t, cfg, &now)
	ctx := context.Background()

	add := func(msg string, at time.Time) (*AddResult, error) {
		return s.AddJob(ctx, oneShot("551199", msg, at))
	}

	r1, err := add("um", now.Add(1*time.Hour))
	if err != nil || r1.QuotaWarn {
		t.Fatalf("first add: err=%v warn=%v", err, r1.QuotaWarn)
	}
	r2, err := add("dois", now.Add(2*time.Hour))
	if err != nil || r2.QuotaWarn {
		t.Fatalf("second add: err=%v warn=%v", err, r2.QuotaWarn)
	}
	// Third of three crosses the 70% warn ratio.
	r3, err := add("tres", now.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("third add: %v", err)
	}
	if !r3.QuotaWarn {
		t.Fatal("third add should carry the soft warning")
	}
	// Fourth exceeds the hard cap.
	if _, err := add("quatro", now.Add(4*time.Hour)); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("fourth add err = %v, want ErrQuotaExceeded", err)
	}
	// The next day is a fresh window.
	if _, err := add("amanha", now.Add(26*time.Hour)); err != nil {
		t.Fatalf("next-day add: %v", err)
	}
}

type dayEvents struct{ n int }

func (d dayEvents) CountEventsOnDay(context.Context, string, time.Time, time.Time) (int, error) {
	return d.n, nil
}

func TestAddJobCombinedQuota(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()
	cfg.MaxRemindersPerDay = 10
	cfg.MaxEventsPerDay = 10
	cfg.MaxCombinedPerDay = 8
	s := newTestScheduler(t, cfg, &now)
	s.SetEventCounter(dayEvents{n: 8})

	_, err := s.AddJob(context.Background(), oneShot("551199", "algo", now.Add(time.Hour)))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("combined quota err = %v, want ErrQuotaExceeded", err)
	}
}

func TestDependentJobLifecycle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, DefaultConfig(), &now)
	ctx := context.Background()

	main, err := s.AddJob(ctx, oneShot("551199", "terminar o relatório", now.Add(time.Hour)))
	if err != nil {
		t.Fatalf("main AddJob: %v", err)
	}

	dep := oneShot("551199", "enviar o relatório para a chefe", now.Add(time.Hour))
	dep.Schedule = Schedule{Kind: KindAt, AtMS: now.Add(time.Hour).UnixMilli()}
	dep.Payload.DependsOnJobID = main.Job.ID
	depRes, err := s.AddJob(ctx, dep)
	if err != nil {
		t.Fatalf("dependent AddJob: %v", err)
	}
	if depRes.Job.State.NextRunAtMS != 0 {
		t.Fatal("dependent job must stay inert until released")
	}

	if err := s.MarkComplete(ctx, main.Job.ID); err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}

	released, err := s.GetJob(depRes.Job.ID)
	if err != nil {
		t.Fatalf("GetJob dependent: %v", err)
	}
	if !released.State.Released {
		t.Fatal("dependent should be released after predecessor completion")
	}
	if released.State.NextRunAtMS != now.UnixMilli()+1000 {
		t.Fatalf("released next run = %d, want now+1s", released.State.NextRunAtMS)
	}

	// Releasing twice is a no-op.
	if err := s.TriggerDependents(ctx, main.Job.ID); err != nil {
		t.Fatalf("second TriggerDependents: %v", err)
	}
}

func TestMarkCompleteDeletesOneShot(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, DefaultConfig(), &now)
	ctx := context.Background()

	res, err := s.AddJob(ctx, oneShot("551199", "levar o carro na revisão", now.Add(time.Hour)))
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if err := s.MarkComplete(ctx, res.Job.ID); err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	if _, err := s.GetJob(res.Job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("completed delete-after-run one-shot should be gone, err = %v", err)
	}
	if err := s.MarkComplete(ctx, res.Job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("MarkComplete on absent job err = %v, want ErrJobNotFound", err)
	}
}

func TestSnoozeCap(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, DefaultConfig(), &now)
	ctx := context.Background()

	res, err := s.AddJob(ctx, oneShot("551199", "tomar o remédio", now.Add(time.Hour)))
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	for i := 1; i <= MaxSnoozes; i++ {
		n, err := s.Snooze(ctx, res.Job.ID)
		if err != nil {
			t.Fatalf("snooze %d: %v", i, err)
		}
		if n != i {
			t.Fatalf("snooze count = %d, want %d", n, i)
		}
	}
	if _, err := s.Snooze(ctx, res.Job.ID); err == nil {
		t.Fatal("snooze past the cap should fail")
	}

	j, err := s.GetJob(res.Job.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := now.Add(s.Config().SnoozeDelay).UnixMilli()
	if j.State.NextRunAtMS != want {
		t.Fatalf("snoozed next run = %d, want %d", j.State.NextRunAtMS, want)
	}
}

func TestSetChatEnabled(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, DefaultConfig(), &now)
	ctx := context.Background()

	if _, err := s.AddJob(ctx, oneShot("a", "primeiro", now.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddJob(ctx, oneShot("a", "segundo", now.Add(2*time.Hour))); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddJob(ctx, oneShot("b", "alheio", now.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	if got := s.SetChatEnabled(ctx, "a", false); got != 2 {
		t.Fatalf("pause toggled %d, want 2", got)
	}
	if got := len(s.JobsForChat("a")); got != 0 {
		t.Fatalf("paused chat still has %d enabled jobs", got)
	}
	if got := len(s.JobsForChat("b")); got != 1 {
		t.Fatalf("other chat affected: %d jobs", got)
	}
	// Idempotent pause.
	if got := s.SetChatEnabled(ctx, "a", false); got != 0 {
		t.Fatalf("second pause toggled %d, want 0", got)
	}
	if got := s.SetChatEnabled(ctx, "a", true); got != 2 {
		t.Fatalf("resume toggled %d, want 2", got)
	}
}

func TestRemoveStaleJobs(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, DefaultConfig(), &now)
	ctx := context.Background()

	stale1, err := s.AddJob(ctx, oneShot("a", "já passou", now.Add(time.Hour)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddJob(ctx, oneShot("a", "ainda vem", now.Add(48*time.Hour))); err != nil {
		t.Fatal(err)
	}
	recurring := AddJobRequest{
		Name:     "toda manhã",
		Schedule: Cron("0 9 * * *", "UTC"),
		Payload:  Payload{Kind: PayloadAgentTurn, Message: "toda manhã", Channel: "whatsapp", ChatID: "a", Deliver: true},
	}
	if _, err := s.AddJob(ctx, recurring); err != nil {
		t.Fatal(err)
	}

	// Downtime: two hours pass, the first one-shot missed its instant.
	now = now.Add(2 * time.Hour)
	removed := s.RemoveStaleJobs(ctx)
	if removed["a"] != 1 {
		t.Fatalf("removed = %v, want map[a:1]", removed)
	}
	if _, err := s.GetJob(stale1.Job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Fatal("stale one-shot should be deleted")
	}
	// Future one-shot and the recurring job survive.
	if got := len(s.ListJobs(false)); got != 2 {
		t.Fatalf("surviving jobs = %d, want 2", got)
	}
}

func TestAutoLeadAlert(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, DefaultConfig(), &now)
	ctx := context.Background()

	at := now.Add(6 * 24 * time.Hour)
	res, err := s.AddJob(ctx, oneShot("551199", "aniversário da mãe", at))
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	jobs := s.ListJobs(false)
	if len(jobs) != 2 {
		t.Fatalf("far-out one-shot should gain a 24h lead alert, have %d jobs", len(jobs))
	}
	var lead *Job
	for _, j := range jobs {
		if j.Payload.ParentJobID == res.Job.ID {
			lead = j
		}
	}
	if lead == nil {
		t.Fatal("no lead alert linked to the main job")
	}
	want := at.Add(-24 * time.Hour).UnixMilli()
	if lead.Schedule.AtMS != want {
		t.Fatalf("lead fires at %d, want %d", lead.Schedule.AtMS, want)
	}

	// Completion of the main job cancels the lead alert.
	if err := s.MarkComplete(ctx, res.Job.ID); err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	if got := len(s.ListJobs(false)); got != 0 {
		t.Fatalf("after completion %d jobs remain, want 0", got)
	}

	// Near one-shots get no automatic lead.
	if _, err := s.AddJob(ctx, oneShot("551199", "consulta amanhã", now.Add(24*time.Hour))); err != nil {
		t.Fatalf("near AddJob: %v", err)
	}
	if got := len(s.ListJobs(false)); got != 1 {
		t.Fatalf("near one-shot spawned extras: %d jobs", got)
	}
}

func TestDeadlineCheckPair(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, DefaultConfig(), &now)
	ctx := context.Background()

	req := oneShot("551199", "enviar a declaração", now.Add(time.Hour))
	req.Payload.HasDeadline = true
	res, err := s.AddJob(ctx, req)
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	jobs := s.ListJobs(false)
	if len(jobs) != 2 {
		t.Fatalf("deadline job should carry its check pair, have %d jobs", len(jobs))
	}
	var check *Job
	for _, j := range jobs {
		if j.Payload.Kind == PayloadDeadlineCheck {
			check = j
		}
	}
	if check == nil {
		t.Fatal("no deadline_check job found")
	}
	if check.Payload.DeadlineMainJobID != res.Job.ID {
		t.Fatalf("check links to %q, want %q", check.Payload.DeadlineMainJobID, res.Job.ID)
	}
	want := now.Add(time.Hour + time.Minute).UnixMilli()
	if check.Schedule.AtMS != want {
		t.Fatalf("check fires at %d, want main+1min %d", check.Schedule.AtMS, want)
	}

	// Removing the main job sweeps the pair too.
	ok, err := s.RemoveJobAndDeadlineFollowups(ctx, res.Job.ID)
	if err != nil || !ok {
		t.Fatalf("RemoveJobAndDeadlineFollowups = %v, %v", ok, err)
	}
	if got := len(s.ListJobs(false)); got != 0 {
		t.Fatalf("after removal %d jobs remain, want 0", got)
	}
}

func TestFileStorePersistence(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "jobs.json")
	fs, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	job := &Job{
		ID:          "abc123",
		Name:        "pagar o aluguel",
		Enabled:     true,
		Schedule:    Every(3 * time.Hour),
		Payload:     Payload{Kind: PayloadAgentTurn, Message: "pagar o aluguel", Channel: "whatsapp", ChatID: "c"},
		CreatedAtMS: 1,
	}
	if err := fs.Save(job); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fs2, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := fs2.Get("abc123")
	if got == nil || got.Payload.Message != "pagar o aluguel" {
		t.Fatalf("restored job = %+v", got)
	}
	if fs2.Count() != 1 {
		t.Fatalf("Count = %d, want 1", fs2.Count())
	}

	// Mutating the returned copy never touches the store.
	got.Name = "outra coisa"
	if fs2.Get("abc123").Name != "pagar o aluguel" {
		t.Fatal("Get must return a copy")
	}

	ok, err := fs2.Delete("abc123")
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	ok, err = fs2.Delete("abc123")
	if err != nil || ok {
		t.Fatalf("second Delete = %v, %v; want false, nil", ok, err)
	}
}
