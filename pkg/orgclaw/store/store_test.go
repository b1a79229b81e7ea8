package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := database.DefaultHubConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "test.db")
	hub, err := database.NewHub(cfg, nil)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	t.Cleanup(func() { hub.Close() })
	return New(hub)
}

func TestUserGetOrCreate(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u, created, err := s.Users.GetOrCreate(ctx, "5511999990000", "5511999990000", "pt-BR", "America/Sao_Paulo")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !created {
		t.Fatal("first call should create")
	}
	if u.Language != "pt-BR" || u.Timezone != "America/Sao_Paulo" {
		t.Fatalf("defaults not applied: %+v", u)
	}

	again, created, err := s.Users.GetOrCreate(ctx, "5511999990000", "", "", "")
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if created {
		t.Fatal("second call should fetch")
	}
	if again.Language != "pt-BR" {
		t.Fatal("existing values must not be overwritten by defaults")
	}
}

func TestUserResetKeepsIdentity(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u, _, err := s.Users.GetOrCreate(ctx, "chat1", "", "pt-BR", "America/Sao_Paulo")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	u.Name = "Ana"
	u.City = "Lisboa"
	u.QuietStart, u.QuietEnd = "22:00", "07:00"
	if err := s.Users.Save(ctx, u); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.Users.Reset(ctx, "chat1"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	got, err := s.Users.Get(ctx, "chat1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "" || got.City != "" || got.QuietStart != "" {
		t.Fatalf("optional fields should clear: %+v", got)
	}
	if got.ID != "chat1" {
		t.Fatal("identity must survive a reset")
	}
}

func TestListRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	if _, _, err := s.Users.GetOrCreate(ctx, "u1", "", "pt-BR", ""); err != nil {
		t.Fatal(err)
	}

	list, err := s.Lists.Create(ctx, "u1", "mercado")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, text := range []string{"leite", "pão", "café"} {
		if _, err := s.Lists.AddItem(ctx, list, text); err != nil {
			t.Fatalf("AddItem(%s): %v", text, err)
		}
	}

	items, err := s.Lists.Items(ctx, list.ID, false)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("open items = %d, want 3", len(items))
	}
	// Insertion order is preserved by position.
	if items[0].Text != "leite" || items[2].Text != "café" {
		t.Fatalf("item order wrong: %v, %v", items[0].Text, items[2].Text)
	}

	if err := s.Lists.MarkDone(ctx, "u1", items[1]); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	open, err := s.Lists.Items(ctx, list.ID, false)
	if err != nil {
		t.Fatalf("Items after done: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("open items after done = %d, want 2", len(open))
	}
	all, err := s.Lists.Items(ctx, list.ID, true)
	if err != nil {
		t.Fatalf("Items all: %v", err)
	}
	if len(all) != 3 {
		t.Fatal("done is a soft flag, the item must remain")
	}

	// Marking done twice is ErrNotFound (already done).
	if err := s.Lists.MarkDone(ctx, "u1", items[1]); err != ErrNotFound {
		t.Fatalf("double MarkDone = %v, want ErrNotFound", err)
	}

	done, err := s.Lists.CountDoneSince(ctx, "u1", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountDoneSince: %v", err)
	}
	if done != 1 {
		t.Fatalf("CountDoneSince = %d, want 1", done)
	}
}

func TestListAddItemValidation(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	if _, _, err := s.Users.GetOrCreate(ctx, "u1", "", "", ""); err != nil {
		t.Fatal(err)
	}
	list, err := s.Lists.Create(ctx, "u1", "compras")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Lists.AddItem(ctx, list, "   "); err == nil {
		t.Fatal("blank item should be rejected")
	}
	if _, err := s.Lists.AddItem(ctx, list, strings.Repeat("x", MaxItemTextLen+1)); err == nil {
		t.Fatal("over-length item should be rejected")
	}
	items, err := s.Lists.Items(ctx, list.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0", len(items))
	}
}

func TestEventRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	if _, _, err := s.Users.GetOrCreate(ctx, "u1", "", "", ""); err != nil {
		t.Fatal(err)
	}

	// Type evento requires an instant.
	if _, err := s.Events.Add(ctx, "u1", EventTypeEvento, map[string]any{"nome": "consulta"}, nil); err == nil {
		t.Fatal("evento without a date should be rejected")
	}

	at := time.Date(2026, 9, 12, 15, 0, 0, 0, time.UTC)
	ev, err := s.Events.Add(ctx, "u1", EventTypeEvento, map[string]any{"nome": "consulta"}, &at)
	if err != nil {
		t.Fatalf("Add evento: %v", err)
	}
	if _, err := s.Events.Add(ctx, "u1", EventTypeFilme, map[string]any{"nome": "Dune"}, nil); err != nil {
		t.Fatalf("Add filme: %v", err)
	}

	// Unknown types are rejected.
	if _, err := s.Events.Add(ctx, "u1", "banda", nil, nil); err == nil {
		t.Fatal("unknown event type should be rejected")
	}

	all, err := s.Events.ByUser(ctx, "u1", "")
	if err != nil {
		t.Fatalf("ByUser: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ByUser all = %d, want 2", len(all))
	}
	filmes, err := s.Events.ByUser(ctx, "u1", EventTypeFilme)
	if err != nil {
		t.Fatalf("ByUser filme: %v", err)
	}
	if len(filmes) != 1 || filmes[0].Name() != "Dune" {
		t.Fatalf("filmes = %+v", filmes)
	}

	dayStart := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	n, err := s.Events.CountEventsOnDay(ctx, "u1", dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("CountEventsOnDay: %v", err)
	}
	if n != 1 {
		t.Fatalf("CountEventsOnDay = %d, want 1", n)
	}

	if err := s.Events.Remove(ctx, "u1", ev.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	left, err := s.Events.ByUser(ctx, "u1", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 1 {
		t.Fatalf("after remove = %d, want 1", len(left))
	}
}

func TestAuditMarkers(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	if _, _, err := s.Users.GetOrCreate(ctx, "u1", "", "", ""); err != nil {
		t.Fatal(err)
	}

	has, err := s.Audit.HasMarker(ctx, "u1", "recap_weekly_delivered", "2026-W35")
	if err != nil {
		t.Fatalf("HasMarker: %v", err)
	}
	if has {
		t.Fatal("marker should not exist yet")
	}
	if err := s.Audit.WriteMarker(ctx, "u1", "recap_weekly_delivered", "2026-W35"); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}
	has, err = s.Audit.HasMarker(ctx, "u1", "recap_weekly_delivered", "2026-W35")
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Fatal("marker should exist after write")
	}
	// A different period is independent.
	has, err = s.Audit.HasMarker(ctx, "u1", "recap_weekly_delivered", "2026-W36")
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Fatal("other periods must not match")
	}
}

func TestAuditCountActionSince(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	if _, _, err := s.Users.GetOrCreate(ctx, "u1", "", "", ""); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Audit.Append(ctx, "u1", "list_add", map[string]any{"item": "x"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := s.Audit.Append(ctx, "u1", "event_add", nil); err != nil {
		t.Fatal(err)
	}

	n, err := s.Audit.CountActionSince(ctx, "u1", "list_add", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountActionSince: %v", err)
	}
	if n != 3 {
		t.Fatalf("CountActionSince = %d, want 3", n)
	}
	n, err = s.Audit.CountActionSince(ctx, "u1", "list_add", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("future window count = %d, want 0", n)
	}
}

func TestHabitStreak(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	if _, _, err := s.Users.GetOrCreate(ctx, "u1", "", "", ""); err != nil {
		t.Fatal(err)
	}

	h, err := s.Habits.Create(ctx, "u1", "academia")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	today := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	for d := 0; d < 3; d++ {
		if err := s.Habits.Check(ctx, h, today.AddDate(0, 0, -d)); err != nil {
			t.Fatalf("Check day -%d: %v", d, err)
		}
	}
	streak, err := s.Habits.Streak(ctx, h.ID, today)
	if err != nil {
		t.Fatalf("Streak: %v", err)
	}
	if streak != 3 {
		t.Fatalf("streak = %d, want 3", streak)
	}

	// Re-checking the same day is idempotent.
	if err := s.Habits.Check(ctx, h, today); err != nil {
		t.Fatalf("re-Check: %v", err)
	}
	streak, err = s.Habits.Streak(ctx, h.ID, today)
	if err != nil {
		t.Fatal(err)
	}
	if streak != 3 {
		t.Fatalf("streak after re-check = %d, want 3", streak)
	}
}
