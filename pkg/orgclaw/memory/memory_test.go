package memory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAppendFactAndRead(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := s.AppendFact("chat1", "prefere lembretes de manhã"); err != nil {
		t.Fatalf("AppendFact: %v", err)
	}
	if err := s.AppendFact("chat1", "mora em Lisboa"); err != nil {
		t.Fatalf("AppendFact: %v", err)
	}

	doc, err := s.Read("chat1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.HasPrefix(doc, "# Memory\n") {
		t.Fatalf("document missing header: %q", doc)
	}
	if !strings.Contains(doc, "mora em Lisboa") {
		t.Fatalf("fact missing: %q", doc)
	}
}

func TestKeysAreIsolated(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AppendFact("chat1", "segredo do chat um"); err != nil {
		t.Fatal(err)
	}

	other, err := s.Read("chat2")
	if err != nil {
		t.Fatalf("Read other key: %v", err)
	}
	if other != "" {
		t.Fatalf("chat2 must start empty, got %q", other)
	}
	if err := s.AppendFact("chat2", "nota do chat dois"); err != nil {
		t.Fatal(err)
	}
	one, _ := s.Read("chat1")
	if strings.Contains(one, "chat dois") {
		t.Fatal("facts leaked across keys")
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	// Sanitization strips everything, leaving no path element.
	if err := s.AppendFact("../..", "x"); err == nil {
		t.Fatal("key reduced to nothing should be rejected")
	}
	if _, err := s.Read(""); err == nil {
		t.Fatal("empty key should be rejected")
	}
}

func TestReplaceSection(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AppendFact("chat1", "um facto"); err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceSection("chat1", "Rotina", "acorda às 7h"); err != nil {
		t.Fatalf("ReplaceSection create: %v", err)
	}
	if err := s.ReplaceSection("chat1", "Trabalho", "remoto"); err != nil {
		t.Fatal(err)
	}

	// Rewriting one section leaves the others intact.
	if err := s.ReplaceSection("chat1", "Rotina", "acorda às 9h"); err != nil {
		t.Fatalf("ReplaceSection update: %v", err)
	}
	doc, err := s.Read("chat1")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(doc, "7h") {
		t.Fatalf("old section content survived: %q", doc)
	}
	if !strings.Contains(doc, "acorda às 9h") || !strings.Contains(doc, "remoto") {
		t.Fatalf("sections wrong: %q", doc)
	}
	if !strings.Contains(doc, "um facto") {
		t.Fatalf("fact lines must survive section rewrites: %q", doc)
	}
	if strings.Count(doc, "## Rotina") != 1 {
		t.Fatalf("section duplicated: %q", doc)
	}
}

func TestDailyNotes(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	day1 := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	if err := s.AppendDailyNote("chat1", day1, "pagou a renda"); err != nil {
		t.Fatalf("AppendDailyNote: %v", err)
	}
	if err := s.AppendDailyNote("chat1", day2, "foi ao ginásio"); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendDailyNote("chat1", day2, "leu 20 páginas"); err != nil {
		t.Fatal(err)
	}

	note, err := s.ReadDailyNote("chat1", day2)
	if err != nil {
		t.Fatalf("ReadDailyNote: %v", err)
	}
	if !strings.HasPrefix(note, "# 2026-08-25\n") {
		t.Fatalf("note missing date header: %q", note)
	}
	if !strings.Contains(note, "ginásio") || !strings.Contains(note, "20 páginas") {
		t.Fatalf("appends missing: %q", note)
	}

	missing, err := s.ReadDailyNote("chat1", day2.AddDate(0, 0, 5))
	if err != nil {
		t.Fatal(err)
	}
	if missing != "" {
		t.Fatal("absent note should read as empty")
	}

	dates, err := s.ListDailyNotes("chat1")
	if err != nil {
		t.Fatalf("ListDailyNotes: %v", err)
	}
	if len(dates) != 2 || dates[0] != "2026-08-25" || dates[1] != "2026-08-24" {
		t.Fatalf("dates = %v, want newest first", dates)
	}
}

func TestSearchAndRecentFacts(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	facts := []string{
		"prefere café sem açúcar",
		"consulta médica marcada",
		"prefere lembretes cedo",
		"torce pelo Benfica",
	}
	for _, f := range facts {
		if err := s.AppendFact("chat1", f); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := s.Search("chat1", "PREFERE", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	hits, err = s.Search("chat1", "prefere", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("capped hits = %d, want 1", len(hits))
	}

	recent := s.RecentFacts("chat1", 2)
	if strings.Contains(recent, "café") {
		t.Fatalf("RecentFacts should keep only trailing facts: %q", recent)
	}
	if !strings.Contains(recent, "Benfica") || !strings.Contains(recent, "lembretes cedo") {
		t.Fatalf("RecentFacts missing trailing facts: %q", recent)
	}

	if got := s.RecentFacts("nobody", 5); got != "" {
		t.Fatalf("empty key memory = %q, want \"\"", got)
	}
}

func TestProfileWriter(t *testing.T) {
	t.Parallel()

	ws := t.TempDir()
	w, err := NewProfileWriter(ws)
	if err != nil {
		t.Fatalf("NewProfileWriter: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ws, "users")); err != nil {
		t.Fatalf("users directory not created: %v", err)
	}

	err = w.Write("5511999990000", UserProfile{
		Name:     "Ana",
		Timezone: "America/Sao_Paulo",
		Language: "pt-BR",
		Notes:    []string{"prefere mensagens curtas"},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	doc, err := w.Read("5511999990000")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for _, want := range []string{"# User", "- Name: Ana", "- Timezone: America/Sao_Paulo", "## Notes", "mensagens curtas"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("profile missing %q: %q", want, doc)
		}
	}

	// A rewrite replaces, never appends.
	if err := w.Write("5511999990000", UserProfile{Name: "Ana Maria"}); err != nil {
		t.Fatal(err)
	}
	doc, _ = w.Read("5511999990000")
	if strings.Contains(doc, "Sao_Paulo") || !strings.Contains(doc, "Ana Maria") {
		t.Fatalf("rewrite should replace the file: %q", doc)
	}

	if got, err := w.Read("unknown"); err != nil || got != "" {
		t.Fatalf("unknown profile = %q, %v; want empty", got, err)
	}
}
