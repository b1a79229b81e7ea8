package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/database"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/llm"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/memory"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/store"
)

func newTestScheduler(t *testing.T, now func() time.Time) *scheduler.Scheduler {
	t.Helper()
	fs, err := scheduler.NewFileStore(filepath.Join(t.TempDir(), "jobs.json"), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return scheduler.New(scheduler.DefaultConfig(), fs, now, nil)
}

func TestCronToolOneShotUsesEffectiveClock(t *testing.T) {
	t.Parallel()

	// The effective clock runs ahead of the wall clock, as it does after a
	// drift correction. The fire instant must follow the effective clock.
	effective := time.Date(2026, 8, 25, 12, 2, 0, 0, time.UTC)
	sched := newTestScheduler(t, func() time.Time { return effective })
	tool := NewCronTool(sched)
	tc := testContext()

	out, err := tool.Execute(context.Background(), tc, map[string]any{
		"action":     "add",
		"message":    "tomar remédio",
		"in_seconds": float64(1800),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out == "" {
		t.Fatal("add should confirm")
	}

	jobs := sched.JobsForChat(tc.ChatID)
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	want := effective.Add(30 * time.Minute).UnixMilli()
	if jobs[0].Schedule.AtMS != want {
		t.Fatalf("AtMS = %d, want %d (effective clock + delay)", jobs[0].Schedule.AtMS, want)
	}
}

func TestCronToolIntervalFloorReply(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	sched := newTestScheduler(t, func() time.Time { return now })
	tool := NewCronTool(sched)
	tc := testContext()

	out, err := tool.Execute(context.Background(), tc, map[string]any{
		"action":        "add",
		"message":       "beber água",
		"every_seconds": float64(600),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// The reply names the floor actually enforced, not a canned figure.
	if !strings.Contains(out, "2h") {
		t.Fatalf("floor reply = %q, want the 2h floor in it", out)
	}
	if len(sched.JobsForChat(tc.ChatID)) != 0 {
		t.Fatal("below-floor interval must not schedule")
	}
}

func testContext() Context {
	return Context{
		Channel:  "whatsapp",
		ChatID:   "5511999990000",
		Language: locale.PortugueseBR,
		Location: time.UTC,
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	cfg := database.DefaultHubConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "test.db")
	hub, err := database.NewHub(cfg, nil)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	t.Cleanup(func() { hub.Close() })

	s := store.New(hub)
	if _, _, err := s.Users.GetOrCreate(context.Background(), "5511999990000", "", "pt-BR", ""); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	return s
}

type fixedTool struct {
	name   string
	result string
	err    error
}

func (f fixedTool) Name() string                { return f.name }
func (f fixedTool) Description() string         { return "fixed" }
func (f fixedTool) Parameters() map[string]any  { return map[string]any{"type": "object"} }
func (f fixedTool) Execute(context.Context, Context, map[string]any) (string, error) {
	return f.result, f.err
}

func call(name, args string) llm.ToolCall {
	return llm.ToolCall{
		ID:       "call_1",
		Type:     "function",
		Function: llm.FunctionCall{Name: name, Arguments: args},
	}
}

func TestRegistryDefinitionsKeepOrder(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	r.Register(fixedTool{name: "cron"})
	r.Register(fixedTool{name: "list"})
	r.Register(fixedTool{name: "message"})
	// Re-registering replaces in place, it never reorders.
	r.Register(fixedTool{name: "cron", result: "v2"})

	defs := r.Definitions()
	if len(defs) != 3 {
		t.Fatalf("definitions = %d, want 3", len(defs))
	}
	for i, want := range []string{"cron", "list", "message"} {
		if defs[i].Function.Name != want {
			t.Fatalf("defs[%d] = %s, want %s", i, defs[i].Function.Name, want)
		}
		if defs[i].Type != "function" {
			t.Fatalf("defs[%d].Type = %s", i, defs[i].Type)
		}
	}
}

func TestRegistryExecute(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	r.Register(fixedTool{name: "ok", result: "done"})
	r.Register(fixedTool{name: "broken", err: errors.New("db locked")})
	ctx := context.Background()
	tc := testContext()

	if got := r.Execute(ctx, tc, call("ok", `{}`)); got != "done" {
		t.Fatalf("Execute ok = %q", got)
	}

	// Failures become plain-text feedback for the model, never a panic.
	if got := r.Execute(ctx, tc, call("broken", `{}`)); !strings.Contains(got, "db locked") {
		t.Fatalf("Execute broken = %q", got)
	}
	if got := r.Execute(ctx, tc, call("missing", `{}`)); !strings.Contains(got, "unknown tool") {
		t.Fatalf("Execute missing = %q", got)
	}
	if got := r.Execute(ctx, tc, call("ok", `{broken json`)); !strings.Contains(got, "invalid arguments") {
		t.Fatalf("Execute bad args = %q", got)
	}
}

func TestListToolRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	tool := NewListTool(s.Lists, nil)
	ctx := context.Background()
	tc := testContext()

	out, err := tool.Execute(ctx, tc, map[string]any{
		"action":    "add",
		"list_name": "Mercado",
		"items":     []any{"leite", "pão"},
		"item":      "café",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if out == "" {
		t.Fatal("add should confirm")
	}

	out, err = tool.Execute(ctx, tc, map[string]any{"action": "list", "list_name": "mercado"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"leite", "pão", "café"} {
		if !strings.Contains(out, want) {
			t.Fatalf("listing missing %q: %q", want, out)
		}
	}

	// Done resolves by prefix against open items.
	if _, err := tool.Execute(ctx, tc, map[string]any{"action": "feito", "list_name": "mercado", "item": "lei"}); err != nil {
		t.Fatalf("feito: %v", err)
	}
	if _, err := tool.Execute(ctx, tc, map[string]any{"action": "remove", "list_name": "mercado", "item": "pão"}); err != nil {
		t.Fatalf("remove: %v", err)
	}

	out, err = tool.Execute(ctx, tc, map[string]any{"action": "list", "list_name": "mercado"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "leite") || strings.Contains(out, "pão") || !strings.Contains(out, "café") {
		t.Fatalf("open items after done/remove: %q", out)
	}

	// Shuffle picks from what remains.
	out, err = tool.Execute(ctx, tc, map[string]any{"action": "shuffle", "list_name": "mercado"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "café" {
		t.Fatalf("shuffle = %q, want the only open item", out)
	}
}

func TestListToolMissingInput(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	tool := NewListTool(s.Lists, nil)
	ctx := context.Background()
	tc := testContext()

	out, err := tool.Execute(ctx, tc, map[string]any{"action": "add", "list_name": ""})
	if err != nil || !strings.Contains(out, "list_name") {
		t.Fatalf("missing list_name: %q, %v", out, err)
	}
	out, err = tool.Execute(ctx, tc, map[string]any{"action": "add", "list_name": "mercado"})
	if err != nil || !strings.Contains(out, "item") {
		t.Fatalf("missing item: %q, %v", out, err)
	}
	// Reading a list that was never created is a soft miss.
	out, err = tool.Execute(ctx, tc, map[string]any{"action": "list", "list_name": "inexistente"})
	if err != nil || out == "" {
		t.Fatalf("unknown list: %q, %v", out, err)
	}
}

func TestReadFileToolMemory(t *testing.T) {
	t.Parallel()

	mem, err := memory.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tc := testContext()
	key := session.Key{Channel: tc.Channel, ChatID: tc.ChatID}
	if err := mem.AppendFact(key.Safe(), "prefere lembretes de manhã"); err != nil {
		t.Fatal(err)
	}

	tool := NewReadFileTool("", mem)
	out, err := tool.Execute(context.Background(), tc, map[string]any{"path": "memoria"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "prefere lembretes") {
		t.Fatalf("memory read = %q", out)
	}

	// Another chat never sees this memory.
	other := tc
	other.ChatID = "other"
	out, err = tool.Execute(context.Background(), other, map[string]any{"path": "memoria"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "prefere lembretes") {
		t.Fatalf("memory leaked across chats: %q", out)
	}
}

func TestReadFileToolDocs(t *testing.T) {
	t.Parallel()

	docs := t.TempDir()
	if err := os.WriteFile(filepath.Join(docs, "faq.md"), []byte("# FAQ\ncomo usar"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docs, "..", "secret.txt"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	tool := NewReadFileTool(docs, nil)
	ctx := context.Background()
	tc := testContext()

	out, err := tool.Execute(ctx, tc, map[string]any{"path": "faq.md"})
	if err != nil || !strings.Contains(out, "como usar") {
		t.Fatalf("read faq = %q, %v", out, err)
	}

	// Traversal is neutralised before the read.
	out, err = tool.Execute(ctx, tc, map[string]any{"path": "../secret.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "nope") {
		t.Fatalf("traversal escaped the docs root: %q", out)
	}

	out, err = tool.Execute(ctx, tc, map[string]any{"path": "missing.md"})
	if err != nil || !strings.Contains(out, "not found") {
		t.Fatalf("missing doc = %q, %v", out, err)
	}
}
