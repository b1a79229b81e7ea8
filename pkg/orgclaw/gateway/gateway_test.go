package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/database"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/store"
)

func newTestGateway(t *testing.T, cfg Config) (*Gateway, *store.Store) {
	t.Helper()

	dbCfg := database.DefaultHubConfig()
	dbCfg.SQLite.Path = filepath.Join(t.TempDir(), "test.db")
	hub, err := database.NewHub(dbCfg, nil)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	t.Cleanup(func() { hub.Close() })
	st := store.New(hub)

	fs, err := scheduler.NewFileStore(filepath.Join(t.TempDir(), "jobs.json"), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	sched := scheduler.New(scheduler.Config{}, fs, time.Now, nil)

	g := New(cfg, st, sched, bus.New(16), nil, nil, nil)
	g.startedAt = time.Now()
	return g, st
}

func get(t *testing.T, h http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthGuardsEverythingButHealth(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, Config{APIKey: "sekret"})
	h := g.handler()

	if rec := get(t, h, "/health", nil); rec.Code != http.StatusOK {
		t.Fatalf("/health without key = %d, want 200", rec.Code)
	}
	if rec := get(t, h, "/users", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("/users without key = %d, want 401", rec.Code)
	}
	if rec := get(t, h, "/users", map[string]string{"X-API-Key": "wrong"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("/users with wrong key = %d, want 401", rec.Code)
	}
	rec := get(t, h, "/users", map[string]string{"X-API-Key": "sekret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("/users with key = %d, want 200", rec.Code)
	}

	// 401 bodies carry a generic message, never the expected key.
	rec = get(t, h, "/users", map[string]string{"X-API-Key": "wrong"})
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body["error"] == "" || body["error"] == "sekret" {
		t.Fatalf("error body = %v", body)
	}
}

func TestNoKeyMeansOpen(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, Config{})
	if rec := get(t, g.handler(), "/users", nil); rec.Code != http.StatusOK {
		t.Fatalf("/users on keyless gateway = %d, want 200", rec.Code)
	}
}

func TestHealthToken(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, Config{HealthToken: "probe"})
	h := g.handler()

	if rec := get(t, h, "/health", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("/health without token = %d, want 401", rec.Code)
	}
	rec := get(t, h, "/health", map[string]string{"X-Health-Token": "probe"})
	if rec.Code != http.StatusOK {
		t.Fatalf("/health with token = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Fatalf("health body = %v", body)
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, Config{})
	rec := get(t, g.handler(), "/health", nil)
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("missing nosniff header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("missing frame options header")
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatal("missing cache control header")
	}
}

func TestCORSAllowlist(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, Config{CORSOrigins: []string{"https://painel.example.com"}})
	h := g.handler()

	rec := get(t, h, "/health", map[string]string{"Origin": "https://painel.example.com"})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://painel.example.com" {
		t.Fatalf("allowed origin header = %q", got)
	}
	rec = get(t, h, "/health", map[string]string{"Origin": "https://evil.example.com"})
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unlisted origin must not be echoed")
	}

	// Preflight short-circuits.
	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "https://painel.example.com")
	pre := httptest.NewRecorder()
	h.ServeHTTP(pre, req)
	if pre.Code != http.StatusNoContent {
		t.Fatalf("preflight = %d, want 204", pre.Code)
	}
}

func TestUserViews(t *testing.T) {
	t.Parallel()

	g, st := newTestGateway(t, Config{})
	h := g.handler()
	ctx := context.Background()

	if _, _, err := st.Users.GetOrCreate(ctx, "u1", "", "pt-BR", "America/Sao_Paulo"); err != nil {
		t.Fatal(err)
	}
	list, err := st.Lists.Create(ctx, "u1", "mercado")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Lists.AddItem(ctx, list, "leite"); err != nil {
		t.Fatal(err)
	}
	at := time.Now().Add(24 * time.Hour)
	if _, err := st.Events.Add(ctx, "u1", store.EventTypeEvento, map[string]any{"nome": "consulta"}, &at); err != nil {
		t.Fatal(err)
	}

	rec := get(t, h, "/users", nil)
	var users map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatal(err)
	}
	if users["count"] != float64(1) {
		t.Fatalf("user count = %v", users["count"])
	}

	rec = get(t, h, "/users/u1/lists", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/users/u1/lists = %d", rec.Code)
	}
	var lists struct {
		Lists []struct {
			Name  string `json:"name"`
			Items []any  `json:"items"`
		} `json:"lists"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &lists); err != nil {
		t.Fatal(err)
	}
	if len(lists.Lists) != 1 || lists.Lists[0].Name != "mercado" || len(lists.Lists[0].Items) != 1 {
		t.Fatalf("lists view = %+v", lists)
	}

	rec = get(t, h, "/users/u1/events?type=evento", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/users/u1/events = %d", rec.Code)
	}
}

func TestAuditLimitValidation(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, Config{})
	h := g.handler()

	if rec := get(t, h, "/audit", nil); rec.Code != http.StatusOK {
		t.Fatalf("/audit default = %d", rec.Code)
	}
	if rec := get(t, h, "/audit?limit=10", nil); rec.Code != http.StatusOK {
		t.Fatalf("/audit limit=10 = %d", rec.Code)
	}
	for _, bad := range []string{"0", "1001", "abc", "-5"} {
		if rec := get(t, h, "/audit?limit="+bad, nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("/audit limit=%s = %d, want 400", bad, rec.Code)
		}
	}
}

func TestStatusSnapshot(t *testing.T) {
	t.Parallel()

	g, _ := newTestGateway(t, Config{})
	rec := get(t, g.handler(), "/api/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("/api/status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"uptime", "users", "scheduler", "bus"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("status missing %q: %v", key, body)
		}
	}
}
