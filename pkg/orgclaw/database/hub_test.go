package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "orgclaw-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	config := DefaultHubConfig()
	config.SQLite.Path = filepath.Join(tmpDir, "test.db")

	hub, err := NewHub(config, nil)
	if err != nil {
		t.Fatalf("NewHub failed: %v", err)
	}
	t.Cleanup(func() { hub.Close() })

	return hub
}

func TestHub_New(t *testing.T) {
	hub := newTestHub(t)

	primary := hub.Primary()
	if primary == nil {
		t.Fatal("primary backend is nil")
	}
	if primary.Type != BackendSQLite {
		t.Errorf("expected SQLite backend, got %s", primary.Type)
	}
}

func TestHub_MigratesOnOpen(t *testing.T) {
	hub := newTestHub(t)
	ctx := context.Background()

	backend, err := hub.GetBackend("")
	if err != nil {
		t.Fatalf("GetBackend failed: %v", err)
	}

	needs, err := backend.Migrator.NeedsMigration(ctx)
	if err != nil {
		t.Fatalf("NeedsMigration failed: %v", err)
	}
	if needs {
		t.Error("expected schema to be current after NewHub")
	}

	// All organizer tables must exist.
	for _, table := range []string{
		"users", "lists", "list_items", "events", "audit_log",
		"reminder_history", "habits", "habit_checks", "goals",
		"notes", "projects", "list_templates", "bookmarks",
	} {
		rows, err := hub.Query(ctx, "", "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		if err != nil {
			t.Fatalf("query sqlite_master: %v", err)
		}
		if !rows.Next() {
			t.Errorf("table %q missing after migration", table)
		}
		rows.Close()
	}
}

func TestHub_GetBackend(t *testing.T) {
	hub := newTestHub(t)

	backend, err := hub.GetBackend("")
	if err != nil {
		t.Fatalf("GetBackend failed: %v", err)
	}
	if backend == nil {
		t.Fatal("backend is nil")
	}

	if _, err := hub.GetBackend("nonexistent"); err == nil {
		t.Fatal("expected error for non-existent backend")
	}
}

func TestHub_Status(t *testing.T) {
	hub := newTestHub(t)

	status := hub.Status(context.Background())
	if len(status) == 0 {
		t.Fatal("expected at least one backend status")
	}
	primary, ok := status["primary"]
	if !ok {
		t.Fatal("expected 'primary' backend in status")
	}
	if !primary.Healthy {
		t.Errorf("primary backend unhealthy: %s", primary.Error)
	}
}

func TestHub_QueryRoundTrip(t *testing.T) {
	hub := newTestHub(t)
	ctx := context.Background()

	_, err := hub.Exec(ctx, "",
		"INSERT INTO users (id, name, language, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		"u1", "Maria", "pt-PT", "2026-01-01T00:00:00Z", "2026-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	rows, err := hub.Query(ctx, "", "SELECT name FROM users WHERE id = ?", "u1")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	if !rows.Next() {
		t.Fatal("expected one row")
	}
	var name string
	if err := rows.Scan(&name); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if name != "Maria" {
		t.Errorf("expected 'Maria', got %s", name)
	}
}

func TestHub_Close(t *testing.T) {
	tmpDir, _ := os.MkdirTemp("", "orgclaw-test-*")
	defer os.RemoveAll(tmpDir)

	config := DefaultHubConfig()
	config.SQLite.Path = filepath.Join(tmpDir, "test.db")

	hub, err := NewHub(config, nil)
	if err != nil {
		t.Fatalf("NewHub failed: %v", err)
	}

	if err := hub.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := hub.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestHubConfig_Effective(t *testing.T) {
	tests := []struct {
		name     string
		config   HubConfig
		expected BackendType
	}{
		{
			name:     "empty config defaults to sqlite",
			config:   HubConfig{},
			expected: BackendSQLite,
		},
		{
			name: "explicit sqlite",
			config: HubConfig{
				Backend: BackendSQLite,
			},
			expected: BackendSQLite,
		},
		{
			name: "postgresql",
			config: HubConfig{
				Backend: BackendPostgreSQL,
			},
			expected: BackendPostgreSQL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effective := tt.config.Effective()
			if effective.Backend != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, effective.Backend)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	q := "INSERT INTO t (a, b) VALUES (?, ?)"

	if got := Rebind(BackendSQLite, q); got != q {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
	want := "INSERT INTO t (a, b) VALUES ($1, $2)"
	if got := Rebind(BackendPostgreSQL, q); got != want {
		t.Errorf("postgres rebind = %q, want %q", got, want)
	}
}
