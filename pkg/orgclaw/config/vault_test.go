package config

import (
	"path/filepath"
	"testing"
)

func TestVaultRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.vault")
	v := NewVault(path)

	if v.Exists() {
		t.Fatal("vault should not exist yet")
	}
	if err := v.Create("master-password"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := v.Set("provider_openai", "sk-test-123"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v.Lock()
	if v.IsUnlocked() {
		t.Fatal("vault should be locked")
	}

	// Fresh instance, same file.
	v2 := NewVault(path)
	if !v2.Exists() {
		t.Fatal("vault file should exist")
	}
	if err := v2.Unlock("master-password"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	got, err := v2.Get("provider_openai")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "sk-test-123" {
		t.Fatalf("Get = %q, want sk-test-123", got)
	}
}

func TestVaultWrongPassword(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.vault")
	v := NewVault(path)
	if err := v.Create("right"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	v2 := NewVault(path)
	if err := v2.Unlock("wrong"); err == nil {
		t.Fatal("Unlock with wrong password should fail")
	}
}

func TestVaultLockedOperations(t *testing.T) {
	t.Parallel()

	v := NewVault(filepath.Join(t.TempDir(), "test.vault"))
	if err := v.Set("k", "v"); err == nil {
		t.Fatal("Set on locked vault should fail")
	}
	if _, err := v.Get("k"); err == nil {
		t.Fatal("Get on locked vault should fail")
	}
	if _, err := v.Keys(); err == nil {
		t.Fatal("Keys on locked vault should fail")
	}
}

func TestVaultDelete(t *testing.T) {
	t.Parallel()

	v := NewVault(filepath.Join(t.TempDir(), "test.vault"))
	if err := v.Create("pw"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := v.Set("a", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := v.Set("b", "2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := v.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	keys, err := v.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "b" {
		t.Fatalf("Keys = %v, want [b]", keys)
	}
	// Deleted entries resolve to empty, not error.
	got, err := v.Get("a")
	if err != nil || got != "" {
		t.Fatalf("Get deleted = %q, %v", got, err)
	}
}
