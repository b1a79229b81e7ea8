package session

import (
	"fmt"
	"strings"
	"testing"
)

func TestKeySafeHidesChatID(t *testing.T) {
	t.Parallel()

	key := Key{Channel: "whatsapp", ChatID: "5511999990000@s.whatsapp.net"}
	safe := key.Safe()
	if strings.Contains(safe, "5511") {
		t.Fatalf("Safe() leaks the phone number: %s", safe)
	}
	if safe != key.Safe() {
		t.Fatal("Safe() must be deterministic")
	}
	other := Key{Channel: "whatsapp", ChatID: "5511999990001@s.whatsapp.net"}
	if safe == other.Safe() {
		t.Fatal("distinct keys must not collide")
	}
}

func TestCompressionInvariant(t *testing.T) {
	t.Parallel()

	s := newSession(Key{Channel: "terminal", ChatID: "t"})
	for i := 0; i < CompressThreshold; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		s.Append(role, fmt.Sprintf("mensagem %d", i))
	}
	if !s.NeedsCompression() {
		t.Fatal("threshold reached, NeedsCompression should be true")
	}

	old := s.Compress("resumo das primeiras mensagens")
	if len(old) != CompressHead {
		t.Fatalf("Compress returned %d messages, want %d", len(old), CompressHead)
	}
	// 45 - 25 + 1 summary = 21.
	if got := s.Len(); got != CompressThreshold-CompressHead+1 {
		t.Fatalf("Len after compress = %d, want %d", got, CompressThreshold-CompressHead+1)
	}
	first := s.Messages()[0]
	if !first.HasTag(TagSummary) || first.Role != "system" {
		t.Fatalf("first message should be the tagged summary, got %+v", first)
	}
	if first.Content != "resumo das primeiras mensagens" {
		t.Fatalf("summary content = %q", first.Content)
	}
}

func TestCompressionIdempotent(t *testing.T) {
	t.Parallel()

	s := newSession(Key{Channel: "terminal", ChatID: "t"})
	for i := 0; i < CompressThreshold; i++ {
		s.Append("user", "msg")
	}
	if old := s.Compress("primeiro resumo"); len(old) == 0 {
		t.Fatal("first compression should return the head")
	}
	if old := s.Compress("segundo resumo"); old != nil {
		t.Fatalf("compression without regrowth should be a no-op, got %d messages", len(old))
	}
}

func TestLastUserMessage(t *testing.T) {
	t.Parallel()

	s := newSession(Key{Channel: "terminal", ChatID: "t"})
	if _, ok := s.LastUserMessage(); ok {
		t.Fatal("empty session has no user message")
	}
	s.Append("user", "primeira")
	s.Append("assistant", "resposta")
	s.Append("user", "segunda")
	s.Append("assistant", "outra resposta")
	got, ok := s.LastUserMessage()
	if !ok || got != "segunda" {
		t.Fatalf("LastUserMessage = %q, %v", got, ok)
	}
}

func TestTailAndCountUserTurns(t *testing.T) {
	t.Parallel()

	s := newSession(Key{Channel: "terminal", ChatID: "t"})
	for i := 0; i < 5; i++ {
		s.Append("user", fmt.Sprintf("u%d", i))
		s.Append("assistant", fmt.Sprintf("a%d", i))
	}
	if got := s.CountUserTurns(); got != 5 {
		t.Fatalf("CountUserTurns = %d, want 5", got)
	}
	tail := s.Tail(3)
	if len(tail) != 3 || tail[2].Content != "a4" {
		t.Fatalf("Tail(3) = %+v", tail)
	}
	if got := s.Tail(100); len(got) != 10 {
		t.Fatalf("Tail over length = %d entries, want 10", len(got))
	}
}

func TestStorePersistRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	st, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	key := Key{Channel: "whatsapp", ChatID: "5511988887777"}
	s := st.GetOrCreate(key)
	s.Append("user", "oi")
	s.Append("assistant", "olá! como posso ajudar?")
	s.SetMeta(MetaOnboardingIntroSent, true)
	if err := st.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	st2, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s2 := st2.GetOrCreate(key)
	if s2.Len() != 2 {
		t.Fatalf("restored Len = %d, want 2", s2.Len())
	}
	if !s2.MetaBool(MetaOnboardingIntroSent) {
		t.Fatal("metadata should survive the round trip")
	}
	msg, ok := s2.LastUserMessage()
	if !ok || msg != "oi" {
		t.Fatalf("restored LastUserMessage = %q, %v", msg, ok)
	}
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	st, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	key := Key{Channel: "terminal", ChatID: "x"}
	s := st.GetOrCreate(key)
	s.Append("user", "algo")
	if err := st.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if st.Get(key) != nil {
		t.Fatal("deleted session should be gone from memory")
	}
	fresh := st.GetOrCreate(key)
	if fresh.Len() != 0 {
		t.Fatal("recreated session should start empty")
	}
}

func TestMetadataHelpers(t *testing.T) {
	t.Parallel()

	s := newSession(Key{Channel: "terminal", ChatID: "m"})
	if s.MetaString("missing") != "" || s.MetaBool("missing") || s.MetaInt("missing") != 0 {
		t.Fatal("absent keys should return zero values")
	}
	s.SetMeta("name", "Ana")
	if got := s.MetaString("name"); got != "Ana" {
		t.Fatalf("MetaString = %q", got)
	}
	if got := s.IncrMeta("count"); got != 1 {
		t.Fatalf("IncrMeta first = %d", got)
	}
	if got := s.IncrMeta("count"); got != 2 {
		t.Fatalf("IncrMeta second = %d", got)
	}
	s.DeleteMeta("count")
	if s.MetaInt("count") != 0 {
		t.Fatal("DeleteMeta should clear the key")
	}
}

func TestRenderTranscript(t *testing.T) {
	t.Parallel()

	got := RenderTranscript([]Message{
		{Role: "user", Content: "oi"},
		{Role: "assistant", Content: "olá"},
	})
	want := "user: oi\nassistant: olá\n"
	if got != want {
		t.Fatalf("RenderTranscript = %q, want %q", got, want)
	}
}
