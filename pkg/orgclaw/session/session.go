// Package session holds per-chat conversation state: a bounded message
// history, a typed metadata bag for flow state, and JSON persistence. Each
// chat (channel + chat id) owns exactly one session; the store is the single
// writer of the session files.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

const (
	// CompressThreshold is the history length at which compression runs.
	CompressThreshold = 45
	// CompressHead is how many leading messages one summary replaces.
	CompressHead = 25
)

// TagSummary marks the synthetic message produced by compression.
const TagSummary = "summary"

// Key identifies a session by transport channel and chat id.
type Key struct {
	Channel string
	ChatID  string
}

// String returns the canonical "channel:chat_id" form.
func (k Key) String() string {
	return k.Channel + ":" + k.ChatID
}

// Safe returns a filesystem-safe identifier for the key. Phone numbers and
// JIDs never appear in file names; the key is reduced to a hex hash.
func (k Key) Safe() string {
	h := sha256.Sum256([]byte(k.String()))
	return hex.EncodeToString(h[:12])
}

// Message is one entry in a session's history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Tags      []string  `json:"tags,omitempty"`
}

// HasTag reports whether the message carries the given tag.
func (m Message) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Session is one chat's conversation state. Safe for concurrent use.
type Session struct {
	Key Key

	mu        sync.RWMutex
	messages  []Message
	metadata  map[string]any
	updatedAt time.Time

	// dirty marks unsaved changes; the store clears it on flush.
	dirty bool
}

func newSession(key Key) *Session {
	return &Session{
		Key:      key,
		metadata: make(map[string]any),
	}
}

// Append adds a message to the history.
func (s *Session) Append(role, content string, tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Tags:      tags,
	})
	s.touch()
}

// Messages returns a copy of the history.
func (s *Session) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the history length.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// LastUserMessage returns the most recent user message before the current
// one, used by the scope filter's follow-up admission.
func (s *Session) LastUserMessage() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == "user" {
			return s.messages[i].Content, true
		}
	}
	return "", false
}

// NeedsCompression reports whether the history reached the threshold.
func (s *Session) NeedsCompression() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages) >= CompressThreshold
}

// Compress atomically replaces the first CompressHead messages with one
// synthetic summary message. Returns the replaced messages so their bullets
// can be merged into long-term memory. A second call without new growth is a
// no-op returning nil.
func (s *Session) Compress(summary string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) < CompressThreshold {
		return nil
	}
	old := make([]Message, CompressHead)
	copy(old, s.messages[:CompressHead])

	rest := s.messages[CompressHead:]
	compacted := make([]Message, 0, len(rest)+1)
	compacted = append(compacted, Message{
		Role:      "system",
		Content:   summary,
		Timestamp: time.Now(),
		Tags:      []string{TagSummary},
	})
	compacted = append(compacted, rest...)
	s.messages = compacted
	s.touch()
	return old
}

// ClearHistory drops all messages, keeping metadata. Used by /reset.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.touch()
}

// UpdatedAt returns the last mutation time.
func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// touch must be called with the lock held.
func (s *Session) touch() {
	s.updatedAt = time.Now()
	s.dirty = true
}

// CountUserTurns returns the number of user messages in the history.
func (s *Session) CountUserTurns() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.messages {
		if m.Role == "user" {
			n++
		}
	}
	return n
}

// Tail returns up to n trailing messages.
func (s *Session) Tail(n int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n >= len(s.messages) {
		n = len(s.messages)
	}
	out := make([]Message, n)
	copy(out, s.messages[len(s.messages)-n:])
	return out
}

// RenderTranscript formats messages as "role: content" lines for parser-model
// judgements (frustration pass, summarisation).
func RenderTranscript(msgs []Message) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return b.String()
}
