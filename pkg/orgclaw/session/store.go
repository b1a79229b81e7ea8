package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MaxFileSize is the rollover threshold for a session file. When the
// serialized form exceeds it, the current file is rotated aside before the
// fresh write.
const MaxFileSize = 1 << 20

// Store manages sessions keyed by channel and chat id, with JSON persistence
// under <dir>/<safe-key>.json. The store is the single writer of its files.
type Store struct {
	dir    string
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates a session store rooted at dir.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	return &Store{
		dir:      dir,
		logger:   logger.With("component", "session"),
		sessions: make(map[string]*Session),
	}, nil
}

// persistedSession is the on-disk form.
type persistedSession struct {
	Channel   string         `json:"channel"`
	ChatID    string         `json:"chat_id"`
	Messages  []Message      `json:"messages"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// GetOrCreate returns the session for the key, loading from disk on first
// access and creating a fresh one when nothing is persisted.
func (st *Store) GetOrCreate(key Key) *Session {
	id := key.Safe()

	st.mu.RLock()
	if s, ok := st.sessions[id]; ok {
		st.mu.RUnlock()
		return s
	}
	st.mu.RUnlock()

	st.mu.Lock()
	defer st.mu.Unlock()

	// Double-check after acquiring the write lock.
	if s, ok := st.sessions[id]; ok {
		return s
	}

	s := newSession(key)
	if loaded, err := st.load(id); err == nil && loaded != nil {
		s.messages = loaded.Messages
		if loaded.Metadata != nil {
			s.metadata = loaded.Metadata
		}
		s.updatedAt = loaded.UpdatedAt
		st.logger.Debug("session restored", "channel", key.Channel, "chat", key.ChatID)
	}
	st.sessions[id] = s
	return s
}

// Get returns the in-memory session for the key, or nil.
func (st *Store) Get(key Key) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[key.Safe()]
}

// Count returns the number of loaded sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Save flushes the session to disk when it has unsaved changes.
func (st *Store) Save(s *Session) error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	p := persistedSession{
		Channel:   s.Key.Channel,
		ChatID:    s.Key.ChatID,
		Messages:  append([]Message(nil), s.messages...),
		Metadata:  cloneMeta(s.metadata),
		UpdatedAt: s.updatedAt,
	}
	s.dirty = false
	s.mu.Unlock()

	return st.write(s.Key.Safe(), p)
}

// Delete removes the session from memory and disk.
func (st *Store) Delete(key Key) error {
	id := key.Safe()
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()

	err := os.Remove(st.path(id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (st *Store) path(id string) string {
	return filepath.Join(st.dir, id+".json")
}

func (st *Store) load(id string) (*persistedSession, error) {
	raw, err := os.ReadFile(st.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var p persistedSession
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &p, nil
}

// write persists via temp-file rename so a crash never leaves a torn file.
// Files past the rollover threshold are rotated to .1 first.
func (st *Store) write(id string, p persistedSession) error {
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", id, err)
	}

	path := st.path(id)
	if len(raw) > MaxFileSize {
		if err := os.Rename(path, path+".1"); err != nil && !os.IsNotExist(err) {
			st.logger.Warn("session rollover failed", "id", id, "error", err)
		}
		// Keep only the trailing half of the history in the fresh file.
		half := len(p.Messages) / 2
		p.Messages = p.Messages[half:]
		raw, err = json.MarshalIndent(p, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding session %s after rollover: %w", id, err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing session %s: %w", id, err)
	}
	return os.Rename(tmp, path)
}

func cloneMeta(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
