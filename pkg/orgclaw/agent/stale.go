package agent

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// StaleNotices tracks chats owed an apology for reminders removed by the boot
// stale pass. The pending map survives restarts so a notice scheduled before
// a crash still fires on the user's next message.
type StaleNotices struct {
	mu      sync.Mutex
	path    string
	pending map[string]int
}

// NewStaleNotices loads the pending map from path (absent file means empty).
func NewStaleNotices(path string) (*StaleNotices, error) {
	s := &StaleNotices{path: path, pending: make(map[string]int)}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.pending); err != nil {
		// A corrupt file loses at most apology notices; start fresh.
		s.pending = make(map[string]int)
	}
	return s, nil
}

// Add records n removed stale jobs for the chat.
func (s *StaleNotices) Add(chatKey string, n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[chatKey] += n
	s.flush()
}

// Consume returns and clears the pending count for the chat.
func (s *StaleNotices) Consume(chatKey string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.pending[chatKey]
	if !ok {
		return 0, false
	}
	delete(s.pending, chatKey)
	s.flush()
	return n, true
}

// flush persists the map. Must be called with the lock held.
func (s *StaleNotices) flush() {
	raw, err := json.MarshalIndent(s.pending, "", "  ")
	if err != nil {
		return
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return
	}
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return
	}
	os.Rename(tmp, s.path)
}
