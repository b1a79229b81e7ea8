package safety

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// BlockedCommand is one blocklist or injection hit, identified only by the
// truncated phone so full numbers never reach the security log.
type BlockedCommand struct {
	PhoneHint string    `json:"phone_hint"`
	Reason    string    `json:"reason"`
	Excerpt   string    `json:"excerpt"`
	At        time.Time `json:"at"`
}

// Painpoint is a frustration signal surfaced to human support.
type Painpoint struct {
	ChatID  string    `json:"chat_id"`
	Summary string    `json:"summary"`
	At      time.Time `json:"at"`
}

// SecurityLog appends blocklist hits and painpoints to their JSON files
// under the security directory.
type SecurityLog struct {
	blockedPath    string
	painpointsPath string
	mu             sync.Mutex
}

// NewSecurityLog creates the log rooted at dir.
func NewSecurityLog(dir string) (*SecurityLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &SecurityLog{
		blockedPath:    filepath.Join(dir, "blocked_commands.json"),
		painpointsPath: filepath.Join(dir, "client_painpoints.json"),
	}, nil
}

// RecordBlocked appends a blocklist hit. The excerpt is truncated so the
// log never stores a full hostile payload.
func (sl *SecurityLog) RecordBlocked(phoneHint, reason, content string) error {
	if len(content) > 120 {
		content = content[:120]
	}
	return sl.append(sl.blockedPath, BlockedCommand{
		PhoneHint: phoneHint,
		Reason:    reason,
		Excerpt:   content,
		At:        time.Now(),
	})
}

// RecordPainpoint appends a frustration signal.
func (sl *SecurityLog) RecordPainpoint(chatID, summary string) error {
	return sl.append(sl.painpointsPath, Painpoint{
		ChatID:  chatID,
		Summary: summary,
		At:      time.Now(),
	})
}

// Painpoints returns all recorded painpoints.
func (sl *SecurityLog) Painpoints() ([]Painpoint, error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	var out []Painpoint
	if err := readJSON(sl.painpointsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BlockedCount returns the number of recorded blocklist hits.
func (sl *SecurityLog) BlockedCount() (int, error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	var out []BlockedCommand
	if err := readJSON(sl.blockedPath, &out); err != nil {
		return 0, err
	}
	return len(out), nil
}

func (sl *SecurityLog) append(path string, entry any) error {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	var entries []json.RawMessage
	if err := readJSON(path, &entries); err != nil {
		return err
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	entries = append(entries, raw)

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(raw, out)
}
