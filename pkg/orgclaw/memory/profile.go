package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// UserProfile is the per-user profile rendered to the workspace as markdown.
// It backs the assistant's read_file tool and the onboarding name mirror.
type UserProfile struct {
	Name     string
	Timezone string
	Language string
	City     string
	Notes    []string
}

// ProfileWriter renders user profiles under <workspaceDir>/users/.
type ProfileWriter struct {
	dir string
	mu  sync.Mutex
}

// NewProfileWriter creates the writer, ensuring the users directory exists.
func NewProfileWriter(workspaceDir string) (*ProfileWriter, error) {
	dir := filepath.Join(workspaceDir, "users")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace users directory: %w", err)
	}
	return &ProfileWriter{dir: dir}, nil
}

// Path returns the profile file path for a chat id.
func (w *ProfileWriter) Path(chatID string) string {
	return filepath.Join(w.dir, sanitize(chatID)+".md")
}

// Write renders the profile, replacing any previous version atomically.
func (w *ProfileWriter) Write(chatID string, p UserProfile) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var b strings.Builder
	b.WriteString("# User\n\n")
	if p.Name != "" {
		fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	}
	if p.Timezone != "" {
		fmt.Fprintf(&b, "- Timezone: %s\n", p.Timezone)
	}
	if p.Language != "" {
		fmt.Fprintf(&b, "- Language: %s\n", p.Language)
	}
	if p.City != "" {
		fmt.Fprintf(&b, "- City: %s\n", p.City)
	}
	if len(p.Notes) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, n := range p.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}

	path := w.Path(chatID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Read returns the rendered profile, or "" when none exists.
func (w *ProfileWriter) Read(chatID string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	raw, err := os.ReadFile(w.Path(chatID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(raw), nil
}
