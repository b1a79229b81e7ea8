// Package memory implements per-user long-term memory: a markdown document
// of durable facts plus dated daily notes, one directory per session key.
// Two different session keys never share a namespace; the key is reduced to
// a path-safe hash before touching the filesystem.
//
// Layout under the base directory:
//
//	<safe-key>/MEMORY.md      long-term document, replaceable by section
//	<safe-key>/YYYY-MM-DD.md  daily notes, append-only
package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store is a keyed memory store. Safe for concurrent use; the store is the
// single writer of its files.
type Store struct {
	baseDir string
	mu      sync.Mutex
}

// NewStore creates a memory store rooted at baseDir.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating memory directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// keyDir maps a safe session key to its private directory.
func (s *Store) keyDir(safeKey string) (string, error) {
	safeKey = sanitize(safeKey)
	if safeKey == "" {
		return "", fmt.Errorf("memory: empty key")
	}
	dir := filepath.Join(s.baseDir, safeKey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating memory namespace: %w", err)
	}
	return dir, nil
}

// sanitize keeps only characters safe in a single path element.
func sanitize(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AppendFact appends a dated fact line to the key's long-term document.
func (s *Store) AppendFact(safeKey, fact string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.keyDir(safeKey)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "MEMORY.md")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening memory file: %w", err)
	}
	defer f.Close()

	info, _ := f.Stat()
	if info != nil && info.Size() == 0 {
		if _, err := f.WriteString("# Memory\n\n"); err != nil {
			return err
		}
	}
	line := fmt.Sprintf("- [%s] %s\n", time.Now().Format("2006-01-02 15:04"), strings.TrimSpace(fact))
	_, err = f.WriteString(line)
	return err
}

// ReplaceSection rewrites one "## heading" section of the long-term document,
// creating it at the end when absent. Other sections are untouched.
func (s *Store) ReplaceSection(safeKey, heading, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.keyDir(safeKey)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "MEMORY.md")

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	marker := "## " + heading
	section := marker + "\n\n" + strings.TrimSpace(content) + "\n"

	var out string
	text := string(existing)
	if idx := strings.Index(text, marker); idx >= 0 {
		// Replace up to the next section or end of file.
		rest := text[idx+len(marker):]
		end := len(text)
		if next := strings.Index(rest, "\n## "); next >= 0 {
			end = idx + len(marker) + next + 1
		}
		out = text[:idx] + section + text[end:]
	} else {
		if text == "" {
			text = "# Memory\n\n"
		} else if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		out = text + "\n" + section
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(out), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Read returns the key's long-term document, or "" when none exists.
func (s *Store) Read(safeKey string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.keyDir(safeKey)
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(filepath.Join(dir, "MEMORY.md"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(raw), nil
}

// AppendDailyNote appends a timestamped note to the key's note file for the
// given date.
func (s *Store) AppendDailyNote(safeKey string, date time.Time, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.keyDir(safeKey)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, date.Format("2006-01-02")+".md")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening daily note: %w", err)
	}
	defer f.Close()

	info, _ := f.Stat()
	if info != nil && info.Size() == 0 {
		if _, err := fmt.Fprintf(f, "# %s\n\n", date.Format("2006-01-02")); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(f, "## %s\n\n%s\n\n", time.Now().Format("15:04"), strings.TrimSpace(note))
	return err
}

// ReadDailyNote returns the note file for the date, or "" when none exists.
func (s *Store) ReadDailyNote(safeKey string, date time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.keyDir(safeKey)
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(filepath.Join(dir, date.Format("2006-01-02")+".md"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(raw), nil
}

// Search returns fact lines containing the query, case-insensitive, capped
// at maxResults.
func (s *Store) Search(safeKey, query string, maxResults int) ([]string, error) {
	doc, err := s.Read(safeKey)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(query)
	var out []string
	for _, line := range strings.Split(doc, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "- ") {
			continue
		}
		if strings.Contains(strings.ToLower(trimmed), query) {
			out = append(out, strings.TrimPrefix(trimmed, "- "))
			if maxResults > 0 && len(out) >= maxResults {
				break
			}
		}
	}
	return out, nil
}

// RecentFacts returns up to maxFacts trailing fact lines formatted for
// system-prompt injection. Errors degrade to an empty string; memory is a
// cosmetic enrichment, never a hard dependency of a turn.
func (s *Store) RecentFacts(safeKey string, maxFacts int) string {
	doc, err := s.Read(safeKey)
	if err != nil || doc == "" {
		return ""
	}
	var facts []string
	for _, line := range strings.Split(doc, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") {
			facts = append(facts, trimmed)
		}
	}
	if maxFacts > 0 && len(facts) > maxFacts {
		facts = facts[len(facts)-maxFacts:]
	}
	return strings.Join(facts, "\n")
}

// ListDailyNotes returns the dates of the key's note files, newest first.
func (s *Store) ListDailyNotes(safeKey string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.keyDir(safeKey)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var dates []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".md") && name != "MEMORY.md" {
			dates = append(dates, strings.TrimSuffix(name, ".md"))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}
