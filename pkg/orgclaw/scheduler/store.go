package scheduler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// storeVersion is bumped on incompatible jobs.json changes.
const storeVersion = 1

// FileStore persists jobs to a single versioned JSON file with
// temp-file-rename atomic writes. The scheduler is its only writer.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu   sync.RWMutex
	jobs map[string]*Job
}

type storeFile struct {
	Version int    `json:"version"`
	Jobs    []*Job `json:"jobs"`
}

// NewFileStore opens (or creates) the cron store at path. An unreadable
// store is a fatal initialisation error; the operator must intervene.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cron directory: %w", err)
	}

	fs := &FileStore{
		path:   path,
		logger: logger.With("component", "cronstore"),
		jobs:   make(map[string]*Job),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("reading cron store: %w", err)
	}
	var sf storeFile
	if err := json.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("cron store corrupted: %w", err)
	}
	for _, j := range sf.Jobs {
		fs.jobs[j.ID] = j
	}
	fs.logger.Info("cron store loaded", "jobs", len(fs.jobs))
	return fs, nil
}

// Get returns a copy of the job, or nil when absent.
func (fs *FileStore) Get(id string) *Job {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	j, ok := fs.jobs[id]
	if !ok {
		return nil
	}
	cp := *j
	return &cp
}

// Exists reports whether an id is taken.
func (fs *FileStore) Exists(id string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.jobs[id]
	return ok
}

// All returns copies of every job, sorted by creation time.
func (fs *FileStore) All() []*Job {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	out := make([]*Job, 0, len(fs.jobs))
	for _, j := range fs.jobs {
		cp := *j
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAtMS < out[b].CreatedAtMS })
	return out
}

// Save inserts or replaces a job and flushes to disk.
func (fs *FileStore) Save(j *Job) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	cp := *j
	fs.jobs[j.ID] = &cp
	return fs.flushLocked()
}

// Delete removes a job and flushes to disk. Returns false when absent.
func (fs *FileStore) Delete(id string) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.jobs[id]; !ok {
		return false, nil
	}
	delete(fs.jobs, id)
	return true, fs.flushLocked()
}

// Count returns the number of stored jobs.
func (fs *FileStore) Count() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.jobs)
}

func (fs *FileStore) flushLocked() error {
	sf := storeFile{Version: storeVersion, Jobs: make([]*Job, 0, len(fs.jobs))}
	for _, j := range fs.jobs {
		sf.Jobs = append(sf.Jobs, j)
	}
	sort.Slice(sf.Jobs, func(a, b int) bool { return sf.Jobs[a].CreatedAtMS < sf.Jobs[b].CreatedAtMS })

	raw, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cron store: %w", err)
	}
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing cron store: %w", err)
	}
	return os.Rename(tmp, fs.path)
}
