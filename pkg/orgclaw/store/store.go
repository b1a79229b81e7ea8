// Package store implements the organizer's repositories over the database
// hub: users, lists, events, the audit and reminder-history logs, and the
// smaller collections behind the slash commands (habits, goals, notes,
// projects, list templates, bookmarks).
//
// All timestamps are written as RFC3339 in UTC. Mutations that the agent
// must never half-apply (item add + audit, event add + audit) run inside a
// transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/database"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store bundles the repositories sharing one database backend.
type Store struct {
	db  *sql.DB
	typ database.BackendType
	now func() time.Time

	Users     *UserRepo
	Lists     *ListRepo
	Events    *EventRepo
	Audit     *AuditRepo
	History   *HistoryRepo
	Habits    *HabitRepo
	Goals     *GoalRepo
	Notes     *NoteRepo
	Projects  *ProjectRepo
	Templates *TemplateRepo
	Bookmarks *BookmarkRepo
}

// Option configures a Store.
type Option func(*Store)

// WithNow injects the effective-time source so rows carry drift-corrected
// timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store on the hub's primary backend.
func New(hub *database.Hub, opts ...Option) *Store {
	s := &Store{
		db:  hub.DB(),
		typ: hub.Type(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Users = &UserRepo{s: s}
	s.Lists = &ListRepo{s: s}
	s.Events = &EventRepo{s: s}
	s.Audit = &AuditRepo{s: s}
	s.History = &HistoryRepo{s: s}
	s.Habits = &HabitRepo{s: s}
	s.Goals = &GoalRepo{s: s}
	s.Notes = &NoteRepo{s: s}
	s.Projects = &ProjectRepo{s: s}
	s.Templates = &TemplateRepo{s: s}
	s.Bookmarks = &BookmarkRepo{s: s}
	return s
}

// q rewrites placeholders for the active backend dialect.
func (s *Store) q(query string) string {
	return database.Rebind(s.typ, query)
}

// stamp returns the current effective time formatted for storage.
func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// execer covers *sql.DB and *sql.Tx for audit rows written inside the same
// transaction as the change they describe.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func parseStamp(v string) time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}
