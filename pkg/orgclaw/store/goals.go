package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Goal is a longer-horizon objective, optionally dated.
type Goal struct {
	ID        int64
	UserID    string
	Text      string
	Done      bool
	DueAt     *time.Time
	CreatedAt time.Time
}

// GoalRepo persists goals.
type GoalRepo struct {
	s *Store
}

// Add inserts a goal.
func (r *GoalRepo) Add(ctx context.Context, userID, text string, dueAt *time.Time) (*Goal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("add goal: empty text")
	}
	due := ""
	if dueAt != nil {
		due = dueAt.UTC().Format(time.RFC3339)
	}
	now := r.s.stamp()
	res, err := r.s.db.ExecContext(ctx, r.s.q(`
		INSERT INTO goals (user_id, text, due_at, created_at) VALUES (?, ?, ?, ?)`),
		userID, text, due, now)
	if err != nil {
		return nil, fmt.Errorf("add goal: %w", err)
	}
	id, _ := res.LastInsertId()
	return &Goal{ID: id, UserID: userID, Text: text, DueAt: dueAt, CreatedAt: parseStamp(now)}, nil
}

// ByUser returns the user's goals, open ones first.
func (r *GoalRepo) ByUser(ctx context.Context, userID string, includeDone bool) ([]*Goal, error) {
	query := "SELECT id, user_id, text, done, due_at, created_at FROM goals WHERE user_id = ?"
	if !includeDone {
		query += " AND done = 0"
	}
	query += " ORDER BY done, id"

	rows, err := r.s.db.QueryContext(ctx, r.s.q(query), userID)
	if err != nil {
		return nil, fmt.Errorf("goals by user: %w", err)
	}
	defer rows.Close()

	var goals []*Goal
	for rows.Next() {
		var g Goal
		var done int
		var due, created string
		if err := rows.Scan(&g.ID, &g.UserID, &g.Text, &done, &due, &created); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Done = done != 0
		g.CreatedAt = parseStamp(created)
		if due != "" {
			t := parseStamp(due)
			g.DueAt = &t
		}
		goals = append(goals, &g)
	}
	return goals, rows.Err()
}

// MarkDone completes a goal matched by text prefix. Returns the completed
// goal so the caller can echo its text.
func (r *GoalRepo) MarkDone(ctx context.Context, userID, text string) (*Goal, error) {
	goals, err := r.ByUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, g := range goals {
		if strings.HasPrefix(strings.ToLower(g.Text), lower) {
			res, err := r.s.db.ExecContext(ctx,
				r.s.q("UPDATE goals SET done = 1 WHERE id = ? AND done = 0"), g.ID)
			if err != nil {
				return nil, fmt.Errorf("goal done: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return nil, ErrNotFound
			}
			g.Done = true
			return g, nil
		}
	}
	return nil, ErrNotFound
}
