package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Note is a free-form text snippet.
type Note struct {
	ID        int64
	UserID    string
	Text      string
	CreatedAt time.Time
}

// NoteRepo persists notes.
type NoteRepo struct {
	s *Store
}

// Add inserts a note.
func (r *NoteRepo) Add(ctx context.Context, userID, text string) (*Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("add note: empty text")
	}
	now := r.s.stamp()
	res, err := r.s.db.ExecContext(ctx, r.s.q(`
		INSERT INTO notes (user_id, text, created_at) VALUES (?, ?, ?)`),
		userID, text, now)
	if err != nil {
		return nil, fmt.Errorf("add note: %w", err)
	}
	id, _ := res.LastInsertId()
	return &Note{ID: id, UserID: userID, Text: text, CreatedAt: parseStamp(now)}, nil
}

// Recent returns the newest notes first.
func (r *NoteRepo) Recent(ctx context.Context, userID string, limit int) ([]*Note, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.s.db.QueryContext(ctx, r.s.q(`
		SELECT id, user_id, text, created_at FROM notes
		WHERE user_id = ? ORDER BY id DESC LIMIT ?`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent notes: %w", err)
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		var n Note
		var created string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Text, &created); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.CreatedAt = parseStamp(created)
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

// Search returns notes containing the query, newest first.
func (r *NoteRepo) Search(ctx context.Context, userID, query string, limit int) ([]*Note, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.s.db.QueryContext(ctx, r.s.q(`
		SELECT id, user_id, text, created_at FROM notes
		WHERE user_id = ? AND text LIKE ? ORDER BY id DESC LIMIT ?`),
		userID, "%"+strings.TrimSpace(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		var n Note
		var created string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Text, &created); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.CreatedAt = parseStamp(created)
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}
