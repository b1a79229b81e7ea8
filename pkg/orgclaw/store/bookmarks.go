package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Bookmark is a saved link with optional title and tags.
type Bookmark struct {
	ID        int64
	UserID    string
	URL       string
	Title     string
	Tags      string
	CreatedAt time.Time
}

// BookmarkRepo persists bookmarks.
type BookmarkRepo struct {
	s *Store
}

// Save stores a bookmark.
func (r *BookmarkRepo) Save(ctx context.Context, userID, url, title, tags string) (*Bookmark, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("save bookmark: empty url")
	}
	now := r.s.stamp()
	res, err := r.s.db.ExecContext(ctx, r.s.q(`
		INSERT INTO bookmarks (user_id, url, title, tags, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		userID, url, strings.TrimSpace(title), strings.TrimSpace(tags), now)
	if err != nil {
		return nil, fmt.Errorf("save bookmark: %w", err)
	}
	id, _ := res.LastInsertId()
	return &Bookmark{
		ID: id, UserID: userID, URL: url, Title: title, Tags: tags,
		CreatedAt: parseStamp(now),
	}, nil
}

// ByUser returns the user's bookmarks, newest first.
func (r *BookmarkRepo) ByUser(ctx context.Context, userID string, limit int) ([]*Bookmark, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.s.db.QueryContext(ctx, r.s.q(`
		SELECT id, user_id, url, title, tags, created_at
		FROM bookmarks WHERE user_id = ? ORDER BY id DESC LIMIT ?`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("bookmarks by user: %w", err)
	}
	defer rows.Close()
	return scanBookmarks(rows)
}

// Search returns bookmarks whose url, title or tags contain the query.
func (r *BookmarkRepo) Search(ctx context.Context, userID, query string, limit int) ([]*Bookmark, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + strings.TrimSpace(query) + "%"
	rows, err := r.s.db.QueryContext(ctx, r.s.q(`
		SELECT id, user_id, url, title, tags, created_at
		FROM bookmarks
		WHERE user_id = ? AND (url LIKE ? OR title LIKE ? OR tags LIKE ?)
		ORDER BY id DESC LIMIT ?`),
		userID, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search bookmarks: %w", err)
	}
	defer rows.Close()
	return scanBookmarks(rows)
}

func scanBookmarks(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]*Bookmark, error) {
	var bookmarks []*Bookmark
	for rows.Next() {
		var b Bookmark
		var created string
		if err := rows.Scan(&b.ID, &b.UserID, &b.URL, &b.Title, &b.Tags, &created); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		b.CreatedAt = parseStamp(created)
		bookmarks = append(bookmarks, &b)
	}
	return bookmarks, rows.Err()
}
