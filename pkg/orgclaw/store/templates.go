package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ListTemplate is a named, reusable set of list items.
type ListTemplate struct {
	ID        int64
	UserID    string
	Name      string
	Items     []string
	CreatedAt time.Time
}

// TemplateRepo persists list templates.
type TemplateRepo struct {
	s *Store
}

// Save stores a template, replacing an existing one with the same name.
func (r *TemplateRepo) Save(ctx context.Context, userID, name string, items []string) (*ListTemplate, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("save template: empty name")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("save template: no items")
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("save template: marshal: %w", err)
	}

	if _, err := r.s.db.ExecContext(ctx,
		r.s.q("DELETE FROM list_templates WHERE user_id = ? AND name = ?"),
		userID, name); err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	now := r.s.stamp()
	res, err := r.s.db.ExecContext(ctx, r.s.q(`
		INSERT INTO list_templates (user_id, name, items, created_at) VALUES (?, ?, ?, ?)`),
		userID, name, string(raw), now)
	if err != nil {
		return nil, fmt.Errorf("save template: insert: %w", err)
	}
	id, _ := res.LastInsertId()
	return &ListTemplate{ID: id, UserID: userID, Name: name, Items: items, CreatedAt: parseStamp(now)}, nil
}

// GetByName resolves a template by normalized name.
func (r *TemplateRepo) GetByName(ctx context.Context, userID, name string) (*ListTemplate, error) {
	var t ListTemplate
	var items, created string
	err := r.s.db.QueryRowContext(ctx, r.s.q(`
		SELECT id, user_id, name, items, created_at
		FROM list_templates WHERE user_id = ? AND name = ?`),
		userID, NormalizeName(name)).
		Scan(&t.ID, &t.UserID, &t.Name, &items, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	t.CreatedAt = parseStamp(created)
	if err := json.Unmarshal([]byte(items), &t.Items); err != nil {
		t.Items = nil
	}
	return &t, nil
}

// ByUser returns all templates of a user.
func (r *TemplateRepo) ByUser(ctx context.Context, userID string) ([]*ListTemplate, error) {
	rows, err := r.s.db.QueryContext(ctx, r.s.q(`
		SELECT id, user_id, name, items, created_at
		FROM list_templates WHERE user_id = ? ORDER BY name`), userID)
	if err != nil {
		return nil, fmt.Errorf("templates by user: %w", err)
	}
	defer rows.Close()

	var templates []*ListTemplate
	for rows.Next() {
		var t ListTemplate
		var items, created string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &items, &created); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.CreatedAt = parseStamp(created)
		if err := json.Unmarshal([]byte(items), &t.Items); err != nil {
			t.Items = nil
		}
		templates = append(templates, &t)
	}
	return templates, rows.Err()
}

// Delete removes a template by name.
func (r *TemplateRepo) Delete(ctx context.Context, userID, name string) error {
	res, err := r.s.db.ExecContext(ctx,
		r.s.q("DELETE FROM list_templates WHERE user_id = ? AND name = ?"),
		userID, NormalizeName(name))
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
