package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// MaxListNameLen bounds list names; longer names are rejected.
	MaxListNameLen = 128
	// MaxItemTextLen bounds item text.
	MaxItemTextLen = 512
)

// List is a named per-user collection of items.
type List struct {
	ID        int64
	UserID    string
	Name      string
	ProjectID int64
	CreatedAt time.Time
}

// ListItem is one entry of a list. Text is immutable after creation; the
// done flag soft-deletes for the audit trail.
type ListItem struct {
	ID        int64
	ListID    int64
	Text      string
	Done      bool
	Position  int
	CreatedAt time.Time
}

// ListRepo persists lists and their items.
type ListRepo struct {
	s *Store
}

// NormalizeName lowercases and trims a list name for matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Create creates a list, or returns the existing one with the same name.
func (r *ListRepo) Create(ctx context.Context, userID, name string) (*List, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("create list: empty name")
	}
	if len(name) > MaxListNameLen {
		return nil, fmt.Errorf("create list: name longer than %d chars", MaxListNameLen)
	}

	if existing, err := r.GetByName(ctx, userID, name); err == nil {
		return existing, nil
	} else if err != ErrNotFound {
		return nil, err
	}

	now := r.s.stamp()
	res, err := r.s.db.ExecContext(ctx, r.s.q(`
		INSERT INTO lists (user_id, name, created_at) VALUES (?, ?, ?)`),
		userID, name, now)
	if err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}
	id, _ := res.LastInsertId()
	if id == 0 {
		// Postgres drivers do not report LastInsertId; read it back.
		if existing, gerr := r.GetByName(ctx, userID, name); gerr == nil {
			return existing, nil
		}
	}
	return &List{ID: id, UserID: userID, Name: name, CreatedAt: parseStamp(now)}, nil
}

// GetByName resolves a list by normalized name.
func (r *ListRepo) GetByName(ctx context.Context, userID, name string) (*List, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.q(`
		SELECT id, user_id, name, project_id, created_at
		FROM lists WHERE user_id = ? AND name = ?`),
		userID, NormalizeName(name))
	return scanList(row)
}

// Get resolves a list by id.
func (r *ListRepo) Get(ctx context.Context, id int64) (*List, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.q(`
		SELECT id, user_id, name, project_id, created_at FROM lists WHERE id = ?`), id)
	return scanList(row)
}

func scanList(row interface{ Scan(...any) error }) (*List, error) {
	var l List
	var created string
	err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.ProjectID, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan list: %w", err)
	}
	l.CreatedAt = parseStamp(created)
	return &l, nil
}

// ByUser returns all lists of a user.
func (r *ListRepo) ByUser(ctx context.Context, userID string) ([]*List, error) {
	rows, err := r.s.db.QueryContext(ctx, r.s.q(`
		SELECT id, user_id, name, project_id, created_at
		FROM lists WHERE user_id = ? ORDER BY name`), userID)
	if err != nil {
		return nil, fmt.Errorf("lists by user: %w", err)
	}
	defer rows.Close()

	var lists []*List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// AddItem appends an item and writes the audit row in one transaction.
func (r *ListRepo) AddItem(ctx context.Context, list *List, text string) (*ListItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("add item: empty text")
	}
	if len(text) > MaxItemTextLen {
		return nil, fmt.Errorf("add item: text longer than %d chars", MaxItemTextLen)
	}

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("add item: begin: %w", err)
	}
	defer tx.Rollback()

	var pos int
	err = tx.QueryRowContext(ctx,
		r.s.q("SELECT COALESCE(MAX(position), 0) + 1 FROM list_items WHERE list_id = ?"),
		list.ID).Scan(&pos)
	if err != nil {
		return nil, fmt.Errorf("add item: next position: %w", err)
	}

	now := r.s.stamp()
	res, err := tx.ExecContext(ctx, r.s.q(`
		INSERT INTO list_items (list_id, text, position, created_at)
		VALUES (?, ?, ?, ?)`),
		list.ID, text, pos, now)
	if err != nil {
		return nil, fmt.Errorf("add item: insert: %w", err)
	}
	id, _ := res.LastInsertId()

	if err := r.s.Audit.append(ctx, tx, list.UserID, "list_add", map[string]any{
		"list": list.Name, "item": text,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("add item: commit: %w", err)
	}
	return &ListItem{ID: id, ListID: list.ID, Text: text, Position: pos, CreatedAt: parseStamp(now)}, nil
}

// Items returns the items of a list; done items are included only when all
// is set.
func (r *ListRepo) Items(ctx context.Context, listID int64, all bool) ([]*ListItem, error) {
	query := `SELECT id, list_id, text, done, position, created_at
		FROM list_items WHERE list_id = ?`
	if !all {
		query += " AND done = 0"
	}
	query += " ORDER BY position"

	rows, err := r.s.db.QueryContext(ctx, r.s.q(query), listID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*ListItem
	for rows.Next() {
		var it ListItem
		var done int
		var created string
		if err := rows.Scan(&it.ID, &it.ListID, &it.Text, &done, &it.Position, &created); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.Done = done != 0
		it.CreatedAt = parseStamp(created)
		items = append(items, &it)
	}
	return items, rows.Err()
}

// GetItem returns one item by id.
func (r *ListRepo) GetItem(ctx context.Context, itemID int64) (*ListItem, error) {
	var it ListItem
	var done int
	var created string
	err := r.s.db.QueryRowContext(ctx, r.s.q(`
		SELECT id, list_id, text, done, position, created_at
		FROM list_items WHERE id = ?`), itemID).
		Scan(&it.ID, &it.ListID, &it.Text, &done, &it.Position, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	it.Done = done != 0
	it.CreatedAt = parseStamp(created)
	return &it, nil
}

// MarkDone flips an item to done and records the audit row. Item text is
// never touched.
func (r *ListRepo) MarkDone(ctx context.Context, userID string, item *ListItem) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mark done: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		r.s.q("UPDATE list_items SET done = 1 WHERE id = ? AND done = 0"), item.ID)
	if err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := r.s.Audit.append(ctx, tx, userID, "list_feito", map[string]any{
		"item_id": item.ID, "item": item.Text,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mark done: commit: %w", err)
	}
	item.Done = true
	return nil
}

// RemoveItem deletes an item and records the audit row.
func (r *ListRepo) RemoveItem(ctx context.Context, userID string, item *ListItem) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("remove item: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, r.s.q("DELETE FROM list_items WHERE id = ?"), item.ID)
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := r.s.Audit.append(ctx, tx, userID, "list_remove", map[string]any{
		"item_id": item.ID, "item": item.Text,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("remove item: commit: %w", err)
	}
	return nil
}

// Delete removes a list with its items and records the audit row.
func (r *ListRepo) Delete(ctx context.Context, list *List) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete list: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.s.q("DELETE FROM list_items WHERE list_id = ?"), list.ID); err != nil {
		return fmt.Errorf("delete list items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, r.s.q("DELETE FROM lists WHERE id = ?"), list.ID); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	if err := r.s.Audit.append(ctx, tx, list.UserID, "list_delete", map[string]any{
		"list": list.Name,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete list: commit: %w", err)
	}
	return nil
}

// CreateFromTemplate instantiates a template as a new list with its items,
// one transaction end to end.
func (r *ListRepo) CreateFromTemplate(ctx context.Context, userID, listName string, items []string) (*List, error) {
	list, err := r.Create(ctx, userID, listName)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if _, err := r.AddItem(ctx, list, item); err != nil {
			return nil, fmt.Errorf("template item %q: %w", item, err)
		}
	}
	return list, nil
}

// CountOpenItems returns the number of not-done items across all lists of a
// user (used by /pendente and the analytics commands).
func (r *ListRepo) CountOpenItems(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.s.db.QueryRowContext(ctx, r.s.q(`
		SELECT COUNT(*) FROM list_items li
		JOIN lists l ON l.id = li.list_id
		WHERE l.user_id = ? AND li.done = 0`), userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open items: %w", err)
	}
	return n, nil
}

// CountDoneSince returns items completed since the given instant, derived
// from list_feito audit rows.
func (r *ListRepo) CountDoneSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := r.s.db.QueryRowContext(ctx, r.s.q(`
		SELECT COUNT(*) FROM audit_log
		WHERE user_id = ? AND action = 'list_feito' AND created_at >= ?`),
		userID, since.UTC().Format(time.RFC3339)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count done: %w", err)
	}
	return n, nil
}

// ExportJSON renders all lists with items as a JSON document for /exportar.
func (r *ListRepo) ExportJSON(ctx context.Context, userID string) ([]byte, error) {
	lists, err := r.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	type exportItem struct {
		Text string `json:"text"`
		Done bool   `json:"done"`
	}
	type exportList struct {
		Name  string       `json:"name"`
		Items []exportItem `json:"items"`
	}

	out := make([]exportList, 0, len(lists))
	for _, l := range lists {
		items, err := r.Items(ctx, l.ID, true)
		if err != nil {
			return nil, err
		}
		el := exportList{Name: l.Name, Items: make([]exportItem, 0, len(items))}
		for _, it := range items {
			el.Items = append(el.Items, exportItem{Text: it.Text, Done: it.Done})
		}
		out = append(out, el)
	}
	return json.MarshalIndent(out, "", "  ")
}
