package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// AuditEntry is one append-only record of a mutating action.
type AuditEntry struct {
	ID        int64
	UserID    string
	Action    string
	Payload   map[string]any
	CreatedAt time.Time
}

// AuditRepo writes and reads the append-only audit log.
type AuditRepo struct {
	s *Store
}

// Append records an action outside any transaction.
func (r *AuditRepo) Append(ctx context.Context, userID, action string, payload map[string]any) error {
	return r.append(ctx, r.s.db, userID, action, payload)
}

// append writes through the given execer so callers can bundle the audit row
// with the mutation it describes.
func (r *AuditRepo) append(ctx context.Context, ex execer, userID, action string, payload map[string]any) error {
	raw := []byte("{}")
	if payload != nil {
		var err error
		if raw, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("audit: marshal payload: %w", err)
		}
	}
	_, err := ex.ExecContext(ctx, r.s.q(`
		INSERT INTO audit_log (user_id, action, payload, created_at)
		VALUES (?, ?, ?, ?)`),
		userID, action, string(raw), r.s.stamp())
	if err != nil {
		return fmt.Errorf("audit: append: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (r *AuditRepo) Recent(ctx context.Context, limit int) ([]*AuditEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := r.s.db.QueryContext(ctx, r.s.q(`
		SELECT id, user_id, action, payload, created_at
		FROM audit_log ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("audit: recent: %w", err)
	}
	defer rows.Close()

	var entries []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		var payload, created string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &payload, &created); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
			e.Payload = map[string]any{}
		}
		e.CreatedAt = parseStamp(created)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// HasMarker reports whether a row with the given action and marker value
// exists for the user. Recap delivery uses markers like period "2026-W08" to
// stay idempotent.
func (r *AuditRepo) HasMarker(ctx context.Context, userID, action, marker string) (bool, error) {
	raw, err := json.Marshal(map[string]any{"period": marker})
	if err != nil {
		return false, err
	}
	var n int
	err = r.s.db.QueryRowContext(ctx, r.s.q(`
		SELECT COUNT(*) FROM audit_log
		WHERE user_id = ? AND action = ? AND payload = ?`),
		userID, action, string(raw)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("audit: has marker: %w", err)
	}
	return n > 0, nil
}

// WriteMarker records an idempotency marker row.
func (r *AuditRepo) WriteMarker(ctx context.Context, userID, action, marker string) error {
	return r.Append(ctx, userID, action, map[string]any{"period": marker})
}

// CountActionSince counts rows of one action for a user since the instant.
func (r *AuditRepo) CountActionSince(ctx context.Context, userID, action string, since time.Time) (int, error) {
	var n int
	err := r.s.db.QueryRowContext(ctx, r.s.q(`
		SELECT COUNT(*) FROM audit_log
		WHERE user_id = ? AND action = ? AND created_at >= ?`),
		userID, action, since.UTC().Format(time.RFC3339)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("audit: count action: %w", err)
	}
	return n, nil
}
