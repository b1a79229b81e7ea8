package store

import (
	"context"
	"fmt"
	"time"
)

// Reminder-history kinds.
const (
	HistoryScheduled = "scheduled"
	HistoryDelivered = "delivered"
	HistorySnoozed   = "snoozed"
	HistoryCompleted = "completed"
	HistoryCancelled = "cancelled"
	HistoryFailed    = "failed"
)

// HistoryEntry is one row of the per-user scheduling/delivery log.
type HistoryEntry struct {
	ID        int64
	UserID    string
	JobID     string
	Kind      string
	Detail    string
	CreatedAt time.Time
}

// HistoryRepo writes and reads the append-only reminder history.
type HistoryRepo struct {
	s *Store
}

// Append records a scheduling or delivery event.
func (r *HistoryRepo) Append(ctx context.Context, userID, jobID, kind, detail string) error {
	_, err := r.s.db.ExecContext(ctx, r.s.q(`
		INSERT INTO reminder_history (user_id, job_id, kind, detail, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		userID, jobID, kind, detail, r.s.stamp())
	if err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// Recent returns the newest entries for a user, most recent first.
func (r *HistoryRepo) Recent(ctx context.Context, userID string, limit int) ([]*HistoryEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := r.s.db.QueryContext(ctx, r.s.q(`
		SELECT id, user_id, job_id, kind, detail, created_at
		FROM reminder_history WHERE user_id = ?
		ORDER BY id DESC LIMIT ?`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var entries []*HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var created string
		if err := rows.Scan(&e.ID, &e.UserID, &e.JobID, &e.Kind, &e.Detail, &created); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.CreatedAt = parseStamp(created)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// CountKindSince counts rows of one kind since the given instant.
func (r *HistoryRepo) CountKindSince(ctx context.Context, userID, kind string, since time.Time) (int, error) {
	var n int
	err := r.s.db.QueryRowContext(ctx, r.s.q(`
		SELECT COUNT(*) FROM reminder_history
		WHERE user_id = ? AND kind = ? AND created_at >= ?`),
		userID, kind, since.UTC().Format(time.RFC3339)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("history: count kind: %w", err)
	}
	return n, nil
}
