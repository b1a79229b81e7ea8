package store

import (
	"context"
	"fmt"
)

// PurgeUser hard-deletes every collection a user owns: lists, items, events,
// habits and checks, goals, notes, projects, templates and bookmarks. The
// audit log is kept (it records the purge itself) and the user row survives
// so preferences are untouched.
func (s *Store) PurgeUser(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("purge: begin: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM list_items WHERE list_id IN (SELECT id FROM lists WHERE user_id = ?)`,
		`DELETE FROM lists WHERE user_id = ?`,
		`DELETE FROM events WHERE user_id = ?`,
		`DELETE FROM habit_checks WHERE habit_id IN (SELECT id FROM habits WHERE user_id = ?)`,
		`DELETE FROM habits WHERE user_id = ?`,
		`DELETE FROM goals WHERE user_id = ?`,
		`DELETE FROM notes WHERE user_id = ?`,
		`DELETE FROM projects WHERE user_id = ?`,
		`DELETE FROM list_templates WHERE user_id = ?`,
		`DELETE FROM bookmarks WHERE user_id = ?`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, s.q(stmt), userID); err != nil {
			return fmt.Errorf("purge: %w", err)
		}
	}

	if err := s.Audit.append(ctx, tx, userID, "delete_all", nil); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("purge: commit: %w", err)
	}
	return nil
}
