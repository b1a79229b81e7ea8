package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Habit is a recurring practice checked at most once per day.
type Habit struct {
	ID        int64
	UserID    string
	Name      string
	Archived  bool
	CreatedAt time.Time
}

// HabitRepo persists habits and their daily checks.
type HabitRepo struct {
	s *Store
}

// Create registers a habit, or returns the existing one with the same name.
func (r *HabitRepo) Create(ctx context.Context, userID, name string) (*Habit, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("create habit: empty name")
	}
	if existing, err := r.GetByName(ctx, userID, name); err == nil {
		return existing, nil
	} else if err != ErrNotFound {
		return nil, err
	}

	now := r.s.stamp()
	res, err := r.s.db.ExecContext(ctx, r.s.q(`
		INSERT INTO habits (user_id, name, created_at) VALUES (?, ?, ?)`),
		userID, name, now)
	if err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	id, _ := res.LastInsertId()
	if id == 0 {
		if existing, gerr := r.GetByName(ctx, userID, name); gerr == nil {
			return existing, nil
		}
	}
	return &Habit{ID: id, UserID: userID, Name: name, CreatedAt: parseStamp(now)}, nil
}

// GetByName resolves a habit by normalized name.
func (r *HabitRepo) GetByName(ctx context.Context, userID, name string) (*Habit, error) {
	var h Habit
	var archived int
	var created string
	err := r.s.db.QueryRowContext(ctx, r.s.q(`
		SELECT id, user_id, name, archived, created_at
		FROM habits WHERE user_id = ? AND name = ?`),
		userID, NormalizeName(name)).
		Scan(&h.ID, &h.UserID, &h.Name, &archived, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}
	h.Archived = archived != 0
	h.CreatedAt = parseStamp(created)
	return &h, nil
}

// ByUser returns the user's non-archived habits.
func (r *HabitRepo) ByUser(ctx context.Context, userID string) ([]*Habit, error) {
	rows, err := r.s.db.QueryContext(ctx, r.s.q(`
		SELECT id, user_id, name, archived, created_at
		FROM habits WHERE user_id = ? AND archived = 0 ORDER BY name`), userID)
	if err != nil {
		return nil, fmt.Errorf("habits by user: %w", err)
	}
	defer rows.Close()

	var habits []*Habit
	for rows.Next() {
		var h Habit
		var archived int
		var created string
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &archived, &created); err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		h.Archived = archived != 0
		h.CreatedAt = parseStamp(created)
		habits = append(habits, &h)
	}
	return habits, rows.Err()
}

// Check marks the habit done for the given local day. A second check on the
// same day is a no-op; the UNIQUE constraint guarantees at most one row.
func (r *HabitRepo) Check(ctx context.Context, habit *Habit, day time.Time) error {
	dayKey := day.Format("2006-01-02")
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("check habit: begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		r.s.q("SELECT COUNT(*) FROM habit_checks WHERE habit_id = ? AND day = ?"),
		habit.ID, dayKey).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check habit: %w", err)
	}
	if exists > 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx, r.s.q(`
		INSERT INTO habit_checks (habit_id, day, created_at) VALUES (?, ?, ?)`),
		habit.ID, dayKey, r.s.stamp()); err != nil {
		return fmt.Errorf("check habit: insert: %w", err)
	}

	if err := r.s.Audit.append(ctx, tx, habit.UserID, "habit_check", map[string]any{
		"habit": habit.Name, "day": dayKey,
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("check habit: commit: %w", err)
	}
	return nil
}

// Streak counts consecutive checked days ending today (or yesterday, when
// today is not yet checked).
func (r *HabitRepo) Streak(ctx context.Context, habitID int64, today time.Time) (int, error) {
	rows, err := r.s.db.QueryContext(ctx, r.s.q(`
		SELECT day FROM habit_checks WHERE habit_id = ? ORDER BY day DESC LIMIT 366`),
		habitID)
	if err != nil {
		return 0, fmt.Errorf("habit streak: %w", err)
	}
	defer rows.Close()

	checked := make(map[string]bool)
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return 0, fmt.Errorf("scan check: %w", err)
		}
		checked[day] = true
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	day := today
	if !checked[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for checked[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}

// Archive hides a habit from listings without losing its check history.
func (r *HabitRepo) Archive(ctx context.Context, userID string, habitID int64) error {
	res, err := r.s.db.ExecContext(ctx,
		r.s.q("UPDATE habits SET archived = 1 WHERE id = ? AND user_id = ?"),
		habitID, userID)
	if err != nil {
		return fmt.Errorf("archive habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
