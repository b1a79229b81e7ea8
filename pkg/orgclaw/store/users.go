package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// User is an end-user record keyed by hashed phone number. Only the user
// themselves can mutate it, and it is never deleted by the system.
type User struct {
	ID         string
	PhoneHint  string
	Name       string
	Language   string
	Timezone   string
	City       string
	QuietStart string
	QuietEnd   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Location resolves the user's timezone, falling back to UTC.
func (u *User) Location() *time.Location {
	if u.Timezone != "" {
		if loc, err := time.LoadLocation(u.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

// UserRepo persists users.
type UserRepo struct {
	s *Store
}

const userColumns = "id, phone_hint, name, language, timezone, city, quiet_start, quiet_end, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var created, updated string
	err := row.Scan(&u.ID, &u.PhoneHint, &u.Name, &u.Language, &u.Timezone,
		&u.City, &u.QuietStart, &u.QuietEnd, &created, &updated)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseStamp(created)
	u.UpdatedAt = parseStamp(updated)
	return &u, nil
}

// Get returns the user or ErrNotFound.
func (r *UserRepo) Get(ctx context.Context, id string) (*User, error) {
	row := r.s.db.QueryRowContext(ctx,
		r.s.q("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetOrCreate fetches the user, lazily creating the record on first contact
// with the given defaults. The second return reports whether a row was
// created.
func (r *UserRepo) GetOrCreate(ctx context.Context, id, phoneHint, language, timezone string) (*User, bool, error) {
	u, err := r.Get(ctx, id)
	if err == nil {
		return u, false, nil
	}
	if err != ErrNotFound {
		return nil, false, err
	}

	now := r.s.stamp()
	_, err = r.s.db.ExecContext(ctx, r.s.q(`
		INSERT INTO users (id, phone_hint, language, timezone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		id, phoneHint, language, timezone, now, now)
	if err != nil {
		// Lost a race with a concurrent first contact; read the winner.
		if u, gerr := r.Get(ctx, id); gerr == nil {
			return u, false, nil
		}
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	u, err = r.Get(ctx, id)
	return u, true, err
}

// Save updates the user's mutable fields.
func (r *UserRepo) Save(ctx context.Context, u *User) error {
	_, err := r.s.db.ExecContext(ctx, r.s.q(`
		UPDATE users
		SET phone_hint = ?, name = ?, language = ?, timezone = ?, city = ?,
		    quiet_start = ?, quiet_end = ?, updated_at = ?
		WHERE id = ?`),
		u.PhoneHint, u.Name, u.Language, u.Timezone, u.City,
		u.QuietStart, u.QuietEnd, r.s.stamp(), u.ID)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Reset clears the optional fields (display name, city, quiet window).
// Language and timezone survive so scheduling keeps working.
func (r *UserRepo) Reset(ctx context.Context, id string) error {
	_, err := r.s.db.ExecContext(ctx, r.s.q(`
		UPDATE users
		SET name = '', city = '', quiet_start = '', quiet_end = '', updated_at = ?
		WHERE id = ?`),
		r.s.stamp(), id)
	if err != nil {
		return fmt.Errorf("reset user: %w", err)
	}
	return nil
}

// All returns every user, ordered by creation.
func (r *UserRepo) All(ctx context.Context) ([]*User, error) {
	rows, err := r.s.db.QueryContext(ctx,
		r.s.q("SELECT "+userColumns+" FROM users ORDER BY created_at"))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Count returns the number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
