package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Project statuses.
const (
	ProjectActive   = "active"
	ProjectArchived = "archived"
)

// Project groups lists under one named effort.
type Project struct {
	ID        int64
	UserID    string
	Name      string
	Status    string
	CreatedAt time.Time
}

// ProjectRepo persists projects.
type ProjectRepo struct {
	s *Store
}

// Create creates a project, or returns the existing one with the same name.
func (r *ProjectRepo) Create(ctx context.Context, userID, name string) (*Project, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("create project: empty name")
	}
	if existing, err := r.GetByName(ctx, userID, name); err == nil {
		return existing, nil
	} else if err != ErrNotFound {
		return nil, err
	}

	now := r.s.stamp()
	res, err := r.s.db.ExecContext(ctx, r.s.q(`
		INSERT INTO projects (user_id, name, status, created_at) VALUES (?, ?, ?, ?)`),
		userID, name, ProjectActive, now)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	id, _ := res.LastInsertId()
	if id == 0 {
		if existing, gerr := r.GetByName(ctx, userID, name); gerr == nil {
			return existing, nil
		}
	}
	return &Project{ID: id, UserID: userID, Name: name, Status: ProjectActive, CreatedAt: parseStamp(now)}, nil
}

// GetByName resolves a project by normalized name.
func (r *ProjectRepo) GetByName(ctx context.Context, userID, name string) (*Project, error) {
	var p Project
	var created string
	err := r.s.db.QueryRowContext(ctx, r.s.q(`
		SELECT id, user_id, name, status, created_at
		FROM projects WHERE user_id = ? AND name = ?`),
		userID, NormalizeName(name)).
		Scan(&p.ID, &p.UserID, &p.Name, &p.Status, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	p.CreatedAt = parseStamp(created)
	return &p, nil
}

// ByUser returns the user's active projects.
func (r *ProjectRepo) ByUser(ctx context.Context, userID string) ([]*Project, error) {
	rows, err := r.s.db.QueryContext(ctx, r.s.q(`
		SELECT id, user_id, name, status, created_at
		FROM projects WHERE user_id = ? AND status = ? ORDER BY name`),
		userID, ProjectActive)
	if err != nil {
		return nil, fmt.Errorf("projects by user: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		var p Project
		var created string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Status, &created); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.CreatedAt = parseStamp(created)
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// Archive marks a project archived; its lists keep their project_id.
func (r *ProjectRepo) Archive(ctx context.Context, userID string, projectID int64) error {
	res, err := r.s.db.ExecContext(ctx,
		r.s.q("UPDATE projects SET status = ? WHERE id = ? AND user_id = ?"),
		ProjectArchived, projectID, userID)
	if err != nil {
		return fmt.Errorf("archive project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignList links a list to a project.
func (r *ProjectRepo) AssignList(ctx context.Context, userID string, listID, projectID int64) error {
	res, err := r.s.db.ExecContext(ctx, r.s.q(`
		UPDATE lists SET project_id = ? WHERE id = ? AND user_id = ?`),
		projectID, listID, userID)
	if err != nil {
		return fmt.Errorf("assign list: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
