package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Event types. Type "evento" is a dated calendar entry; the others are
// typed collections where the date is optional.
const (
	EventTypeEvento  = "evento"
	EventTypeFilme   = "filme"
	EventTypeLivro   = "livro"
	EventTypeMusica  = "musica"
	EventTypeReceita = "receita"
)

var validEventTypes = map[string]bool{
	EventTypeEvento:  true,
	EventTypeFilme:   true,
	EventTypeLivro:   true,
	EventTypeMusica:  true,
	EventTypeReceita: true,
}

// Event belongs to one user. Payload is free-form JSON carrying at least a
// "nome" key. Deleted is a soft flag.
type Event struct {
	ID        int64
	UserID    string
	Type      string
	Payload   map[string]any
	StartAt   *time.Time
	Deleted   bool
	CreatedAt time.Time
}

// Name returns the payload "nome", the event's display name.
func (e *Event) Name() string {
	if v, ok := e.Payload["nome"].(string); ok {
		return v
	}
	return ""
}

// EventRepo persists events.
type EventRepo struct {
	s *Store
}

// Add inserts an event with its audit row in one transaction. Events of
// type "evento" must carry an absolute instant.
func (r *EventRepo) Add(ctx context.Context, userID, typ string, payload map[string]any, startAt *time.Time) (*Event, error) {
	if !validEventTypes[typ] {
		return nil, fmt.Errorf("add event: unknown type %q", typ)
	}
	if typ == EventTypeEvento && startAt == nil {
		return nil, fmt.Errorf("add event: type evento requires a date")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if _, ok := payload["nome"]; !ok {
		return nil, fmt.Errorf("add event: payload missing nome")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("add event: marshal payload: %w", err)
	}

	start := ""
	if startAt != nil {
		start = startAt.UTC().Format(time.RFC3339)
	}

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("add event: begin: %w", err)
	}
	defer tx.Rollback()

	now := r.s.stamp()
	res, err := tx.ExecContext(ctx, r.s.q(`
		INSERT INTO events (user_id, type, payload, start_at, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		userID, typ, string(raw), start, now)
	if err != nil {
		return nil, fmt.Errorf("add event: insert: %w", err)
	}
	id, _ := res.LastInsertId()

	if err := r.s.Audit.append(ctx, tx, userID, "event_add", map[string]any{
		"type": typ, "nome": payload["nome"], "start_at": start,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("add event: commit: %w", err)
	}

	return &Event{
		ID: id, UserID: userID, Type: typ, Payload: payload,
		StartAt: startAt, CreatedAt: parseStamp(now),
	}, nil
}

const eventColumns = "id, user_id, type, payload, start_at, deleted, created_at"

func scanEvent(row interface{ Scan(...any) error }) (*Event, error) {
	var e Event
	var payload, start, created string
	var deleted int
	err := row.Scan(&e.ID, &e.UserID, &e.Type, &payload, &start, &deleted, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	e.Deleted = deleted != 0
	e.CreatedAt = parseStamp(created)
	if start != "" {
		t := parseStamp(start)
		e.StartAt = &t
	}
	if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
		e.Payload = map[string]any{}
	}
	return &e, nil
}

// Get returns one event by id.
func (r *EventRepo) Get(ctx context.Context, id int64) (*Event, error) {
	row := r.s.db.QueryRowContext(ctx,
		r.s.q("SELECT "+eventColumns+" FROM events WHERE id = ?"), id)
	return scanEvent(row)
}

// ByUser returns a user's events of the given type ("" for all), excluding
// soft-deleted rows.
func (r *EventRepo) ByUser(ctx context.Context, userID, typ string) ([]*Event, error) {
	query := "SELECT " + eventColumns + " FROM events WHERE user_id = ? AND deleted = 0"
	args := []any{userID}
	if typ != "" {
		query += " AND type = ?"
		args = append(args, typ)
	}
	query += " ORDER BY CASE WHEN start_at = '' THEN 1 ELSE 0 END, start_at, id"

	rows, err := r.s.db.QueryContext(ctx, r.s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("events by user: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Between returns dated events within [from, to), excluding deleted ones.
func (r *EventRepo) Between(ctx context.Context, userID string, from, to time.Time) ([]*Event, error) {
	rows, err := r.s.db.QueryContext(ctx, r.s.q(`
		SELECT `+eventColumns+` FROM events
		WHERE user_id = ? AND deleted = 0 AND start_at != ''
		  AND start_at >= ? AND start_at < ?
		ORDER BY start_at`),
		userID, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("events between: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEventsOnDay counts active dated events within [dayStart, dayEnd).
// Quota checks call this before creation.
func (r *EventRepo) CountEventsOnDay(ctx context.Context, userID string, dayStart, dayEnd time.Time) (int, error) {
	var n int
	err := r.s.db.QueryRowContext(ctx, r.s.q(`
		SELECT COUNT(*) FROM events
		WHERE user_id = ? AND deleted = 0 AND start_at != ''
		  AND start_at >= ? AND start_at < ?`),
		userID, dayStart.UTC().Format(time.RFC3339), dayEnd.UTC().Format(time.RFC3339)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events on day: %w", err)
	}
	return n, nil
}

// Remove soft-deletes an event and records the audit row.
func (r *EventRepo) Remove(ctx context.Context, userID string, id int64) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("remove event: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		r.s.q("UPDATE events SET deleted = 1 WHERE id = ? AND user_id = ? AND deleted = 0"),
		id, userID)
	if err != nil {
		return fmt.Errorf("remove event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := r.s.Audit.append(ctx, tx, userID, "event_remove", map[string]any{
		"event_id": id,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("remove event: commit: %w", err)
	}
	return nil
}
