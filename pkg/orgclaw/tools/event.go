package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/store"
)

// EventTool manages dated calendar entries and the typed collections
// (filme, livro, musica, receita). Type "evento" always carries an absolute
// instant; the model must never pass a relative phrase as the date.
type EventTool struct {
	events *store.EventRepo
}

// NewEventTool wires the event tool.
func NewEventTool(events *store.EventRepo) *EventTool {
	return &EventTool{events: events}
}

func (t *EventTool) Name() string { return "event" }

func (t *EventTool) Description() string {
	return "Manage events and typed collections. Types: evento (requires start_at), filme, livro, musica, receita. start_at must be an absolute RFC3339 instant in the user's timezone."
}

func (t *EventTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []string{"add", "list", "remove"},
			},
			"type": map[string]any{
				"type": "string",
				"enum": []string{"evento", "filme", "livro", "musica", "receita"},
			},
			"nome":     map[string]any{"type": "string", "description": "display name of the entry"},
			"start_at": map[string]any{"type": "string", "description": "RFC3339 instant, required for evento"},
			"details":  map[string]any{"type": "string", "description": "optional free-form detail"},
			"event_id": map[string]any{"type": "integer", "description": "id for remove"},
		},
		"required": []string{"action", "type"},
	}
}

func (t *EventTool) Execute(ctx context.Context, tc Context, args map[string]any) (string, error) {
	typ := argString(args, "type")
	switch argString(args, "action") {
	case "add":
		return t.add(ctx, tc, typ, args)
	case "list":
		return t.list(ctx, tc, typ)
	case "remove":
		id := argInt64(args, "event_id")
		if id == 0 {
			return "event_id is required for remove", nil
		}
		ev, err := t.events.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) || (err == nil && ev.UserID != tc.ChatID) {
			return locale.T(tc.Language, "event.not_found"), nil
		}
		if err != nil {
			return "", err
		}
		err = t.events.Remove(ctx, tc.ChatID, id)
		if errors.Is(err, store.ErrNotFound) {
			return locale.T(tc.Language, "event.not_found"), nil
		}
		if err != nil {
			return "", err
		}
		return locale.T(tc.Language, "event.removed", "nome", ev.Name()), nil
	}
	return "unknown action", nil
}

func (t *EventTool) add(ctx context.Context, tc Context, typ string, args map[string]any) (string, error) {
	nome := strings.TrimSpace(argString(args, "nome"))
	if nome == "" {
		return "nome is required", nil
	}

	var startAt *time.Time
	if raw := strings.TrimSpace(argString(args, "start_at")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return "start_at must be RFC3339, e.g. 2026-08-30T15:00:00-03:00", nil
		}
		startAt = &parsed
	}
	if typ == store.EventTypeEvento && startAt == nil {
		return locale.T(tc.Language, "event.requires_date"), nil
	}

	payload := map[string]any{"nome": nome}
	if details := strings.TrimSpace(argString(args, "details")); details != "" {
		payload["details"] = details
	}

	if _, err := t.events.Add(ctx, tc.ChatID, typ, payload, startAt); err != nil {
		return "", err
	}
	return locale.T(tc.Language, "event.added", "tipo", capitalize(typ), "nome", nome), nil
}

func (t *EventTool) list(ctx context.Context, tc Context, typ string) (string, error) {
	events, err := t.events.ByUser(ctx, tc.ChatID, typ)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return locale.T(tc.Language, "event.list_empty"), nil
	}
	loc := tc.Location
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	b.WriteString(locale.T(tc.Language, "event.list_header"))
	for _, ev := range events {
		b.WriteString("\n")
		if ev.StartAt != nil {
			fmt.Fprintf(&b, "• [%d] %s — %s", ev.ID, ev.Name(), locale.FormatDateTime(tc.Language, ev.StartAt.In(loc)))
		} else {
			fmt.Fprintf(&b, "• [%d] %s", ev.ID, ev.Name())
		}
	}
	return b.String(), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
