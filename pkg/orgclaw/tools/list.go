package tools

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/llm"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/store"
)

// ListTool manages the user's named lists. The "habitual" action asks the
// parser model for recurring-purchase suggestions based on past list
// activity; "shuffle" picks one open item at random.
type ListTool struct {
	lists  *store.ListRepo
	parser *llm.ParserOps
}

// NewListTool wires the list tool.
func NewListTool(lists *store.ListRepo, parser *llm.ParserOps) *ListTool {
	return &ListTool{lists: lists, parser: parser}
}

func (t *ListTool) Name() string { return "list" }

func (t *ListTool) Description() string {
	return "Manage the user's lists (mercado, tarefas, ...). Items are never edited: feito marks done, remove deletes. 'habitual' suggests items the user buys regularly; 'shuffle' picks one open item at random."
}

func (t *ListTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "string",
				"enum": []string{"add", "list", "remove", "feito", "habitual", "shuffle"},
			},
			"list_name": map[string]any{"type": "string", "description": "target list name"},
			"item":      map[string]any{"type": "string", "description": "item text for add/remove/feito"},
			"items": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "multiple items for add",
			},
		},
		"required": []string{"action", "list_name"},
	}
}

func (t *ListTool) Execute(ctx context.Context, tc Context, args map[string]any) (string, error) {
	name := store.NormalizeName(argString(args, "list_name"))
	if name == "" {
		return "list_name is required", nil
	}

	switch argString(args, "action") {
	case "add":
		return t.add(ctx, tc, name, args)
	case "list":
		return t.show(ctx, tc, name)
	case "remove":
		return t.removeItem(ctx, tc, name, argString(args, "item"))
	case "feito":
		return t.markDone(ctx, tc, name, argString(args, "item"))
	case "habitual":
		return t.habitual(ctx, tc, name)
	case "shuffle":
		return t.shuffle(ctx, tc, name)
	}
	return "unknown action", nil
}

func (t *ListTool) add(ctx context.Context, tc Context, name string, args map[string]any) (string, error) {
	items := argStrings(args, "items")
	if single := strings.TrimSpace(argString(args, "item")); single != "" {
		items = append(items, single)
	}
	if len(items) == 0 {
		return "item is required for add", nil
	}

	list, err := t.lists.Create(ctx, tc.ChatID, name)
	if err != nil {
		return "", err
	}
	added := make([]string, 0, len(items))
	for _, item := range items {
		if _, err := t.lists.AddItem(ctx, list, item); err != nil {
			return "", err
		}
		added = append(added, item)
	}
	return locale.T(tc.Language, "list.item_added", "item", strings.Join(added, ", "), "name", list.Name), nil
}

func (t *ListTool) show(ctx context.Context, tc Context, name string) (string, error) {
	list, err := t.lists.GetByName(ctx, tc.ChatID, name)
	if errors.Is(err, store.ErrNotFound) {
		return locale.T(tc.Language, "list.not_found", "name", name), nil
	}
	if err != nil {
		return "", err
	}
	items, err := t.lists.Items(ctx, list.ID, false)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return locale.T(tc.Language, "list.empty", "name", list.Name), nil
	}
	var b strings.Builder
	b.WriteString(locale.T(tc.Language, "list.header", "name", list.Name))
	for _, it := range items {
		fmt.Fprintf(&b, "\n• %s", it.Text)
	}
	return b.String(), nil
}

// resolveItem matches an item by exact text first, then by prefix.
func (t *ListTool) resolveItem(ctx context.Context, tc Context, name, text string) (*store.List, *store.ListItem, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil, "item is required", nil
	}
	list, err := t.lists.GetByName(ctx, tc.ChatID, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, locale.T(tc.Language, "list.not_found", "name", name), nil
	}
	if err != nil {
		return nil, nil, "", err
	}
	items, err := t.lists.Items(ctx, list.ID, false)
	if err != nil {
		return nil, nil, "", err
	}
	lower := strings.ToLower(text)
	var prefix *store.ListItem
	for _, it := range items {
		itLower := strings.ToLower(it.Text)
		if itLower == lower {
			return list, it, "", nil
		}
		if prefix == nil && strings.HasPrefix(itLower, lower) {
			prefix = it
		}
	}
	if prefix != nil {
		return list, prefix, "", nil
	}
	return nil, nil, locale.T(tc.Language, "list.item_not_found", "name", list.Name), nil
}

func (t *ListTool) markDone(ctx context.Context, tc Context, name, text string) (string, error) {
	_, item, msg, err := t.resolveItem(ctx, tc, name, text)
	if err != nil || msg != "" {
		return msg, err
	}
	if err := t.lists.MarkDone(ctx, tc.ChatID, item); err != nil {
		return "", err
	}
	return locale.T(tc.Language, "list.item_done", "item", item.Text), nil
}

func (t *ListTool) removeItem(ctx context.Context, tc Context, name, text string) (string, error) {
	list, item, msg, err := t.resolveItem(ctx, tc, name, text)
	if err != nil || msg != "" {
		return msg, err
	}
	if err := t.lists.RemoveItem(ctx, tc.ChatID, item); err != nil {
		return "", err
	}
	return locale.T(tc.Language, "list.item_removed", "item", item.Text, "name", list.Name), nil
}

func (t *ListTool) habitual(ctx context.Context, tc Context, name string) (string, error) {
	if t.parser == nil {
		return "habitual suggestions are not available", nil
	}
	list, err := t.lists.GetByName(ctx, tc.ChatID, name)
	if errors.Is(err, store.ErrNotFound) {
		return locale.T(tc.Language, "list.not_found", "name", name), nil
	}
	if err != nil {
		return "", err
	}
	items, err := t.lists.Items(ctx, list.ID, true)
	if err != nil {
		return "", err
	}
	history := make([]string, 0, len(items))
	open := make(map[string]bool)
	for _, it := range items {
		history = append(history, it.Text)
		if !it.Done {
			open[strings.ToLower(it.Text)] = true
		}
	}
	if len(history) == 0 {
		return locale.T(tc.Language, "list.empty", "name", list.Name), nil
	}

	system := "You suggest recurring purchases. Given the full history of a shopping list, reply with up to five items the user buys regularly that are NOT currently open on the list, one per line, no numbering, no commentary. Reply NONE if nothing applies."
	reply, err := t.parser.Answer(ctx, system, strings.Join(history, "\n"))
	if err != nil {
		return "", err
	}
	var suggestions []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-• "))
		if line == "" || strings.EqualFold(line, "NONE") || open[strings.ToLower(line)] {
			continue
		}
		suggestions = append(suggestions, line)
	}
	if len(suggestions) == 0 {
		return locale.T(tc.Language, "list.empty", "name", list.Name), nil
	}
	return strings.Join(suggestions, "\n"), nil
}

func (t *ListTool) shuffle(ctx context.Context, tc Context, name string) (string, error) {
	list, err := t.lists.GetByName(ctx, tc.ChatID, name)
	if errors.Is(err, store.ErrNotFound) {
		return locale.T(tc.Language, "list.not_found", "name", name), nil
	}
	if err != nil {
		return "", err
	}
	items, err := t.lists.Items(ctx, list.ID, false)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return locale.T(tc.Language, "list.empty", "name", list.Name), nil
	}
	return items[rand.Intn(len(items))].Text, nil
}

func argStrings(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
