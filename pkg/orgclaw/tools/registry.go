// Package tools is the structured capability surface the assistant model
// can invoke: cron, list, event, read_file, search and message. Every tool
// validates its argument record at the boundary, runs against the current
// chat's context, and returns a plain-text result the agent loop feeds back
// to the model.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/llm"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
)

// Context carries the per-turn chat identity every tool call runs under.
// The agent loop wires it before each turn; tools must never act on another
// chat except through the message tool.
type Context struct {
	Channel        string
	ChatID         string
	PhoneForLocale string
	Language       locale.Language
	Location       *time.Location
}

// Tool is one callable capability.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, tc Context, args map[string]any) (string, error)
}

// Registry holds the tools and their schema for the assistant call.
type Registry struct {
	tools  map[string]Tool
	order  []string
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger.With("component", "tools"),
	}
}

// Register adds a tool. Later registrations with the same name replace.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Definitions returns the tool schema for the chat request.
func (r *Registry) Definitions() []llm.ToolDefinition {
	out := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, llm.ToolDefinition{
			Type: "function",
			Function: llm.FunctionDef{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return out
}

// Execute dispatches one tool call. Errors become plain-text results so the
// model can recover; they are never surfaced to the user directly.
func (r *Registry) Execute(ctx context.Context, tc Context, call llm.ToolCall) string {
	t, ok := r.tools[call.Function.Name]
	if !ok {
		return fmt.Sprintf("unknown tool %q", call.Function.Name)
	}
	args, err := call.Function.DecodeArguments()
	if err != nil {
		return fmt.Sprintf("invalid arguments: %v", err)
	}
	result, err := t.Execute(ctx, tc, args)
	if err != nil {
		r.logger.Warn("tool execution failed", "tool", t.Name(), "error", err)
		return fmt.Sprintf("error: %v", err)
	}
	return result
}

// ---------- argument helpers ----------

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func argInt64(args map[string]any, key string) int64 {
	switch v := args[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}
