// Package llm abstracts the two chat-model profiles the organizer uses: a
// cheap "parser" model for judgements and extraction, and a richer
// "assistant" model for tool-calling turns. Providers speak the
// OpenAI-compatible chat wire; errors are classified into kinds that drive
// the circuit breaker and the parser-profile fallback.
package llm

import (
	"context"
	"encoding/json"
	"time"
)

// Profile selects the model tier for a call.
type Profile string

const (
	// ProfileParser is the cheap utility model: scope judgements,
	// summarisation, duplicate detection, intent extraction.
	ProfileParser Profile = "parser"
	// ProfileAssistant is the richer conversational model with tools.
	ProfileAssistant Profile = "assistant"
)

// Message is one chat turn on the wire.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolDefinition describes a callable tool to the model.
type ToolDefinition struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

// FunctionDef is the schema half of a tool definition.
type FunctionDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the tool name and raw JSON arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// DecodeArguments unmarshals the call arguments into a map.
func (fc FunctionCall) DecodeArguments() (map[string]any, error) {
	out := make(map[string]any)
	if fc.Arguments == "" {
		return out, nil
	}
	err := json.Unmarshal([]byte(fc.Arguments), &out)
	return out, err
}

// Request is one chat call.
type Request struct {
	Profile     Profile
	Messages    []Message
	Tools       []ToolDefinition
	Model       string // overrides the profile default when set
	Temperature *float64
	MaxTokens   int
}

// Usage is the token accounting of one response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the model's reply: plain content, tool calls, or both.
type Response struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
	Model     string
}

// Provider performs chat calls.
type Provider interface {
	Chat(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// ProfileConfig fixes a profile's defaults.
type ProfileConfig struct {
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// DefaultProfiles returns the production profile defaults.
func DefaultProfiles() map[Profile]ProfileConfig {
	return map[Profile]ProfileConfig{
		ProfileParser: {
			Model:       "gpt-4.1-mini",
			Temperature: 0,
			MaxTokens:   1024,
			Timeout:     20 * time.Second,
		},
		ProfileAssistant: {
			Model:       "gpt-4.1",
			Temperature: 0.7,
			MaxTokens:   4096,
			Timeout:     90 * time.Second,
		},
	}
}
