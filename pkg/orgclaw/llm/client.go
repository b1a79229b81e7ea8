package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client is an OpenAI-compatible chat client for one provider.
type Client struct {
	name     string
	baseURL  string
	apiKey   string
	profiles map[Profile]ProfileConfig
	http     *http.Client
	meter    *Meter
	logger   *slog.Logger
}

// ClientConfig configures one provider client.
type ClientConfig struct {
	Name     string
	BaseURL  string
	APIKey   string
	Profiles map[Profile]ProfileConfig
}

// NewClient creates a provider client. meter may be nil.
func NewClient(cfg ClientConfig, meter *Meter, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Profiles == nil {
		cfg.Profiles = DefaultProfiles()
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{
		name:     cfg.Name,
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		profiles: cfg.Profiles,
		http:     &http.Client{},
		meter:    meter,
		logger:   logger.With("component", "llm", "provider", cfg.Name),
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return c.name }

type wireRequest struct {
	Model       string           `json:"model"`
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Content   string     `json:"content"`
			ToolCalls []ToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage  `json:"usage"`
	Model string `json:"model"`
}

// Chat performs one chat call under the request's profile, with the
// profile's timeout. An empty body or missing choices counts as a provider
// failure so the breaker sees it.
func (c *Client) Chat(ctx context.Context, req Request) (*Response, error) {
	prof, ok := c.profiles[req.Profile]
	if !ok {
		prof = c.profiles[ProfileAssistant]
	}

	model := req.Model
	if model == "" {
		model = prof.Model
	}
	temp := req.Temperature
	if temp == nil {
		t := prof.Temperature
		temp = &t
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = prof.MaxTokens
	}
	timeout := prof.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(wireRequest{
		Model:       model,
		Messages:    req.Messages,
		Tools:       req.Tools,
		Temperature: temp,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, &ProviderError{Provider: c.name, Kind: KindTimeout, Body: err.Error()}
		}
		return nil, &ProviderError{Provider: c.name, Kind: KindRetryable, Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &ProviderError{Provider: c.name, Kind: KindRetryable, Body: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider:   c.name,
			StatusCode: resp.StatusCode,
			Kind:       classifyStatus(resp.StatusCode, string(raw)),
			Body:       string(raw),
		}
	}

	var wire wireResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &ProviderError{Provider: c.name, Kind: KindRetryable,
			Body: "undecodable response body"}
	}
	if len(wire.Choices) == 0 {
		return nil, &ProviderError{Provider: c.name, Kind: KindRetryable,
			Body: "empty choices"}
	}

	choice := wire.Choices[0]
	out := &Response{
		Content:   choice.Message.Content,
		ToolCalls: choice.Message.ToolCalls,
		Usage:     wire.Usage,
		Model:     wire.Model,
	}

	if c.meter != nil {
		c.meter.Record(c.name, out.Usage)
	}
	c.logger.Debug("chat call",
		"profile", req.Profile,
		"model", model,
		"prompt_tokens", out.Usage.PromptTokens,
		"completion_tokens", out.Usage.CompletionTokens,
		"duration", time.Since(start).String(),
		"tool_calls", len(out.ToolCalls))
	return out, nil
}
