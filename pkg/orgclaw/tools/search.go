package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const searchEndpoint = "https://api.search.brave.com/res/v1/web/search"

// SearchTool queries the Brave web search API. It is only registered when a
// subscription token is configured, so the model never sees the tool on
// deployments without one.
type SearchTool struct {
	apiKey string
	client *http.Client
}

// NewSearchTool returns nil when no API key is configured; callers skip
// registration in that case.
func NewSearchTool(apiKey string) *SearchTool {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	return &SearchTool{
		apiKey: apiKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *SearchTool) Name() string { return "search" }

func (t *SearchTool) Description() string {
	return "Search the web. Use only for factual questions the user asks that need fresh information; summarise the results, never paste raw URLs unless asked."
}

func (t *SearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
		},
		"required": []string{"query"},
	}
}

func (t *SearchTool) Execute(ctx context.Context, tc Context, args map[string]any) (string, error) {
	query := strings.TrimSpace(argString(args, "query"))
	if query == "" {
		return "query is required", nil
	}

	u := searchEndpoint + "?q=" + url.QueryEscape(query) + "&count=5"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search request: status %d", resp.StatusCode)
	}

	var body struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("search decode: %w", err)
	}
	if len(body.Web.Results) == 0 {
		return "no results", nil
	}

	var b strings.Builder
	for i, r := range body.Web.Results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s\n%s\n%s", r.Title, r.URL, r.Description)
	}
	return b.String(), nil
}
