package llm

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMeterRecordAndPersist(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token_usage.json")
	m, err := NewMeter(path, nil)
	if err != nil {
		t.Fatalf("NewMeter: %v", err)
	}

	m.Record("openai", Usage{PromptTokens: 100, CompletionTokens: 20})
	m.Record("openai", Usage{PromptTokens: 50, CompletionTokens: 10})
	m.Record("anthropic", Usage{PromptTokens: 200, CompletionTokens: 40})

	day := time.Now().Format("2006-01-02")
	totals := m.Totals()
	oa := totals[day]["openai"]
	if oa.PromptTokens != 150 || oa.CompletionTokens != 30 || oa.Requests != 2 {
		t.Fatalf("openai usage = %+v", oa)
	}
	if totals[day]["anthropic"].Requests != 1 {
		t.Fatalf("anthropic usage = %+v", totals[day]["anthropic"])
	}

	// A fresh meter on the same file picks up where the last one stopped.
	again, err := NewMeter(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	reloaded := again.Totals()
	if reloaded[day]["openai"].PromptTokens != 150 {
		t.Fatalf("reloaded usage = %+v", reloaded[day]["openai"])
	}
}

func TestMeterCostToday(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token_usage.json")
	m, err := NewMeter(path, map[string]Pricing{
		"openai": {InputPerM: 2.0, OutputPerM: 8.0},
	})
	if err != nil {
		t.Fatal(err)
	}

	m.Record("openai", Usage{PromptTokens: 1_000_000, CompletionTokens: 500_000})
	// Unpriced providers never contribute to the estimate.
	m.Record("mystery", Usage{PromptTokens: 9_000_000})

	got := m.CostToday()
	want := 2.0 + 4.0
	if got < want-0.001 || got > want+0.001 {
		t.Fatalf("CostToday = %v, want %v", got, want)
	}
}

func TestMeterSurvivesCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token_usage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := NewMeter(path, nil)
	if err != nil {
		t.Fatalf("corrupt file should not fail open: %v", err)
	}
	if len(m.Totals()) != 0 {
		t.Fatal("corrupt file should start the meter empty")
	}
}

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		body   string
		want   ErrorKind
	}{
		{401, "", KindAuth},
		{403, "forbidden", KindAuth},
		{429, "slow down", KindRateLimit},
		{408, "", KindTimeout},
		{504, "", KindTimeout},
		{503, "", KindOverloaded},
		{529, "Overloaded", KindOverloaded},
		{400, "maximum context length exceeded", KindContextLength},
		{400, "missing field model", KindBadRequest},
		{404, "no such model", KindBadRequest},
		{422, "", KindBadRequest},
		{500, "internal", KindRetryable},
		{302, "", KindUnknown},
	}
	for _, tt := range tests {
		if got := classifyStatus(tt.status, tt.body); got != tt.want {
			t.Errorf("classifyStatus(%d, %q) = %v, want %v", tt.status, tt.body, got, tt.want)
		}
	}
}

func TestErrorKindRetryable(t *testing.T) {
	t.Parallel()

	retry := []ErrorKind{KindRateLimit, KindOverloaded, KindTimeout, KindRetryable}
	for _, k := range retry {
		if !k.Retryable() {
			t.Errorf("%v should be retryable", k)
		}
	}
	terminal := []ErrorKind{KindAuth, KindContextLength, KindBadRequest, KindFatal, KindUnknown}
	for _, k := range terminal {
		if k.Retryable() {
			t.Errorf("%v should not be retryable", k)
		}
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	err := &ProviderError{Provider: "openai", StatusCode: 429, Kind: KindRateLimit, Body: "x"}
	if KindOf(err) != KindRateLimit {
		t.Fatal("KindOf should unwrap ProviderError")
	}
	if KindOf(context.Canceled) != KindUnknown {
		t.Fatal("foreign errors are KindUnknown")
	}
}

type staticProvider struct{ name string }

func (p staticProvider) Chat(context.Context, Request) (*Response, error) {
	return &Response{Content: "ok"}, nil
}
func (p staticProvider) Name() string { return p.name }

func TestRegistryRouting(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if _, err := r.ForProfile(ProfileParser); err == nil {
		t.Fatal("empty registry should error")
	}

	r.Register(staticProvider{name: "openai"})
	r.Register(staticProvider{name: "anthropic"})
	r.Bind(ProfileAssistant, "anthropic")

	p, err := r.ForProfile(ProfileAssistant)
	if err != nil {
		t.Fatalf("ForProfile: %v", err)
	}
	if p.Name() != "anthropic" {
		t.Fatalf("bound provider = %s", p.Name())
	}

	// Unbound profiles fall back deterministically, first name wins.
	p, err = r.ForProfile(ProfileParser)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "anthropic" {
		t.Fatalf("fallback provider = %s, want anthropic (sorted first)", p.Name())
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "anthropic" || names[1] != "openai" {
		t.Fatalf("Names = %v", names)
	}
}

type mapKeySource map[string]string

func (m mapKeySource) ProviderKey(name string) (string, error) { return m[name], nil }

func TestResolveKey(t *testing.T) {
	// Not parallel: manipulates process environment.
	t.Setenv("NANOBOT_PROVIDERS__OPENAI__API_KEY", "env-wins")

	src := mapKeySource{"openai": "vault-key", "anthropic": "vault-anthropic"}
	if got := ResolveKey("openai", src, nil); got != "env-wins" {
		t.Fatalf("ResolveKey openai = %q, want env value", got)
	}
	if got := ResolveKey("anthropic", src, nil); got != "vault-anthropic" {
		t.Fatalf("ResolveKey anthropic = %q, want vault value", got)
	}
	if got := ResolveKey("missing", src, nil); got != "" {
		t.Fatalf("ResolveKey missing = %q, want empty", got)
	}
	if got := ResolveKey("anthropic", nil, nil); got != "" {
		t.Fatalf("ResolveKey without source = %q, want empty", got)
	}
}
