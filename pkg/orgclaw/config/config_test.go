package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir == "" {
		t.Fatal("DataDir should default")
	}
	if cfg.Scheduler.DeadlineFollowupMinutes != 30 {
		t.Fatalf("DeadlineFollowupMinutes = %d, want 30", cfg.Scheduler.DeadlineFollowupMinutes)
	}
	if !cfg.Channels.Terminal {
		t.Fatal("terminal channel should be the default")
	}
}

func TestLoadYAMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orgclaw.yaml")
	yaml := `
data_dir: ` + dir + `
providers:
  - name: openai
    bind: [parser, assistant]
channels:
  terminal: true
gateway:
  address: "127.0.0.1:8090"
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GOD_MODE_PASSWORD", "hunter2")
	t.Setenv("API_SECRET_KEY", "apikey")
	t.Setenv("HEALTH_CHECK_TOKEN", "healthtok")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CLOCK_OFFSET_SECONDS", "90")
	t.Setenv("NANOBOT_CHANNELS__WHATSAPP__BRIDGE_URL", "ws://bridge:8765")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GodModePassword != "hunter2" {
		t.Fatalf("GodModePassword = %q", cfg.GodModePassword)
	}
	if cfg.Gateway.APIKey != "apikey" || cfg.Gateway.HealthToken != "healthtok" {
		t.Fatal("gateway secrets not applied from env")
	}
	if len(cfg.Gateway.CORSOrigins) != 2 || cfg.Gateway.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORSOrigins = %v", cfg.Gateway.CORSOrigins)
	}
	if cfg.ClockOffsetSeconds != 90 {
		t.Fatalf("ClockOffsetSeconds = %d", cfg.ClockOffsetSeconds)
	}
	if cfg.Channels.BridgeURL != "ws://bridge:8765" {
		t.Fatalf("BridgeURL = %q", cfg.Channels.BridgeURL)
	}
	if cfg.TokenUsageFile != filepath.Join(dir, "token_usage.json") {
		t.Fatalf("TokenUsageFile = %q", cfg.TokenUsageFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := cfg.DeadlineFollowupSpacing(); got != 30*time.Minute {
		t.Fatalf("DeadlineFollowupSpacing = %v", got)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg := Default()
		cfg.Providers = []ProviderConfig{{Name: "openai"}}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no providers", func(c *Config) { c.Providers = nil }, true},
		{"unnamed provider", func(c *Config) { c.Providers[0].Name = "" }, true},
		{"duplicate provider", func(c *Config) {
			c.Providers = append(c.Providers, ProviderConfig{Name: "openai"})
		}, true},
		{"unknown profile bind", func(c *Config) {
			c.Providers[0].Bind = []string{"oracle"}
		}, true},
		{"no channels", func(c *Config) { c.Channels = ChannelsConfig{} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitCSV(t *testing.T) {
	t.Parallel()
	got := splitCSV(" a ,, b,c ")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("splitCSV = %v", got)
	}
}
