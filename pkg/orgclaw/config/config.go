// Package config loads the service configuration: a YAML file layered with a
// .env file and environment overrides. The NANOBOT_* variable names are kept
// for compatibility with existing deployments of the predecessor system.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/database"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/llm"
)

// Config is the root configuration.
type Config struct {
	// DataDir holds everything the service writes: the database, jobs.json,
	// sessions, memory, security logs. Default ~/.orgclaw.
	DataDir string `yaml:"data_dir"`

	Database  database.HubConfig `yaml:"database"`
	Scheduler SchedulerConfig    `yaml:"scheduler"`
	Channels  ChannelsConfig     `yaml:"channels"`
	Gateway   GatewayConfig      `yaml:"gateway"`
	Providers []ProviderConfig   `yaml:"providers"`

	// GodModePassword enables the #<password> operator mode (env
	// GOD_MODE_PASSWORD). Empty disables it.
	GodModePassword string `yaml:"-"`

	// Atendimento is the human-support contact handed out on request.
	Atendimento AtendimentoConfig `yaml:"atendimento"`

	// TokenUsageFile overrides the cost meter path (env TOKEN_USAGE_FILE).
	TokenUsageFile string `yaml:"token_usage_file"`

	// ClockOffsetSeconds is the operator clock override (env
	// CLOCK_OFFSET_SECONDS).
	ClockOffsetSeconds int `yaml:"clock_offset_seconds"`

	// WorkspaceDir is exposed to the read_file tool. Defaults to
	// <data_dir>/workspace.
	WorkspaceDir string `yaml:"workspace_dir"`

	// SearchAPIKey enables the search tool when set.
	SearchAPIKey string `yaml:"search_api_key"`
}

// SchedulerConfig tunes the durable scheduler.
type SchedulerConfig struct {
	// DeadlineFollowupMinutes is the spacing between deadline follow-ups.
	DeadlineFollowupMinutes int `yaml:"deadline_followup_minutes"`
}

// ChannelsConfig selects and configures the transports.
type ChannelsConfig struct {
	// BridgeURL is the WhatsApp bridge websocket endpoint (env
	// NANOBOT_CHANNELS__WHATSAPP__BRIDGE_URL). Empty disables the bridge.
	BridgeURL string `yaml:"bridge_url"`

	// WhatsAppDirect enables the in-process whatsmeow transport instead of
	// the bridge.
	WhatsAppDirect bool `yaml:"whatsapp_direct"`

	// DiscordToken enables the Discord transport.
	DiscordToken string `yaml:"-"`

	// Terminal enables the stdin/stdout development transport.
	Terminal bool `yaml:"terminal"`
}

// GatewayConfig configures the admin HTTP surface.
type GatewayConfig struct {
	// Address is the listen address. Empty disables the gateway.
	Address string `yaml:"address"`

	// APIKey (env API_SECRET_KEY), HealthToken (env HEALTH_CHECK_TOKEN) and
	// CORSOrigins (env CORS_ORIGINS) come from the environment only.
	APIKey      string   `yaml:"-"`
	HealthToken string   `yaml:"-"`
	CORSOrigins []string `yaml:"-"`
}

// ProviderConfig configures one OpenAI-compatible provider. The API key is
// resolved at startup: NANOBOT_PROVIDERS__<NAME>__API_KEY, then keyring, then
// vault.
type ProviderConfig struct {
	Name     string                            `yaml:"name"`
	BaseURL  string                            `yaml:"base_url"`
	Profiles map[llm.Profile]llm.ProfileConfig `yaml:"profiles"`

	// Bind lists the profiles routed to this provider ("parser",
	// "assistant").
	Bind []string `yaml:"bind"`
}

// AtendimentoConfig is the human-support contact.
type AtendimentoConfig struct {
	Phone string `yaml:"phone"`
	Email string `yaml:"email"`
}

// Default returns the zero-config setup: SQLite under ~/.orgclaw, terminal
// transport, no gateway.
func Default() Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".orgclaw")
	return Config{
		DataDir:   dataDir,
		Database:  database.DefaultHubConfig(),
		Scheduler: SchedulerConfig{DeadlineFollowupMinutes: 30},
		Channels:  ChannelsConfig{Terminal: true},
	}
}

// Load reads the YAML file at path (optional), layers .env and environment
// overrides, and fills defaults. A missing file is not an error; a malformed
// one is.
func Load(path string) (Config, error) {
	// .env never overrides variables already set in the environment.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Defaults apply.
		default:
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.fillDefaults()
	return cfg, nil
}

// applyEnv layers the environment contract on top of the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("GOD_MODE_PASSWORD"); v != "" {
		c.GodModePassword = v
	}
	if v := os.Getenv("API_SECRET_KEY"); v != "" {
		c.Gateway.APIKey = v
	}
	if v := os.Getenv("HEALTH_CHECK_TOKEN"); v != "" {
		c.Gateway.HealthToken = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Gateway.CORSOrigins = splitCSV(v)
	}
	if v := os.Getenv("ATENDIMENTO_PHONE"); v != "" {
		c.Atendimento.Phone = v
	}
	if v := os.Getenv("ATENDIMENTO_EMAIL"); v != "" {
		c.Atendimento.Email = v
	}
	if v := os.Getenv("TOKEN_USAGE_FILE"); v != "" {
		c.TokenUsageFile = v
	}
	if v := os.Getenv("CLOCK_OFFSET_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ClockOffsetSeconds = n
		}
	}
	if v := os.Getenv("NANOBOT_CHANNELS__WHATSAPP__BRIDGE_URL"); v != "" {
		c.Channels.BridgeURL = v
	}
	if v := os.Getenv("DISCORD_BOT_TOKEN"); v != "" {
		c.Channels.DiscordToken = v
	}
}

func (c *Config) fillDefaults() {
	if c.DataDir == "" {
		c.DataDir = Default().DataDir
	}
	c.Database = c.Database.Effective()
	if c.Database.SQLite.Path == "./data/organizer.db" {
		c.Database.SQLite.Path = filepath.Join(c.DataDir, "organizer.db")
	}
	if c.Scheduler.DeadlineFollowupMinutes <= 0 {
		c.Scheduler.DeadlineFollowupMinutes = 30
	}
	if c.TokenUsageFile == "" {
		c.TokenUsageFile = filepath.Join(c.DataDir, "token_usage.json")
	}
	if c.WorkspaceDir == "" {
		c.WorkspaceDir = filepath.Join(c.DataDir, "workspace")
	}
	for i := range c.Providers {
		if c.Providers[i].Profiles == nil {
			c.Providers[i].Profiles = llm.DefaultProfiles()
		}
	}
}

// Validate reports configuration errors the service cannot start with.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}
	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider name is required")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate provider %q", p.Name)
		}
		seen[p.Name] = true
		for _, b := range p.Bind {
			switch llm.Profile(b) {
			case llm.ProfileParser, llm.ProfileAssistant:
			default:
				return fmt.Errorf("provider %q binds unknown profile %q", p.Name, b)
			}
		}
	}
	if !c.Channels.Terminal && c.Channels.BridgeURL == "" &&
		!c.Channels.WhatsAppDirect && c.Channels.DiscordToken == "" {
		return fmt.Errorf("no channel enabled")
	}
	return nil
}

// DeadlineFollowupSpacing returns the follow-up spacing as a duration.
func (c *Config) DeadlineFollowupSpacing() time.Duration {
	return time.Duration(c.Scheduler.DeadlineFollowupMinutes) * time.Minute
}

// Path helpers for the on-disk layout under DataDir.

func (c *Config) JobsFile() string       { return filepath.Join(c.DataDir, "cron", "jobs.json") }
func (c *Config) SessionDir() string     { return filepath.Join(c.DataDir, "session") }
func (c *Config) MemoryDir() string      { return filepath.Join(c.DataDir, "memory") }
func (c *Config) SecurityDir() string    { return filepath.Join(c.DataDir, "security") }
func (c *Config) ActivityFile() string   { return filepath.Join(c.DataDir, "smart_reminder_sent.json") }
func (c *Config) StaleFile() string      { return filepath.Join(c.DataDir, "cron", "stale_removal_pending.json") }
func (c *Config) VaultFile() string      { return filepath.Join(c.DataDir, ".orgclaw.vault") }
func (c *Config) WhatsAppSession() string { return filepath.Join(c.DataDir, "whatsapp-session.db") }
func (c *Config) MediaDir() string       { return filepath.Join(c.DataDir, "media") }

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
