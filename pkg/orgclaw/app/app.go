// Package app assembles the organizer service: configuration, storage,
// scheduler, LLM registry, safety, router, agent loop, transports and the
// admin gateway, plus the run lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/agent"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/channels"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/channels/bridge"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/channels/discord"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/channels/terminal"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/channels/whatsapp"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/clock"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/config"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/database"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/gateway"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/llm"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/memory"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/router"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/safety"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/store"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/tools"
)

// ErrTransportLost signals that the primary transport exhausted its reconnect
// retries. The CLI maps it to exit code 2.
var ErrTransportLost = errors.New("transport disconnected, retries exhausted")

// utcTimeURL is the external UTC source for the clock drift watcher.
const utcTimeURL = "https://worldtimeapi.org/api/timezone/Etc/UTC"

// App is the assembled service.
type App struct {
	cfg    config.Config
	logger *slog.Logger

	hub      *database.Hub
	store    *store.Store
	clk      *clock.Service
	bus      *bus.MessageBus
	sched    *scheduler.Scheduler
	exec     *scheduler.Executor
	sessions *session.Store
	mem      *memory.Store
	profiles *memory.ProfileWriter
	registry *llm.Registry
	parser   *llm.ParserOps
	meter    *llm.Meter
	tools    *tools.Registry
	limiter  *safety.RateLimiter
	breaker  *safety.CircuitBreaker
	seclog   *safety.SecurityLog
	rtr      *router.Router
	loop     *agent.Loop
	stale    *agent.StaleNotices
	activity *agent.Activity
	chans    *channels.Manager
	gw       *gateway.Gateway
	bridge   *bridge.Bridge
}

// New assembles the service from configuration. Secrets resolves provider
// keys after the environment; it may be nil.
func New(cfg config.Config, secrets *config.Secrets, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	for _, dir := range []string{
		cfg.DataDir,
		filepath.Dir(cfg.JobsFile()),
		cfg.SessionDir(),
		cfg.MemoryDir(),
		cfg.SecurityDir(),
		cfg.WorkspaceDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	a := &App{cfg: cfg, logger: logger}

	a.clk = clock.New(
		clock.NewHTTPDateSource(utcTimeURL),
		time.Duration(cfg.ClockOffsetSeconds)*time.Second,
		logger,
	)
	now := a.clk.Now

	hub, err := database.NewHub(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.hub = hub
	a.store = store.New(hub, store.WithNow(now))

	jobStore, err := scheduler.NewFileStore(cfg.JobsFile(), logger)
	if err != nil {
		return nil, fmt.Errorf("opening job store: %w", err)
	}
	schedCfg := scheduler.DefaultConfig()
	if cfg.Scheduler.DeadlineFollowupMinutes > 0 {
		schedCfg.DeadlineFollowupMinutes = cfg.Scheduler.DeadlineFollowupMinutes
	}
	a.sched = scheduler.New(schedCfg, jobStore, now, logger)
	a.sched.SetEventCounter(a.store.Events)
	a.sched.SetHistory(a.store.History)

	a.bus = bus.New(bus.DefaultQueueSize)
	a.exec = scheduler.NewExecutor(a.sched, a.bus)

	a.sessions, err = session.NewStore(cfg.SessionDir(), logger)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	a.mem, err = memory.NewStore(cfg.MemoryDir())
	if err != nil {
		return nil, fmt.Errorf("opening memory store: %w", err)
	}
	a.profiles, err = memory.NewProfileWriter(filepath.Join(cfg.WorkspaceDir, "users"))
	if err != nil {
		return nil, fmt.Errorf("opening profile writer: %w", err)
	}

	if err := a.buildLLM(secrets); err != nil {
		return nil, err
	}
	a.sched.SetJudge(a.parser)

	a.seclog, err = safety.NewSecurityLog(cfg.SecurityDir())
	if err != nil {
		return nil, fmt.Errorf("opening security log: %w", err)
	}
	a.limiter = safety.NewRateLimiter(20, time.Minute)
	a.breaker = safety.NewCircuitBreaker(3, 60*time.Second)

	a.buildTools()

	a.rtr = router.New(router.Config{
		Store:           a.store,
		Scheduler:       a.sched,
		Sessions:        a.sessions,
		Memory:          a.mem,
		Profiles:        a.profiles,
		Parser:          a.parser,
		SecurityLog:     a.seclog,
		Meter:           a.meter,
		GodModePassword: cfg.GodModePassword,
		Now:             now,
		Logger:          logger,
	})

	a.stale, err = agent.NewStaleNotices(cfg.StaleFile())
	if err != nil {
		return nil, fmt.Errorf("opening stale-notice file: %w", err)
	}
	a.activity, err = agent.NewActivity(cfg.ActivityFile())
	if err != nil {
		return nil, fmt.Errorf("opening activity file: %w", err)
	}

	a.loop = agent.New(agent.Config{
		Store:        a.store,
		Scheduler:    a.sched,
		Sessions:     a.sessions,
		Memory:       a.mem,
		Profiles:     a.profiles,
		Router:       a.rtr,
		Tools:        a.tools,
		Registry:     a.registry,
		Parser:       a.parser,
		RateLimiter:  a.limiter,
		Breaker:      a.breaker,
		SecurityLog:  a.seclog,
		Stale:        a.stale,
		Activity:     a.activity,
		WorkspaceDir: cfg.WorkspaceDir,
		Now:          now,
		Logger:       logger,
	})

	a.exec.SetAgentInvoker(func(ctx context.Context, channel, chatID, text string) {
		for _, reply := range a.loop.ProcessSynthetic(ctx, channel, chatID, text) {
			_ = a.bus.PublishOutbound(ctx, bus.OutboundMessage{
				Channel: channel, ChatID: chatID, Content: reply,
			})
		}
	})
	a.exec.SetQuietLookup(a.quietWindow)

	a.buildChannels()

	if cfg.Gateway.Address != "" {
		a.gw = gateway.New(gateway.Config{
			Address:     cfg.Gateway.Address,
			APIKey:      cfg.Gateway.APIKey,
			HealthToken: cfg.Gateway.HealthToken,
			CORSOrigins: cfg.Gateway.CORSOrigins,
		}, a.store, a.sched, a.bus, a.breaker, a.chans, logger)
	}

	return a, nil
}

// buildLLM creates the provider registry, cost meter and parser ops.
func (a *App) buildLLM(secrets *config.Secrets) error {
	meter, err := llm.NewMeter(a.cfg.TokenUsageFile, nil)
	if err != nil {
		return fmt.Errorf("opening token meter: %w", err)
	}
	a.meter = meter
	a.registry = llm.NewRegistry()

	var keySource llm.KeySource
	if secrets != nil {
		keySource = secrets
	}
	for _, p := range a.cfg.Providers {
		key := llm.ResolveKey(p.Name, keySource, a.logger)
		if key == "" {
			a.logger.Warn("no API key for provider", "provider", p.Name)
		}
		client := llm.NewClient(llm.ClientConfig{
			Name:     p.Name,
			BaseURL:  p.BaseURL,
			APIKey:   key,
			Profiles: p.Profiles,
		}, meter, a.logger)
		a.registry.Register(client)
		for _, b := range p.Bind {
			a.registry.Bind(llm.Profile(b), p.Name)
		}
	}
	a.parser = llm.NewParserOps(a.registry)
	return nil
}

// buildTools registers the agent tool set.
func (a *App) buildTools() {
	a.tools = tools.NewRegistry(a.logger)
	a.tools.Register(tools.NewCronTool(a.sched))
	a.tools.Register(tools.NewListTool(a.store.Lists, a.parser))
	a.tools.Register(tools.NewEventTool(a.store.Events))
	a.tools.Register(tools.NewReadFileTool(a.cfg.WorkspaceDir, a.mem))
	a.tools.Register(tools.NewMessageTool(a.bus))
	if a.cfg.SearchAPIKey != "" {
		a.tools.Register(tools.NewSearchTool(a.cfg.SearchAPIKey))
	}
}

// buildChannels registers the configured transports.
func (a *App) buildChannels() {
	a.chans = channels.NewManager(a.logger)
	if a.cfg.Channels.BridgeURL != "" {
		bcfg := bridge.DefaultConfig()
		bcfg.URL = a.cfg.Channels.BridgeURL
		a.bridge = bridge.New(bcfg, a.bus, a.logger)
		a.chans.Register(a.bridge)
	}
	if a.cfg.Channels.WhatsAppDirect {
		wcfg := whatsapp.DefaultConfig()
		wcfg.SessionDB = a.cfg.WhatsAppSession()
		wcfg.MediaDir = a.cfg.MediaDir()
		a.chans.Register(whatsapp.New(wcfg, a.bus, a.logger))
	}
	if a.cfg.Channels.DiscordToken != "" {
		a.chans.Register(discord.New(discord.Config{Token: a.cfg.Channels.DiscordToken}, a.bus, a.logger))
	}
	if a.cfg.Channels.Terminal {
		a.chans.Register(terminal.New(a.bus, a.logger))
	}
}

// quietWindow implements the executor's quiet-window source from the user
// record. Chat ids map 1:1 to user ids.
func (a *App) quietWindow(ctx context.Context, chatID string) (string, string, *time.Location, bool) {
	u, err := a.store.Users.Get(ctx, chatID)
	if err != nil || u.QuietStart == "" || u.QuietEnd == "" {
		return "", "", nil, false
	}
	return u.QuietStart, u.QuietEnd, u.Location(), true
}

// Run starts everything and blocks until the context is cancelled or the
// primary transport is lost. Shutdown is graceful and in reverse order.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.clk.Start(runCtx)

	if err := a.chans.Start(runCtx); err != nil {
		return fmt.Errorf("starting channels: %w", err)
	}

	a.bootMaintenance(runCtx)

	a.exec.Start(runCtx)
	go a.chans.RunOutboundWriter(runCtx, a.bus, a.recordDelivery)
	go a.dispatchInbound(runCtx)

	if a.gw != nil {
		if err := a.gw.Start(runCtx); err != nil {
			return fmt.Errorf("starting gateway: %w", err)
		}
	}

	a.logger.Info("orgclaw running",
		"channels", len(a.chans.HealthAll()),
		"providers", a.registry.Names())

	var runErr error
	if a.bridge != nil {
		select {
		case <-runCtx.Done():
		case err := <-a.bridge.Done():
			a.logger.Error("bridge lost", "error", err)
			runErr = ErrTransportLost
		}
	} else {
		<-runCtx.Done()
	}

	cancel()
	a.shutdown()
	return runErr
}

// bootMaintenance removes one-shots whose fire instant passed while the
// service was down and records the counts so each chat gets one apology on
// its next turn.
func (a *App) bootMaintenance(ctx context.Context) {
	removed := a.sched.RemoveStaleJobs(ctx)
	for chatID, n := range removed {
		a.stale.Add(chatID, n)
		a.logger.Info("stale jobs removed", "chat", chatID, "count", n)
	}
}

// recordDelivery feeds sent reminders to the reaction registry.
func (a *App) recordDelivery(msg bus.OutboundMessage) {
	jobID := msg.Metadata["job_id"]
	if jobID == "" {
		return
	}
	key := session.Key{Channel: msg.Channel, ChatID: msg.ChatID}
	a.rtr.Deliveries().Record(key, msg.Metadata["message_id"], jobID)
}

// shutdown stops the outward surfaces first, then flushes state.
func (a *App) shutdown() {
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.gw != nil {
		if err := a.gw.Stop(stopCtx); err != nil {
			a.logger.Warn("gateway shutdown", "error", err)
		}
	}
	a.chans.Stop()
	if err := a.hub.Close(); err != nil {
		a.logger.Warn("database close", "error", err)
	}
	a.logger.Info("orgclaw stopped")
}
