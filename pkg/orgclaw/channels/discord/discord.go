// Package discord is the optional Discord transport: a DM-only organizer
// surface over discordgo. Guild traffic is ignored; reactions on delivered
// reminders route exactly like WhatsApp reactions.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/channels"
)

// Config holds the Discord transport configuration.
type Config struct {
	// Token is the Discord bot token.
	Token string `yaml:"token"`
}

// messageLimit is Discord's hard cap per message.
const messageLimit = 2000

// Discord implements channels.Channel.
type Discord struct {
	cfg     Config
	bus     *bus.MessageBus
	session *discordgo.Session
	logger  *slog.Logger

	connected  atomic.Bool
	lastMsg    atomic.Value // time.Time
	errorCount atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the transport.
func New(cfg Config, b *bus.MessageBus, logger *slog.Logger) *Discord {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discord{
		cfg:    cfg,
		bus:    b,
		logger: logger.With("component", "discord"),
	}
}

// Name returns "discord".
func (d *Discord) Name() string { return "discord" }

// Connect opens the gateway connection. discordgo reconnects on its own.
func (d *Discord) Connect(ctx context.Context) error {
	if d.cfg.Token == "" {
		return fmt.Errorf("%w: discord token is required", channels.ErrConnectionFailed)
	}
	d.ctx, d.cancel = context.WithCancel(ctx)

	session, err := discordgo.New("Bot " + d.cfg.Token)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsDirectMessages |
		discordgo.IntentsDirectMessageReactions |
		discordgo.IntentsMessageContent

	session.AddHandler(d.onMessageCreate)
	session.AddHandler(d.onReactionAdd)

	if err := session.Open(); err != nil {
		return fmt.Errorf("%w: opening gateway: %v", channels.ErrConnectionFailed, err)
	}
	d.session = session
	d.connected.Store(true)
	d.logger.Info("connected", "bot", session.State.User.Username)
	return nil
}

// onMessageCreate publishes DM texts to the bus.
func (d *Discord) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID != "" || m.Content == "" {
		return
	}
	d.lastMsg.Store(time.Now())
	msg := bus.InboundMessage{
		ID:        m.ID,
		Channel:   d.Name(),
		ChatID:    m.ChannelID,
		SenderJID: m.Author.ID,
		PushName:  m.Author.Username,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if err := d.bus.PublishInbound(d.ctx, msg); err != nil {
		d.logger.Warn("inbound publish failed", "error", err)
	}
}

// onReactionAdd publishes DM reactions to the bus.
func (d *Discord) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.GuildID != "" || (s.State.User != nil && r.UserID == s.State.User.ID) {
		return
	}
	d.lastMsg.Store(time.Now())
	msg := bus.InboundMessage{
		Channel:   d.Name(),
		ChatID:    r.ChannelID,
		SenderJID: r.UserID,
		Timestamp: time.Now(),
		Reaction: &bus.Reaction{
			Emoji:    r.Emoji.Name,
			TargetID: r.MessageID,
		},
	}
	if err := d.bus.PublishInbound(d.ctx, msg); err != nil {
		d.logger.Warn("reaction publish failed", "error", err)
	}
}

// Send delivers one message, splitting at Discord's length cap.
func (d *Discord) Send(ctx context.Context, chatID, content string) error {
	if d.session == nil || !d.connected.Load() {
		return channels.ErrChannelDisconnected
	}
	for len(content) > 0 {
		chunk := content
		if len(chunk) > messageLimit {
			chunk = chunk[:messageLimit]
		}
		content = content[len(chunk):]
		if _, err := d.session.ChannelMessageSend(chatID, chunk); err != nil {
			d.errorCount.Add(1)
			return fmt.Errorf("%w: %v", channels.ErrSendFailed, err)
		}
	}
	return nil
}

// Disconnect closes the gateway connection.
func (d *Discord) Disconnect() error {
	if d.cancel != nil {
		d.cancel()
	}
	if d.session != nil {
		d.session.Close()
	}
	d.connected.Store(false)
	d.logger.Info("disconnected")
	return nil
}

// IsConnected reports the gateway state.
func (d *Discord) IsConnected() bool { return d.connected.Load() }

// Health returns the transport health snapshot.
func (d *Discord) Health() channels.HealthStatus {
	h := channels.HealthStatus{
		Connected:  d.connected.Load(),
		ErrorCount: int(d.errorCount.Load()),
	}
	if t, ok := d.lastMsg.Load().(time.Time); ok {
		h.LastMessageAt = t
	}
	return h
}
