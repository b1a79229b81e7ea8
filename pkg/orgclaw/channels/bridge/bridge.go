// Package bridge is the primary WhatsApp transport: a WebSocket client to an
// external bridge process that produces normalized inbound events and accepts
// plain outbound text. The bridge owns the WhatsApp session; this side only
// translates events to and from the bus.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/channels"
)

// Config holds the bridge transport configuration.
type Config struct {
	// URL is the bridge WebSocket endpoint
	// (env NANOBOT_CHANNELS__WHATSAPP__BRIDGE_URL).
	URL string `yaml:"url"`

	// MaxRetries bounds reconnect attempts (0 = unlimited).
	MaxRetries int `yaml:"max_retries"`

	// Backoff is the initial reconnect backoff, doubled per attempt up to
	// five minutes.
	Backoff time.Duration `yaml:"backoff"`

	// PingInterval keeps the socket alive.
	PingInterval time.Duration `yaml:"ping_interval"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:   10,
		Backoff:      5 * time.Second,
		PingInterval: 30 * time.Second,
	}
}

// event is the bridge's inbound wire format.
type event struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	PN        string `json:"pn"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	IsGroup   bool   `json:"isGroup"`
	PushName  string `json:"pushName,omitempty"`
	ICS       string `json:"attachmentIcs,omitempty"`
	Reaction  *struct {
		Emoji    string `json:"emoji"`
		TargetID string `json:"targetId"`
		Remove   bool   `json:"remove,omitempty"`
	} `json:"reaction,omitempty"`
	Audio string `json:"audio,omitempty"`
}

// outboundFrame is what the bridge accepts back.
type outboundFrame struct {
	Channel string `json:"channel"`
	ChatID  string `json:"chat_id"`
	Content string `json:"content"`
}

// Bridge implements channels.Channel over the bridge socket.
type Bridge struct {
	cfg    Config
	bus    *bus.MessageBus
	logger *slog.Logger

	mu        sync.Mutex // guards conn writes
	conn      *websocket.Conn
	connected atomic.Bool
	lastMsg   atomic.Value // time.Time
	errCount  atomic.Int64

	cancel context.CancelFunc
	done   chan error
}

// New creates the bridge transport.
func New(cfg Config, b *bus.MessageBus, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &Bridge{
		cfg:    cfg,
		bus:    b,
		logger: logger.With("component", "bridge"),
		done:   make(chan error, 1),
	}
}

// Name returns "whatsapp": the bridge is a WhatsApp surface, so chats keep
// the same channel key whether they arrive via bridge or direct client.
func (br *Bridge) Name() string { return "whatsapp" }

// Done reports terminal transport failure (retries exhausted). The process
// maps this to exit code 2.
func (br *Bridge) Done() <-chan error { return br.done }

// Connect dials the bridge and starts the read loop with reconnection.
func (br *Bridge) Connect(ctx context.Context) error {
	if br.cfg.URL == "" {
		return fmt.Errorf("%w: bridge url not configured", channels.ErrConnectionFailed)
	}
	runCtx, cancel := context.WithCancel(ctx)
	br.cancel = cancel

	if err := br.dial(runCtx); err != nil {
		cancel()
		return err
	}
	go br.run(runCtx)
	return nil
}

// dial opens the socket.
func (br *Bridge) dial(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, br.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: dialing %s: %v", channels.ErrConnectionFailed, br.cfg.URL, err)
	}
	br.mu.Lock()
	br.conn = conn
	br.mu.Unlock()
	br.connected.Store(true)
	br.logger.Info("bridge connected", "url", br.cfg.URL)
	return nil
}

// run reads events until the socket drops, then reconnects with exponential
// backoff. When retries exhaust, the terminal error lands on Done.
func (br *Bridge) run(ctx context.Context) {
	go br.pingLoop(ctx)

	attempts := 0
	for {
		err := br.readLoop(ctx)
		br.connected.Store(false)
		if ctx.Err() != nil {
			return
		}
		br.logger.Warn("bridge read loop ended", "error", err)

		for {
			attempts++
			if br.cfg.MaxRetries > 0 && attempts > br.cfg.MaxRetries {
				br.logger.Error("bridge reconnect attempts exhausted", "attempts", attempts-1)
				br.done <- fmt.Errorf("%w: bridge reconnect attempts exhausted", channels.ErrChannelDisconnected)
				return
			}
			backoff := br.cfg.Backoff * time.Duration(1<<uint(min(attempts-1, 6)))
			if backoff > 5*time.Minute {
				backoff = 5 * time.Minute
			}
			br.logger.Info("bridge reconnecting", "attempt", attempts, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			if err := br.dial(ctx); err != nil {
				br.logger.Warn("bridge reconnect failed", "attempt", attempts, "error", err)
				continue
			}
			attempts = 0
			break
		}
	}
}

// readLoop consumes events from the current socket.
func (br *Bridge) readLoop(ctx context.Context) error {
	br.mu.Lock()
	conn := br.conn
	br.mu.Unlock()
	if conn == nil {
		return channels.ErrChannelDisconnected
	}
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev event
		if err := json.Unmarshal(raw, &ev); err != nil {
			br.logger.Warn("bridge event not parseable", "error", err)
			continue
		}
		br.handleEvent(ctx, ev)
	}
}

// handleEvent normalizes one bridge event onto the bus. Group messages are
// dropped here, before they can reach the agent.
func (br *Bridge) handleEvent(ctx context.Context, ev event) {
	if ev.Type != "message" || ev.IsGroup {
		return
	}
	msg := bus.InboundMessage{
		ID:             ev.ID,
		Channel:        br.Name(),
		ChatID:         ev.Sender,
		SenderJID:      ev.Sender,
		PhoneForLocale: phoneForLocale(ev),
		PushName:       ev.PushName,
		Content:        ev.Content,
		Timestamp:      time.Unix(ev.Timestamp, 0),
		ICS:            ev.ICS,
		AudioPath:      ev.Audio,
	}
	if ev.Reaction != nil {
		msg.Reaction = &bus.Reaction{
			Emoji:    ev.Reaction.Emoji,
			TargetID: ev.Reaction.TargetID,
			Remove:   ev.Reaction.Remove,
		}
	}
	if err := br.bus.PublishInbound(ctx, msg); err != nil {
		br.logger.Warn("inbound publish failed", "error", err)
		return
	}
	br.lastMsg.Store(time.Now())
}

// phoneForLocale prefers the bridge's "pn" field; a plain phone JID is usable
// directly, a LID is not.
func phoneForLocale(ev event) string {
	if ev.PN != "" {
		return ev.PN
	}
	user, _, found := strings.Cut(ev.Sender, "@")
	if found && !strings.Contains(ev.Sender, "@lid") {
		return user
	}
	return ""
}

// pingLoop keeps the socket alive.
func (br *Bridge) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(br.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			br.mu.Lock()
			conn := br.conn
			if conn != nil && br.connected.Load() {
				if err := conn.WriteControl(websocket.PingMessage, nil,
					time.Now().Add(5*time.Second)); err != nil {
					br.logger.Debug("bridge ping failed", "error", err)
				}
			}
			br.mu.Unlock()
		}
	}
}

// Send writes one outbound frame to the bridge.
func (br *Bridge) Send(ctx context.Context, chatID, content string) error {
	if !br.connected.Load() {
		return channels.ErrChannelDisconnected
	}
	frame := outboundFrame{Channel: br.Name(), ChatID: chatID, Content: content}
	br.mu.Lock()
	defer br.mu.Unlock()
	if br.conn == nil {
		return channels.ErrChannelDisconnected
	}
	if err := br.conn.WriteJSON(frame); err != nil {
		br.errCount.Add(1)
		return fmt.Errorf("%w: %v", channels.ErrSendFailed, err)
	}
	return nil
}

// Disconnect closes the socket and stops the loops.
func (br *Bridge) Disconnect() error {
	if br.cancel != nil {
		br.cancel()
	}
	br.connected.Store(false)
	br.mu.Lock()
	defer br.mu.Unlock()
	if br.conn != nil {
		br.conn.Close()
		br.conn = nil
	}
	br.logger.Info("bridge disconnected")
	return nil
}

// IsConnected reports the socket state.
func (br *Bridge) IsConnected() bool { return br.connected.Load() }

// Health returns the transport health snapshot.
func (br *Bridge) Health() channels.HealthStatus {
	h := channels.HealthStatus{
		Connected:  br.connected.Load(),
		ErrorCount: int(br.errCount.Load()),
		Details:    map[string]any{"url": br.cfg.URL},
	}
	if t, ok := br.lastMsg.Load().(time.Time); ok {
		h.LastMessageAt = t
	}
	return h
}
