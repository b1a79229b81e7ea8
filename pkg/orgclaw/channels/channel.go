// Package channels defines the transport contract of the organizer. Each
// transport (bridge, whatsapp, discord, terminal) normalizes platform events
// into bus.InboundMessage and delivers plain text back out. The manager owns
// the transport lifecycle and drains the outbound queue, so per-chat ordering
// follows from the single writer per channel.
package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
)

// Channel is implemented by every transport.
type Channel interface {
	// Name returns the channel identifier ("whatsapp", "discord", "terminal").
	Name() string

	// Connect establishes the platform connection and starts publishing
	// inbound messages to the bus.
	Connect(ctx context.Context) error

	// Disconnect gracefully closes the connection.
	Disconnect() error

	// Send delivers one text message to a chat.
	Send(ctx context.Context, chatID, content string) error

	// IsConnected reports the live connection state.
	IsConnected() bool

	// Health returns the channel health snapshot.
	Health() HealthStatus
}

// HealthStatus is a transport health snapshot for the gateway.
type HealthStatus struct {
	Connected     bool           `json:"connected"`
	LastMessageAt time.Time      `json:"last_message_at"`
	ErrorCount    int            `json:"error_count"`
	Details       map[string]any `json:"details,omitempty"`
}

var (
	ErrChannelDisconnected = errors.New("channel is not connected")
	ErrSendFailed          = errors.New("failed to send message")
	ErrConnectionFailed    = errors.New("failed to connect to channel")
)

// Manager owns the registered transports: connects them, routes outbound
// messages by channel name, and disconnects in reverse on stop.
type Manager struct {
	mu       sync.RWMutex
	channels map[string]Channel
	order    []string
	logger   *slog.Logger
}

// NewManager creates an empty manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		channels: make(map[string]Channel),
		logger:   logger.With("component", "channels"),
	}
}

// Register adds a transport. Must be called before Start.
func (m *Manager) Register(ch Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := ch.Name()
	if _, exists := m.channels[name]; exists {
		return fmt.Errorf("channel %q already registered", name)
	}
	m.channels[name] = ch
	m.order = append(m.order, name)
	return nil
}

// Start connects every registered transport. A transport that fails to
// connect is logged and skipped; Start fails only when transports were
// registered and none connected.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.order) == 0 {
		m.logger.Warn("no transports registered")
		return nil
	}
	connected := 0
	for _, name := range m.order {
		if err := m.channels[name].Connect(ctx); err != nil {
			m.logger.Error("transport connect failed", "channel", name, "error", err)
			continue
		}
		connected++
		m.logger.Info("transport connected", "channel", name)
	}
	if connected == 0 {
		return fmt.Errorf("%w: no transport connected", ErrConnectionFailed)
	}
	return nil
}

// Stop disconnects all transports in reverse registration order.
func (m *Manager) Stop() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.order) - 1; i >= 0; i-- {
		name := m.order[i]
		if err := m.channels[name].Disconnect(); err != nil {
			m.logger.Error("transport disconnect failed", "channel", name, "error", err)
		}
	}
}

// Send routes one message to the named transport.
func (m *Manager) Send(ctx context.Context, channelName, chatID, content string) error {
	m.mu.RLock()
	ch, ok := m.channels[channelName]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("channel %q not registered", channelName)
	}
	if !ch.IsConnected() {
		return fmt.Errorf("channel %q: %w", channelName, ErrChannelDisconnected)
	}
	return ch.Send(ctx, chatID, content)
}

// HealthAll returns the health of every registered transport.
func (m *Manager) HealthAll() map[string]HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]HealthStatus, len(m.channels))
	for name, ch := range m.channels {
		out[name] = ch.Health()
	}
	return out
}

// RunOutboundWriter drains the outbound queue to the transports until the
// context ends. Delivery failures are logged, never retried here: the
// scheduler's own retry semantics cover reminder redelivery.
func (m *Manager) RunOutboundWriter(ctx context.Context, b *bus.MessageBus, onSent func(bus.OutboundMessage)) {
	for {
		msg, ok := b.ConsumeOutbound(ctx)
		if !ok {
			return
		}
		if err := m.Send(ctx, msg.Channel, msg.ChatID, msg.Content); err != nil {
			m.logger.Error("outbound delivery failed",
				"channel", msg.Channel, "error", err)
			continue
		}
		if onSent != nil {
			onSent(msg)
		}
	}
}
