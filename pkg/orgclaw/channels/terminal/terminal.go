// Package terminal is the development transport: one chat over stdin/stdout.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/channels"
)

// ChatID is the fixed chat identifier of the terminal session.
const ChatID = "terminal"

// Terminal implements channels.Channel over stdin/stdout.
type Terminal struct {
	bus    *bus.MessageBus
	logger *slog.Logger
	in     io.Reader
	out    io.Writer

	connected atomic.Bool
	lastMsg   atomic.Value // time.Time

	cancel context.CancelFunc
}

// New creates the transport. in and out default to os.Stdin/os.Stdout.
func New(b *bus.MessageBus, logger *slog.Logger) *Terminal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Terminal{
		bus:    b,
		logger: logger.With("component", "terminal"),
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// Name returns "terminal".
func (t *Terminal) Name() string { return "terminal" }

// Connect starts the stdin read loop.
func (t *Terminal) Connect(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.connected.Store(true)
	go t.readLoop(runCtx)
	fmt.Fprintln(t.out, "orgclaw terminal — type a message, ctrl-d to quit")
	return nil
}

func (t *Terminal) readLoop(ctx context.Context) {
	scanner := bufio.NewScanner(t.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		t.lastMsg.Store(time.Now())
		err := t.bus.PublishInbound(ctx, bus.InboundMessage{
			Channel:   t.Name(),
			ChatID:    ChatID,
			Content:   line,
			Timestamp: time.Now(),
		})
		if err != nil {
			return
		}
	}
	t.connected.Store(false)
}

// Send prints the reply.
func (t *Terminal) Send(ctx context.Context, chatID, content string) error {
	if !t.connected.Load() {
		return channels.ErrChannelDisconnected
	}
	_, err := fmt.Fprintf(t.out, "\n%s\n\n", content)
	return err
}

// Disconnect stops the read loop.
func (t *Terminal) Disconnect() error {
	if t.cancel != nil {
		t.cancel()
	}
	t.connected.Store(false)
	return nil
}

// IsConnected reports whether stdin is still open.
func (t *Terminal) IsConnected() bool { return t.connected.Load() }

// Health returns the transport health snapshot.
func (t *Terminal) Health() channels.HealthStatus {
	h := channels.HealthStatus{Connected: t.connected.Load()}
	if ts, ok := t.lastMsg.Load().(time.Time); ok {
		h.LastMessageAt = ts
	}
	return h
}
