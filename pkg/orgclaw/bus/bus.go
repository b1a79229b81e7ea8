// Package bus provides the in-memory message queues that connect the chat
// transports to the agent loop. Transports publish inbound messages and drain
// outbound ones; the agent loop does the reverse. Both queues are buffered
// channels, so per-chat ordering follows from each chat's messages arriving
// serially on its transport.
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultQueueSize is the buffer size for the inbound and outbound queues.
const DefaultQueueSize = 256

// Reaction is an emoji reaction to a previously delivered message.
type Reaction struct {
	Emoji    string `json:"emoji"`
	TargetID string `json:"targetId"`
	Remove   bool   `json:"remove,omitempty"`
}

// InboundMessage is a normalized message from any transport.
type InboundMessage struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	ChatID    string    `json:"chat_id"`
	SenderJID string    `json:"sender"`
	// PhoneForLocale is the phone number usable for locale inference. When
	// the sender address is a LID, transports fill this from the bridge's
	// "pn" field or the resolved device identity.
	PhoneForLocale string    `json:"pn,omitempty"`
	PushName       string    `json:"push_name,omitempty"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	IsGroup        bool      `json:"is_group"`
	// ICS carries the text of a calendar attachment, when present.
	ICS      string    `json:"attachment_ics,omitempty"`
	Reaction *Reaction `json:"reaction,omitempty"`
	// AudioPath references a downloaded voice note; contents are never stored.
	AudioPath string `json:"audio,omitempty"`
}

// OutboundMessage is a message to deliver through a transport.
type OutboundMessage struct {
	Channel  string            `json:"channel"`
	ChatID   string            `json:"chat_id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// MessageBus carries messages between transports and the agent loop.
type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage
}

// New creates a message bus with the given queue size (0 uses the default).
func New(size int) *MessageBus {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &MessageBus{
		inbound:  make(chan InboundMessage, size),
		outbound: make(chan OutboundMessage, size),
	}
}

// PublishInbound enqueues an inbound message, assigning an id if missing.
// Blocks when the queue is full so transports apply natural backpressure.
func (b *MessageBus) PublishInbound(ctx context.Context, msg InboundMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	select {
	case b.inbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConsumeInbound blocks until a message is available or the context ends.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	select {
	case msg := <-b.inbound:
		return msg, true
	case <-ctx.Done():
		return InboundMessage{}, false
	}
}

// PublishOutbound enqueues an outbound message.
func (b *MessageBus) PublishOutbound(ctx context.Context, msg OutboundMessage) error {
	select {
	case b.outbound <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConsumeOutbound blocks until a message is available or the context ends.
func (b *MessageBus) ConsumeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case msg := <-b.outbound:
		return msg, true
	case <-ctx.Done():
		return OutboundMessage{}, false
	}
}

// InboundLen reports the current inbound queue depth.
func (b *MessageBus) InboundLen() int { return len(b.inbound) }

// OutboundLen reports the current outbound queue depth.
func (b *MessageBus) OutboundLen() int { return len(b.outbound) }
