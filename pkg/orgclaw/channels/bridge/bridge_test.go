package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
)

func textEvent(id, sender, content string) event {
	return event{
		Type:      "message",
		ID:        id,
		Sender:    sender,
		Content:   content,
		Timestamp: 1756117200,
	}
}

func TestHandleEventNormalizes(t *testing.T) {
	t.Parallel()

	b := bus.New(8)
	br := New(DefaultConfig(), b, nil)
	ctx := context.Background()

	ev := textEvent("wamid.1", "5511999990000@s.whatsapp.net", "me lembra amanhã")
	ev.PushName = "Ana"
	br.handleEvent(ctx, ev)

	msg, ok := b.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("message should reach the bus")
	}
	if msg.Channel != "whatsapp" || msg.ChatID != "5511999990000@s.whatsapp.net" {
		t.Fatalf("identity wrong: %+v", msg)
	}
	if msg.PhoneForLocale != "5511999990000" {
		t.Fatalf("PhoneForLocale = %q", msg.PhoneForLocale)
	}
	if msg.PushName != "Ana" || msg.Content != "me lembra amanhã" {
		t.Fatalf("content wrong: %+v", msg)
	}
	if !msg.Timestamp.Equal(time.Unix(1756117200, 0)) {
		t.Fatalf("timestamp = %v", msg.Timestamp)
	}
}

func TestHandleEventDropsGroupsAndNonMessages(t *testing.T) {
	t.Parallel()

	b := bus.New(8)
	br := New(DefaultConfig(), b, nil)
	ctx := context.Background()

	group := textEvent("wamid.g", "grp@g.us", "oi pessoal")
	group.IsGroup = true
	br.handleEvent(ctx, group)

	status := textEvent("wamid.s", "x@s.whatsapp.net", "")
	status.Type = "presence"
	br.handleEvent(ctx, status)

	if b.InboundLen() != 0 {
		t.Fatalf("bus depth = %d, want 0", b.InboundLen())
	}
}

func TestHandleEventReaction(t *testing.T) {
	t.Parallel()

	b := bus.New(8)
	br := New(DefaultConfig(), b, nil)
	ctx := context.Background()

	ev := textEvent("wamid.r", "5511999990000@s.whatsapp.net", "")
	ev.Reaction = &struct {
		Emoji    string `json:"emoji"`
		TargetID string `json:"targetId"`
		Remove   bool   `json:"remove,omitempty"`
	}{Emoji: "👍", TargetID: "wamid.1"}
	br.handleEvent(ctx, ev)

	msg, ok := b.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("reaction should reach the bus")
	}
	if msg.Reaction == nil || msg.Reaction.Emoji != "👍" || msg.Reaction.TargetID != "wamid.1" {
		t.Fatalf("reaction wrong: %+v", msg.Reaction)
	}
}

func TestPhoneForLocale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ev   event
		want string
	}{
		{"pn wins", event{PN: "5511988887777", Sender: "123456@lid"}, "5511988887777"},
		{"phone jid", event{Sender: "5511999990000@s.whatsapp.net"}, "5511999990000"},
		{"lid without pn", event{Sender: "123456789@lid"}, ""},
		{"bare id", event{Sender: "not-a-jid"}, ""},
	}
	for _, tt := range tests {
		if got := phoneForLocale(tt.ev); got != tt.want {
			t.Errorf("%s: phoneForLocale = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSendRequiresConnection(t *testing.T) {
	t.Parallel()

	br := New(DefaultConfig(), bus.New(1), nil)
	if err := br.Send(context.Background(), "chat", "oi"); err == nil {
		t.Fatal("send on a disconnected bridge should fail")
	}
	if br.IsConnected() {
		t.Fatal("fresh bridge reports connected")
	}
}

func TestConnectRequiresURL(t *testing.T) {
	t.Parallel()

	br := New(Config{}, bus.New(1), nil)
	if err := br.Connect(context.Background()); err == nil {
		t.Fatal("connect without a url should fail")
	}
}

func TestHealthSnapshot(t *testing.T) {
	t.Parallel()

	b := bus.New(8)
	br := New(Config{URL: "ws://localhost:3001/ws"}, b, nil)

	h := br.Health()
	if h.Connected || h.ErrorCount != 0 {
		t.Fatalf("fresh health = %+v", h)
	}
	if h.Details["url"] != "ws://localhost:3001/ws" {
		t.Fatalf("health details = %v", h.Details)
	}

	br.handleEvent(context.Background(), textEvent("wamid.1", "x@s.whatsapp.net", "oi"))
	if br.Health().LastMessageAt.IsZero() {
		t.Fatal("LastMessageAt should advance on inbound traffic")
	}
}
