package bus

import (
	"context"
	"testing"
	"time"
)

func TestPublishConsumeInbound(t *testing.T) {
	t.Parallel()

	b := New(4)
	ctx := context.Background()

	want := InboundMessage{Channel: "whatsapp", ChatID: "351911@s.whatsapp.net", Content: "olá"}
	if err := b.PublishInbound(ctx, want); err != nil {
		t.Fatalf("PublishInbound: %v", err)
	}

	got, ok := b.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("ConsumeInbound returned ok=false")
	}
	if got.ID == "" {
		t.Error("expected an id to be assigned")
	}
	if got.Timestamp.IsZero() {
		t.Error("expected a timestamp to be assigned")
	}
	if got.Channel != want.Channel || got.ChatID != want.ChatID || got.Content != want.Content {
		t.Errorf("got %+v, want channel/chat/content of %+v", got, want)
	}
}

func TestConsumeInboundCancelled(t *testing.T) {
	t.Parallel()

	b := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := b.ConsumeInbound(ctx); ok {
		t.Error("expected ok=false on cancelled context")
	}
}

func TestOutboundOrderPreserved(t *testing.T) {
	t.Parallel()

	b := New(8)
	ctx := context.Background()

	for _, content := range []string{"primeiro", "segundo", "terceiro"} {
		if err := b.PublishOutbound(ctx, OutboundMessage{Channel: "whatsapp", ChatID: "x", Content: content}); err != nil {
			t.Fatalf("PublishOutbound: %v", err)
		}
	}

	for _, want := range []string{"primeiro", "segundo", "terceiro"} {
		got, ok := b.ConsumeOutbound(ctx)
		if !ok {
			t.Fatal("ConsumeOutbound returned ok=false")
		}
		if got.Content != want {
			t.Errorf("got %q, want %q", got.Content, want)
		}
	}
}

func TestPublishInboundBlocksUntilCancel(t *testing.T) {
	t.Parallel()

	b := New(1)
	ctx := context.Background()
	if err := b.PublishInbound(ctx, InboundMessage{Content: "fill"}); err != nil {
		t.Fatalf("PublishInbound: %v", err)
	}

	ctx2, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := b.PublishInbound(ctx2, InboundMessage{Content: "overflow"})
	if err == nil {
		t.Error("expected context error when queue is full")
	}
}
