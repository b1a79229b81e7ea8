package app

import (
	"context"
	"sync"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
)

// chatQueueSize bounds each chat's pending turns. A full queue drops the
// oldest message; a user flooding their own chat only hurts themselves.
const chatQueueSize = 16

// dispatchInbound fans inbound messages out to one worker goroutine per chat,
// so turns within a chat are strictly ordered while chats stay independent.
func (a *App) dispatchInbound(ctx context.Context) {
	var (
		mu      sync.Mutex
		workers = make(map[string]chan bus.InboundMessage)
		wg      sync.WaitGroup
	)
	defer wg.Wait()

	for {
		msg, ok := a.bus.ConsumeInbound(ctx)
		if !ok {
			mu.Lock()
			for _, q := range workers {
				close(q)
			}
			mu.Unlock()
			return
		}

		key := msg.Channel + ":" + msg.ChatID
		mu.Lock()
		q, exists := workers[key]
		if !exists {
			q = make(chan bus.InboundMessage, chatQueueSize)
			workers[key] = q
			wg.Add(1)
			go func() {
				defer wg.Done()
				a.chatWorker(ctx, q)
			}()
		}
		mu.Unlock()

		select {
		case q <- msg:
		default:
			// Queue full: drop the oldest turn to keep the chat moving.
			select {
			case <-q:
			default:
			}
			select {
			case q <- msg:
			default:
			}
			a.logger.Warn("chat queue full, dropped oldest turn",
				"channel", msg.Channel, "chat", msg.ChatID)
		}
	}
}

// chatWorker processes one chat's turns in order.
func (a *App) chatWorker(ctx context.Context, q <-chan bus.InboundMessage) {
	for msg := range q {
		if ctx.Err() != nil {
			return
		}
		for _, reply := range a.loop.HandleInbound(ctx, msg) {
			err := a.bus.PublishOutbound(ctx, bus.OutboundMessage{
				Channel: msg.Channel,
				ChatID:  msg.ChatID,
				Content: reply,
			})
			if err != nil {
				a.logger.Warn("reply publish failed",
					"channel", msg.Channel, "error", err)
			}
		}
	}
}
