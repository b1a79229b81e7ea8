package tools

import (
	"context"
	"strings"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
)

// OutboundPublisher posts a message onto the outbound bus.
type OutboundPublisher interface {
	PublishOutbound(ctx context.Context, msg bus.OutboundMessage) error
}

// MessageTool relays a message to ANOTHER chat. The agent replies to the
// current chat directly, so a call targeting the same chat is refused; that
// keeps the model from using the tool as a second reply channel.
type MessageTool struct {
	publisher OutboundPublisher
}

// NewMessageTool wires the message tool.
func NewMessageTool(p OutboundPublisher) *MessageTool {
	return &MessageTool{publisher: p}
}

func (t *MessageTool) Name() string { return "message" }

func (t *MessageTool) Description() string {
	return "Send a message to a different chat the user asked you to notify (e.g. a shared group). Never use this for the current chat; your reply already goes there."
}

func (t *MessageTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"chat_id": map[string]any{"type": "string", "description": "destination chat id"},
			"content": map[string]any{"type": "string"},
		},
		"required": []string{"chat_id", "content"},
	}
}

func (t *MessageTool) Execute(ctx context.Context, tc Context, args map[string]any) (string, error) {
	chatID := strings.TrimSpace(argString(args, "chat_id"))
	content := strings.TrimSpace(argString(args, "content"))
	if chatID == "" || content == "" {
		return "chat_id and content are required", nil
	}
	if chatID == tc.ChatID {
		return "refused: the current chat receives your reply directly", nil
	}

	err := t.publisher.PublishOutbound(ctx, bus.OutboundMessage{
		Channel: tc.Channel,
		ChatID:  chatID,
		Content: content,
		Metadata: map[string]string{
			"relayed_from": tc.ChatID,
		},
	})
	if err != nil {
		return "", err
	}
	return "message sent to " + chatID, nil
}
