package whatsapp

import (
	"time"

	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	waE2E "go.mau.fi/whatsmeow/proto/waE2E"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
)

// handleEvent is the whatsmeow event dispatcher.
func (w *WhatsApp) handleEvent(rawEvt any) {
	switch evt := rawEvt.(type) {
	case *events.Message:
		w.handleMessage(evt)
	case *events.Connected:
		w.connected.Store(true)
		w.errorCount.Store(0)
		w.reconnectAttempts.Store(0)
		w.logger.Info("connected", "jid", w.clientJID())
	case *events.Disconnected:
		wasConnected := w.connected.Swap(false)
		w.logger.Warn("disconnected", "was_connected", wasConnected)
		if wasConnected && w.ctx.Err() == nil {
			go w.attemptReconnect()
		}
	case *events.StreamReplaced:
		w.connected.Store(false)
		w.logger.Error("stream replaced by another device")
	case *events.LoggedOut:
		w.connected.Store(false)
		w.logger.Error("session invalidated, QR login required")
		go func() {
			if err := w.loginWithQR(w.ctx); err != nil {
				w.logger.Warn("QR re-login failed", "error", err)
			}
		}()
	case *events.KeepAliveTimeout:
		w.errorCount.Add(1)
		if evt.ErrorCount >= 3 && w.connected.Load() {
			w.connected.Store(false)
			go w.attemptReconnect()
		}
	case *events.KeepAliveRestored:
		w.errorCount.Store(0)
	}
}

// handleMessage normalizes one message event onto the bus. Group and
// broadcast traffic never reaches the agent.
func (w *WhatsApp) handleMessage(evt *events.Message) {
	if evt.Info.IsFromMe || evt.Info.IsGroup || evt.Info.Chat.Server == "broadcast" {
		return
	}
	w.lastMsg.Store(time.Now())

	chatJID := w.resolveJID(evt.Info.Chat)
	msg := bus.InboundMessage{
		ID:             string(evt.Info.ID),
		Channel:        w.Name(),
		ChatID:         chatJID.String(),
		SenderJID:      evt.Info.Sender.String(),
		PhoneForLocale: w.phoneForLocale(evt.Info.Sender),
		PushName:       evt.Info.PushName,
		Timestamp:      evt.Info.Timestamp,
	}
	if !w.extractContent(evt.Message, string(evt.Info.ID), &msg) {
		return
	}
	if err := w.bus.PublishInbound(w.ctx, msg); err != nil {
		w.logger.Warn("inbound publish failed", "error", err)
	}
}

// resolveJID maps a LID to its phone JID when the store knows it.
func (w *WhatsApp) resolveJID(jid types.JID) types.JID {
	if jid.Server != "lid" || w.client == nil || w.client.Store == nil {
		return jid
	}
	if alt, err := w.client.Store.GetAltJID(w.ctx, jid); err == nil && !alt.IsEmpty() {
		return alt
	}
	return jid
}

// phoneForLocale returns the phone half of the sender's JID, empty for an
// unresolvable LID.
func (w *WhatsApp) phoneForLocale(sender types.JID) string {
	resolved := w.resolveJID(sender)
	if resolved.Server == "lid" {
		return ""
	}
	return resolved.User
}

// extractContent fills the inbound message from the wire payload. Returns
// false for payloads the organizer ignores (stickers, images, video).
func (w *WhatsApp) extractContent(waMsg *waE2E.Message, id string, msg *bus.InboundMessage) bool {
	if waMsg == nil {
		return false
	}

	if waMsg.Conversation != nil {
		msg.Content = waMsg.GetConversation()
		return true
	}
	if ext := waMsg.ExtendedTextMessage; ext != nil {
		msg.Content = ext.GetText()
		return true
	}
	if reaction := waMsg.ReactionMessage; reaction != nil {
		msg.Reaction = &bus.Reaction{
			Emoji:    reaction.GetText(),
			TargetID: reaction.GetKey().GetID(),
			Remove:   reaction.GetText() == "",
		}
		return true
	}
	// Calendar attachments arrive as documents; only the ICS text travels.
	if doc := waMsg.DocumentMessage; doc != nil {
		if doc.GetMimetype() != "text/calendar" {
			return false
		}
		data, err := w.client.Download(w.ctx, doc)
		if err != nil {
			w.logger.Warn("ICS download failed", "error", err)
			return false
		}
		msg.ICS = string(data)
		msg.Content = doc.GetCaption()
		return true
	}
	if audio := waMsg.AudioMessage; audio != nil && audio.GetPTT() {
		path, err := w.saveVoiceNote(w.ctx, id, audio)
		if err != nil {
			w.logger.Warn("voice note save failed", "error", err)
			return false
		}
		if path == "" {
			return false
		}
		msg.AudioPath = path
		return true
	}
	return false
}
