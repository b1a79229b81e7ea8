// Package router is the deterministic dispatch layer in front of the LLM:
// pending confirmations, reaction handling, slash commands and their
// natural-language aliases, parsed scheduling intents, the vague-time and
// recurring-event flows, onboarding, and god-mode diagnostics. Every handler
// returns localized replies; a turn the router does not claim falls through
// to the assistant model.
package router

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/llm"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/memory"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/parse"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/safety"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/store"
)

// Turn bundles everything a handler needs about the current inbound message.
type Turn struct {
	Msg     bus.InboundMessage
	User    *store.User
	Session *session.Session
	Lang    locale.Language
	Loc     *time.Location
}

// Key returns the chat key of the turn.
func (t *Turn) Key() session.Key {
	return session.Key{Channel: t.Msg.Channel, ChatID: t.Msg.ChatID}
}

// Router dispatches deterministic handlers by precedence.
type Router struct {
	store    *store.Store
	sched    *scheduler.Scheduler
	sessions *session.Store
	mem      *memory.Store
	profiles *memory.ProfileWriter
	parser   *llm.ParserOps
	seclog   *safety.SecurityLog
	meter    *llm.Meter
	logger   *slog.Logger
	now      func() time.Time

	confirms   *Confirmations
	deliveries *Deliveries
	god        *godMode
}

// Config carries the router's wiring.
type Config struct {
	Store           *store.Store
	Scheduler       *scheduler.Scheduler
	Sessions        *session.Store
	Memory          *memory.Store
	Profiles        *memory.ProfileWriter
	Parser          *llm.ParserOps
	SecurityLog     *safety.SecurityLog
	Meter           *llm.Meter
	GodModePassword string
	Now             func() time.Time
	Logger          *slog.Logger
}

// New creates a router.
func New(cfg Config) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Router{
		store:    cfg.Store,
		sched:    cfg.Scheduler,
		sessions: cfg.Sessions,
		mem:      cfg.Memory,
		profiles: cfg.Profiles,
		parser:   cfg.Parser,
		seclog:   cfg.SecurityLog,
		meter:    cfg.Meter,
		logger:   logger.With("component", "router"),
		now:      now,
		confirms:   NewConfirmations(now),
		deliveries: NewDeliveries(now),
		god:        newGodMode(cfg.GodModePassword, now),
	}
}

// Confirmations exposes the pending-confirmation map so the agent loop can
// install entries (e.g. recipe → shopping list offers).
func (r *Router) Confirmations() *Confirmations { return r.confirms }

// Handle runs the precedence chain. It returns the replies to send and
// whether the turn was claimed; an unclaimed turn goes to the assistant.
func (r *Router) Handle(ctx context.Context, t *Turn) ([]string, bool) {
	if t.Msg.Reaction != nil {
		return r.handleReaction(ctx, t)
	}

	text := strings.TrimSpace(t.Msg.Content)
	if text == "" {
		return nil, false
	}

	// 1. Pending confirmation for this chat.
	if replies, ok := r.resolveConfirmation(ctx, t, text); ok {
		return replies, true
	}

	// Continuations of an installed flow capture the turn before anything
	// else can misread the bare answer ("19h", "sim", "fim do mês").
	if replies, ok := r.continueFlow(ctx, t, text); ok {
		return replies, true
	}

	// God-mode password and, while active, # diagnostics.
	if strings.HasPrefix(text, "#") {
		if replies, ok := r.handleGodMode(ctx, t, text); ok {
			return replies, true
		}
	}

	// 3. Slash commands and aliases.
	if replies, ok := r.handleCommand(ctx, t, text); ok {
		return replies, true
	}

	// 4. Parsed scheduling and list intents.
	if replies, ok := r.handleIntent(ctx, t, text); ok {
		return replies, true
	}

	// 5. Flow installation (vague time, recurring shape).
	if replies, ok := r.startFlow(ctx, t, text); ok {
		return replies, true
	}

	return nil, false
}

// Onboard runs the onboarding state machine when the user has no timezone.
// Returns replies and whether the turn was consumed.
func (r *Router) Onboard(ctx context.Context, t *Turn) ([]string, bool) {
	return r.handleOnboarding(ctx, t)
}

// NeedsOnboarding reports whether the onboarding machine should see the turn.
func (r *Router) NeedsOnboarding(t *Turn) bool {
	return t.User.Timezone == "" || t.Session.MetaString(session.MetaPendingPreferredName) != ""
}

// TimezoneNudge returns the soft "I still don't know your timezone" suffix,
// at most once per session.
func (r *Router) TimezoneNudge(t *Turn) string {
	if t.User.Timezone != "" || t.Session.MetaBool(session.MetaNudgeAppendDone) {
		return ""
	}
	t.Session.SetMeta(session.MetaNudgeAppendDone, true)
	return locale.T(t.Lang, "onboarding.tz_nudge")
}

// saveUser persists the user row, logging instead of failing the turn.
func (r *Router) saveUser(ctx context.Context, t *Turn) {
	if err := r.store.Users.Save(ctx, t.User); err != nil {
		r.logger.Error("user save failed", "user", t.User.PhoneHint, "error", err)
	}
}

// normalize lowercases and folds the text for matching.
func normalize(text string) string {
	return parse.Fold(text)
}
