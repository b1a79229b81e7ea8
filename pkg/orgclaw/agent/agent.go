// Package agent runs the per-message pipeline: sanitation, the safety
// envelope, recaps, onboarding, the deterministic router, scope filtering,
// session compression and finally the assistant model with its tool loop.
// Each inbound message passes the guards in a fixed order; the first stage
// that claims the turn ends it.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/llm"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/memory"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/parse"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/router"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/safety"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/store"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/tools"
)

// maxContentLength truncates hostile or accidental walls of text.
const maxContentLength = 2000

// frustrationEvery is the user-turn interval of the complaint pass.
const frustrationEvery = 20

// Loop is the agent pipeline. One instance serves all chats; per-chat
// serialization is the app's responsibility.
type Loop struct {
	store    *store.Store
	sched    *scheduler.Scheduler
	sessions *session.Store
	mem      *memory.Store
	profiles *memory.ProfileWriter
	router   *router.Router
	tools    *tools.Registry
	registry *llm.Registry
	parser   *llm.ParserOps
	limiter  *safety.RateLimiter
	breaker  *safety.CircuitBreaker
	seclog   *safety.SecurityLog
	stale    *StaleNotices
	activity *Activity
	logger   *slog.Logger
	now      func() time.Time

	workspaceDir string
	maxToolIters int
}

// Config wires the loop.
type Config struct {
	Store        *store.Store
	Scheduler    *scheduler.Scheduler
	Sessions     *session.Store
	Memory       *memory.Store
	Profiles     *memory.ProfileWriter
	Router       *router.Router
	Tools        *tools.Registry
	Registry     *llm.Registry
	Parser       *llm.ParserOps
	RateLimiter  *safety.RateLimiter
	Breaker      *safety.CircuitBreaker
	SecurityLog  *safety.SecurityLog
	Stale        *StaleNotices
	Activity     *Activity
	WorkspaceDir string
	// MaxToolIterations bounds the assistant tool loop (default 20).
	MaxToolIterations int
	Now               func() time.Time
	Logger            *slog.Logger
}

// New creates the loop.
func New(cfg Config) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	iters := cfg.MaxToolIterations
	if iters <= 0 {
		iters = 20
	}
	return &Loop{
		store:        cfg.Store,
		sched:        cfg.Scheduler,
		sessions:     cfg.Sessions,
		mem:          cfg.Memory,
		profiles:     cfg.Profiles,
		router:       cfg.Router,
		tools:        cfg.Tools,
		registry:     cfg.Registry,
		parser:       cfg.Parser,
		limiter:      cfg.RateLimiter,
		breaker:      cfg.Breaker,
		seclog:       cfg.SecurityLog,
		stale:        cfg.Stale,
		activity:     cfg.Activity,
		logger:       logger.With("component", "agent"),
		now:          now,
		workspaceDir: cfg.WorkspaceDir,
		maxToolIters: iters,
	}
}

// HandleInbound processes one message and returns the replies to deliver, in
// order. An empty slice means the turn produced nothing (trivial message,
// rate-limited without notice).
func (l *Loop) HandleInbound(ctx context.Context, msg bus.InboundMessage) []string {
	content := sanitize(msg.Content)
	msg.Content = content

	t, err := l.resolveTurn(ctx, msg)
	if err != nil {
		l.logger.Error("turn setup failed", "error", err)
		return nil
	}
	chatKey := t.Key().String()

	if msg.Reaction != nil {
		if replies, ok := l.router.Handle(ctx, t); ok {
			return replies
		}
		return nil
	}

	if l.activity != nil {
		l.activity.RecordInbound(msg.ChatID, l.now().In(t.Loc))
	}

	if safety.IsTrivial(content) {
		return nil
	}

	if l.limiter != nil {
		allowed, notify := l.limiter.Allow(chatKey)
		if !allowed {
			if notify {
				return []string{locale.T(t.Lang, "safety.too_many")}
			}
			return nil
		}
	}

	var pre []string
	if l.stale != nil {
		if jobs, fire := l.stale.Consume(chatKey); fire {
			pre = append(pre, locale.T(t.Lang, "reminder.stale_apology",
				"count", fmt.Sprint(jobs)))
		}
	}
	pre = append(pre, l.pendingRecaps(ctx, t)...)

	if replies, claimed := l.dispatch(ctx, t, content); claimed {
		return append(pre, replies...)
	}
	return pre
}

// dispatch runs the ordered guard-and-handler chain after the cheap
// bookkeeping stages.
func (l *Loop) dispatch(ctx context.Context, t *router.Turn, content string) ([]string, bool) {
	// Explicit language switch is honored before anything can answer in the
	// wrong language.
	if replies, ok := l.languageSwitch(ctx, t, content); ok {
		l.persistTurn(ctx, t, content, replies)
		return replies, true
	}

	if isCallingPhrase(content) {
		return []string{locale.T(t.Lang, "agent.calling_ack")}, true
	}

	if reason := safety.CheckBlocklist(content); reason != "" {
		if l.seclog != nil {
			l.seclog.RecordBlocked(t.User.PhoneHint, reason, content)
		}
		return []string{locale.T(t.Lang, "safety.blocked")}, true
	}

	if safety.IsInjection(content) {
		if l.seclog != nil {
			l.seclog.RecordBlocked(t.User.PhoneHint, "injection", content)
		}
		return []string{locale.T(t.Lang, "safety.injection")}, true
	}

	if l.router.NeedsOnboarding(t) {
		if replies, ok := l.router.Onboard(ctx, t); ok {
			l.persistTurn(ctx, t, content, replies)
			return replies, true
		}
	}

	if replies, ok := l.router.Handle(ctx, t); ok {
		if nudge := l.router.TimezoneNudge(t); nudge != "" && len(replies) > 0 {
			replies[len(replies)-1] += nudge
		}
		l.persistTurn(ctx, t, content, replies)
		return replies, true
	}

	if !safety.InScope(ctx, l.parser, content) {
		// A short follow-up to an in-scope exchange is admitted; a cold
		// off-topic message is not.
		if prev, ok := t.Session.LastUserMessage(); !ok || !safety.InScopeFast(prev) {
			return []string{locale.T(t.Lang, "safety.out_of_scope")}, true
		}
	}

	if reply, ok := l.analyticAnswer(ctx, t, content); ok {
		l.persistTurn(ctx, t, content, []string{reply})
		return []string{reply}, true
	}

	if l.breaker != nil && !l.breaker.Allow() {
		return []string{locale.T(t.Lang, "safety.degraded")}, true
	}

	l.compressIfNeeded(ctx, t)

	reply := l.assist(ctx, t, content)
	l.persistTurn(ctx, t, content, []string{reply})
	l.frustrationPass(ctx, t)

	if nudge := l.router.TimezoneNudge(t); nudge != "" {
		reply += nudge
	}
	return []string{reply}, true
}

// ProcessSynthetic feeds a scheduler payload to the assistant as if the user
// had sent it, bypassing the guards that only make sense for human input.
func (l *Loop) ProcessSynthetic(ctx context.Context, channel, chatID, text string) []string {
	t, err := l.resolveTurn(ctx, bus.InboundMessage{
		Channel: channel,
		ChatID:  chatID,
		Content: text,
	})
	if err != nil {
		l.logger.Error("synthetic turn setup failed", "error", err)
		return nil
	}
	if l.breaker != nil && !l.breaker.Allow() {
		return []string{text}
	}
	l.compressIfNeeded(ctx, t)
	reply := l.assist(ctx, t, text)
	l.persistTurn(ctx, t, text, []string{reply})
	return []string{reply}
}

// resolveTurn loads or creates the user and session for the message.
func (l *Loop) resolveTurn(ctx context.Context, msg bus.InboundMessage) (*router.Turn, error) {
	inferred := locale.InferFromPhone(msg.PhoneForLocale)
	user, _, err := l.store.Users.GetOrCreate(ctx, msg.ChatID,
		locale.TruncatePhone(msg.PhoneForLocale), string(inferred.Language), "")
	if err != nil {
		return nil, err
	}

	lang, ok := locale.Normalize(user.Language)
	if !ok {
		lang = inferred.Language
	}
	tz := user.Timezone
	if tz == "" {
		tz = inferred.Timezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}

	sess := l.sessions.GetOrCreate(session.Key{Channel: msg.Channel, ChatID: msg.ChatID})
	return &router.Turn{
		Msg:     msg,
		User:    user,
		Session: sess,
		Lang:    lang,
		Loc:     loc,
	}, nil
}

// persistTurn appends the exchange to the session and flushes it.
func (l *Loop) persistTurn(ctx context.Context, t *router.Turn, userText string, replies []string) {
	t.Session.Append("user", userText)
	for _, reply := range replies {
		t.Session.Append("assistant", reply)
	}
	if err := l.sessions.Save(t.Session); err != nil {
		l.logger.Warn("session save failed", "error", err)
	}
}

// languageSwitch applies explicit "speak X" requests.
func (l *Loop) languageSwitch(ctx context.Context, t *router.Turn, content string) ([]string, bool) {
	res, ok := parse.LanguageSwitch(content)
	if !ok {
		return nil, false
	}
	lang := locale.Language(res.Language)
	// Bare "português" keeps a pt-BR user's variant.
	if !res.Specific && t.Lang == locale.PortugueseBR && lang == locale.PortuguesePT {
		lang = locale.PortugueseBR
	}
	t.User.Language = string(lang)
	t.Lang = lang
	if err := l.store.Users.Save(ctx, t.User); err != nil {
		l.logger.Warn("language save failed", "error", err)
	}
	return []string{locale.T(lang, "lang.switched")}, true
}

// frustrationPass asks the parser model for a complaint signal every
// frustrationEvery user turns.
func (l *Loop) frustrationPass(ctx context.Context, t *router.Turn) {
	if l.parser == nil || l.seclog == nil {
		return
	}
	turns := t.Session.CountUserTurns()
	if turns == 0 || turns%frustrationEvery != 0 {
		return
	}
	transcript := session.RenderTranscript(t.Session.Tail(25))
	frustrated, err := l.parser.Frustrated(ctx, transcript)
	if err != nil || !frustrated {
		return
	}
	summary := fmt.Sprintf("user shows frustration after %d turns", turns)
	if err := l.seclog.RecordPainpoint(t.Msg.ChatID, summary); err != nil {
		l.logger.Warn("painpoint record failed", "error", err)
	}
}

// compressIfNeeded summarises the head of a long session, merging durable
// bullets into long-term memory.
func (l *Loop) compressIfNeeded(ctx context.Context, t *router.Turn) {
	if !t.Session.NeedsCompression() {
		return
	}
	head := t.Session.Tail(t.Session.Len())[:session.CompressHead]
	transcript := session.RenderTranscript(head)

	summary := "Conversa anterior resumida."
	var bullets []string
	if l.parser != nil {
		if s, b, err := l.parser.Summarise(ctx, transcript); err == nil && s != "" {
			summary, bullets = s, b
		}
	}
	removed := t.Session.Compress(summary)
	if removed == nil {
		return
	}
	if l.mem != nil {
		safeKey := t.Key().Safe()
		for _, b := range bullets {
			if err := l.mem.AppendFact(safeKey, b); err != nil {
				l.logger.Warn("memory merge failed", "error", err)
			}
		}
	}
	if err := l.sessions.Save(t.Session); err != nil {
		l.logger.Warn("session save failed", "error", err)
	}
}

// analyticAnswer routes history questions to the parser model with the
// relevant data slice.
func (l *Loop) analyticAnswer(ctx context.Context, t *router.Turn, content string) (string, bool) {
	if l.parser == nil || !isAnalyticQuestion(content) {
		return "", false
	}
	entries, err := l.store.Audit.Recent(ctx, 200)
	if err != nil {
		return "", false
	}
	var b strings.Builder
	for _, e := range entries {
		if e.UserID != t.Msg.ChatID {
			continue
		}
		fmt.Fprintf(&b, "%s %s %v\n", e.CreatedAt.In(t.Loc).Format("2006-01-02 15:04"), e.Action, e.Payload)
	}
	if b.Len() == 0 {
		return "", false
	}
	answer, err := l.parser.Answer(ctx,
		"You answer questions about the user's own activity history in their language, briefly. The history lines follow; answer only from them.",
		b.String()+"\nQuestion: "+content)
	if err != nil || answer == "" {
		return "", false
	}
	return answer, true
}

// analyticMarkers flag history and pattern questions answerable from the
// audit log alone.
var analyticMarkers = []string{
	"o que fiz", "o que eu fiz", "quantas vezes", "quantos lembretes",
	"que hice", "cuantas veces", "what did i", "how many times", "how often",
	"com que frequencia", "historico", "histórico",
}

func isAnalyticQuestion(content string) bool {
	folded := parse.Fold(content)
	for _, m := range analyticMarkers {
		if strings.Contains(folded, m) {
			return true
		}
	}
	return false
}

// callingPhrases are bare "are you there?" vocatives that get a canned
// acknowledgement instead of a model call.
var callingPhrases = map[string]bool{
	"bot": true, "robo": true, "assistente": true, "secretaria": true,
	"estas ai": true, "esta ai": true, "ta ai": true, "estas ahi": true,
	"are you there": true, "you there": true, "hello?": true,
	"alo": true, "aloo": true, "oi bot": true, "ei": true, "hey bot": true,
}

func isCallingPhrase(content string) bool {
	folded := strings.TrimRight(parse.Fold(strings.TrimSpace(content)), ".!?")
	if len(folded) > 24 {
		return false
	}
	return callingPhrases[folded]
}

// sanitize strips control characters and truncates.
func sanitize(content string) string {
	var b strings.Builder
	for _, r := range content {
		if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > maxContentLength {
		cut := maxContentLength
		// Back up to a rune boundary so the cut never emits invalid UTF-8.
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return strings.TrimSpace(out)
}
