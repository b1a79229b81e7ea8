package router

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
)

// godModeTTL expires an activation.
const godModeTTL = 24 * time.Hour

// godMode holds per-chat diagnostic activations and the operator-managed
// phone lists. All state is process-wide; activations die with the process.
type godMode struct {
	mu          sync.Mutex
	password    string
	activations map[session.Key]time.Time
	allowed     map[string]bool
	muted       map[string]bool
	now         func() time.Time
	started     time.Time
}

func newGodMode(password string, now func() time.Time) *godMode {
	if now == nil {
		now = time.Now
	}
	return &godMode{
		password:    password,
		activations: make(map[session.Key]time.Time),
		allowed:     make(map[string]bool),
		muted:       make(map[string]bool),
		now:         now,
		started:     now(),
	}
}

// active reports a live activation for the chat.
func (g *godMode) active(key session.Key) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	at, ok := g.activations[key]
	if !ok {
		return false
	}
	if g.now().Sub(at) > godModeTTL {
		delete(g.activations, key)
		return false
	}
	return true
}

func (g *godMode) activate(key session.Key)   { g.mu.Lock(); g.activations[key] = g.now(); g.mu.Unlock() }
func (g *godMode) deactivate(key session.Key) { g.mu.Lock(); delete(g.activations, key); g.mu.Unlock() }

// Muted reports whether a phone has been silenced by an operator.
func (r *Router) Muted(phone string) bool {
	r.god.mu.Lock()
	defer r.god.mu.Unlock()
	return r.god.muted[phone]
}

// handleGodMode processes "#" texts: the password toggles the mode, and while
// active the diagnostic commands answer. Replies summarize state and never
// include secrets or full phone numbers beyond what the operator typed.
func (r *Router) handleGodMode(ctx context.Context, t *Turn, text string) ([]string, bool) {
	body := strings.TrimPrefix(text, "#")
	key := t.Key()

	if r.god.password != "" && body == r.god.password {
		r.god.activate(key)
		return []string{locale.T(t.Lang, "god.enabled")}, true
	}
	if !r.god.active(key) {
		return nil, false
	}

	word := body
	arg := ""
	if i := strings.IndexByte(body, ' '); i >= 0 {
		word, arg = body[:i], strings.TrimSpace(body[i+1:])
	}

	switch strings.ToLower(word) {
	case "quit", "sair":
		r.god.deactivate(key)
		return []string{locale.T(t.Lang, "god.disabled")}, true
	case "status":
		return r.godStatus(ctx, t)
	case "users":
		return r.godUsers(ctx, t)
	case "paid", "ai":
		return r.godAI(t)
	case "cron":
		return r.godCron(t)
	case "server", "system":
		return r.godServer(t)
	case "painpoints":
		return r.godPainpoints(t)
	case "injection":
		return r.godInjection(t)
	case "add":
		if arg == "" {
			return []string{"usage: #add <phone>"}, true
		}
		r.god.mu.Lock()
		r.god.allowed[arg] = true
		delete(r.god.muted, arg)
		r.god.mu.Unlock()
		return []string{"added " + locale.TruncatePhone(arg)}, true
	case "remove":
		if arg == "" {
			return []string{"usage: #remove <phone>"}, true
		}
		r.god.mu.Lock()
		delete(r.god.allowed, arg)
		r.god.mu.Unlock()
		return []string{"removed " + locale.TruncatePhone(arg)}, true
	case "mute":
		if arg == "" {
			return []string{"usage: #mute <phone>"}, true
		}
		r.god.mu.Lock()
		r.god.muted[arg] = true
		r.god.mu.Unlock()
		return []string{"muted " + locale.TruncatePhone(arg)}, true
	}
	return nil, false
}

func (r *Router) godStatus(ctx context.Context, t *Turn) ([]string, bool) {
	users, err := r.store.Users.Count(ctx)
	if err != nil {
		r.logger.Error("god status failed", "error", err)
	}
	jobs := r.sched.ListJobs(true)
	enabled := 0
	for _, j := range jobs {
		if j.Enabled {
			enabled++
		}
	}
	sessions := 0
	if r.sessions != nil {
		sessions = r.sessions.Count()
	}
	return []string{fmt.Sprintf(
		"status\n• users: %d\n• jobs: %d (%d enabled)\n• sessions: %d\n• uptime: %s",
		users, len(jobs), enabled, sessions,
		r.now().Sub(r.god.started).Round(time.Second))}, true
}

func (r *Router) godUsers(ctx context.Context, t *Turn) ([]string, bool) {
	users, err := r.store.Users.All(ctx)
	if err != nil {
		r.logger.Error("god users failed", "error", err)
		return []string{"error reading users"}, true
	}
	var b strings.Builder
	fmt.Fprintf(&b, "users: %d", len(users))
	for i, u := range users {
		if i >= 20 {
			fmt.Fprintf(&b, "\n… +%d", len(users)-20)
			break
		}
		fmt.Fprintf(&b, "\n• %s %s (%s, %s)", u.PhoneHint, u.Name, u.Language, u.Timezone)
	}
	return []string{b.String()}, true
}

// DayTotals aggregates meter usage across the retained window.
type DayTotals struct {
	Prompt     int
	Completion int
	Requests   int
}

func (r *Router) godAI(t *Turn) ([]string, bool) {
	if r.meter == nil {
		return []string{"no usage meter configured"}, true
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ai cost today: $%.4f", r.meter.CostToday())

	byProvider := map[string]DayTotals{}
	for _, providers := range r.meter.Totals() {
		for p, d := range providers {
			agg := byProvider[p]
			agg.Prompt += d.PromptTokens
			agg.Completion += d.CompletionTokens
			agg.Requests += d.Requests
			byProvider[p] = agg
		}
	}
	names := make([]string, 0, len(byProvider))
	for p := range byProvider {
		names = append(names, p)
	}
	sort.Strings(names)
	for _, p := range names {
		agg := byProvider[p]
		fmt.Fprintf(&b, "\n• %s: %d in / %d out (%d req)", p, agg.Prompt, agg.Completion, agg.Requests)
	}
	return []string{b.String()}, true
}

func (r *Router) godCron(t *Turn) ([]string, bool) {
	jobs := r.sched.ListJobs(true)
	byKind := map[string]int{}
	for _, j := range jobs {
		byKind[j.Schedule.Kind]++
	}
	var b strings.Builder
	fmt.Fprintf(&b, "cron: %d jobs (at=%d every=%d cron=%d)",
		len(jobs), byKind[scheduler.KindAt], byKind[scheduler.KindEvery], byKind[scheduler.KindCron])

	sort.Slice(jobs, func(i, k int) bool {
		return jobs[i].State.NextRunAtMS < jobs[k].State.NextRunAtMS
	})
	shown := 0
	for _, j := range jobs {
		if j.State.NextRunAtMS == 0 || !j.Enabled {
			continue
		}
		fmt.Fprintf(&b, "\n• %s %s → %s", j.ID, j.Schedule.Kind,
			time.UnixMilli(j.State.NextRunAtMS).In(t.Loc).Format("02/01 15:04"))
		if shown++; shown >= 5 {
			break
		}
	}
	return []string{b.String()}, true
}

func (r *Router) godServer(t *Turn) ([]string, bool) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return []string{fmt.Sprintf(
		"server\n• go: %s\n• goroutines: %d\n• heap: %d MiB\n• uptime: %s",
		runtime.Version(), runtime.NumGoroutine(), m.HeapAlloc>>20,
		r.now().Sub(r.god.started).Round(time.Second))}, true
}

func (r *Router) godPainpoints(t *Turn) ([]string, bool) {
	if r.seclog == nil {
		return []string{"no security log configured"}, true
	}
	points, err := r.seclog.Painpoints()
	if err != nil {
		r.logger.Error("god painpoints failed", "error", err)
		return []string{"error reading painpoints"}, true
	}
	if len(points) == 0 {
		return []string{"no painpoints recorded"}, true
	}
	var b strings.Builder
	fmt.Fprintf(&b, "painpoints: %d", len(points))
	start := 0
	if len(points) > 10 {
		start = len(points) - 10
	}
	for _, p := range points[start:] {
		fmt.Fprintf(&b, "\n• %s — %s", p.At.Format("02/01"), p.Summary)
	}
	return []string{b.String()}, true
}

func (r *Router) godInjection(t *Turn) ([]string, bool) {
	if r.seclog == nil {
		return []string{"no security log configured"}, true
	}
	n, err := r.seclog.BlockedCount()
	if err != nil {
		r.logger.Error("god injection failed", "error", err)
		return []string{"error reading blocked log"}, true
	}
	return []string{fmt.Sprintf("blocked/injection hits: %d", n)}, true
}
