package router

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/bus"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/database"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/scheduler"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/store"
)

const testChat = "5511999990000"

type routerEnv struct {
	r        *Router
	store    *store.Store
	sched    *scheduler.Scheduler
	sessions *session.Store
	now      *time.Time
	loc      *time.Location
	user     *store.User
	sess     *session.Session
}

func newTestRouter(t *testing.T) *routerEnv {
	t.Helper()

	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, loc)

	dbCfg := database.DefaultHubConfig()
	dbCfg.SQLite.Path = filepath.Join(t.TempDir(), "test.db")
	hub, err := database.NewHub(dbCfg, nil)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	t.Cleanup(func() { hub.Close() })
	st := store.New(hub)

	fs, err := scheduler.NewFileStore(filepath.Join(t.TempDir(), "jobs.json"), nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	sched := scheduler.New(scheduler.DefaultConfig(), fs, func() time.Time { return now }, nil)

	sessions, err := session.NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("session.NewStore: %v", err)
	}

	r := New(Config{
		Store:     st,
		Scheduler: sched,
		Sessions:  sessions,
		Now:       func() time.Time { return now },
	})

	ctx := context.Background()
	user, _, err := st.Users.GetOrCreate(ctx, testChat, testChat, "pt-BR", "America/Sao_Paulo")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	sess := sessions.GetOrCreate(session.Key{Channel: "whatsapp", ChatID: testChat})

	return &routerEnv{
		r: r, store: st, sched: sched, sessions: sessions,
		now: &now, loc: loc, user: user, sess: sess,
	}
}

func (e *routerEnv) turn(text string) *Turn {
	return &Turn{
		Msg:     bus.InboundMessage{Channel: "whatsapp", ChatID: testChat, Content: text},
		User:    e.user,
		Session: e.sess,
		Lang:    locale.PortugueseBR,
		Loc:     e.loc,
	}
}

func (e *routerEnv) handle(t *testing.T, text string) []string {
	t.Helper()
	replies, ok := e.r.Handle(context.Background(), e.turn(text))
	if !ok {
		t.Fatalf("turn %q should be claimed by the router", text)
	}
	for _, reply := range replies {
		if reply == "" {
			t.Fatalf("turn %q produced an empty reply", text)
		}
	}
	return replies
}

func TestRelativeReminderCreatesOneShot(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	e.handle(t, "me lembra de pagar a conta daqui a 30 minutos")

	jobs := e.sched.JobsForChat(testChat)
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	j := jobs[0]
	if j.Payload.Message != "pagar a conta" {
		t.Fatalf("message = %q", j.Payload.Message)
	}
	want := e.now.Add(30 * time.Minute).UnixMilli()
	if j.Schedule.AtMS != want {
		t.Fatalf("fires at %d, want %d", j.Schedule.AtMS, want)
	}
	if !j.DeleteAfterRun {
		t.Fatal("one-shot reminder should be delete-after-run")
	}
}

func TestRecurringBelowFloorIsRejected(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	replies := e.handle(t, "/lembrete beber água a cada 10 minutos")
	if len(replies) != 1 || !strings.Contains(replies[0], "2h") {
		t.Fatalf("floor rejection should mention the minimum, got %q", replies)
	}
	if len(e.sched.JobsForChat(testChat)) != 0 {
		t.Fatal("no job should be created below the floor")
	}

	// Three hours clears the floor without insistence.
	e.handle(t, "/lembrete beber água a cada 3 horas")
	jobs := e.sched.JobsForChat(testChat)
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	if jobs[0].Schedule.Kind != scheduler.KindEvery || jobs[0].Schedule.EveryMS != (3*time.Hour).Milliseconds() {
		t.Fatalf("schedule = %+v", jobs[0].Schedule)
	}
}

func TestPastDateAsksNextYearConfirmation(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)

	// March 12 has passed in August; confirmation before moving to next year.
	e.handle(t, "me lembra da consulta dia 12/03")
	if len(e.sched.JobsForChat(testChat)) != 0 {
		t.Fatal("nothing scheduled before the confirmation")
	}
	if _, ok := e.r.Confirmations().Peek(session.Key{Channel: "whatsapp", ChatID: testChat}); !ok {
		t.Fatal("a pending confirmation should be installed")
	}

	e.handle(t, "sim")
	// The confirmed job plus its automatic 24h-before alert.
	jobs := e.sched.JobsForChat(testChat)
	if len(jobs) != 2 {
		t.Fatalf("jobs after confirmation = %d, want main + lead alert", len(jobs))
	}
	var main *scheduler.Job
	for _, j := range jobs {
		if j.Payload.ParentJobID == "" {
			main = j
		}
	}
	if main == nil {
		t.Fatalf("no main job in %+v", jobs)
	}
	at := time.UnixMilli(main.Schedule.AtMS).In(e.loc)
	if at.Year() != 2027 || at.Month() != time.March || at.Day() != 12 {
		t.Fatalf("scheduled for %s, want 2027-03-12", at)
	}
}

func TestPastDateDeclined(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	e.handle(t, "me lembra da consulta dia 12/03")
	e.handle(t, "não")
	if len(e.sched.JobsForChat(testChat)) != 0 {
		t.Fatal("declined confirmation must not schedule")
	}
	if _, ok := e.r.Confirmations().Peek(session.Key{Channel: "whatsapp", ChatID: testChat}); ok {
		t.Fatal("the confirmation should be consumed")
	}
}

func TestVagueTimeFlow(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)

	// Date known, time missing: the flow asks for the time.
	e.handle(t, "me lembra de ligar para o médico amanhã")
	if len(e.sched.JobsForChat(testChat)) != 0 {
		t.Fatal("nothing scheduled before the time is known")
	}

	// Bare "19h" answers the pending question instead of being misread.
	replies := e.handle(t, "19h")
	if len(replies) != 2 {
		t.Fatalf("expected scheduled + advance question, got %d replies", len(replies))
	}
	jobs := e.sched.JobsForChat(testChat)
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	at := time.UnixMilli(jobs[0].Schedule.AtMS).In(e.loc)
	wantDay := e.now.AddDate(0, 0, 1)
	if at.Day() != wantDay.Day() || at.Hour() != 19 || at.Minute() != 0 {
		t.Fatalf("scheduled for %s, want tomorrow 19:00", at)
	}

	// Declining the advance alert ends the flow.
	e.handle(t, "não")
	var rf reminderFlow
	if e.sess.MetaJSON(session.MetaReminderFlow, &rf) && rf.Stage != "" {
		t.Fatalf("flow should be cleared, stage = %q", rf.Stage)
	}
	if got := len(e.sched.JobsForChat(testChat)); got != 1 {
		t.Fatalf("declined advance alert added jobs: %d", got)
	}
}

func TestVagueTimeFlowAdvanceAlert(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	e.handle(t, "me lembra da entrevista amanhã")
	e.handle(t, "15:00")
	e.handle(t, "sim")
	e.handle(t, "2 horas")

	jobs := e.sched.JobsForChat(testChat)
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want main + lead alert", len(jobs))
	}
	var main, lead *scheduler.Job
	for _, j := range jobs {
		if j.Payload.ParentJobID != "" {
			lead = j
		} else {
			main = j
		}
	}
	if main == nil || lead == nil {
		t.Fatalf("missing main or lead: %+v", jobs)
	}
	if lead.Schedule.AtMS != main.Schedule.AtMS-(2*time.Hour).Milliseconds() {
		t.Fatalf("lead at %d, want 2h before %d", lead.Schedule.AtMS, main.Schedule.AtMS)
	}
}

func TestFlowGivesUpAfterThreeMisses(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	e.handle(t, "me lembra de ligar para o dentista amanhã")
	e.handle(t, "qualquer coisa")
	e.handle(t, "continuo sem responder direito")
	e.handle(t, "e de novo")

	var rf reminderFlow
	if e.sess.MetaJSON(session.MetaReminderFlow, &rf) && rf.Stage != "" {
		t.Fatal("flow should back out after repeated unparseable answers")
	}
	if len(e.sched.JobsForChat(testChat)) != 0 {
		t.Fatal("backed-out flow must not schedule")
	}
}

func TestReactionCompletesDependentChain(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	ctx := context.Background()

	main, err := e.sched.AddJob(ctx, scheduler.AddJobRequest{
		Name:     "terminar o relatório",
		Schedule: scheduler.At(e.now.Add(time.Hour)),
		Payload: scheduler.Payload{
			Kind: scheduler.PayloadAgentTurn, Message: "terminar o relatório",
			Channel: "whatsapp", ChatID: testChat, Deliver: true,
		},
		DeleteAfterRun: true,
	})
	if err != nil {
		t.Fatalf("main AddJob: %v", err)
	}
	dep, err := e.sched.AddJob(ctx, scheduler.AddJobRequest{
		Name:     "enviar o relatório",
		Schedule: scheduler.At(e.now.Add(time.Hour)),
		Payload: scheduler.Payload{
			Kind: scheduler.PayloadAgentTurn, Message: "enviar o relatório",
			Channel: "whatsapp", ChatID: testChat, Deliver: true,
			DependsOnJobID: main.Job.ID,
		},
		DeleteAfterRun: true,
	})
	if err != nil {
		t.Fatalf("dependent AddJob: %v", err)
	}

	key := session.Key{Channel: "whatsapp", ChatID: testChat}
	e.r.Deliveries().Record(key, "wamid.1", main.Job.ID)

	turn := e.turn("")
	turn.Msg.Reaction = &bus.Reaction{Emoji: "👍", TargetID: "wamid.1"}
	replies, ok := e.r.Handle(ctx, turn)
	if !ok || len(replies) == 0 {
		t.Fatalf("reaction not handled: %v, %v", replies, ok)
	}

	released, err := e.sched.GetJob(dep.Job.ID)
	if err != nil {
		t.Fatalf("GetJob dependent: %v", err)
	}
	if !released.State.Released || released.State.NextRunAtMS == 0 {
		t.Fatalf("dependent not released: %+v", released.State)
	}
}

func TestReactionRejectOffersRescheduleOrCancel(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	ctx := context.Background()

	res, err := e.sched.AddJob(ctx, scheduler.AddJobRequest{
		Name:     "ir ao correio",
		Schedule: scheduler.At(e.now.Add(time.Hour)),
		Payload: scheduler.Payload{
			Kind: scheduler.PayloadAgentTurn, Message: "ir ao correio",
			Channel: "whatsapp", ChatID: testChat, Deliver: true,
		},
		DeleteAfterRun: true,
	})
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	key := session.Key{Channel: "whatsapp", ChatID: testChat}
	e.r.Deliveries().Record(key, "wamid.9", res.Job.ID)

	turn := e.turn("")
	turn.Msg.Reaction = &bus.Reaction{Emoji: "👎", TargetID: "wamid.9"}
	if _, ok := e.r.Handle(ctx, turn); !ok {
		t.Fatal("reject reaction should be handled")
	}

	// "2" cancels the reminder.
	e.handle(t, "2")
	if len(e.sched.JobsForChat(testChat)) != 0 {
		t.Fatal("cancel choice should remove the job")
	}
}

func TestReactionRemovalIgnored(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	turn := e.turn("")
	turn.Msg.Reaction = &bus.Reaction{Emoji: "👍", TargetID: "x", Remove: true}
	if _, ok := e.r.Handle(context.Background(), turn); ok {
		t.Fatal("reaction removals are not actions")
	}
}

func TestListCommands(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)

	e.handle(t, "/list mercado add leite, pão e café")
	items, err := e.store.Lists.Items(context.Background(), mustList(t, e, "mercado").ID, false)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}

	e.handle(t, "/list mercado feito leite")
	open, _ := e.store.Lists.Items(context.Background(), mustList(t, e, "mercado").ID, false)
	if len(open) != 2 {
		t.Fatalf("open after feito = %d, want 2", len(open))
	}

	e.handle(t, "/list mercado remove pão")
	open, _ = e.store.Lists.Items(context.Background(), mustList(t, e, "mercado").ID, false)
	if len(open) != 1 || open[0].Text != "café" {
		t.Fatalf("open after remove = %+v", open)
	}

	// /add uses the default list.
	e.handle(t, "/add comprar selos")
	if _, err := e.store.Lists.GetByName(context.Background(), testChat, "tarefas"); err != nil {
		t.Fatalf("default list missing: %v", err)
	}

	// Unknown list reads answer gracefully.
	replies := e.handle(t, "/list inexistente")
	if len(replies) != 1 {
		t.Fatalf("replies = %v", replies)
	}
}

func mustList(t *testing.T, e *routerEnv, name string) *store.List {
	t.Helper()
	l, err := e.store.Lists.GetByName(context.Background(), testChat, name)
	if err != nil {
		t.Fatalf("GetByName(%s): %v", name, err)
	}
	return l
}

func TestNaturalLanguageListIntent(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	e.handle(t, "cria uma lista de compras")
	if _, err := e.store.Lists.GetByName(context.Background(), testChat, "compras"); err != nil {
		t.Fatalf("list not created: %v", err)
	}
	e.handle(t, "adiciona detergente na lista compras")
	items, _ := e.store.Lists.Items(context.Background(), mustList(t, e, "compras").ID, false)
	if len(items) != 1 || items[0].Text != "detergente" {
		t.Fatalf("items = %+v", items)
	}
}

func TestObligationBraindumpOffersChoice(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	e.handle(t, "tenho que pagar a renda, ligar ao banco e marcar o dentista")

	p, ok := e.r.Confirmations().Peek(session.Key{Channel: "whatsapp", ChatID: testChat})
	if !ok || p.Action != ActionListOrEvents {
		t.Fatalf("pending = %+v, %v; want list_or_events_choice", p, ok)
	}
	if len(p.Items) != 3 {
		t.Fatalf("items = %v, want 3", p.Items)
	}

	// "1" puts everything on the tarefas list.
	e.handle(t, "1")
	items, _ := e.store.Lists.Items(context.Background(), mustList(t, e, "tarefas").ID, false)
	if len(items) != 3 {
		t.Fatalf("tarefas items = %d, want 3", len(items))
	}
}

func TestStopStartToggleJobs(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	e.handle(t, "me lembra de pagar a conta daqui a 2 horas")
	if len(e.sched.JobsForChat(testChat)) != 1 {
		t.Fatal("setup job missing")
	}

	e.handle(t, "/stop")
	if len(e.sched.JobsForChat(testChat)) != 0 {
		t.Fatal("/stop should pause the chat's jobs")
	}
	e.handle(t, "/start")
	if len(e.sched.JobsForChat(testChat)) != 1 {
		t.Fatal("/start should resume them")
	}
}

func TestQuietCommand(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	e.handle(t, "/quiet 22:00 08:00")
	if e.user.QuietStart != "22:00" || e.user.QuietEnd != "08:00" {
		t.Fatalf("quiet window = %q–%q", e.user.QuietStart, e.user.QuietEnd)
	}
	e.handle(t, "/quiet off")
	if e.user.QuietStart != "" || e.user.QuietEnd != "" {
		t.Fatal("/quiet off should clear the window")
	}
}

func TestTZAndLangCommands(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	e.handle(t, "/tz Europe/Lisbon")
	if e.user.Timezone != "Europe/Lisbon" {
		t.Fatalf("timezone = %q", e.user.Timezone)
	}
	replies := e.handle(t, "/tz Planeta/Marte")
	if len(replies) != 1 {
		t.Fatalf("invalid tz replies = %v", replies)
	}
	if e.user.Timezone != "Europe/Lisbon" {
		t.Fatal("invalid tz must not overwrite")
	}

	e.handle(t, "/lang en")
	if e.user.Language != "en" {
		t.Fatalf("language = %q", e.user.Language)
	}
}

func TestFeitoByJobID(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	e.handle(t, "me lembra de pagar a conta daqui a 2 horas")
	jobs := e.sched.JobsForChat(testChat)
	if len(jobs) != 1 {
		t.Fatal("setup job missing")
	}

	e.handle(t, "/feito "+strings.ToLower(jobs[0].ID))
	if len(e.sched.JobsForChat(testChat)) != 0 {
		t.Fatal("completed one-shot should be gone")
	}
}

func TestDeleteAllKeepsPrefsNukeResetsThem(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	ctx := context.Background()
	e.handle(t, "/add leite")
	e.handle(t, "me lembra de pagar a conta daqui a 2 horas")

	e.handle(t, "/deletar_tudo")
	e.handle(t, "sim")

	lists, err := e.store.Lists.ByUser(ctx, testChat)
	if err != nil {
		t.Fatal(err)
	}
	if len(lists) != 0 {
		t.Fatalf("lists after delete = %d, want 0", len(lists))
	}
	if len(e.sched.JobsForChat(testChat)) != 0 {
		t.Fatal("jobs should be purged")
	}
	if e.user.Timezone == "" {
		t.Fatal("delete-all keeps preferences")
	}
}

func TestOnboardingViaLocalTime(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	ctx := context.Background()

	// Fresh user, no timezone. The router clock reads 15:00 UTC.
	utcNow := time.Date(2026, 8, 25, 15, 0, 0, 0, time.UTC)
	*e.now = utcNow
	e.user.Timezone = ""
	e.user.Language = "pt-BR"

	onboard := func(text string) []string {
		turn := e.turn(text)
		turn.Loc = time.UTC
		replies, ok := e.r.Onboard(ctx, turn)
		if !ok {
			t.Fatalf("onboarding should consume %q", text)
		}
		return replies
	}

	if !e.r.NeedsOnboarding(e.turn("oi")) {
		t.Fatal("user without timezone needs onboarding")
	}
	onboard("oi")
	if !e.sess.MetaBool(session.MetaOnboardingIntroSent) {
		t.Fatal("intro flag should be set")
	}

	// Local wall clock 12:00 against 15:00 UTC proposes UTC-3.
	onboard("12:00")
	if tz := e.sess.MetaString(session.MetaProposedTZ); tz != "Etc/GMT+3" {
		t.Fatalf("proposed tz = %q, want Etc/GMT+3", tz)
	}

	onboard("sim")
	if e.user.Timezone != "Etc/GMT+3" {
		t.Fatalf("timezone = %q, want Etc/GMT+3", e.user.Timezone)
	}
	if e.sess.MetaString(session.MetaPendingPreferredName) == "" {
		t.Fatal("name question should be pending")
	}

	onboard("Ana")
	if e.user.Name != "Ana" {
		t.Fatalf("name = %q", e.user.Name)
	}
	if e.r.NeedsOnboarding(e.turn("oi")) {
		t.Fatal("onboarding should be finished")
	}
}

func TestOnboardingTimeConfirmRejected(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	ctx := context.Background()
	*e.now = time.Date(2026, 8, 25, 15, 0, 0, 0, time.UTC)
	e.user.Timezone = ""

	turnUTC := func(text string) *Turn {
		turn := e.turn(text)
		turn.Loc = time.UTC
		return turn
	}
	e.r.Onboard(ctx, turnUTC("oi"))
	e.r.Onboard(ctx, turnUTC("18:00"))
	if tz := e.sess.MetaString(session.MetaProposedTZ); tz != "Etc/GMT-3" {
		t.Fatalf("proposed tz = %q, want Etc/GMT-3", tz)
	}

	// A clear "no" re-asks for the time instead of saving.
	e.r.Onboard(ctx, turnUTC("não"))
	if e.user.Timezone != "" {
		t.Fatal("rejected proposal must not save a timezone")
	}
	if e.sess.MetaString(session.MetaProposedTZ) != "" {
		t.Fatal("rejected proposal should be discarded")
	}
}

func TestTimezoneNudgeOncePerSession(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	e.user.Timezone = ""
	if got := e.r.TimezoneNudge(e.turn("oi")); got == "" {
		t.Fatal("first nudge should be non-empty")
	}
	if got := e.r.TimezoneNudge(e.turn("oi")); got != "" {
		t.Fatalf("second nudge = %q, want empty", got)
	}
}

func TestAnswerValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"sim", 1}, {"Sim!", 1}, {"claro", 1}, {"yes", 1}, {"1", 1},
		{"não", 2}, {"nao", 2}, {"cancela", 2}, {"2", 2},
		{"ambos", 3}, {"os dois", 3}, {"both", 3}, {"3", 3},
		{"talvez", 0}, {"sim quero mudar o horário", 0}, {"", 0},
	}
	for _, tt := range tests {
		if got := answerValue(tt.in); got != tt.want {
			t.Errorf("answerValue(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLooksLikeJobID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"AB", true}, {"abc", true}, {"ABC2", true}, {"abcd3", true},
		{"a", false}, {"toolong", false}, {"a1b", false}, {"pão", false},
	}
	for _, tt := range tests {
		if got := looksLikeJobID(tt.in); got != tt.want {
			t.Errorf("looksLikeJobID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSplitItems(t *testing.T) {
	t.Parallel()

	got := splitItems("leite, ovos e pão")
	if len(got) != 3 || got[0] != "leite" || got[1] != "ovos" || got[2] != "pão" {
		t.Fatalf("splitItems = %v", got)
	}
	got = splitItems("milk and eggs")
	if len(got) != 2 || got[1] != "eggs" {
		t.Fatalf("splitItems en = %v", got)
	}
	if got := splitItems("  "); len(got) != 0 {
		t.Fatalf("blank input = %v", got)
	}
}

func TestConfirmationTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	c := NewConfirmations(func() time.Time { return now })
	key := session.Key{Channel: "whatsapp", ChatID: "x"}

	c.Install(key, Pending{Action: ActionExportar})
	if _, ok := c.Peek(key); !ok {
		t.Fatal("fresh entry should be visible")
	}
	now = now.Add(6 * time.Minute)
	if _, ok := c.Peek(key); ok {
		t.Fatal("expired entry should be hidden")
	}
	if _, ok := c.Take(key); ok {
		t.Fatal("expired entry should not be taken")
	}
}

func TestDeliveriesResolve(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	d := NewDeliveries(func() time.Time { return now })
	key := session.Key{Channel: "whatsapp", ChatID: "x"}

	if _, ok := d.Resolve(key, ""); ok {
		t.Fatal("empty registry resolves nothing")
	}
	d.Record(key, "m1", "JOB1")
	d.Record(key, "m2", "JOB2")

	if id, ok := d.Resolve(key, "m1"); !ok || id != "JOB1" {
		t.Fatalf("Resolve m1 = %q, %v", id, ok)
	}
	// Empty and unknown targets fall back to the most recent delivery.
	if id, ok := d.Resolve(key, ""); !ok || id != "JOB2" {
		t.Fatalf("Resolve latest = %q, %v", id, ok)
	}
	if id, ok := d.Resolve(key, "m999"); !ok || id != "JOB2" {
		t.Fatalf("Resolve unknown = %q, %v", id, ok)
	}

	now = now.Add(25 * time.Hour)
	if _, ok := d.Resolve(key, "m1"); ok {
		t.Fatal("deliveries past the TTL resolve nothing")
	}
}

func TestOffsetZone(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 25, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		hour, minute int
		want         string
	}{
		{12, 0, "Etc/GMT+3"},
		{18, 0, "Etc/GMT-3"},
		{15, 0, "Etc/GMT"},
		{3, 0, "Etc/GMT+12"},
	}
	for _, tt := range tests {
		name, _ := offsetZone(now, tt.hour, tt.minute)
		if name != tt.want {
			t.Errorf("offsetZone(%02d:%02d) = %q, want %q", tt.hour, tt.minute, name, tt.want)
		}
	}
}

func TestHelpOnUnknownCommand(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	replies := e.handle(t, "/naoexiste")
	if len(replies) != 1 || replies[0] == "" {
		t.Fatalf("unknown command should answer with help, got %v", replies)
	}
}

func TestUnclaimedTurnFallsThrough(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	if _, ok := e.r.Handle(context.Background(), e.turn("qual é a capital da França?")); ok {
		t.Fatal("chitchat should fall through to the assistant")
	}
}

func TestMinIntervalTextNamesFloorInEffect(t *testing.T) {
	t.Parallel()

	e := newTestRouter(t)
	req := scheduler.AddJobRequest{
		Name:     "beber água",
		Schedule: scheduler.Every(10 * time.Minute),
		Payload: scheduler.Payload{
			Kind: scheduler.PayloadAgentTurn, Message: "beber água",
			Channel: "whatsapp", ChatID: testChat, Deliver: true,
		},
	}

	_, err := e.sched.AddJob(context.Background(), req)
	if err == nil {
		t.Fatal("10 minutes is below the strict floor")
	}
	if got := minIntervalText(err); got != "2h" {
		t.Fatalf("strict floor text = %q, want 2h", got)
	}

	// After insistence the relaxed floor applies and the reply names it.
	req.RelaxMinInterval = true
	_, err = e.sched.AddJob(context.Background(), req)
	if err == nil {
		t.Fatal("10 minutes is below the relaxed floor too")
	}
	if got := minIntervalText(err); got != "30min" {
		t.Fatalf("relaxed floor text = %q, want 30min", got)
	}
}
