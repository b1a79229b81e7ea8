package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/llm"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/router"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/tools"
)

// historyWindow is how many trailing session messages enter the model context.
const historyWindow = 20

// assist runs the assistant model with the tool loop. It always returns a
// user-visible reply: on total model failure, the degraded notice.
func (l *Loop) assist(ctx context.Context, t *router.Turn, content string) string {
	messages := l.buildContext(t, content)
	toolDefs := l.tools.Definitions()
	tc := tools.Context{
		Channel:        t.Msg.Channel,
		ChatID:         t.Msg.ChatID,
		PhoneForLocale: t.Msg.PhoneForLocale,
		Language:       t.Lang,
		Location:       t.Loc,
	}

	for iter := 0; iter < l.maxToolIters; iter++ {
		resp, err := l.chat(ctx, llm.Request{
			Profile:  llm.ProfileAssistant,
			Messages: messages,
			Tools:    toolDefs,
		})
		if err != nil {
			l.logger.Error("assistant call failed", "error", err)
			return locale.T(t.Lang, "safety.degraded")
		}

		if len(resp.ToolCalls) == 0 {
			if resp.Content == "" {
				return locale.T(t.Lang, "safety.degraded")
			}
			return resp.Content
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			result := l.tools.Execute(ctx, tc, call)
			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
			})
		}
	}

	// Tool budget exhausted; force a plain answer from what the model has.
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: "Tool budget exhausted. Answer the user now with what you have, without calling tools.",
	})
	resp, err := l.chat(ctx, llm.Request{Profile: llm.ProfileAssistant, Messages: messages})
	if err != nil || resp.Content == "" {
		return locale.T(t.Lang, "safety.degraded")
	}
	return resp.Content
}

// chat calls the assistant provider, feeding the circuit breaker and falling
// back to the parser provider once on failure.
func (l *Loop) chat(ctx context.Context, req llm.Request) (*llm.Response, error) {
	provider, err := l.registry.ForProfile(req.Profile)
	if err != nil {
		return nil, err
	}
	resp, err := provider.Chat(ctx, req)
	if err == nil {
		if l.breaker != nil {
			l.breaker.RecordSuccess()
		}
		return resp, nil
	}
	if l.breaker != nil {
		l.breaker.RecordFailure()
	}
	l.logger.Warn("assistant provider failed, retrying on parser profile",
		"provider", provider.Name(), "error", err)

	fallback, ferr := l.registry.ForProfile(llm.ProfileParser)
	if ferr != nil {
		return nil, err
	}
	req.Profile = llm.ProfileParser
	resp, ferr = fallback.Chat(ctx, req)
	if ferr != nil {
		if l.breaker != nil {
			l.breaker.RecordFailure()
		}
		return nil, ferr
	}
	if l.breaker != nil {
		l.breaker.RecordSuccess()
	}
	return resp, nil
}

// buildContext assembles the system prompt, trailing history and the current
// message.
func (l *Loop) buildContext(t *router.Turn, content string) []llm.Message {
	messages := []llm.Message{{Role: "system", Content: l.systemPrompt(t)}}
	for _, m := range t.Session.Tail(historyWindow) {
		role := m.Role
		if m.HasTag(session.TagSummary) {
			role = "system"
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}
	return append(messages, llm.Message{Role: "user", Content: content})
}

// systemPrompt builds the assistant identity block: role, current local time,
// the user's profile and long-term memory, and the working language.
func (l *Loop) systemPrompt(t *router.Turn) string {
	now := l.now().In(t.Loc)
	var b strings.Builder
	b.WriteString("You are a personal organizer assistant for lists, reminders, calendar events and habits, reached through chat. ")
	b.WriteString("You are warm but brief: chat-length answers, no markdown headers. ")
	b.WriteString("Use the tools for anything that touches stored data; never invent reminder ids or list contents.\n\n")

	fmt.Fprintf(&b, "Current time: %s (%s)\n", now.Format("Monday, 2 January 2006 15:04"), t.Loc)
	fmt.Fprintf(&b, "Answer in: %s\n", t.Lang)
	if t.User.Name != "" {
		fmt.Fprintf(&b, "User's name: %s\n", t.User.Name)
	}

	if l.profiles != nil {
		if profile, err := l.profiles.Read(t.Msg.ChatID); err == nil && profile != "" {
			b.WriteString("\nUser profile:\n")
			b.WriteString(profile)
			b.WriteByte('\n')
		}
	}
	if l.mem != nil {
		if facts := l.mem.RecentFacts(t.Key().Safe(), 10); facts != "" {
			b.WriteString("\nRemembered facts:\n")
			b.WriteString(facts)
			b.WriteByte('\n')
		}
	}
	if l.workspaceDir != "" {
		fmt.Fprintf(&b, "\nWorkspace: %s\n", l.workspaceDir)
	}

	b.WriteString("\nScheduling rules: confirm every reminder you create with its id and local time. ")
	b.WriteString("When a date has passed this year, ask before assuming next year. ")
	b.WriteString("Never promise an action you did not perform with a tool.")
	return b.String()
}
