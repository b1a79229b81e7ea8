package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ParserOps collects the parser-profile judgements the rest of the system
// relies on: scope, duplicate, insistence, frustration, summarisation and
// onboarding city resolution. Every caller treats failures as recoverable.
type ParserOps struct {
	registry *Registry
}

// NewParserOps wires the parser helpers onto the registry.
func NewParserOps(r *Registry) *ParserOps {
	return &ParserOps{registry: r}
}

func (p *ParserOps) ask(ctx context.Context, system, user string) (string, error) {
	provider, err := p.registry.ForProfile(ProfileParser)
	if err != nil {
		return "", err
	}
	resp, err := provider.Chat(ctx, Request{
		Profile: ProfileParser,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// yesNo interprets a judgement answer leniently.
func yesNo(answer string) bool {
	a := strings.ToUpper(strings.TrimSpace(answer))
	return strings.HasPrefix(a, "YES") || strings.HasPrefix(a, "SIM") || strings.HasPrefix(a, "SÍ") || strings.HasPrefix(a, "SI")
}

// SameTask implements the scheduler's duplicate judge.
func (p *ParserOps) SameTask(ctx context.Context, a, b string) (bool, error) {
	answer, err := p.ask(ctx,
		"You judge whether two reminder texts refer to the same underlying task. Answer only YES or NO.",
		fmt.Sprintf("A: %s\nB: %s", a, b))
	if err != nil {
		return false, err
	}
	return yesNo(answer), nil
}

// InScope asks whether a message concerns reminders, lists or calendar.
func (p *ParserOps) InScope(ctx context.Context, message string) (bool, error) {
	answer, err := p.ask(ctx,
		"You are the scope filter of a reminders-and-lists assistant. Given a user message, answer only YES when it concerns reminders, lists, calendar events, dates, times, habits or personal organization, and NO otherwise.",
		message)
	if err != nil {
		return false, err
	}
	return yesNo(answer), nil
}

// Insistence reports whether the recent turns show a strong justified need
// for a tighter reminder interval ("doctors recommended", "I really need").
func (p *ParserOps) Insistence(ctx context.Context, transcript string) (bool, error) {
	answer, err := p.ask(ctx,
		"Given the last conversation turns, answer only YES when the user insists on a short reminder interval with a concrete justification (medical advice, urgency), NO otherwise.",
		transcript)
	if err != nil {
		return false, err
	}
	return yesNo(answer), nil
}

// Frustrated reports whether the recent turns read like a complaint.
func (p *ParserOps) Frustrated(ctx context.Context, transcript string) (bool, error) {
	answer, err := p.ask(ctx,
		"Given the last conversation turns, answer only YES when the user appears frustrated with the service or is complaining, NO otherwise.",
		transcript)
	if err != nil {
		return false, err
	}
	return yesNo(answer), nil
}

// Summarise condenses a transcript into one paragraph plus optional
// "- " bullet lines of durable facts worth remembering.
func (p *ParserOps) Summarise(ctx context.Context, transcript string) (summary string, bullets []string, err error) {
	answer, err := p.ask(ctx,
		"Summarise this conversation slice in one short paragraph, in its own language. After the paragraph, list durable user facts worth long-term memory as '- ' bullet lines. No other text.",
		transcript)
	if err != nil {
		return "", nil, err
	}
	lines := strings.Split(answer, "\n")
	var para []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") {
			bullets = append(bullets, strings.TrimPrefix(trimmed, "- "))
		} else if trimmed != "" {
			para = append(para, trimmed)
		}
	}
	return strings.Join(para, " "), bullets, nil
}

// ResolveCity canonicalises a city name and returns its IANA timezone.
// Returns ok=false when the input is not a recognisable city.
func (p *ParserOps) ResolveCity(ctx context.Context, input string) (city, tz string, ok bool, err error) {
	answer, err := p.ask(ctx,
		"The user names a city. Reply with exactly 'City Name|IANA/Timezone' (e.g. 'Lisboa|Europe/Lisbon'), or 'NO' when the input is not a city.",
		input)
	if err != nil {
		return "", "", false, err
	}
	if !strings.Contains(answer, "|") {
		return "", "", false, nil
	}
	parts := strings.SplitN(answer, "|", 2)
	city = strings.TrimSpace(parts[0])
	tz = strings.TrimSpace(parts[1])
	if _, lerr := time.LoadLocation(tz); lerr != nil {
		return "", "", false, nil
	}
	return city, tz, true, nil
}

// Answer runs a free-form parser-profile prompt, used by analytic routing
// and habitual-item suggestions.
func (p *ParserOps) Answer(ctx context.Context, system, user string) (string, error) {
	return p.ask(ctx, system, user)
}
