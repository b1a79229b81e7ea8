package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/locale"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/memory"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/parse"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
)

// handleOnboarding runs the timezone-acquisition machine for users without a
// timezone, then the preferred-name question. Acquisition is non-blocking:
// after a couple of misses the turn falls through so the user can keep using
// the system; a soft nudge rides on the next response instead.
func (r *Router) handleOnboarding(ctx context.Context, t *Turn) ([]string, bool) {
	text := strings.TrimSpace(t.Msg.Content)

	if name := t.Session.MetaString(session.MetaPendingPreferredName); name != "" {
		return r.onboardName(ctx, t, text)
	}

	if !t.Session.MetaBool(session.MetaOnboardingIntroSent) {
		t.Session.SetMeta(session.MetaOnboardingIntroSent, true)
		t.Session.SetMeta(session.MetaPendingTimezone, true)
		return []string{locale.T(t.Lang, "onboarding.intro")}, true
	}

	if t.Session.MetaBool(session.MetaPendingTimeConfirm) {
		return r.onboardTimeConfirm(ctx, t, text)
	}

	if !t.Session.MetaBool(session.MetaPendingTimezone) {
		return nil, false
	}

	// City first: the parser resolves spelling and maps to an IANA zone.
	if r.parser != nil && looksLikeCity(text) {
		city, tz, ok, err := r.parser.ResolveCity(ctx, text)
		if err != nil {
			r.logger.Warn("city resolve failed", "error", err)
		}
		if ok {
			if loc, lerr := time.LoadLocation(tz); lerr == nil {
				return r.onboardAcceptTZ(ctx, t, tz, city, loc)
			}
		}
	}

	// A local time gives us a UTC offset, proposed as Etc/GMT±N.
	if hour, minute, ok := parse.TimeOfDay(text); ok {
		tz, proposed := offsetZone(r.now(), hour, minute)
		t.Session.SetMeta(session.MetaPendingTimeConfirm, true)
		t.Session.SetMeta(session.MetaProposedTZ, tz)
		return []string{locale.T(t.Lang, "onboarding.tz_confirm",
			"date", locale.FormatDate(t.Lang, proposed),
			"time", locale.FormatTime(proposed))}, true
	}

	// Neither: after two misses narrow the question to the time only, and
	// never block the turn beyond that.
	if t.Session.IncrMeta(session.MetaOnboardingNudges) <= 2 {
		return []string{locale.T(t.Lang, "onboarding.time_only")}, true
	}
	return nil, false
}

// onboardTimeConfirm resolves the "So, {date}, {time}. Correct?" answer.
func (r *Router) onboardTimeConfirm(ctx context.Context, t *Turn, text string) ([]string, bool) {
	tz := t.Session.MetaString(session.MetaProposedTZ)
	switch answerValue(text) {
	case 2:
		t.Session.DeleteMeta(session.MetaPendingTimeConfirm)
		t.Session.DeleteMeta(session.MetaProposedTZ)
		return []string{locale.T(t.Lang, "onboarding.time_only")}, true
	default:
		// Yes — and anything that is not a clear "no" counts as acceptance,
		// so a user who moves on with their day is not stuck here.
		loc, err := time.LoadLocation(tz)
		if err != nil {
			loc = time.UTC
			tz = "UTC"
		}
		return r.onboardAcceptTZ(ctx, t, tz, "", loc)
	}
}

// onboardAcceptTZ persists the timezone and moves on to the name question.
func (r *Router) onboardAcceptTZ(ctx context.Context, t *Turn, tz, city string, loc *time.Location) ([]string, bool) {
	t.User.Timezone = tz
	if city != "" {
		t.User.City = city
	}
	r.saveUser(ctx, t)
	t.Loc = loc
	t.Session.DeleteMeta(session.MetaPendingTimezone)
	t.Session.DeleteMeta(session.MetaPendingTimeConfirm)
	t.Session.DeleteMeta(session.MetaProposedTZ)
	t.Session.SetMeta(session.MetaPendingPreferredName, "waiting")

	return []string{
		locale.T(t.Lang, "onboarding.tz_saved", "tz", tz),
		locale.T(t.Lang, "onboarding.ask_name"),
	}, true
}

// onboardName stores the preferred name, falling back to the push-name and
// finally a generic form of address.
func (r *Router) onboardName(ctx context.Context, t *Turn, text string) ([]string, bool) {
	name := text
	if !validName(name) {
		name = strings.TrimSpace(t.Msg.PushName)
	}
	if !validName(name) {
		name = "utilizador"
	}
	t.User.Name = name
	r.saveUser(ctx, t)
	t.Session.DeleteMeta(session.MetaPendingPreferredName)

	if r.profiles != nil {
		err := r.profiles.Write(t.Msg.ChatID, memory.UserProfile{
			Name:     name,
			Timezone: t.User.Timezone,
			Language: t.User.Language,
			City:     t.User.City,
		})
		if err != nil {
			r.logger.Warn("profile write failed", "error", err)
		}
	}
	return []string{locale.T(t.Lang, "onboarding.name_saved", "name", name)}, true
}

// offsetZone maps a stated local wall-clock time to an Etc/GMT±N zone by
// comparing against current UTC, clamped to ±12. The Etc naming is inverted:
// Etc/GMT-3 means UTC+3. Returns the zone name and the stated time located
// in it.
func offsetZone(now time.Time, hour, minute int) (string, time.Time) {
	utc := now.UTC()
	stated := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute
	current := time.Duration(utc.Hour())*time.Hour + time.Duration(utc.Minute())*time.Minute

	offset := stated - current
	// Pick the representation closest to zero across the day boundary.
	if offset > 12*time.Hour {
		offset -= 24 * time.Hour
	}
	if offset < -12*time.Hour {
		offset += 24 * time.Hour
	}
	hours := int((offset + 30*time.Minute).Truncate(time.Hour) / time.Hour)
	if offset < 0 {
		hours = -int((-offset + 30*time.Minute).Truncate(time.Hour) / time.Hour)
	}
	if hours > 12 {
		hours = 12
	}
	if hours < -12 {
		hours = -12
	}

	name := "Etc/GMT"
	switch {
	case hours > 0:
		name = fmt.Sprintf("Etc/GMT-%d", hours)
	case hours < 0:
		name = fmt.Sprintf("Etc/GMT+%d", -hours)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.UTC
		name = "UTC"
	}
	local := now.In(loc)
	proposed := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	return name, proposed
}

// looksLikeCity filters out obvious non-city answers before spending a parser
// call: short alphabetic texts without digits or scheduling words.
func looksLikeCity(text string) bool {
	if text == "" || len(text) > 60 {
		return false
	}
	if strings.ContainsAny(text, "0123456789:/") {
		return false
	}
	return len(strings.Fields(text)) <= 4
}

// validName accepts short alphabetic names.
func validName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 40 {
		return false
	}
	if strings.ContainsAny(name, "0123456789@#/\\") {
		return false
	}
	return len(strings.Fields(name)) <= 4
}
