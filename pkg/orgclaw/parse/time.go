package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Kind is the shape of a parsed schedule.
type Kind int

const (
	KindNone Kind = iota
	// KindAt is a one-shot at an absolute instant.
	KindAt
	// KindEvery is a fixed interval.
	KindEvery
	// KindCron is a five-field cron expression in the user's timezone.
	KindCron
)

// Result is a parsed schedule plus the message left after removing the time
// expression from the input.
type Result struct {
	Kind     Kind
	At       time.Time
	Every    time.Duration
	CronExpr string

	// NotBefore is set by "a partir de <date>" forms on recurring schedules.
	NotBefore *time.Time

	// PastDate marks an absolute date that had already passed; At then holds
	// the same date moved to the next year, pending user confirmation.
	PastDate bool

	// HasTime and HasDate report which components were explicit in the text.
	// The vague-time flow uses them to ask for the missing piece.
	HasTime bool
	HasDate bool

	// Message is the input with scheduling words removed, suitable as the
	// reminder text.
	Message string
}

// Unit multipliers shared by the interval and relative forms.
var unitSeconds = map[string]int64{
	"seg": 1, "segundo": 1, "segundos": 1, "sec": 1, "secs": 1, "second": 1, "seconds": 1,
	"min": 60, "mins": 60, "minuto": 60, "minutos": 60, "minute": 60, "minutes": 60, "m": 60,
	"h": 3600, "hr": 3600, "hrs": 3600, "hora": 3600, "horas": 3600, "hour": 3600, "hours": 3600,
	"dia": 86400, "dias": 86400, "day": 86400, "days": 86400, "d": 86400,
	"semana": 604800, "semanas": 604800, "week": 604800, "weeks": 604800,
}

const unitPattern = `(segundos?|segs?|seconds?|secs?|minutos?|mins?|minutes?|horas?|hours?|hrs?|dias?|days?|semanas?|weeks?|[mhd])`

// Weekday numbers follow cron convention (0 = Sunday).
var weekdayNumbers = map[string]int{
	"domingo": 0, "sunday": 0,
	"segunda": 1, "segunda-feira": 1, "segundas": 1, "lunes": 1, "monday": 1, "mondays": 1,
	"terca": 2, "terca-feira": 2, "tercas": 2, "martes": 2, "tuesday": 2, "tuesdays": 2,
	"quarta": 3, "quarta-feira": 3, "quartas": 3, "miercoles": 3, "wednesday": 3, "wednesdays": 3,
	"quinta": 4, "quinta-feira": 4, "quintas": 4, "jueves": 4, "thursday": 4, "thursdays": 4,
	"sexta": 5, "sexta-feira": 5, "sextas": 5, "viernes": 5, "friday": 5, "fridays": 5,
	"sabado": 6, "sabados": 6, "saturday": 6, "saturdays": 6,
}

const weekdayPattern = `(domingo|segunda(?:-feira)?s?|terca(?:-feira)?s?|quarta(?:-feira)?s?|quinta(?:-feira)?s?|sexta(?:-feira)?s?|sabados?|lunes|martes|miercoles|jueves|viernes|sunday|monday|mondays|tuesday|tuesdays|wednesday|wednesdays|thursday|thursdays|friday|fridays|saturday|saturdays)`

var monthNumbers = map[string]time.Month{
	"janeiro": time.January, "enero": time.January, "january": time.January,
	"fevereiro": time.February, "febrero": time.February, "february": time.February,
	"marco": time.March, "marzo": time.March, "march": time.March,
	"abril": time.April, "april": time.April,
	"maio": time.May, "mayo": time.May, "may": time.May,
	"junho": time.June, "junio": time.June, "june": time.June,
	"julho": time.July, "julio": time.July, "july": time.July,
	"agosto": time.August, "august": time.August,
	"setembro": time.September, "septiembre": time.September, "september": time.September,
	"outubro": time.October, "octubre": time.October, "october": time.October,
	"novembro": time.November, "noviembre": time.November, "november": time.November,
	"dezembro": time.December, "diciembre": time.December, "december": time.December,
}

const monthPattern = `(janeiro|enero|january|fevereiro|febrero|february|marco|marzo|march|abril|april|maio|mayo|may|junho|junio|june|julho|julio|july|agosto|august|setembro|septiembre|september|outubro|octubre|october|novembro|noviembre|november|dezembro|diciembre|december)`

var (
	reStartFrom = regexp.MustCompile(`\ba partir (?:de |del |do dia )?` +
		`(?:(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?|(?:dia )?(\d{1,2}) de ` + monthPattern + `)`)

	reHalfInterval = regexp.MustCompile(`\b(?:a cada|cada|every) (?:meia hora|media hora|half an? hour)\b`)
	reEvery        = regexp.MustCompile(`\b(?:a cada|cada|every|todos os|todas as) (\d+) ?` + unitPattern + `\b`)
	reEveryPT      = regexp.MustCompile(`\bde (\d+) em \d+ ?` + unitPattern + `\b`)

	reIn = regexp.MustCompile(`\b(?:daqui a|dentro de|em|en|in) (\d+) ?` + unitPattern + `\b`)

	reDaily   = regexp.MustCompile(`\b(?:todo o? ?dia|todos os dias|diariamente|cada dia|todos los dias|every ?day|daily)\b`)
	reWeekly  = regexp.MustCompile(`\b(?:toda a? ?|todas as |todos os |every |cada |todo )(?:semana )?` + weekdayPattern + `\b`)
	reMonthly = regexp.MustCompile(`\b(?:mensalmente|todo mes|todos os meses|cada mes|every month|monthly)\b(?: (?:no |el |on the )?dia (\d{1,2})| (?:no |el )?(\d{1,2})| on the (\d{1,2})(?:st|nd|rd|th)?)?`)

	reWeekdayList       = regexp.MustCompile(weekdayPattern + `(?: ?(?:,|e |y |and ) ?` + weekdayPattern + `)+`)
	reWeekdayListMarked = regexp.MustCompile(`\b(?:toda |todas as |todos os |every |cada |todo )` + weekdayPattern + `(?: ?(?:,|e |y |and ) ?` + weekdayPattern + `)+`)
	reWeekdayOne        = regexp.MustCompile(weekdayPattern)

	reTomorrow = regexp.MustCompile(`\b(?:amanha|manana|tomorrow)\b`)
	reToday    = regexp.MustCompile(`\b(?:hoje|hoy|today|esta noite|tonight)\b`)

	// Time-of-day forms, tried in order.
	reTimeAt     = regexp.MustCompile(`\b(?:as|a las|at) (\d{1,2})(?:[:h](\d{2})?)? ?(am|pm)?\b`)
	reTimeH      = regexp.MustCompile(`\b(\d{1,2})h(\d{2})?\b`)
	reTimeColon  = regexp.MustCompile(`\b(\d{1,2}):(\d{2}) ?(am|pm)?\b`)
	reTimeAmPm   = regexp.MustCompile(`\b(\d{1,2}) ?(am|pm)\b`)
	reTimeMil    = regexp.MustCompile(`\b([01]\d|2[0-3])([0-5]\d)\b`)
	reMorning    = regexp.MustCompile(`\b(?:da manha|de la manana|in the morning)\b`)
	reAfternoon  = regexp.MustCompile(`\b(?:da tarde|de la tarde|in the afternoon)\b`)
	reNight      = regexp.MustCompile(`\b(?:da noite|de la noche|at night)\b`)

	reDateSlash = regexp.MustCompile(`\b(?:dia |el )?(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	reDateOf    = regexp.MustCompile(`\b(?:dia |el )?(\d{1,2})(?:st|nd|rd|th)? (?:de |of )?` + monthPattern + `(?: (?:de |of )?(\d{4}))?\b`)
	reDateEn    = regexp.MustCompile(`\b` + monthPattern + ` (\d{1,2})(?:st|nd|rd|th)?(?:,? (\d{4}))?\b`)

	reLeadingVerb = regexp.MustCompile(`^(?:por favor |pf )?(?:me lembra|me lembre|lembra-me|lembre-me|lembra me|lembra|lembrete|me avisa|avisa-me|avise-me|remind me|remember me|recuerdame|recuerda-me|recordame|avisame|no te olvides de recordarme|crie? um lembrete|cria um lembrete|poe um lembrete|marca|agenda|agendar|schedule|set a reminder)(?: de| que| para| to| about| a| pra)? ?`)
	reTrailingJunk = regexp.MustCompile(`(?:\s+(?:as|a las|at|para|pra|de|em|en|no|na|o|a)|\s*[,.;:!])+\s*$`)
)

type span struct{ start, end int } // rune offsets

// foldAligned lowercases and strips diacritics one rune at a time so the
// output has exactly one rune per input rune and regex spans map back.
func foldAligned(original []rune) string {
	out := make([]rune, len(original))
	for i, r := range original {
		d := norm.NFD.String(strings.ToLower(string(r)))
		out[i] = ' '
		for _, dr := range d {
			if !unicode.Is(unicode.Mn, dr) {
				out[i] = dr
				break
			}
		}
	}
	return string(out)
}

func byteToRune(s string, byteOff int) int {
	return utf8.RuneCountInString(s[:byteOff])
}

// Schedule parses text as a schedule request relative to now in loc.
// Returns false when no time expression is present at all.
func Schedule(text string, now time.Time, loc *time.Location) (*Result, bool) {
	if loc == nil {
		loc = time.UTC
	}
	original := []rune(strings.TrimSpace(text))
	folded := foldAligned(original)
	now = now.In(loc)

	res := &Result{}
	var spans []span
	mark := func(m []int) {
		spans = append(spans, span{byteToRune(folded, m[0]), byteToRune(folded, m[1])})
	}

	// "a partir de <date>" sets the window start on recurring schedules.
	if m := reStartFrom.FindStringSubmatchIndex(folded); m != nil {
		if t, ok := dateFromStartMatch(folded, m, now, loc); ok {
			res.NotBefore = &t
			mark(m[:2])
		}
	}

	// Recurring intervals.
	if m := reHalfInterval.FindStringIndex(folded); m != nil {
		res.Kind = KindEvery
		res.Every = 30 * time.Minute
		mark(m)
		res.Message = extractMessage(original, folded, spans)
		return res, true
	}
	if m := reEvery.FindStringSubmatchIndex(folded); m != nil {
		if d, ok := intervalFromMatch(folded, m); ok {
			res.Kind = KindEvery
			res.Every = d
			mark(m[:2])
			res.Message = extractMessage(original, folded, spans)
			return res, true
		}
	}
	if m := reEveryPT.FindStringSubmatchIndex(folded); m != nil {
		if d, ok := intervalFromMatch(folded, m); ok {
			res.Kind = KindEvery
			res.Every = d
			mark(m[:2])
			res.Message = extractMessage(original, folded, spans)
			return res, true
		}
	}

	// Time-of-day, consumed by the cron and one-shot forms below.
	hour, minute, timeSpan, hasTime := findTime(folded)

	// Daily cron.
	if m := reDaily.FindStringIndex(folded); m != nil {
		mark(m)
		if hasTime {
			spans = append(spans, timeSpan)
		} else {
			hour, minute = 9, 0
		}
		res.Kind = KindCron
		res.CronExpr = fmt.Sprintf("%d %d * * *", minute, hour)
		res.HasTime = hasTime
		res.HasDate = true
		res.Message = extractMessage(original, folded, spans)
		return res, true
	}

	// Weekday list with an explicit recurrence marker ("toda segunda e quarta
	// às 19h") → multi-day cron. Bare lists without a marker are left for the
	// recurring-event detector, which asks for confirmation first.
	if m := reWeekdayListMarked.FindStringIndex(folded); m != nil {
		names := reWeekdayOne.FindAllString(folded[m[0]:m[1]], -1)
		seen := map[int]bool{}
		var days []string
		for _, n := range names {
			d := weekdayNumbers[n]
			if !seen[d] {
				seen[d] = true
				days = append(days, strconv.Itoa(d))
			}
		}
		mark(m)
		if hasTime {
			spans = append(spans, timeSpan)
		} else {
			hour, minute = 9, 0
		}
		res.Kind = KindCron
		res.CronExpr = fmt.Sprintf("%d %d * * %s", minute, hour, strings.Join(days, ","))
		res.HasTime = hasTime
		res.HasDate = true
		res.Message = extractMessage(original, folded, spans)
		return res, true
	}

	// Weekly cron ("toda segunda", "every monday", "cada lunes").
	if m := reWeekly.FindStringSubmatchIndex(folded); m != nil {
		day := weekdayNumbers[strings.TrimSpace(folded[m[2]:m[3]])]
		mark(m[:2])
		if hasTime {
			spans = append(spans, timeSpan)
		} else {
			hour, minute = 9, 0
		}
		res.Kind = KindCron
		res.CronExpr = fmt.Sprintf("%d %d * * %d", minute, hour, day)
		res.HasTime = hasTime
		res.HasDate = true
		res.Message = extractMessage(original, folded, spans)
		return res, true
	}

	// Monthly cron ("mensalmente dia 5 às 9h").
	if m := reMonthly.FindStringSubmatchIndex(folded); m != nil {
		dom := 1
		for g := 1; g <= 3; g++ {
			if m[2*g] >= 0 {
				dom, _ = strconv.Atoi(folded[m[2*g]:m[2*g+1]])
				break
			}
		}
		mark(m[:2])
		if hasTime {
			spans = append(spans, timeSpan)
		} else {
			hour, minute = 9, 0
		}
		res.Kind = KindCron
		res.CronExpr = fmt.Sprintf("%d %d %d * *", minute, hour, dom)
		res.HasTime = hasTime
		res.HasDate = true
		res.Message = extractMessage(original, folded, spans)
		return res, true
	}

	// Relative one-shot ("em 30 min", "daqui a 2 horas").
	if m := reIn.FindStringSubmatchIndex(folded); m != nil {
		if d, ok := intervalFromMatch(folded, m); ok {
			res.Kind = KindAt
			res.At = now.Add(d)
			res.HasTime = true
			res.HasDate = true
			mark(m[:2])
			res.Message = extractMessage(original, folded, spans)
			return res, true
		}
	}

	// Absolute dates.
	if day, month, year, m, ok := findDate(folded); ok {
		mark(m)
		if hasTime {
			spans = append(spans, timeSpan)
		} else {
			hour, minute = 9, 0
		}
		y := year
		if y == 0 {
			y = now.Year()
		}
		at := time.Date(y, month, day, hour, minute, 0, 0, loc)
		if year == 0 && at.Before(now) {
			res.PastDate = true
			at = at.AddDate(1, 0, 0)
		}
		res.Kind = KindAt
		res.At = at
		res.HasTime = hasTime
		res.HasDate = true
		res.Message = extractMessage(original, folded, spans)
		return res, true
	}

	// Tomorrow.
	if m := reTomorrow.FindStringIndex(folded); m != nil {
		mark(m)
		if hasTime {
			spans = append(spans, timeSpan)
		} else {
			hour, minute = 9, 0
		}
		t := now.AddDate(0, 0, 1)
		res.Kind = KindAt
		res.At = time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, loc)
		res.HasTime = hasTime
		res.HasDate = true
		res.Message = extractMessage(original, folded, spans)
		return res, true
	}

	// Today or bare time-of-day; a past instant rolls to tomorrow.
	todayM := reToday.FindStringIndex(folded)
	if todayM != nil || hasTime {
		if todayM != nil {
			mark(todayM)
			res.HasDate = true
		}
		if !hasTime {
			return nil, false
		}
		spans = append(spans, timeSpan)
		at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		res.Kind = KindAt
		res.At = at
		res.HasTime = true
		res.Message = extractMessage(original, folded, spans)
		return res, true
	}

	return nil, false
}

var (
	reDurationOnly = regexp.MustCompile(`(\d+) ?` + unitPattern)
	reHalfHourOnly = regexp.MustCompile(`\b(?:meia hora|media hora|half an? hour)\b`)
)

// Duration parses standalone durations ("30 min", "2 horas", "1 dia") used by
// the advance-amount flow stage.
func Duration(text string) (time.Duration, bool) {
	folded := foldAligned([]rune(strings.TrimSpace(text)))
	if m := reDurationOnly.FindStringSubmatch(folded); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return 0, false
		}
		if secs, ok := unitSeconds[strings.TrimSpace(m[2])]; ok {
			return time.Duration(n) * time.Duration(secs) * time.Second, true
		}
	}
	if reHalfHourOnly.MatchString(folded) {
		return 30 * time.Minute, true
	}
	return 0, false
}

// TimeOfDay parses a standalone wall-clock time ("15:30", "3pm", "10h").
// Used by onboarding and the vague-time flow.
func TimeOfDay(text string) (hour, minute int, ok bool) {
	folded := foldAligned([]rune(strings.TrimSpace(text)))
	h, m, _, found := findTime(folded)
	if !found {
		return 0, 0, false
	}
	return h, m, true
}

// findTime locates a time-of-day expression, returning its span for removal.
func findTime(folded string) (hour, minute int, sp span, ok bool) {
	type cand struct {
		m       []int
		h, min  int
		hasAmPm bool
	}
	var best *cand

	try := func(m []int, hs, ms, as string) {
		if m == nil {
			return
		}
		h, err := strconv.Atoi(hs)
		if err != nil || h > 23 {
			return
		}
		min := 0
		if ms != "" {
			if min, err = strconv.Atoi(ms); err != nil || min > 59 {
				return
			}
		}
		hasAmPm := as != ""
		if as == "pm" && h < 12 {
			h += 12
		}
		if as == "am" && h == 12 {
			h = 0
		}
		c := &cand{m: m, h: h, min: min, hasAmPm: hasAmPm}
		if best == nil || m[0] < best.m[0] {
			best = c
		}
	}

	group := func(m []int, g int) string {
		if m == nil || m[2*g] < 0 {
			return ""
		}
		return folded[m[2*g]:m[2*g+1]]
	}

	if m := reTimeAt.FindStringSubmatchIndex(folded); m != nil {
		try(m[:2], group(m, 1), group(m, 2), group(m, 3))
	}
	if m := reTimeColon.FindStringSubmatchIndex(folded); m != nil {
		try(m[:2], group(m, 1), group(m, 2), group(m, 3))
	}
	if m := reTimeH.FindStringSubmatchIndex(folded); m != nil {
		try(m[:2], group(m, 1), group(m, 2), "")
	}
	if m := reTimeAmPm.FindStringSubmatchIndex(folded); m != nil {
		try(m[:2], group(m, 1), "", group(m, 2))
	}
	if best == nil {
		if m := reTimeMil.FindStringSubmatchIndex(folded); m != nil {
			try(m[:2], group(m, 1), group(m, 2), "")
		}
	}
	if best == nil {
		return 0, 0, span{}, false
	}

	h := best.h
	if !best.hasAmPm && h <= 11 && !reMorning.MatchString(folded) {
		// Period-of-day qualifiers shift ambiguous hours.
		if reAfternoon.MatchString(folded) || reNight.MatchString(folded) {
			h += 12
		}
	}
	return h, best.min, span{byteToRune(folded, best.m[0]), byteToRune(folded, best.m[1])}, true
}

// findDate locates an absolute date expression.
func findDate(folded string) (day int, month time.Month, year int, m []int, ok bool) {
	if idx := reDateSlash.FindStringSubmatchIndex(folded); idx != nil {
		d, _ := strconv.Atoi(folded[idx[2]:idx[3]])
		mo, _ := strconv.Atoi(folded[idx[4]:idx[5]])
		y := 0
		if idx[6] >= 0 {
			y, _ = strconv.Atoi(folded[idx[6]:idx[7]])
			if y < 100 {
				y += 2000
			}
		}
		if d >= 1 && d <= 31 && mo >= 1 && mo <= 12 {
			return d, time.Month(mo), y, idx[:2], true
		}
	}
	if idx := reDateOf.FindStringSubmatchIndex(folded); idx != nil {
		d, _ := strconv.Atoi(folded[idx[2]:idx[3]])
		mo := monthNumbers[folded[idx[4]:idx[5]]]
		y := 0
		if idx[6] >= 0 {
			y, _ = strconv.Atoi(folded[idx[6]:idx[7]])
		}
		if d >= 1 && d <= 31 {
			return d, mo, y, idx[:2], true
		}
	}
	if idx := reDateEn.FindStringSubmatchIndex(folded); idx != nil {
		mo := monthNumbers[folded[idx[2]:idx[3]]]
		d, _ := strconv.Atoi(folded[idx[4]:idx[5]])
		y := 0
		if idx[6] >= 0 {
			y, _ = strconv.Atoi(folded[idx[6]:idx[7]])
		}
		if d >= 1 && d <= 31 {
			return d, mo, y, idx[:2], true
		}
	}
	return 0, 0, 0, nil, false
}

func intervalFromMatch(folded string, m []int) (time.Duration, bool) {
	n, err := strconv.Atoi(folded[m[2]:m[3]])
	if err != nil || n <= 0 {
		return 0, false
	}
	unit := strings.TrimSpace(folded[m[4]:m[5]])
	secs, ok := unitSeconds[unit]
	if !ok {
		return 0, false
	}
	return time.Duration(int64(n)*secs) * time.Second, true
}

func dateFromStartMatch(folded string, m []int, now time.Time, loc *time.Location) (time.Time, bool) {
	group := func(g int) string {
		if m[2*g] < 0 {
			return ""
		}
		return folded[m[2*g]:m[2*g+1]]
	}
	if group(1) != "" {
		d, _ := strconv.Atoi(group(1))
		mo, _ := strconv.Atoi(group(2))
		y := now.Year()
		if group(3) != "" {
			y, _ = strconv.Atoi(group(3))
			if y < 100 {
				y += 2000
			}
		}
		if d < 1 || d > 31 || mo < 1 || mo > 12 {
			return time.Time{}, false
		}
		t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, loc)
		if group(3) == "" && t.Before(now) {
			t = t.AddDate(1, 0, 0)
		}
		return t, true
	}
	if group(4) != "" {
		d, _ := strconv.Atoi(group(4))
		mo, ok := monthNumbers[group(5)]
		if !ok || d < 1 || d > 31 {
			return time.Time{}, false
		}
		t := time.Date(now.Year(), mo, d, 0, 0, 0, 0, loc)
		if t.Before(now) {
			t = t.AddDate(1, 0, 0)
		}
		return t, true
	}
	return time.Time{}, false
}

// extractMessage removes the marked spans from the original text and strips
// leading scheduling verbs, leaving the reminder topic.
func extractMessage(original []rune, folded string, spans []span) string {
	keep := make([]bool, len(original))
	for i := range keep {
		keep[i] = true
	}
	for _, sp := range spans {
		for i := sp.start; i < sp.end && i < len(keep); i++ {
			keep[i] = false
		}
	}
	var b strings.Builder
	for i, r := range original {
		if keep[i] {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	msg := CollapseSpaces(b.String())

	// Strip the leading verb phrase using the folded form for matching.
	foldedMsg := foldAligned([]rune(msg))
	if m := reLeadingVerb.FindStringIndex(foldedMsg); m != nil {
		cut := byteToRune(foldedMsg, m[1])
		msg = string([]rune(msg)[cut:])
	}
	foldedMsg = foldAligned([]rune(msg))
	if m := reTrailingJunk.FindStringIndex(foldedMsg); m != nil {
		cut := byteToRune(foldedMsg, m[0])
		msg = string([]rune(msg)[:cut])
	}
	return strings.TrimSpace(msg)
}
