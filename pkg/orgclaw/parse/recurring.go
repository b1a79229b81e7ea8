package parse

import (
	"sort"
	"strconv"
	"strings"
)

// Pattern is a weekly recurrence candidate found in free text that carried no
// explicit recurrence marker, e.g. "academia segunda e quarta 19h". The
// router confirms these with the user before scheduling anything, so callers
// must check Weekly before Schedule.
type Pattern struct {
	Days   []int // cron weekday numbers, 0 = Sunday, ascending
	Hour   int
	Minute int
	Topic  string
}

// CronExpr renders the pattern as a five-field cron expression.
func (p *Pattern) CronExpr() string {
	days := make([]string, len(p.Days))
	for i, d := range p.Days {
		days[i] = strconv.Itoa(d)
	}
	return strconv.Itoa(p.Minute) + " " + strconv.Itoa(p.Hour) + " * * " + strings.Join(days, ",")
}

// Weekly detects a bare weekday-plus-time shape. It refuses inputs that carry
// an explicit recurrence marker (those parse directly as cron) and inputs
// without a time of day (too ambiguous to be worth a confirmation round).
func Weekly(text string) (*Pattern, bool) {
	original := []rune(strings.TrimSpace(text))
	folded := foldAligned(original)

	if reWeekdayListMarked.MatchString(folded) || reWeekly.MatchString(folded) ||
		reDaily.MatchString(folded) || reMonthly.MatchString(folded) {
		return nil, false
	}

	hour, minute, timeSpan, hasTime := findTime(folded)
	if !hasTime {
		return nil, false
	}

	var spans []span
	var names []string
	if m := reWeekdayList.FindStringIndex(folded); m != nil {
		names = reWeekdayOne.FindAllString(folded[m[0]:m[1]], -1)
		spans = append(spans, span{byteToRune(folded, m[0]), byteToRune(folded, m[1])})
	} else if m := reWeekdayOne.FindStringIndex(folded); m != nil {
		names = []string{folded[m[0]:m[1]]}
		spans = append(spans, span{byteToRune(folded, m[0]), byteToRune(folded, m[1])})
	} else {
		return nil, false
	}

	seen := map[int]bool{}
	var days []int
	for _, n := range names {
		d := weekdayNumbers[n]
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Ints(days)

	spans = append(spans, timeSpan)
	topic := extractMessage(original, folded, spans)
	if topic == "" {
		return nil, false
	}
	return &Pattern{Days: days, Hour: hour, Minute: minute, Topic: topic}, true
}
