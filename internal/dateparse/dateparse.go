// Package dateparse resolves natural-language temporal phrases into
// concrete calendar dates against a reference date. Resolution is a
// pure function of (phrase, reference); numeric forms like 3/4/2024
// are month-first, and weekday names resolve to the most recent past
// occurrence, never a future date.
package dateparse

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock-trading-chatbot/internal/types"
)

// UnresolvableDateError reports a phrase no known pattern matched, or
// a phrase naming a future date.
type UnresolvableDateError struct {
	Phrase string
	Reason string
}

func (e *UnresolvableDateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot resolve date %q: %s", e.Phrase, e.Reason)
	}
	return fmt.Sprintf("cannot resolve date %q", e.Phrase)
}

var monthsByName = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var weekdaysByName = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
}

// Relative vocabulary, longest phrases first so "day before yesterday"
// wins over "yesterday".
var relativeTerms = []string{
	"day before yesterday",
	"2 days ago",
	"two days ago",
	"this week",
	"current week",
	"last week",
	"previous week",
	"this month",
	"current month",
	"yesterday",
	"previous day",
	"today",
}

var (
	isoPattern      = regexp.MustCompile(`\b(\d{4})[-/](\d{1,2})[-/](\d{1,2})\b`)
	numericPattern  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDayPattern = regexp.MustCompile(`\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	dayMonthPattern = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?(?:,?\s+(\d{4}))?\b`)
	weekdayPattern  = regexp.MustCompile(`\b(?:last\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

// FindPhrase scans a question for the first recognizable temporal
// phrase and returns it verbatim, or "" when none is present.
func FindPhrase(question string) string {
	phrases := FindPhrases(question)
	if len(phrases) == 0 {
		return ""
	}
	return phrases[0]
}

// FindPhrases returns every recognizable temporal phrase in the
// question, left to right, without overlaps. Compare questions need
// the first two.
func FindPhrases(question string) []string {
	lower := strings.ToLower(question)

	type match struct {
		start int
		text  string
	}
	var found []match
	covered := make([]bool, len(lower))

	note := func(start int, text string) {
		for i := start; i < start+len(text); i++ {
			if covered[i] {
				return
			}
		}
		for i := start; i < start+len(text); i++ {
			covered[i] = true
		}
		found = append(found, match{start: start, text: text})
	}

	for _, term := range relativeTerms {
		from := 0
		for {
			idx := strings.Index(lower[from:], term)
			if idx < 0 {
				break
			}
			note(from+idx, term)
			from += idx + len(term)
		}
	}
	for _, re := range []*regexp.Regexp{isoPattern, numericPattern, monthDayPattern, dayMonthPattern, weekdayPattern} {
		for _, loc := range re.FindAllStringIndex(lower, -1) {
			note(loc[0], lower[loc[0]:loc[1]])
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].start < found[j].start })
	out := make([]string, len(found))
	for i, m := range found {
		out[i] = m.text
	}
	return out
}

// Resolve maps a temporal phrase to a DateExpression against ref. An
// empty phrase defaults to today. The result is non-empty, ascending,
// and never extends past ref.
func Resolve(phrase string, ref time.Time) (types.DateExpression, error) {
	ref = midnight(ref)
	p := strings.ToLower(strings.TrimSpace(phrase))

	if p == "" {
		return single("today", ref), nil
	}

	switch p {
	case "today", "current day", "now":
		return single("today", ref), nil
	case "yesterday", "previous day":
		return single("yesterday", ref.AddDate(0, 0, -1)), nil
	case "day before yesterday", "2 days ago", "two days ago":
		return single(p, ref.AddDate(0, 0, -2)), nil
	case "this week", "current week":
		return span(p, startOfWeek(ref), ref), nil
	case "last week", "previous week":
		end := startOfWeek(ref).AddDate(0, 0, -1)
		return span(p, end.AddDate(0, 0, -6), end), nil
	case "this month", "current month":
		return span(p, time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC), ref), nil
	}

	if m := weekdayPattern.FindStringSubmatch(p); m != nil && weekdayPattern.FindString(p) == p {
		return single(p, lastOccurrence(weekdaysByName[m[1]], ref)), nil
	}

	if d, ok := parseAbsolute(p, ref); ok {
		if d.After(ref) {
			return types.DateExpression{}, &UnresolvableDateError{Phrase: phrase, Reason: "future dates are not supported"}
		}
		return single(phrase, d), nil
	}

	return types.DateExpression{}, &UnresolvableDateError{Phrase: phrase}
}

func parseAbsolute(p string, ref time.Time) (time.Time, bool) {
	if m := isoPattern.FindStringSubmatch(p); m != nil {
		return buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	// Numeric day forms are month-first by convention.
	if m := numericPattern.FindStringSubmatch(p); m != nil {
		return buildDate(atoi(m[3]), atoi(m[1]), atoi(m[2]))
	}
	if m := monthDayPattern.FindStringSubmatch(p); m != nil {
		year := ref.Year()
		if m[3] != "" {
			year = atoi(m[3])
		}
		return buildDate(year, int(monthsByName[m[1]]), atoi(m[2]))
	}
	if m := dayMonthPattern.FindStringSubmatch(p); m != nil {
		year := ref.Year()
		if m[3] != "" {
			year = atoi(m[3])
		}
		return buildDate(year, int(monthsByName[m[2]]), atoi(m[1]))
	}
	return time.Time{}, false
}

func buildDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject normalized overflow like February 30.
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}

// lastOccurrence returns the most recent strictly-past occurrence of
// the weekday before ref.
func lastOccurrence(wd time.Weekday, ref time.Time) time.Time {
	diff := int(ref.Weekday()-wd+7) % 7
	if diff == 0 {
		diff = 7
	}
	return ref.AddDate(0, 0, -diff)
}

// startOfWeek returns the Monday of ref's week.
func startOfWeek(ref time.Time) time.Time {
	diff := int(ref.Weekday()-time.Monday+7) % 7
	return ref.AddDate(0, 0, -diff)
}

func single(label string, d time.Time) types.DateExpression {
	return types.DateExpression{Label: label, Dates: []time.Time{midnight(d)}}
}

func span(label string, from, to time.Time) types.DateExpression {
	var dates []time.Time
	for d := midnight(from); !d.After(midnight(to)); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return types.DateExpression{Label: label, Dates: dates}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
