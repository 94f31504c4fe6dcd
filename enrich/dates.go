package enrich

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/veritaslegal/casetrace/core"
)

var dateSeparator = regexp.MustCompile(`[/-]`)

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// extractDates scans text for date mentions and returns the ones that
// normalize to a real calendar day, ordered by position. Positions are
// rune offsets so they line up with chunk spans. Mentions that fail
// normalization are dropped, never defaulted.
func extractDates(text string, max int) []core.NormalizedDate {
	var dates []core.NormalizedDate

	for _, loc := range numericDateRegex.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		if t, ok := normalizeNumericDate(raw); ok {
			dates = append(dates, core.NormalizedDate{
				Raw:        raw,
				Time:       t,
				Confidence: core.DateConfidenceHigh,
				Position:   utf8.RuneCountInString(text[:loc[0]]),
			})
		}
	}

	for _, loc := range monthDateRegex.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		if t, ok := normalizeMonthDate(raw); ok {
			dates = append(dates, core.NormalizedDate{
				Raw:        raw,
				Time:       t,
				Confidence: core.DateConfidenceLow,
				Position:   utf8.RuneCountInString(text[:loc[0]]),
			})
		}
	}

	sort.SliceStable(dates, func(i, j int) bool {
		return dates[i].Position < dates[j].Position
	})

	if max > 0 && len(dates) > max {
		dates = dates[:max]
	}
	return dates
}

// normalizeNumericDate parses dd/mm/yyyy or dd-mm-yy forms. Source
// documents use day-first ordering. Two-digit years pivot at 50:
// below maps to 20xx, the rest to 19xx.
func normalizeNumericDate(raw string) (time.Time, bool) {
	parts := dateSeparator.Split(raw, -1)
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false
	}

	if len(parts[2]) == 2 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	} else if len(parts[2]) != 4 {
		return time.Time{}, false
	}

	return calendarDay(year, time.Month(month), day)
}

// normalizeMonthDate parses "12 March 2001" style mentions, including
// ordinal suffixes and an optional comma after the month.
func normalizeMonthDate(raw string) (time.Time, bool) {
	fields := strings.Fields(strings.ReplaceAll(raw, ",", " "))
	if len(fields) != 3 {
		return time.Time{}, false
	}

	dayText := strings.ToLower(fields[0])
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		dayText = strings.TrimSuffix(dayText, suffix)
	}
	day, err := strconv.Atoi(dayText)
	if err != nil {
		return time.Time{}, false
	}

	month, ok := monthsByName[strings.ToLower(fields[1])]
	if !ok {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, false
	}

	return calendarDay(year, month, day)
}

// calendarDay rejects out-of-range components instead of letting
// time.Date roll them over into adjacent months.
func calendarDay(year int, month time.Month, day int) (time.Time, bool) {
	if year < 1000 || year > 9999 || month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}
