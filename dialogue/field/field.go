// Package field contains the natural-language field extractors used by the
// scheduling dialogue: dates, wall-clock times, attendee emails, and durations.
// Each extractor is a pure function from free text to a structured value.
package field

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time normalized from 12- or 24-hour input.
type TimeOfDay struct {
	Hours   int // 0-23
	Minutes int // 0-59
}

var weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	isoDateRe     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	numericDateRe = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})(?:[-/](\d{4}))?$`)
	dayMonthRe    = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?\s*(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*(?:\s*,?\s*(\d{4}))?$`)
	monthDayRe    = regexp.MustCompile(`^(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s*(\d{1,2})(?:st|nd|rd|th)?(?:\s*,?\s*(\d{4}))?$`)

	militaryTimeRe = regexp.MustCompile(`^(\d{1,2}):?(\d{2})$`)
	twelveHourRe   = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(am|pm)$`)

	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[a-zA-Z]{2,}$`)

	datePhraseRe     = regexp.MustCompile(`(?i)(?:on|for|tomorrow|today|next|this)\s*([^,]+)(?:,|$)`)
	timePhraseRe     = regexp.MustCompile(`(?i)at\s+(\d{1,2}(?::\d{2})?(?:\s*[ap]m)?)`)
	attendeePhraseRe = regexp.MustCompile(`(?i)with\s+(\S+@\S+|\S+)`)
	durationPhraseRe = regexp.MustCompile(`(?i)for\s+(\d+)\s*(?:min|minutes?)`)
)

// ParseDate resolves free text to a calendar date relative to now.
// Resolution order: "today", "tomorrow", a weekday name, then explicit
// numeric and month-name forms. Dates strictly before today never match.
func ParseDate(input string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(strings.TrimSpace(input))
	if lower == "" {
		return time.Time{}, false
	}
	today := midnight(now)

	if strings.Contains(lower, "today") {
		return today, true
	}
	if strings.Contains(lower, "tomorrow") {
		return today.AddDate(0, 0, 1), true
	}

	for i, day := range weekdays {
		if !strings.Contains(lower, day) {
			continue
		}
		offset := i - int(now.Weekday())
		// Weekday matches are always strictly future. "next <day>" jumps an
		// extra week even when the plain offset is already ahead.
		if offset <= 0 || strings.Contains(lower, "next") {
			offset += 7
		}
		return today.AddDate(0, 0, offset), true
	}

	var day, year int
	var month time.Month
	switch {
	case isoDateRe.MatchString(lower):
		m := isoDateRe.FindStringSubmatch(lower)
		year = atoi(m[1])
		month = time.Month(atoi(m[2]))
		day = atoi(m[3])
	case numericDateRe.MatchString(lower):
		// Day-first: D/M or D-M, optional four-digit year.
		m := numericDateRe.FindStringSubmatch(lower)
		day = atoi(m[1])
		month = time.Month(atoi(m[2]))
		year = now.Year()
		if m[3] != "" {
			year = atoi(m[3])
		}
	case dayMonthRe.MatchString(lower):
		m := dayMonthRe.FindStringSubmatch(lower)
		day = atoi(m[1])
		month = months[m[2]]
		year = now.Year()
		if m[3] != "" {
			year = atoi(m[3])
		}
	case monthDayRe.MatchString(lower):
		m := monthDayRe.FindStringSubmatch(lower)
		month = months[m[1]]
		day = atoi(m[2])
		year = now.Year()
		if m[3] != "" {
			year = atoi(m[3])
		}
	default:
		return time.Time{}, false
	}

	date := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return time.Time{}, false
	}
	return date, true
}

// ExtractTime parses a wall-clock time. Accepted forms: 24-hour "HH:mm" or
// "HHmm", and 12-hour "H", "H:mm", or "HHmm" with a mandatory am/pm suffix.
// "12am" maps to hour 0, "12pm" stays 12.
func ExtractTime(input string) (TimeOfDay, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, " ", "")

	if m := militaryTimeRe.FindStringSubmatch(s); m != nil {
		hours, minutes := atoi(m[1]), atoi(m[2])
		if hours >= 0 && hours < 24 && minutes >= 0 && minutes < 60 {
			return TimeOfDay{Hours: hours, Minutes: minutes}, true
		}
		return TimeOfDay{}, false
	}

	if m := twelveHourRe.FindStringSubmatch(s); m != nil {
		hours := atoi(m[1])
		minutes := 0
		if m[2] != "" {
			minutes = atoi(m[2])
		}
		if hours < 1 || hours > 12 || minutes < 0 || minutes >= 60 {
			return TimeOfDay{}, false
		}
		isPM := m[3] == "pm"
		if isPM && hours < 12 {
			hours += 12
		}
		if !isPM && hours == 12 {
			hours = 0
		}
		return TimeOfDay{Hours: hours, Minutes: minutes}, true
	}

	return TimeOfDay{}, false
}

// ValidateEmail reports whether the input looks like local@domain.tld and
// returns it trimmed. The local part may not contain whitespace or a second
// "@", the domain needs at least one dot, and the TLD is two or more letters.
func ValidateEmail(input string) (string, bool) {
	email := strings.TrimSpace(input)
	if !emailRe.MatchString(email) {
		return "", false
	}
	return email, true
}

// ParseMinutes parses a bare positive integer, used during the dedicated
// duration-collection turn.
func ParseMinutes(input string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// FindDate searches a whole message for a date phrase. It first tries the
// text following on/for/next/this style markers, then falls back to scanning
// the full message for relative-date words.
func FindDate(message string, now time.Time) (time.Time, bool) {
	if m := datePhraseRe.FindStringSubmatch(message); m != nil {
		if date, ok := ParseDate(m[1], now); ok {
			return date, true
		}
	}
	return ParseDate(message, now)
}

// FindTime searches a whole message for an "at <time>" phrase.
func FindTime(message string) (TimeOfDay, bool) {
	m := timePhraseRe.FindStringSubmatch(message)
	if m == nil {
		return TimeOfDay{}, false
	}
	return ExtractTime(m[1])
}

// FindAttendee searches a whole message for a "with <someone>" phrase.
// A bare name without "@" gets the default domain appended before validation.
func FindAttendee(message, defaultDomain string) (string, bool) {
	m := attendeePhraseRe.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	candidate := m[1]
	if !strings.Contains(candidate, "@") && defaultDomain != "" {
		candidate += "@" + defaultDomain
	}
	return ValidateEmail(candidate)
}

// FindDuration searches a whole message for a "for N minutes" phrase.
func FindDuration(message string) (int, bool) {
	m := durationPhraseRe.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	n := atoi(m[1])
	if n <= 0 {
		return 0, false
	}
	return n, true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
