package field

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow is a Wednesday. Keeping it fixed makes weekday offsets deterministic.
var fixedNow = time.Date(2026, time.August, 26, 15, 4, 5, 0, time.Local)

func TestParseDateRelative(t *testing.T) {
	testCases := []struct {
		input string
		want  time.Time
	}{
		{"today", time.Date(2026, time.August, 26, 0, 0, 0, 0, time.Local)},
		{"tomorrow", time.Date(2026, time.August, 27, 0, 0, 0, 0, time.Local)},
		{"let's meet tomorrow", time.Date(2026, time.August, 27, 0, 0, 0, 0, time.Local)},
		// Friday is two days ahead of the fixed Wednesday.
		{"friday", time.Date(2026, time.August, 28, 0, 0, 0, 0, time.Local)},
		// "next" jumps an extra week even when the offset is already positive.
		{"next friday", time.Date(2026, time.September, 4, 0, 0, 0, 0, time.Local)},
		// A weekday matching today resolves to next week, never today.
		{"wednesday", time.Date(2026, time.September, 2, 0, 0, 0, 0, time.Local)},
		{"monday", time.Date(2026, time.August, 31, 0, 0, 0, 0, time.Local)},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := ParseDate(tc.input, fixedNow)
			require.True(t, ok)
			assert.True(t, got.Equal(tc.want), "got %v, want %v", got, tc.want)
		})
	}
}

func TestParseDateExplicit(t *testing.T) {
	testCases := []struct {
		input string
		want  time.Time
	}{
		{"15/9", time.Date(2026, time.September, 15, 0, 0, 0, 0, time.Local)},
		{"15-9", time.Date(2026, time.September, 15, 0, 0, 0, 0, time.Local)},
		{"15/9/2026", time.Date(2026, time.September, 15, 0, 0, 0, 0, time.Local)},
		{"3rd sep", time.Date(2026, time.September, 3, 0, 0, 0, 0, time.Local)},
		{"3 september", time.Date(2026, time.September, 3, 0, 0, 0, 0, time.Local)},
		{"sep 3rd", time.Date(2026, time.September, 3, 0, 0, 0, 0, time.Local)},
		{"September 3, 2026", time.Date(2026, time.September, 3, 0, 0, 0, 0, time.Local)},
		{"2026-09-03", time.Date(2026, time.September, 3, 0, 0, 0, 0, time.Local)},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := ParseDate(tc.input, fixedNow)
			require.True(t, ok)
			assert.True(t, got.Equal(tc.want), "got %v, want %v", got, tc.want)
		})
	}
}

func TestParseDateRejectsPast(t *testing.T) {
	for _, input := range []string{"3/2/2025", "feb 3, 2025", "1/1/1999", "25/8"} {
		t.Run(input, func(t *testing.T) {
			_, ok := ParseDate(input, fixedNow)
			assert.False(t, ok)
		})
	}
}

func TestParseDateNoMatch(t *testing.T) {
	for _, input := range []string{"", "soon", "32nd foo", "13/13 maybe", "later this year"} {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			_, ok := ParseDate(input, fixedNow)
			assert.False(t, ok)
		})
	}
}

// Re-parsing the canonical rendering of a parsed date yields the same date.
func TestParseDateIdempotent(t *testing.T) {
	for _, input := range []string{"today", "tomorrow", "next monday", "15/9", "sep 3rd"} {
		t.Run(input, func(t *testing.T) {
			first, ok := ParseDate(input, fixedNow)
			require.True(t, ok)
			second, ok := ParseDate(first.Format("2006-01-02"), fixedNow)
			require.True(t, ok)
			assert.True(t, first.Equal(second))
		})
	}
}

func TestExtractTime(t *testing.T) {
	testCases := []struct {
		input string
		want  TimeOfDay
		ok    bool
	}{
		{"2:30pm", TimeOfDay{14, 30}, true},
		{"2:30 PM", TimeOfDay{14, 30}, true},
		{"12am", TimeOfDay{0, 0}, true},
		{"12pm", TimeOfDay{12, 0}, true},
		{"9am", TimeOfDay{9, 0}, true},
		{"14:30", TimeOfDay{14, 30}, true},
		{"1430", TimeOfDay{14, 30}, true},
		{"0905", TimeOfDay{9, 5}, true},
		{"23:59", TimeOfDay{23, 59}, true},
		{"24:00", TimeOfDay{}, false},
		{"14:60", TimeOfDay{}, false},
		{"13pm", TimeOfDay{}, false},
		{"0am", TimeOfDay{}, false},
		// A bare hour without am/pm is ambiguous and rejected.
		{"9", TimeOfDay{}, false},
		{"noon", TimeOfDay{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := ExtractTime(tc.input)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.co", "alice@example.com", "first.last+tag@sub.domain.org", " padded@example.com "}
	for _, input := range valid {
		t.Run(input, func(t *testing.T) {
			email, ok := ValidateEmail(input)
			require.True(t, ok)
			assert.NotContains(t, email, " ")
		})
	}

	invalid := []string{"a@b", "a b@c.com", "no-at-sign.com", "a@b.c", "a@b.123", "@example.com"}
	for _, input := range invalid {
		t.Run(input, func(t *testing.T) {
			_, ok := ValidateEmail(input)
			assert.False(t, ok)
		})
	}
}

func TestParseMinutes(t *testing.T) {
	n, ok := ParseMinutes(" 45 ")
	require.True(t, ok)
	assert.Equal(t, 45, n)

	for _, input := range []string{"0", "-5", "half an hour", ""} {
		_, ok := ParseMinutes(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestFindPhrases(t *testing.T) {
	msg := "Schedule a meeting with alice@example.com for 30 minutes tomorrow at 2pm"

	date, ok := FindDate(msg, fixedNow)
	require.True(t, ok)
	assert.True(t, date.Equal(time.Date(2026, time.August, 27, 0, 0, 0, 0, time.Local)))

	tod, ok := FindTime(msg)
	require.True(t, ok)
	assert.Equal(t, TimeOfDay{14, 0}, tod)

	email, ok := FindAttendee(msg, "gmail.com")
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", email)

	minutes, ok := FindDuration(msg)
	require.True(t, ok)
	assert.Equal(t, 30, minutes)
}

func TestFindAttendeeDefaultDomain(t *testing.T) {
	email, ok := FindAttendee("set up a call with bob on friday", "gmail.com")
	require.True(t, ok)
	assert.Equal(t, "bob@gmail.com", email)
}

func TestFindPhrasesAbsent(t *testing.T) {
	msg := "schedule a meeting"

	_, ok := FindDate(msg, fixedNow)
	assert.False(t, ok)
	_, ok = FindTime(msg)
	assert.False(t, ok)
	_, ok = FindAttendee(msg, "gmail.com")
	assert.False(t, ok)
	_, ok = FindDuration(msg)
	assert.False(t, ok)
}
