package assistant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/remohq/remo/calendar"
)

func TestResolveListWindow(t *testing.T) {
	// Wednesday morning.
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		message string
		start   time.Time
		end     time.Time
	}{
		{
			name:    "default is the rest of today",
			message: "list my meetings",
			start:   now,
			end:     time.Date(2026, time.August, 26, 23, 59, 59, 0, time.Local),
		},
		{
			name:    "today",
			message: "show me my meetings today",
			start:   now,
			end:     time.Date(2026, time.August, 26, 23, 59, 59, 0, time.Local),
		},
		{
			name:    "tomorrow",
			message: "show my meetings tomorrow",
			start:   time.Date(2026, time.August, 27, 0, 0, 0, 0, time.Local),
			end:     time.Date(2026, time.August, 27, 23, 59, 59, 0, time.Local),
		},
		{
			name:    "next week",
			message: "view my schedule next week",
			start:   time.Date(2026, time.September, 2, 0, 0, 0, 0, time.Local),
			end:     time.Date(2026, time.September, 2, 23, 59, 59, 0, time.Local),
		},
		{
			name:    "this month",
			message: "show my meetings this month",
			start:   now,
			end:     time.Date(2026, time.September, 26, 23, 59, 59, 0, time.Local),
		},
		{
			name:    "weekday",
			message: "get my meetings for friday",
			start:   time.Date(2026, time.August, 28, 0, 0, 0, 0, time.Local),
			end:     time.Date(2026, time.August, 28, 23, 59, 59, 0, time.Local),
		},
		{
			name:    "explicit date",
			message: "show my meetings on september 3",
			start:   time.Date(2026, time.September, 3, 0, 0, 0, 0, time.Local),
			end:     time.Date(2026, time.September, 3, 23, 59, 59, 0, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := resolveListWindow(tt.message, now)
			assert.True(t, start.Equal(tt.start), "start: got %v want %v", start, tt.start)
			assert.True(t, end.Equal(tt.end), "end: got %v want %v", end, tt.end)
		})
	}
}

func TestFormatEvents(t *testing.T) {
	events := []*calendar.Event{
		{
			Summary:   "Standup",
			Start:     time.Date(2026, time.August, 26, 9, 30, 0, 0, time.Local),
			End:       time.Date(2026, time.August, 26, 9, 45, 0, 0, time.Local),
			Attendees: []string{"alice@example.com", "bob@example.com"},
		},
		{
			Summary: "",
			Start:   time.Date(2026, time.August, 26, 14, 0, 0, 0, time.Local),
			End:     time.Date(2026, time.August, 26, 15, 0, 0, 0, time.Local),
		},
	}

	got := formatEvents(events)
	assert.Contains(t, got, "📅 Here are your meetings:")
	assert.Contains(t, got, "🕒 9:30 AM (15 mins)")
	assert.Contains(t, got, "👥 With: alice@example.com, bob@example.com")
	assert.Contains(t, got, "🕒 2:00 PM (60 mins)")
	assert.Contains(t, got, "📝 Untitled")
}

func TestFormatEventsEmpty(t *testing.T) {
	assert.Equal(t, noMeetingsReply, formatEvents(nil))
}
