package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/remohq/remo/calendar"
	"github.com/remohq/remo/dialogue/field"
)

const noMeetingsReply = "No meetings found for the specified time period."

// resolveListWindow picks the day window a listing request refers to.
// Defaults to the rest of today; "next week" and "month" widen or shift it,
// and any recognizable date phrase selects that single day.
func resolveListWindow(message string, now time.Time) (time.Time, time.Time) {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "next week") {
		day := startOfDay(now).AddDate(0, 0, 7)
		return day, endOfDay(day)
	}
	if strings.Contains(lower, "month") {
		return now, endOfDay(now).AddDate(0, 1, 0)
	}
	if date, ok := field.FindDate(message, now); ok {
		start := date
		if sameDay(date, now) {
			// "today" lists the remainder of the day, not past meetings.
			start = now
		}
		return start, endOfDay(date)
	}
	return now, endOfDay(now)
}

func (r *Router) handleList(ctx context.Context, userID, message string) string {
	if !r.auth.HasCredential(userID) {
		return "Please authorize me to access your Google Calendar first:\n" + r.auth.StartAuth(userID)
	}

	start, end := resolveListWindow(message, r.now())
	events := r.lister.ListEvents(ctx, userID, start, end)
	return formatEvents(events)
}

func formatEvents(events []*calendar.Event) string {
	if len(events) == 0 {
		return noMeetingsReply
	}

	var b strings.Builder
	b.WriteString("📅 Here are your meetings:\n\n")
	for _, event := range events {
		minutes := 0
		if !event.End.IsZero() {
			minutes = int(event.End.Sub(event.Start).Minutes())
		}
		summary := event.Summary
		if summary == "" {
			summary = "Untitled"
		}

		fmt.Fprintf(&b, "🕒 %s (%d mins)\n", event.Start.Format("3:04 PM"), minutes)
		fmt.Fprintf(&b, "📝 %s\n", summary)
		if len(event.Attendees) > 0 {
			fmt.Fprintf(&b, "👥 With: %s\n", strings.Join(event.Attendees, ", "))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
