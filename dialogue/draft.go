// Package dialogue implements the multi-turn meeting-scheduling state machine:
// it accumulates meeting parameters from free-text user input across turns,
// tracks which field is still missing, and drives the conversation to a
// confirmed calendar action.
package dialogue

import (
	"time"

	"github.com/remohq/remo/dialogue/field"
)

// DefaultDurationMinutes applies when the user never supplied a duration by
// the time the draft reaches confirmation.
const DefaultDurationMinutes = 30

// Step identifies the field the dialogue is currently collecting.
type Step string

const (
	StepDate        Step = "date"
	StepTime        Step = "time"
	StepEmail       Step = "email"
	StepDuration    Step = "duration"
	StepDescription Step = "description"
	StepConfirm     Step = "confirm"
)

// Draft is the accumulating record of a scheduling conversation. Zero values
// mean "not collected yet".
type Draft struct {
	Date            time.Time // midnight in local time; zero when unset
	Time            *field.TimeOfDay
	DurationMinutes int
	Attendees       []string
	Description     string
	// DescriptionDone marks the description step as answered or skipped, so
	// NextStep stops offering it.
	DescriptionDone bool
}

// Complete reports whether the draft holds everything needed for confirmation.
// Duration is not required; it defaults at confirmation time.
func (d *Draft) Complete() bool {
	return !d.Date.IsZero() && d.Time != nil && len(d.Attendees) > 0
}

// Duration returns the meeting duration, applying the default when the user
// never supplied one.
func (d *Draft) Duration() time.Duration {
	minutes := d.DurationMinutes
	if minutes <= 0 {
		minutes = DefaultDurationMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// StartEnd combines the stored date and time into the concrete event window.
func (d *Draft) StartEnd() (time.Time, time.Time) {
	start := time.Date(
		d.Date.Year(), d.Date.Month(), d.Date.Day(),
		d.Time.Hours, d.Time.Minutes, 0, 0, d.Date.Location(),
	)
	return start, start.Add(d.Duration())
}

// NextStep computes the dialogue step from the draft alone: the first
// unfilled field in canonical order, then the optional description step, then
// confirmation. It is recomputed after every mutation instead of hand-coding
// per-transition successors.
func NextStep(d *Draft) Step {
	switch {
	case d.Date.IsZero():
		return StepDate
	case d.Time == nil:
		return StepTime
	case len(d.Attendees) == 0:
		return StepEmail
	case d.DurationMinutes <= 0:
		return StepDuration
	case !d.DescriptionDone:
		return StepDescription
	default:
		return StepConfirm
	}
}

// Session is a user's single active dialogue state.
type Session struct {
	Step      Step
	Draft     Draft
	StartedAt time.Time
	UpdatedAt time.Time
}
