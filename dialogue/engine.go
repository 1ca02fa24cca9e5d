package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/remohq/remo/dialogue/field"
)

// Authorizer answers whether a user holds a calendar credential and produces
// the authorization link when they do not. Owned by the OAuth subsystem.
type Authorizer interface {
	HasCredential(userID string) bool
	StartAuth(userID string) string
}

// Executor turns a confirmed draft into a calendar action.
type Executor interface {
	CreateMeeting(ctx context.Context, ownerID, summary, description string, start, end time.Time, attendees []string) error
}

var cancelRe = regexp.MustCompile(`(?i)\b(cancel|stop|exit)\b`)

// User-facing dialogue text.
const (
	replyCancelled = "Meeting scheduling cancelled. Let me know when you want to schedule another meeting!"
	replyDeclined  = "No problem, let's start over. Just let me know when you want to schedule a meeting."
	replySuccess   = "✅ Meeting scheduled successfully! Calendar invite has been sent to all attendees."

	promptDate        = "When would you like to schedule the meeting? (e.g., today, tomorrow, next Monday, Feb 3)"
	promptTime        = "What time would you like to schedule the meeting? (e.g., 2:30 PM)"
	promptEmail       = "Who would you like to meet with? (Please provide their email)"
	promptDuration    = "How long should the meeting be? (e.g., 30 minutes)"
	promptDescription = `Would you like to add a description for the meeting? (Type "skip" to skip)`

	repromptDate     = "Please provide a valid date (e.g., today, tomorrow, next Monday, Feb 3)."
	repromptTime     = "Please provide a valid time (e.g., 2:30 PM)."
	repromptEmail    = "Please provide a valid email address."
	repromptDuration = "Please provide a valid duration in minutes (e.g., 30)."
)

// Engine runs the scheduling dialogue. Each turn loads the user's session,
// applies exactly one extractor (or the full initial parse for a new session),
// and persists the mutated state before replying. Turns for the same user are
// serialized with a per-user lock, so concurrent deliveries cannot interleave
// the read-modify-write on a session.
type Engine struct {
	store         SessionStore
	auth          Authorizer
	exec          Executor
	locks         *keyedMutex
	defaultDomain string
	now           func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithDefaultDomain sets the domain appended to bare attendee names in the
// initial parse ("with bob" -> bob@<domain>).
func WithDefaultDomain(domain string) Option {
	return func(e *Engine) { e.defaultDomain = domain }
}

// NewEngine creates a dialogue engine over an injected session store.
func NewEngine(store SessionStore, auth Authorizer, exec Executor, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		auth:          auth,
		exec:          exec,
		locks:         newKeyedMutex(),
		defaultDomain: "gmail.com",
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HasSession reports whether the user has a scheduling dialogue in progress.
// An active session overrides intent classification upstream.
func (e *Engine) HasSession(userID string) bool {
	_, ok := e.store.Get(userID)
	return ok
}

// HandleMessage processes one dialogue turn and returns the reply text. An
// empty reply means the turn produced nothing to say.
func (e *Engine) HandleMessage(ctx context.Context, userID, text string) string {
	mu := e.locks.lock(userID)
	defer mu.Unlock()

	if !e.auth.HasCredential(userID) {
		return "Please authorize me to access your Google Calendar first:\n" + e.auth.StartAuth(userID)
	}

	session, active := e.store.Get(userID)

	if cancelRe.MatchString(text) {
		if !active {
			return ""
		}
		e.store.Delete(userID)
		slog.Info("scheduling cancelled", "user_id", userID, "step", session.Step)
		return replyCancelled
	}

	if !active {
		return e.startSession(userID, text)
	}
	return e.advanceSession(ctx, userID, session, text)
}

// startSession runs every extractor over the first message, fills what it
// can, and asks for the first missing field. A fully-filled draft jumps
// straight to confirmation with the description defaulted.
func (e *Engine) startSession(userID, text string) string {
	now := e.now()
	draft := Draft{}

	if date, ok := field.FindDate(text, now); ok {
		draft.Date = date
	}
	if tod, ok := field.FindTime(text); ok {
		draft.Time = &tod
	}
	if email, ok := field.FindAttendee(text, e.defaultDomain); ok {
		draft.Attendees = []string{email}
	}
	if minutes, ok := field.FindDuration(text); ok {
		draft.DurationMinutes = minutes
	}
	if draft.Complete() && draft.DurationMinutes > 0 {
		// Everything arrived in one message; description stays optional.
		draft.DescriptionDone = true
	}

	session := &Session{
		Step:      NextStep(&draft),
		Draft:     draft,
		StartedAt: now,
		UpdatedAt: now,
	}
	e.store.Set(userID, session)
	slog.Debug("scheduling session started", "user_id", userID, "step", session.Step)

	if session.Step == StepConfirm {
		return confirmSummary(&session.Draft)
	}
	return promptFor(session.Step)
}

// advanceSession applies the extractor for the current step. Failed
// extraction re-prompts without mutating state; success recomputes the step
// from the draft and persists before replying.
func (e *Engine) advanceSession(ctx context.Context, userID string, session *Session, text string) string {
	now := e.now()

	switch session.Step {
	case StepDate:
		date, ok := field.ParseDate(text, now)
		if !ok {
			return repromptDate
		}
		session.Draft.Date = date

	case StepTime:
		tod, ok := field.ExtractTime(text)
		if !ok {
			return repromptTime
		}
		session.Draft.Time = &tod

	case StepEmail:
		email, ok := field.ValidateEmail(text)
		if !ok {
			return repromptEmail
		}
		session.Draft.Attendees = []string{email}

	case StepDuration:
		minutes, ok := field.ParseMinutes(text)
		if !ok {
			return repromptDuration
		}
		session.Draft.DurationMinutes = minutes

	case StepDescription:
		// This step never fails: "skip" means no description, anything else
		// is stored verbatim.
		if !strings.EqualFold(strings.TrimSpace(text), "skip") {
			session.Draft.Description = text
		}
		session.Draft.DescriptionDone = true

	case StepConfirm:
		return e.finishSession(ctx, userID, session, text)
	}

	session.Step = NextStep(&session.Draft)
	session.UpdatedAt = now
	e.store.Set(userID, session)

	if session.Step == StepConfirm {
		return confirmSummary(&session.Draft)
	}
	return promptFor(session.Step)
}

// finishSession handles the confirm step. The session is deleted on every
// path: confirmed (success or failure, no retry-in-place) and declined alike.
func (e *Engine) finishSession(ctx context.Context, userID string, session *Session, text string) string {
	e.store.Delete(userID)

	if !strings.EqualFold(strings.TrimSpace(text), "yes") {
		return replyDeclined
	}

	draft := &session.Draft
	start, end := draft.StartEnd()
	attendee := draft.Attendees[0]
	summary := "Meeting with " + localPart(attendee)
	description := draft.Description
	if description == "" {
		description = "Meeting scheduled via Remo"
	}

	if err := e.exec.CreateMeeting(ctx, userID, summary, description, start, end, draft.Attendees); err != nil {
		slog.Error("failed to create meeting",
			"user_id", userID,
			"attendee", attendee,
			"start", start,
			"error", err,
		)
		return fmt.Sprintf("Sorry, I couldn't schedule the meeting: %v. Please try again.", err)
	}

	slog.Info("meeting scheduled",
		"user_id", userID,
		"attendee", attendee,
		"start", start,
		"duration", draft.Duration(),
	)
	return replySuccess
}

func promptFor(step Step) string {
	switch step {
	case StepDate:
		return promptDate
	case StepTime:
		return promptTime
	case StepEmail:
		return promptEmail
	case StepDuration:
		return promptDuration
	case StepDescription:
		return promptDescription
	default:
		return ""
	}
}

func confirmSummary(d *Draft) string {
	description := d.Description
	if description == "" {
		description = "No description"
	}
	return fmt.Sprintf(
		"Please confirm these meeting details:\n\n"+
			"📅 Date: %s\n"+
			"⏰ Time: %02d:%02d\n"+
			"👥 With: %s\n"+
			"⏱️ Duration: %d minutes\n"+
			"📝 Description: %s\n\n"+
			"Is this correct? (Reply with 'yes' to confirm or 'no' to start over)",
		d.Date.Format("Monday, 02 Jan 2006"),
		d.Time.Hours, d.Time.Minutes,
		d.Attendees[0],
		int(d.Duration().Minutes()),
		description,
	)
}

func localPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
