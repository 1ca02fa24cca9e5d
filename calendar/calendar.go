// Package calendar translates confirmed meeting drafts into calls against a
// calendar provider and maps results back to the dialogue layer.
package calendar

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// ErrUnauthorized is returned when the owner holds no calendar credential.
var ErrUnauthorized = errors.New("user has no calendar credential")

// Event is the provider-neutral calendar event.
type Event struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// Provider is the remote calendar collaborator.
type Provider interface {
	// InsertEvent creates the event on the owner's primary calendar and asks
	// the provider to notify all attendees. Returns the provider event ID.
	InsertEvent(ctx context.Context, cred *oauth2.Token, event *Event) (string, error)

	// ListEvents returns the owner's events between timeMin and timeMax,
	// ordered by start time.
	ListEvents(ctx context.Context, cred *oauth2.Token, timeMin, timeMax time.Time) ([]*Event, error)
}

// CredentialStore resolves a user to their stored calendar credential.
// Supplied by the OAuth subsystem.
type CredentialStore interface {
	HasCredential(userID string) bool
	GetCredential(userID string) (*oauth2.Token, bool)
}

// Executor issues calendar actions on behalf of a user. It never retries:
// create failures surface to the caller with the provider error preserved,
// list failures degrade to an empty result.
type Executor struct {
	provider Provider
	creds    CredentialStore
}

// NewExecutor creates an executor over a provider and credential store.
func NewExecutor(provider Provider, creds CredentialStore) *Executor {
	return &Executor{provider: provider, creds: creds}
}

// CreateMeeting issues one remote event-creation call. It fails with
// ErrUnauthorized when no credential is stored for the owner.
func (e *Executor) CreateMeeting(ctx context.Context, ownerID, summary, description string, start, end time.Time, attendees []string) error {
	cred, ok := e.creds.GetCredential(ownerID)
	if !ok {
		return ErrUnauthorized
	}

	event := &Event{
		Summary:     summary,
		Description: description,
		Start:       start,
		End:         end,
		Attendees:   attendees,
	}
	eventID, err := e.provider.InsertEvent(ctx, cred, event)
	if err != nil {
		slog.Error("calendar insert failed", "owner_id", ownerID, "start", start, "error", err)
		return errors.Wrap(err, "insert event")
	}

	slog.Info("calendar event created", "owner_id", ownerID, "event_id", eventID, "start", start)
	return nil
}

// ListEvents returns the owner's events in [start, end]. Any provider error
// is swallowed and yields an empty result; the read path degrades to "no
// meetings found" instead of surfacing failures.
func (e *Executor) ListEvents(ctx context.Context, ownerID string, start, end time.Time) []*Event {
	cred, ok := e.creds.GetCredential(ownerID)
	if !ok {
		return nil
	}

	events, err := e.provider.ListEvents(ctx, cred, start, end)
	if err != nil {
		slog.Warn("calendar list failed, returning empty", "owner_id", ownerID, "error", err)
		return nil
	}
	return events
}
