// Package google implements the calendar.Provider contract over the Google
// Calendar v3 API. Each call builds a short-lived service from the user's
// OAuth token; the SDK refreshes expired tokens through the oauth2 config.
package google

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/remohq/remo/calendar"
)

const (
	primaryCalendarID = "primary"
	maxListResults    = 10
)

// Provider talks to the Google Calendar API with per-user OAuth tokens.
type Provider struct {
	oauthConfig *oauth2.Config
}

// NewProvider creates a Google Calendar provider bound to the app's OAuth
// client configuration.
func NewProvider(oauthConfig *oauth2.Config) *Provider {
	return &Provider{oauthConfig: oauthConfig}
}

func (p *Provider) service(ctx context.Context, cred *oauth2.Token) (*gcal.Service, error) {
	httpClient := p.oauthConfig.Client(ctx, cred)
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Wrap(err, "create calendar service")
	}
	return svc, nil
}

// InsertEvent creates the event on the primary calendar with update
// notifications sent to all attendees and default reminders.
func (p *Provider) InsertEvent(ctx context.Context, cred *oauth2.Token, event *calendar.Event) (string, error) {
	svc, err := p.service(ctx, cred)
	if err != nil {
		return "", err
	}

	tz := event.Start.Location().String()
	attendees := make([]*gcal.EventAttendee, 0, len(event.Attendees))
	for _, email := range event.Attendees {
		attendees = append(attendees, &gcal.EventAttendee{Email: email})
	}

	gcalEvent := &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
			TimeZone: tz,
		},
		Attendees: attendees,
		Reminders: &gcal.EventReminders{
			UseDefault:      true,
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := svc.Events.Insert(primaryCalendarID, gcalEvent).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "insert event")
	}
	return created.Id, nil
}

// ListEvents returns single events on the primary calendar ordered by start
// time, capped at maxListResults.
func (p *Provider) ListEvents(ctx context.Context, cred *oauth2.Token, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	svc, err := p.service(ctx, cred)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Events.List(primaryCalendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		MaxResults(maxListResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "list events")
	}

	events := make([]*calendar.Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		event := &calendar.Event{
			ID:          item.Id,
			Summary:     item.Summary,
			Description: item.Description,
		}
		// All-day events carry a date instead of a datetime; skip those to
		// keep the listing focused on meetings.
		if item.Start == nil || item.Start.DateTime == "" {
			continue
		}
		if start, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
			event.Start = start
		}
		if item.End != nil && item.End.DateTime != "" {
			if end, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
				event.End = end
			}
		}
		for _, attendee := range item.Attendees {
			if attendee.Email != "" {
				event.Attendees = append(event.Attendees, attendee.Email)
			}
		}
		events = append(events, event)
	}
	return events, nil
}

var _ calendar.Provider = (*Provider)(nil)
