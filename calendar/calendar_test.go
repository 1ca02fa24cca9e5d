package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeProvider struct {
	insertErr error
	listErr   error
	inserted  []*Event
	listed    []*Event
}

func (f *fakeProvider) InsertEvent(_ context.Context, _ *oauth2.Token, event *Event) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.inserted = append(f.inserted, event)
	return "evt-1", nil
}

func (f *fakeProvider) ListEvents(_ context.Context, _ *oauth2.Token, _, _ time.Time) ([]*Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listed, nil
}

type fakeCreds struct {
	tokens map[string]*oauth2.Token
}

func (f *fakeCreds) HasCredential(userID string) bool {
	_, ok := f.tokens[userID]
	return ok
}

func (f *fakeCreds) GetCredential(userID string) (*oauth2.Token, bool) {
	tok, ok := f.tokens[userID]
	return tok, ok
}

func authorized(userID string) *fakeCreds {
	return &fakeCreds{tokens: map[string]*oauth2.Token{userID: {AccessToken: "tok"}}}
}

func TestCreateMeetingUnauthorized(t *testing.T) {
	exec := NewExecutor(&fakeProvider{}, &fakeCreds{tokens: map[string]*oauth2.Token{}})

	err := exec.CreateMeeting(context.Background(), "7", "Meeting with alice", "", time.Now(), time.Now().Add(time.Hour), []string{"alice@example.com"})

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateMeetingPassesDraftThrough(t *testing.T) {
	provider := &fakeProvider{}
	exec := NewExecutor(provider, authorized("7"))
	start := time.Date(2026, time.September, 1, 14, 0, 0, 0, time.Local)

	err := exec.CreateMeeting(context.Background(), "7", "Meeting with alice", "Quarterly sync", start, start.Add(30*time.Minute), []string{"alice@example.com"})

	require.NoError(t, err)
	require.Len(t, provider.inserted, 1)
	event := provider.inserted[0]
	assert.Equal(t, "Meeting with alice", event.Summary)
	assert.Equal(t, "Quarterly sync", event.Description)
	assert.True(t, event.Start.Equal(start))
	assert.True(t, event.End.Equal(start.Add(30*time.Minute)))
	assert.Equal(t, []string{"alice@example.com"}, event.Attendees)
}

func TestCreateMeetingPreservesProviderError(t *testing.T) {
	providerErr := errors.New("quota exceeded")
	exec := NewExecutor(&fakeProvider{insertErr: providerErr}, authorized("7"))

	err := exec.CreateMeeting(context.Background(), "7", "Meeting with alice", "", time.Now(), time.Now().Add(time.Hour), []string{"alice@example.com"})

	require.Error(t, err)
	assert.ErrorIs(t, err, providerErr)
}

func TestListEventsFailSoft(t *testing.T) {
	exec := NewExecutor(&fakeProvider{listErr: errors.New("backend down")}, authorized("7"))

	events := exec.ListEvents(context.Background(), "7", time.Now(), time.Now().Add(24*time.Hour))

	assert.Empty(t, events, "list errors degrade to an empty result")
}

func TestListEventsUnauthorizedIsEmpty(t *testing.T) {
	exec := NewExecutor(&fakeProvider{listed: []*Event{{ID: "evt-1"}}}, &fakeCreds{tokens: map[string]*oauth2.Token{}})

	events := exec.ListEvents(context.Background(), "7", time.Now(), time.Now().Add(24*time.Hour))

	assert.Empty(t, events)
}

func TestListEventsReturnsProviderEvents(t *testing.T) {
	listed := []*Event{{ID: "evt-1", Summary: "Standup"}, {ID: "evt-2", Summary: "Review"}}
	exec := NewExecutor(&fakeProvider{listed: listed}, authorized("7"))

	events := exec.ListEvents(context.Background(), "7", time.Now(), time.Now().Add(24*time.Hour))

	assert.Equal(t, listed, events)
}
