package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// calendarScope grants full calendar access; needed to insert events with
// attendee notifications.
const calendarScope = "https://www.googleapis.com/auth/calendar"

var (
	// ErrUnknownState is returned when a callback carries a state nonce that
	// was never issued or has already been consumed.
	ErrUnknownState = errors.New("unknown oauth state")
	// ErrNoPendingToken is returned when a user answers the authorization
	// choice without a freshly exchanged token waiting.
	ErrNoPendingToken = errors.New("no pending token for user")
)

// Manager runs the OAuth authorization flow and serves as the credential
// store for the rest of the system. Tokens live in memory for the session;
// users who choose "always allow" also get an encrypted entry in the
// permanent token file, reloaded at startup.
type Manager struct {
	config *oauth2.Config
	file   *TokenFile

	mu      sync.RWMutex
	tokens  map[string]*oauth2.Token // userID -> active credential
	pending map[string]*oauth2.Token // userID -> exchanged, awaiting choice
	states  map[string]string        // state nonce -> userID
}

// Config carries the Google OAuth client settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewManager creates an authorization manager. The token file may be nil in
// tests; permanent grants are then kept in memory only.
func NewManager(cfg Config, file *TokenFile) *Manager {
	return &Manager{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{calendarScope},
			Endpoint:     google.Endpoint,
		},
		file:    file,
		tokens:  make(map[string]*oauth2.Token),
		pending: make(map[string]*oauth2.Token),
		states:  make(map[string]string),
	}
}

// OAuthConfig exposes the client configuration for the calendar provider,
// which needs it to build token-refreshing HTTP clients.
func (m *Manager) OAuthConfig() *oauth2.Config {
	return m.config
}

// LoadPermanent loads previously stored permanent tokens into memory.
func (m *Manager) LoadPermanent() error {
	if m.file == nil {
		return nil
	}
	tokens, err := m.file.Load()
	if err != nil {
		return err
	}

	m.mu.Lock()
	for userID, token := range tokens {
		m.tokens[userID] = token
	}
	m.mu.Unlock()

	slog.Info("permanent tokens loaded", "count", len(tokens))
	return nil
}

// StartAuth returns the authorization URL for a user. The state nonce binds
// the eventual callback back to the user identifier.
func (m *Manager) StartAuth(userID string) string {
	state := uuid.NewString()

	m.mu.Lock()
	m.states[state] = userID
	m.mu.Unlock()

	return m.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent select_account"),
	)
}

// HandleCallback exchanges the authorization code and parks the token until
// the user picks session-only or permanent storage. Returns the user the
// state nonce was issued for.
func (m *Manager) HandleCallback(ctx context.Context, code, state string) (string, error) {
	m.mu.Lock()
	userID, ok := m.states[state]
	if ok {
		delete(m.states, state)
	}
	m.mu.Unlock()
	if !ok {
		return "", ErrUnknownState
	}

	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		slog.Error("oauth code exchange failed", "user_id", userID, "error", err)
		return userID, errors.Wrap(err, "exchange code")
	}

	m.mu.Lock()
	m.pending[userID] = token
	m.mu.Unlock()

	slog.Info("oauth code exchanged", "user_id", userID)
	return userID, nil
}

// Commit resolves the user's authorization choice: the pending token becomes
// the active credential, and permanent grants are also written to the token
// file.
func (m *Manager) Commit(userID string, permanent bool) error {
	m.mu.Lock()
	token, ok := m.pending[userID]
	if ok {
		delete(m.pending, userID)
		m.tokens[userID] = token
	}
	m.mu.Unlock()
	if !ok {
		return ErrNoPendingToken
	}

	if permanent && m.file != nil {
		if err := m.file.Save(userID, token); err != nil {
			// The session credential is already usable; losing persistence
			// only costs a re-authorization next run.
			slog.Error("failed to persist permanent token", "user_id", userID, "error", err)
			return err
		}
	}

	slog.Info("credential stored", "user_id", userID, "permanent", permanent)
	return nil
}

// HasCredential reports whether the user holds an active credential.
func (m *Manager) HasCredential(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tokens[userID]
	return ok
}

// GetCredential returns the user's active credential.
func (m *Manager) GetCredential(userID string) (*oauth2.Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.tokens[userID]
	return token, ok
}

// Revoke drops a user's credential from memory and the permanent file.
func (m *Manager) Revoke(userID string) error {
	m.mu.Lock()
	delete(m.tokens, userID)
	delete(m.pending, userID)
	m.mu.Unlock()

	if m.file == nil {
		return nil
	}
	return m.file.Delete(userID)
}
