package auth

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const tokenFileName = "tokens.json"

// TokenFile persists permanent credentials as a flat user-id to token
// mapping, each token encrypted at rest. Writes go through a temp file and
// rename so a crash never leaves a half-written file.
type TokenFile struct {
	mu   sync.Mutex
	path string
	key  []byte
}

// NewTokenFile creates a token file handle under the data directory.
func NewTokenFile(dataDir string, key []byte) *TokenFile {
	return &TokenFile{path: filepath.Join(dataDir, tokenFileName), key: key}
}

// Load reads all stored tokens. A missing file yields an empty map. Entries
// that fail to decrypt are skipped with a warning; one corrupt entry should
// not lock out every user.
func (f *TokenFile) Load() (map[string]*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]*oauth2.Token{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read token file")
	}

	var encrypted map[string]string
	if err := json.Unmarshal(data, &encrypted); err != nil {
		return nil, errors.Wrap(err, "parse token file")
	}

	tokens := make(map[string]*oauth2.Token, len(encrypted))
	for userID, ciphertext := range encrypted {
		plaintext, err := DecryptToken(ciphertext, f.key)
		if err != nil {
			slog.Warn("skipping undecryptable stored token", "user_id", userID, "error", err)
			continue
		}
		var token oauth2.Token
		if err := json.Unmarshal(plaintext, &token); err != nil {
			slog.Warn("skipping malformed stored token", "user_id", userID, "error", err)
			continue
		}
		tokens[userID] = &token
	}
	return tokens, nil
}

// Save adds or replaces one user's token and rewrites the file.
func (f *TokenFile) Save(userID string, token *oauth2.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	encrypted := map[string]string{}
	if data, err := os.ReadFile(f.path); err == nil {
		if err := json.Unmarshal(data, &encrypted); err != nil {
			slog.Warn("token file unreadable, starting fresh", "path", f.path, "error", err)
			encrypted = map[string]string{}
		}
	}

	plaintext, err := json.Marshal(token)
	if err != nil {
		return errors.Wrap(err, "serialize token")
	}
	ciphertext, err := EncryptToken(plaintext, f.key)
	if err != nil {
		return errors.Wrap(err, "encrypt token")
	}
	encrypted[userID] = ciphertext

	return f.write(encrypted)
}

// Delete removes one user's token from the file.
func (f *TokenFile) Delete(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read token file")
	}

	var encrypted map[string]string
	if err := json.Unmarshal(data, &encrypted); err != nil {
		return errors.Wrap(err, "parse token file")
	}
	if _, ok := encrypted[userID]; !ok {
		return nil
	}
	delete(encrypted, userID)

	return f.write(encrypted)
}

func (f *TokenFile) write(encrypted map[string]string) error {
	data, err := json.MarshalIndent(encrypted, "", "  ")
	if err != nil {
		return errors.Wrap(err, "serialize token file")
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "write token file")
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(err, "replace token file")
	}
	return nil
}
