// Package auth owns Google Calendar authorization: OAuth URL generation and
// code exchange, the in-memory credential map, and the encrypted permanent
// token file for users who choose "always allow".
package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

var (
	// ErrEmptyPassphrase is returned when no token passphrase is configured.
	ErrEmptyPassphrase = errors.New("empty token passphrase")
	// ErrInvalidCiphertext is returned when stored ciphertext cannot be decrypted.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// keySalt is a fixed application salt for scrypt key derivation. Tokens are
// only readable by the process that owns the data directory; the passphrase
// is the secret, the salt just domain-separates it.
var keySalt = []byte("remo.tokenfile.v1")

// DeriveKey stretches an operator-supplied passphrase of any length into the
// 32-byte AES key used for token encryption.
func DeriveKey(passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	key, err := scrypt.Key([]byte(passphrase), keySalt, 1<<15, 8, 1, 32)
	if err != nil {
		return nil, errors.Wrap(err, "derive key")
	}
	return key, nil
}

// EncryptToken encrypts a serialized token using AES-256-GCM.
func EncryptToken(plaintext []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptToken decrypts a token encrypted with EncryptToken.
func DecryptToken(ciphertext string, key []byte) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(data) < gcm.NonceSize() {
		return nil, ErrInvalidCiphertext
	}

	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}
	return plaintext, nil
}
