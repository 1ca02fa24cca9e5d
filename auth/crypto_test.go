package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := DeriveKey("correct horse battery staple")
	require.NoError(t, err)
	return key
}

func TestDeriveKey(t *testing.T) {
	key := testKey(t)
	assert.Len(t, key, 32)

	// Same passphrase, same key.
	again, err := DeriveKey("correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, key, again)

	other, err := DeriveKey("a different passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)

	_, err = DeriveKey("")
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := testKey(t)

	testCases := []struct {
		name  string
		input string
	}{
		{"simple text", "hello world"},
		{"oauth token json", `{"access_token":"ya29.a0AfH6","refresh_token":"1//04","expiry":"2026-09-01T10:00:00Z"}`},
		{"special characters", "test@#$%^&*()_+-=[]{}|;':\",./<>?"},
		{"unicode", "测试中文🎉🔥"},
		{"empty", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encrypted, err := EncryptToken([]byte(tc.input), key)
			require.NoError(t, err)
			if tc.input != "" {
				assert.NotEqual(t, tc.input, encrypted)
			}

			decrypted, err := DecryptToken(encrypted, key)
			require.NoError(t, err)
			assert.Equal(t, tc.input, string(decrypted))
		})
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	key := testKey(t)

	first, err := EncryptToken([]byte("same input"), key)
	require.NoError(t, err)
	second, err := EncryptToken([]byte("same input"), key)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "a fresh nonce must produce distinct ciphertext")
}

func TestDecryptRejectsBadInput(t *testing.T) {
	key := testKey(t)

	_, err := DecryptToken("not base64!!!", key)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = DecryptToken("c2hvcnQ=", key) // valid base64, too short for a nonce
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	// Tampering with valid ciphertext must fail authentication.
	encrypted, err := EncryptToken([]byte("payload"), key)
	require.NoError(t, err)
	tampered := "A" + encrypted[1:]
	_, err = DecryptToken(tampered, key)
	assert.Error(t, err)

	// The wrong key must not decrypt.
	otherKey, err := DeriveKey("wrong passphrase")
	require.NoError(t, err)
	_, err = DecryptToken(encrypted, otherKey)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}
