package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateULID(t *testing.T) {
	a := GenerateULID()
	b := GenerateULID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2"))
}

func TestAdminTokenRoundTrip(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateAdminToken(secret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["role"])
	assert.NotEmpty(t, claims["jti"])

	_, err = ValidateJWT(token, "wrong-secret")
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateAdminToken(secret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWT(token, secret)
	assert.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"

	ciphertext, err := Encrypt("umami-session-token", key)
	require.NoError(t, err)
	assert.NotEqual(t, "umami-session-token", ciphertext)

	plaintext, err := Decrypt(ciphertext, key)
	require.NoError(t, err)
	assert.Equal(t, "umami-session-token", plaintext)
}

func TestDecryptWithWrongKey(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	other := "fedcba9876543210fedcba9876543210"

	ciphertext, err := Encrypt("secret", key)
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, other)
	assert.Error(t, err)
}
