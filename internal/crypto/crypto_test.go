package crypto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken()
	require.NoError(t, err)
	// 32 bytes base64url without padding
	assert.Len(t, token, 43)

	other, err := GenerateSecureToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestAESEncryptor_RoundTrip(t *testing.T) {
	enc, err := NewAESEncryptor([]byte("test-secret"))
	require.NoError(t, err)

	ciphertext, err := enc.Encrypt(`{"userId":"u_1"}`)
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, "u_1")

	plaintext, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, `{"userId":"u_1"}`, plaintext)
}

func TestAESEncryptor_TamperedCiphertext(t *testing.T) {
	enc, err := NewAESEncryptor([]byte("test-secret"))
	require.NoError(t, err)

	ciphertext, err := enc.Encrypt("payload")
	require.NoError(t, err)

	tampered := "A" + ciphertext[1:]
	_, err = enc.Decrypt(tampered)
	assert.Error(t, err)
}

func TestAESEncryptor_WrongKey(t *testing.T) {
	enc1, err := NewAESEncryptor([]byte("key-one"))
	require.NoError(t, err)
	enc2, err := NewAESEncryptor([]byte("key-two"))
	require.NoError(t, err)

	ciphertext, err := enc1.Encrypt("payload")
	require.NoError(t, err)

	_, err = enc2.Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := NewTokenSigner([]byte("signing-key"), time.Minute)

	token, err := signer.Sign(map[string]string{"returnTo": "/project/42"})
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, signer.Verify(token, &decoded))
	assert.Equal(t, "/project/42", decoded["returnTo"])
}

func TestTokenSigner_InvalidSignature(t *testing.T) {
	signer := NewTokenSigner([]byte("signing-key"), time.Minute)
	attacker := NewTokenSigner([]byte("other-key"), time.Minute)

	token, err := attacker.Sign("payload")
	require.NoError(t, err)

	var decoded string
	err = signer.Verify(token, &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid signature")
}

func TestTokenSigner_Expiry(t *testing.T) {
	signer := NewTokenSigner([]byte("signing-key"), -time.Minute)

	token, err := signer.Sign("payload")
	require.NoError(t, err)

	var decoded string
	err = signer.Verify(token, &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestSignData_Deterministic(t *testing.T) {
	key := []byte("key")
	assert.Equal(t, SignData("data", key), SignData("data", key))
	assert.NotEqual(t, SignData("data", key), SignData("other", key))
	assert.True(t, ValidateSignedData("data", SignData("data", key), key))
	assert.False(t, ValidateSignedData("data", SignData("data", key), []byte("wrong")))
}
