package oidc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoginAttempt(t *testing.T) {
	attempt, err := NewLoginAttempt()
	require.NoError(t, err)

	assert.True(t, attempt.Complete())
	// three independent values
	assert.NotEqual(t, attempt.State, attempt.Nonce)
	assert.NotEqual(t, attempt.State, attempt.CodeVerifier)
	assert.NotEqual(t, attempt.Nonce, attempt.CodeVerifier)

	// 256 bits each, base64url
	assert.Len(t, attempt.State, 43)
	assert.Len(t, attempt.Nonce, 43)
	assert.Len(t, attempt.CodeVerifier, 43)

	other, err := NewLoginAttempt()
	require.NoError(t, err)
	assert.NotEqual(t, attempt.State, other.State)
}

func TestLoginAttempt_Complete(t *testing.T) {
	tests := []struct {
		name    string
		attempt LoginAttempt
		want    bool
	}{
		{"all present", LoginAttempt{State: "s", Nonce: "n", CodeVerifier: "v"}, true},
		{"empty", LoginAttempt{}, false},
		{"missing state", LoginAttempt{Nonce: "n", CodeVerifier: "v"}, false},
		{"missing nonce", LoginAttempt{State: "s", CodeVerifier: "v"}, false},
		{"missing verifier", LoginAttempt{State: "s", Nonce: "n"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.attempt.Complete())
		})
	}
}

func TestCodeChallenge_Deterministic(t *testing.T) {
	assert.Equal(t, CodeChallenge("verifier"), CodeChallenge("verifier"))
	assert.NotEqual(t, CodeChallenge("verifier"), CodeChallenge("other"))

	// RFC 7636 appendix B reference vector
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM",
		CodeChallenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))
}
