package oidc

import (
	"fmt"

	"github.com/sitesmith/builder-front/internal/crypto"
	"golang.org/x/oauth2"
)

// LoginAttempt is the ephemeral state of one login flow: generated at
// initiation, carried in the session cookie, consumed exactly once at the
// callback. The three values are independent 256-bit random tokens.
type LoginAttempt struct {
	State        string `json:"state"`
	Nonce        string `json:"nonce"`
	CodeVerifier string `json:"codeVerifier"`
}

// NewLoginAttempt generates a fresh state, nonce, and PKCE code verifier
func NewLoginAttempt() (LoginAttempt, error) {
	state, err := crypto.GenerateSecureToken()
	if err != nil {
		return LoginAttempt{}, fmt.Errorf("failed to generate state: %w", err)
	}
	nonce, err := crypto.GenerateSecureToken()
	if err != nil {
		return LoginAttempt{}, fmt.Errorf("failed to generate nonce: %w", err)
	}
	verifier, err := crypto.GenerateSecureToken()
	if err != nil {
		return LoginAttempt{}, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	return LoginAttempt{State: state, Nonce: nonce, CodeVerifier: verifier}, nil
}

// Complete reports whether all three values are present. A partial triple
// signals tampering or a truncated session and must never be consumed.
func (a LoginAttempt) Complete() bool {
	return a.State != "" && a.Nonce != "" && a.CodeVerifier != ""
}

// CodeChallenge computes the S256 transform of a PKCE code verifier
func CodeChallenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}
