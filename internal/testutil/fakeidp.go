// Package testutil provides test doubles shared across packages.
package testutil

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// FakeIDP is an in-process OIDC identity provider backed by httptest.
// It serves discovery, JWKS, token, and userinfo endpoints and issues
// RS256-signed ID tokens, enough to drive the full relying-party flow.
type FakeIDP struct {
	Server   *httptest.Server
	ClientID string

	// Code is the single authorization code the token endpoint accepts.
	Code string

	// Nonce is embedded in issued ID tokens. Tests set it to the nonce
	// found in the authorization URL, or to a wrong value to provoke a
	// mismatch.
	Nonce string

	// Claims are merged into the ID token payload (email, name, ...).
	Claims map[string]any

	// UserInfo is the userinfo response body. When UserInfoStatus is
	// non-zero and not 200, the endpoint fails with that status instead.
	UserInfo       map[string]any
	UserInfoStatus int

	// ExpectedChallenge, when set, makes the token endpoint enforce that
	// S256(code_verifier) matches it.
	ExpectedChallenge string

	// TokenStatus, when non-zero and not 200, fails the token endpoint.
	TokenStatus int

	key *rsa.PrivateKey
}

// NewFakeIDP starts a fake provider. The server is shut down with the test.
func NewFakeIDP(t *testing.T, clientID string) *FakeIDP {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}

	f := &FakeIDP{
		ClientID: clientID,
		Code:     "fake-authorization-code",
		key:      key,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", f.handleDiscovery)
	mux.HandleFunc("GET /keys", f.handleJWKS)
	mux.HandleFunc("POST /token", f.handleToken)
	mux.HandleFunc("GET /userinfo", f.handleUserInfo)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// IssuerURL returns the provider issuer
func (f *FakeIDP) IssuerURL() string {
	return f.Server.URL
}

func (f *FakeIDP) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"issuer":                 f.Server.URL,
		"authorization_endpoint": f.Server.URL + "/authorize",
		"token_endpoint":         f.Server.URL + "/token",
		"jwks_uri":               f.Server.URL + "/keys",
		"userinfo_endpoint":      f.Server.URL + "/userinfo",
	})
}

func (f *FakeIDP) handleJWKS(w http.ResponseWriter, r *http.Request) {
	pub := f.key.Public().(*rsa.PublicKey)
	writeJSON(w, map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"alg": "RS256",
			"use": "sig",
			"kid": "fake-idp-key",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
}

func (f *FakeIDP) handleToken(w http.ResponseWriter, r *http.Request) {
	if f.TokenStatus != 0 && f.TokenStatus != http.StatusOK {
		http.Error(w, `{"error":"server_error"}`, f.TokenStatus)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, `{"error":"invalid_request"}`, http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("grant_type") != "authorization_code" || r.PostForm.Get("code") != f.Code {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		return
	}
	if f.ExpectedChallenge != "" {
		verifier := r.PostForm.Get("code_verifier")
		sum := sha256.Sum256([]byte(verifier))
		if base64.RawURLEncoding.EncodeToString(sum[:]) != f.ExpectedChallenge {
			http.Error(w, `{"error":"invalid_grant","error_description":"PKCE verification failed"}`, http.StatusBadRequest)
			return
		}
	}

	writeJSON(w, map[string]any{
		"access_token": "fake-access-token",
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     f.signIDToken(),
	})
}

func (f *FakeIDP) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	if f.UserInfoStatus != 0 && f.UserInfoStatus != http.StatusOK {
		http.Error(w, "userinfo unavailable", f.UserInfoStatus)
		return
	}
	if f.UserInfo == nil {
		http.Error(w, "userinfo unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, f.UserInfo)
}

// signIDToken builds an RS256 JWT with the standard claims plus f.Claims
func (f *FakeIDP) signIDToken() string {
	now := time.Now()
	payload := map[string]any{
		"iss": f.Server.URL,
		"aud": f.ClientID,
		"sub": "fake-subject",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	if f.Nonce != "" {
		payload["nonce"] = f.Nonce
	}
	for k, v := range f.Claims {
		payload[k] = v
	}

	header := map[string]any{"alg": "RS256", "typ": "JWT", "kid": "fake-idp-key"}
	signingInput := encodeSegment(header) + "." + encodeSegment(payload)

	digest := sha256.Sum256([]byte(signingInput))
	sig, err := rsa.SignPKCS1v15(rand.Reader, f.key, crypto.SHA256, digest[:])
	if err != nil {
		panic(fmt.Sprintf("failed to sign ID token: %v", err))
	}
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func encodeSegment(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal JWT segment: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
