// Package session implements the cookie-backed session store. The server
// keeps no per-attempt state: everything a callback needs travels in the
// encrypted cookie, so any instance can complete a flow another started.
package session

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sitesmith/builder-front/internal/cookie"
	"github.com/sitesmith/builder-front/internal/crypto"
	"github.com/sitesmith/builder-front/internal/log"
	"github.com/sitesmith/builder-front/internal/oidc"
)

// TTL is the session cookie lifetime. Expiry of the authenticated session
// is delegated to the cookie itself.
const TTL = 7 * 24 * time.Hour

// User is the authenticated identity written on successful login
type User struct {
	UserID string `json:"userId"`
	// CreatedAt is milliseconds since epoch
	CreatedAt int64 `json:"createdAt"`
}

// data is the encrypted cookie payload. It carries at most the pending
// login attempt or the authenticated user.
type data struct {
	State        string `json:"oidc:state,omitempty"`
	Nonce        string `json:"oidc:nonce,omitempty"`
	CodeVerifier string `json:"oidc:codeVerifier,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// Store encodes sessions into the session cookie and back
type Store struct {
	encryptor crypto.Encryptor
	secure    bool
}

// NewStore creates a session store
func NewStore(encryptor crypto.Encryptor, secure bool) *Store {
	return &Store{encryptor: encryptor, secure: secure}
}

// Session is one request's view of the session cookie. Mutations are
// local until Commit writes the cookie back.
type Session struct {
	data data
}

// Load decodes the session from the request cookie. A missing,
// undecryptable, or malformed cookie yields an empty session - the
// expired/tampered case degrades to "no session", never to an error.
func (s *Store) Load(r *http.Request) *Session {
	sess := &Session{}

	value, err := cookie.Get(r, cookie.Session)
	if err != nil {
		return sess
	}
	plaintext, err := s.encryptor.Decrypt(value)
	if err != nil {
		// rotated secret or tampering, either way there is no session
		log.LogDebug("Discarding undecryptable session cookie: %v", err)
		return sess
	}
	var d data
	if err := json.Unmarshal([]byte(plaintext), &d); err != nil {
		return sess
	}
	sess.data = d
	return sess
}

// Commit encrypts the session and sets the cookie on the response
func (s *Store) Commit(w http.ResponseWriter, sess *Session) error {
	payload, err := json.Marshal(sess.data)
	if err != nil {
		return err
	}
	encrypted, err := s.encryptor.Encrypt(string(payload))
	if err != nil {
		return err
	}
	cookie.Set(w, cookie.Session, encrypted, TTL, s.secure)
	return nil
}

// Attempt returns the pending login attempt. A partial triple reads as
// absent: all three fields are present together or none count.
func (sess *Session) Attempt() (oidc.LoginAttempt, bool) {
	attempt := oidc.LoginAttempt{
		State:        sess.data.State,
		Nonce:        sess.data.Nonce,
		CodeVerifier: sess.data.CodeVerifier,
	}
	if !attempt.Complete() {
		return oidc.LoginAttempt{}, false
	}
	return attempt, true
}

// SetAttempt stores the pending login attempt
func (sess *Session) SetAttempt(attempt oidc.LoginAttempt) {
	sess.data.State = attempt.State
	sess.data.Nonce = attempt.Nonce
	sess.data.CodeVerifier = attempt.CodeVerifier
}

// ClearAttempt removes the pending attempt fields
func (sess *Session) ClearAttempt() {
	sess.data.State = ""
	sess.data.Nonce = ""
	sess.data.CodeVerifier = ""
}

// User returns the authenticated user, if any
func (sess *Session) User() (User, bool) {
	if sess.data.User == nil {
		return User{}, false
	}
	return *sess.data.User, true
}

// SetUser writes the authenticated identity
func (sess *Session) SetUser(u User) {
	sess.data.User = &u
}
