package auth

import "errors"

// ErrMissingAttempt is returned when a callback arrives without the
// pending attempt triple in session: expiry, tampering, or a replay.
// Treated as an expired attempt, never a crash.
var ErrMissingAttempt = errors.New("missing pending login attempt")

// ErrInvalidCredentials is returned by the dev login strategy on a
// secret mismatch.
var ErrInvalidCredentials = errors.New("invalid credentials")
