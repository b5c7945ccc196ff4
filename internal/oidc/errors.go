package oidc

import "errors"

// ErrProviderUnavailable marks discovery or network failures against the
// identity provider. The caller may restart the flow; nothing retries
// internally.
var ErrProviderUnavailable = errors.New("identity provider unavailable")

// ErrExchange marks a rejected authorization-code exchange: state or nonce
// mismatch, invalid code, or missing claims. Always treated as a
// security-relevant rejection - the flow aborts, nothing is partially
// authenticated.
var ErrExchange = errors.New("authorization code exchange rejected")
