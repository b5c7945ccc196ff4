package cookie

import (
	"net/http"
	"time"

	"github.com/sitesmith/builder-front/internal/crypto"
)

// ReturnToTTL bounds how long a pending redirect target stays valid. The
// whole provider round trip fits comfortably inside it.
const ReturnToTTL = 10 * time.Minute

// ReturnToCookie reads and writes the signed return-to cookie
type ReturnToCookie struct {
	signer crypto.TokenSigner
	secure bool
}

// NewReturnToCookie creates the return-to cookie helper keyed by secret
func NewReturnToCookie(secret []byte, secure bool) ReturnToCookie {
	return ReturnToCookie{
		signer: crypto.NewTokenSigner(secret, ReturnToTTL),
		secure: secure,
	}
}

// Set stores the redirect target for the duration of the provider hop
func (c ReturnToCookie) Set(w http.ResponseWriter, target string) error {
	token, err := c.signer.Sign(target)
	if err != nil {
		return err
	}
	Set(w, ReturnTo, token, ReturnToTTL, c.secure)
	return nil
}

// Read returns the stored redirect target. A missing, expired, or
// tampered cookie reads as absent.
func (c ReturnToCookie) Read(r *http.Request) (string, bool) {
	token, err := Get(r, ReturnTo)
	if err != nil {
		return "", false
	}
	var target string
	if err := c.signer.Verify(token, &target); err != nil {
		return "", false
	}
	return target, true
}

// Clear removes the return-to cookie
func (c ReturnToCookie) Clear(w http.ResponseWriter) {
	Clear(w, ReturnTo)
}
