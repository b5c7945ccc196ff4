package cookie

import (
	"net/http"
	"time"
)

// Cookie names used by builder-front
const (
	// Session carries the encrypted session payload: the pending login
	// attempt during the OAuth hop, the authenticated user after it.
	Session = "builder_session"

	// ReturnTo carries the post-login redirect target. It is deliberately
	// separate from the session cookie: it only has to survive the
	// cross-origin hand-off to the canonical origin and is cleared as
	// soon as the callback completes.
	ReturnTo = "builder_return_to"
)

// Set writes a cookie with the security settings every builder-front
// cookie shares: HttpOnly, SameSite=Lax, Secure outside development.
func Set(w http.ResponseWriter, name, value string, maxAge time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
}

// Get retrieves a cookie value from the request
func Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Clear removes a cookie by setting MaxAge to -1
func Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
