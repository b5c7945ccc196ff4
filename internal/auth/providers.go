package auth

import (
	"errors"
	"net/url"

	"github.com/sitesmith/builder-front/internal/oidc"
)

// InfomaniakProvider is the path segment and profile provider tag of the
// OIDC strategy.
const InfomaniakProvider = "infomaniak"

// Login method tags carried in the error redirect and in log fields
const (
	LoginDev        = "login_dev"
	LoginInfomaniak = "login_infomaniak"
)

// Paths on the canonical origin
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// loginErrorMessages are the generic per-method fallbacks shown to the
// user. Internal error detail never leaves the server.
var loginErrorMessages = map[string]string{
	LoginDev:        "There has been an issue logging you in with dev",
	LoginInfomaniak: "There has been an issue logging you in with Infomaniak",
}

// loginErrorPath builds the login page URL carrying an error tag, a
// sanitized message, and optionally the original redirect target.
func loginErrorPath(method, message, returnTo string) string {
	q := url.Values{}
	q.Set("error", method)
	q.Set("message", message)
	if returnTo != "" {
		q.Set("returnTo", returnTo)
	}
	return LoginPath + "?" + q.Encode()
}

// sanitizedMessage maps an internal error to the message the client may
// see. Known flow failures get a short specific text; anything else the
// generic per-method message.
func sanitizedMessage(method string, err error) string {
	switch {
	case errors.Is(err, ErrMissingAttempt):
		return "Login session expired, please try again"
	case errors.Is(err, ErrInvalidCredentials):
		return "Secret is incorrect"
	case errors.Is(err, oidc.ErrProviderUnavailable):
		return "The identity provider is unavailable, please try again later"
	case errors.Is(err, oidc.ErrExchange):
		return "Login could not be completed, please try again"
	default:
		return loginErrorMessages[method]
	}
}
