// Package origin decides whether a request targets the canonical dashboard
// origin or a tenant subdomain. The OAuth flow is centralized on the
// canonical origin; builder and canvas traffic served from per-project
// subdomains hands off to it and returns afterward.
package origin

import (
	"fmt"
	"net/http"
	"net/url"
)

// Canonical computes the canonical dashboard origin from the configured
// OIDC redirect URI. The redirect URI always lives on the main domain, so
// its origin is the single origin every login flow converges on.
func Canonical(redirectURI string) (string, error) {
	if redirectURI == "" {
		return "", fmt.Errorf("missing OIDC_REDIRECT_URI configuration")
	}
	u, err := url.Parse(redirectURI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("malformed OIDC_REDIRECT_URI: %q", redirectURI)
	}
	return u.Scheme + "://" + u.Host, nil
}

// FromRequest reconstructs the effective origin of an incoming request.
// forceHTTPS is set in production where the process sits behind a reverse
// proxy that terminates TLS.
func FromRequest(r *http.Request, forceHTTPS bool) string {
	scheme := "http"
	if r.TLS != nil || forceHTTPS {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// IsCross reports whether the request origin differs from the canonical one
func IsCross(requestOrigin, canonicalOrigin string) bool {
	return requestOrigin != canonicalOrigin
}

// IsCanvas reports whether a URL targets the canvas app. Canvas requests
// carry the project identifier as a query parameter.
func IsCanvas(u *url.URL) bool {
	return u.Query().Get("projectId") != ""
}

// IsDashboard reports whether a request targets the dashboard: served from
// the canonical origin and not canvas traffic. Auth endpoints are
// dashboard-only; anything else gets a 404.
func IsDashboard(r *http.Request, canonicalOrigin string, forceHTTPS bool) bool {
	if IsCross(FromRequest(r, forceHTTPS), canonicalOrigin) {
		return false
	}
	return !IsCanvas(r.URL)
}
