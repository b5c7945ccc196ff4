package auth

import "net/http"

// sameOriginRequest reports whether the fetch metadata allows the request
// to carry first-party cookies. Cross-site and same-site (subdomain)
// initiators are rejected; browsers that send no Sec-Fetch-Site header
// pass, same-origin enforcement then rests on SameSite cookie semantics.
//
// This is an origin check, not a CSRF token: auth endpoints are
// dashboard-only pages, and builder/canvas requests are fenced off here.
// Only the POST endpoints use it; the OIDC callback cannot, since the
// provider redirect is always a cross-site navigation.
func sameOriginRequest(r *http.Request) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "", "same-origin", "none":
		return true
	default:
		return false
	}
}

// documentRequest reports whether the request is a top-level document
// navigation. The callback only ever arrives as one; anything else
// (fetch, iframe, image probe) is rejected.
func documentRequest(r *http.Request) bool {
	switch r.Header.Get("Sec-Fetch-Dest") {
	case "", "document":
		return true
	default:
		return false
	}
}
