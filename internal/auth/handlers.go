// Package auth implements the login flow: OIDC initiation and callback
// on the canonical origin, the cross-subdomain hand-off that funnels
// tenant traffic there, and the development secret strategy.
package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sitesmith/builder-front/internal/config"
	"github.com/sitesmith/builder-front/internal/cookie"
	"github.com/sitesmith/builder-front/internal/log"
	"github.com/sitesmith/builder-front/internal/oidc"
	"github.com/sitesmith/builder-front/internal/origin"
	"github.com/sitesmith/builder-front/internal/session"
	"github.com/sitesmith/builder-front/internal/user"
)

// exchangeTimeout bounds every provider round trip made by a handler
const exchangeTimeout = 30 * time.Second

// Handlers provides the auth HTTP handlers with dependency injection
type Handlers struct {
	cfg             config.Config
	canonicalOrigin string
	oidcClient      *oidc.Client
	sessions        *session.Store
	returnTo        cookie.ReturnToCookie
	users           user.Repository
}

// NewHandlers creates the auth handlers. Fails when the canonical origin
// cannot be derived from the configured redirect URI.
func NewHandlers(cfg config.Config, oidcClient *oidc.Client, sessions *session.Store, returnTo cookie.ReturnToCookie, users user.Repository) (*Handlers, error) {
	canonical, err := origin.Canonical(cfg.OIDCRedirectURI)
	if err != nil {
		return nil, err
	}
	return &Handlers{
		cfg:             cfg,
		canonicalOrigin: canonical,
		oidcClient:      oidcClient,
		sessions:        sessions,
		returnTo:        returnTo,
		users:           users,
	}, nil
}

// CanonicalOrigin returns the origin all login flows converge on
func (h *Handlers) CanonicalOrigin() string {
	return h.canonicalOrigin
}

// LoginHandler handles GET|POST /auth/{provider}.
//
// From a tenant subdomain it redirects to the same endpoint on the
// canonical origin, preserving the return target - a pure pass-through
// that touches no session. On the canonical origin it generates a login
// attempt, persists it, and redirects to the provider.
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("provider") != InfomaniakProvider {
		http.NotFound(w, r)
		return
	}

	requestOrigin := origin.FromRequest(r, h.cfg.IsProduction())
	if origin.IsCross(requestOrigin, h.canonicalOrigin) {
		h.redirectToCanonical(w, r, requestOrigin)
		return
	}

	returnTo := r.URL.Query().Get("returnTo")

	if r.Method == http.MethodPost {
		if !origin.IsDashboard(r, h.canonicalOrigin, h.cfg.IsProduction()) {
			http.NotFound(w, r)
			return
		}
		if !sameOriginRequest(r) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if returnTo == "" {
			returnTo = DashboardPath
		}
	} else if returnTo == "" {
		// direct GET access without a target goes back to the login page
		redirectNoStore(w, r, LoginPath)
		return
	}

	h.initiate(w, r, returnTo)
}

// redirectToCanonical hands a tenant-subdomain request off to the
// canonical origin, carrying the return target as a query parameter
func (h *Handlers) redirectToCanonical(w http.ResponseWriter, r *http.Request, requestOrigin string) {
	returnTo := r.URL.Query().Get("returnTo")
	if returnTo == "" && r.Method == http.MethodPost {
		returnTo = r.Header.Get("Referer")
	}
	if returnTo == "" {
		returnTo = requestOrigin + "/"
	}

	target, err := url.Parse(h.canonicalOrigin)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	target.Path = "/auth/" + InfomaniakProvider
	q := url.Values{}
	q.Set("returnTo", returnTo)
	target.RawQuery = q.Encode()

	redirectNoStore(w, r, target.String())
}

// initiate starts one OIDC flow on the canonical origin
func (h *Handlers) initiate(w http.ResponseWriter, r *http.Request, returnTo string) {
	ctx, cancel := context.WithTimeout(r.Context(), exchangeTimeout)
	defer cancel()

	attempt, err := oidc.NewLoginAttempt()
	if err != nil {
		h.failLogin(w, r, LoginInfomaniak, "", err)
		return
	}

	authURL, err := h.oidcClient.AuthorizationURL(ctx, attempt)
	if err != nil {
		h.failLogin(w, r, LoginInfomaniak, "", err)
		return
	}

	sess := h.sessions.Load(r)
	sess.SetAttempt(attempt)
	if err := h.sessions.Commit(w, sess); err != nil {
		h.failLogin(w, r, LoginInfomaniak, "", err)
		return
	}
	if err := h.returnTo.Set(w, returnTo); err != nil {
		h.failLogin(w, r, LoginInfomaniak, "", err)
		return
	}

	redirectNoStore(w, r, authURL)
}

// CallbackHandler handles GET /auth/{provider}/callback
func (h *Handlers) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("provider") != InfomaniakProvider {
		http.NotFound(w, r)
		return
	}
	// a cross-tenant or non-document callback gets a 404, not a
	// redirect, to avoid confirming the endpoint to unintended callers.
	// No initiator-origin check here: the provider redirect is a
	// cross-site top-level navigation, the state check authenticates it.
	if !origin.IsDashboard(r, h.canonicalOrigin, h.cfg.IsProduction()) || !documentRequest(r) {
		http.NotFound(w, r)
		return
	}

	returnTo, ok := h.returnTo.Read(r)
	if !ok {
		returnTo = DashboardPath
	}

	sess := h.sessions.Load(r)
	attempt, ok := sess.Attempt()
	if !ok {
		h.failLogin(w, r, LoginInfomaniak, returnTo, ErrMissingAttempt)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), exchangeTimeout)
	defer cancel()

	profile, err := h.oidcClient.Exchange(ctx, r.URL, attempt)
	if err != nil {
		h.failLogin(w, r, LoginInfomaniak, returnTo, err)
		return
	}

	u, err := h.users.CreateOrLoginWithOAuth(ctx, oauthProfile(profile))
	if err != nil {
		h.failLogin(w, r, LoginInfomaniak, returnTo, err)
		return
	}

	sess.SetUser(session.User{
		UserID:    u.ID,
		CreatedAt: time.Now().UnixMilli(),
	})
	sess.ClearAttempt()
	if err := h.sessions.Commit(w, sess); err != nil {
		h.failLogin(w, r, LoginInfomaniak, returnTo, err)
		return
	}
	h.returnTo.Clear(w)

	log.LogInfoWithFields("auth", "User logged in", map[string]any{
		"login_method": LoginInfomaniak,
		"user_id":      u.ID,
	})

	redirectNoStore(w, r, returnTo)
}

// oauthProfile maps the normalized OIDC profile into the canonical shape
// the user repository expects. The display name falls back to the local
// part of the email when the provider supplies no name.
func oauthProfile(profile *oidc.Profile) user.OAuthProfile {
	displayName := profile.Name
	if displayName == "" {
		displayName, _, _ = strings.Cut(profile.Email, "@")
	}

	p := user.OAuthProfile{
		Provider:    InfomaniakProvider,
		DisplayName: displayName,
		Emails:      []user.Value{{Value: profile.Email}},
		Photos:      []user.Value{},
	}
	if profile.Picture != "" {
		p.Photos = append(p.Photos, user.Value{Value: profile.Picture})
	}
	return p
}

// failLogin converts any flow failure into a sanitized redirect to the
// login page. Full detail is logged server-side; the client only sees
// the method tag and a generic message.
func (h *Handlers) failLogin(w http.ResponseWriter, r *http.Request, method, returnTo string, err error) {
	log.LogErrorWithFields("auth", "Login failed", map[string]any{
		"error":        err.Error(),
		"login_method": method,
	})

	h.returnTo.Clear(w)
	redirectNoStore(w, r, loginErrorPath(method, sanitizedMessage(method, err), returnTo))
}

// redirectNoStore issues a 302 that no browser or intermediary may cache.
// Every redirect in the flow is single-use.
func redirectNoStore(w http.ResponseWriter, r *http.Request, target string) {
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, target, http.StatusFound)
}
