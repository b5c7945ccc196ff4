package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/sitesmith/builder-front/internal/log"
	"github.com/sitesmith/builder-front/internal/origin"
	"github.com/sitesmith/builder-front/internal/session"
)

// DevLoginHandler handles POST /auth/dev, the development-only secret
// strategy. It bypasses OIDC entirely and must stay disabled outside
// development: without the explicit flag the endpoint does not exist.
//
// The form field "secret" carries "secret" or "secret:email"; the email
// defaults to the configured development address.
func (h *Handlers) DevLoginHandler(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.DevLogin {
		http.NotFound(w, r)
		return
	}
	if !origin.IsDashboard(r, h.canonicalOrigin, h.cfg.IsProduction()) {
		http.NotFound(w, r)
		return
	}
	if !sameOriginRequest(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	returnTo := r.URL.Query().Get("returnTo")
	if returnTo == "" {
		returnTo = DashboardPath
	}

	secretValue := r.PostFormValue("secret")
	if secretValue == "" {
		h.failLogin(w, r, LoginDev, returnTo, ErrInvalidCredentials)
		return
	}

	secret, email, found := strings.Cut(secretValue, ":")
	if !found || email == "" {
		email = h.cfg.DefaultDevEmail
	}

	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.AuthSecret)) != 1 {
		h.failLogin(w, r, LoginDev, returnTo, ErrInvalidCredentials)
		return
	}

	u, err := h.users.CreateOrLoginWithDev(r.Context(), email)
	if err != nil {
		h.failLogin(w, r, LoginDev, returnTo, err)
		return
	}

	sess := h.sessions.Load(r)
	sess.SetUser(session.User{
		UserID:    u.ID,
		CreatedAt: time.Now().UnixMilli(),
	})
	sess.ClearAttempt()
	if err := h.sessions.Commit(w, sess); err != nil {
		h.failLogin(w, r, LoginDev, returnTo, err)
		return
	}

	log.LogInfoWithFields("auth", "User logged in", map[string]any{
		"login_method": LoginDev,
		"user_id":      u.ID,
	})

	redirectNoStore(w, r, returnTo)
}
