package auth

import (
	"context"
	"errors"
	"net/http"

	jsonwriter "github.com/sitesmith/builder-front/internal/json"
	"github.com/sitesmith/builder-front/internal/log"
	"github.com/sitesmith/builder-front/internal/user"
)

type contextKey int

const userContextKey contextKey = iota

// CurrentUser resolves the authenticated user from the session cookie
// and the user repository. A stale session pointing at a deleted user
// reads as unauthenticated.
func (h *Handlers) CurrentUser(r *http.Request) (user.User, bool) {
	sess := h.sessions.Load(r)
	su, ok := sess.User()
	if !ok {
		return user.User{}, false
	}

	u, err := h.users.GetByID(r.Context(), su.UserID)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			log.LogWarnWithFields("auth", "Failed to resolve session user", map[string]any{
				"error":   err.Error(),
				"user_id": su.UserID,
			})
		}
		return user.User{}, false
	}
	return u, true
}

// RequireUser guards an API handler. Unauthenticated requests get a 401.
func (h *Handlers) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := h.CurrentUser(r)
		if !ok {
			jsonwriter.WriteUnauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, u)))
	})
}

// UserFromContext returns the user injected by RequireUser
func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userContextKey).(user.User)
	return u, ok
}
