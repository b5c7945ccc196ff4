package dashboard

import (
	"net/http"

	"github.com/sitesmith/builder-front/internal/auth"
	jsonwriter "github.com/sitesmith/builder-front/internal/json"
	"github.com/sitesmith/builder-front/internal/log"
)

// Handlers serves the dashboard API
type Handlers struct {
	projects *Projects
}

// NewHandlers creates the dashboard API handlers
func NewHandlers(projects *Projects) *Handlers {
	return &Handlers{projects: projects}
}

// ListProjectsHandler handles GET /api/projects. The caller is resolved
// from the request context set by the auth middleware.
func (h *Handlers) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		jsonwriter.WriteUnauthorized(w, "Authentication required")
		return
	}

	projects, err := h.projects.List(r.Context(), u.ID)
	if err != nil {
		log.LogErrorWithFields("dashboard", "Failed to list projects", map[string]any{
			"error":   err.Error(),
			"user_id": u.ID,
		})
		jsonwriter.WriteInternalServerError(w, "Failed to list projects")
		return
	}

	jsonwriter.Write(w, projects)
}
