package dashboard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListProjectsHandler_NoUserInContext(t *testing.T) {
	h := NewHandlers(NewProjects(nil))

	w := httptest.NewRecorder()
	h.ListProjectsHandler(w, httptest.NewRequest("GET", "/api/projects", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
