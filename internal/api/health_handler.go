package api

import (
	"net/http"
	"time"

	"github.com/phrazzld/kanji-ink/internal/api/shared"
)

// HealthHandler reports liveness along with a few gauges.
type HealthHandler struct {
	sessions        interface{ Len() int }
	assessorEnabled bool
}

// NewHealthHandler creates a HealthHandler. sessions may be nil.
func NewHealthHandler(sessions interface{ Len() int }, assessorEnabled bool) *HealthHandler {
	return &HealthHandler{sessions: sessions, assessorEnabled: assessorEnabled}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Assessor:  h.assessorEnabled,
		Timestamp: time.Now().UTC(),
	}
	if h.sessions != nil {
		resp.Sessions = h.sessions.Len()
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
