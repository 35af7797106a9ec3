package api

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/kanji-ink/internal/api/shared"
	"github.com/phrazzld/kanji-ink/internal/capture"
	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/ink"
	"github.com/phrazzld/kanji-ink/internal/platform/logger"
)

// SessionRegistry creates, finds and discards capture sessions.
type SessionRegistry interface {
	Create(ctx context.Context, opts capture.Options) (*capture.Session, error)
	Get(id uuid.UUID) (*capture.Session, error)
	Delete(id uuid.UUID) error
	Len() int
}

// SessionHandler exposes live capture sessions: strokes are streamed in as
// begin, samples and end calls, and the attempt is submitted once complete.
type SessionHandler struct {
	sessions SessionRegistry
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions SessionRegistry, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// Create handles POST /api/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	// Validate already accepted the label.
	state, _ := domain.ParseMasteryState(req.MasteryState)
	session, err := h.sessions.Create(r.Context(), capture.Options{
		Character:    req.Character,
		MasteryState: state,
		CanvasWidth:  req.CanvasWidth,
		CanvasHeight: req.CanvasHeight,
		ShowGuide:    req.ShowGuide,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.Header().Set("Location", "/api/sessions/"+session.ID().String())
	shared.RespondWithJSON(w, r, http.StatusCreated, session.State())
}

// Get handles GET /api/sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session.State())
}

// Delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.sessions.Delete(id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BeginStroke handles POST /api/sessions/{id}/strokes/begin.
func (h *SessionHandler) BeginStroke(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SampleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.respondEmpty(w, r, session.BeginStroke(req.Sample))
}

// AppendSamples handles POST /api/sessions/{id}/strokes/samples.
func (h *SessionHandler) AppendSamples(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SamplesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.respondEmpty(w, r, session.AppendSample(req.Samples...))
}

// EndStroke handles POST /api/sessions/{id}/strokes/end.
func (h *SessionHandler) EndStroke(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	index, scored, err := session.EndStroke()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, EndStrokeResponse{Index: index, Scored: scored})
}

// CancelStroke handles POST /api/sessions/{id}/strokes/cancel.
func (h *SessionHandler) CancelStroke(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondEmpty(w, r, session.CancelStroke())
}

// Undo handles POST /api/sessions/{id}/undo.
func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondEmpty(w, r, session.Undo())
}

// Clear handles DELETE /api/sessions/{id}/strokes.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.Clear()
	w.WriteHeader(http.StatusNoContent)
}

// Frame handles GET /api/sessions/{id}/frame.png. With ?size=N the frame is
// scaled down to fit an N by N square.
func (h *SessionHandler) Frame(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	size, err := getQueryInt(r, "size", 0, 1, capture.MaxCanvasSize)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var buf bytes.Buffer
	if err := ink.EncodePNG(&buf, session.Frame(size)); err != nil {
		HandleAPIError(w, r, err, "Failed to render frame")
		return
	}
	writePNG(w, buf.Bytes())
}

// Submit handles POST /api/sessions/{id}/submit.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	result, err := session.Submit(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("session submitted",
		slog.String("session_id", session.ID().String()),
		slog.Int("quality", result.Quality))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// session resolves the {id} path parameter, writing an error response when
// it is malformed or unknown.
func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*capture.Session, bool) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	session, err := h.sessions.Get(id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	return session, true
}

func (h *SessionHandler) respondEmpty(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
