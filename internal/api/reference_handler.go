package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/kanji-ink/internal/api/shared"
	"github.com/phrazzld/kanji-ink/internal/capture"
	"github.com/phrazzld/kanji-ink/internal/domain/strokepath"
	"github.com/phrazzld/kanji-ink/internal/platform/logger"
	"github.com/phrazzld/kanji-ink/internal/store"
)

// ReferenceCache serves parsed reference sets and drops stale ones.
type ReferenceCache interface {
	capture.ReferenceSource
	Invalidate(character string)
}

// ReferenceHandler serves and imports reference strokes.
type ReferenceHandler struct {
	references ReferenceCache
	writer     store.ReferenceWriter
	logger     *slog.Logger
}

// NewReferenceHandler creates a ReferenceHandler. A nil writer makes imports
// fail with store.ErrReadOnly.
func NewReferenceHandler(references ReferenceCache, writer store.ReferenceWriter, logger *slog.Logger) *ReferenceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReferenceHandler{
		references: references,
		writer:     writer,
		logger:     logger.With(slog.String("component", "reference_handler")),
	}
}

// GetStrokes handles GET /api/characters/{character}/strokes.
func (h *ReferenceHandler) GetStrokes(w http.ResponseWriter, r *http.Request) {
	character, err := getPathCharacter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	set, err := h.references.Get(r.Context(), character)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReferenceResponse{
		Character:   character,
		StrokeCount: len(set),
		Strokes:     set,
	})
}

// PutStrokes handles PUT /api/characters/{character}/strokes. Every path must
// parse to at least one point; the cached set is dropped on success.
func (h *ReferenceHandler) PutStrokes(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	character, err := getPathCharacter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req ImportReferenceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	set := strokepath.ParseBatch(req.Paths)
	if len(set) != len(req.Paths) {
		HandleAPIError(w, r, fmt.Errorf("%w: stroke paths failed to parse", store.ErrInvalidEntity), "")
		return
	}
	for i, stroke := range set {
		if len(stroke) == 0 {
			HandleAPIError(w, r,
				fmt.Errorf("%w: path %d has no points", store.ErrInvalidEntity, i),
				fmt.Sprintf("Stroke path %d has no points", i+1))
			return
		}
	}

	if h.writer == nil {
		HandleAPIError(w, r, store.ErrReadOnly, "")
		return
	}
	if err := h.writer.ReplaceStrokePaths(r.Context(), character, req.Paths); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.references.Invalidate(character)

	log.Info("reference strokes replaced",
		slog.String("character", character),
		slog.Int("stroke_count", len(set)))

	shared.RespondWithJSON(w, r, http.StatusOK, ReferenceResponse{
		Character:   character,
		StrokeCount: len(set),
		Strokes:     set,
	})
}
