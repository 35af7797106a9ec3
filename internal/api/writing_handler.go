package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/kanji-ink/internal/api/shared"
	"github.com/phrazzld/kanji-ink/internal/capture"
	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/domain/scoring"
	"github.com/phrazzld/kanji-ink/internal/ink"
	"github.com/phrazzld/kanji-ink/internal/platform/logger"
	"github.com/phrazzld/kanji-ink/internal/store"
	"github.com/phrazzld/kanji-ink/internal/task"
)

// batchConcurrency bounds the attempts of a batch scored at once.
const batchConcurrency = 8

// Export output formats selected with ?format=.
const (
	formatPNG    = "png"
	formatBase64 = "base64"
)

// WritingHandler scores, renders and assesses complete attempts that were
// captured client-side.
type WritingHandler struct {
	references capture.ReferenceSource
	renderer   *ink.ExportRenderer
	assessor   task.Assessor
	logger     *slog.Logger
}

// NewWritingHandler creates a WritingHandler. A nil assessor disables the
// assess endpoint.
func NewWritingHandler(
	references capture.ReferenceSource,
	renderer *ink.ExportRenderer,
	assessor task.Assessor,
	logger *slog.Logger,
) *WritingHandler {
	if renderer == nil {
		renderer = ink.NewExportRenderer(ink.ExportSize)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WritingHandler{
		references: references,
		renderer:   renderer,
		assessor:   assessor,
		logger:     logger.With(slog.String("component", "writing_handler")),
	}
}

// Validate handles POST /api/writing/validate.
func (h *WritingHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req WritingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.validate(r.Context(), &req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("attempt validated",
		slog.String("character", req.Character),
		slog.Int("strokes", len(req.Strokes)),
		slog.Bool("is_correct", result.IsCorrect),
		slog.Int("quality", result.Quality))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// ValidateBatch handles POST /api/writing/validate/batch. Attempts are scored
// concurrently; an attempt without a reference reports an item error while
// the others still succeed. Any other failure aborts the whole batch.
func (h *WritingHandler) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchValidateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	results := make([]BatchValidateItem, len(req.Attempts))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(batchConcurrency)

	for i := range req.Attempts {
		attempt := &req.Attempts[i]
		g.Go(func() error {
			item := BatchValidateItem{Index: i, Character: attempt.Character}
			result, err := h.validate(ctx, attempt)
			switch {
			case err == nil:
				item.Result = &result
			case errors.Is(err, store.ErrNotFound):
				item.Error = GetSafeErrorMessage(err)
			default:
				return fmt.Errorf("attempt %d: %w", i, err)
			}
			results[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, BatchValidateResponse{Results: results})
}

func (h *WritingHandler) validate(ctx context.Context, req *WritingRequest) (domain.WritingResult, error) {
	state, err := domain.ParseMasteryState(req.MasteryState)
	if err != nil {
		return domain.WritingResult{}, err
	}
	reference, err := h.references.Get(ctx, req.Character)
	if err != nil {
		return domain.WritingResult{}, err
	}
	drawn := domain.StrokePoints(toStrokes(req.Strokes))
	return scoring.ValidateWriting(drawn, reference, state), nil
}

// Export handles POST /api/writing/export. The response is a PNG, or with
// ?format=base64 a JSON body carrying the encoded PNG and, for the color
// style, the stroke legend.
func (h *WritingHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatPNG
	}
	if format != formatPNG && format != formatBase64 {
		HandleAPIError(w, r, fmt.Errorf("%w: unknown format %q", ErrInvalidRequest, format),
			"Invalid format: must be one of png base64")
		return
	}

	var req ExportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	strokes := toStrokes(req.Strokes)
	width, height := canvasOrDefault(req.CanvasWidth), canvasOrDefault(req.CanvasHeight)

	var (
		buf    bytes.Buffer
		legend []ink.LegendEntry
		err    error
	)
	if req.Style == StyleCalligraphy {
		err = ink.EncodePNG(&buf, ink.RenderCalligraphy(strokes, width, height, h.renderer.Size()))
	} else {
		err = h.renderer.RenderPNG(&buf, strokes, width, height)
		legend = ink.Legend(len(strokes))
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to render export")
		return
	}

	if format == formatBase64 {
		shared.RespondWithJSON(w, r, http.StatusOK, ExportBase64Response{
			ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
			Legend:      legend,
		})
		return
	}
	writePNG(w, buf.Bytes())
}

// Assess handles POST /api/writing/assess. It calls the assessor
// synchronously and fails with 503 when none is configured.
func (h *WritingHandler) Assess(w http.ResponseWriter, r *http.Request) {
	if h.assessor == nil {
		HandleAPIError(w, r, ErrAssessorDisabled, "")
		return
	}

	var req AssessRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	expected := req.ExpectedStrokes
	if expected == 0 {
		reference, err := h.references.Get(r.Context(), req.Character)
		switch {
		case err == nil:
			expected = len(reference)
		case !errors.Is(err, store.ErrNotFound):
			HandleAPIError(w, r, err, "")
			return
		}
	}

	attempt := domain.Attempt{
		Character:       req.Character,
		ExpectedStrokes: expected,
		Strokes:         toStrokes(req.Strokes),
		CanvasWidth:     canvasOrDefault(req.CanvasWidth),
		CanvasHeight:    canvasOrDefault(req.CanvasHeight),
	}
	feedback, err := h.assessor.Assess(r.Context(), attempt)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AssessResponse{
		Character: req.Character,
		Feedback:  feedback,
	})
}

func canvasOrDefault(v float64) float64 {
	if v <= 0 {
		return capture.DefaultCanvasSize
	}
	return v
}
