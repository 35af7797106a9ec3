package events

import (
	"context"
	"fmt"
	"log/slog"
)

// LoggingHandler records every submitted writing result in the log.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a handler that logs writing results.
func NewLoggingHandler(logger *slog.Logger) *LoggingHandler {
	return &LoggingHandler{
		logger: logger.With("component", "writing_result_logger"),
	}
}

// HandleEvent logs writing result events and ignores everything else.
func (h *LoggingHandler) HandleEvent(ctx context.Context, event *Event) error {
	if event.Type != TypeWritingResult {
		return nil
	}

	var payload WritingResult
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal writing result: %w", err)
	}

	h.logger.InfoContext(ctx, "writing result",
		slog.String("event_id", event.ID.String()),
		slog.String("session_id", payload.SessionID.String()),
		slog.String("character", payload.Character),
		slog.String("mastery_state", string(payload.MasteryState)),
		slog.Int("strokes", len(payload.Strokes)),
		slog.Float64("overall_similarity", payload.Result.OverallSimilarity),
		slog.Bool("is_correct", payload.Result.IsCorrect),
		slog.Int("quality", payload.Result.Quality))
	return nil
}

var _ EventHandler = (*LoggingHandler)(nil)
