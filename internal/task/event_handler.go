package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/events"
)

// AssessmentEventHandler implements the events.EventHandler interface.
// It turns writing result events into assessment tasks and queues them, so
// the slow assessor call never runs on the submitting request.
type AssessmentEventHandler struct {
	assessor Assessor
	recorder FeedbackRecorder
	queue    TaskQueueWriter
	logger   *slog.Logger
}

// NewAssessmentEventHandler creates a handler that queues assessment tasks
// for writing results.
func NewAssessmentEventHandler(
	assessor Assessor,
	recorder FeedbackRecorder,
	queue TaskQueueWriter,
	logger *slog.Logger,
) *AssessmentEventHandler {
	return &AssessmentEventHandler{
		assessor: assessor,
		recorder: recorder,
		queue:    queue,
		logger:   logger.With("component", "assessment_event_handler"),
	}
}

// HandleEvent queues an assessment task for a writing result event.
// Events of other types and attempts without strokes are ignored.
func (h *AssessmentEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeWritingResult {
		h.logger.Debug("ignoring event with unsupported type",
			slog.String("event_type", event.Type),
			slog.String("event_id", event.ID.String()))
		return nil
	}

	var payload events.WritingResult
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if len(payload.Strokes) == 0 {
		return nil
	}

	task := NewAssessmentTask(payload.SessionID, payload.AttemptID, domain.Attempt{
		Character:       payload.Character,
		ExpectedStrokes: payload.ExpectedStrokes,
		Strokes:         payload.Strokes,
		CanvasWidth:     payload.CanvasWidth,
		CanvasHeight:    payload.CanvasHeight,
	}, h.assessor, h.recorder)

	if err := h.queue.Enqueue(task); err != nil {
		h.logger.Error("failed to queue assessment",
			slog.String("error", err.Error()),
			slog.String("session_id", payload.SessionID.String()),
			slog.String("event_id", event.ID.String()))
		return fmt.Errorf("failed to queue assessment: %w", err)
	}

	h.logger.Info("assessment queued",
		slog.String("task_id", task.ID().String()),
		slog.String("session_id", payload.SessionID.String()),
		slog.String("event_id", event.ID.String()))
	return nil
}

var _ events.EventHandler = (*AssessmentEventHandler)(nil)
