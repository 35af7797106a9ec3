package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

// Assessor produces qualitative feedback for a writing attempt.
type Assessor interface {
	Assess(ctx context.Context, attempt domain.Attempt) (*domain.HandwritingFeedback, error)
}

// FeedbackRecorder stores assessor feedback for a session. attemptID names
// the submission the feedback was computed for, so a recorder can drop
// feedback for an attempt that has since been discarded.
type FeedbackRecorder interface {
	RecordFeedback(sessionID, attemptID uuid.UUID, feedback *domain.HandwritingFeedback)
}

// AssessmentTask sends one submitted attempt to the assessor and records
// the feedback.
type AssessmentTask struct {
	baseTask

	sessionID uuid.UUID
	attemptID uuid.UUID
	attempt   domain.Attempt
	assessor  Assessor
	recorder  FeedbackRecorder
}

// NewAssessmentTask creates an assessment task for a session's attempt.
func NewAssessmentTask(
	sessionID uuid.UUID,
	attemptID uuid.UUID,
	attempt domain.Attempt,
	assessor Assessor,
	recorder FeedbackRecorder,
) *AssessmentTask {
	t := &AssessmentTask{
		sessionID: sessionID,
		attemptID: attemptID,
		attempt:   attempt,
		assessor:  assessor,
		recorder:  recorder,
	}
	t.init(TaskTypeAssessment)
	return t
}

// Payload returns the session and character being assessed as JSON.
func (t *AssessmentTask) Payload() []byte {
	payload, _ := json.Marshal(struct {
		SessionID uuid.UUID `json:"session_id"`
		AttemptID uuid.UUID `json:"attempt_id"`
		Character string    `json:"character"`
		Strokes   int       `json:"strokes"`
	}{t.sessionID, t.attemptID, t.attempt.Character, len(t.attempt.Strokes)})
	return payload
}

// Execute calls the assessor and records its feedback.
func (t *AssessmentTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	feedback, err := t.assessor.Assess(ctx, t.attempt)
	if err != nil {
		return t.finish(fmt.Errorf("assessment of session %s failed: %w", t.sessionID, err))
	}
	t.recorder.RecordFeedback(t.sessionID, t.attemptID, feedback)
	return t.finish(nil)
}

var _ Task = (*AssessmentTask)(nil)
