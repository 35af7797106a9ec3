package capture

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/domain/ending"
	"github.com/phrazzld/kanji-ink/internal/domain/scoring"
	"github.com/phrazzld/kanji-ink/internal/events"
	"github.com/phrazzld/kanji-ink/internal/ink"
	"github.com/phrazzld/kanji-ink/internal/task"
)

// strokeSlot tracks the scoring of one committed stroke. taskID ties a
// score to the stroke it was computed for.
type strokeSlot struct {
	taskID uuid.UUID
	score  *task.StrokeScore
}

// Session is one writing attempt. All methods are safe for concurrent use;
// sample handling only appends under the session lock.
type Session struct {
	id        uuid.UUID
	character string
	state     domain.MasteryState
	threshold float64
	reference [][]domain.Point
	createdAt time.Time

	queue   task.TaskQueueWriter
	emitter events.EventEmitter
	logger  *slog.Logger

	mu         sync.Mutex
	canvas     *ink.Canvas
	slots      []strokeSlot
	result     *domain.WritingResult
	feedback   *domain.HandwritingFeedback
	lastActive time.Time

	// attemptID names the last submission. It is reset whenever the strokes
	// change, so feedback for a discarded attempt has nothing to match.
	attemptID uuid.UUID
}

// StrokeState is the scoring status of one committed stroke.
type StrokeState struct {
	Index   int                 `json:"index"`
	Samples int                 `json:"samples"`
	Pending bool                `json:"pending"`
	Match   *domain.MatchResult `json:"match,omitempty"`
	Ending  *ending.Result      `json:"ending,omitempty"`
	Stats   *domain.StrokeStats `json:"stats,omitempty"`
}

// State is a point-in-time view of a session.
type State struct {
	ID              uuid.UUID                   `json:"id"`
	Character       string                      `json:"character"`
	MasteryState    domain.MasteryState         `json:"mastery_state"`
	CanvasWidth     int                         `json:"canvas_width"`
	CanvasHeight    int                         `json:"canvas_height"`
	ExpectedStrokes int                         `json:"expected_strokes"`
	Drawing         bool                        `json:"drawing"`
	Strokes         []StrokeState               `json:"strokes"`
	Result          *domain.WritingResult       `json:"result,omitempty"`
	Feedback        *domain.HandwritingFeedback `json:"feedback,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
	LastActive      time.Time                   `json:"last_active"`
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Character returns the character being written.
func (s *Session) Character() string {
	return s.character
}

// BeginStroke starts a stroke at sample. Only one stroke can be active; a
// second contact fails with ErrStrokeInProgress.
func (s *Session) BeginStroke(sample domain.StrokeSample) error {
	if err := sample.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.canvas.Drawing() {
		return ErrStrokeInProgress
	}
	s.canvas.Begin(sample.Clamped())
	return nil
}

// AppendSample adds samples to the active stroke. The batch is rejected
// as a whole if any sample is invalid.
func (s *Session) AppendSample(samples ...domain.StrokeSample) error {
	clamped := make([]domain.StrokeSample, len(samples))
	for i, sample := range samples {
		if err := sample.Validate(); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		clamped[i] = sample.Clamped()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if !s.canvas.Append(clamped...) {
		return ErrNoActiveStroke
	}
	return nil
}

// EndStroke commits the active stroke and returns its index. When the
// reference has a stroke at that index, scoring is queued on the worker
// pool; the score lands in the session when it completes. scored reports
// whether a scoring task was queued. A full queue leaves the stroke
// unscored and is only logged, since Submit scores the whole attempt anyway.
func (s *Session) EndStroke() (index int, scored bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	stroke, ok := s.canvas.Commit()
	if !ok {
		return 0, false, ErrNoActiveStroke
	}
	index = len(s.slots)
	s.slots = append(s.slots, strokeSlot{})
	s.resetAttempt()

	if index >= len(s.reference) {
		return index, false, nil
	}

	t := task.NewStrokeScoringTask(index, stroke, s.reference[index], s.threshold, s)
	if err := s.queue.Enqueue(t); err != nil {
		s.logger.Warn("stroke left unscored",
			slog.Int("stroke_index", index),
			slog.String("error", err.Error()))
		return index, false, nil
	}
	s.slots[index].taskID = t.ID()
	return index, true, nil
}

// CancelStroke discards the active stroke.
func (s *Session) CancelStroke() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if !s.canvas.Drawing() {
		return ErrNoActiveStroke
	}
	s.canvas.Discard()
	return nil
}

// Undo removes the last committed stroke together with its score.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.canvas.Drawing() {
		return ErrStrokeInProgress
	}
	if !s.canvas.Undo() {
		return ErrNothingToUndo
	}
	s.slots = s.slots[:len(s.slots)-1]
	s.resetAttempt()
	return nil
}

// Clear drops every stroke, score, result and the raster cache in one step.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.canvas.Clear()
	s.slots = nil
	s.resetAttempt()
}

// RecordStrokeScore implements task.ScoreRecorder. Scores for strokes that
// were undone or cleared since the task was queued are dropped.
func (s *Session) RecordStrokeScore(score task.StrokeScore) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if score.Index >= len(s.slots) || s.slots[score.Index].taskID != score.TaskID {
		s.logger.Debug("dropping stale stroke score", slog.Int("stroke_index", score.Index))
		return
	}
	s.slots[score.Index].score = &score
}

// SetFeedback stores assessor feedback computed for attemptID. It reports
// false and drops the feedback when attemptID is not the current
// submission.
func (s *Session) SetFeedback(attemptID uuid.UUID, feedback *domain.HandwritingFeedback) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attemptID == uuid.Nil || s.attemptID != attemptID {
		s.logger.Debug("dropping stale feedback", slog.String("attempt_id", attemptID.String()))
		return false
	}
	s.feedback = feedback
	return true
}

// AttemptID returns the identifier of the last submission, or uuid.Nil when
// the strokes have changed since.
func (s *Session) AttemptID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attemptID
}

// Strokes returns a copy of the committed strokes.
func (s *Session) Strokes() []domain.Stroke {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.Strokes()
}

// Submit validates the committed strokes against the reference as a whole
// and publishes the result as a writing result event. The pen must be up.
// An emitter failure is logged; the result is still returned.
func (s *Session) Submit(ctx context.Context) (domain.WritingResult, error) {
	s.mu.Lock()
	if s.canvas.Drawing() {
		s.mu.Unlock()
		return domain.WritingResult{}, ErrStrokeInProgress
	}
	s.touch()
	strokes := s.canvas.Strokes()
	result := scoring.ValidateWriting(domain.StrokePoints(strokes), s.reference, s.state)
	s.result = &result
	s.feedback = nil
	s.attemptID = uuid.New()
	attemptID := s.attemptID
	width, height := s.canvas.Size()
	s.mu.Unlock()

	event, err := events.NewWritingResultEvent(events.WritingResult{
		SessionID:       s.id,
		AttemptID:       attemptID,
		Character:       s.character,
		MasteryState:    s.state,
		Result:          result,
		Strokes:         strokes,
		ExpectedStrokes: len(s.reference),
		CanvasWidth:     float64(width),
		CanvasHeight:    float64(height),
	})
	if err != nil {
		return result, fmt.Errorf("failed to build writing result event: %w", err)
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish writing result",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
	}

	s.logger.Info("attempt submitted",
		slog.String("attempt_id", attemptID.String()),
		slog.Int("strokes", len(strokes)),
		slog.Float64("overall_similarity", result.OverallSimilarity),
		slog.Bool("is_correct", result.IsCorrect),
		slog.Int("quality", result.Quality))
	return result, nil
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	strokes := s.canvas.Strokes()
	states := make([]StrokeState, len(s.slots))
	for i, slot := range s.slots {
		st := StrokeState{
			Index:   i,
			Samples: strokes[i].Len(),
			Pending: slot.taskID != uuid.Nil && slot.score == nil,
		}
		if slot.score != nil {
			st.Match = &slot.score.Match
			st.Ending = &slot.score.Ending
			st.Stats = &slot.score.Stats
		}
		states[i] = st
	}

	width, height := s.canvas.Size()
	return State{
		ID:              s.id,
		Character:       s.character,
		MasteryState:    s.state,
		CanvasWidth:     width,
		CanvasHeight:    height,
		ExpectedStrokes: len(s.reference),
		Drawing:         s.canvas.Drawing(),
		Strokes:         states,
		Result:          s.result,
		Feedback:        s.feedback,
		CreatedAt:       s.createdAt,
		LastActive:      s.lastActive,
	}
}

// Frame renders the current canvas, scaled down to fit size by size when
// size is positive.
func (s *Session) Frame(size int) image.Image {
	s.mu.Lock()
	frame := s.canvas.Frame()
	s.mu.Unlock()
	return ink.Thumbnail(frame, size)
}

// EncodeFrame writes the current canvas as PNG at full size.
func (s *Session) EncodeFrame(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canvas.EncodeFrame(w)
}

// idleSince reports when the session was last used.
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// resetAttempt forgets the last submission and anything derived from it.
// It must be called with s.mu held.
func (s *Session) resetAttempt() {
	s.result = nil
	s.feedback = nil
	s.attemptID = uuid.Nil
}

// touch must be called with s.mu held.
func (s *Session) touch() {
	s.lastActive = time.Now()
}

var _ task.ScoreRecorder = (*Session)(nil)
