package task

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/domain/ending"
	"github.com/phrazzld/kanji-ink/internal/domain/scoring"
)

// StrokeScore is the outcome of scoring one completed stroke.
type StrokeScore struct {
	// TaskID identifies the scoring run; recorders use it to drop results
	// for strokes that were undone or cleared while the task was queued.
	TaskID uuid.UUID          `json:"task_id"`
	Index  int                `json:"index"`
	Match  domain.MatchResult `json:"match"`
	Ending ending.Result      `json:"ending"`
	Stats  domain.StrokeStats `json:"stats"`
}

// ScoreRecorder receives stroke scores from the workers.
type ScoreRecorder interface {
	RecordStrokeScore(score StrokeScore)
}

// StrokeScoringTask matches one drawn stroke against its reference stroke
// and classifies how the stroke ends.
type StrokeScoringTask struct {
	baseTask

	index     int
	stroke    domain.Stroke
	reference []domain.Point
	threshold float64
	recorder  ScoreRecorder
}

// NewStrokeScoringTask creates a task scoring the stroke at index. The stroke
// is not copied; callers hand over a stroke they no longer mutate.
func NewStrokeScoringTask(
	index int,
	stroke domain.Stroke,
	reference []domain.Point,
	threshold float64,
	recorder ScoreRecorder,
) *StrokeScoringTask {
	t := &StrokeScoringTask{
		index:     index,
		stroke:    stroke,
		reference: reference,
		threshold: threshold,
		recorder:  recorder,
	}
	t.init(TaskTypeStrokeScoring)
	return t
}

// Payload returns the stroke index and sample count as JSON.
func (t *StrokeScoringTask) Payload() []byte {
	payload, _ := json.Marshal(struct {
		Index   int `json:"index"`
		Samples int `json:"samples"`
	}{t.index, t.stroke.Len()})
	return payload
}

// Execute scores the stroke and hands the result to the recorder.
func (t *StrokeScoringTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	if err := ctx.Err(); err != nil {
		return t.finish(err)
	}

	score := StrokeScore{
		TaskID: t.id,
		Index:  t.index,
		Match:  scoring.MatchStroke(t.stroke.Points(), t.reference, t.threshold),
		Ending: ending.Detect(t.stroke),
		Stats:  domain.StatsOf(t.stroke),
	}
	t.recorder.RecordStrokeScore(score)
	return t.finish(nil)
}

var _ Task = (*StrokeScoringTask)(nil)
