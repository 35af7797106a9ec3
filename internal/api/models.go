package api

import (
	"fmt"
	"time"

	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/ink"
)

// Request and response bodies of the HTTP API.

const (
	// maxStrokes bounds the strokes of one attempt.
	maxStrokes = 64
	// maxBatchAttempts bounds the attempts of one batch validation.
	maxBatchAttempts = 50
)

// WritingRequest is one completed attempt at a character.
type WritingRequest struct {
	Character    string                  `json:"character"     validate:"required,max=32"`
	MasteryState string                  `json:"mastery_state"`
	Strokes      [][]domain.StrokeSample `json:"strokes"       validate:"max=64,dive,max=4096"`
}

// Validate checks what struct tags cannot express: the mastery state label
// and finite sample values.
func (req *WritingRequest) Validate() error {
	if _, err := domain.ParseMasteryState(req.MasteryState); err != nil {
		return err
	}
	if err := domain.ValidateCharacter(req.Character); err != nil {
		return err
	}
	return validateSamples(req.Strokes)
}

// BatchValidateRequest carries several attempts validated concurrently.
type BatchValidateRequest struct {
	Attempts []WritingRequest `json:"attempts" validate:"required,min=1,max=50,dive"`
}

// Validate applies WritingRequest.Validate to every attempt.
func (req *BatchValidateRequest) Validate() error {
	for i := range req.Attempts {
		if err := req.Attempts[i].Validate(); err != nil {
			return fmt.Errorf("attempts[%d]: %w", i, err)
		}
	}
	return nil
}

// BatchValidateItem is the outcome of one attempt in a batch. Exactly one of
// Result and Error is set.
type BatchValidateItem struct {
	Index     int                   `json:"index"`
	Character string                `json:"character"`
	Result    *domain.WritingResult `json:"result,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// BatchValidateResponse lists batch outcomes in request order.
type BatchValidateResponse struct {
	Results []BatchValidateItem `json:"results"`
}

// Export styles.
const (
	StyleColor       = "color"
	StyleCalligraphy = "calligraphy"
)

// ExportRequest describes strokes to render. Canvas dimensions are those of
// the surface the strokes were captured on; zero selects the default
// capture canvas size.
type ExportRequest struct {
	Strokes      [][]domain.StrokeSample `json:"strokes"       validate:"required,min=1,max=64,dive,max=4096"`
	CanvasWidth  float64                 `json:"canvas_width"  validate:"gte=0,lte=4096"`
	CanvasHeight float64                 `json:"canvas_height" validate:"gte=0,lte=4096"`
	Style        string                  `json:"style"         validate:"omitempty,oneof=color calligraphy"`
}

// Validate rejects non-finite samples.
func (req *ExportRequest) Validate() error {
	return validateSamples(req.Strokes)
}

// ExportBase64Response is the base64 variant of an export.
type ExportBase64Response struct {
	ImageBase64 string            `json:"image_base64"`
	Legend      []ink.LegendEntry `json:"legend,omitempty"`
}

// AssessRequest is an attempt sent to the external assessor. When
// ExpectedStrokes is zero it is taken from the reference set, if any.
type AssessRequest struct {
	Character       string                  `json:"character"        validate:"required,max=32"`
	ExpectedStrokes int                     `json:"expected_strokes" validate:"gte=0,lte=64"`
	Strokes         [][]domain.StrokeSample `json:"strokes"          validate:"required,min=1,max=64,dive,max=4096"`
	CanvasWidth     float64                 `json:"canvas_width"     validate:"gte=0,lte=4096"`
	CanvasHeight    float64                 `json:"canvas_height"    validate:"gte=0,lte=4096"`
}

// Validate rejects blank characters and non-finite samples.
func (req *AssessRequest) Validate() error {
	if err := domain.ValidateCharacter(req.Character); err != nil {
		return err
	}
	return validateSamples(req.Strokes)
}

// AssessResponse wraps the assessor feedback.
type AssessResponse struct {
	Character string                      `json:"character"`
	Feedback  *domain.HandwritingFeedback `json:"feedback"`
}

// ReferenceResponse is the parsed reference set of a character.
type ReferenceResponse struct {
	Character   string           `json:"character"`
	StrokeCount int              `json:"stroke_count"`
	Strokes     [][]domain.Point `json:"strokes"`
}

// ImportReferenceRequest replaces the stroke paths of a character.
type ImportReferenceRequest struct {
	Paths []string `json:"paths" validate:"required,min=1,max=64,dive,required,max=8192"`
}

// CreateSessionRequest starts a capture session.
type CreateSessionRequest struct {
	Character    string `json:"character"     validate:"required,max=32"`
	MasteryState string `json:"mastery_state"`
	CanvasWidth  int    `json:"canvas_width"  validate:"gte=0,lte=4096"`
	CanvasHeight int    `json:"canvas_height" validate:"gte=0,lte=4096"`
	ShowGuide    bool   `json:"show_guide"`
}

// Validate checks the mastery state label.
func (req *CreateSessionRequest) Validate() error {
	_, err := domain.ParseMasteryState(req.MasteryState)
	return err
}

// SampleRequest carries the first sample of a stroke.
type SampleRequest struct {
	Sample domain.StrokeSample `json:"sample"`
}

// Validate rejects non-finite values.
func (req *SampleRequest) Validate() error {
	return req.Sample.Validate()
}

// SamplesRequest carries a batch of samples for the active stroke.
type SamplesRequest struct {
	Samples []domain.StrokeSample `json:"samples" validate:"required,min=1,max=4096"`
}

// Validate rejects non-finite values.
func (req *SamplesRequest) Validate() error {
	return validateSamples([][]domain.StrokeSample{req.Samples})
}

// EndStrokeResponse reports the index of the committed stroke. Scored is
// true when a scoring task was queued for it, and false for strokes beyond
// the reference count or when the task queue is full.
type EndStrokeResponse struct {
	Index  int  `json:"index"`
	Scored bool `json:"scored"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Sessions  int       `json:"sessions"`
	Assessor  bool      `json:"assessor"`
	Timestamp time.Time `json:"timestamp"`
}

func validateSamples(strokes [][]domain.StrokeSample) error {
	for i, stroke := range strokes {
		for j, s := range stroke {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("strokes[%d][%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

// toStrokes converts request samples into strokes with pressure clamped.
func toStrokes(raw [][]domain.StrokeSample) []domain.Stroke {
	strokes := make([]domain.Stroke, len(raw))
	for i, samples := range raw {
		clamped := make([]domain.StrokeSample, len(samples))
		for j, s := range samples {
			clamped[j] = s.Clamped()
		}
		strokes[i] = domain.Stroke{Samples: clamped}
	}
	return strokes
}
