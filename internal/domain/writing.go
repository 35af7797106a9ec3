package domain

import (
	"fmt"
	"math"
	"strings"
)

// Point is a unitless 2D coordinate used inside the geometry algorithms.
// After normalization both axes live in the unit square.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StrokeSample is a single captured pointer or stylus sample.
type StrokeSample struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"pressure"`
	// Altitude is the stylus angle from the surface in radians.
	Altitude float64 `json:"altitude"`
	// Azimuth is the stylus heading around the contact point in radians.
	Azimuth float64 `json:"azimuth"`
	// Timestamp is the number of seconds elapsed since the stroke started.
	Timestamp float64 `json:"timestamp"`
}

// Validate reports an error when any field is NaN or infinite.
func (s StrokeSample) Validate() error {
	for name, v := range map[string]float64{
		"x":         s.X,
		"y":         s.Y,
		"pressure":  s.Pressure,
		"altitude":  s.Altitude,
		"azimuth":   s.Azimuth,
		"timestamp": s.Timestamp,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidSample, name)
		}
	}
	return nil
}

// Clamped returns a copy of the sample with pressure limited to [0,1].
func (s StrokeSample) Clamped() StrokeSample {
	s.Pressure = ClampUnit(s.Pressure)
	return s
}

// Point drops everything but the sample position.
func (s StrokeSample) Point() Point {
	return Point{X: s.X, Y: s.Y}
}

// Stroke is one continuous pen-down to pen-up sequence of samples.
// Strokes are ephemeral and never persisted.
type Stroke struct {
	Samples []StrokeSample `json:"samples"`
}

// Len returns the number of samples in the stroke.
func (s Stroke) Len() int {
	return len(s.Samples)
}

// Points projects the stroke onto plain 2D geometry.
func (s Stroke) Points() []Point {
	points := make([]Point, len(s.Samples))
	for i, sample := range s.Samples {
		points[i] = sample.Point()
	}
	return points
}

// StrokePoints projects every stroke of an attempt onto plain geometry,
// preserving stroke order.
func StrokePoints(strokes []Stroke) [][]Point {
	out := make([][]Point, len(strokes))
	for i, s := range strokes {
		out[i] = s.Points()
	}
	return out
}

// MasteryState is a character's spaced-repetition bucket. It is used only to
// select the scoring threshold.
type MasteryState string

// Known mastery states.
const (
	MasteryNew       MasteryState = "new"
	MasteryLearning  MasteryState = "learning"
	MasteryReview    MasteryState = "review"
	MasteryGraduated MasteryState = "graduated"
)

// ParseMasteryState converts a label into a MasteryState. Labels are matched
// case-insensitively; an empty label is treated as MasteryReview.
func ParseMasteryState(label string) (MasteryState, error) {
	switch state := MasteryState(strings.ToLower(strings.TrimSpace(label))); state {
	case "":
		return MasteryReview, nil
	case MasteryNew, MasteryLearning, MasteryReview, MasteryGraduated:
		return state, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMasteryState, label)
	}
}

// MatchResult is the outcome of comparing one drawn stroke to one reference stroke.
type MatchResult struct {
	Similarity float64 `json:"similarity"`
	Passed     bool    `json:"passed"`
}

// WritingResult is the outcome of one complete attempt at a character. Quality
// is the grade handed to the spaced-repetition scheduler.
type WritingResult struct {
	StrokeResults     []MatchResult `json:"stroke_results"`
	OverallSimilarity float64       `json:"overall_similarity"`
	IsCorrect         bool          `json:"is_correct"`
	Quality           int           `json:"quality"`
}

// ValidateCharacter checks that a character identifier is usable as a lookup key.
func ValidateCharacter(character string) error {
	if strings.TrimSpace(character) == "" {
		return ErrEmptyCharacter
	}
	return nil
}

// ClampUnit limits v to the closed interval [0,1].
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
