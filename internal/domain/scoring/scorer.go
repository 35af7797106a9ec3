package scoring

import (
	"math"

	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/domain/geometry"
)

const (
	// SampleCount is the number of points both strokes are resampled to
	// before comparison.
	SampleCount = 32

	// DefaultThreshold is the pass threshold for review material and for any
	// unrecognized mastery state.
	DefaultThreshold = 0.55
)

// thresholds maps each mastery state to its pass threshold. Newer material is
// judged more leniently.
var thresholds = map[domain.MasteryState]float64{
	domain.MasteryNew:       0.40,
	domain.MasteryLearning:  0.50,
	domain.MasteryReview:    DefaultThreshold,
	domain.MasteryGraduated: 0.65,
}

// ThresholdFor returns the similarity a stroke needs to pass for a character
// in the given mastery state.
func ThresholdFor(state domain.MasteryState) float64 {
	if t, ok := thresholds[state]; ok {
		return t
	}
	return DefaultThreshold
}

// MatchStroke compares one drawn stroke with one reference stroke.
//
// Parameters:
//   - drawn: the learner's stroke in canvas coordinates
//   - reference: the canonical stroke in content coordinates
//   - threshold: the similarity required to pass
//
// Returns:
//   - Similarity clamp(1 - meanDistance, 0, 1) after both strokes have been
//     normalized and resampled to SampleCount points, and whether it reaches
//     threshold. Strokes with fewer than 2 points score 0 and never pass.
func MatchStroke(drawn, reference []domain.Point, threshold float64) domain.MatchResult {
	if len(drawn) < 2 || len(reference) < 2 {
		return domain.MatchResult{}
	}

	d := meanDistance(
		geometry.NormalizeAndResample(drawn, SampleCount),
		geometry.NormalizeAndResample(reference, SampleCount),
	)
	similarity := domain.ClampUnit(1 - d)

	return domain.MatchResult{
		Similarity: similarity,
		Passed:     similarity >= threshold,
	}
}

// meanDistance averages the pointwise distance over the shorter sequence. Empty
// input counts as maximally distant.
func meanDistance(a, b []domain.Point) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 1
	}
	var total float64
	for i := 0; i < n; i++ {
		total += geometry.Distance(a[i], b[i])
	}
	d := total / float64(n)
	if math.IsNaN(d) {
		return 1
	}
	return d
}
