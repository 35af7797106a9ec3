package ending

import (
	"fmt"
	"math"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

// Type is a stroke ending classification.
type Type string

// Stroke ending types.
const (
	Tome    Type = "tome"
	Hane    Type = "hane"
	Harai   Type = "harai"
	Unknown Type = "unknown"
)

const (
	// MinSamples is the shortest stroke that can be classified.
	MinSamples = 6

	// endingFraction is the trailing share of samples that is analyzed.
	endingFraction = 0.20

	// minEndingSamples is the floor on the analyzed window.
	minEndingSamples = 4

	// MinConfidence is the best score below which the ending is Unknown.
	MinConfidence = 0.25
)

// Result is the classification of one stroke ending.
type Result struct {
	Type       Type    `json:"type"`
	Confidence float64 `json:"confidence"`
	// Profile is a short human readable description of the pressure shape.
	Profile string `json:"profile"`
}

// Detect classifies the ending of a stroke. Strokes shorter than MinSamples
// and endings whose best score is under MinConfidence come back as Unknown.
func Detect(stroke domain.Stroke) Result {
	if stroke.Len() < MinSamples {
		return Result{Type: Unknown, Profile: "insufficient data"}
	}

	window := max(minEndingSamples, int(float64(stroke.Len())*endingFraction))
	tail := stroke.Samples[stroke.Len()-window:]

	candidates := []Result{scoreTome(tail), scoreHane(tail), scoreHarai(tail)}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}

	if best.Confidence < MinConfidence {
		return Result{Type: Unknown, Confidence: best.Confidence, Profile: "ambiguous ending"}
	}
	return best
}

// scoreTome rewards steady pressure at or above 0.3 with velocity decaying
// towards zero and no change of direction.
func scoreTome(samples []domain.StrokeSample) Result {
	pressures := pressuresOf(samples)
	velocities := velocitiesOf(samples)

	avgPressure := mean(pressures)
	pressureAbove := 1.0
	if avgPressure < 0.3 {
		pressureAbove = avgPressure / 0.3
	}

	stability := math.Max(0, 1-variance(pressures)*10)

	decay := 1.0
	if avgV := mean(velocities); avgV > 0.01 {
		decay = math.Max(0, 1-last(velocities)/avgV)
	}

	score := pressureAbove*0.3 + stability*0.3 + decay*0.25 + directionStability(samples)*0.15
	return Result{
		Type:       Tome,
		Confidence: score,
		Profile:    fmt.Sprintf("steady→stop (p=%.2f, v_decay=%.2f)", avgPressure, decay),
	}
}

// scoreHane looks for a pressure dip in the body of the window followed by a
// spike in the tip, a late velocity peak and a distinct turn.
func scoreHane(samples []domain.StrokeSample) Result {
	pressures := pressuresOf(samples)
	velocities := velocitiesOf(samples)

	split := max(1, len(pressures)*3/5)
	bodyMin := minOf(pressures[:split])
	tipMax := maxOf(pressures[split:])

	hasDip := bodyMin < 0.25
	hasSpike := tipMax > bodyMin+0.15

	var dipSpike float64
	switch {
	case hasDip && hasSpike:
		dipSpike = math.Min(1, (tipMax-bodyMin)/0.3)
	case hasSpike:
		dipSpike = 0.4 * math.Min(1, (tipMax-bodyMin)/0.2)
	}

	var velocitySpike float64
	if len(velocities) >= 2 {
		if maxV := maxOf(velocities); maxV > 0.01 {
			velocitySpike = maxOf(velocities[len(velocities)-2:]) / maxV
		}
	}

	score := dipSpike*0.45 + velocitySpike*0.30 + endDirectionChange(samples)*0.25
	return Result{
		Type:       Hane,
		Confidence: score,
		Profile:    fmt.Sprintf("drop→spike (dip=%.2f, spike=%.2f)", bodyMin, tipMax),
	}
}

// scoreHarai rewards pressure that falls steadily to near zero while the
// brush keeps its speed and heading.
func scoreHarai(samples []domain.StrokeSample) Result {
	pressures := pressuresOf(samples)
	velocities := velocitiesOf(samples)

	decreasing := 0
	for i := 1; i < len(pressures); i++ {
		if pressures[i] <= pressures[i-1]+0.02 {
			decreasing++
		}
	}
	monotonic := float64(decreasing) / float64(max(1, len(pressures)-1))

	finalPressure := last(pressures)
	taper := 1.0
	if finalPressure >= 0.1 {
		taper = math.Max(0, 1-(finalPressure-0.1)/0.3)
	}

	gradients := make([]float64, 0, len(pressures))
	for i := 1; i < len(pressures); i++ {
		gradients = append(gradients, pressures[i]-pressures[i-1])
	}
	smoothness := math.Max(0, 1-variance(gradients)*50)

	maintained := 0.5
	if len(velocities) >= 2 {
		half := len(velocities) / 2
		if first := mean(velocities[:half]); first > 0.01 {
			maintained = math.Min(1, mean(velocities[len(velocities)-half:])/first)
		}
	}

	score := monotonic*0.25 + taper*0.25 + smoothness*0.20 + maintained*0.15 + directionStability(samples)*0.15
	return Result{
		Type:       Harai,
		Confidence: score,
		Profile:    fmt.Sprintf("gradual→taper (final_p=%.2f, mono=%.0f%%)", finalPressure, monotonic*100),
	}
}
