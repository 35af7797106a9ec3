package ink

import (
	"math"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

// Brush parameters for the live fude (筆) brush.
const (
	// MinWidth is the stamp width at zero pressure: a visible hairline.
	MinWidth = 1.0

	// MaxWidth is the stamp width at full pressure.
	MaxWidth = 24.0

	// PressureCurve is the exponent of the pressure to width curve. Values
	// above 1 spend more of the width range on light pressure.
	PressureCurve = 1.8

	// SpacingFactor is the distance between stamps as a fraction of width.
	SpacingFactor = 0.15

	// MinSpacing is the floor on stamp spacing in pixels.
	MinSpacing = 0.5

	// MinSegmentLength is the shortest segment that gets stamped; shorter
	// segments are skipped.
	MinSegmentLength = 0.1

	// FlatRatio is the stamp height to width ratio when the stylus lies flat.
	FlatRatio = 0.3
)

// WidthForPressure maps pressure to stamp width. The mapping is strictly
// increasing on [0,1]; pressure outside that range is clamped.
func WidthForPressure(pressure float64) float64 {
	return MinWidth + (MaxWidth-MinWidth)*curve(pressure)
}

// AlphaForPressure maps pressure to stamp opacity. Light pressure falls in a
// translucent dry-brush band (0.3 to 0.6); above the 0.2 knee ink is close to
// opaque (0.6 to 1.0).
func AlphaForPressure(pressure float64) float64 {
	p := domain.ClampUnit(pressure)
	if p < 0.2 {
		return 0.3 + p*1.5
	}
	return 0.6 + (p-0.2)*0.5
}

// StampSpacing returns the distance between consecutive stamps for a brush
// of the given width.
func StampSpacing(width float64) float64 {
	return math.Max(width*SpacingFactor, MinSpacing)
}

// StampSteps returns how many intervals a segment of the given length is
// divided into, so that visual density stays roughly constant whatever the
// brush size. It is at least 1.
func StampSteps(distance, width float64) int {
	return max(int(distance/StampSpacing(width)), 1)
}

// HeightRatio returns the stamp height as a fraction of its width for a
// stylus altitude in radians. An upright stylus gives a round stamp, a flat
// one an elongated stamp. Non-positive altitudes come from devices without
// tilt sensing and are treated as upright.
func HeightRatio(altitude float64) float64 {
	if altitude <= 0 {
		return 1
	}
	norm := domain.ClampUnit(altitude / (math.Pi / 2))
	return FlatRatio + (1-FlatRatio)*norm
}

// curve applies the perceptual pressure curve to a clamped pressure.
func curve(pressure float64) float64 {
	return math.Pow(domain.ClampUnit(pressure), 1/PressureCurve)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// lerpAngle interpolates between two headings along the shorter arc.
func lerpAngle(a, b, t float64) float64 {
	diff := b - a
	for diff > math.Pi {
		diff -= 2 * math.Pi
	}
	for diff < -math.Pi {
		diff += 2 * math.Pi
	}
	return a + diff*t
}
