package ink

import (
	"math"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

// Ink pooling parameters. Where the brush rests or moves slowly, ink soaks
// into the paper and leaves a darker puddle.
const (
	// PoolVelocityThreshold is the speed in px/s below which ink pools.
	PoolVelocityThreshold = 50.0

	// PoolRadiusMultiplier enlarges pool stamps relative to the brush width.
	PoolRadiusMultiplier = 1.35

	// PoolAlphaBoost darkens pool stamps relative to plain pressure.
	PoolAlphaBoost = 0.15

	// poolEdgeSamples is how many samples at each end of a stroke can pool.
	poolEdgeSamples = 5

	poolMinWidth = 1.5
	poolMaxWidth = 32.0
)

// PoolStamp is one radial ink puddle.
type PoolStamp struct {
	X, Y   float64
	Radius float64
	Alpha  float64
}

// PoolStamps returns the puddles for a stroke. The first sample always pools
// because the brush starts at rest; other samples among the first and last
// few pool when the pen is slower than PoolVelocityThreshold, more strongly
// the slower it moves. Strokes with fewer than 2 samples have no pools.
func PoolStamps(samples []domain.StrokeSample) []PoolStamp {
	if len(samples) < 2 {
		return nil
	}

	var stamps []PoolStamp
	head := min(poolEdgeSamples, len(samples))
	for i := 0; i < head; i++ {
		if i == 0 {
			stamps = append(stamps, poolStamp(samples[i], 0.8))
			continue
		}
		if v := sampleVelocity(samples, i); v < PoolVelocityThreshold {
			stamps = append(stamps, poolStamp(samples[i], (1-v/PoolVelocityThreshold)*0.6))
		}
	}

	for i := max(head, len(samples)-poolEdgeSamples); i < len(samples); i++ {
		if v := sampleVelocity(samples, i); v < PoolVelocityThreshold {
			stamps = append(stamps, poolStamp(samples[i], (1-v/PoolVelocityThreshold)*0.5))
		}
	}
	return stamps
}

func poolStamp(s domain.StrokeSample, intensity float64) PoolStamp {
	width := poolMinWidth + (poolMaxWidth-poolMinWidth)*curve(s.Pressure)
	return PoolStamp{
		X:      s.X,
		Y:      s.Y,
		Radius: width * PoolRadiusMultiplier / 2,
		Alpha:  math.Min(1, s.Pressure*0.5+PoolAlphaBoost) * intensity,
	}
}

// sampleVelocity is the speed into sample i in px/s; the first sample and
// samples with no elapsed time report 0.
func sampleVelocity(samples []domain.StrokeSample, i int) float64 {
	if i == 0 {
		return 0
	}
	prev, curr := samples[i-1], samples[i]
	dt := curr.Timestamp - prev.Timestamp
	if dt <= 0.0001 {
		return 0
	}
	return math.Hypot(curr.X-prev.X, curr.Y-prev.Y) / dt
}
