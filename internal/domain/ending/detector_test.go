package ending

import (
	"testing"

	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/stretchr/testify/assert"
)

func stroke(xs, ys, ps []float64) domain.Stroke {
	samples := make([]domain.StrokeSample, len(xs))
	for i := range xs {
		samples[i] = domain.StrokeSample{X: xs[i], Y: ys[i], Pressure: ps[i], Timestamp: float64(i) * 0.01}
	}
	return domain.Stroke{Samples: samples}
}

func TestDetect(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		stroke   domain.Stroke
		expected Type
	}{
		{
			name: "firm stop",
			stroke: stroke(
				[]float64{0, 10, 20, 30, 40, 50, 58, 63, 65, 65.5},
				[]float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
				[]float64{0.6, 0.6, 0.6, 0.6, 0.6, 0.6, 0.6, 0.6, 0.6, 0.6},
			),
			expected: Tome,
		},
		{
			name: "flick after a dip",
			stroke: stroke(
				[]float64{50, 50, 50, 50, 50, 50, 50, 50, 45, 35},
				[]float64{10, 20, 30, 40, 50, 55, 60, 65, 60, 50},
				[]float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.15, 0.1, 0.3, 0.5},
			),
			expected: Hane,
		},
		{
			name: "taper at constant speed",
			stroke: stroke(
				[]float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90},
				[]float64{0, 5, 10, 15, 20, 25, 30, 35, 40, 45},
				[]float64{0.8, 0.72, 0.63, 0.55, 0.47, 0.38, 0.3, 0.217, 0.133, 0.05},
			),
			expected: Harai,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := Detect(tc.stroke)
			assert.Equal(t, tc.expected, result.Type, "profile: %s", result.Profile)
			assert.GreaterOrEqual(t, result.Confidence, MinConfidence)
			assert.NotEmpty(t, result.Profile)
		})
	}
}

func TestDetect_TooFewSamples(t *testing.T) {
	t.Parallel()

	short := stroke([]float64{0, 1, 2}, []float64{0, 0, 0}, []float64{0.5, 0.5, 0.5})
	result := Detect(short)

	assert.Equal(t, Unknown, result.Type)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, "insufficient data", result.Profile)
}

func TestVelocitiesOf_RepeatsSpeedWithoutElapsedTime(t *testing.T) {
	t.Parallel()

	samples := []domain.StrokeSample{
		{X: 0, Timestamp: 0},
		{X: 3, Timestamp: 0.1},
		{X: 6, Timestamp: 0.1},
	}
	v := velocitiesOf(samples)
	assert.InDeltaSlice(t, []float64{30, 30}, v, 1e-9)
}

func TestDirectionStability(t *testing.T) {
	t.Parallel()

	straight := []domain.StrokeSample{{X: 0}, {X: 1}, {X: 2}, {X: 3}}
	assert.InDelta(t, 1.0, directionStability(straight), 1e-9)

	zigzag := []domain.StrokeSample{{X: 0}, {X: 1}, {X: 0}, {X: 1}}
	assert.InDelta(t, 0.0, directionStability(zigzag), 1e-9)
}

func TestVariance(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, variance(nil))
	assert.Equal(t, 0.0, variance([]float64{5}))
	assert.InDelta(t, 1.25, variance([]float64{1, 2, 3, 4}), 1e-12)
}
