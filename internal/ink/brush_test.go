package ink

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

func TestWidthForPressure(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, MinWidth, WidthForPressure(0), 1e-9)
	assert.InDelta(t, MaxWidth, WidthForPressure(1), 1e-9)
	assert.InDelta(t, MinWidth, WidthForPressure(-3), 1e-9, "pressure below 0 clamps")
	assert.InDelta(t, MaxWidth, WidthForPressure(7), 1e-9, "pressure above 1 clamps")

	prev := WidthForPressure(0)
	for p := 0.01; p <= 1.0; p += 0.01 {
		w := WidthForPressure(p)
		assert.Greater(t, w, prev, "width must increase at pressure %.2f", p)
		prev = w
	}

	// The curve favors light pressure: half pressure already gives more
	// than half of the width range.
	assert.Greater(t, WidthForPressure(0.5), (MinWidth+MaxWidth)/2)
}

func TestAlphaForPressure(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		pressure float64
		want     float64
	}{
		{name: "zero pressure is dry", pressure: 0, want: 0.3},
		{name: "inside dry band", pressure: 0.1, want: 0.45},
		{name: "knee", pressure: 0.2, want: 0.6},
		{name: "mid pressure", pressure: 0.6, want: 0.8},
		{name: "full pressure", pressure: 1, want: 1},
		{name: "clamped below", pressure: -1, want: 0.3},
		{name: "clamped above", pressure: 2, want: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tc.want, AlphaForPressure(tc.pressure), 1e-9)
		})
	}
}

func TestStampSpacing(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, MinSpacing, StampSpacing(1), 1e-9, "thin brushes use the spacing floor")
	assert.InDelta(t, 3.0, StampSpacing(20), 1e-9)

	assert.Equal(t, 1, StampSteps(0.2, 24), "short segments still get one interval")
	assert.Equal(t, 66, StampSteps(100, 10))
	assert.Equal(t, 200, StampSteps(100, 1))
}

func TestHeightRatio(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, HeightRatio(0), 1e-9, "no tilt sensing")
	assert.InDelta(t, 1.0, HeightRatio(-0.5), 1e-9)
	assert.InDelta(t, 1.0, HeightRatio(math.Pi/2), 1e-9, "upright")
	assert.InDelta(t, 0.65, HeightRatio(math.Pi/4), 1e-9)
	assert.InDelta(t, FlatRatio, HeightRatio(1e-12), 1e-9, "nearly flat")
}

func TestLerpAngle(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.5, lerpAngle(0, 1, 0.5), 1e-9)
	// Crossing ±π takes the short way round.
	got := lerpAngle(math.Pi-0.1, -math.Pi+0.1, 0.5)
	assert.InDelta(t, math.Pi, math.Abs(got), 1e-9)
}

func TestPoolStamps(t *testing.T) {
	t.Parallel()

	slow := func(n int) []domain.StrokeSample {
		samples := make([]domain.StrokeSample, n)
		for i := range samples {
			samples[i] = domain.StrokeSample{X: float64(i * 10), Y: 0, Pressure: 1, Timestamp: float64(i)}
		}
		return samples
	}

	t.Run("fewer than two samples", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, PoolStamps(nil))
		assert.Empty(t, PoolStamps(slow(1)))
	})

	t.Run("first sample always pools", func(t *testing.T) {
		t.Parallel()
		fast := []domain.StrokeSample{
			{X: 0, Y: 0, Pressure: 1, Timestamp: 0},
			{X: 100, Y: 0, Pressure: 1, Timestamp: 0.01},
		}
		stamps := PoolStamps(fast)
		assert.Len(t, stamps, 1)
		assert.InDelta(t, 32*PoolRadiusMultiplier/2, stamps[0].Radius, 1e-9)
		assert.InDelta(t, 0.65*0.8, stamps[0].Alpha, 1e-9)
	})

	t.Run("slow head sample pools with reduced intensity", func(t *testing.T) {
		t.Parallel()
		stamps := PoolStamps(slow(2))
		assert.Len(t, stamps, 2)
		// 10 px/s against a 50 px/s threshold.
		assert.InDelta(t, 0.65*0.8*0.6, stamps[1].Alpha, 1e-9)
	})

	t.Run("head and tail windows do not overlap", func(t *testing.T) {
		t.Parallel()
		assert.Len(t, PoolStamps(slow(12)), 10)
		assert.Len(t, PoolStamps(slow(7)), 7)
	})

	t.Run("zero elapsed time reads as resting", func(t *testing.T) {
		t.Parallel()
		samples := []domain.StrokeSample{{X: 0, Pressure: 0.5}, {X: 30, Pressure: 0.5}}
		assert.Equal(t, 0.0, sampleVelocity(samples, 1))
		assert.Len(t, PoolStamps(samples), 2)
	})
}
