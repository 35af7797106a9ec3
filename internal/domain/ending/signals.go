package ending

import (
	"math"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

func pressuresOf(samples []domain.StrokeSample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Pressure
	}
	return out
}

// velocitiesOf returns per-segment speeds in canvas units per second. A
// segment with no measurable elapsed time repeats the previous speed.
func velocitiesOf(samples []domain.StrokeSample) []float64 {
	if len(samples) < 2 {
		return nil
	}
	out := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		dist := math.Hypot(samples[i].X-samples[i-1].X, samples[i].Y-samples[i-1].Y)
		dt := samples[i].Timestamp - samples[i-1].Timestamp
		if dt > 0.0001 {
			out = append(out, dist/dt)
		} else {
			out = append(out, last(out))
		}
	}
	return out
}

// directionStability is 1 for a straight heading and falls towards 0 as the
// average turn between segments approaches pi.
func directionStability(samples []domain.StrokeSample) float64 {
	if len(samples) < 3 {
		return 1
	}

	angles := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		dx := samples[i].X - samples[i-1].X
		dy := samples[i].Y - samples[i-1].Y
		if dx*dx+dy*dy > 0.01 {
			angles = append(angles, math.Atan2(dy, dx))
		}
	}
	if len(angles) < 2 {
		return 1
	}

	var total float64
	for i := 1; i < len(angles); i++ {
		total += math.Abs(wrapAngle(angles[i] - angles[i-1]))
	}
	return math.Max(0, 1-total/float64(len(angles)-1)/math.Pi)
}

// endDirectionChange compares the heading of the first and second half of the
// window. Turns between 30 and 135 degrees score highest.
func endDirectionChange(samples []domain.StrokeSample) float64 {
	if len(samples) < 4 {
		return 0
	}

	mid := len(samples) / 2
	end := len(samples) - 1
	first := math.Atan2(samples[mid].Y-samples[0].Y, samples[mid].X-samples[0].X)
	second := math.Atan2(samples[end].Y-samples[mid].Y, samples[end].X-samples[mid].X)

	change := math.Abs(wrapAngle(second - first))
	switch {
	case change > math.Pi/6 && change < math.Pi*3/4:
		return math.Min(1, change/(math.Pi/3))
	case change >= math.Pi*3/4:
		return 0.5
	default:
		return change / (math.Pi / 3) * 0.5
	}
}

func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance is the population variance; fewer than 2 values have none.
func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(values))
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Max(m, v)
	}
	return m
}
