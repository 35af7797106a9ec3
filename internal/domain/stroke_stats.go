package domain

// endingSampleCount is how many trailing samples EndingPressure averages over.
const endingSampleCount = 3

// Duration returns the elapsed seconds between the first and last sample.
func (s Stroke) Duration() float64 {
	if len(s.Samples) < 2 {
		return 0
	}
	return s.Samples[len(s.Samples)-1].Timestamp - s.Samples[0].Timestamp
}

// AveragePressure returns the mean pressure over all samples, or 0 for an empty stroke.
func (s Stroke) AveragePressure() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, sample := range s.Samples {
		sum += sample.Pressure
	}
	return sum / float64(len(s.Samples))
}

// MaxPressure returns the highest pressure seen in the stroke.
func (s Stroke) MaxPressure() float64 {
	var maxP float64
	for _, sample := range s.Samples {
		if sample.Pressure > maxP {
			maxP = sample.Pressure
		}
	}
	return maxP
}

// EndingPressure averages the pressure of the final few samples, which is what
// distinguishes a firm stop from a lifted sweep.
func (s Stroke) EndingPressure() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	start := len(s.Samples) - endingSampleCount
	if start < 0 {
		start = 0
	}
	tail := s.Samples[start:]
	var sum float64
	for _, sample := range tail {
		sum += sample.Pressure
	}
	return sum / float64(len(tail))
}

// StrokeStats summarizes the timing and pressure of one stroke.
type StrokeStats struct {
	Duration        float64 `json:"duration"`
	AveragePressure float64 `json:"average_pressure"`
	MaxPressure     float64 `json:"max_pressure"`
	EndingPressure  float64 `json:"ending_pressure"`
}

// StatsOf computes the summary statistics of a stroke.
func StatsOf(s Stroke) StrokeStats {
	return StrokeStats{
		Duration:        s.Duration(),
		AveragePressure: s.AveragePressure(),
		MaxPressure:     s.MaxPressure(),
		EndingPressure:  s.EndingPressure(),
	}
}
