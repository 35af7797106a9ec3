package ink

import (
	"math"

	"github.com/fogleman/gg"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

// StampStroke renders a stroke onto dc with the fude brush: for every
// consecutive sample pair it lays overlapping elliptical stamps at an
// interval proportional to the brush width. Position, pressure and tilt are
// interpolated along the segment. Offsets are scaled by sx and sy; stamp
// size is not.
func StampStroke(dc *gg.Context, samples []domain.StrokeSample, sx, sy float64) {
	if len(samples) < 2 {
		return
	}

	for i := 1; i < len(samples); i++ {
		prev, curr := samples[i-1], samples[i]
		x0, y0 := prev.X*sx, prev.Y*sy
		dx, dy := curr.X*sx-x0, curr.Y*sy-y0
		distance := math.Hypot(dx, dy)
		if distance <= MinSegmentLength {
			continue
		}

		steps := StampSteps(distance, WidthForPressure(curr.Pressure))
		for step := 0; step <= steps; step++ {
			t := float64(step) / float64(steps)
			pressure := lerp(prev.Pressure, curr.Pressure, t)
			w := WidthForPressure(pressure)
			stamp(dc,
				x0+dx*t, y0+dy*t,
				w, w*HeightRatio(lerp(prev.Altitude, curr.Altitude, t)),
				lerpAngle(prev.Azimuth, curr.Azimuth, t),
				AlphaForPressure(pressure),
			)
		}
	}
}

// StampPools renders the ink puddles of a stroke as radial gradients that
// fade from the pool alpha at the center to transparent at the rim.
func StampPools(dc *gg.Context, samples []domain.StrokeSample, sx, sy float64) {
	for _, p := range PoolStamps(samples) {
		x, y := p.X*sx, p.Y*sy
		grad := gg.NewRadialGradient(x, y, 0, x, y, p.Radius)
		grad.AddColorStop(0, inkColor(p.Alpha))
		grad.AddColorStop(0.5, inkColor(p.Alpha*0.3))
		grad.AddColorStop(1, inkColor(0))
		dc.SetFillStyle(grad)
		dc.DrawCircle(x, y, p.Radius)
		dc.Fill()
	}
	dc.SetColor(inkColor(1))
}

func stamp(dc *gg.Context, x, y, w, h, angle, alpha float64) {
	dc.Push()
	dc.RotateAbout(angle, x, y)
	dc.SetRGBA(0, 0, 0, alpha)
	dc.DrawEllipse(x, y, w/2, h/2)
	dc.Fill()
	dc.Pop()
}
