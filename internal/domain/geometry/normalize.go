package geometry

import (
	"math"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent of the box.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the box.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// BoundingBox returns the smallest axis-aligned box containing every point.
// The zero Bounds is returned for empty input.
func BoundingBox(points []domain.Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, p := range points {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b domain.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PathLength returns the total length of the polyline through points.
func PathLength(points []domain.Point) float64 {
	var length float64
	for i := 1; i < len(points); i++ {
		length += Distance(points[i-1], points[i])
	}
	return length
}

// Normalize translates points so the bounding box starts at the origin and
// divides both axes by the larger extent. Using a single divisor keeps the
// aspect ratio intact; extents below 1 are floored to 1.
//
// Fewer than 2 points are returned unchanged. The input slice is never modified.
func Normalize(points []domain.Point) []domain.Point {
	if len(points) < 2 {
		return points
	}

	b := BoundingBox(points)
	scale := math.Max(math.Max(b.Width(), 1), math.Max(b.Height(), 1))

	out := make([]domain.Point, len(points))
	for i, p := range points {
		out[i] = domain.Point{
			X: (p.X - b.MinX) / scale,
			Y: (p.Y - b.MinY) / scale,
		}
	}
	return out
}

// Resample redistributes n points evenly along the arc length of the polyline.
//
// Parameters:
//   - points: the polyline to resample, in drawing order
//   - n: the number of output points, at least 2
//
// Returns:
//   - Exactly n points for any input with at least 2 points. The first output
//     point is the first input point. If floating point drift leaves the walk
//     short, the remainder is padded with the last input point.
//   - The input unchanged when it has fewer than 2 points or n < 2.
//   - n copies of the first point when the polyline has zero length.
func Resample(points []domain.Point, n int) []domain.Point {
	if len(points) < 2 || n < 2 {
		return points
	}

	out := make([]domain.Point, 0, n)
	total := PathLength(points)
	if total == 0 {
		for len(out) < n {
			out = append(out, points[0])
		}
		return out
	}

	interval := total / float64(n-1)
	out = append(out, points[0])

	prev := points[0]
	var accumulated float64
	for i := 1; i < len(points) && len(out) < n; {
		curr := points[i]
		d := Distance(prev, curr)

		if d > 0 && accumulated+d >= interval {
			ratio := (interval - accumulated) / d
			q := domain.Point{
				X: prev.X + ratio*(curr.X-prev.X),
				Y: prev.Y + ratio*(curr.Y-prev.Y),
			}
			out = append(out, q)
			// the new sample becomes the start of the rest of this segment
			prev = q
			accumulated = 0
			continue
		}

		accumulated += d
		prev = curr
		i++
	}

	last := points[len(points)-1]
	for len(out) < n {
		out = append(out, last)
	}
	return out
}

// NormalizeAndResample maps points into the unit frame and resamples them to
// exactly sampleCount points. Inputs with fewer than 2 points are returned
// unchanged.
func NormalizeAndResample(points []domain.Point, sampleCount int) []domain.Point {
	if len(points) < 2 {
		return points
	}
	return Resample(Normalize(points), sampleCount)
}
