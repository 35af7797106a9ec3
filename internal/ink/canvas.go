package ink

import (
	"image"
	"image/color"
	"io"
	"slices"

	"github.com/fogleman/gg"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

// GuideSpace is the side of the square coordinate space reference strokes
// are authored in.
const GuideSpace = 109.0

var (
	paperColor = color.RGBA{255, 255, 255, 255}
	guideColor = color.NRGBA{128, 128, 128, 102}
)

func inkColor(alpha float64) color.NRGBA {
	return color.NRGBA{0, 0, 0, uint8(domain.ClampUnit(alpha)*255 + 0.5)}
}

// Canvas is the per-attempt drawing arena. It owns the committed strokes, the
// stroke in progress and a raster cache of the committed ink, and keeps the
// three consistent: Clear resets all of them together and Undo rebuilds the
// cache from the remaining strokes.
//
// A Canvas is not safe for concurrent use.
type Canvas struct {
	width, height int

	strokes []domain.Stroke
	active  []domain.StrokeSample
	drawing bool

	// cache holds committed ink on a transparent background.
	cache *image.RGBA
	guide [][]domain.Point
}

// NewCanvas creates an empty canvas of the given pixel size. Non-positive
// dimensions are raised to 1.
func NewCanvas(width, height int) *Canvas {
	width, height = max(width, 1), max(height, 1)
	return &Canvas{
		width:  width,
		height: height,
		cache:  image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// SetGuide sets the reference strokes drawn faintly under the ink, in
// GuideSpace coordinates. A nil guide hides it.
func (c *Canvas) SetGuide(guide [][]domain.Point) {
	c.guide = guide
}

// Begin starts a new active stroke at s, dropping any uncommitted one.
func (c *Canvas) Begin(s domain.StrokeSample) {
	c.active = append(c.active[:0], s)
	c.drawing = true
}

// Append extends the active stroke. It reports false when no stroke is
// in progress.
func (c *Canvas) Append(samples ...domain.StrokeSample) bool {
	if !c.drawing {
		return false
	}
	c.active = append(c.active, samples...)
	return true
}

// Drawing reports whether a stroke is in progress.
func (c *Canvas) Drawing() bool {
	return c.drawing
}

// Active returns a copy of the samples of the stroke in progress.
func (c *Canvas) Active() []domain.StrokeSample {
	return slices.Clone(c.active)
}

// Commit finishes the active stroke: its ink and pools are flattened into the
// cache and the stroke joins the committed list. It reports false when no
// stroke is in progress.
func (c *Canvas) Commit() (domain.Stroke, bool) {
	if !c.drawing {
		return domain.Stroke{}, false
	}
	stroke := domain.Stroke{Samples: slices.Clone(c.active)}
	c.paint(stroke.Samples)
	c.strokes = append(c.strokes, stroke)
	c.active = c.active[:0]
	c.drawing = false
	return stroke, true
}

// Discard drops the active stroke without committing it.
func (c *Canvas) Discard() {
	c.active = c.active[:0]
	c.drawing = false
}

// Undo removes the last committed stroke and rebuilds the cache. It reports
// false when there is nothing to undo.
func (c *Canvas) Undo() bool {
	if len(c.strokes) == 0 {
		return false
	}
	c.strokes = c.strokes[:len(c.strokes)-1]
	c.rebuild()
	return true
}

// Clear resets strokes, the active stroke and the cache in one step.
func (c *Canvas) Clear() {
	c.strokes = nil
	c.active = c.active[:0]
	c.drawing = false
	c.cache = image.NewRGBA(c.cache.Rect)
}

// Strokes returns a copy of the committed strokes in drawing order.
func (c *Canvas) Strokes() []domain.Stroke {
	return slices.Clone(c.strokes)
}

// StrokeCount returns the number of committed strokes.
func (c *Canvas) StrokeCount() int {
	return len(c.strokes)
}

// Frame composes the current view: paper, guide, committed ink from the
// cache and the active stroke on top. Only the active stroke is stamped, so
// the cost does not grow with the number of committed strokes.
func (c *Canvas) Frame() image.Image {
	dc := gg.NewContext(c.width, c.height)
	dc.SetColor(paperColor)
	dc.Clear()
	c.drawGuide(dc)
	dc.DrawImage(c.cache, 0, 0)
	if c.drawing {
		StampStroke(dc, c.active, 1, 1)
	}
	return dc.Image()
}

// EncodeFrame writes the current frame as PNG.
func (c *Canvas) EncodeFrame(w io.Writer) error {
	return EncodePNG(w, c.Frame())
}

func (c *Canvas) paint(samples []domain.StrokeSample) {
	dc := gg.NewContextForRGBA(c.cache)
	StampStroke(dc, samples, 1, 1)
	StampPools(dc, samples, 1, 1)
}

func (c *Canvas) rebuild() {
	c.cache = image.NewRGBA(c.cache.Rect)
	for _, s := range c.strokes {
		c.paint(s.Samples)
	}
}

func (c *Canvas) drawGuide(dc *gg.Context) {
	if len(c.guide) == 0 {
		return
	}
	sx, sy := float64(c.width)/GuideSpace, float64(c.height)/GuideSpace
	dc.SetColor(guideColor)
	dc.SetLineWidth(2)
	dc.SetLineCapRound()
	for _, stroke := range c.guide {
		if len(stroke) < 2 {
			continue
		}
		dc.MoveTo(stroke[0].X*sx, stroke[0].Y*sy)
		for _, p := range stroke[1:] {
			dc.LineTo(p.X*sx, p.Y*sy)
		}
		dc.Stroke()
	}
}
