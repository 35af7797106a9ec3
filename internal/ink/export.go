package ink

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

// ExportSize is the side of the square export image in pixels.
const ExportSize = 512

// PaletteColor is one entry of the stroke color cycle.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

// Palette is the stroke color cycle; stroke i uses Palette[i % len(Palette)].
var Palette = []PaletteColor{
	{Name: "red", Color: color.RGBA{255, 59, 48, 255}},
	{Name: "blue", Color: color.RGBA{0, 122, 255, 255}},
	{Name: "green", Color: color.RGBA{52, 199, 89, 255}},
	{Name: "orange", Color: color.RGBA{255, 149, 0, 255}},
	{Name: "purple", Color: color.RGBA{175, 82, 222, 255}},
	{Name: "teal", Color: color.RGBA{48, 176, 199, 255}},
	{Name: "pink", Color: color.RGBA{255, 45, 85, 255}},
	{Name: "brown", Color: color.RGBA{162, 132, 94, 255}},
	{Name: "magenta", Color: color.RGBA{255, 0, 255, 255}},
	{Name: "dark gray", Color: color.RGBA{85, 85, 85, 255}},
}

// StrokeColor returns the palette entry for a zero-based stroke index.
func StrokeColor(index int) PaletteColor {
	return Palette[((index%len(Palette))+len(Palette))%len(Palette)]
}

// LegendEntry describes the label and color of one exported stroke.
type LegendEntry struct {
	Stroke int    `json:"stroke"`
	Color  string `json:"color"`
	Hex    string `json:"hex"`
}

// Legend returns the label and color of each of n strokes, in drawing order.
func Legend(n int) []LegendEntry {
	entries := make([]LegendEntry, 0, max(n, 0))
	for i := 0; i < n; i++ {
		c := StrokeColor(i)
		entries = append(entries, LegendEntry{
			Stroke: i + 1,
			Color:  c.Name,
			Hex:    fmt.Sprintf("#%02X%02X%02X", c.Color.R, c.Color.G, c.Color.B),
		})
	}
	return entries
}

// ExportRenderer draws completed strokes for an external viewer. Each stroke
// is a variable-width polyline in its palette color with its 1-based order
// number at the start point. Source coordinates are scaled to the square
// export independently per axis.
type ExportRenderer struct {
	size int
}

// NewExportRenderer creates a renderer for square images of the given side;
// a non-positive size selects ExportSize.
func NewExportRenderer(size int) *ExportRenderer {
	if size <= 0 {
		size = ExportSize
	}
	return &ExportRenderer{size: size}
}

// Size returns the side of the exported image.
func (r *ExportRenderer) Size() int {
	return r.size
}

// Render draws strokes captured on a canvasWidth by canvasHeight canvas.
// Strokes with fewer than 2 samples are skipped but still consume their
// palette slot and order number.
func (r *ExportRenderer) Render(strokes []domain.Stroke, canvasWidth, canvasHeight float64) (image.Image, error) {
	face, err := labelFace()
	if err != nil {
		return nil, err
	}
	defer face.Close()

	size := float64(r.size)
	sx := size / math.Max(canvasWidth, 1)
	sy := size / math.Max(canvasHeight, 1)

	dc := gg.NewContext(r.size, r.size)
	dc.SetColor(paperColor)
	dc.Clear()
	dc.SetFontFace(face)
	dc.SetLineCapRound()

	for i, stroke := range strokes {
		samples := stroke.Samples
		if len(samples) < 2 {
			continue
		}
		c := StrokeColor(i).Color

		dc.SetColor(c)
		for j := 1; j < len(samples); j++ {
			p0, p1 := samples[j-1], samples[j]
			dc.SetLineWidth(1 + domain.ClampUnit(p1.Pressure)*7)
			dc.DrawLine(p0.X*sx, p0.Y*sy, p1.X*sx, p1.Y*sy)
			dc.Stroke()
		}

		label := strconv.Itoa(i + 1)
		w, h := dc.MeasureString(label)
		x, y := samples[0].X*sx, samples[0].Y*sy-h/2
		dc.SetColor(paperColor)
		dc.DrawEllipse(x, y, w/2+2, h/2+2)
		dc.Fill()
		dc.SetColor(c)
		dc.DrawStringAnchored(label, x, y, 0.5, 0.5)
	}
	return dc.Image(), nil
}

// RenderPNG renders strokes and writes them to w as PNG.
func (r *ExportRenderer) RenderPNG(w io.Writer, strokes []domain.Stroke, canvasWidth, canvasHeight float64) error {
	img, err := r.Render(strokes, canvasWidth, canvasHeight)
	if err != nil {
		return err
	}
	return EncodePNG(w, img)
}

// RenderBase64 renders strokes to a base64-encoded PNG.
func (r *ExportRenderer) RenderBase64(strokes []domain.Stroke, canvasWidth, canvasHeight float64) (string, error) {
	data, err := r.RenderBytes(strokes, canvasWidth, canvasHeight)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// RenderBytes renders strokes to PNG bytes.
func (r *ExportRenderer) RenderBytes(strokes []domain.Stroke, canvasWidth, canvasHeight float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.RenderPNG(&buf, strokes, canvasWidth, canvasHeight); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
