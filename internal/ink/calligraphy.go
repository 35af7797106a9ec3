package ink

import (
	"bytes"
	"encoding/base64"
	"image"
	"math"

	"github.com/fogleman/gg"

	"github.com/phrazzld/kanji-ink/internal/domain"
)

// RenderCalligraphy re-renders strokes in black fude ink on white paper at
// size by size pixels, the way they looked while being written. Positions
// are scaled per axis from the source canvas; brush widths are not scaled.
// A non-positive size selects ExportSize.
func RenderCalligraphy(strokes []domain.Stroke, canvasWidth, canvasHeight float64, size int) image.Image {
	if size <= 0 {
		size = ExportSize
	}
	sx := float64(size) / math.Max(canvasWidth, 1)
	sy := float64(size) / math.Max(canvasHeight, 1)

	dc := gg.NewContext(size, size)
	dc.SetColor(paperColor)
	dc.Clear()
	for _, s := range strokes {
		StampStroke(dc, s.Samples, sx, sy)
	}
	return dc.Image()
}

// RenderCalligraphyBase64 renders strokes with RenderCalligraphy and returns
// the PNG as base64.
func RenderCalligraphyBase64(strokes []domain.Stroke, canvasWidth, canvasHeight float64, size int) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, RenderCalligraphy(strokes, canvasWidth, canvasHeight, size)); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
