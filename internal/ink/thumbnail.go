package ink

import (
	"fmt"
	"image"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := gg.NewContextForImage(img).EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// Thumbnail scales img down to fit a size by size square, keeping its aspect
// ratio. Images already within the bound are returned unchanged.
func Thumbnail(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if size <= 0 || (w <= size && h <= size) {
		return img
	}

	tw, th := size, size
	if w > h {
		th = max(h*size/w, 1)
	} else if h > w {
		tw = max(w*size/h, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
