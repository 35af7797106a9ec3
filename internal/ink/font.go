package ink

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// LabelSize is the point size of stroke order labels.
const LabelSize = 16

var (
	boldOnce sync.Once
	boldFont *truetype.Font
	boldErr  error
)

// labelFace returns a new bold face for stroke labels. Faces cache glyphs and
// are not safe for concurrent use, so each render gets its own; the parsed
// font is shared.
func labelFace() (font.Face, error) {
	boldOnce.Do(func() {
		boldFont, boldErr = truetype.Parse(gobold.TTF)
		if boldErr != nil {
			boldErr = fmt.Errorf("failed to parse label font: %w", boldErr)
		}
	})
	if boldErr != nil {
		return nil, boldErr
	}
	return truetype.NewFace(boldFont, &truetype.Options{Size: LabelSize}), nil
}
