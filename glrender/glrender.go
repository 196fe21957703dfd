// Package glrender renders cached distance grids into images.
package glrender

import (
	"errors"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/dfedit"
	"golang.org/x/image/draw"
)

// ColorConversion maps a signed distance to a colour. selected is set when the
// distance belongs to the selected item.
type ColorConversion func(d float32, selected bool) color.Color

// ImageRenderer converts distance grids to images.
type ImageRenderer struct {
	conv   ColorConversion
	scaler draw.Scaler
	cells  *image.RGBA
}

// NewImageRenderer instances a new [ImageRenderer]. A nil conversion function results in a
// simple black-white color scheme where black is the interior of the SDF (negative distance)
// and red marks cells where nothing is hit.
func NewImageRenderer(conversion ColorConversion) *ImageRenderer {
	if conversion == nil {
		conversion = func(f float32, _ bool) color.Color {
			switch {
			case math32.IsNaN(f) || math32.IsInf(f, 0):
				return color.RGBA{R: 255, A: 255}
			case f > 0:
				return color.White
			default:
				return color.Black
			}
		}
	}
	return &ImageRenderer{
		conv:   conversion,
		scaler: draw.ApproxBiLinear,
	}
}

// SetScaler sets the scaler used when the destination and grid sizes differ.
// The default is [draw.ApproxBiLinear].
func (ir *ImageRenderer) SetScaler(s draw.Scaler) {
	if s == nil {
		s = draw.NearestNeighbor
	}
	ir.scaler = s
}

// Render draws the distance grid over dst's bounds with x to the right and y up.
// tags may be nil, otherwise it must match dist's dimensions and cells owned by
// selected are drawn highlighted.
func (ir *ImageRenderer) Render(dst draw.Image, dist *dfedit.Grid[float32], tags *dfedit.Grid[dfedit.ItemID], selected dfedit.ItemID) error {
	rows, cols := dist.Rows(), dist.Cols()
	if rows == 0 || cols == 0 {
		return errors.New("empty grid")
	} else if tags != nil && (tags.Rows() != rows || tags.Cols() != cols) {
		return errors.New("tag grid dimensions differ from distance grid")
	}
	if ir.cells == nil || ir.cells.Rect.Dx() != rows || ir.cells.Rect.Dy() != cols {
		ir.cells = image.NewRGBA(image.Rect(0, 0, rows, cols))
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			isSelected := tags != nil && selected != 0 && tags.Get(r, c) == selected
			ir.cells.Set(r, cols-1-c, ir.conv(dist.Get(r, c), isSelected))
		}
	}
	dstBB := dst.Bounds()
	if dstBB.Size() == ir.cells.Rect.Size() {
		draw.Draw(dst, dstBB, ir.cells, image.Point{}, draw.Src)
		return nil
	}
	ir.scaler.Scale(dst, dstBB, ir.cells, ir.cells.Rect, draw.Src, nil)
	return nil
}
