package glrender_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/soypat/dfedit"
	"github.com/soypat/dfedit/glrender"
	"github.com/soypat/geometry/ms2"
	"golang.org/x/image/draw"
)

func TestImageRenderer(t *testing.T) {
	const rows, cols = 40, 20
	tree := dfedit.NewTree(nil)
	id, err := tree.AddLeaf(dfedit.NewDiskShape(dfedit.Disk{Radius: 0.2}), dfedit.Transform{Position: ms2.Vec{X: 0.3}}, tree.Root(), 0)
	if err != nil {
		t.Fatal(err)
	}
	tape := tree.Compile(nil)
	dist := dfedit.NewGridFrom(rows, cols, tape.SignedDistance)
	tags := dfedit.NewGridFrom(rows, cols, func(p ms2.Vec) dfedit.ItemID { return tape.Tagged(p).Data })

	highlight := color.RGBA{G: 255, A: 255}
	conv := func(d float32, selected bool) color.Color {
		switch {
		case selected && d < 0:
			return highlight
		case d < 0:
			return color.Black
		}
		return color.White
	}
	ir := glrender.NewImageRenderer(conv)
	img := image.NewRGBA(image.Rect(0, 0, rows, cols))
	if err := ir.Render(img, dist, tags, id); err != nil {
		t.Fatal(err)
	}
	// Disk is right of center, the left edge is outside.
	if got := img.RGBAAt(0, cols/2); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("left edge %v, want white", got)
	}
	r, c := rows/2+int(0.3*cols), cols/2
	if got := img.RGBAAt(r, cols-1-c); got != highlight {
		t.Errorf("disk center %v, want highlight", got)
	}
	if err := ir.Render(img, dist, tags, 0); err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(r, cols-1-c); got != (color.RGBA{A: 255}) {
		t.Errorf("unselected disk center %v, want black", got)
	}

	// Scaled output.
	ir.SetScaler(draw.NearestNeighbor)
	big := image.NewRGBA(image.Rect(0, 0, 2*rows, 2*cols))
	if err := ir.Render(big, dist, nil, 0); err != nil {
		t.Fatal(err)
	}
	if got := big.RGBAAt(2*r, 2*(cols-1-c)); got != (color.RGBA{A: 255}) {
		t.Errorf("scaled disk center %v, want black", got)
	}

	if err := ir.Render(img, dist, dfedit.NewGrid[dfedit.ItemID](1, 1), id); err == nil {
		t.Error("expected error for mismatched tag grid")
	}
}
