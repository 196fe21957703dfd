// Package dfaux holds auxiliary helpers to get started exporting editor scenes.
package dfaux

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/soypat/dfedit"
	"github.com/soypat/dfedit/glrender"
	"golang.org/x/image/draw"
)

// RenderConfig configures PNG export of a snapshot.
type RenderConfig struct {
	// Width and Height of the output image. Zero values use the grid dimensions.
	Width, Height int
	// Conversion maps distances to colors. nil uses [ColorConversionInigoQuilez].
	Conversion glrender.ColorConversion
	// Selected is drawn highlighted when the snapshot has a tag grid.
	Selected dfedit.ItemID
	// Scaler used when the output size differs from the grid. nil uses bilinear scaling.
	Scaler draw.Scaler
}

// RenderPNG renders the snapshot's distance grid and encodes it as PNG to w.
// Ideally users should implement their own rendering functions since applications may vary widely.
func RenderPNG(w io.Writer, snap *dfedit.Snapshot, cfg RenderConfig) error {
	if snap == nil || snap.Grid == nil {
		return errors.New("snapshot has no distance grid")
	}
	watch := stopwatch()
	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = snap.Grid.Rows()
	}
	if height <= 0 {
		height = snap.Grid.Cols()
	}
	conv := cfg.Conversion
	if conv == nil {
		conv = ColorConversionInigoQuilez(1)
	}
	renderer := glrender.NewImageRenderer(conv)
	if cfg.Scaler != nil {
		renderer.SetScaler(cfg.Scaler)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	err := renderer.Render(img, snap.Grid, snap.Tags, cfg.Selected)
	if err != nil {
		return fmt.Errorf("rendering snapshot: %w", err)
	}
	err = png.Encode(w, img)
	if err != nil {
		return err
	}
	dfedit.Logger().Debug("rendered PNG", "width", width, "height", height, "elapsed", watch())
	return nil
}

// RenderPNGFile renders the snapshot and saves the result to a PNG file with said filename.
func RenderPNGFile(filename string, snap *dfedit.Snapshot, cfg RenderConfig) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	err = RenderPNG(fp, snap, cfg)
	if err != nil {
		return err
	}
	return fp.Sync()
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
