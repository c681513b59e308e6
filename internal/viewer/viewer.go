// Package viewer runs the load, reshape and display flow for one pair of
// record files.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/rm-hull/pixel-array-viewer/internal/png"
	"github.com/rm-hull/pixel-array-viewer/internal/raster"
	"github.com/rm-hull/pixel-array-viewer/internal/records"
	"github.com/rm-hull/pixel-array-viewer/internal/surface"
)

var ErrWatchUnsupported = errors.New("display surface cannot be updated in place")

type Config struct {
	PixelsPath string
	InfoPath   string
	// Stages run over the raster, in order, before it is displayed.
	Stages []png.PipelineStage
	// Watch reloads the records whenever either file changes.
	Watch bool
}

// Updater is a display that can swap the shown raster while Show blocks.
type Updater interface {
	Update(img image.Image) error
}

type Viewer struct {
	cfg     Config
	display surface.Display
}

func New(cfg Config, display surface.Display) *Viewer {
	return &Viewer{cfg: cfg, display: display}
}

// Load reads the metadata record, then the pixel record, and reshapes the
// pixels to the declared dimensions.
func Load(pixelsPath, infoPath string) (*raster.PixelArray, error) {
	meta, err := records.ReadMetadataFile(infoPath)
	if err != nil {
		return nil, err
	}

	pixels, err := records.ReadPixelFile(pixelsPath)
	if err != nil {
		return nil, err
	}

	arr, err := raster.BuildImage(pixels, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to build image from %s using %s: %w", pixelsPath, infoPath, err)
	}
	return arr, nil
}

// Render loads the records and turns them into the raster handed to the
// display.
func (v *Viewer) Render() (image.Image, error) {
	arr, err := Load(v.cfg.PixelsPath, v.cfg.InfoPath)
	if err != nil {
		return nil, err
	}

	img, err := arr.Image()
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", v.cfg.PixelsPath, err)
	}

	p := png.NewPngFromImage(img)
	if err := p.Pipeline(v.cfg.Stages...); err != nil {
		return nil, fmt.Errorf("failed to process image pipeline: %w", err)
	}

	log.Printf("Loaded %dx%d image with %d channel(s) from %s", arr.Width, arr.Height, arr.Bpx, v.cfg.PixelsPath)
	return p.Img, nil
}

// Run renders once and blocks in the display until it is dismissed. Any
// load failure aborts before anything is shown.
func (v *Viewer) Run(ctx context.Context) error {
	var updater Updater
	if v.cfg.Watch {
		var ok bool
		if updater, ok = v.display.(Updater); !ok {
			return ErrWatchUnsupported
		}
	}

	img, err := v.Render()
	if err != nil {
		return err
	}

	if updater != nil {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		w, err := newWatcher(v.cfg.PixelsPath, v.cfg.InfoPath)
		if err != nil {
			return err
		}
		go w.run(watchCtx, func() {
			v.reload(updater)
		})
	}

	return v.display.Show(ctx, img)
}

func (v *Viewer) reload(updater Updater) {
	img, err := v.Render()
	if err != nil {
		log.Printf("Reload failed, keeping previous image: %v", err)
		return
	}
	if err := updater.Update(img); err != nil {
		log.Printf("Failed to update display: %v", err)
	}
}
