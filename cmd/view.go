package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rm-hull/pixel-array-viewer/internal"
	"github.com/rm-hull/pixel-array-viewer/internal/png"
	"github.com/rm-hull/pixel-array-viewer/internal/png/stage"
	"github.com/rm-hull/pixel-array-viewer/internal/surface"
	"github.com/rm-hull/pixel-array-viewer/internal/viewer"
)

// EnvKeys are the environment variables the viewer reads its
// configuration from.
var EnvKeys = []string{"PIXELS_FILE", "INFO_FILE", "VIEWER_PORT", "VIEWER_SURFACE"}

type ViewOpts struct {
	PixelsPath string
	InfoPath   string
	Surface    string
	Port       int
	Scale      int
	Blur       float64
	Greyscale  bool
	Watch      bool
	Debug      bool
}

func View(opts ViewOpts) error {
	if opts.Debug {
		internal.ShowVersion()
		internal.EnvironmentVars(EnvKeys...)
	}

	display, err := newDisplay(opts)
	if err != nil {
		return err
	}

	cfg := viewer.Config{
		PixelsPath: opts.PixelsPath,
		InfoPath:   opts.InfoPath,
		Stages:     stages(opts),
		Watch:      opts.Watch,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return viewer.New(cfg, display).Run(ctx)
}

func newDisplay(opts ViewOpts) (surface.Display, error) {
	switch opts.Surface {
	case "browser":
		return surface.NewBrowser(surface.BrowserOpts{
			Addr:  fmt.Sprintf("localhost:%d", opts.Port),
			Title: opts.PixelsPath,
			Debug: opts.Debug,
		})
	case "terminal":
		return &surface.Terminal{Out: os.Stdout, In: os.Stdin}, nil
	default:
		return nil, fmt.Errorf("unknown surface %q (expected browser or terminal)", opts.Surface)
	}
}

// stages builds the display pipeline. The terminal fits the raster to its
// own cell grid, so it is never upscaled here.
func stages(opts ViewOpts) []png.PipelineStage {
	var pipeline []png.PipelineStage
	if opts.Greyscale {
		pipeline = append(pipeline, &stage.GreyscaleStage{})
	}
	if opts.Blur > 0 {
		pipeline = append(pipeline, &stage.GaussianBlurStage{Sigma: opts.Blur})
	}
	if opts.Surface == "browser" {
		pipeline = append(pipeline, &stage.ScaleStage{Factor: opts.Scale})
	}
	return pipeline
}
