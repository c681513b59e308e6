package stage

import (
	"image"

	"github.com/rm-hull/pixel-array-viewer/internal/png"
	"golang.org/x/image/draw"
)

// autoScaleTarget is the edge length, in pixels, an automatic scale aims
// for on the shorter side of the image.
const autoScaleTarget = 480

type ScaleStage struct {
	// Factor is the integer upscale factor. Zero picks one so the shorter
	// side reaches roughly autoScaleTarget pixels.
	Factor int
}

// Process enlarges the image with nearest-neighbour sampling so each
// source pixel becomes a crisp Factor x Factor block
func (s *ScaleStage) Process(p *png.PngImage) error {
	factor := s.Factor
	if factor == 0 {
		factor = AutoScale(p.Bounds)
	}
	if factor <= 1 {
		return nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, p.Bounds.Dx()*factor, p.Bounds.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), p.Img, p.Bounds, draw.Src, nil)
	p.Img = dst
	p.Bounds = dst.Bounds()
	return nil
}

// AutoScale returns the integer factor that brings the shorter side of
// bounds up to roughly autoScaleTarget pixels, never less than 1.
func AutoScale(bounds image.Rectangle) int {
	short := min(bounds.Dx(), bounds.Dy())
	if short <= 0 || short >= autoScaleTarget {
		return 1
	}
	return autoScaleTarget / short
}
