package stage

import (
	"github.com/anthonynsimon/bild/blur"
	"github.com/rm-hull/pixel-array-viewer/internal/png"
)

// GaussianBlurStage softens the raster before it is upscaled. A Sigma of
// zero or less disables it.
type GaussianBlurStage struct {
	Sigma float64
}

func (s *GaussianBlurStage) Process(p *png.PngImage) error {
	if s.Sigma <= 0 {
		return nil
	}
	blurred := blur.Gaussian(p.Img, s.Sigma)
	p.Img, p.Bounds = blurred, blurred.Bounds()
	return nil
}
