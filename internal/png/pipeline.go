package png

import (
	"fmt"
	"image"
	"image/png"
	"io"
)

// PngImage is a raster moving through a chain of PipelineStages. Stages
// replace Img and keep Bounds in step with it.
type PngImage struct {
	Img    image.Image
	Bounds image.Rectangle
}

type PipelineStage interface {
	Process(img *PngImage) error
}

func NewPngFromReader(r io.Reader) (*PngImage, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, err
	}
	return NewPngFromImage(img), nil
}

func NewPngFromImage(img image.Image) *PngImage {
	return &PngImage{
		Img:    img,
		Bounds: img.Bounds(),
	}
}

func (p *PngImage) Write(w io.Writer) error {
	return png.Encode(w, p.Img)
}

func (p *PngImage) Pipeline(stages ...PipelineStage) error {
	for _, stage := range stages {
		if err := stage.Process(p); err != nil {
			return fmt.Errorf("%T: %w", stage, err)
		}
	}
	return nil
}
