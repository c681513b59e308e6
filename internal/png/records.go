package png

import (
	"image"
	"image/color"

	"github.com/rm-hull/pixel-array-viewer/internal/records"
)

// Channels reports how many channels per pixel the image is exported
// with: 1 for grayscale, 3 for opaque colour, 4 when the decoded model
// carries alpha. Paletted images are 3 unless an entry is translucent.
func (p *PngImage) Channels() int {
	switch img := p.Img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.Paletted:
		for _, c := range img.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return 4
			}
		}
		return 3
	case *image.RGBA, *image.RGBA64, *image.YCbCr:
		return 3
	default:
		return 4
	}
}

// Records flattens the image into a metadata record and a pixel record,
// row-major with channel fastest.
func (p *PngImage) Records() (records.Metadata, records.PixelStream) {
	meta := records.Metadata{
		Width:  p.Bounds.Dx(),
		Height: p.Bounds.Dy(),
		Bpx:    p.Channels(),
	}

	n, _ := meta.Len()
	pixels := make(records.PixelStream, 0, n)
	for y := p.Bounds.Min.Y; y < p.Bounds.Max.Y; y++ {
		for x := p.Bounds.Min.X; x < p.Bounds.Max.X; x++ {
			c := p.Img.At(x, y)
			if meta.Bpx == 1 {
				g := color.GrayModel.Convert(c).(color.Gray)
				pixels = append(pixels, int(g.Y))
				continue
			}

			n := color.NRGBAModel.Convert(c).(color.NRGBA)
			pixels = append(pixels, int(n.R), int(n.G), int(n.B))
			if meta.Bpx == 4 {
				pixels = append(pixels, int(n.A))
			}
		}
	}
	return meta, pixels
}
