// Package raster reshapes a flat pixel record into a (height, width, bpx)
// array and converts it into an image.Image for display.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/rm-hull/pixel-array-viewer/internal/records"
)

var (
	// ErrShapeMismatch is returned when the pixel count disagrees with the
	// declared dimensions.
	ErrShapeMismatch = records.ErrShapeMismatch

	ErrUnsupportedChannels = errors.New("unsupported number of channels")
	ErrEmptyImage          = errors.New("image has no pixels")
)

// PixelArray is a three-axis view of a pixel record with axes
// (height, width, bpx), row-major and channel-fastest. Values are held in
// one flat slice; element (r, c, ch) lives at r*Stride + c*Bpx + ch.
type PixelArray struct {
	Height int
	Width  int
	Bpx    int
	// Stride is the number of values between vertically adjacent pixels.
	Stride int
	Pix    []int
}

// BuildImage reshapes pixels into a PixelArray of shape
// (meta.Height, meta.Width, meta.Bpx). The length check happens before any
// reshaping so nothing partial is ever produced.
func BuildImage(pixels records.PixelStream, meta records.Metadata) (*PixelArray, error) {
	want, ok := meta.Len()
	if !ok {
		return nil, fmt.Errorf("%w: %s is too large to address", ErrShapeMismatch, meta)
	}
	if len(pixels) != want {
		return nil, fmt.Errorf("%w: %s needs %d values but the pixel record holds %d",
			ErrShapeMismatch, meta, want, len(pixels))
	}

	pix := make([]int, len(pixels))
	copy(pix, pixels)

	return &PixelArray{
		Height: meta.Height,
		Width:  meta.Width,
		Bpx:    meta.Bpx,
		Stride: meta.Width * meta.Bpx,
		Pix:    pix,
	}, nil
}

// Shape returns (height, width, bpx).
func (a *PixelArray) Shape() (int, int, int) {
	return a.Height, a.Width, a.Bpx
}

// PixOffset is the index in Pix of the first channel of pixel (r, c).
func (a *PixelArray) PixOffset(r, c int) int {
	return r*a.Stride + c*a.Bpx
}

// At returns the value at row r, column c, channel ch.
func (a *PixelArray) At(r, c, ch int) int {
	return a.Pix[a.PixOffset(r, c)+ch]
}

// Pixel returns the channels of the pixel at row r, column c. The slice
// shares storage with the array.
func (a *PixelArray) Pixel(r, c int) []int {
	i := a.PixOffset(r, c)
	return a.Pix[i : i+a.Bpx : i+a.Bpx]
}

// Flatten walks the array in channel-fastest order, which reproduces the
// pixel record it was built from.
func (a *PixelArray) Flatten() records.PixelStream {
	out := make(records.PixelStream, len(a.Pix))
	copy(out, a.Pix)
	return out
}

// Image converts the array into a raster. One channel is rendered as
// grayscale, two as grayscale with alpha, three as RGB and four as RGBA.
// Values outside [0, 255] are clamped.
func (a *PixelArray) Image() (image.Image, error) {
	if a.Width == 0 || a.Height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, a.Width, a.Height)
	}

	rect := image.Rect(0, 0, a.Width, a.Height)
	switch a.Bpx {
	case 1:
		img := image.NewGray(rect)
		for y := 0; y < a.Height; y++ {
			for x := 0; x < a.Width; x++ {
				img.SetGray(x, y, color.Gray{Y: clamp(a.At(y, x, 0))})
			}
		}
		return img, nil
	case 2, 3, 4:
		img := image.NewNRGBA(rect)
		for y := 0; y < a.Height; y++ {
			for x := 0; x < a.Width; x++ {
				img.SetNRGBA(x, y, toNRGBA(a.Pixel(y, x)))
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: bpx=%d", ErrUnsupportedChannels, a.Bpx)
	}
}

func toNRGBA(pixel []int) color.NRGBA {
	switch len(pixel) {
	case 2:
		v := clamp(pixel[0])
		return color.NRGBA{R: v, G: v, B: v, A: clamp(pixel[1])}
	case 3:
		return color.NRGBA{R: clamp(pixel[0]), G: clamp(pixel[1]), B: clamp(pixel[2]), A: 0xff}
	default:
		return color.NRGBA{R: clamp(pixel[0]), G: clamp(pixel[1]), B: clamp(pixel[2]), A: clamp(pixel[3])}
	}
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 0xff:
		return 0xff
	default:
		return uint8(v)
	}
}
