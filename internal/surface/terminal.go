package surface

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/kevin-cantwell/dotmatrix"
)

const (
	defaultColumns = 80
	defaultRows    = 40
)

// Terminal prints the raster as braille dot art and waits for a line (or
// EOF) on In before returning. If the context ends first and In is an
// io.Closer, In is closed.
type Terminal struct {
	Out io.Writer
	In  io.Reader
	// Columns and Rows bound the printed size in character cells. Each
	// cell holds a 2x4 block of dots.
	Columns int
	Rows    int
}

func (t *Terminal) Show(ctx context.Context, img image.Image) error {
	fitted := Fit(img, t.columns()*2, t.rows()*4)
	if err := dotmatrix.Print(t.Out, fitted); err != nil {
		return fmt.Errorf("failed to print raster: %w", err)
	}
	if _, err := fmt.Fprintf(t.Out, "%dx%d, press Enter to close\n", img.Bounds().Dx(), img.Bounds().Dy()); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(t.In).ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		// unblock the pending read; a plain io.Reader is left to finish on its own
		if closer, ok := t.In.(io.Closer); ok {
			_ = closer.Close()
			<-done
		}
		return nil
	}
}

func (t *Terminal) columns() int {
	if t.Columns > 0 {
		return t.Columns
	}
	return defaultColumns
}

func (t *Terminal) rows() int {
	if t.Rows > 0 {
		return t.Rows
	}
	return defaultRows
}

// Fit scales img, up or down, to the largest size that fits within
// maxW x maxH while keeping its aspect ratio. Nearest-neighbour sampling
// keeps individual source pixels visible.
func Fit(img image.Image, maxW, maxH int) *image.NRGBA {
	b := img.Bounds()
	scale := math.Min(float64(maxW)/float64(b.Dx()), float64(maxH)/float64(b.Dy()))
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))
	return imaging.Resize(img, w, h, imaging.NearestNeighbor)
}
