package records

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/bits"
	"os"
	"strconv"
)

// Metadata describes the shape of a pixel record. Bpx is the number of
// channels per pixel: 1 grayscale, 2 grayscale+alpha, 3 RGB, 4 RGBA.
type Metadata struct {
	Width  int
	Height int
	Bpx    int
}

// Len is the number of values a pixel record of this shape must hold. ok
// is false when a dimension is negative or the product does not fit in an
// int.
func (m Metadata) Len() (n int, ok bool) {
	if m.Width < 0 || m.Height < 0 || m.Bpx < 0 {
		return 0, false
	}
	hi, wh := bits.Mul64(uint64(m.Width), uint64(m.Height))
	if hi != 0 {
		return 0, false
	}
	hi, total := bits.Mul64(wh, uint64(m.Bpx))
	if hi != 0 || total > math.MaxInt {
		return 0, false
	}
	return int(total), true
}

func (m Metadata) String() string {
	return fmt.Sprintf("%dx%d (bpx=%d)", m.Width, m.Height, m.Bpx)
}

// PixelStream is a flat sequence of intensities in row-major,
// channel-fastest order.
type PixelStream []int

// LoadMetadata reads a metadata record. Only the first three values are
// used; anything after them is ignored.
func LoadMetadata(r io.Reader) (Metadata, error) {
	line, err := readLine(r)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrMalformedMetadata, err)
	}

	values, err := ParseLine(line)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrMalformedMetadata, err)
	}
	if len(values) < 3 {
		return Metadata{}, fmt.Errorf("%w: expected width,height,bpx but found %d value(s)", ErrMalformedMetadata, len(values))
	}

	meta := Metadata{Width: values[0], Height: values[1], Bpx: values[2]}
	if meta.Width < 0 || meta.Height < 0 || meta.Bpx < 0 {
		return Metadata{}, fmt.Errorf("%w: negative dimension in %s", ErrMalformedMetadata, meta)
	}
	if _, ok := meta.Len(); !ok {
		return Metadata{}, fmt.Errorf("%w: %s is too large to address", ErrMalformedMetadata, meta)
	}
	return meta, nil
}

// LoadPixelStream reads a pixel record in encounter order.
func LoadPixelStream(r io.Reader) (PixelStream, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPixelData, err)
	}

	values, err := ParseLine(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPixelData, err)
	}
	return PixelStream(values), nil
}

// ReadMetadataFile opens path, reads the metadata record and closes the
// file on every path out.
func ReadMetadataFile(path string) (Metadata, error) {
	var meta Metadata
	err := withFile(path, func(f *os.File) error {
		var err error
		meta, err = LoadMetadata(f)
		return err
	})
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to load metadata record %s: %w", path, err)
	}
	return meta, nil
}

// ReadPixelFile opens path, reads the pixel record and closes the file on
// every path out.
func ReadPixelFile(path string) (PixelStream, error) {
	var pixels PixelStream
	err := withFile(path, func(f *os.File) error {
		var err error
		pixels, err = LoadPixelStream(f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load pixel record %s: %w", path, err)
	}
	return pixels, nil
}

func withFile(path string, fn func(f *os.File) error) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMissingFile, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()
	return fn(f)
}

// WriteMetadata writes meta in the form "width,height,bpx\n".
func WriteMetadata(w io.Writer, meta Metadata) error {
	_, err := fmt.Fprintf(w, "%d,%d,%d\n", meta.Width, meta.Height, meta.Bpx)
	return err
}

// WritePixelStream writes every value followed by a comma and terminates
// the line with "\n", which is the layout LoadPixelStream expects.
func WritePixelStream(w io.Writer, pixels PixelStream) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 8)
	for _, v := range pixels {
		buf = strconv.AppendInt(buf[:0], int64(v), 10)
		buf = append(buf, ',')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}
