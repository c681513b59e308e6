package viewer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rm-hull/pixel-array-viewer/internal/png"
	"github.com/rm-hull/pixel-array-viewer/internal/png/stage"
	"github.com/rm-hull/pixel-array-viewer/internal/raster"
	"github.com/rm-hull/pixel-array-viewer/internal/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockDisplay records what it was asked to show and returns immediately
// unless block is set, in which case it waits for ctx.
type MockDisplay struct {
	mu      sync.Mutex
	shown   []image.Image
	updates chan image.Image
	block   bool
}

func (m *MockDisplay) Show(ctx context.Context, img image.Image) error {
	m.mu.Lock()
	m.shown = append(m.shown, img)
	m.mu.Unlock()
	if m.block {
		<-ctx.Done()
	}
	return nil
}

type MockUpdatingDisplay struct {
	MockDisplay
}

func (m *MockUpdatingDisplay) Update(img image.Image) error {
	select {
	case m.updates <- img:
	default:
	}
	return nil
}

func writeRecords(t *testing.T, dir, info, pixels string) (string, string) {
	t.Helper()
	infoPath := filepath.Join(dir, "info.txt")
	pixelsPath := filepath.Join(dir, "pixels.txt")
	require.NoError(t, os.WriteFile(infoPath, []byte(info), 0644))
	require.NoError(t, os.WriteFile(pixelsPath, []byte(pixels), 0644))
	return pixelsPath, infoPath
}

func TestLoad(t *testing.T) {
	t.Run("grayscale 2x2", func(t *testing.T) {
		pixelsPath, infoPath := writeRecords(t, t.TempDir(), "2,2,1\n", "10,20,30,40,\n")
		arr, err := Load(pixelsPath, infoPath)
		require.NoError(t, err)
		assert.Equal(t, []int{10}, arr.Pixel(0, 0))
		assert.Equal(t, []int{20}, arr.Pixel(0, 1))
		assert.Equal(t, []int{30}, arr.Pixel(1, 0))
		assert.Equal(t, []int{40}, arr.Pixel(1, 1))
	})

	t.Run("sample records", func(t *testing.T) {
		arr, err := Load("../../testdata/pixels.txt", "../../testdata/info.txt")
		require.NoError(t, err)
		assert.Equal(t, records.PixelStream{10, 20, 30, 40}, arr.Flatten())
	})

	t.Run("rgb single row", func(t *testing.T) {
		pixelsPath, infoPath := writeRecords(t, t.TempDir(), "2,1,3", "1,2,3,4,5,6")
		arr, err := Load(pixelsPath, infoPath)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, arr.Pixel(0, 0))
		assert.Equal(t, []int{4, 5, 6}, arr.Pixel(0, 1))
	})

	t.Run("short pixel record is a shape mismatch", func(t *testing.T) {
		pixelsPath, infoPath := writeRecords(t, t.TempDir(), "2,2,1", "1,2,3")
		_, err := Load(pixelsPath, infoPath)
		assert.ErrorIs(t, err, raster.ErrShapeMismatch)
		assert.Contains(t, err.Error(), pixelsPath)
	})

	t.Run("non-numeric pixel", func(t *testing.T) {
		pixelsPath, infoPath := writeRecords(t, t.TempDir(), "2,2,1", "1,2,x,4")
		_, err := Load(pixelsPath, infoPath)
		assert.ErrorIs(t, err, records.ErrMalformedPixelData)
		assert.NotErrorIs(t, err, raster.ErrShapeMismatch)
	})

	t.Run("metadata is read first", func(t *testing.T) {
		pixelsPath, infoPath := writeRecords(t, t.TempDir(), "2,x,1", "1,2,x,4")
		_, err := Load(pixelsPath, infoPath)
		assert.ErrorIs(t, err, records.ErrMalformedMetadata)
	})

	t.Run("overflowing metadata with an empty pixel record", func(t *testing.T) {
		pixelsPath, infoPath := writeRecords(t, t.TempDir(), "4611686018427387904,4,1\n", "\n")
		assert.NotPanics(t, func() {
			_, err := Load(pixelsPath, infoPath)
			assert.ErrorIs(t, err, records.ErrMalformedMetadata)
		})
	})

	t.Run("missing pixel file", func(t *testing.T) {
		dir := t.TempDir()
		_, infoPath := writeRecords(t, dir, "1,1,1", "1")
		_, err := Load(filepath.Join(dir, "absent.txt"), infoPath)
		assert.ErrorIs(t, err, records.ErrMissingFile)
	})
}

func TestRun(t *testing.T) {
	t.Run("shows the rendered raster", func(t *testing.T) {
		pixelsPath, infoPath := writeRecords(t, t.TempDir(), "2,1,3", "1,2,3,4,5,6")
		display := &MockDisplay{}

		err := New(Config{PixelsPath: pixelsPath, InfoPath: infoPath}, display).Run(context.Background())
		require.NoError(t, err)
		require.Len(t, display.shown, 1)
		assert.Equal(t, color.NRGBA{4, 5, 6, 255}, display.shown[0].At(1, 0))
	})

	t.Run("applies pipeline stages", func(t *testing.T) {
		pixelsPath, infoPath := writeRecords(t, t.TempDir(), "2,2,1", "10,20,30,40")
		display := &MockDisplay{}

		cfg := Config{
			PixelsPath: pixelsPath,
			InfoPath:   infoPath,
			Stages:     []png.PipelineStage{&stage.ScaleStage{Factor: 4}},
		}
		require.NoError(t, New(cfg, display).Run(context.Background()))
		require.Len(t, display.shown, 1)
		assert.Equal(t, image.Rect(0, 0, 8, 8), display.shown[0].Bounds())
	})

	t.Run("nothing is shown on failure", func(t *testing.T) {
		pixelsPath, infoPath := writeRecords(t, t.TempDir(), "2,2,1", "1,2,3")
		display := &MockDisplay{}

		err := New(Config{PixelsPath: pixelsPath, InfoPath: infoPath}, display).Run(context.Background())
		assert.ErrorIs(t, err, raster.ErrShapeMismatch)
		assert.Empty(t, display.shown)
	})

	t.Run("unsupported channel count is reported before display", func(t *testing.T) {
		pixelsPath, infoPath := writeRecords(t, t.TempDir(), "1,1,5", "1,2,3,4,5")
		display := &MockDisplay{}

		err := New(Config{PixelsPath: pixelsPath, InfoPath: infoPath}, display).Run(context.Background())
		assert.ErrorIs(t, err, raster.ErrUnsupportedChannels)
		assert.Empty(t, display.shown)
	})

	t.Run("watch needs an updatable display", func(t *testing.T) {
		pixelsPath, infoPath := writeRecords(t, t.TempDir(), "1,1,1", "1")
		err := New(Config{PixelsPath: pixelsPath, InfoPath: infoPath, Watch: true}, &MockDisplay{}).Run(context.Background())
		assert.True(t, errors.Is(err, ErrWatchUnsupported))
	})
}

func TestRunWatch(t *testing.T) {
	dir := t.TempDir()
	pixelsPath, infoPath := writeRecords(t, dir, "1,1,1", "10")

	display := &MockUpdatingDisplay{MockDisplay{block: true, updates: make(chan image.Image, 4)}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- New(Config{PixelsPath: pixelsPath, InfoPath: infoPath, Watch: true}, display).Run(ctx)
	}()

	// keep rewriting until the watcher has registered and picked it up
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(300 * time.Millisecond)
	defer tick.Stop()
	for updated := false; !updated; {
		select {
		case img := <-display.updates:
			assert.Equal(t, color.Gray{Y: 200}, img.At(0, 0))
			updated = true
		case <-tick.C:
			require.NoError(t, os.WriteFile(pixelsPath, []byte("200\n"), 0644))
		case <-deadline:
			t.Fatal("no update after the pixel record changed")
		}
	}

	cancel()
	assert.NoError(t, <-done)
}
