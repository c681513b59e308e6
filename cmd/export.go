package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/rm-hull/pixel-array-viewer/internal/png"
	"github.com/rm-hull/pixel-array-viewer/internal/records"
)

// Export decodes a PNG and writes the metadata and pixel records the
// viewer reads.
func Export(pngPath, pixelsPath, infoPath string) error {
	inFile, err := os.Open(pngPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", pngPath, err)
	}
	defer func() {
		_ = inFile.Close()
	}()

	img, err := png.NewPngFromReader(inFile)
	if err != nil {
		return fmt.Errorf("failed to decode PNG %s: %w", pngPath, err)
	}

	meta, pixels := img.Records()

	if err := writeAtomic(pixelsPath, func(w io.Writer) error {
		return records.WritePixelStream(w, pixels)
	}); err != nil {
		return fmt.Errorf("failed to write pixel record: %w", err)
	}

	if err := writeAtomic(infoPath, func(w io.Writer) error {
		return records.WriteMetadata(w, meta)
	}); err != nil {
		return fmt.Errorf("failed to write metadata record: %w", err)
	}

	log.Printf("Exported %s as %s to %s and %s", pngPath, meta, pixelsPath, infoPath)
	return nil
}

// writeAtomic writes to a temporary file next to filename and renames it
// into place once fully written.
func writeAtomic(filename string, write func(w io.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), "export-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanupTemp := true
	defer func() {
		_ = tmpFile.Close()
		if cleanupTemp {
			_ = os.Remove(tmpFile.Name())
		}
	}()

	if err := write(tmpFile); err != nil {
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file before rename: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	cleanupTemp = false
	return nil
}
