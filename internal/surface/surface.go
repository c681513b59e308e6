// Package surface renders a raster somewhere a person can look at it and
// blocks until that person dismisses it.
package surface

import (
	"context"
	"image"
)

// Display shows img and blocks until the viewer is dismissed or ctx is
// done. Dismissal is not an error.
type Display interface {
	Show(ctx context.Context, img image.Image) error
}
