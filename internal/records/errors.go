package records

import "errors"

var (
	ErrMissingFile        = errors.New("missing file")
	ErrMalformedMetadata  = errors.New("malformed metadata")
	ErrMalformedPixelData = errors.New("malformed pixel data")
	ErrShapeMismatch      = errors.New("shape mismatch")
)
