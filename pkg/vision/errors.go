package vision

import "errors"

var (
	// ErrEmptyImage is returned when a frame has no pixels.
	ErrEmptyImage = errors.New("vision: empty image")

	// ErrSizeMismatch is returned when a frame does not match the rectifier's size.
	ErrSizeMismatch = errors.New("vision: image size mismatch")

	// ErrDegenerateQuad is returned when the calibration points cannot define a homography.
	ErrDegenerateQuad = errors.New("vision: degenerate perspective quadrilateral")
)
