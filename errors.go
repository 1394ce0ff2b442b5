package epdsend

import "errors"

var (
	// ErrEmptySource reports a source image with a zero dimension.
	ErrEmptySource = errors.New("epdsend: source image has no pixels")

	// ErrBadTarget reports a non-positive target width or height.
	ErrBadTarget = errors.New("epdsend: target dimensions must be positive")

	// ErrUnsupportedFormat reports a format tag outside Formats. It is
	// returned before any image work happens.
	ErrUnsupportedFormat = errors.New("epdsend: unsupported format")
)
