package epdsend

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/KononK/resize"
)

// Fit maps src onto an exactly width×height frame without distortion: the
// largest centered window of src with the target aspect ratio is cropped
// out, then resampled with a Lanczos filter. If src already has the target
// aspect ratio the crop is a no-op, and if it is already the target size it
// is returned untouched.
func Fit(src image.Image, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadTarget, width, height)
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrEmptySource
	}

	crop := cropRect(b, width, height)
	if crop != b {
		window := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
		draw.Draw(window, window.Bounds(), src, crop.Min, draw.Src)
		src = window
	}
	if crop.Dx() == width && crop.Dy() == height {
		return src, nil
	}

	return resize.Resize(uint(width), uint(height), src, resize.Lanczos3), nil
}

// cropRect is the largest rectangle centered in b with a w:h aspect ratio.
// Cross-multiplied so no floats are involved; an odd margin leaves the extra
// pixel on the trailing edge. The crop never collapses below one pixel, so a
// source far more elongated than the target still yields a frame to resample.
func cropRect(b image.Rectangle, w, h int) image.Rectangle {
	sw, sh := b.Dx(), b.Dy()
	switch {
	case sw*h > sh*w:
		// Source too wide, trim the sides.
		cw := max(sh*w/h, 1)
		b.Min.X += (sw - cw) / 2
		b.Max.X = b.Min.X + cw
	case sw*h < sh*w:
		// Source too tall, trim top and bottom.
		ch := max(sw*h/w, 1)
		b.Min.Y += (sh - ch) / 2
		b.Max.Y = b.Min.Y + ch
	}
	return b
}
