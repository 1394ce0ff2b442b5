// Package trilevel classifies RGB pixels into the classes a
// black/white(/red) e-paper panel can actually show.
package trilevel

import (
	"image"
	"image/color"
)

// Default thresholds, matching the panel agent's expectations for typical
// photos and rendered text.
const (
	DefaultBlack    uint8 = 128
	DefaultRed      uint8 = 160
	DefaultRedDelta uint8 = 60
)

// Thresholds configures pixel classification. The zero value classifies
// nothing as black (no luminance is below 0) and any pixel whose red channel
// matches or exceeds the other two as red; use Defaults as a starting point.
type Thresholds struct {
	// Black is the luminance below which a pixel reads as black.
	Black uint8
	// Red is the minimum red channel value for a red pixel.
	Red uint8
	// RedDelta is how far red must exceed the larger of green and blue.
	RedDelta uint8
}

// Defaults returns the documented default thresholds.
func Defaults() Thresholds {
	return Thresholds{Black: DefaultBlack, Red: DefaultRed, RedDelta: DefaultRedDelta}
}

// IsBlack reports whether c reads as black: luminance strictly below the
// Black threshold. Luminance is 0.299r + 0.587g + 0.114b truncated to an
// int, the one rounding rule used everywhere (packing and previews must
// agree bit for bit).
func (t Thresholds) IsBlack(c color.Color) bool {
	r, g, b := rgb8(c)
	return luminance(r, g, b) < int(t.Black)
}

// IsRed reports whether c reads as red: the red channel at or above the Red
// threshold and at least RedDelta above the larger of green and blue.
func (t Thresholds) IsRed(c color.Color) bool {
	r, g, b := rgb8(c)
	m := g
	if b > m {
		m = b
	}
	return r >= t.Red && int(r)-int(m) >= int(t.RedDelta)
}

func luminance(r, g, b uint8) int {
	return int(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
}

func rgb8(c color.Color) (r, g, b uint8) {
	r16, g16, b16, _ := c.RGBA()
	return uint8(r16 >> 8), uint8(g16 >> 8), uint8(b16 >> 8)
}

// Palette indices for Model.
const (
	White uint8 = iota
	Black
	Red
)

// Model is the white/black/red palette of the panel.
func Model() color.Palette {
	return color.Palette{
		color.White,
		color.Black,
		color.RGBA{R: 0xff, A: 0xff},
	}
}

// Index resolves a single pixel to its Model palette index. Red wins over
// black, mirroring how the planes are composed.
func (t Thresholds) Index(c color.Color, withRed bool) uint8 {
	if withRed && t.IsRed(c) {
		return Red
	}
	if t.IsBlack(c) {
		return Black
	}
	return White
}

// Preview renders the class every pixel of img resolves to. It is a
// diagnostic view built from the same predicates as the packed planes, so it
// can never disagree with them. withRed false limits the preview to
// black/white, as a bilevel panel would show it.
func Preview(img image.Image, t Thresholds, withRed bool) *image.Paletted {
	dst := image.NewPaletted(img.Bounds(), Model())
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			dst.SetColorIndex(x, y, t.Index(img.At(x, y), withRed))
		}
	}
	return dst
}
