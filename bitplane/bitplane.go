// Package bitplane packs boolean rasters into the dense format e-paper
// controllers consume: row-major, MSB-first, each row padded out to a
// whole byte.
package bitplane

import "fmt"

// RowBytes is the number of bytes one packed row of the given width occupies.
func RowBytes(width int) int {
	return (width + 7) / 8
}

// PlaneBytes is the packed size of a whole width×height plane.
func PlaneBytes(width, height int) int {
	return RowBytes(width) * height
}

// Pack serializes set over a width×height grid. Rows are emitted top to
// bottom, pixels left to right, accumulated MSB-first. A row whose width is
// not a multiple of 8 ends in a partial byte with its low bits zeroed; rows
// never share a byte.
func Pack(width, height int, set func(x, y int) bool) []byte {
	out := make([]byte, 0, PlaneBytes(width, height))

	for y := 0; y < height; y++ {
		var b byte
		bits := 0
		for x := 0; x < width; x++ {
			b <<= 1
			if set(x, y) {
				b |= 1
			}
			bits++
			if bits == 8 {
				out = append(out, b)
				b, bits = 0, 0
			}
		}
		if bits > 0 {
			// Shift the partial row into the high bits, zero-fill the rest.
			out = append(out, b<<(8-bits))
		}
	}

	return out
}

// Plane is a read-only view over packed plane bytes.
type Plane struct {
	width, height int
	data          []byte
}

// New wraps data as a width×height plane. The length must match the packed
// size exactly.
func New(width, height int, data []byte) (*Plane, error) {
	if want := PlaneBytes(width, height); len(data) != want {
		return nil, fmt.Errorf("bitplane: %d bytes for a %dx%d plane, want %d", len(data), width, height, want)
	}
	return &Plane{width: width, height: height, data: data}, nil
}

func (p *Plane) Width() int  { return p.width }
func (p *Plane) Height() int { return p.height }

// At reports the bit at (x, y).
func (p *Plane) At(x, y int) bool {
	return p.data[y*RowBytes(p.width)+x/8]&(0x80>>(x%8)) != 0
}
