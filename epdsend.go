// Package epdsend converts raster images into the bit-plane payloads
// black/white(/red) e-paper panels consume, and ships them to a remote
// panel agent over HTTP (see the agent package).
//
// The pipeline is Fit → classify → pack: the source image is cropped and
// resampled to the panel size without distortion, every pixel is resolved
// to a palette class with trilevel.Thresholds, and the per-class bits are
// packed into the panel's native plane layout with the bitplane package.
package epdsend

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"slices"

	"golang.org/x/exp/maps"

	"github.com/epd-tools/epdsend/bitplane"
	"github.com/epd-tools/epdsend/trilevel"
)

// Format selects the plane layout of a payload.
type Format string

const (
	// FormatBW is a single black plane.
	FormatBW Format = "bw"
	// Format3C is a black plane followed by a red plane. No bit is ever set
	// in both.
	Format3C Format = "3c"
)

var planeCount = map[Format]int{
	FormatBW: 1,
	Format3C: 2,
}

// Formats lists the supported format tags, sorted.
func Formats() []Format {
	fs := maps.Keys(planeCount)
	slices.Sort(fs)
	return fs
}

// Options configures Encode.
type Options struct {
	// Width, Height are the panel dimensions in pixels.
	Width, Height int
	// Format selects the plane layout.
	Format Format
	// Thresholds drives pixel classification. nil means
	// trilevel.Defaults(); an explicit zero value is honored as-is.
	Thresholds *trilevel.Thresholds
	// PreviewTo, when non-nil, receives a PNG showing the class every pixel
	// resolved to. Diagnostic only: it is written after the payload bytes
	// are final and never feeds back into them.
	PreviewTo io.Writer
}

// Payload is an encoded frame ready for upload.
type Payload struct {
	Width, Height int
	Format        Format
	// Data is the concatenated plane bytes: the black plane first, then for
	// Format3C the red plane.
	Data []byte
}

// PlaneSize is the byte length of each individual plane in Data.
func (p *Payload) PlaneSize() int {
	return bitplane.PlaneBytes(p.Width, p.Height)
}

// Encode fits src to the target size, classifies every pixel and packs the
// planes for the requested format. The format is validated before any image
// work happens.
func Encode(src image.Image, opts Options) (*Payload, error) {
	n, ok := planeCount[opts.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedFormat, opts.Format, Formats())
	}

	thr := trilevel.Defaults()
	if opts.Thresholds != nil {
		thr = *opts.Thresholds
	}

	frame, err := Fit(src, opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}

	min := frame.Bounds().Min
	black := func(x, y int) bool { return thr.IsBlack(frame.At(min.X+x, min.Y+y)) }
	red := func(x, y int) bool { return thr.IsRed(frame.At(min.X+x, min.Y+y)) }

	var planes [][]byte
	switch opts.Format {
	case FormatBW:
		planes = [][]byte{bitplane.Pack(opts.Width, opts.Height, black)}
	case Format3C:
		// The black plane masks out red pixels, so the planes are mutually
		// exclusive by construction.
		planes = [][]byte{
			bitplane.Pack(opts.Width, opts.Height, func(x, y int) bool { return black(x, y) && !red(x, y) }),
			bitplane.Pack(opts.Width, opts.Height, red),
		}
	}

	want := bitplane.PlaneBytes(opts.Width, opts.Height)
	data := make([]byte, 0, n*want)
	for _, plane := range planes {
		if len(plane) != want {
			return nil, fmt.Errorf("epdsend: packed plane is %d bytes, want %d", len(plane), want)
		}
		data = append(data, plane...)
	}

	p := &Payload{Width: opts.Width, Height: opts.Height, Format: opts.Format, Data: data}

	if opts.PreviewTo != nil {
		pv := trilevel.Preview(frame, thr, opts.Format == Format3C)
		if err := png.Encode(opts.PreviewTo, pv); err != nil {
			return nil, fmt.Errorf("epdsend: write preview: %w", err)
		}
	}

	return p, nil
}
