package trilevel

import (
	"image"
	"image/color"
	"testing"
)

func rgb(r, g, b uint8) color.Color {
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

func TestIsBlack(t *testing.T) {
	thr := Defaults()

	tests := []struct {
		name string
		c    color.Color
		want bool
	}{
		{"white", rgb(255, 255, 255), false},
		{"black", rgb(0, 0, 0), true},
		{"dark gray", rgb(100, 100, 100), true},
		{"light gray", rgb(180, 180, 180), false},
		// Luminance 127 is below the threshold, 129 is not.
		{"just under", rgb(127, 127, 127), true},
		{"just over", rgb(129, 129, 129), false},
		// Pure red has luminance 76: dark enough to count as black too.
		{"pure red", rgb(255, 0, 0), true},
	}
	for _, tt := range tests {
		if got := thr.IsBlack(tt.c); got != tt.want {
			t.Errorf("%s: IsBlack=%v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsRed(t *testing.T) {
	thr := Defaults()

	tests := []struct {
		name string
		c    color.Color
		want bool
	}{
		{"pure red", rgb(255, 0, 0), true},
		{"white", rgb(255, 255, 255), false},
		{"black", rgb(0, 0, 0), false},
		{"dark red below channel threshold", rgb(159, 0, 0), false},
		{"red at channel threshold", rgb(160, 0, 0), true},
		// Delta measured against the larger of green and blue.
		{"delta exactly met", rgb(200, 140, 0), true},
		{"delta missed by one", rgb(200, 141, 0), false},
		{"blue dominates delta", rgb(200, 0, 141), false},
		{"orange-ish", rgb(255, 200, 0), false},
	}
	for _, tt := range tests {
		if got := thr.IsRed(tt.c); got != tt.want {
			t.Errorf("%s: IsRed=%v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestThresholdsAreIndependent(t *testing.T) {
	// A mid gray flips class with the Black threshold alone.
	gray := rgb(100, 100, 100)
	if !(Thresholds{Black: 128}).IsBlack(gray) {
		t.Error("gray should be black at threshold 128")
	}
	if (Thresholds{Black: 90}).IsBlack(gray) {
		t.Error("gray should not be black at threshold 90")
	}

	// Red classification ignores the Black threshold entirely.
	red := rgb(200, 10, 10)
	for _, black := range []uint8{0, 128, 255} {
		thr := Thresholds{Black: black, Red: 160, RedDelta: 60}
		if !thr.IsRed(red) {
			t.Errorf("Black=%d changed IsRed", black)
		}
	}
}

func TestZeroThresholds(t *testing.T) {
	// The zero value is degenerate but well defined: nothing is black, and
	// anything whose red channel ties or beats the others is red.
	var thr Thresholds
	if thr.IsBlack(rgb(0, 0, 0)) {
		t.Error("nothing should be black with a zero Black threshold")
	}
	if !thr.IsRed(rgb(255, 255, 255)) {
		t.Error("white ties all channels, so a zero Red/RedDelta calls it red")
	}
	if thr.IsRed(rgb(10, 20, 10)) {
		t.Error("green-dominant pixel should not be red even at zero thresholds")
	}
}

func TestIndex(t *testing.T) {
	thr := Defaults()

	// Red wins over black for pixels that satisfy both predicates.
	if got := thr.Index(rgb(255, 0, 0), true); got != Red {
		t.Errorf("pure red with red enabled: index %d, want %d", got, Red)
	}
	if got := thr.Index(rgb(255, 0, 0), false); got != Black {
		t.Errorf("pure red without red: index %d, want %d", got, Black)
	}
	if got := thr.Index(rgb(255, 255, 255), true); got != White {
		t.Errorf("white: index %d, want %d", got, White)
	}
}

func TestPreview(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, rgb(0, 0, 0))
	img.Set(1, 0, rgb(255, 255, 255))
	img.Set(2, 0, rgb(255, 0, 0))

	pv := Preview(img, Defaults(), true)
	for i, want := range []uint8{Black, White, Red} {
		if got := pv.ColorIndexAt(i, 0); got != want {
			t.Errorf("pixel %d: index %d, want %d", i, got, want)
		}
	}

	// A bilevel preview resolves the red pixel to black instead.
	pv = Preview(img, Defaults(), false)
	if got := pv.ColorIndexAt(2, 0); got != Black {
		t.Errorf("bilevel preview of red pixel: index %d, want %d", got, Black)
	}
}

func TestOtsuThreshold(t *testing.T) {
	// Two well-separated luminance populations: the split lands between them.
	img := image.NewNRGBA(image.Rect(0, 0, 2, 50))
	for y := 0; y < 50; y++ {
		img.Set(0, y, rgb(30, 30, 30))
		img.Set(1, y, rgb(220, 220, 220))
	}

	got := OtsuThreshold(img)
	if got < 30 || got >= 220 {
		t.Fatalf("threshold %d outside (30, 220)", got)
	}
}
