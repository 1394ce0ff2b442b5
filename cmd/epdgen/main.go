package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/epd-tools/epdsend/trilevel"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `%s [options]

Generate sample test cards sized for an e-paper panel:
a black/white card and a black/white/red card.

`, os.Args[0])
		flag.PrintDefaults()
	}

	var (
		out    = flag.String("o", "images", "Output directory.")
		width  = flag.Int("W", 128, "Card width in pixels.")
		height = flag.Int("H", 296, "Card height in pixels.")
	)
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(-1)
	}

	if err := run(*out, *width, *height); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(-1)
	}
}

func run(out string, width, height int) error {
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	ft, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return err
	}

	bwPath := filepath.Join(out, "sample_bw.png")
	if err := writePNG(bwPath, bwCard(ft, width, height)); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%dx%d)\n", bwPath, width, height)

	c3Path := filepath.Join(out, "sample_3c.png")
	if err := writePNG(c3Path, triCard(ft, width, height)); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%dx%d)\n", c3Path, width, height)
	return nil
}

// bwCard is a bilevel test card: border, hatch lines, centered text and a
// block pattern. It is classified down to pure black/white so the packed
// plane is predictable.
func bwCard(ft *opentype.Font, width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	outline(img, img.Bounds(), color.Black)
	for y := 7; y < height; y += 14 {
		fill(img, image.Rect(1, y, width-1, y+1), color.Gray{Y: 200})
	}

	face, err := faceFor(ft, max(12, width/6))
	if err == nil {
		centerText(img, face, "HELLO BW", height/2, color.Black)
	}

	for i := 0; i < 8; i++ {
		x0 := 6 + i*(width-12)/8
		fill(img, image.Rect(x0, height-30, x0+6, height-10), color.Black)
	}

	// The gray hatch lines threshold away, text and blocks stay black.
	return trilevel.Preview(img, trilevel.Defaults(), false)
}

// triCard is a tri-color test card with black and red regions.
func triCard(ft *opentype.Font, width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	red := color.RGBA{R: 220, G: 10, B: 10, A: 0xff}

	bandH := max(18, height/16)
	fill(img, image.Rect(0, 0, width, bandH), color.Black)

	if face, err := faceFor(ft, max(18, width/6)); err == nil {
		centerText(img, face, "Hello", bandH+30, color.Black)
	}
	if face, err := faceFor(ft, max(22, width/5)); err == nil {
		centerText(img, face, "RED", bandH+70, red)
	}

	r := min(14, width/12)
	for i := 0; i < 3; i++ {
		disc(img, width*(2+3*i)/10, height*3/4, r, red)
	}

	block := max(14, width/10)
	outline(img, image.Rect(width-block-6, height-block-6, width-6, height-6), color.Black)

	return img
}

func faceFor(ft *opentype.Font, size int) (font.Face, error) {
	return opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func centerText(dst draw.Image, face font.Face, text string, baseline int, col color.Color) {
	w := font.MeasureString(face, text).Ceil()
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P((dst.Bounds().Dx()-w)/2, baseline),
	}
	d.DrawString(text)
}

func fill(dst draw.Image, r image.Rectangle, col color.Color) {
	draw.Draw(dst, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func outline(dst draw.Image, r image.Rectangle, col color.Color) {
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), col)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), col)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), col)
	fill(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), col)
}

func disc(dst draw.Image, cx, cy, r int, col color.Color) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				dst.Set(cx+x, cy+y, col)
			}
		}
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
