package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"time"

	"github.com/epd-tools/epdsend"
	"github.com/epd-tools/epdsend/agent"
	"github.com/epd-tools/epdsend/trilevel"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `%s [options]

Convert an image to e-paper bit planes and upload it to a panel agent.

`, os.Args[0])
		flag.PrintDefaults()
	}

	var (
		file      = flag.String("f", "", "Input image (PNG/JPEG/GIF).")
		url       = flag.String("u", "http://192.168.4.1/image", "Panel agent /image endpoint.")
		width     = flag.Int("W", 128, "Target width in pixels.")
		height    = flag.Int("H", 296, "Target height in pixels.")
		format    = flag.String("F", "3c", "Plane layout: bw or 3c.")
		forceFull = flag.Bool("force-full", false, "Ask the panel for a full (non-partial) refresh.")
		bwThr     = flag.Int("bw-threshold", int(trilevel.DefaultBlack), "Luminance below this is black (0-255).")
		autoBW    = flag.Bool("auto-bw", false, "Derive the black threshold from the image with Otsu's method (overrides -bw-threshold).")
		redThr    = flag.Int("red-threshold", int(trilevel.DefaultRed), "Red channel at or above this may be red (0-255).")
		redDelta  = flag.Int("red-delta", int(trilevel.DefaultRedDelta), "How far red must exceed the other channels (0-255).")
		preview   = flag.String("preview", "", "Write a PNG preview of the classified pixels to this file.")
		timeout   = flag.Duration("timeout", 30*time.Second, "Upload timeout.")
	)
	flag.Parse()

	if *file == "" || flag.NArg() != 0 {
		flag.Usage()
		os.Exit(-1)
	}

	err := run(sendFlags{
		file:      *file,
		url:       *url,
		width:     *width,
		height:    *height,
		format:    epdsend.Format(*format),
		forceFull: *forceFull,
		bwThr:     *bwThr,
		autoBW:    *autoBW,
		redThr:    *redThr,
		redDelta:  *redDelta,
		preview:   *preview,
		timeout:   *timeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(-1)
	}
}

type sendFlags struct {
	file      string
	url       string
	width     int
	height    int
	format    epdsend.Format
	forceFull bool
	bwThr     int
	autoBW    bool
	redThr    int
	redDelta  int
	preview   string
	timeout   time.Duration
}

func run(flags sendFlags) error {
	thr, err := thresholds(flags)
	if err != nil {
		return err
	}

	f, err := os.Open(flags.file)
	if err != nil {
		return err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", flags.file, err)
	}

	opts := epdsend.Options{
		Width:      flags.width,
		Height:     flags.height,
		Format:     flags.format,
		Thresholds: &thr,
	}
	if flags.autoBW {
		opts.Thresholds.Black = trilevel.OtsuThreshold(src)
		fmt.Printf("Otsu black threshold: %d\n", opts.Thresholds.Black)
	}
	if flags.preview != "" {
		pv, err := os.Create(flags.preview)
		if err != nil {
			return err
		}
		defer pv.Close()
		opts.PreviewTo = pv
	}

	payload, err := epdsend.Encode(src, opts)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	planes := len(payload.Data) / payload.PlaneSize()
	fmt.Printf("Prepared %d plane(s), total %d bytes\n", planes, len(payload.Data))

	client, err := agent.New(flags.url, agent.WithTimeout(flags.timeout))
	if err != nil {
		return err
	}

	fmt.Printf("Uploading to %s\n", flags.url)
	resp, err := client.Upload(context.Background(), payload, flags.forceFull)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	fmt.Printf("Upload OK: %s\n", strings.TrimSpace(string(resp.Body)))
	return nil
}

func thresholds(flags sendFlags) (trilevel.Thresholds, error) {
	for name, v := range map[string]int{
		"bw-threshold":  flags.bwThr,
		"red-threshold": flags.redThr,
		"red-delta":     flags.redDelta,
	} {
		if v < 0 || v > 255 {
			return trilevel.Thresholds{}, errors.New("-" + name + " must be in 0-255")
		}
	}
	return trilevel.Thresholds{
		Black:    uint8(flags.bwThr),
		Red:      uint8(flags.redThr),
		RedDelta: uint8(flags.redDelta),
	}, nil
}
