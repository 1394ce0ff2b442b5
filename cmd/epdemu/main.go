package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/epd-tools/epdsend/emulator"
)

var (
	reqlog   = log.New(os.Stdout, "[req] ", log.Ldate|log.Ltime)
	errorlog = log.New(os.Stderr, "[error] ", log.Ldate|log.Ltime)
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `%s [options]

Run an in-memory e-paper panel agent for testing uploads without hardware.

`, os.Args[0])
		flag.PrintDefaults()
	}

	var (
		listen = flag.String("listen", ":8080", "Address to serve the agent API on.")
		width  = flag.Int("W", 128, "Panel width in pixels.")
		height = flag.Int("H", 296, "Panel height in pixels.")
		out    = flag.String("out", "", "Directory to dump each received frame into as PNG.")
	)
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(-1)
	}

	panel := emulator.NewPanel(*width, *height)
	if *out != "" {
		if err := os.MkdirAll(*out, 0o755); err != nil {
			errorlog.Fatalf("create %s: %v", *out, err)
		}
		n := 0
		panel.OnFrame = func(frame *image.Paletted) {
			n++
			path := filepath.Join(*out, fmt.Sprintf("frame-%04d.png", n))
			if err := writePNG(path, frame); err != nil {
				errorlog.Printf("dump %s: %v", path, err)
				return
			}
			reqlog.Printf("wrote %s", path)
		}
	}

	reqlog.Printf("panel %dx%d listening on %s", *width, *height, *listen)
	if err := http.ListenAndServe(*listen, logger(emulator.Handler(panel))); err != nil {
		errorlog.Fatal(err)
	}
}

// logger logs every request the way the panel's serial console would.
func logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqlog.Printf("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
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
