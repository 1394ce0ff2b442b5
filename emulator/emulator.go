// Package emulator implements enough of a panel agent's HTTP surface to
// exercise uploads without hardware. It validates requests the way the
// device firmware does (size, format, black/red overlap) and keeps the
// decoded frame in memory so tests and the epdemu tool can inspect it.
package emulator

import (
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/epd-tools/epdsend/bitplane"
	"github.com/epd-tools/epdsend/trilevel"
)

// Panel is an in-memory stand-in for the physical display.
type Panel struct {
	width, height int

	// OnFrame, when set, is called with a snapshot of the panel after every
	// accepted upload. Set it before serving.
	OnFrame func(*image.Paletted)

	mu      sync.Mutex
	img     *image.Paletted
	uploads int
}

// NewPanel returns an all-white panel of the given size.
func NewPanel(width, height int) *Panel {
	return &Panel{
		width:  width,
		height: height,
		img:    image.NewPaletted(image.Rect(0, 0, width, height), trilevel.Model()),
	}
}

// Frame is a snapshot of what the panel currently shows.
func (p *Panel) Frame() *image.Paletted {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

func (p *Panel) snapshot() *image.Paletted {
	cp := *p.img
	cp.Pix = append([]uint8(nil), p.img.Pix...)
	return &cp
}

// Uploads is the number of frames accepted so far.
func (p *Panel) Uploads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uploads
}

// draw paints a decoded frame centered on the panel, the way the firmware
// positions its update window. red may be nil for bilevel frames.
func (p *Panel) draw(black, red *bitplane.Plane) *image.Paletted {
	p.mu.Lock()
	defer p.mu.Unlock()

	rx := (p.width - black.Width()) / 2
	ry := (p.height - black.Height()) / 2
	for y := 0; y < black.Height(); y++ {
		for x := 0; x < black.Width(); x++ {
			idx := trilevel.White
			switch {
			case red != nil && red.At(x, y):
				idx = trilevel.Red
			case black.At(x, y):
				idx = trilevel.Black
			}
			p.img.SetColorIndex(rx+x, ry+y, idx)
		}
	}
	p.uploads++

	return p.snapshot()
}

func (p *Panel) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.img.Pix {
		p.img.Pix[i] = trilevel.White
	}
}

// Handler serves the agent HTTP surface for p:
//
//	POST /image (alias /img)  upload a frame
//	POST /clear (also GET)    blank the panel
//	GET  /status              panel dimensions and upload count
//	GET  /frame.png           current frame as PNG
func Handler(p *Panel) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/image", p.handleImage).Methods(http.MethodPost)
	r.HandleFunc("/img", p.handleImage).Methods(http.MethodPost)
	r.HandleFunc("/clear", p.handleClear).Methods(http.MethodPost, http.MethodGet)
	r.HandleFunc("/status", p.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/frame.png", p.handleFrame).Methods(http.MethodGet)
	return r
}

// uploadBody is the agent wire object. Data stays a string here so a bad
// base64 payload is reported distinctly from bad JSON.
type uploadBody struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Data      string `json:"data"`
	ForceFull bool   `json:"forceFull"`
}

func (p *Panel) handleImage(w http.ResponseWriter, r *http.Request) {
	var req uploadBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid json")
		return
	}
	if req.Width <= 0 || req.Height <= 0 || req.Data == "" {
		writeError(w, "missing fields")
		return
	}
	if req.Width > p.width || req.Height > p.height {
		writeError(w, "image larger than panel")
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		writeError(w, "base64 decode failed")
		return
	}

	planeLen := bitplane.PlaneBytes(req.Width, req.Height)
	var black, red *bitplane.Plane
	switch req.Format {
	case "bw":
		if len(data) < planeLen {
			writeError(w, "short data")
			return
		}
		black, err = bitplane.New(req.Width, req.Height, data[:planeLen])
	case "3c":
		if len(data) < 2*planeLen {
			writeError(w, "short data")
			return
		}
		// The firmware treats overlapping black/red bits as a corrupt upload.
		for i := 0; i < planeLen; i++ {
			if data[i]&data[planeLen+i] != 0 {
				writeError(w, "overlapping black and red bits")
				return
			}
		}
		if black, err = bitplane.New(req.Width, req.Height, data[:planeLen]); err == nil {
			red, err = bitplane.New(req.Width, req.Height, data[planeLen:2*planeLen])
		}
	default:
		writeError(w, "unsupported format")
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	frame := p.draw(black, red)
	if p.OnFrame != nil {
		p.OnFrame(frame)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"width":  req.Width,
		"height": req.Height,
		"format": req.Format,
	})
}

func (p *Panel) handleClear(w http.ResponseWriter, r *http.Request) {
	p.clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (p *Panel) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"width":   p.width,
		"height":  p.height,
		"uploads": p.Uploads(),
	})
}

func (p *Panel) handleFrame(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	_ = png.Encode(w, p.Frame())
}

func writeError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
