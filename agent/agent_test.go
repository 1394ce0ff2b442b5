package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/epd-tools/epdsend"
)

func TestUploadSendsWireFormat(t *testing.T) {
	var got struct {
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Format    string `json:"format"`
		Data      []byte `json:"data"`
		ForceFull bool   `json:"forceFull"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method=%s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content-type=%q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	// 10x10 all-white bw frame: 10 rows of 2 bytes, no bits set.
	p := &epdsend.Payload{Width: 10, Height: 10, Format: epdsend.FormatBW, Data: make([]byte, 20)}
	resp, err := c.Upload(context.Background(), p, true)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	if got.Width != 10 || got.Height != 10 || got.Format != "bw" {
		t.Fatalf("metadata: %+v", got)
	}
	if !got.ForceFull {
		t.Error("forceFull flag was dropped")
	}
	// The data field is base64 on the wire; json decoding of []byte undoes
	// it, so this is the exact plane bytes the agent would see.
	if !bytes.Equal(got.Data, make([]byte, 20)) {
		t.Errorf("data decoded to %#x, want 20 zero bytes", got.Data)
	}
}

func TestUploadRemoteRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"panel busy"}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	p := &epdsend.Payload{Width: 8, Height: 1, Format: epdsend.FormatBW, Data: []byte{0x00}}
	_, err = c.Upload(context.Background(), p, false)
	if err == nil {
		t.Fatal("expected error for http 500")
	}

	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("want *RemoteError, got %T: %v", err, err)
	}
	if re.StatusCode != http.StatusInternalServerError {
		t.Errorf("status=%d", re.StatusCode)
	}
	if !strings.Contains(string(re.Body), "panel busy") {
		t.Errorf("body not surfaced: %q", re.Body)
	}
	if !strings.Contains(re.Error(), "panel busy") {
		t.Errorf("message does not carry the body: %q", re.Error())
	}
}

func TestUploadNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	p := &epdsend.Payload{Width: 8, Height: 1, Format: epdsend.FormatBW, Data: []byte{0x00}}
	if _, err := c.Upload(context.Background(), p, false); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestUploadHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() { close(release); srv.Close() }()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	p := &epdsend.Payload{Width: 8, Height: 1, Format: epdsend.FormatBW, Data: []byte{0x00}}
	if _, err := c.Upload(ctx, p, false); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty URL")
	}
}
