// Package agent talks to the HTTP endpoint an e-paper panel agent exposes.
//
// The wire format is a single JSON object per upload:
//
//	{"width":128,"height":296,"format":"3c","data":"<base64 planes>","forceFull":false}
//
// One blocking POST per frame, no retries, no chunking. Anything but
// HTTP 200 is reported as a *RemoteError carrying the verbatim body.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/epd-tools/epdsend"
)

const (
	defaultTimeout = 30 * time.Second
	// Cap on response bodies kept for diagnostics.
	maxResponseBody = 1 << 20
)

// Client uploads encoded frames to one panel agent.
type Client struct {
	url       string
	http      *http.Client
	userAgent string
}

// Option mutates the client during construction.
type Option func(*Client)

// New builds a client for the agent endpoint at url,
// e.g. http://192.168.4.1/image for a panel in AP mode.
func New(url string, opts ...Option) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("agent: endpoint URL is required")
	}
	c := &Client{
		url:  url,
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	return c, nil
}

// WithHTTPClient installs a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds the whole upload, connecting included. A frame that
// cannot be delivered in time fails; it is never silently truncated.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// request mirrors the JSON body the agent expects. Data marshals as
// standard base64, which is exactly the wire encoding.
type request struct {
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Format    epdsend.Format `json:"format"`
	Data      []byte         `json:"data"`
	ForceFull bool           `json:"forceFull"`
}

// Response is a successful (HTTP 200) answer from the agent.
type Response struct {
	StatusCode int
	// Body is the raw response, usually {"status":"ok",...}.
	Body []byte
}

// RemoteError is a non-200 answer from the agent. The body travels verbatim
// so the device's own diagnostics reach the caller.
type RemoteError struct {
	StatusCode int
	Body       []byte
}

func (e *RemoteError) Error() string {
	msg := "agent: upload rejected (http " + strconv.Itoa(e.StatusCode) + ")"
	if body := strings.TrimSpace(string(e.Body)); body != "" {
		msg += ": " + body
	}
	return msg
}

// Upload sends one encoded frame. forceFull asks the panel for a full
// (non-partial) refresh. The request is issued exactly once; a failed
// upload leaves no state behind and can simply be re-run.
func (c *Client) Upload(ctx context.Context, p *epdsend.Payload, forceFull bool) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := json.Marshal(request{
		Width:     p.Width,
		Height:    p.Height,
		Format:    p.Format,
		Data:      p.Data,
		ForceFull: forceFull,
	})
	if err != nil {
		return nil, fmt.Errorf("agent: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("agent: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if ua := strings.TrimSpace(c.userAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent: upload: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("agent: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: raw}
	}
	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}
