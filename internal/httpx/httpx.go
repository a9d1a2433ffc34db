package httpx

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// DefaultMaxBodyBytes caps feed documents at 64 MiB.
const DefaultMaxBodyBytes int64 = 64 << 20

// HTTPError carries status/body for non-2xx responses.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 900))
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// Options tunes a single GET.
type Options struct {
	// Header is added to the request (e.g. Authorization).
	Header http.Header
	// MaxBodyBytes limits the decoded body; <=0 uses DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Get performs one GET request and returns the decoded body.
// Brotli and gzip responses are decoded; there is no retry, callers re-run the whole operation.
func Get(ctx context.Context, client *http.Client, url string, opts Options) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	limit := opts.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpx: build request: %w", err)
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	// Setting Accept-Encoding disables the transport's transparent gzip, so both are decoded here.
	req.Header.Set("Accept-Encoding", "br, gzip")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpx: GET %s: %w", url, err)
	}

	raw, err := readAndClose(resp.Body, limit)
	if err != nil {
		return nil, fmt.Errorf("httpx: read body: %w", err)
	}

	body, err := Decode(resp.Header.Get("Content-Encoding"), raw, limit)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       body,
		}
	}
	return body, nil
}

// Decode undoes a Content-Encoding. Unknown or empty encodings pass through.
func Decode(encoding string, body []byte, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	var r io.Reader
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "br":
		r = brotli.NewReader(bytes.NewReader(body))
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("httpx: gzip: %w", err)
		}
		defer zr.Close()
		r = zr
	default:
		return body, nil
	}

	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("httpx: decode %s: %w", encoding, err)
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("httpx: decoded body exceeds %d bytes", limit)
	}
	return out, nil
}

func readAndClose(rc io.ReadCloser, limit int64) ([]byte, error) {
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("body exceeds %d bytes", limit)
	}
	return b, nil
}
