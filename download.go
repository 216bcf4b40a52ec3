package coverpick

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DownloadOpts configures an image download.
type DownloadOpts struct {
	MaxBytes  int64         // max response body size (default: 8MB)
	MinBytes  int           // reject if smaller (default: 0)
	Timeout   time.Duration // per-request timeout (default: 10s)
	UserAgent string
}

const (
	defaultMaxBytes = 8 << 20 // 8MB
	defaultTimeout  = 10 * time.Second
	maxRedirects    = 3
)

var errTooSmall = errors.New("image smaller than minimum size")

// DownloadResult holds downloaded image data.
type DownloadResult struct {
	Data     []byte
	MIMEType string
}

// Download fetches an image. data: URLs are decoded in place. Non-200
// responses and non-image content types are errors.
func Download(ctx context.Context, client *http.Client, rawURL string, opts DownloadOpts) (*DownloadResult, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	if isDataURL(rawURL) {
		data, mimeType, err := DecodeDataURL(rawURL)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(mimeType, "image/") {
			return nil, fmt.Errorf("download: data URL type %q is not an image", mimeType)
		}
		if len(data) < opts.MinBytes {
			return nil, errTooSmall
		}
		return &DownloadResult{Data: data, MIMEType: mimeType}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}

	resp, err := limitRedirects(clientOrDefault(client)).Do(req) //nolint:gosec // URL comes from a search provider
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: status %d", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	// Strip MIME parameters: "image/jpeg; charset=utf-8" -> "image/jpeg"
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("download: content type %q is not an image", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, opts.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	if len(data) < opts.MinBytes {
		return nil, errTooSmall
	}
	return &DownloadResult{Data: data, MIMEType: ct}, nil
}

// limitRedirects returns a shallow copy of c that stops after maxRedirects hops.
func limitRedirects(c *http.Client) *http.Client {
	cp := *c
	cp.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return errors.New("too many redirects")
		}
		return nil
	}
	return &cp
}
