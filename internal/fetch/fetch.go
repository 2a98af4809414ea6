// Package fetch downloads release assets into memory.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantmind-br/binstall/internal/ui"
)

const (
	// DefaultMaxBytes caps a single download
	DefaultMaxBytes = 512 << 20
	// DefaultUserAgent is sent when no User-Agent is configured
	DefaultUserAgent = "binstall"
)

// Fetcher retrieves the bytes behind a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetchFunc adapts a plain function to Fetcher
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// Fetch calls f
func (f FetchFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// Options configures a Downloader
type Options struct {
	UserAgent string
	MaxBytes  int64
	// Progress receives a download bar when non-nil
	Progress io.Writer
	Client   *http.Client
}

// Downloader performs single-attempt HTTP GETs
type Downloader struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	progress  io.Writer
	logger    *zerolog.Logger
}

// NewDownloader creates a downloader
func NewDownloader(opts Options, logger *zerolog.Logger) *Downloader {
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: 10 * time.Minute,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				// Release assets redirect to object storage
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Downloader{
		client:    client,
		userAgent: userAgent,
		maxBytes:  maxBytes,
		progress:  opts.Progress,
		logger:    logger,
	}
}

// Fetch downloads url and returns its body
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if resp.ContentLength > d.maxBytes {
		return nil, fmt.Errorf("asset is %d bytes, limit is %d", resp.ContentLength, d.maxBytes)
	}

	var body io.Reader = resp.Body
	if d.progress != nil {
		pr := ui.NewProgressReader(resp.Body, d.progress, resp.ContentLength, "downloading")
		defer pr.Close()
		body = pr
	}

	data, err := io.ReadAll(io.LimitReader(body, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("asset exceeds download limit of %d bytes", d.maxBytes)
	}

	d.logger.Debug().
		Str("url", url).
		Int("bytes", len(data)).
		Msg("download complete")

	return data, nil
}
