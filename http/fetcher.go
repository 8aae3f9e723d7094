// Package http provides an HTTP-based implementation of docsync.Fetcher
// for retrieving manifests and raw markdown documents.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/docsync"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent identifies docsync to documentation hosts.
const DefaultUserAgent = "docsync/1.0 (+https://github.com/fwojciec/docsync)"

// maxBodySize caps response bodies read into memory.
const maxBodySize = 16 << 20

// Ensure Fetcher implements docsync.Fetcher at compile time.
var _ docsync.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves content from URLs using plain HTTP GET requests.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for each HTTP request.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Timeout returns the per-request timeout.
func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}

// Fetch retrieves the body at url. Non-2xx responses return *docsync.StatusError.
// Malformed URLs and oversized bodies return EINVALID.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", docsync.Errorf(docsync.EINVALID, "invalid url %q: %s", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/markdown, text/plain;q=0.9, application/json;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &docsync.StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return "", err
	}
	if len(body) > maxBodySize {
		return "", docsync.Errorf(docsync.EINVALID, "response from %s exceeds %d bytes", url, maxBodySize)
	}

	return string(body), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
