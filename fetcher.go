package docsync

import "context"

// Fetcher retrieves raw content from URLs.
type Fetcher interface {
	// Fetch performs a single GET request and returns the response body.
	// Non-2xx responses are reported as *StatusError.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (body string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// HostLimiter provides per-host rate limiting.
type HostLimiter interface {
	// Wait blocks until the rate limit allows a request to the host.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, host string) error
}
