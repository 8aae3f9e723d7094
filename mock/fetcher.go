package mock

import (
	"context"

	"github.com/fwojciec/docsync"
)

var _ docsync.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of docsync.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ docsync.HostLimiter = (*HostLimiter)(nil)

// HostLimiter is a mock implementation of docsync.HostLimiter.
type HostLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	return l.WaitFn(ctx, host)
}

var _ docsync.ContentFetcher = (*ContentFetcher)(nil)

// ContentFetcher is a mock implementation of docsync.ContentFetcher.
type ContentFetcher struct {
	FetchFn func(ctx context.Context, doc *docsync.DocumentSection) *docsync.DownloadResult
}

func (f *ContentFetcher) Fetch(ctx context.Context, doc *docsync.DocumentSection) *docsync.DownloadResult {
	return f.FetchFn(ctx, doc)
}
