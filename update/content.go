package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/docsync"
)

// DefaultFetchTimeout bounds each individual document request.
const DefaultFetchTimeout = 30 * time.Second

// Ensure ContentFetcher implements docsync.ContentFetcher at compile time.
var _ docsync.ContentFetcher = (*ContentFetcher)(nil)

// ContentFetcher downloads one document's markdown with timeout, retry and
// transformation. Failures are reported in the result, never returned.
type ContentFetcher struct {
	Fetcher     docsync.Fetcher
	Transformer docsync.Transformer

	// Limiter, when set, throttles requests per host.
	Limiter docsync.HostLimiter

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// NewContentFetcher returns a ContentFetcher with the default timeout and
// retry policy.
func NewContentFetcher(fetcher docsync.Fetcher, transformer docsync.Transformer) *ContentFetcher {
	return &ContentFetcher{
		Fetcher:     fetcher,
		Transformer: transformer,
		Timeout:     DefaultFetchTimeout,
		MaxRetries:  DefaultMaxRetries,
		RetryDelay:  DefaultRetryDelay,
		Logger:      slog.New(slog.DiscardHandler),
	}
}

// Fetch retrieves doc.URL + ".md" and transforms it to canonical markdown.
func (f *ContentFetcher) Fetch(ctx context.Context, doc *docsync.DocumentSection) *docsync.DownloadResult {
	target := doc.ContentURL()
	result := &docsync.DownloadResult{
		Filename: doc.Filename,
		URL:      target,
	}

	logger := f.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	onRetry := func(url string, retry int, err error, delay time.Duration) {
		logger.Debug("retrying document fetch", "filename", doc.Filename, "url", url, "retry", retry, "delay", delay, "err", err)
	}

	body, retries, err := FetchWithRetry(ctx, target, f.fetchOnce, onRetry, BackoffDelays(f.RetryDelay, f.MaxRetries))
	result.Retries = retries
	if err != nil {
		result.Error = f.describeFetchError(err, target)
		return result
	}

	content, err := f.Transformer.Transform(body, doc.URL)
	if err != nil {
		if docsync.ErrorCode(err) == docsync.EINVALID && strings.TrimSpace(body) == "" {
			result.Error = fmt.Sprintf("empty content for %s", target)
		} else {
			result.Error = fmt.Sprintf("transform %s: %s", doc.Filename, describe(err))
		}
		return result
	}

	result.Success = true
	result.Content = content
	return result
}

// fetchOnce performs a single attempt bounded by the per-request timeout.
func (f *ContentFetcher) fetchOnce(ctx context.Context, target string) (string, error) {
	if f.Limiter != nil {
		if u, err := url.Parse(target); err == nil {
			if err := f.Limiter.Wait(ctx, u.Host); err != nil {
				return "", err
			}
		}
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	return f.Fetcher.Fetch(ctx, target)
}

// describeFetchError renders a distinct message per failure class.
func (f *ContentFetcher) describeFetchError(err error, target string) string {
	var statusErr *docsync.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Sprintf("timeout after %s fetching %s", f.Timeout, target)
	}

	if errors.Is(err, context.Canceled) {
		return fmt.Sprintf("canceled fetching %s", target)
	}

	if docsync.ErrorCode(err) != docsync.EINTERNAL {
		return docsync.ErrorMessage(err)
	}

	return fmt.Sprintf("network error fetching %s: %s", target, err)
}
