package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/docsync"
)

// DefaultCacheTTL is how long a cached manifest is trusted when the remote
// manifest cannot be loaded.
const DefaultCacheTTL = 60 * time.Minute

// Ensure ManifestLoader implements docsync.ManifestLoader at compile time.
var _ docsync.ManifestLoader = (*ManifestLoader)(nil)

// ManifestLoader loads the manifest from the remote URL, falling back to a
// fresh local cache and then to the bundled snapshot.
type ManifestLoader struct {
	URL       string
	Fetcher   docsync.Fetcher
	Validator docsync.ManifestValidator
	Cache     docsync.ManifestCache
	Bundled   []byte

	CacheTTL    time.Duration
	RetryDelays []time.Duration
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewManifestLoader returns a loader with the default cache TTL and retry
// policy.
func NewManifestLoader(url string, fetcher docsync.Fetcher, validator docsync.ManifestValidator, cache docsync.ManifestCache, bundled []byte) *ManifestLoader {
	return &ManifestLoader{
		URL:         url,
		Fetcher:     fetcher,
		Validator:   validator,
		Cache:       cache,
		Bundled:     bundled,
		CacheTTL:    DefaultCacheTTL,
		RetryDelays: DefaultRetryDelays(),
		Now:         time.Now,
		Logger:      slog.New(slog.DiscardHandler),
	}
}

// Load returns the freshest valid manifest and where it came from.
// Returns EMANIFEST if the remote, cached and bundled manifests are all
// unavailable or invalid.
func (l *ManifestLoader) Load(ctx context.Context) (*docsync.Manifest, docsync.ManifestSource, error) {
	var reasons []string

	m, err := l.loadRemote(ctx)
	if err == nil {
		return m, docsync.ManifestSourceRemote, nil
	}
	reasons = append(reasons, "remote: "+describe(err))
	l.logger().Warn("remote manifest unavailable", "url", l.URL, "err", err)

	m, err = l.loadCache(ctx)
	if err == nil {
		return m, docsync.ManifestSourceCache, nil
	}
	reasons = append(reasons, "cache: "+describe(err))
	l.logger().Debug("cached manifest unusable", "err", err)

	m, err = ParseManifest(l.Bundled, l.Validator)
	if err == nil {
		return m, docsync.ManifestSourceBundled, nil
	}
	reasons = append(reasons, "bundled: "+describe(err))

	return nil, "", docsync.Errorf(docsync.EMANIFEST, "no valid manifest available (%s)", strings.Join(reasons, "; "))
}

func (l *ManifestLoader) loadRemote(ctx context.Context) (*docsync.Manifest, error) {
	if l.URL == "" || l.Fetcher == nil {
		return nil, docsync.Errorf(docsync.EINVALID, "no manifest URL configured")
	}

	onRetry := func(url string, retry int, err error, delay time.Duration) {
		l.logger().Debug("retrying manifest fetch", "url", url, "retry", retry, "delay", delay, "err", err)
	}
	body, _, err := FetchWithRetry(ctx, l.URL, l.Fetcher.Fetch, onRetry, l.RetryDelays)
	if err != nil {
		return nil, err
	}

	data := []byte(body)
	m, err := ParseManifest(data, l.Validator)
	if err != nil {
		return nil, err
	}

	if l.Cache != nil {
		if err := l.Cache.WriteManifest(ctx, data, l.now()); err != nil {
			l.logger().Warn("failed to cache manifest", "err", err)
		}
	}
	return m, nil
}

func (l *ManifestLoader) loadCache(ctx context.Context) (*docsync.Manifest, error) {
	if l.Cache == nil {
		return nil, docsync.Errorf(docsync.ENOTFOUND, "no cache configured")
	}

	cached, err := l.Cache.ReadManifest(ctx)
	if err != nil {
		return nil, err
	}

	ttl := l.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if age := l.now().Sub(cached.FetchedAt); age > ttl {
		return nil, docsync.Errorf(docsync.EINVALID, "cached manifest is stale (fetched %s ago)", age.Round(time.Second))
	}

	return ParseManifest(cached.Data, l.Validator)
}

func (l *ManifestLoader) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}

func (l *ManifestLoader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.Logger
}

// ParseManifest validates raw manifest JSON against the schema, decodes it
// and checks its invariants. Returns EINVALID on any failure.
func ParseManifest(data []byte, validator docsync.ManifestValidator) (*docsync.Manifest, error) {
	if len(data) == 0 {
		return nil, docsync.Errorf(docsync.EINVALID, "manifest is empty")
	}
	if validator != nil {
		if err := validator.ValidateManifest(data); err != nil {
			return nil, err
		}
	}

	var m docsync.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, docsync.Errorf(docsync.EINVALID, "manifest is not valid JSON: %s", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// describe returns the application message for coded errors and the raw
// error text otherwise.
func describe(err error) string {
	if docsync.ErrorCode(err) == docsync.EINTERNAL {
		return err.Error()
	}
	return docsync.ErrorMessage(err)
}
