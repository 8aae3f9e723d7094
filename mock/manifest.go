package mock

import (
	"context"
	"time"

	"github.com/fwojciec/docsync"
)

var _ docsync.ManifestLoader = (*ManifestLoader)(nil)

// ManifestLoader is a mock implementation of docsync.ManifestLoader.
type ManifestLoader struct {
	LoadFn func(ctx context.Context) (*docsync.Manifest, docsync.ManifestSource, error)
}

func (l *ManifestLoader) Load(ctx context.Context) (*docsync.Manifest, docsync.ManifestSource, error) {
	return l.LoadFn(ctx)
}

var _ docsync.ManifestValidator = (*ManifestValidator)(nil)

// ManifestValidator is a mock implementation of docsync.ManifestValidator.
type ManifestValidator struct {
	ValidateManifestFn func(data []byte) error
}

func (v *ManifestValidator) ValidateManifest(data []byte) error {
	return v.ValidateManifestFn(data)
}

var _ docsync.ManifestCache = (*ManifestCache)(nil)

// ManifestCache is a mock implementation of docsync.ManifestCache.
type ManifestCache struct {
	ReadManifestFn  func(ctx context.Context) (*docsync.CachedManifest, error)
	WriteManifestFn func(ctx context.Context, data []byte, fetchedAt time.Time) error
}

func (c *ManifestCache) ReadManifest(ctx context.Context) (*docsync.CachedManifest, error) {
	return c.ReadManifestFn(ctx)
}

func (c *ManifestCache) WriteManifest(ctx context.Context, data []byte, fetchedAt time.Time) error {
	return c.WriteManifestFn(ctx, data, fetchedAt)
}
