package fs

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/docsync"
)

// Ensure ManifestCache implements docsync.ManifestCache at compile time.
var _ docsync.ManifestCache = (*ManifestCache)(nil)

// ManifestCache stores the last fetched manifest with its fetch time.
type ManifestCache struct {
	path string
}

// NewManifestCache creates a ManifestCache at <baseDir>/cache/manifest.json.
func NewManifestCache(baseDir string) *ManifestCache {
	return &ManifestCache{path: filepath.Join(baseDir, CacheDirName, manifestFileName)}
}

// cachedManifest is the on-disk envelope.
type cachedManifest struct {
	FetchedAt time.Time       `json:"fetchedAt"`
	Manifest  json.RawMessage `json:"manifest"`
}

func (c *ManifestCache) ReadManifest(ctx context.Context) (*docsync.CachedManifest, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, docsync.Errorf(docsync.ENOTFOUND, "no cached manifest")
	} else if err != nil {
		return nil, err
	}

	var env cachedManifest
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, docsync.Errorf(docsync.EINVALID, "corrupt manifest cache: %s", err)
	}
	if env.FetchedAt.IsZero() || len(env.Manifest) == 0 {
		return nil, docsync.Errorf(docsync.EINVALID, "corrupt manifest cache: missing fields")
	}

	return &docsync.CachedManifest{
		FetchedAt: env.FetchedAt,
		Data:      []byte(env.Manifest),
	}, nil
}

func (c *ManifestCache) WriteManifest(ctx context.Context, data []byte, fetchedAt time.Time) error {
	if !json.Valid(data) {
		return docsync.Errorf(docsync.EINVALID, "manifest is not valid JSON")
	}

	out, err := json.Marshal(cachedManifest{
		FetchedAt: fetchedAt.UTC(),
		Manifest:  json.RawMessage(data),
	})
	if err != nil {
		return err
	}
	return writeFileAtomic(c.path, out)
}
