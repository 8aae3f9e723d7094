package update_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/docsync"
	"github.com/fwojciec/docsync/gojsonschema"
	"github.com/fwojciec/docsync/mock"
	"github.com/fwojciec/docsync/update"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const remoteManifest = `{"categories":[{"name":"Guides","slug":"guides","docs":[
	{"title":"Intro","url":"https://docs.example.com/intro","filename":"intro.md"},
	{"title":"Setup","url":"https://docs.example.com/setup","filename":"setup.md"}]}]}`

const bundledManifest = `{"categories":[{"name":"Guides","slug":"guides","docs":[
	{"title":"Intro","url":"https://docs.example.com/intro","filename":"intro.md"}]}]}`

var loaderNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newLoader(fetcher docsync.Fetcher, cache docsync.ManifestCache, bundled string) *update.ManifestLoader {
	l := update.NewManifestLoader("https://docs.example.com/manifest.json", fetcher, nil, cache, []byte(bundled))
	l.RetryDelays = []time.Duration{0, 0}
	l.Now = func() time.Time { return loaderNow }
	return l
}

func failingFetcher() *mock.Fetcher {
	return &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
		return "", errors.New("connection refused")
	}}
}

func emptyCache() *mock.ManifestCache {
	return &mock.ManifestCache{
		ReadManifestFn: func(context.Context) (*docsync.CachedManifest, error) {
			return nil, docsync.Errorf(docsync.ENOTFOUND, "no cached manifest")
		},
		WriteManifestFn: func(context.Context, []byte, time.Time) error { return nil },
	}
}

func TestManifestLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("remote manifest is used and cached", func(t *testing.T) {
		t.Parallel()

		var cached []byte
		var cachedAt time.Time
		cache := emptyCache()
		cache.WriteManifestFn = func(_ context.Context, data []byte, fetchedAt time.Time) error {
			cached, cachedAt = data, fetchedAt
			return nil
		}
		fetcher := &mock.Fetcher{FetchFn: func(_ context.Context, url string) (string, error) {
			assert.Equal(t, "https://docs.example.com/manifest.json", url)
			return remoteManifest, nil
		}}

		m, source, err := newLoader(fetcher, cache, bundledManifest).Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, docsync.ManifestSourceRemote, source)
		assert.Equal(t, 2, docsync.TotalSections(m))
		assert.JSONEq(t, remoteManifest, string(cached))
		assert.Equal(t, loaderNow, cachedAt)
	})

	t.Run("remote retries transient failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetcher := &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
			calls++
			if calls < 3 {
				return "", &docsync.StatusError{StatusCode: 503}
			}
			return remoteManifest, nil
		}}

		_, source, err := newLoader(fetcher, emptyCache(), bundledManifest).Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, docsync.ManifestSourceRemote, source)
		assert.Equal(t, 3, calls)
	})

	t.Run("cache write failure does not fail the load", func(t *testing.T) {
		t.Parallel()

		cache := emptyCache()
		cache.WriteManifestFn = func(context.Context, []byte, time.Time) error {
			return errors.New("disk full")
		}
		fetcher := &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
			return remoteManifest, nil
		}}

		_, source, err := newLoader(fetcher, cache, bundledManifest).Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, docsync.ManifestSourceRemote, source)
	})

	t.Run("fresh cache is used when remote fails", func(t *testing.T) {
		t.Parallel()

		cache := emptyCache()
		cache.ReadManifestFn = func(context.Context) (*docsync.CachedManifest, error) {
			return &docsync.CachedManifest{FetchedAt: loaderNow.Add(-30 * time.Minute), Data: []byte(remoteManifest)}, nil
		}

		m, source, err := newLoader(failingFetcher(), cache, bundledManifest).Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, docsync.ManifestSourceCache, source)
		assert.Equal(t, 2, docsync.TotalSections(m))
	})

	t.Run("stale cache falls back to bundled", func(t *testing.T) {
		t.Parallel()

		cache := emptyCache()
		cache.ReadManifestFn = func(context.Context) (*docsync.CachedManifest, error) {
			return &docsync.CachedManifest{FetchedAt: loaderNow.Add(-2 * time.Hour), Data: []byte(remoteManifest)}, nil
		}

		m, source, err := newLoader(failingFetcher(), cache, bundledManifest).Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, docsync.ManifestSourceBundled, source)
		assert.Equal(t, 1, docsync.TotalSections(m))
	})

	t.Run("invalid remote manifest falls back", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{FetchFn: func(context.Context, string) (string, error) {
			return `{"categories":[{"name":"x","slug":"x","docs":[{"title":"a","url":"u","filename":"../a.md"}]}]}`, nil
		}}

		_, source, err := newLoader(fetcher, emptyCache(), bundledManifest).Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, docsync.ManifestSourceBundled, source)
	})

	t.Run("no usable source is EMANIFEST", func(t *testing.T) {
		t.Parallel()

		_, _, err := newLoader(failingFetcher(), emptyCache(), "").Load(context.Background())

		require.Error(t, err)
		assert.Equal(t, docsync.EMANIFEST, docsync.ErrorCode(err))
		assert.Contains(t, docsync.ErrorMessage(err), "remote:")
		assert.Contains(t, docsync.ErrorMessage(err), "bundled:")
	})
}

func TestParseManifest(t *testing.T) {
	t.Parallel()

	t.Run("validator rejection is returned", func(t *testing.T) {
		t.Parallel()

		validator := &mock.ManifestValidator{ValidateManifestFn: func([]byte) error {
			return docsync.Errorf(docsync.EINVALID, "categories: is required")
		}}

		_, err := update.ParseManifest([]byte(`{}`), validator)

		assert.Equal(t, docsync.EINVALID, docsync.ErrorCode(err))
	})

	t.Run("missing descriptions are rejected by the schema", func(t *testing.T) {
		t.Parallel()

		validator, err := gojsonschema.NewValidator()
		require.NoError(t, err)
		data := `{"categories":[{"name":"N","slug":"n","docs":[
			{"title":"T","url":"https://x/a","filename":"a.md"}]}]}`

		m, err := update.ParseManifest([]byte(data), validator)

		assert.Nil(t, m)
		assert.Equal(t, docsync.EINVALID, docsync.ErrorCode(err))
		assert.Contains(t, docsync.ErrorMessage(err), "description")
	})

	t.Run("duplicate filenames are rejected", func(t *testing.T) {
		t.Parallel()

		data := `{"categories":[{"name":"a","slug":"a","docs":[
			{"title":"A","url":"https://x/a","filename":"a.md"},
			{"title":"B","url":"https://x/b","filename":"a.md"}]}]}`

		_, err := update.ParseManifest([]byte(data), nil)

		assert.Equal(t, docsync.EINVALID, docsync.ErrorCode(err))
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := update.ParseManifest([]byte(`{"categories":`), nil)

		assert.Equal(t, docsync.EINVALID, docsync.ErrorCode(err))
	})
}
