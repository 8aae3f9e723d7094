package update

import (
	"context"
	"sync"

	"github.com/fwojciec/docsync"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of documents fetched per window.
const DefaultConcurrency = 5

// Downloader fetches every document of a manifest in fixed-size windows.
type Downloader struct {
	Fetcher     docsync.ContentFetcher
	Concurrency int
}

// NewDownloader returns a Downloader with the default window size.
func NewDownloader(fetcher docsync.ContentFetcher) *Downloader {
	return &Downloader{Fetcher: fetcher, Concurrency: DefaultConcurrency}
}

// DownloadAll fetches every document of m exactly once and returns the
// results in manifest order. Documents are started in windows of
// Concurrency; a window completes fully before the next starts. Failed
// downloads never stop the batch.
//
// progress, if not nil, is called before each document starts, with
// Current set to its filename, and after it finishes, with Current empty.
// Calls are serialized.
func (d *Downloader) DownloadAll(ctx context.Context, m *docsync.Manifest, progress docsync.DownloadProgressFunc) []*docsync.DownloadResult {
	docs := m.Documents()
	results := make([]*docsync.DownloadResult, len(docs))

	size := d.Concurrency
	if size <= 0 {
		size = DefaultConcurrency
	}

	var (
		mu        sync.Mutex
		completed int
		failed    int
	)
	report := func(current string, res *docsync.DownloadResult) {
		mu.Lock()
		defer mu.Unlock()
		if res != nil {
			completed++
			if !res.Success {
				failed++
			}
		}
		if progress != nil {
			progress(docsync.DownloadProgress{
				Total:     len(docs),
				Completed: completed,
				Failed:    failed,
				Current:   current,
			})
		}
	}

	for start := 0; start < len(docs); start += size {
		end := min(start+size, len(docs))

		var g errgroup.Group
		for i := start; i < end; i++ {
			doc := docs[i]
			g.Go(func() error {
				report(doc.Filename, nil)
				res := d.Fetcher.Fetch(ctx, doc)
				if res == nil {
					res = &docsync.DownloadResult{Filename: doc.Filename, URL: doc.ContentURL(), Error: "no result"}
				}
				results[i] = res
				report("", res)
				return nil
			})
		}
		_ = g.Wait()
	}

	return results
}
