package update_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fwojciec/docsync"
	"github.com/fwojciec/docsync/fs"
	"github.com/fwojciec/docsync/mock"
	"github.com/fwojciec/docsync/sqlite"
	"github.com/fwojciec/docsync/update"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// remote is an in-memory documentation site.
type remote struct {
	mu      sync.Mutex
	order   []string
	content map[string]string
	failing map[string]bool
}

func newRemote() *remote {
	return &remote{content: make(map[string]string), failing: make(map[string]bool)}
}

func (r *remote) set(filename, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.content[filename]; !ok {
		r.order = append(r.order, filename)
	}
	r.content[filename] = content
}

func (r *remote) remove(filename string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.content, filename)
	for i, name := range r.order {
		if name == filename {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *remote) fail(filename string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing[filename] = true
}

func (r *remote) loader() *mock.ManifestLoader {
	return &mock.ManifestLoader{LoadFn: func(context.Context) (*docsync.Manifest, docsync.ManifestSource, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		return manifestOf(r.order...), docsync.ManifestSourceRemote, nil
	}}
}

func (r *remote) fetcher() *mock.ContentFetcher {
	return &mock.ContentFetcher{FetchFn: func(ctx context.Context, doc *docsync.DocumentSection) *docsync.DownloadResult {
		r.mu.Lock()
		defer r.mu.Unlock()
		if ctx.Err() != nil {
			return &docsync.DownloadResult{Filename: doc.Filename, URL: doc.ContentURL(), Error: "canceled fetching " + doc.ContentURL()}
		}
		if r.failing[doc.Filename] {
			return &docsync.DownloadResult{Filename: doc.Filename, URL: doc.ContentURL(), Error: "HTTP 500 for " + doc.ContentURL()}
		}
		return &docsync.DownloadResult{Filename: doc.Filename, URL: doc.ContentURL(), Success: true, Content: r.content[doc.Filename]}
	}}
}

type harness struct {
	dir     string
	remote  *remote
	docs    *fs.DocumentStore
	staging *fs.StagingStore
	updater *update.Updater
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })

	h := &harness{
		dir:     dir,
		remote:  newRemote(),
		docs:    fs.NewDocumentStore(filepath.Join(dir, fs.DocsDirName)),
		staging: fs.NewStagingStore(dir),
	}
	h.updater = &update.Updater{
		Manifests:  h.remote.loader(),
		Downloader: update.NewDownloader(h.remote.fetcher()),
		Documents:  h.docs,
		Staging:    h.staging,
		Changelog:  sqlite.NewChangelogService(db),
	}
	return h
}

func (h *harness) docPath(filename string) string {
	return filepath.Join(h.docs.Dir(), filename)
}

func (h *harness) state(t *testing.T) update.State {
	t.Helper()
	state, err := h.updater.State(context.Background())
	require.NoError(t, err)
	return state
}

func TestUpdater_FirstRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)
	h.remote.set("a.md", "# A\n")
	h.remote.set("b.md", "# B\n")
	h.remote.set("c.md", "# C\n")

	// Given an empty store, when checking
	check, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)

	// Then every document is added and staged
	assert.True(t, check.UpdateAvailable)
	assert.Equal(t, docsync.ManifestSourceRemote, check.Source)
	assert.Equal(t, 3, check.TotalSections)
	assert.Equal(t, docsync.ChangeCounts{Added: 3}, check.Counts)
	assert.NotEmpty(t, check.ChangeSet.ID)
	assert.Equal(t, update.StatePending, h.state(t))
	assert.NoFileExists(t, h.docPath("a.md"))

	// When committing
	commit, err := h.updater.Commit(ctx, "initial docs")
	require.NoError(t, err)

	// Then the documents are installed and logged
	assert.True(t, commit.Committed)
	assert.Equal(t, 3, commit.Summary.Applied)
	require.NotNil(t, commit.Entry)
	assert.Equal(t, "initial docs", commit.Entry.Message)
	assert.Equal(t, 3, commit.Entry.Added)
	assert.Zero(t, commit.Entry.Modified)
	assert.Zero(t, commit.Entry.Deleted)
	assert.Zero(t, commit.Entry.Failed)
	assert.Equal(t, update.StateIdle, h.state(t))

	data, err := os.ReadFile(h.docPath("b.md"))
	require.NoError(t, err)
	assert.Equal(t, "# B\n", string(data))

	status, err := h.updater.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Installed)
	assert.False(t, status.Pending)
	assert.Equal(t, 3, status.Stats.Documents)
	require.Len(t, status.Changelog, 1)
	assert.Equal(t, "initial docs", status.LastCommit.Message)
}

func TestUpdater_CheckAfterCommitIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)
	h.remote.set("a.md", "# A\n")
	h.remote.set("b.md", "# B\n")

	_, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)
	_, err = h.updater.Commit(ctx, "initial docs")
	require.NoError(t, err)

	check, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)

	assert.False(t, check.UpdateAvailable)
	assert.Equal(t, docsync.ChangeCounts{Unchanged: 2}, check.Counts)
	assert.Equal(t, update.StateIdle, h.state(t))

	commit, err := h.updater.Commit(ctx, "again")
	require.NoError(t, err)
	assert.True(t, commit.NothingPending)
	assert.False(t, commit.Committed)
}

func TestUpdater_ModifyAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)
	h.remote.set("a.md", "# A\n")
	h.remote.set("b.md", "# B\n")
	_, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)
	_, err = h.updater.Commit(ctx, "initial docs")
	require.NoError(t, err)

	h.remote.set("a.md", "# A\n\nRevised.\n")
	h.remote.remove("b.md")

	check, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, docsync.ChangeCounts{Modified: 1, Deleted: 1}, check.Counts)

	commit, err := h.updater.Commit(ctx, "refresh")
	require.NoError(t, err)
	assert.Equal(t, 1, commit.Entry.Modified)
	assert.Equal(t, 1, commit.Entry.Deleted)

	assert.NoFileExists(t, h.docPath("b.md"))
	data, err := os.ReadFile(h.docPath("a.md"))
	require.NoError(t, err)
	assert.Equal(t, "# A\n\nRevised.\n", string(data))
}

func TestUpdater_FailedDownloadsAreNotStaged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)
	h.remote.set("a.md", "# A\n")
	h.remote.set("b.md", "# B\n")
	h.remote.fail("b.md")

	check, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, docsync.ChangeCounts{Added: 1, Failed: 1}, check.Counts)
	assert.Equal(t, 1, check.Downloads.Failed)
	assert.Equal(t, []string{"b.md"}, check.Downloads.FailedFiles)

	commit, err := h.updater.Commit(ctx, "partial")
	require.NoError(t, err)
	assert.Equal(t, 1, commit.Entry.Added)
	assert.NoFileExists(t, h.docPath("b.md"))
}

func TestUpdater_CommitContinuesPastFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)
	h.remote.set("a.md", "# A\n")
	h.remote.set("b.md", "# B\n")
	h.remote.set("c.md", "# C\n")
	_, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)

	// Given a store that rejects b.md
	h.updater.Documents = &mock.DocumentStore{
		WriteDocumentFn: func(ctx context.Context, filename, content string) error {
			if filename == "b.md" {
				return errors.New("permission denied")
			}
			return h.docs.WriteDocument(ctx, filename, content)
		},
	}

	commit, err := h.updater.Commit(ctx, "initial docs")
	require.NoError(t, err)

	assert.True(t, commit.Committed)
	assert.Equal(t, 2, commit.Summary.Applied)
	assert.Equal(t, 1, commit.Summary.Failed)
	assert.Equal(t, []string{"b.md"}, commit.Summary.FailedFiles)
	assert.Equal(t, 2, commit.Entry.Added)
	assert.Equal(t, 1, commit.Entry.Failed)
	assert.FileExists(t, h.docPath("a.md"))
	assert.FileExists(t, h.docPath("c.md"))
	assert.Equal(t, update.StateIdle, h.state(t))
}

func TestUpdater_CommitFailsWhenNothingApplies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)
	h.remote.set("a.md", "# A\n")
	_, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)

	h.updater.Documents = &mock.DocumentStore{
		WriteDocumentFn: func(context.Context, string, string) error {
			return errors.New("read-only file system")
		},
	}

	commit, err := h.updater.Commit(ctx, "initial docs")

	require.Error(t, err)
	assert.Equal(t, docsync.ECOMMIT, docsync.ErrorCode(err))
	require.NotNil(t, commit)
	assert.False(t, commit.Committed)
	assert.Equal(t, 1, commit.Summary.Failed)
	assert.Equal(t, update.StatePending, h.state(t))

	entries, err := h.updater.Changelog.FindEntries(ctx, docsync.ChangelogFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdater_RetriedCommitRecordsOneEntry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)
	discardFails := true
	h.updater.Staging = &mock.StagingStore{
		StageFn:       h.staging.Stage,
		ReadPendingFn: h.staging.ReadPending,
		DiscardFn: func(ctx context.Context) error {
			if discardFails {
				discardFails = false
				return errors.New("disk full")
			}
			return h.staging.Discard(ctx)
		},
	}
	h.remote.set("a.md", "# A\n")
	check, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)

	// Given a commit whose cleanup failed after the changelog was written
	_, err = h.updater.Commit(ctx, "first sync")
	require.Error(t, err)
	assert.Equal(t, docsync.ESTAGING, docsync.ErrorCode(err))

	// When the commit is retried
	result, err := h.updater.Commit(ctx, "first sync")
	require.NoError(t, err)

	// Then it completes and the change set is recorded once
	assert.True(t, result.Committed)
	assert.Equal(t, check.ChangeSet.ID, result.Entry.ID)
	status, err := h.updater.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status.Changelog, 1)
	assert.Equal(t, check.ChangeSet.ID, status.Changelog[0].ID)
	assert.False(t, status.Pending)
}

func TestUpdater_CommitRequiresMessage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)
	h.remote.set("a.md", "# A\n")
	_, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)

	_, err = h.updater.Commit(ctx, "   ")

	assert.Equal(t, docsync.EINVALID, docsync.ErrorCode(err))
	assert.Equal(t, update.StatePending, h.state(t))
	assert.NoFileExists(t, h.docPath("a.md"))
}

func TestUpdater_Discard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)
	h.remote.set("x.md", "# X\n\nOriginal.\n")
	_, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)
	_, err = h.updater.Commit(ctx, "initial docs")
	require.NoError(t, err)

	before, err := os.ReadFile(h.docPath("x.md"))
	require.NoError(t, err)

	// Given a staged modification of x.md
	h.remote.set("x.md", "# X\n\nChanged.\n")
	check, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, check.Counts.Modified)

	// When discarding
	discard, err := h.updater.Discard(ctx)
	require.NoError(t, err)

	// Then the committed file is untouched and nothing is pending
	assert.True(t, discard.Discarded)
	assert.Equal(t, 1, discard.PendingFiles)
	assert.Equal(t, []string{"x.md"}, discard.Files)

	after, err := os.ReadFile(h.docPath("x.md"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, update.StateIdle, h.state(t))

	entries, err := h.updater.Changelog.FindEntries(ctx, docsync.ChangelogFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	again, err := h.updater.Discard(ctx)
	require.NoError(t, err)
	assert.False(t, again.Discarded)
}

func TestUpdater_CheckSupersedesPendingSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t)
	h.remote.set("a.md", "# A\n")
	_, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)
	_, err = h.updater.Commit(ctx, "initial docs")
	require.NoError(t, err)

	// Given a staged modification
	h.remote.set("a.md", "# A v2\n")
	first, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)
	require.True(t, first.UpdateAvailable)

	// When a later check sees a different remote
	h.remote.set("b.md", "# B\n")
	second, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)

	// Then only the latest set is pending
	pending, err := h.staging.ReadPending(ctx)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, second.ChangeSet.ID, pending.ID)
	assert.NotEqual(t, first.ChangeSet.ID, pending.ID)
	assert.Equal(t, docsync.ChangeCounts{Added: 1, Modified: 1}, pending.Counts())

	// And a check that finds nothing new clears it
	h.remote.set("a.md", "# A\n")
	h.remote.remove("b.md")
	third, err := h.updater.Check(ctx, nil)
	require.NoError(t, err)
	assert.False(t, third.UpdateAvailable)
	assert.Equal(t, update.StateIdle, h.state(t))
}

func TestUpdater_CanceledCheckKeepsPendingSet(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.remote.set("a.md", "# A\n")
	_, err := h.updater.Check(context.Background(), nil)
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(h.dir, fs.PendingDirName, fs.DocsDirName, "a.md"))
	require.NoError(t, err)

	// Given a pending set, when a check is interrupted mid-download
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := h.updater.Check(ctx, nil)

	// Then the check fails and the pending set is untouched
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	after, err := os.ReadFile(filepath.Join(h.dir, fs.PendingDirName, fs.DocsDirName, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, update.StatePending, h.state(t))
}

func TestUpdater_CheckReportsManifestFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.updater.Manifests = &mock.ManifestLoader{LoadFn: func(context.Context) (*docsync.Manifest, docsync.ManifestSource, error) {
		return nil, "", docsync.Errorf(docsync.EMANIFEST, "no valid manifest available")
	}}

	_, err := h.updater.Check(context.Background(), nil)

	assert.Equal(t, docsync.EMANIFEST, docsync.ErrorCode(err))
	assert.Equal(t, update.StateIdle, h.state(t))
}

func TestUpdater_StatusOnEmptyStore(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	status, err := h.updater.Status(context.Background())

	require.NoError(t, err)
	assert.False(t, status.Installed)
	assert.False(t, status.Pending)
	assert.Nil(t, status.LastCommit)
	assert.Empty(t, status.Changelog)
	assert.Zero(t, status.DataAge)
}
