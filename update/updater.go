package update

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/docsync"
	"github.com/google/uuid"
)

// State is a phase of the update workflow.
type State string

// State constants. Only Idle and Pending persist between invocations.
const (
	StateIdle       State = "idle"
	StateChecking   State = "checking"
	StatePending    State = "pending"
	StateCommitting State = "committing"
	StateDiscarding State = "discarding"
)

// DefaultChangelogLimit is the number of changelog entries Status reports.
const DefaultChangelogLimit = 10

// Updater orchestrates check, commit and discard.
//
// It assumes a single writer per data directory; concurrent invocations
// against the same directory are not coordinated.
type Updater struct {
	Manifests  docsync.ManifestLoader
	Downloader *Downloader
	Documents  docsync.DocumentStore
	Staging    docsync.StagingStore
	Changelog  docsync.ChangelogService

	ChangelogLimit int
	Now            func() time.Time
	Logger         *slog.Logger

	mu    sync.Mutex
	state State
}

// CheckResult is the outcome of Check.
type CheckResult struct {
	UpdateAvailable bool                    `json:"updateAvailable"`
	Source          docsync.ManifestSource  `json:"source"`
	TotalSections   int                     `json:"totalSections"`
	Counts          docsync.ChangeCounts    `json:"counts"`
	Downloads       docsync.DownloadSummary `json:"downloads"`
	ChangeSet       *docsync.ChangeSet      `json:"changeSet"`
}

// CommitSummary reports what a commit applied.
type CommitSummary struct {
	Total       int                       `json:"total"`
	Applied     int                       `json:"applied"`
	Skipped     int                       `json:"skipped"`
	Failed      int                       `json:"failed"`
	FailedFiles []string                  `json:"failedFiles,omitempty"`
	Failures    []*docsync.FailedDocument `json:"failures,omitempty"`
}

// CommitResult is the outcome of Commit.
type CommitResult struct {
	Committed      bool                    `json:"committed"`
	NothingPending bool                    `json:"nothingPending"`
	Summary        CommitSummary           `json:"summary"`
	Entry          *docsync.ChangelogEntry `json:"changelogEntry,omitempty"`
}

// DiscardResult is the outcome of Discard.
type DiscardResult struct {
	Discarded    bool     `json:"discarded"`
	PendingFiles int      `json:"pendingFiles"`
	Files        []string `json:"files,omitempty"`
}

// StatusResult is the outcome of Status.
type StatusResult struct {
	Installed     bool                      `json:"installed"`
	LastCommit    *docsync.ChangelogEntry   `json:"lastCommit,omitempty"`
	DataAge       time.Duration             `json:"-"`
	Pending       bool                      `json:"pendingUpdates"`
	PendingCounts *docsync.ChangeCounts     `json:"pendingCounts,omitempty"`
	Changelog     []*docsync.ChangelogEntry `json:"changelogEntries"`
	Stats         *docsync.StoreStats       `json:"stats"`
}

// Check loads the manifest, downloads every document, diffs the results
// against the committed store and stages the change set. A check with no
// changes stages nothing and clears any previously staged set. Download
// failures are reported in the result and never abort the check; a
// canceled ctx does, before anything on disk changes.
func (u *Updater) Check(ctx context.Context, progress docsync.DownloadProgressFunc) (*CheckResult, error) {
	u.transition(StateChecking)
	defer u.settle(ctx)

	m, source, err := u.Manifests.Load(ctx)
	if err != nil {
		return nil, err
	}
	u.logger().Info("manifest loaded", "source", source, "documents", docsync.TotalSections(m))

	results := u.Downloader.DownloadAll(ctx, m, progress)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("check interrupted: %w", err)
	}
	downloads := docsync.SummarizeDownloads(results)

	set, err := ComputeDiff(ctx, m, results, u.Documents)
	if err != nil {
		return nil, err
	}
	set.ID = uuid.NewString()
	set.CreatedAt = u.now().UTC()

	result := &CheckResult{
		Source:        source,
		TotalSections: docsync.TotalSections(m),
		Counts:        set.Counts(),
		Downloads:     downloads,
		ChangeSet:     set,
	}

	u.transition(StatePending)

	if !set.HasChanges() {
		if err := u.Staging.Discard(ctx); err != nil {
			return nil, stagingError(err)
		}
		u.logger().Info("up to date", "unchanged", result.Counts.Unchanged, "failed", result.Counts.Failed)
		return result, nil
	}

	if err := u.Staging.Stage(ctx, set); err != nil {
		return nil, stagingError(err)
	}

	result.UpdateAvailable = true
	u.logger().Info("changes staged", "id", set.ID, "added", result.Counts.Added,
		"modified", result.Counts.Modified, "deleted", result.Counts.Deleted, "failed", result.Counts.Failed)
	return result, nil
}

// Commit applies the pending change set to the committed store.
//
// Every entry is attempted; a failed entry does not stop the others. If at
// least one entry is applied, the pending set is cleared and a changelog
// entry is appended. If every entry fails, Commit returns ECOMMIT along with
// the result, and the pending set is kept for a later retry. A blank
// message is rejected with EINVALID before anything changes.
func (u *Updater) Commit(ctx context.Context, message string) (*CommitResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, docsync.Errorf(docsync.EINVALID, "commit message required")
	}

	set, err := u.Staging.ReadPending(ctx)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return &CommitResult{NothingPending: true}, nil
	}

	u.transition(StateCommitting)
	defer u.settle(ctx)

	pending := set.Pending()
	counts := set.Counts()
	result := &CommitResult{
		Summary: CommitSummary{
			Total:   len(set.Changes),
			Skipped: counts.Unchanged,
		},
	}
	if len(pending) == 0 {
		if err := u.Staging.Discard(ctx); err != nil {
			return nil, stagingError(err)
		}
		result.NothingPending = true
		return result, nil
	}

	// Keyed on the set so a retried commit cannot record it twice.
	entry := &docsync.ChangelogEntry{ID: set.ID, Message: message}
	for _, ch := range pending {
		if err := u.apply(ctx, ch); err != nil {
			u.logger().Warn("commit entry failed", "filename", ch.Filename, "type", ch.Type, "err", err)
			result.Summary.Failed++
			result.Summary.FailedFiles = append(result.Summary.FailedFiles, ch.Filename)
			result.Summary.Failures = append(result.Summary.Failures, &docsync.FailedDocument{
				Filename: ch.Filename,
				Error:    describe(err),
			})
			continue
		}

		result.Summary.Applied++
		switch ch.Type {
		case docsync.ChangeAdded:
			entry.Added++
		case docsync.ChangeModified:
			entry.Modified++
		case docsync.ChangeDeleted:
			entry.Deleted++
		}
	}

	if result.Summary.Applied == 0 {
		return result, docsync.Errorf(docsync.ECOMMIT, "commit failed for every file: %s",
			strings.Join(result.Summary.FailedFiles, ", "))
	}

	entry.Failed = result.Summary.Failed
	if err := u.Changelog.AppendEntry(ctx, entry); docsync.ErrorCode(err) == docsync.ECONFLICT {
		u.logger().Info("changelog entry already recorded", "id", entry.ID)
	} else if err != nil {
		return result, fmt.Errorf("append changelog: %w", err)
	}
	result.Entry = entry

	if err := u.Staging.Discard(ctx); err != nil {
		return result, stagingError(err)
	}

	result.Committed = true
	u.logger().Info("changes committed", "id", set.ID, "applied", result.Summary.Applied, "failed", result.Summary.Failed)
	return result, nil
}

// apply writes or removes one entry in the committed store. Deleting a
// document that is already gone counts as applied.
func (u *Updater) apply(ctx context.Context, ch *docsync.Change) error {
	switch ch.Type {
	case docsync.ChangeAdded, docsync.ChangeModified:
		return u.Documents.WriteDocument(ctx, ch.Filename, ch.Content)
	case docsync.ChangeDeleted:
		if err := u.Documents.DeleteDocument(ctx, ch.Filename); err != nil && docsync.ErrorCode(err) != docsync.ENOTFOUND {
			return err
		}
		return nil
	}
	return nil
}

// Discard removes the pending change set without touching the committed
// store. Discarding with nothing pending reports Discarded false.
func (u *Updater) Discard(ctx context.Context) (*DiscardResult, error) {
	set, err := u.Staging.ReadPending(ctx)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return &DiscardResult{}, nil
	}

	u.transition(StateDiscarding)
	defer u.settle(ctx)

	pending := set.Pending()
	result := &DiscardResult{Discarded: true, PendingFiles: len(pending)}
	for _, ch := range pending {
		result.Files = append(result.Files, ch.Filename)
	}

	if err := u.Staging.Discard(ctx); err != nil {
		return nil, stagingError(err)
	}
	u.logger().Info("changes discarded", "id", set.ID, "files", len(pending))
	return result, nil
}

// Status reports the committed store, any pending change set and recent
// changelog entries. It never changes state.
func (u *Updater) Status(ctx context.Context) (*StatusResult, error) {
	stats, err := u.Documents.Stats(ctx)
	if err != nil {
		return nil, err
	}

	limit := u.ChangelogLimit
	if limit == 0 {
		limit = DefaultChangelogLimit
	}
	entries, err := u.Changelog.FindEntries(ctx, docsync.ChangelogFilter{Latest: limit})
	if err != nil {
		return nil, err
	}

	set, err := u.Staging.ReadPending(ctx)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{
		Installed: stats.Documents > 0,
		Changelog: entries,
		Stats:     stats,
	}
	if len(entries) > 0 {
		result.LastCommit = entries[len(entries)-1]
		result.DataAge = u.now().Sub(result.LastCommit.CreatedAt)
	} else if !stats.ModifiedAt.IsZero() {
		result.DataAge = u.now().Sub(stats.ModifiedAt)
	}
	if set != nil {
		counts := set.Counts()
		result.Pending = counts.Total() > 0
		result.PendingCounts = &counts
	}
	return result, nil
}

// State reports the persisted workflow state: Pending when a change set is
// staged, Idle otherwise.
func (u *Updater) State(ctx context.Context) (State, error) {
	set, err := u.Staging.ReadPending(ctx)
	if err != nil {
		return "", err
	}
	if set == nil {
		return StateIdle, nil
	}
	return StatePending, nil
}

func (u *Updater) transition(to State) {
	u.mu.Lock()
	from := u.state
	if from == "" {
		from = StateIdle
	}
	u.state = to
	u.mu.Unlock()

	u.logger().Debug("state transition", "from", from, "to", to)
}

// settle moves to the persisted state after an operation ends.
func (u *Updater) settle(ctx context.Context) {
	state, err := u.State(ctx)
	if err != nil {
		state = StateIdle
	}
	u.transition(state)
}

func (u *Updater) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

func (u *Updater) logger() *slog.Logger {
	if u.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return u.Logger
}

// stagingError keeps coded errors and wraps others as ESTAGING.
func stagingError(err error) error {
	if code := docsync.ErrorCode(err); code != docsync.EINTERNAL {
		return err
	}
	return docsync.Errorf(docsync.ESTAGING, "%s", err)
}
