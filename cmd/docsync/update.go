package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docsync"
)

// checkOutput is the JSON shape of "update check".
type checkOutput struct {
	UpdateAvailable bool                      `json:"updateAvailable"`
	Changes         *changesOutput            `json:"changes,omitempty"`
	Stats           checkStats                `json:"stats"`
	Failed          []*docsync.FailedDocument `json:"failed,omitempty"`
}

type changesOutput struct {
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Deleted  []string `json:"deleted"`
}

type checkStats struct {
	Source     docsync.ManifestSource `json:"source"`
	Total      int                    `json:"total"`
	Successful int                    `json:"successful"`
	Failed     int                    `json:"failed"`
	Unchanged  int                    `json:"unchanged"`
}

// Run executes the "update check" command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	var progress docsync.DownloadProgressFunc
	if !deps.Output.JSON() {
		progress = func(p docsync.DownloadProgress) {
			if p.Current != "" {
				fmt.Fprintf(deps.Stderr, "[%d/%d] %s\n", p.Completed, p.Total, p.Current)
			}
		}
	}

	result, err := deps.Updater.Check(deps.Ctx, progress)
	if err != nil {
		return err
	}

	out := checkOutput{
		UpdateAvailable: result.UpdateAvailable,
		Stats: checkStats{
			Source:     result.Source,
			Total:      result.Downloads.Total,
			Successful: result.Downloads.Successful,
			Failed:     result.Downloads.Failed,
			Unchanged:  result.Counts.Unchanged,
		},
		Failed: result.ChangeSet.Failed,
	}
	if result.UpdateAvailable {
		out.Changes = changesOf(result.ChangeSet)
	}

	if deps.Output.JSON() {
		return deps.Output.Encode(out)
	}

	o := deps.Output
	o.Title("Documentation check")
	o.Muted("manifest: %s, %d documents", result.Source, result.TotalSections)
	if out.Changes == nil {
		o.Success("Up to date (%d unchanged)", result.Counts.Unchanged)
	} else {
		printFiles(o, "Added", out.Changes.Added)
		printFiles(o, "Modified", out.Changes.Modified)
		printFiles(o, "Deleted", out.Changes.Deleted)
		o.Line("")
		o.Line("Run 'docsync update commit <message>' to apply or 'docsync update discard' to drop.")
	}
	if len(out.Failed) > 0 {
		o.Warning("%d documents could not be downloaded:", len(out.Failed))
		for _, f := range out.Failed {
			o.Warning("  %s: %s", f.Filename, f.Error)
		}
	}
	return nil
}

func changesOf(set *docsync.ChangeSet) *changesOutput {
	return &changesOutput{
		Added:    set.Filenames(docsync.ChangeAdded),
		Modified: set.Filenames(docsync.ChangeModified),
		Deleted:  set.Filenames(docsync.ChangeDeleted),
	}
}

func printFiles(o *Output, label string, files []string) {
	if len(files) == 0 {
		return
	}
	o.Line("%s (%d):", label, len(files))
	for _, f := range files {
		o.Line("  %s", f)
	}
}

// commitOutput is the JSON shape of "update commit".
type commitOutput struct {
	Success        bool                    `json:"success"`
	NothingPending bool                    `json:"nothingPending,omitempty"`
	Summary        commitSummary           `json:"summary"`
	ChangelogEntry *docsync.ChangelogEntry `json:"changelogEntry,omitempty"`
}

type commitSummary struct {
	Total       int                       `json:"total"`
	Downloaded  int                       `json:"downloaded"`
	Skipped     int                       `json:"skipped"`
	Failed      int                       `json:"failed"`
	FailedFiles []string                  `json:"failedFiles,omitempty"`
	Failures    []*docsync.FailedDocument `json:"failures,omitempty"`
}

// Run executes the "update commit" command.
func (c *CommitCmd) Run(deps *Dependencies) error {
	result, err := deps.Updater.Commit(deps.Ctx, c.Message)
	if result == nil {
		return err
	}

	if deps.Output.JSON() {
		if encErr := deps.Output.Encode(commitOutput{
			Success:        err == nil && result.Committed,
			NothingPending: result.NothingPending,
			Summary: commitSummary{
				Total:       result.Summary.Total,
				Downloaded:  result.Summary.Applied,
				Skipped:     result.Summary.Skipped,
				Failed:      result.Summary.Failed,
				FailedFiles: result.Summary.FailedFiles,
				Failures:    result.Summary.Failures,
			},
			ChangelogEntry: result.Entry,
		}); encErr != nil {
			return encErr
		}
		return err
	}

	o := deps.Output
	switch {
	case result.NothingPending:
		o.Line("Nothing to commit. Run 'docsync update check' first.")
	case result.Committed:
		o.Success("Committed %d of %d changes", result.Summary.Applied, result.Summary.Applied+result.Summary.Failed)
		o.Muted("%s", result.Entry.Message)
	}
	for _, f := range result.Summary.Failures {
		o.Failure("  %s: %s", f.Filename, f.Error)
	}
	return err
}

// discardOutput is the JSON shape of "update discard".
type discardOutput struct {
	Success   bool            `json:"success"`
	Discarded discardedOutput `json:"discarded"`
}

type discardedOutput struct {
	PendingFiles int      `json:"pendingFiles"`
	FileList     []string `json:"fileList"`
}

// Run executes the "update discard" command.
func (c *DiscardCmd) Run(deps *Dependencies) error {
	result, err := deps.Updater.Discard(deps.Ctx)
	if err != nil {
		return err
	}

	if deps.Output.JSON() {
		files := result.Files
		if files == nil {
			files = []string{}
		}
		return deps.Output.Encode(discardOutput{
			Success:   true,
			Discarded: discardedOutput{PendingFiles: result.PendingFiles, FileList: files},
		})
	}

	if !result.Discarded {
		deps.Output.Line("Nothing to discard.")
		return nil
	}
	deps.Output.Success("Discarded %d pending changes", result.PendingFiles)
	for _, f := range result.Files {
		deps.Output.Muted("  %s", f)
	}
	return nil
}

// statusOutput is the JSON shape of "update status".
type statusOutput struct {
	Installed        bool                      `json:"installed"`
	DataAge          string                    `json:"dataAge,omitempty"`
	DataAgeSeconds   int64                     `json:"dataAgeSeconds"`
	PendingUpdates   bool                      `json:"pendingUpdates"`
	PendingCounts    *docsync.ChangeCounts     `json:"pendingCounts,omitempty"`
	ChangelogEntries []*docsync.ChangelogEntry `json:"changelogEntries"`
	Stats            *docsync.StoreStats       `json:"stats"`
}

// Run executes the "update status" command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	result, err := deps.Updater.Status(deps.Ctx)
	if err != nil {
		return err
	}

	if deps.Output.JSON() {
		entries := result.Changelog
		if entries == nil {
			entries = []*docsync.ChangelogEntry{}
		}
		out := statusOutput{
			Installed:        result.Installed,
			DataAgeSeconds:   int64(result.DataAge.Seconds()),
			PendingUpdates:   result.Pending,
			PendingCounts:    result.PendingCounts,
			ChangelogEntries: entries,
			Stats:            result.Stats,
		}
		if result.DataAge > 0 {
			out.DataAge = result.DataAge.Round(time.Second).String()
		}
		return deps.Output.Encode(out)
	}

	o := deps.Output
	o.Title("Documentation status")
	if !result.Installed {
		o.Warning("No documentation installed. Run 'docsync update check' then 'docsync update commit <message>'.")
	} else {
		o.Line("Installed: %d documents, %s", result.Stats.Documents, formatBytes(result.Stats.Bytes))
		o.Line("Updated:   %s", formatAge(result.DataAge))
	}
	if result.Pending {
		pc := result.PendingCounts
		o.Warning("Pending:   %d added, %d modified, %d deleted", pc.Added, pc.Modified, pc.Deleted)
	} else {
		o.Muted("Pending:   none")
	}
	if len(result.Changelog) > 0 {
		o.Line("")
		o.Title("Recent changes")
		for i := len(result.Changelog) - 1; i >= 0; i-- {
			e := result.Changelog[i]
			o.Line("  %s  %s  %s", e.CreatedAt.Format("2006-01-02 15:04"), e.Message, entryCounts(e))
		}
	}
	return nil
}

func entryCounts(e *docsync.ChangelogEntry) string {
	var parts []string
	if e.Added > 0 {
		parts = append(parts, fmt.Sprintf("+%d", e.Added))
	}
	if e.Modified > 0 {
		parts = append(parts, fmt.Sprintf("~%d", e.Modified))
	}
	if e.Deleted > 0 {
		parts = append(parts, fmt.Sprintf("-%d", e.Deleted))
	}
	if e.Failed > 0 {
		parts = append(parts, fmt.Sprintf("!%d", e.Failed))
	}
	return strings.Join(parts, " ")
}
