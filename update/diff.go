package update

import (
	"context"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docsync"
)

// ComputeHash computes a hash of the content using xxhash.
func ComputeHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// ComputeDiff classifies freshly downloaded documents against the
// committed store.
//
// Successful downloads are added, modified or unchanged, in manifest
// order. Committed files missing from the manifest are deleted, in
// alphabetical order. Failed downloads are never classified; they are
// listed in Failed. Every filename of the store and the manifest ends up
// in exactly one of those groups.
//
// The returned set has no ID or timestamp; the caller assigns them.
func ComputeDiff(ctx context.Context, m *docsync.Manifest, results []*docsync.DownloadResult, store docsync.DocumentStore) (*docsync.ChangeSet, error) {
	byName := make(map[string]*docsync.DownloadResult, len(results))
	for _, r := range results {
		if r != nil {
			byName[r.Filename] = r
		}
	}

	set := &docsync.ChangeSet{}
	listed := make(map[string]bool)

	for _, doc := range m.Documents() {
		listed[doc.Filename] = true

		r := byName[doc.Filename]
		if r == nil || !r.Success {
			msg := "not downloaded"
			if r != nil && r.Error != "" {
				msg = r.Error
			}
			set.Failed = append(set.Failed, &docsync.FailedDocument{Filename: doc.Filename, Error: msg})
			continue
		}

		ch := &docsync.Change{
			Filename: doc.Filename,
			Title:    doc.Title,
			URL:      doc.URL,
			Hash:     ComputeHash(r.Content),
		}

		committed, err := store.ReadDocument(ctx, doc.Filename)
		switch {
		case docsync.ErrorCode(err) == docsync.ENOTFOUND:
			ch.Type = docsync.ChangeAdded
			ch.Content = r.Content
		case err != nil:
			return nil, fmt.Errorf("read committed %s: %w", doc.Filename, err)
		default:
			ch.PreviousHash = ComputeHash(committed.Content)
			if ch.PreviousHash == ch.Hash && committed.Content == r.Content {
				ch.Type = docsync.ChangeUnchanged
			} else {
				ch.Type = docsync.ChangeModified
				ch.Content = r.Content
			}
		}
		set.Changes = append(set.Changes, ch)
	}

	names, err := store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list committed documents: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		if listed[name] {
			continue
		}
		ch := &docsync.Change{Filename: name, Type: docsync.ChangeDeleted}
		if committed, err := store.ReadDocument(ctx, name); err == nil {
			ch.Title = committed.Title
			ch.PreviousHash = ComputeHash(committed.Content)
		}
		set.Changes = append(set.Changes, ch)
	}

	return set, nil
}
