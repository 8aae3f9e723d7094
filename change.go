package docsync

import (
	"context"
	"time"
)

// ChangeType classifies a document after diffing fresh content against
// the committed store.
type ChangeType string

// ChangeType constants.
const (
	ChangeAdded     ChangeType = "added"
	ChangeModified  ChangeType = "modified"
	ChangeDeleted   ChangeType = "deleted"
	ChangeUnchanged ChangeType = "unchanged"
)

// Change is one classified document.
// Content holds the new payload for added and modified documents.
// PreviousHash references the committed content being replaced or removed.
type Change struct {
	Filename     string     `json:"filename"`
	Type         ChangeType `json:"type"`
	Title        string     `json:"title,omitempty"`
	URL          string     `json:"url,omitempty"`
	Content      string     `json:"-"`
	Hash         string     `json:"hash,omitempty"`
	PreviousHash string     `json:"previousHash,omitempty"`
}

// FailedDocument is a document whose fetch failed during a check.
// Failed documents are never classified.
type FailedDocument struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// ChangeCounts aggregates changes by type.
type ChangeCounts struct {
	Added     int `json:"added"`
	Modified  int `json:"modified"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Total returns the number of entries that would mutate the committed store.
func (c ChangeCounts) Total() int {
	return c.Added + c.Modified + c.Deleted
}

// ChangeSet is the output of one check cycle. Added, modified and
// unchanged entries follow manifest order; deleted entries follow them in
// alphabetical order.
type ChangeSet struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"createdAt"`
	Changes   []*Change         `json:"changes"`
	Failed    []*FailedDocument `json:"failed,omitempty"`
}

// Counts returns the number of entries of each type.
func (s *ChangeSet) Counts() ChangeCounts {
	var c ChangeCounts
	for _, ch := range s.Changes {
		switch ch.Type {
		case ChangeAdded:
			c.Added++
		case ChangeModified:
			c.Modified++
		case ChangeDeleted:
			c.Deleted++
		case ChangeUnchanged:
			c.Unchanged++
		}
	}
	c.Failed = len(s.Failed)
	return c
}

// HasChanges reports whether any entry would mutate the committed store.
func (s *ChangeSet) HasChanges() bool {
	return s.Counts().Total() > 0
}

// Pending returns the entries that mutate the committed store, in order.
func (s *ChangeSet) Pending() []*Change {
	var changes []*Change
	for _, ch := range s.Changes {
		if ch.Type != ChangeUnchanged {
			changes = append(changes, ch)
		}
	}
	return changes
}

// Filenames returns the filenames of the given type, in order. The result
// is never nil.
func (s *ChangeSet) Filenames(typ ChangeType) []string {
	names := []string{}
	for _, ch := range s.Changes {
		if ch.Type == typ {
			names = append(names, ch.Filename)
		}
	}
	return names
}

// StagingStore holds at most one pending change set, separate from the
// committed store.
type StagingStore interface {
	// Stage atomically replaces any pending change set with s.
	// Returns ESTAGING if the set cannot be written; the previous pending
	// set, if any, is left in place.
	Stage(ctx context.Context, s *ChangeSet) error

	// ReadPending returns the pending change set, or nil if nothing is staged.
	ReadPending(ctx context.Context) (*ChangeSet, error)

	// Discard removes the pending change set. Discarding when nothing is
	// pending is a no-op.
	Discard(ctx context.Context) error
}
