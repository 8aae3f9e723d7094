package docsync

import (
	"context"
	"strings"
	"time"
)

// ChangelogEntry records a completed commit. Entries are append-only.
type ChangelogEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Message   string    `json:"message"`
	Added     int       `json:"added"`
	Modified  int       `json:"modified"`
	Deleted   int       `json:"deleted"`
	Failed    int       `json:"failed"`
}

// Validate returns an error if the entry contains invalid fields.
func (e *ChangelogEntry) Validate() error {
	if strings.TrimSpace(e.Message) == "" {
		return Errorf(EINVALID, "changelog message required")
	}
	if e.Added < 0 || e.Modified < 0 || e.Deleted < 0 || e.Failed < 0 {
		return Errorf(EINVALID, "changelog counts must not be negative")
	}
	return nil
}

// ChangelogService represents the append-only commit history.
type ChangelogService interface {
	// AppendEntry records a new entry and assigns its ID and timestamp
	// when they are unset.
	AppendEntry(ctx context.Context, entry *ChangelogEntry) error

	// FindEntries returns entries oldest first.
	FindEntries(ctx context.Context, filter ChangelogFilter) ([]*ChangelogEntry, error)
}

// ChangelogFilter represents a filter for FindEntries.
type ChangelogFilter struct {
	// Latest limits the result to the most recent N entries. Zero returns all.
	Latest int `json:"latest"`
}
