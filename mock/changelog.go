package mock

import (
	"context"

	"github.com/fwojciec/docsync"
)

var _ docsync.ChangelogService = (*ChangelogService)(nil)

// ChangelogService is a mock implementation of docsync.ChangelogService.
type ChangelogService struct {
	AppendEntryFn func(ctx context.Context, entry *docsync.ChangelogEntry) error
	FindEntriesFn func(ctx context.Context, filter docsync.ChangelogFilter) ([]*docsync.ChangelogEntry, error)
}

func (s *ChangelogService) AppendEntry(ctx context.Context, entry *docsync.ChangelogEntry) error {
	return s.AppendEntryFn(ctx, entry)
}

func (s *ChangelogService) FindEntries(ctx context.Context, filter docsync.ChangelogFilter) ([]*docsync.ChangelogEntry, error) {
	return s.FindEntriesFn(ctx, filter)
}
