package mock

import (
	"context"

	"github.com/fwojciec/docsync"
)

var _ docsync.StagingStore = (*StagingStore)(nil)

// StagingStore is a mock implementation of docsync.StagingStore.
type StagingStore struct {
	StageFn       func(ctx context.Context, s *docsync.ChangeSet) error
	ReadPendingFn func(ctx context.Context) (*docsync.ChangeSet, error)
	DiscardFn     func(ctx context.Context) error
}

func (s *StagingStore) Stage(ctx context.Context, set *docsync.ChangeSet) error {
	return s.StageFn(ctx, set)
}

func (s *StagingStore) ReadPending(ctx context.Context) (*docsync.ChangeSet, error) {
	return s.ReadPendingFn(ctx)
}

func (s *StagingStore) Discard(ctx context.Context) error {
	return s.DiscardFn(ctx)
}
