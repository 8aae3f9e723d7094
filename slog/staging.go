package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsync"
)

// Ensure LoggingStagingStore implements docsync.StagingStore.
var _ docsync.StagingStore = (*LoggingStagingStore)(nil)

// LoggingStagingStore wraps a StagingStore with debug logging.
type LoggingStagingStore struct {
	next   docsync.StagingStore
	logger *slog.Logger
}

// NewLoggingStagingStore creates a new LoggingStagingStore.
func NewLoggingStagingStore(next docsync.StagingStore, logger *slog.Logger) *LoggingStagingStore {
	return &LoggingStagingStore{next: next, logger: logger}
}

func (s *LoggingStagingStore) Stage(ctx context.Context, set *docsync.ChangeSet) (err error) {
	defer func(begin time.Time) {
		attrs := []any{"duration", time.Since(begin), "err", err}
		if set != nil {
			counts := set.Counts()
			attrs = append(attrs, "id", set.ID, "added", counts.Added, "modified", counts.Modified, "deleted", counts.Deleted)
		}
		s.logger.Debug("stage", attrs...)
	}(time.Now())
	return s.next.Stage(ctx, set)
}

func (s *LoggingStagingStore) ReadPending(ctx context.Context) (set *docsync.ChangeSet, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("read pending",
			"pending", set != nil,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ReadPending(ctx)
}

func (s *LoggingStagingStore) Discard(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("discard pending",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Discard(ctx)
}
