package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsync"
)

// Ensure LoggingChangelogService implements docsync.ChangelogService.
var _ docsync.ChangelogService = (*LoggingChangelogService)(nil)

// LoggingChangelogService wraps a ChangelogService with logging.
type LoggingChangelogService struct {
	next   docsync.ChangelogService
	logger *slog.Logger
}

// NewLoggingChangelogService creates a new LoggingChangelogService.
func NewLoggingChangelogService(next docsync.ChangelogService, logger *slog.Logger) *LoggingChangelogService {
	return &LoggingChangelogService{next: next, logger: logger}
}

func (s *LoggingChangelogService) AppendEntry(ctx context.Context, entry *docsync.ChangelogEntry) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("changelog append",
			"id", entry.ID,
			"added", entry.Added,
			"modified", entry.Modified,
			"deleted", entry.Deleted,
			"failed", entry.Failed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.AppendEntry(ctx, entry)
}

func (s *LoggingChangelogService) FindEntries(ctx context.Context, filter docsync.ChangelogFilter) (entries []*docsync.ChangelogEntry, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("changelog find",
			"latest", filter.Latest,
			"count", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindEntries(ctx, filter)
}
