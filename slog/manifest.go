package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsync"
)

// Ensure LoggingManifestLoader implements docsync.ManifestLoader.
var _ docsync.ManifestLoader = (*LoggingManifestLoader)(nil)

// LoggingManifestLoader wraps a ManifestLoader with logging.
type LoggingManifestLoader struct {
	next   docsync.ManifestLoader
	logger *slog.Logger
}

// NewLoggingManifestLoader creates a new LoggingManifestLoader.
func NewLoggingManifestLoader(next docsync.ManifestLoader, logger *slog.Logger) *LoggingManifestLoader {
	return &LoggingManifestLoader{next: next, logger: logger}
}

// Load delegates to the wrapped loader and logs the source used.
func (l *LoggingManifestLoader) Load(ctx context.Context) (m *docsync.Manifest, source docsync.ManifestSource, err error) {
	defer func(begin time.Time) {
		l.logger.Info("manifest load",
			"source", source,
			"documents", docsync.TotalSections(m),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.Load(ctx)
}
