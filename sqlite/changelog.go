package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/docsync"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docsync.ChangelogService = (*ChangelogService)(nil)

// ChangelogService implements docsync.ChangelogService using SQLite.
type ChangelogService struct {
	db *DB

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewChangelogService creates a new ChangelogService.
func NewChangelogService(db *DB) *ChangelogService {
	return &ChangelogService{db: db, Now: time.Now}
}

// AppendEntry records a new entry, assigning ID and CreatedAt when unset.
func (s *ChangelogService) AppendEntry(ctx context.Context, entry *docsync.ChangelogEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	entry.Message = strings.TrimSpace(entry.Message)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO changelog (id, message, added, modified, deleted, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Message, entry.Added, entry.Modified, entry.Deleted, entry.Failed,
		entry.CreatedAt.Format(timeLayout))
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return docsync.Errorf(docsync.ECONFLICT, "changelog entry %q already exists", entry.ID)
	}
	return err
}

// FindEntries returns entries in insertion order, oldest first.
// A positive filter.Latest keeps only the most recent N entries.
func (s *ChangelogService) FindEntries(ctx context.Context, filter docsync.ChangelogFilter) ([]*docsync.ChangelogEntry, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT seq, id, message, added, modified, deleted, failed, created_at FROM changelog")
	if filter.Latest > 0 {
		query.WriteString(" WHERE seq IN (SELECT seq FROM changelog ORDER BY seq DESC LIMIT ?)")
		args = append(args, filter.Latest)
	}
	query.WriteString(" ORDER BY seq ASC")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*docsync.ChangelogEntry
	for rows.Next() {
		var entry docsync.ChangelogEntry
		var seq int64
		var createdAt string

		if err := rows.Scan(&seq, &entry.ID, &entry.Message, &entry.Added, &entry.Modified,
			&entry.Deleted, &entry.Failed, &createdAt); err != nil {
			return nil, err
		}

		entry.CreatedAt, err = parseTime(createdAt, "created_at")
		if err != nil {
			return nil, err
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
