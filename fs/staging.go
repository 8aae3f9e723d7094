package fs

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/docsync"
	"github.com/google/uuid"
)

// Ensure StagingStore implements docsync.StagingStore at compile time.
var _ docsync.StagingStore = (*StagingStore)(nil)

// StagingStore keeps at most one pending change set on disk.
//
// Layout under baseDir:
//
//	.pending/pending.json     change set metadata
//	.pending/docs/<filename>  new content for added and modified entries
//
// Stage builds the new set in a sibling temp directory and swaps it into
// place with renames, so a reader sees either the old set or the new one.
type StagingStore struct {
	baseDir string
	name    string
}

// NewStagingStore creates a StagingStore under baseDir.
func NewStagingStore(baseDir string) *StagingStore {
	return &StagingStore{
		baseDir: baseDir,
		name:    PendingDirName,
	}
}

func (s *StagingStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

func (s *StagingStore) tempDir(id string) string {
	return filepath.Join(s.baseDir, s.name+".tmp-"+id)
}

func (s *StagingStore) oldDir(id string) string {
	return filepath.Join(s.baseDir, s.name+".old-"+id)
}

func (s *StagingStore) Stage(ctx context.Context, set *docsync.ChangeSet) error {
	if set == nil {
		return docsync.Errorf(docsync.EINVALID, "change set required")
	}
	for _, ch := range set.Changes {
		if err := docsync.ValidateFilename(ch.Filename); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return docsync.Errorf(docsync.ESTAGING, "create data directory: %s", err)
	}

	id := uuid.NewString()
	tmp := s.tempDir(id)
	if err := s.write(tmp, set); err != nil {
		_ = os.RemoveAll(tmp)
		return docsync.Errorf(docsync.ESTAGING, "write pending changes: %s", err)
	}

	// Move any existing set aside so it can be restored.
	old := s.oldDir(id)
	hadOld := true
	if err := os.Rename(s.finalDir(), old); errors.Is(err, fs.ErrNotExist) {
		hadOld = false
	} else if err != nil {
		_ = os.RemoveAll(tmp)
		return docsync.Errorf(docsync.ESTAGING, "replace pending changes: %s", err)
	}

	if err := os.Rename(tmp, s.finalDir()); err != nil {
		_ = os.RemoveAll(tmp)
		if hadOld {
			_ = os.Rename(old, s.finalDir())
		}
		return docsync.Errorf(docsync.ESTAGING, "replace pending changes: %s", err)
	}

	if hadOld {
		_ = os.RemoveAll(old)
	}
	return nil
}

func (s *StagingStore) write(dir string, set *docsync.ChangeSet) error {
	docsDir := filepath.Join(dir, DocsDirName)
	if err := os.MkdirAll(docsDir, 0755); err != nil {
		return err
	}

	for _, ch := range set.Changes {
		if ch.Type != docsync.ChangeAdded && ch.Type != docsync.ChangeModified {
			continue
		}
		if err := os.WriteFile(filepath.Join(docsDir, ch.Filename), []byte(ch.Content), 0644); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, pendingFileName), data, 0644)
}

func (s *StagingStore) ReadPending(ctx context.Context) (*docsync.ChangeSet, error) {
	data, err := os.ReadFile(filepath.Join(s.finalDir(), pendingFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var set docsync.ChangeSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, docsync.Errorf(docsync.ESTAGING, "corrupt pending changes: %s", err)
	}

	docsDir := filepath.Join(s.finalDir(), DocsDirName)
	for _, ch := range set.Changes {
		if ch.Type != docsync.ChangeAdded && ch.Type != docsync.ChangeModified {
			continue
		}
		if err := docsync.ValidateFilename(ch.Filename); err != nil {
			return nil, docsync.Errorf(docsync.ESTAGING, "corrupt pending changes: %s", docsync.ErrorMessage(err))
		}
		content, err := os.ReadFile(filepath.Join(docsDir, ch.Filename))
		if err != nil {
			return nil, docsync.Errorf(docsync.ESTAGING, "pending content for %q unreadable: %s", ch.Filename, err)
		}
		ch.Content = string(content)
	}

	return &set, nil
}

func (s *StagingStore) Discard(ctx context.Context) error {
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}

	// Leftovers from an interrupted Stage.
	for _, pattern := range []string{".tmp-*", ".old-*"} {
		leftovers, _ := filepath.Glob(filepath.Join(s.baseDir, s.name+pattern))
		for _, dir := range leftovers {
			_ = os.RemoveAll(dir)
		}
	}
	return nil
}
