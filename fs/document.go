package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/docsync"
)

// Ensure DocumentStore implements docsync.DocumentStore at compile time.
var _ docsync.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps committed documents as flat markdown files in a
// single directory.
type DocumentStore struct {
	dir string
}

// NewDocumentStore creates a DocumentStore rooted at dir.
// The directory is created on first write.
func NewDocumentStore(dir string) *DocumentStore {
	return &DocumentStore{dir: dir}
}

// Dir returns the store directory.
func (s *DocumentStore) Dir() string {
	return s.dir
}

func (s *DocumentStore) path(filename string) (string, error) {
	if err := docsync.ValidateFilename(filename); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, filename), nil
}

func (s *DocumentStore) ReadDocument(ctx context.Context, filename string) (*docsync.Document, error) {
	path, err := s.path(filename)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, docsync.Errorf(docsync.ENOTFOUND, "document %q not found", filename)
	} else if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	content := string(data)
	return &docsync.Document{
		Filename:   filename,
		Title:      docsync.DocumentTitle(content),
		Content:    content,
		ModifiedAt: info.ModTime(),
	}, nil
}

func (s *DocumentStore) WriteDocument(ctx context.Context, filename, content string) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, []byte(content))
}

func (s *DocumentStore) DeleteDocument(ctx context.Context, filename string) error {
	path, err := s.path(filename)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return docsync.Errorf(docsync.ENOTFOUND, "document %q not found", filename)
	}
	return err
}

func (s *DocumentStore) ListDocuments(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	// os.ReadDir sorts by filename.
	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".md") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *DocumentStore) Stats(ctx context.Context) (*docsync.StoreStats, error) {
	names, err := s.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	stats := &docsync.StoreStats{}
	for _, name := range names {
		info, err := os.Stat(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		stats.Documents++
		stats.Bytes += info.Size()
		if info.ModTime().After(stats.ModifiedAt) {
			stats.ModifiedAt = info.ModTime()
		}
	}
	return stats, nil
}
