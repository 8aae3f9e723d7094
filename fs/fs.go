// Package fs provides file-based storage for committed documents,
// pending change sets and the cached manifest.
package fs

import (
	"os"
	"path/filepath"
)

// Directory and file names under the data directory.
const (
	DocsDirName    = "docs"
	PendingDirName = ".pending"
	CacheDirName   = "cache"

	pendingFileName  = "pending.json"
	manifestFileName = "manifest.json"
)

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
