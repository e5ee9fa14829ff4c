// Package fsutil provides the atomic replace-on-write discipline shared by
// the snapshot store, the version allocator, and the changelog writer.
//
// Writes go to a temporary file in the destination directory, are synced,
// then renamed into place, so readers never observe a partially-written
// file and a crash never truncates an existing one.
package fsutil

import (
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to path via a same-directory temp file and an
// atomic rename. The parent directory is created if missing.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
