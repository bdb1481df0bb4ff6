package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/spyder"
)

// Ensure DownloadStore implements spyder.DownloadArchive at compile time.
var _ spyder.DownloadArchive = (*DownloadStore)(nil)

// DownloadStore archives raw downloads with atomic update semantics.
// Files are saved to <dir>.tmp, then moved to <dir> on Commit.
type DownloadStore struct {
	dir string
}

// NewDownloadStore creates a DownloadStore committing to dir.
func NewDownloadStore(dir string) *DownloadStore {
	return &DownloadStore{dir: filepath.Clean(dir)}
}

func (s *DownloadStore) tempDir() string {
	return s.dir + ".tmp"
}

// Save writes the body of res to the temporary directory.
// Safe for concurrent use.
func (s *DownloadStore) Save(ctx context.Context, res *spyder.Resource) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relPath, err := URLToPath(res.URL)
	if err != nil {
		return err
	}
	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return spyder.WrapError(spyder.ESTORE, err, "create download directory")
	}
	if err := os.WriteFile(fullPath, res.Body, 0644); err != nil {
		return spyder.WrapError(spyder.ESTORE, err, "save download %s", res.URL)
	}
	return nil
}

// Commit replaces the download directory with the saved files.
// Without saved files the existing directory is left untouched.
func (s *DownloadStore) Commit() error {
	if _, err := os.Stat(s.tempDir()); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := os.RemoveAll(s.dir); err != nil {
		return spyder.WrapError(spyder.ESTORE, err, "remove %s", s.dir)
	}
	if err := os.Rename(s.tempDir(), s.dir); err != nil {
		return spyder.WrapError(spyder.ESTORE, err, "commit downloads")
	}
	return nil
}

// Abort discards the saved files.
func (s *DownloadStore) Abort() error {
	if err := os.RemoveAll(s.tempDir()); err != nil {
		return spyder.WrapError(spyder.ESTORE, err, "discard downloads")
	}
	return nil
}
