package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/spyder"
	"github.com/fwojciec/spyder/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Atomic Download Archive
// Downloads are staged in a temp directory and published together.

func TestDownloadStore_SaveWritesToTempDirectory(t *testing.T) {
	t.Parallel()

	// Given a store targeting a directory
	dir := filepath.Join(t.TempDir(), "downloads")
	store := fs.NewDownloadStore(dir)

	// When I save a download
	err := store.Save(context.Background(), &spyder.Resource{
		URL:  "https://example.com/files/act.pdf",
		Body: []byte("%PDF-1.4"),
	})

	// Then the file exists in the temp directory
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir+".tmp", "example.com", "files", "act.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	// And the final directory does not exist yet
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "final directory should not exist until commit")
}

func TestDownloadStore_CommitMovesFromTempToFinal(t *testing.T) {
	t.Parallel()

	// Given a store with a saved download
	dir := filepath.Join(t.TempDir(), "downloads")
	store := fs.NewDownloadStore(dir)
	require.NoError(t, store.Save(context.Background(), &spyder.Resource{
		URL:  "https://example.com/a.txt",
		Body: []byte("alpha"),
	}))

	// When I commit
	require.NoError(t, store.Commit())

	// Then the file is in the final directory
	data, err := os.ReadFile(filepath.Join(dir, "example.com", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	// And the temp directory is gone
	_, err = os.Stat(dir + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadStore_CommitReplacesPreviousDownloads(t *testing.T) {
	t.Parallel()

	// Given a final directory from an earlier run
	dir := filepath.Join(t.TempDir(), "downloads")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "example.com"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "example.com", "old.txt"), []byte("old"), 0644))

	// When a new run saves and commits
	store := fs.NewDownloadStore(dir)
	require.NoError(t, store.Save(context.Background(), &spyder.Resource{URL: "https://example.com/new.txt", Body: []byte("new")}))
	require.NoError(t, store.Commit())

	// Then only the new download remains
	_, err := os.Stat(filepath.Join(dir, "example.com", "old.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "example.com", "new.txt"))
	assert.NoError(t, err)
}

func TestDownloadStore_CommitWithoutSavesKeepsExistingDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "downloads")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("keep"), 0644))

	store := fs.NewDownloadStore(dir)
	require.NoError(t, store.Commit())

	_, err := os.Stat(filepath.Join(dir, "keep.txt"))
	assert.NoError(t, err)
}

func TestDownloadStore_AbortDiscardsTempDirectory(t *testing.T) {
	t.Parallel()

	// Given a store with a saved download
	dir := filepath.Join(t.TempDir(), "downloads")
	store := fs.NewDownloadStore(dir)
	require.NoError(t, store.Save(context.Background(), &spyder.Resource{URL: "https://example.com/a.txt", Body: []byte("a")}))

	// When I abort
	require.NoError(t, store.Abort())

	// Then neither directory exists
	_, err := os.Stat(dir + ".tmp")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestDownloadStore_SaveRejectsCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := fs.NewDownloadStore(filepath.Join(t.TempDir(), "downloads"))
	err := store.Save(ctx, &spyder.Resource{URL: "https://example.com/a.txt"})

	assert.ErrorIs(t, err, context.Canceled)
}
