package fs

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/spyder"
)

// Ensure DirectorySource implements spyder.Source at compile time.
var _ spyder.Source = (*DirectorySource)(nil)

// DirectorySource loads every supported file below a directory.
type DirectorySource struct {
	Root   string
	Loader spyder.Loader

	// Skip, if set, is called with the path of each file the loader does
	// not support.
	Skip func(path string)
}

// NewDirectorySource creates a DirectorySource reading files below root.
func NewDirectorySource(root string, loader spyder.Loader) *DirectorySource {
	return &DirectorySource{Root: root, Loader: loader}
}

// Worker returns spyder.WorkerLocal.
func (s *DirectorySource) Worker() spyder.Worker {
	return spyder.WorkerLocal
}

// Validate returns ECONFIG unless Root is an existing directory.
func (s *DirectorySource) Validate() error {
	info, err := os.Stat(s.Root)
	if err != nil {
		return spyder.WrapError(spyder.ECONFIG, err, "sourcedocuments %q", s.Root)
	}
	if !info.IsDir() {
		return spyder.Errorf(spyder.ECONFIG, "sourcedocuments %q is not a directory", s.Root)
	}
	return nil
}

// Documents walks the directory in lexical order. Hidden files and
// directories are ignored. A file that cannot be read or decoded is reported
// with EUNREADABLE and skipped.
func (s *DirectorySource) Documents(ctx context.Context) iter.Seq2[*spyder.Document, error] {
	return func(yield func(*spyder.Document, error) bool) {
		if err := s.Validate(); err != nil {
			yield(nil, err)
			return
		}

		errStop := errors.New("stop")
		err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == s.Root {
					return err
				}
				if !yield(nil, spyder.WrapError(spyder.EUNREADABLE, err, "read %s", path)) {
					return errStop
				}
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			if path != s.Root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !s.Loader.Supports(path) {
				if s.Skip != nil {
					s.Skip(path)
				}
				return nil
			}

			doc, err := s.load(ctx, path)
			if err != nil && !spyder.IsRecoverable(err) {
				yield(nil, err)
				return errStop
			}
			if !yield(doc, err) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield(nil, err)
		}
	}
}

// load reads and decodes the file at path.
func (s *DirectorySource) load(ctx context.Context, path string) (*spyder.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, spyder.WrapError(spyder.EUNREADABLE, err, "read %s", path)
	}

	loaded, err := s.Loader.Load(ctx, path, "", data)
	if err != nil {
		return nil, err
	}

	title := loaded.Title
	if title == "" {
		title = spyder.TitleFromName(path)
	}
	return spyder.NewDocument(spyder.WorkerLocal, path, title, loaded.ContentType, loaded.Text), nil
}
