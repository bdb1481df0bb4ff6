package mock

import (
	"context"

	"github.com/fwojciec/spyder"
)

var _ spyder.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of spyder.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*spyder.Resource, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*spyder.Resource, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ spyder.DownloadArchive = (*DownloadArchive)(nil)

// DownloadArchive is a mock implementation of spyder.DownloadArchive.
type DownloadArchive struct {
	SaveFn   func(ctx context.Context, res *spyder.Resource) error
	CommitFn func() error
	AbortFn  func() error
}

func (a *DownloadArchive) Save(ctx context.Context, res *spyder.Resource) error {
	return a.SaveFn(ctx, res)
}

func (a *DownloadArchive) Commit() error {
	return a.CommitFn()
}

func (a *DownloadArchive) Abort() error {
	return a.AbortFn()
}
