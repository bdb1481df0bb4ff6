package mock

import (
	"context"

	"github.com/fwojciec/spyder"
)

var _ spyder.EntryService = (*EntryService)(nil)

// EntryService is a mock implementation of spyder.EntryService.
type EntryService struct {
	UpsertEntryFn  func(ctx context.Context, entry *spyder.Entry) (bool, error)
	SearchFn       func(ctx context.Context, vector []float32, k int) ([]spyder.SearchResult, error)
	CountEntriesFn func(ctx context.Context) (int, error)
}

func (s *EntryService) UpsertEntry(ctx context.Context, entry *spyder.Entry) (bool, error) {
	return s.UpsertEntryFn(ctx, entry)
}

func (s *EntryService) Search(ctx context.Context, vector []float32, k int) ([]spyder.SearchResult, error) {
	return s.SearchFn(ctx, vector, k)
}

func (s *EntryService) CountEntries(ctx context.Context) (int, error) {
	return s.CountEntriesFn(ctx)
}
