package mock

import (
	"context"
	"iter"

	"github.com/fwojciec/spyder"
)

var _ spyder.Source = (*Source)(nil)

// Source is a mock implementation of spyder.Source.
type Source struct {
	WorkerFn    func() spyder.Worker
	ValidateFn  func() error
	DocumentsFn func(ctx context.Context) iter.Seq2[*spyder.Document, error]
}

func (s *Source) Worker() spyder.Worker {
	return s.WorkerFn()
}

// Validate succeeds when ValidateFn is not set.
func (s *Source) Validate() error {
	if s.ValidateFn == nil {
		return nil
	}
	return s.ValidateFn()
}

func (s *Source) Documents(ctx context.Context) iter.Seq2[*spyder.Document, error] {
	return s.DocumentsFn(ctx)
}

var _ spyder.Loader = (*Loader)(nil)

// Loader is a mock implementation of spyder.Loader.
type Loader struct {
	LoadFn     func(ctx context.Context, name, contentType string, data []byte) (*spyder.LoadResult, error)
	SupportsFn func(name string) bool
}

func (l *Loader) Load(ctx context.Context, name, contentType string, data []byte) (*spyder.LoadResult, error) {
	return l.LoadFn(ctx, name, contentType, data)
}

func (l *Loader) Supports(name string) bool {
	return l.SupportsFn(name)
}
