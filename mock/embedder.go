package mock

import (
	"context"

	"github.com/fwojciec/spyder"
)

var _ spyder.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of spyder.Embedder.
type Embedder struct {
	ModelFn func() string
	LoadFn  func(ctx context.Context) error
	EmbedFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (e *Embedder) Model() string {
	return e.ModelFn()
}

func (e *Embedder) Load(ctx context.Context) error {
	return e.LoadFn(ctx)
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedFn(ctx, texts)
}
