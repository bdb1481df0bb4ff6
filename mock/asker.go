package mock

import (
	"context"

	"github.com/fwojciec/spyder"
)

var _ spyder.Asker = (*Asker)(nil)

// Asker is a mock implementation of spyder.Asker.
type Asker struct {
	AskFn func(ctx context.Context, question string, results []spyder.SearchResult) (string, error)
}

func (a *Asker) Ask(ctx context.Context, question string, results []spyder.SearchResult) (string, error) {
	return a.AskFn(ctx, question, results)
}

var _ spyder.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of spyder.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
