package gemini

import (
	"context"

	"github.com/fwojciec/spyder"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ spyder.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens with the local Gemini tokenizer. No requests
// are made to the API.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter for the given model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, spyder.WrapError(spyder.ECONFIG, err, "tokenizer for model %q", model)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := tc.tok.CountTokens(contents, nil)
	if err != nil {
		return 0, spyder.WrapError(spyder.EINTERNAL, err, "count tokens")
	}

	return int(result.TotalTokens), nil
}
