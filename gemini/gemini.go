// Package gemini provides embedding, chat and token counting on Google
// Gemini models.
package gemini

import (
	"context"

	"github.com/fwojciec/spyder"
	"google.golang.org/genai"
)

// NewClient creates a Gemini API client authenticated with apiKey.
// An empty key falls back to the GEMINI_API_KEY environment variable.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, spyder.WrapError(spyder.EMODEL, err, "create gemini client")
	}
	return client, nil
}
