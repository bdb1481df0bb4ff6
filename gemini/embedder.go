package gemini

import (
	"context"
	"errors"
	"net/http"

	"github.com/fwojciec/spyder"
	"google.golang.org/genai"
)

var _ spyder.Embedder = (*Embedder)(nil)

// Embedder implements spyder.Embedder using a Gemini embedding model.
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder creates a new Embedder for model.
func NewEmbedder(client *genai.Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.model
}

// Load verifies the model exists and is reachable.
func (e *Embedder) Load(ctx context.Context) error {
	if e.model == "" {
		return spyder.Errorf(spyder.ECONFIG, "embedding model required")
	}
	if _, err := e.client.Models.Get(ctx, e.model, nil); err != nil {
		return spyder.WrapError(spyder.EMODEL, err, "load embedding model %q", e.model)
	}
	return nil
}

// Embed embeds texts in a single request.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	res, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, embedError(err, e.model)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, spyder.Errorf(spyder.EINTERNAL, "gemini returned %d embeddings for %d texts", len(res.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range res.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// embedError classifies a failed embed request. A missing model, rejected
// credentials or a failed connection make the model unavailable for every
// document. Other API errors fail only the request.
func embedError(err error, model string) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return spyder.WrapError(spyder.EMODEL, err, "embed with model %q", model)
	}
	switch {
	case apiErr.Code == http.StatusNotFound,
		apiErr.Code == http.StatusUnauthorized,
		apiErr.Code == http.StatusForbidden:
		return spyder.WrapError(spyder.EMODEL, err, "embed with model %q", model)
	case apiErr.Code >= http.StatusBadRequest && apiErr.Code < http.StatusInternalServerError:
		return spyder.WrapError(spyder.EINVALID, err, "model %q rejected input", model)
	default:
		return spyder.WrapError(spyder.EINTERNAL, err, "embed with model %q", model)
	}
}
