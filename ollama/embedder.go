package ollama

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/fwojciec/spyder"
	"github.com/ollama/ollama/api"
)

var _ spyder.Embedder = (*Embedder)(nil)

// Embedder implements spyder.Embedder with an Ollama embedding model.
type Embedder struct {
	client *api.Client
	model  string
}

// NewEmbedder creates a new Embedder for model.
func NewEmbedder(client *api.Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.model
}

// Load verifies the server has the model.
func (e *Embedder) Load(ctx context.Context) error {
	if e.model == "" {
		return spyder.Errorf(spyder.ECONFIG, "embedding model required")
	}
	if _, err := e.client.Show(ctx, &api.ShowRequest{Model: e.model}); err != nil {
		return spyder.WrapError(spyder.EMODEL, err, "load embedding model %q", e.model)
	}
	return nil
}

// Embed embeds texts in a single /api/embed request.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return nil, embedError(err, e.model)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, spyder.Errorf(spyder.EINTERNAL, "ollama returned %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

// embedError classifies a failed embed request. A missing model, rejected
// credentials or an unreachable server make the model unavailable for every
// document. Anything else, such as an input over the context length, fails
// only the request.
func embedError(err error, model string) error {
	var status api.StatusError
	if errors.As(err, &status) {
		switch {
		case status.StatusCode == http.StatusNotFound,
			status.StatusCode == http.StatusUnauthorized,
			status.StatusCode == http.StatusForbidden:
			return spyder.WrapError(spyder.EMODEL, err, "embed with model %q", model)
		case status.StatusCode < http.StatusInternalServerError:
			return spyder.WrapError(spyder.EINVALID, err, "model %q rejected input", model)
		default:
			return spyder.WrapError(spyder.EINTERNAL, err, "embed with model %q", model)
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return spyder.WrapError(spyder.EINTERNAL, err, "embed with model %q", model)
	}
	return spyder.WrapError(spyder.EMODEL, err, "embed with model %q", model)
}
