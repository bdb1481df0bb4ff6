package spyder

import "context"

// Embedding is the vector representation of a chunk under a named model.
type Embedding struct {
	ChunkID string    `json:"chunkId"`
	Model   string    `json:"model"`
	Vector  []float32 `json:"vector"`
}

// Embedder converts text into fixed-length vectors using an external model.
type Embedder interface {
	// Model returns the name of the embedding model.
	Model() string

	// Load verifies the model can be used.
	// Returns EMODEL if the model cannot be loaded.
	Load(ctx context.Context) error

	// Embed returns one vector per text, in input order.
	// Returns EMODEL if the model became unavailable.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedChunks embeds chunks in a single batch and returns one Embedding per
// chunk in order. Either every chunk is embedded or an error is returned.
func EmbedChunks(ctx context.Context, e Embedder, chunks []*Chunk) ([]*Embedding, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := e.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, Errorf(EINTERNAL, "embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	embeddings := make([]*Embedding, len(chunks))
	for i, c := range chunks {
		embeddings[i] = &Embedding{
			ChunkID: c.ID,
			Model:   e.Model(),
			Vector:  vectors[i],
		}
	}
	return embeddings, nil
}
