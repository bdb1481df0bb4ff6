package spyder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/spyder"
	"github.com/fwojciec/spyder/mock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryID(t *testing.T) {
	t.Parallel()

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			spyder.EntryID("abc", 2, "size=500,overlap=50"),
			spyder.EntryID("abc", 2, "size=500,overlap=50"))
	})

	t.Run("is a valid UUID", func(t *testing.T) {
		t.Parallel()

		_, err := uuid.Parse(spyder.EntryID("abc", 0, "f"))
		assert.NoError(t, err)
	})

	t.Run("differs by content, index and fingerprint", func(t *testing.T) {
		t.Parallel()

		base := spyder.EntryID("abc", 0, "f")
		assert.NotEqual(t, base, spyder.EntryID("abd", 0, "f"))
		assert.NotEqual(t, base, spyder.EntryID("abc", 1, "f"))
		assert.NotEqual(t, base, spyder.EntryID("abc", 0, "g"))
	})
}

func TestCosineDistance(t *testing.T) {
	t.Parallel()

	t.Run("identical vectors", func(t *testing.T) {
		t.Parallel()

		v := []float32{0.3, -1.2, 4.5}
		assert.InDelta(t, 0, spyder.CosineDistance(v, v), 1e-6)
	})

	t.Run("scaled vectors", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 0, spyder.CosineDistance([]float32{1, 2}, []float32{2, 4}), 1e-6)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 1, spyder.CosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-6)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 2, spyder.CosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	})

	t.Run("length mismatch", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, float32(1), spyder.CosineDistance([]float32{1}, []float32{1, 0}))
	})

	t.Run("zero vector", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, float32(1), spyder.CosineDistance([]float32{0, 0}, []float32{1, 0}))
	})
}

func TestNewEntry(t *testing.T) {
	t.Parallel()

	doc := spyder.NewDocument(spyder.WorkerWeb, "https://example.com/a.pdf", "Report 1", "application/pdf", "text")
	chunk := &spyder.Chunk{ID: "id-1", DocumentID: doc.ID, Index: 3, Offset: 1350, Content: "chunk"}
	emb := &spyder.Embedding{ChunkID: "id-1", Model: "all-minilm", Vector: []float32{1, 2}}

	e := spyder.NewEntry("spyder", "size=500,overlap=50,model=all-minilm", doc, chunk, emb)

	require.NoError(t, e.Validate())
	assert.Equal(t, "id-1", e.ID)
	assert.Equal(t, doc.ID, e.DocumentID)
	assert.Equal(t, 3, e.ChunkIndex)
	assert.Equal(t, 1350, e.Offset)
	assert.Equal(t, "chunk", e.Text)
	assert.Equal(t, "https://example.com/a.pdf", e.Source)
	assert.Equal(t, "Report 1", e.Title)
	assert.Equal(t, doc.ContentHash, e.ContentHash)
	assert.Equal(t, "all-minilm", e.Model)
}

func TestEntry_Validate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, spyder.EINVALID, spyder.ErrorCode((&spyder.Entry{Collection: "c", Vector: []float32{1}}).Validate()))
	assert.Equal(t, spyder.EINVALID, spyder.ErrorCode((&spyder.Entry{ID: "x", Vector: []float32{1}}).Validate()))
	assert.Equal(t, spyder.EINVALID, spyder.ErrorCode((&spyder.Entry{ID: "x", Collection: "c"}).Validate()))
}

func TestEmbedChunks(t *testing.T) {
	t.Parallel()

	t.Run("returns one embedding per chunk in order", func(t *testing.T) {
		t.Parallel()

		e := &mock.Embedder{
			ModelFn: func() string { return "m" },
			EmbedFn: func(_ context.Context, texts []string) ([][]float32, error) {
				out := make([][]float32, len(texts))
				for i, s := range texts {
					out[i] = []float32{float32(len(s))}
				}
				return out, nil
			},
		}
		chunks := []*spyder.Chunk{{ID: "a", Content: "x"}, {ID: "b", Content: "yy"}}

		embs, err := spyder.EmbedChunks(context.Background(), e, chunks)

		require.NoError(t, err)
		require.Len(t, embs, 2)
		assert.Equal(t, "a", embs[0].ChunkID)
		assert.Equal(t, []float32{1}, embs[0].Vector)
		assert.Equal(t, "b", embs[1].ChunkID)
		assert.Equal(t, []float32{2}, embs[1].Vector)
		assert.Equal(t, "m", embs[1].Model)
	})

	t.Run("count mismatch is an internal error", func(t *testing.T) {
		t.Parallel()

		e := &mock.Embedder{
			ModelFn: func() string { return "m" },
			EmbedFn: func(context.Context, []string) ([][]float32, error) {
				return [][]float32{{1}}, nil
			},
		}
		chunks := []*spyder.Chunk{{ID: "a"}, {ID: "b"}}

		_, err := spyder.EmbedChunks(context.Background(), e, chunks)

		assert.Equal(t, spyder.EINTERNAL, spyder.ErrorCode(err))
	})

	t.Run("propagates embedder errors", func(t *testing.T) {
		t.Parallel()

		cause := spyder.Errorf(spyder.EMODEL, "model gone")
		e := &mock.Embedder{
			EmbedFn: func(context.Context, []string) ([][]float32, error) { return nil, cause },
		}

		_, err := spyder.EmbedChunks(context.Background(), e, []*spyder.Chunk{{ID: "a"}})

		assert.True(t, errors.Is(err, cause))
	})
}
