package spyder

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// entryNamespace scopes name-based entry identifiers.
var entryNamespace = uuid.MustParse("5b0f7c1e-2a64-4c1b-9d57-3f6f0f2e8a11")

// Entry is a persisted collection record combining chunk text, its vector
// and the metadata of the owning document.
type Entry struct {
	ID          string    `json:"id"`
	Collection  string    `json:"collection"`
	DocumentID  string    `json:"documentId"`
	ChunkIndex  int       `json:"chunkIndex"`
	Offset      int       `json:"offset"`
	Text        string    `json:"text"`
	Vector      []float32 `json:"vector,omitempty"`
	Model       string    `json:"model"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	ContentHash string    `json:"contentHash"`
	Fingerprint string    `json:"fingerprint"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Validate returns an error if the entry contains invalid fields.
func (e *Entry) Validate() error {
	if e.ID == "" {
		return Errorf(EINVALID, "entry ID required")
	}
	if e.Collection == "" {
		return Errorf(EINVALID, "entry collection required")
	}
	if len(e.Vector) == 0 {
		return Errorf(EINVALID, "entry vector required")
	}
	return nil
}

// EntryID returns the deterministic identifier of a chunk: the same content,
// chunk index and fingerprint always produce the same ID.
func EntryID(contentHash string, chunkIndex int, fingerprint string) string {
	name := contentHash + "/" + strconv.Itoa(chunkIndex) + "/" + fingerprint
	return uuid.NewSHA1(entryNamespace, []byte(name)).String()
}

// NewEntry assembles the collection entry for a chunk of doc and its embedding.
func NewEntry(collection, fingerprint string, doc *Document, chunk *Chunk, emb *Embedding) *Entry {
	return &Entry{
		ID:          chunk.ID,
		Collection:  collection,
		DocumentID:  doc.ID,
		ChunkIndex:  chunk.Index,
		Offset:      chunk.Offset,
		Text:        chunk.Content,
		Vector:      emb.Vector,
		Model:       emb.Model,
		Source:      doc.Source,
		Title:       doc.Title,
		ContentHash: doc.ContentHash,
		Fingerprint: fingerprint,
		FetchedAt:   doc.FetchedAt,
	}
}

// EntryService represents the persistence layer for collection entries.
// Implementations allow one writer and many concurrent readers.
type EntryService interface {
	// UpsertEntry stores the entry unless an entry with the same ID exists.
	// Reports whether the entry was inserted. Returns ESTORE on write failure.
	UpsertEntry(ctx context.Context, entry *Entry) (bool, error)

	// Search returns the k entries nearest to vector, closest first.
	Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error)

	// CountEntries returns the number of entries in the collection.
	CountEntries(ctx context.Context) (int, error)
}

// SearchResult is an entry matched by a nearest-neighbour query.
type SearchResult struct {
	Entry    *Entry  `json:"entry"`
	Distance float32 `json:"distance"`
}

// CosineDistance returns 1 - cos(a, b). Identical directions give 0.
// Vectors of different lengths or with zero magnitude give 1.
func CosineDistance(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(na)*math.Sqrt(nb)))
}
