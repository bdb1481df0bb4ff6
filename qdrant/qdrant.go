// Package qdrant implements spyder.EntryService on a Qdrant server.
package qdrant

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/spyder"
	"github.com/qdrant/go-client/qdrant"
)

// Client is the subset of *qdrant.Client used by EntryService.
type Client interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Get(ctx context.Context, request *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
}

// Dial connects to the Qdrant server described by cfg.
func Dial(cfg spyder.QdrantConfig) (*qdrant.Client, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, spyder.WrapError(spyder.ESTORE, err, "connect to qdrant at %s:%d", cfg.Host, cfg.Port)
	}
	return client, nil
}

// Compile-time interface verification.
var _ spyder.EntryService = (*EntryService)(nil)

// EntryService implements spyder.EntryService for one Qdrant collection.
// The collection is created with cosine distance on the first write.
type EntryService struct {
	client     Client
	collection string

	mu     sync.Mutex
	exists bool
}

// NewEntryService creates a new EntryService over collection.
func NewEntryService(client Client, collection string) *EntryService {
	return &EntryService{client: client, collection: collection}
}

// UpsertEntry writes the entry unless a point with its ID already exists.
// Writes wait for the server to persist the point.
func (s *EntryService) UpsertEntry(ctx context.Context, entry *spyder.Entry) (bool, error) {
	if err := entry.Validate(); err != nil {
		return false, err
	}
	if entry.Collection != s.collection {
		return false, spyder.Errorf(spyder.EINVALID, "entry belongs to collection %q, not %q", entry.Collection, s.collection)
	}
	if err := s.ensureCollection(ctx, len(entry.Vector)); err != nil {
		return false, err
	}

	existing, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{qdrant.NewID(entry.ID)},
	})
	if err != nil {
		return false, spyder.WrapError(spyder.ESTORE, err, "look up entry %s", entry.ID)
	}
	if len(existing) > 0 {
		return false, nil
	}

	wait := true
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(entry.ID),
			Vectors: qdrant.NewVectors(entry.Vector...),
			Payload: qdrant.NewValueMap(payload(entry)),
		}},
	})
	if err != nil {
		return false, spyder.WrapError(spyder.ESTORE, err, "upsert entry %s", entry.ID)
	}
	return true, nil
}

// Search returns the k points nearest to vector. Qdrant reports cosine
// similarity, which is converted to distance.
func (s *EntryService) Search(ctx context.Context, vector []float32, k int) ([]spyder.SearchResult, error) {
	if k <= 0 {
		return nil, spyder.Errorf(spyder.EINVALID, "result count must be positive, got %d", k)
	}
	ok, err := s.collectionExists(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	limit := uint64(k)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, spyder.WrapError(spyder.ESTORE, err, "query collection %s", s.collection)
	}

	results := make([]spyder.SearchResult, 0, len(points))
	for _, p := range points {
		e := entryFromPayload(p.GetPayload())
		e.ID = p.GetId().GetUuid()
		e.Collection = s.collection
		results = append(results, spyder.SearchResult{
			Entry:    e,
			Distance: 1 - p.GetScore(),
		})
	}
	return results, nil
}

// CountEntries returns the exact number of points in the collection.
func (s *EntryService) CountEntries(ctx context.Context) (int, error) {
	ok, err := s.collectionExists(ctx)
	if err != nil || !ok {
		return 0, err
	}
	exact := true
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, spyder.WrapError(spyder.ESTORE, err, "count collection %s", s.collection)
	}
	return int(n), nil
}

func (s *EntryService) collectionExists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exists {
		return true, nil
	}
	ok, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return false, spyder.WrapError(spyder.ESTORE, err, "check collection %s", s.collection)
	}
	s.exists = ok
	return ok, nil
}

func (s *EntryService) ensureCollection(ctx context.Context, dim int) error {
	ok, err := s.collectionExists(ctx)
	if err != nil || ok {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return spyder.WrapError(spyder.ESTORE, err, "create collection %s", s.collection)
	}
	s.exists = true
	return nil
}

func payload(e *spyder.Entry) map[string]any {
	return map[string]any{
		"document_id":  e.DocumentID,
		"chunk_index":  int64(e.ChunkIndex),
		"offset":       int64(e.Offset),
		"text":         e.Text,
		"model":        e.Model,
		"source":       e.Source,
		"title":        e.Title,
		"content_hash": e.ContentHash,
		"fingerprint":  e.Fingerprint,
		"fetched_at":   e.FetchedAt.UTC().Format(time.RFC3339Nano),
	}
}

func entryFromPayload(p map[string]*qdrant.Value) *spyder.Entry {
	e := &spyder.Entry{
		DocumentID:  p["document_id"].GetStringValue(),
		ChunkIndex:  int(p["chunk_index"].GetIntegerValue()),
		Offset:      int(p["offset"].GetIntegerValue()),
		Text:        p["text"].GetStringValue(),
		Model:       p["model"].GetStringValue(),
		Source:      p["source"].GetStringValue(),
		Title:       p["title"].GetStringValue(),
		ContentHash: p["content_hash"].GetStringValue(),
		Fingerprint: p["fingerprint"].GetStringValue(),
	}
	if t, err := time.Parse(time.RFC3339Nano, p["fetched_at"].GetStringValue()); err == nil {
		e.FetchedAt = t
	}
	return e
}
