package sqlite

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/fwojciec/spyder"
)

// Compile-time interface verification.
var _ spyder.EntryService = (*EntryService)(nil)

// EntryService implements spyder.EntryService for one collection using SQLite.
type EntryService struct {
	db         *DB
	collection string
}

// NewEntryService creates a new EntryService over collection.
func NewEntryService(db *DB, collection string) *EntryService {
	return &EntryService{db: db, collection: collection}
}

// UpsertEntry inserts the entry unless one with the same ID already exists
// in the collection.
func (s *EntryService) UpsertEntry(ctx context.Context, entry *spyder.Entry) (bool, error) {
	if err := entry.Validate(); err != nil {
		return false, err
	}
	if entry.Collection != s.collection {
		return false, spyder.Errorf(spyder.EINVALID, "entry belongs to collection %q, not %q", entry.Collection, s.collection)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (collection, id, document_id, chunk_index, char_offset, text, vector,
			model, source, title, content_hash, fingerprint, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO NOTHING
	`, s.collection, entry.ID, entry.DocumentID, entry.ChunkIndex, entry.Offset, entry.Text,
		encodeVector(entry.Vector), entry.Model, entry.Source, entry.Title, entry.ContentHash,
		entry.Fingerprint, entry.FetchedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, spyder.WrapError(spyder.ESTORE, err, "insert entry %s", entry.ID)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, spyder.WrapError(spyder.ESTORE, err, "insert entry %s", entry.ID)
	}
	return n == 1, nil
}

// Search scans the collection and returns the k entries closest to vector
// by cosine distance.
func (s *EntryService) Search(ctx context.Context, vector []float32, k int) ([]spyder.SearchResult, error) {
	if k <= 0 {
		return nil, spyder.Errorf(spyder.EINVALID, "result count must be positive, got %d", k)
	}
	if len(vector) == 0 {
		return nil, spyder.Errorf(spyder.EINVALID, "query vector required")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, chunk_index, char_offset, text, vector, model, source, title,
			content_hash, fingerprint, fetched_at
		FROM entries
		WHERE collection = ?
	`, s.collection)
	if err != nil {
		return nil, spyder.WrapError(spyder.ESTORE, err, "search collection %s", s.collection)
	}
	defer rows.Close()

	var results []spyder.SearchResult
	for rows.Next() {
		var e spyder.Entry
		var blob []byte
		var fetchedAt string

		if err := rows.Scan(&e.ID, &e.DocumentID, &e.ChunkIndex, &e.Offset, &e.Text, &blob, &e.Model,
			&e.Source, &e.Title, &e.ContentHash, &e.Fingerprint, &fetchedAt); err != nil {
			return nil, spyder.WrapError(spyder.ESTORE, err, "scan entry")
		}

		e.Collection = s.collection
		if e.Vector, err = decodeVector(blob); err != nil {
			return nil, spyder.WrapError(spyder.ESTORE, err, "decode entry %s", e.ID)
		}
		if e.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at"); err != nil {
			return nil, spyder.WrapError(spyder.ESTORE, err, "decode entry %s", e.ID)
		}

		results = append(results, spyder.SearchResult{
			Entry:    &e,
			Distance: spyder.CosineDistance(vector, e.Vector),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, spyder.WrapError(spyder.ESTORE, err, "search collection %s", s.collection)
	}

	slices.SortStableFunc(results, func(a, b spyder.SearchResult) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// CountEntries returns the number of entries in the collection.
func (s *EntryService) CountEntries(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE collection = ?", s.collection).Scan(&n)
	if err != nil {
		return 0, spyder.WrapError(spyder.ESTORE, err, "count entries")
	}
	return n, nil
}
