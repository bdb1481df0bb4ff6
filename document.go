package spyder

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Worker names an ingestion mode selecting a Source implementation.
type Worker string

// Supported workers.
const (
	WorkerLocal Worker = "local"
	WorkerWeb   Worker = "web"
	WorkerURL   Worker = "url"
)

// ParseWorker returns the Worker for name.
// Returns ECONFIG if the name is not a known worker.
func ParseWorker(name string) (Worker, error) {
	switch w := Worker(name); w {
	case WorkerLocal, WorkerWeb, WorkerURL:
		return w, nil
	}
	return "", Errorf(ECONFIG, "invalid worker %q (expected local, web or url)", name)
}

// Document is the raw text of one ingested file or page together with its
// origin. Documents are immutable once produced by a Source.
type Document struct {
	ID          string    `json:"id"`
	Worker      Worker    `json:"worker"`
	Source      string    `json:"source"` // file path or URL
	Title       string    `json:"title"`
	ContentType string    `json:"contentType"`
	Content     string    `json:"content"`
	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// NewDocument returns a Document for content retrieved from source.
// The content hash doubles as the document ID.
func NewDocument(worker Worker, source, title, contentType, content string) *Document {
	hash := HashContent(content)
	return &Document{
		ID:          hash,
		Worker:      worker,
		Source:      source,
		Title:       title,
		ContentType: contentType,
		Content:     content,
		ContentHash: hash,
		FetchedAt:   time.Now().UTC(),
	}
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.Source == "" {
		return Errorf(EINVALID, "document source required")
	}
	if d.ContentHash == "" {
		return Errorf(EINVALID, "document content hash required")
	}
	return nil
}

// HashContent computes the xxHash of content as a 16 character hex string.
func HashContent(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// Source produces the documents of one worker.
//
// Documents returns a lazy, finite sequence. Each call re-scans from scratch.
// A pair with a nil document and an EUNREADABLE or EFETCH error reports a
// document that was skipped; the sequence continues after it. Any other
// error is fatal and is the last value produced.
//
// Validate reports configuration errors (ECONFIG) without producing any
// documents, so a run can reject every worker before the first write.
type Source interface {
	Worker() Worker
	Validate() error
	Documents(ctx context.Context) iter.Seq2[*Document, error]
}
