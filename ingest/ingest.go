// Package ingest runs the ingestion pipeline. Documents produced by each
// source are split into chunks, embedded in batches and written to the entry
// store, and the outcome of every worker is collected in a Report.
package ingest

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/spyder"
	"github.com/sethvargo/go-retry"
)

// Defaults applied when the corresponding Ingester field is zero.
const (
	DefaultBatchSize       = 32
	DefaultWriteRetryDelay = 100 * time.Millisecond
)

// Ingester moves documents from sources into the entry store.
type Ingester struct {
	Embedder   spyder.Embedder
	Entries    spyder.EntryService
	Splitter   spyder.Splitter
	Collection string

	// BatchSize is the number of chunks sent to the embedder per request.
	BatchSize int

	// WriteRetryDelay is the pause before the single retry of a failed write.
	WriteRetryDelay time.Duration

	// Tokens, if set, counts the tokens of every ingested document.
	Tokens spyder.TokenCounter

	Logger *slog.Logger
}

// New returns an Ingester configured from cfg.
func New(cfg *spyder.Config, embedder spyder.Embedder, entries spyder.EntryService) *Ingester {
	return &Ingester{
		Embedder:        embedder,
		Entries:         entries,
		Splitter:        cfg.TextSplitter,
		Collection:      cfg.Store.Collection,
		BatchSize:       cfg.Embeddings.BatchSize,
		WriteRetryDelay: cfg.Store.WriteRetryDelay,
	}
}

// Fingerprint identifies the settings an entry was produced under: the
// splitter settings and the embedding model.
func Fingerprint(s spyder.Splitter, model string) string {
	return s.Fingerprint() + ",model=" + model
}

// Run ingests the documents of each source in order.
//
// Splitter settings, the configuration of every source and the embedding
// model are checked before anything is written; a failure there is returned with a nil report. Per-document
// failures are recorded in the report and the run continues. Any other error
// stops the run and is returned together with the results so far.
func (in *Ingester) Run(ctx context.Context, sources []spyder.Source) (*Report, error) {
	if err := in.Splitter.Validate(); err != nil {
		return nil, err
	}
	if in.Collection == "" {
		return nil, spyder.Errorf(spyder.ECONFIG, "store collection required")
	}
	for _, src := range sources {
		if err := src.Validate(); err != nil {
			return nil, err
		}
	}
	if err := in.Embedder.Load(ctx); err != nil {
		if spyder.ErrorCode(err) == spyder.EMODEL {
			return nil, err
		}
		return nil, spyder.WrapError(spyder.EMODEL, err, "load embedding model %q", in.Embedder.Model())
	}

	report := &Report{}
	for _, src := range sources {
		res, err := in.ingestSource(ctx, src)
		report.Results = append(report.Results, res)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (in *Ingester) ingestSource(ctx context.Context, src spyder.Source) (*Result, error) {
	res := &Result{Worker: src.Worker()}
	log := in.logger().With("worker", res.Worker)
	start := time.Now()

	for doc, err := range src.Documents(ctx) {
		if err != nil {
			if !spyder.IsRecoverable(err) {
				return res, err
			}
			res.Skipped = append(res.Skipped, err)
			log.Warn("skip document", "err", err)
			continue
		}
		if err := in.ingestDocument(ctx, doc, res, log); err != nil {
			return res, err
		}
	}

	res.Duration = time.Since(start)
	log.Info("worker finished",
		"documents", res.Documents,
		"inserted", res.Inserted,
		"duplicates", res.Duplicates,
		"skipped", len(res.Skipped),
		"duration", res.Duration)
	return res, nil
}

// ingestDocument writes the entries of one document. Only fatal errors are
// returned; everything else is recorded in res.
func (in *Ingester) ingestDocument(ctx context.Context, doc *spyder.Document, res *Result, log *slog.Logger) error {
	chunks, err := in.Splitter.Split(doc)
	if err != nil {
		return err
	}

	fingerprint := Fingerprint(in.Splitter, in.Embedder.Model())
	for _, c := range chunks {
		c.ID = spyder.EntryID(doc.ContentHash, c.Index, fingerprint)
	}

	embeddings, err := in.embed(ctx, chunks)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if spyder.ErrorCode(err) == spyder.EMODEL {
			return err
		}
		res.Failed = append(res.Failed, Failure{Source: doc.Source, Err: err})
		log.Warn("embed document", "source", doc.Source, "err", err)
		return nil
	}

	res.Documents++
	res.Chunks += len(chunks)
	res.Bytes += len(doc.Content)
	for i, c := range chunks {
		entry := spyder.NewEntry(in.Collection, fingerprint, doc, c, embeddings[i])
		inserted, err := in.upsert(ctx, entry)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			res.FailedWrites++
			log.Error("write entry", "source", doc.Source, "chunk", c.Index, "err", err)
		case inserted:
			res.Inserted++
		default:
			res.Duplicates++
		}
	}

	if in.Tokens != nil {
		n, err := in.Tokens.CountTokens(ctx, doc.Content)
		if err != nil {
			log.Debug("count tokens", "source", doc.Source, "err", err)
		} else {
			res.Tokens += n
		}
	}
	return nil
}

// embed embeds chunks in batches of BatchSize. Either every chunk is
// embedded or an error is returned.
func (in *Ingester) embed(ctx context.Context, chunks []*spyder.Chunk) ([]*spyder.Embedding, error) {
	size := in.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	embeddings := make([]*spyder.Embedding, 0, len(chunks))
	for start := 0; start < len(chunks); start += size {
		end := min(start+size, len(chunks))
		batch, err := spyder.EmbedChunks(ctx, in.Embedder, chunks[start:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}

// upsert writes entry, retrying a failed write once.
func (in *Ingester) upsert(ctx context.Context, entry *spyder.Entry) (bool, error) {
	delay := in.WriteRetryDelay
	if delay <= 0 {
		delay = DefaultWriteRetryDelay
	}

	var inserted bool
	err := retry.Do(ctx, retry.WithMaxRetries(1, retry.NewConstant(delay)), func(ctx context.Context) error {
		ok, err := in.Entries.UpsertEntry(ctx, entry)
		if err != nil {
			return retry.RetryableError(err)
		}
		inserted = ok
		return nil
	})
	return inserted, err
}

func (in *Ingester) logger() *slog.Logger {
	if in.Logger != nil {
		return in.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
