package main_test

import (
	"bytes"
	"context"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/spyder"
	main "github.com/fwojciec/spyder/cmd/spyder"
	"github.com/fwojciec/spyder/crawl"
	"github.com/fwojciec/spyder/ingest"
	"github.com/fwojciec/spyder/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memEntries is an in-memory entry store.
func memEntries() *mock.EntryService {
	var mu sync.Mutex
	seen := make(map[string]bool)
	return &mock.EntryService{
		UpsertEntryFn: func(_ context.Context, e *spyder.Entry) (bool, error) {
			mu.Lock()
			defer mu.Unlock()
			if seen[e.ID] {
				return false, nil
			}
			seen[e.ID] = true
			return true, nil
		},
	}
}

func testEmbedder() *mock.Embedder {
	return &mock.Embedder{
		ModelFn: func() string { return "all-minilm" },
		LoadFn:  func(context.Context) error { return nil },
		EmbedFn: func(_ context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vectors[i] = []float32{1, 0}
			}
			return vectors, nil
		},
	}
}

func docSource(worker spyder.Worker, docs ...*spyder.Document) *mock.Source {
	return &mock.Source{
		WorkerFn: func() spyder.Worker { return worker },
		DocumentsFn: func(context.Context) iter.Seq2[*spyder.Document, error] {
			return func(yield func(*spyder.Document, error) bool) {
				for _, d := range docs {
					if !yield(d, nil) {
						return
					}
				}
			}
		},
	}
}

func ingestDeps(stdout, stderr *bytes.Buffer, entries spyder.EntryService, factory main.SourceFactory) *main.Dependencies {
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Ingester: &ingest.Ingester{
			Embedder:        testEmbedder(),
			Entries:         entries,
			Splitter:        spyder.Splitter{Size: 500, Overlap: 50},
			Collection:      "spyder",
			BatchSize:       32,
			WriteRetryDelay: time.Millisecond,
		},
		NewSource: factory,
	}
}

func TestIngestCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints a summary per worker", func(t *testing.T) {
		t.Parallel()

		doc := spyder.NewDocument(spyder.WorkerLocal, "notes.txt", "Notes", "text/plain", strings.Repeat("a", 1200))
		var built []spyder.Worker
		factory := func(w spyder.Worker, _ []string) (spyder.Source, error) {
			built = append(built, w)
			return docSource(w, doc), nil
		}
		stdout := &bytes.Buffer{}
		deps := ingestDeps(stdout, &bytes.Buffer{}, memEntries(), factory)

		cmd := &main.IngestCmd{Workers: []string{"local"}}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []spyder.Worker{spyder.WorkerLocal}, built)
		assert.Contains(t, stdout.String(), "local: 1 documents (1.2 KB), 3 entries inserted, 0 duplicates")
		assert.NotContains(t, stdout.String(), "no new documents")
	})

	t.Run("reports no new documents on the second run", func(t *testing.T) {
		t.Parallel()

		doc := spyder.NewDocument(spyder.WorkerLocal, "notes.txt", "Notes", "text/plain", strings.Repeat("b", 1200))
		factory := func(w spyder.Worker, _ []string) (spyder.Source, error) {
			return docSource(w, doc), nil
		}
		entries := memEntries()
		cmd := &main.IngestCmd{Workers: []string{"local"}}
		require.NoError(t, cmd.Run(ingestDeps(&bytes.Buffer{}, &bytes.Buffer{}, entries, factory)))

		stdout := &bytes.Buffer{}
		err := cmd.Run(ingestDeps(stdout, &bytes.Buffer{}, entries, factory))

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "0 entries inserted, 3 duplicates")
		assert.Contains(t, stdout.String(), "no new documents")
	})

	t.Run("web root not found completes with a warning", func(t *testing.T) {
		t.Parallel()

		factory := func(spyder.Worker, []string) (spyder.Source, error) {
			return &crawl.WebSource{
				Root: "https://example.com/reports/",
				Fetcher: &mock.Fetcher{
					FetchFn: func(_ context.Context, url string) (*spyder.Resource, error) {
						return nil, spyder.NewFetchError(url, 404, nil)
					},
				},
				Parser: &mock.SiteParser{},
				Loader: &mock.Loader{},
			}, nil
		}
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := ingestDeps(stdout, stderr, memEntries(), factory)

		cmd := &main.IngestCmd{Workers: []string{"web"}}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "web: 0 documents")
		assert.Contains(t, stdout.String(), "warning: 1 skipped (1 download failures, 0 unreadable)")
		assert.Empty(t, stderr.String())
	})

	t.Run("passes links to the url worker", func(t *testing.T) {
		t.Parallel()

		var got []string
		factory := func(w spyder.Worker, links []string) (spyder.Source, error) {
			got = links
			return docSource(w), nil
		}
		deps := ingestDeps(&bytes.Buffer{}, &bytes.Buffer{}, memEntries(), factory)

		cmd := &main.IngestCmd{Workers: []string{"url"}, Links: []string{"https://example.com/a.pdf"}}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/a.pdf"}, got)
	})

	t.Run("fatal error is returned after printing partial results", func(t *testing.T) {
		t.Parallel()

		factory := func(w spyder.Worker, _ []string) (spyder.Source, error) {
			return &mock.Source{
				WorkerFn: func() spyder.Worker { return w },
				DocumentsFn: func(context.Context) iter.Seq2[*spyder.Document, error] {
					return func(yield func(*spyder.Document, error) bool) {
						yield(nil, spyder.Errorf(spyder.ECONFIG, "source directory %q does not exist", "docs"))
					}
				},
			}, nil
		}
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := ingestDeps(stdout, stderr, memEntries(), factory)

		cmd := &main.IngestCmd{Workers: []string{"local"}}
		err := cmd.Run(deps)

		assert.Equal(t, spyder.ECONFIG, spyder.ErrorCode(err))
		assert.Contains(t, stdout.String(), "local: 0 documents")
		assert.Contains(t, stderr.String(), `source directory "docs" does not exist`)
	})

	t.Run("web configuration error stops the run before local entries are written", func(t *testing.T) {
		t.Parallel()

		doc := spyder.NewDocument(spyder.WorkerLocal, "notes.txt", "Notes", "text/plain", "some notes")
		factory := func(w spyder.Worker, _ []string) (spyder.Source, error) {
			if w == spyder.WorkerWeb {
				return &crawl.WebSource{}, nil
			}
			return docSource(w, doc), nil
		}
		var writes int
		entries := &mock.EntryService{
			UpsertEntryFn: func(context.Context, *spyder.Entry) (bool, error) {
				writes++
				return true, nil
			},
		}
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		cmd := &main.IngestCmd{Workers: []string{"local", "web"}}
		err := cmd.Run(ingestDeps(stdout, stderr, entries, factory))

		assert.Equal(t, spyder.ECONFIG, spyder.ErrorCode(err))
		assert.Equal(t, 0, writes)
		assert.NotContains(t, stdout.String(), "local:")
		assert.Contains(t, stderr.String(), "crawler.root")
	})

	t.Run("model load failure", func(t *testing.T) {
		t.Parallel()

		factory := func(w spyder.Worker, _ []string) (spyder.Source, error) {
			return docSource(w), nil
		}
		stderr := &bytes.Buffer{}
		deps := ingestDeps(&bytes.Buffer{}, stderr, memEntries(), factory)
		deps.Ingester.Embedder.(*mock.Embedder).LoadFn = func(context.Context) error {
			return spyder.Errorf(spyder.EMODEL, "model %q not found", "all-minilm")
		}

		cmd := &main.IngestCmd{Workers: []string{"local"}}
		err := cmd.Run(deps)

		assert.Equal(t, spyder.EMODEL, spyder.ErrorCode(err))
		assert.Contains(t, stderr.String(), `model "all-minilm" not found`)
	})
}
