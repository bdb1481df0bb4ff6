package crawl_test

import (
	"context"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/spyder"
	"github.com/fwojciec/spyder/mock"
)

// pages returns a fetcher serving bodies by URL. Unknown URLs fail with 404.
func pages(bodies map[string]string) (*mock.Fetcher, func() []string) {
	var mu sync.Mutex
	var fetched []string
	f := &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (*spyder.Resource, error) {
			mu.Lock()
			fetched = append(fetched, url)
			mu.Unlock()
			body, ok := bodies[url]
			if !ok {
				return nil, spyder.NewFetchError(url, 404, nil)
			}
			return &spyder.Resource{
				URL:         url,
				ContentType: "text/plain",
				Body:        []byte(body),
				FetchedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	return f, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), fetched...)
	}
}

// textLoader loads every file as plain text.
func textLoader() *mock.Loader {
	return &mock.Loader{
		LoadFn: func(_ context.Context, _, _ string, data []byte) (*spyder.LoadResult, error) {
			if strings.HasPrefix(string(data), "%BROKEN") {
				return nil, spyder.Errorf(spyder.EUNREADABLE, "cannot decode")
			}
			return &spyder.LoadResult{ContentType: "text/plain", Text: string(data)}, nil
		},
		SupportsFn: func(string) bool { return true },
	}
}

// recordingArchive counts archive calls.
type recordingArchive struct {
	mu        sync.Mutex
	saved     []string
	committed int
	aborted   int
}

func (a *recordingArchive) mock() *mock.DownloadArchive {
	return &mock.DownloadArchive{
		SaveFn: func(_ context.Context, res *spyder.Resource) error {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.saved = append(a.saved, res.URL)
			return nil
		},
		CommitFn: func() error {
			a.committed++
			return nil
		},
		AbortFn: func() error {
			a.aborted++
			return nil
		},
	}
}

// drain collects documents and errors of seq.
func drain(seq iter.Seq2[*spyder.Document, error]) ([]*spyder.Document, []error) {
	var docs []*spyder.Document
	var errs []error
	for doc, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, errs
}
