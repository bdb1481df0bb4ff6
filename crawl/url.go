package crawl

import (
	"context"
	"iter"
	"time"

	"github.com/fwojciec/spyder"
)

// Compile-time interface verification.
var _ spyder.Source = (*URLSource)(nil)

// URLSource downloads a fixed list of URLs, one document per URL.
type URLSource struct {
	Links       []string
	Fetcher     spyder.Fetcher
	Loader      spyder.Loader
	RateLimiter spyder.DomainLimiter
	Archive     spyder.DownloadArchive
	RetryDelays []time.Duration
	Log         LogFunc
}

// Worker returns spyder.WorkerURL.
func (s *URLSource) Worker() spyder.Worker {
	return spyder.WorkerURL
}

// Validate returns ECONFIG when there are no links.
func (s *URLSource) Validate() error {
	if len(s.Links) == 0 {
		return spyder.Errorf(spyder.ECONFIG, "the url worker requires at least one --link")
	}
	return nil
}

// Documents downloads each link in order. Repeated links are downloaded once.
// A link that cannot be fetched or loaded is reported and skipped.
func (s *URLSource) Documents(ctx context.Context) iter.Seq2[*spyder.Document, error] {
	return func(yield func(*spyder.Document, error) bool) {
		if err := s.Validate(); err != nil {
			yield(nil, err)
			return
		}

		d := &downloader{
			fetcher:     s.Fetcher,
			loader:      s.Loader,
			limiter:     s.RateLimiter,
			archive:     s.Archive,
			retryDelays: s.RetryDelays,
			log:         s.Log,
		}
		seen := make(map[string]bool, len(s.Links))
		for _, link := range s.Links {
			if err := ctx.Err(); err != nil {
				abortArchive(s.Archive, s.Log)
				yield(nil, err)
				return
			}
			key := NormalizeURL(link)
			if seen[key] {
				continue
			}
			seen[key] = true

			doc, err := d.document(ctx, spyder.WorkerURL, link, "")
			if err != nil && !spyder.IsRecoverable(err) {
				abortArchive(s.Archive, s.Log)
				yield(nil, err)
				return
			}
			if !yield(doc, err) {
				abortArchive(s.Archive, s.Log)
				return
			}
		}
		if s.Archive != nil {
			if err := s.Archive.Commit(); err != nil {
				yield(nil, err)
			}
		}
	}
}

func abortArchive(a spyder.DownloadArchive, log LogFunc) {
	if a == nil {
		return
	}
	if err := a.Abort(); err != nil && log != nil {
		log("abort download archive: %v", err)
	}
}
