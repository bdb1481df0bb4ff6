// Package crawl provides the web and url ingestion workers. It coordinates
// page fetching, site parsing and concurrent document downloads.
package crawl

import (
	"context"
	"iter"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/spyder"
	"golang.org/x/sync/errgroup"
)

// Frontier configuration for web crawling.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate of the prefilter.
	frontierFalsePositiveRate = 0.01
	// defaultMaxPages limits the pages fetched when no limit is configured.
	defaultMaxPages = 1000
)

// Compile-time interface verification.
var _ spyder.Source = (*WebSource)(nil)

// WebSource crawls a site starting from its seed pages. Documents listed in
// a page's table are downloaded and ingested; a page without table rows is
// ingested itself unless the parser reports it as an index page. Links are
// followed while the depth stays below MaxDepth, on the root's host and
// inside the root's directory.
type WebSource struct {
	Root        string
	Paths       []string
	MaxDepth    int
	MaxPages    int
	Concurrency int
	RetryDelays []time.Duration

	Fetcher     spyder.Fetcher
	Parser      spyder.SiteParser
	Loader      spyder.Loader
	RateLimiter spyder.DomainLimiter
	Archive     spyder.DownloadArchive
	Log         LogFunc
}

// NewWebSource creates a WebSource from crawler settings.
func NewWebSource(cfg spyder.CrawlerConfig) *WebSource {
	return &WebSource{
		Root:        cfg.Root,
		Paths:       cfg.Paths,
		MaxDepth:    cfg.MaxDepth,
		MaxPages:    cfg.MaxPages,
		Concurrency: cfg.Concurrency,
		RetryDelays: cfg.RetryDelays,
	}
}

// Worker returns spyder.WorkerWeb.
func (s *WebSource) Worker() spyder.Worker {
	return spyder.WorkerWeb
}

// Validate returns ECONFIG unless Root is an absolute http(s) URL.
func (s *WebSource) Validate() error {
	cfg := spyder.CrawlerConfig{Root: s.Root}
	return cfg.ValidateWeb()
}

// Documents crawls the site. Each call starts a fresh crawl with its own
// frontier, so a URL is fetched at most once per call.
func (s *WebSource) Documents(ctx context.Context) iter.Seq2[*spyder.Document, error] {
	return func(yield func(*spyder.Document, error) bool) {
		if err := s.Validate(); err != nil {
			yield(nil, err)
			return
		}
		cfg := spyder.CrawlerConfig{Root: s.Root, Paths: s.Paths}
		root, _ := url.Parse(s.Root)

		frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
		for _, seed := range cfg.SeedURLs() {
			frontier.Push(spyder.Link{URL: seed})
		}

		c := &webCrawl{
			src:      s,
			root:     root,
			frontier: frontier,
			d: &downloader{
				fetcher:     s.Fetcher,
				loader:      s.Loader,
				limiter:     s.RateLimiter,
				archive:     s.Archive,
				retryDelays: s.RetryDelays,
				log:         s.Log,
			},
		}
		if !c.run(ctx, yield) {
			abortArchive(s.Archive, s.Log)
			return
		}
		if s.Archive != nil {
			if err := s.Archive.Commit(); err != nil {
				yield(nil, err)
			}
		}
	}
}

// webCrawl holds the state of one crawl.
type webCrawl struct {
	src      *WebSource
	root     *url.URL
	frontier *Frontier
	d        *downloader
}

// run processes the frontier until it is empty or the page limit is hit.
// Returns false if the crawl ended on a fatal error or the consumer stopped.
func (c *webCrawl) run(ctx context.Context, yield func(*spyder.Document, error) bool) bool {
	maxPages := c.src.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	for pages := 0; pages < maxPages; pages++ {
		link, ok := c.frontier.Pop()
		if !ok {
			return true
		}
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return false
		}

		res, err := c.d.fetch(ctx, link.URL)
		if err != nil {
			if !spyder.IsRecoverable(err) {
				yield(nil, err)
				return false
			}
			if !yield(nil, err) {
				return false
			}
			continue
		}
		page := &spyder.Page{URL: res.URL, HTML: string(res.Body)}

		if link.Depth < c.src.MaxDepth {
			c.follow(page, link.Depth+1)
		}

		rows, err := c.src.Parser.ExtractTable(page)
		if err != nil {
			if !yield(nil, spyder.WrapError(spyder.EUNREADABLE, err, "parse %s", page.URL)) {
				return false
			}
			continue
		}

		if len(rows) == 0 {
			if ip, ok := c.src.Parser.(spyder.IndexPageParser); ok && ip.IsIndex(page) {
				continue
			}
			if !c.ingestPage(ctx, res, yield) {
				return false
			}
			continue
		}
		if !c.downloadRows(ctx, rows, yield) {
			return false
		}
	}
	return true
}

// follow queues the in-scope links of page.
func (c *webCrawl) follow(page *spyder.Page, depth int) {
	links, err := c.src.Parser.ExtractLinks(page)
	if err != nil {
		if c.src.Log != nil {
			c.src.Log("extract links from %s: %v", page.URL, err)
		}
		return
	}
	for _, l := range links {
		if c.inScope(l) {
			c.frontier.Push(spyder.Link{URL: l, Depth: depth})
		}
	}
}

// ingestPage yields the fetched page itself as a document.
func (c *webCrawl) ingestPage(ctx context.Context, res *spyder.Resource, yield func(*spyder.Document, error) bool) bool {
	if c.src.Archive != nil {
		if err := c.src.Archive.Save(ctx, res); err != nil {
			yield(nil, err)
			return false
		}
	}
	doc, err := c.d.load(ctx, spyder.WorkerWeb, res, "")
	if err != nil && !spyder.IsRecoverable(err) {
		yield(nil, err)
		return false
	}
	return yield(doc, err)
}

// download holds the outcome of one table row.
type download struct {
	doc *spyder.Document
	err error
}

// downloadRows fetches the documents of rows concurrently and yields them
// in table order. Rows whose URL was already downloaded are skipped.
func (c *webCrawl) downloadRows(ctx context.Context, rows []spyder.Row, yield func(*spyder.Document, error) bool) bool {
	var pending []spyder.Row
	for _, row := range rows {
		if c.frontier.Visit(row.URL) {
			pending = append(pending, row)
		}
	}

	concurrency := c.src.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]download, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, row := range pending {
		g.Go(func() error {
			doc, err := c.d.document(gctx, spyder.WorkerWeb, row.URL, row.Title)
			results[i] = download{doc: doc, err: err}
			if err != nil && !spyder.IsRecoverable(err) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		yield(nil, err)
		return false
	}

	for _, r := range results {
		if !yield(r.doc, r.err) {
			return false
		}
	}
	return true
}

// inScope reports whether rawURL is an http(s) URL on the root's host and
// inside the root's directory.
func (c *webCrawl) inScope(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if !strings.EqualFold(u.Hostname(), c.root.Hostname()) {
		return false
	}
	return matchesPathPrefix(u.Path, rootDir(c.root.Path))
}

// rootDir returns the directory part of a URL path: everything up to and
// including the last slash.
func rootDir(p string) string {
	return p[:strings.LastIndex(p, "/")+1]
}

// matchesPathPrefix checks if path lies in the directory prefix, respecting
// path boundaries: /docs/ matches /docs, /docs/ and /docs/intro but not
// /documentation.
func matchesPathPrefix(path, prefix string) bool {
	dir := strings.TrimSuffix(prefix, "/")
	if dir == "" {
		return true
	}
	return path == dir || strings.HasPrefix(path, dir+"/")
}
