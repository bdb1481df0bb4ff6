package crawl

import (
	"context"
	"net/url"
	"time"

	"github.com/fwojciec/spyder"
)

// downloader fetches a single URL and turns it into a document.
type downloader struct {
	fetcher     spyder.Fetcher
	loader      spyder.Loader
	limiter     spyder.DomainLimiter
	archive     spyder.DownloadArchive
	retryDelays []time.Duration
	log         LogFunc
}

// fetch waits for the host's rate limit and downloads rawURL with retries.
// An invalid URL is reported as a fetch failure.
func (d *downloader) fetch(ctx context.Context, rawURL string) (*spyder.Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, spyder.NewFetchError(rawURL, 0, spyder.Errorf(spyder.EINVALID, "not an http(s) URL"))
	}
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	delays := d.retryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return FetchWithRetry(ctx, d.fetcher, rawURL, delays, d.log)
}

// document downloads rawURL and loads it. title overrides the title found
// in the file when set.
func (d *downloader) document(ctx context.Context, worker spyder.Worker, rawURL, title string) (*spyder.Document, error) {
	res, err := d.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if d.archive != nil {
		if err := d.archive.Save(ctx, res); err != nil {
			return nil, err
		}
	}
	return d.load(ctx, worker, res, title)
}

// load converts a downloaded resource into a document.
func (d *downloader) load(ctx context.Context, worker spyder.Worker, res *spyder.Resource, title string) (*spyder.Document, error) {
	loaded, err := d.loader.Load(ctx, res.URL, res.ContentType, res.Body)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = loaded.Title
	}
	if title == "" {
		title = spyder.TitleFromName(res.URL)
	}
	doc := spyder.NewDocument(worker, res.URL, title, loaded.ContentType, loaded.Text)
	doc.FetchedAt = res.FetchedAt
	return doc, nil
}
