package crawl

import (
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/spyder"
	"github.com/fwojciec/spyder/bloom"
)

// Compile-time interface verification.
var _ spyder.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory first-in first-out crawl queue that never hands
// out the same normalized URL twice. A Bloom filter answers most "not seen"
// queries; an exact set settles the filter's possible false positives so
// no URL is skipped by mistake.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Set
	queue []spyder.Link
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for the Bloom prefilter.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen: bloom.NewSet(n, fpRate),
	}
}

// Push adds a link to the frontier.
// Returns false if the URL has already been seen.
// The link is queued under its normalized URL.
func (f *Frontier) Push(link spyder.Link) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	link.URL = NormalizeURL(link.URL)
	if !f.seen.Add(link.URL) {
		return false
	}
	f.queue = append(f.queue, link)
	return true
}

// Pop returns the oldest queued link.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (spyder.Link, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return spyder.Link{}, false
	}
	link := f.queue[0]
	f.queue[0] = spyder.Link{}
	f.queue = f.queue[1:]
	return link, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been processed or queued.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.seen.Has(NormalizeURL(rawURL))
}

// Visit marks a URL as seen without queueing it.
// Returns false if the URL has already been seen.
func (f *Frontier) Visit(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Add(NormalizeURL(rawURL))
}

// NormalizeURL returns the form of rawURL used for deduplication: fragment
// removed, scheme and host lower-cased, default ports dropped and an empty
// path replaced by "/". Unparseable input is returned without its fragment.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		if idx := strings.Index(rawURL, "#"); idx != -1 {
			return rawURL[:idx]
		}
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "http" && u.Port() == "80") || (u.Scheme == "https" && u.Port() == "443") {
		u.Host = u.Hostname()
	}
	if u.Path == "" && u.Host != "" {
		u.Path = "/"
	}
	return u.String()
}
