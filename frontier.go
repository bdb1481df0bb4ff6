package spyder

import "context"

// Link is a page URL queued for crawling.
type Link struct {
	URL   string
	Depth int // number of hops from a seed page
}

// URLFrontier manages a crawl queue with deduplication by normalized URL.
type URLFrontier interface {
	// Push adds a link to the frontier.
	// Returns false if the URL has already been seen.
	Push(link Link) bool

	// Pop returns the next link in first-in first-out order.
	// Returns false if the frontier is empty.
	Pop() (Link, bool)

	// Len returns the number of URLs in the queue.
	Len() int

	// Seen returns true if the URL has been processed or queued.
	Seen(url string) bool

	// Visit marks a URL as seen without queueing it.
	// Returns false if the URL has already been seen.
	Visit(url string) bool
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
