package spyder

import (
	"context"
	"fmt"
	"time"
)

// Resource is the body of a successfully downloaded URL.
type Resource struct {
	URL         string
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}

// Fetcher downloads URLs.
type Fetcher interface {
	// Fetch downloads the URL. Returns EFETCH wrapping a *FetchError on
	// network failure or a non-2xx response.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*Resource, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// FetchError describes a failed download.
type FetchError struct {
	URL        string
	StatusCode int // zero for network failures
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether retrying the request may succeed.
// Client errors other than 429 Too Many Requests are permanent.
func (e *FetchError) Retryable() bool {
	if e.StatusCode == 0 || e.StatusCode == 429 {
		return true
	}
	return e.StatusCode >= 500
}

// NewFetchError returns an EFETCH error wrapping a *FetchError.
func NewFetchError(url string, statusCode int, cause error) error {
	return &Error{
		Code:    EFETCH,
		Message: "download failed",
		Err:     &FetchError{URL: url, StatusCode: statusCode, Err: cause},
	}
}

// DownloadArchive keeps raw copies of downloaded files. Saved files become
// visible together on Commit; Abort discards them.
type DownloadArchive interface {
	Save(ctx context.Context, res *Resource) error
	Commit() error
	Abort() error
}
