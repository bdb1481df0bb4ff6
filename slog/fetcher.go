package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/spyder"
)

// Ensure LoggingFetcher implements spyder.Fetcher.
var _ spyder.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   spyder.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next spyder.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (res *spyder.Resource, err error) {
	defer func(begin time.Time) {
		size := 0
		if res != nil {
			size = len(res.Body)
		}
		f.logger.Log(ctx, levelFor(err), "fetch",
			"url", url,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
