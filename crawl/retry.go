package crawl

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/spyder"
	"github.com/sethvargo/go-retry"
)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second}
}

// FetchWithRetry fetches url, retrying after each of delays in turn while
// the failure is retryable (network errors, 429 and 5xx responses).
// The logger, if provided, is called for each retry attempt.
func FetchWithRetry(ctx context.Context, fetcher spyder.Fetcher, url string, delays []time.Duration, logger LogFunc) (*spyder.Resource, error) {
	var res *spyder.Resource
	attempt := 1
	err := retry.Do(ctx, delayBackoff(delays), func(ctx context.Context) error {
		r, err := fetcher.Fetch(ctx, url)
		if err == nil {
			res = r
			return nil
		}
		if !retryable(err) {
			return err
		}
		attempt++
		if logger != nil && attempt <= len(delays)+1 {
			logger("retry %s (attempt %d): %v", url, attempt, err)
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// delayBackoff yields each delay once, then stops.
func delayBackoff(delays []time.Duration) retry.Backoff {
	i := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		if i >= len(delays) {
			return 0, true
		}
		d := delays[i]
		i++
		return d, false
	})
}

func retryable(err error) bool {
	var fe *spyder.FetchError
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	return false
}
