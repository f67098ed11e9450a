package restapir

import (
	"context"
	"errors"
	log "log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
)

// Retry executes task with Fibonacci backoff up to 5 retries.
// If retries are exhausted, gaveUpTask is invoked (when not nil) and the
// final error is returned.
func Retry(ctx context.Context, task func(ctx context.Context) error, gaveUpTask func(ctx context.Context)) error {
	b := retry.NewFibonacci(100 * time.Millisecond)
	if err := retry.Do(ctx, retry.WithMaxRetries(5, b), task); err != nil {
		log.Warn(err.Error() + ", gave up")
		if gaveUpTask != nil {
			gaveUpTask(ctx)
		}
		return err
	}
	return nil
}

// ShouldRetry reports whether err looks like a transient network failure
// worth retrying, as opposed to a permanent condition (bad request shape,
// cancellation, a status code the remote server meant to send).
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout() || isTemporary(netErr)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ShouldRetry(urlErr.Err)
	}

	return false
}

// isTemporary checks the deprecated-but-still-implemented Temporary() method
// some net errors expose, without requiring callers to special-case it.
func isTemporary(err error) bool {
	type temporary interface {
		Temporary() bool
	}
	if t, ok := err.(temporary); ok {
		return t.Temporary()
	}
	return false
}

// RetryableStatus reports whether an HTTP response status code is worth
// retrying: 429 (rate limiting) and the gateway/availability failures 502,
// 503 and 504. Every other status, including 500, is not retried.
func RetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
