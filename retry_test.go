package restapir

import (
	"context"
	"errors"
	"net"
	"net/url"
	"testing"
)

type fakeTimeoutErr struct{}

func (fakeTimeoutErr) Error() string   { return "i/o timeout" }
func (fakeTimeoutErr) Timeout() bool   { return true }
func (fakeTimeoutErr) Temporary() bool { return true }

func TestShouldRetry_NilAndCancellation(t *testing.T) {
	if ShouldRetry(nil) {
		t.Fatalf("nil should not retry")
	}
	if ShouldRetry(context.Canceled) {
		t.Fatalf("context.Canceled should not retry")
	}
	if ShouldRetry(context.DeadlineExceeded) {
		t.Fatalf("context.DeadlineExceeded should not retry")
	}
}

func TestShouldRetry_NetTimeout(t *testing.T) {
	var netErr net.Error = fakeTimeoutErr{}
	if !ShouldRetry(netErr) {
		t.Fatalf("expected a timing-out net.Error to be retryable")
	}
	wrapped := &url.Error{Op: "Get", URL: "http://example.com", Err: netErr}
	if !ShouldRetry(wrapped) {
		t.Fatalf("expected a url.Error wrapping a retryable net.Error to be retryable")
	}
}

func TestShouldRetry_PlainError(t *testing.T) {
	if ShouldRetry(errors.New("boom")) {
		t.Fatalf("a plain error with no net/timeout signal should not retry")
	}
}

func TestRetryableStatus(t *testing.T) {
	cases := map[int]bool{
		200: false,
		404: false,
		429: true,
		500: false,
		502: true,
		503: true,
		504: true,
	}
	for code, want := range cases {
		if got := RetryableStatus(code); got != want {
			t.Errorf("RetryableStatus(%d) = %v, want %v", code, got, want)
		}
	}
}
