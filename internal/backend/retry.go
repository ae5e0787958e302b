package backend

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go/failsafehttp"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

type retrySettings struct {
	MaxRetries int
	Delay      time.Duration
	MaxDelay   time.Duration
}

// retryTransport retries idempotent reads. Writes go straight to next so a
// favorite is never added twice because a response got lost.
type retryTransport struct {
	next     http.RoundTripper
	retrying http.RoundTripper
}

func newRetryTransport(next http.RoundTripper, s retrySettings) http.RoundTripper {
	if s.MaxRetries <= 0 {
		return next
	}
	if s.MaxDelay < s.Delay {
		s.MaxDelay = s.Delay
	}

	policy := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(shouldRetry).
		WithMaxRetries(s.MaxRetries).
		WithBackoff(s.Delay, s.MaxDelay).
		ReturnLastFailure().
		Build()

	return &retryTransport{
		next:     next,
		retrying: failsafehttp.NewRoundTripper(next, policy),
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		return t.retrying.RoundTrip(req)
	}
	return t.next.RoundTrip(req)
}

// shouldRetry accepts transport errors, 429 and 5xx. Context cancellation is final.
func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if resp == nil {
		return false
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
}
