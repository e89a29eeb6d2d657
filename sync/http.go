package sync

import (
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// HTTPRequestTimeout is the default timeout for all HTTP requests to external APIs.
const HTTPRequestTimeout = 15 * time.Second

// DefaultMaxRetries bounds the number of retry attempts per request.
const DefaultMaxRetries = 5

var retryableMethods = map[string]bool{
	http.MethodGet:   true,
	http.MethodPost:  true,
	http.MethodPatch: true,
}

var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// retryTransport retries transient failures (network errors, 429 and 5xx
// responses) with exponential backoff. It only retries methods the vendor
// APIs treat as safe to repeat and only when the request body can be rewound.
type retryTransport struct {
	Base       http.RoundTripper
	MaxRetries uint64
	Interval   time.Duration
}

// NewRetryTransport wraps base with the shared retry policy.
// A nil base uses http.DefaultTransport.
func NewRetryTransport(base http.RoundTripper) http.RoundTripper {
	return retryTransport{Base: base, MaxRetries: DefaultMaxRetries, Interval: 600 * time.Millisecond}
}

func (t retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if !retryableMethods[req.Method] {
		return base.RoundTrip(req)
	}

	bo := backoff.NewExponentialBackOff()
	if t.Interval > 0 {
		bo.InitialInterval = t.Interval
	}

	var resp *http.Response
	var err error
	for attempt := uint64(0); ; attempt++ {
		if attempt > 0 && req.Body != nil {
			if req.GetBody == nil {
				return resp, err
			}
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return resp, err
			}
			req.Body = body
		}

		resp, err = base.RoundTrip(req)
		if err == nil && !retryableStatuses[resp.StatusCode] {
			return resp, nil
		}
		if attempt >= t.MaxRetries {
			return resp, err
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			return resp, err
		}
		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(wait):
		}
	}
}
