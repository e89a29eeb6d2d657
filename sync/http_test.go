package sync

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func retryTestTransport(base http.RoundTripper) retryTransport {
	return retryTransport{Base: base, MaxRetries: 2, Interval: time.Millisecond}
}

func statusResponse(req *http.Request, status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}
}

func TestRetryTransport_RetriesTransientStatuses(t *testing.T) {
	attempts := 0
	transport := retryTestTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		attempts++
		if attempts < 3 {
			return statusResponse(req, http.StatusTooManyRequests), nil
		}
		return statusResponse(req, http.StatusOK), nil
	}))

	req, _ := http.NewRequest(http.MethodGet, "https://api.notion.com/v1/pages", nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected the retried request to succeed but have %d", resp.StatusCode)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts but have %d", attempts)
	}
}

func TestRetryTransport_GivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	transport := retryTestTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		attempts++
		return statusResponse(req, http.StatusServiceUnavailable), nil
	}))

	req, _ := http.NewRequest(http.MethodGet, "https://api.notion.com/v1/pages", nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected the final response to be returned but have %d", resp.StatusCode)
	}
	if attempts != 3 {
		t.Errorf("Expected the initial attempt plus 2 retries but have %d", attempts)
	}
}

func TestRetryTransport_DoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	transport := retryTestTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		attempts++
		return statusResponse(req, http.StatusBadRequest), nil
	}))

	req, _ := http.NewRequest(http.MethodGet, "https://api.notion.com/v1/pages", nil)
	if _, err := transport.RoundTrip(req); err != nil {
		t.Fatal(err)
	}
	if attempts != 1 {
		t.Errorf("Expected a single attempt for a 400 but have %d", attempts)
	}
}

func TestRetryTransport_ReplaysRequestBody(t *testing.T) {
	var bodies []string
	transport := retryTestTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatal(err)
		}
		bodies = append(bodies, string(body))
		if len(bodies) == 1 {
			return statusResponse(req, http.StatusBadGateway), nil
		}
		return statusResponse(req, http.StatusOK), nil
	}))

	req, _ := http.NewRequest(http.MethodPost, "https://api.notion.com/v1/pages", strings.NewReader(`{"a":1}`))
	if _, err := transport.RoundTrip(req); err != nil {
		t.Fatal(err)
	}
	if len(bodies) != 2 {
		t.Fatalf("Expected the request to be retried once but have %d attempts", len(bodies))
	}
	if bodies[1] != `{"a":1}` {
		t.Errorf("Expected the body to be rewound for the retry but have %q", bodies[1])
	}
}

func TestRetryTransport_SkipsNonIdempotentMethods(t *testing.T) {
	attempts := 0
	transport := retryTestTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		attempts++
		return statusResponse(req, http.StatusInternalServerError), nil
	}))

	req, _ := http.NewRequest(http.MethodDelete, "https://api.notion.com/v1/pages/p1", nil)
	if _, err := transport.RoundTrip(req); err != nil {
		t.Fatal(err)
	}
	if attempts != 1 {
		t.Errorf("Expected DELETE to pass through without retries but have %d attempts", attempts)
	}
}
