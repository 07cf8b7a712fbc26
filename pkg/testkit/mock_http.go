// Package testkit holds shared helpers for HTTP-level tests.
package testkit

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockTransport implements http.RoundTripper. It matches outgoing HTTP
// requests against registered stubs and returns synthetic responses
// instead of making real network calls.
//
// Install it on the shared client before the test:
//
//	mt := testkit.NewMockTransport()
//	mt.Stub(http.MethodPost, "https://api.stripe.com/v1/payment_intents", 200, `{"id":"pi_1"}`)
//	http.DefaultClient.Transport = mt
//	defer http.ResetTransport()
type MockTransport struct {
	mu    sync.Mutex
	stubs []*stub
}

type stub struct {
	method    string
	urlPrefix string
	status    int
	body      string
	callCount int
	requests  []*http.Request
	bodies    []string
}

// NewMockTransport returns an empty transport. Unmatched calls fail the
// round trip so a test can never silently hit the network.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Stub registers a synthetic response for requests whose URL starts with
// urlPrefix. An empty method matches all methods. Stubs are tried in
// registration order.
func (mt *MockTransport) Stub(method, urlPrefix string, status int, body string) *MockTransport {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.stubs = append(mt.stubs, &stub{method: method, urlPrefix: urlPrefix, status: status, body: body})
	return mt
}

// RoundTrip intercepts the outgoing request and returns a synthetic response.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	for _, s := range mt.stubs {
		if s.method != "" && s.method != req.Method {
			continue
		}
		if !strings.HasPrefix(req.URL.String(), s.urlPrefix) {
			continue
		}

		s.callCount++
		s.requests = append(s.requests, req)
		if req.Body != nil {
			raw, _ := io.ReadAll(req.Body)
			req.Body.Close()
			s.bodies = append(s.bodies, string(raw))
		} else {
			s.bodies = append(s.bodies, "")
		}

		header := make(http.Header)
		header.Set("Content-Type", "application/json")
		return &http.Response{
			StatusCode: s.status,
			Status:     fmt.Sprintf("%d %s", s.status, http.StatusText(s.status)),
			Header:     header,
			Body:       io.NopCloser(strings.NewReader(s.body)),
			Request:    req,
		}, nil
	}

	return nil, fmt.Errorf("testkit: unexpected outgoing HTTP call to %s %s", req.Method, req.URL)
}

// Calls returns how many requests matched the stub for urlPrefix.
func (mt *MockTransport) Calls(urlPrefix string) int {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	for _, s := range mt.stubs {
		if s.urlPrefix == urlPrefix {
			return s.callCount
		}
	}
	return 0
}

// LastRequest returns the most recent request matched by the stub for
// urlPrefix along with its captured body.
func (mt *MockTransport) LastRequest(urlPrefix string) (*http.Request, string, bool) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	for _, s := range mt.stubs {
		if s.urlPrefix == urlPrefix && len(s.requests) > 0 {
			n := len(s.requests) - 1
			return s.requests[n], s.bodies[n], true
		}
	}
	return nil, "", false
}

// AssertAllCalled returns an error per stub that was never triggered.
func (mt *MockTransport) AssertAllCalled() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var errs []error
	for _, s := range mt.stubs {
		if s.callCount == 0 {
			errs = append(errs, fmt.Errorf("testkit: stub %s %q was never called", s.method, s.urlPrefix))
		}
	}
	return errs
}
