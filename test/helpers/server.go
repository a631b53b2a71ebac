// Package test provides test utilities and helpers for MutedVoice tests.
package test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockServer is an httptest server that records every request and
// dispatches on "METHOD /path".
type MockServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []RecordedRequest
	handlers map[string]http.HandlerFunc
}

// RecordedRequest represents a recorded HTTP request.
type RecordedRequest struct {
	Method  string
	Path    string
	Query   string
	Headers http.Header
	Body    []byte
}

// NewMockServer creates a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		requests: make([]RecordedRequest, 0),
		handlers: make(map[string]http.HandlerFunc),
	}

	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		ms.mu.Lock()
		ms.requests = append(ms.requests, RecordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Headers: r.Header.Clone(),
			Body:    body,
		})
		handler, ok := ms.handlers[fmt.Sprintf("%s %s", r.Method, r.URL.Path)]
		ms.mu.Unlock()

		if ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	return ms
}

// HandleFunc registers a handler for a specific method and path.
func (ms *MockServer) HandleFunc(method, path string, handler http.HandlerFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.handlers[fmt.Sprintf("%s %s", method, path)] = handler
}

// HandleJSON registers a handler that encodes v as the response body.
func (ms *MockServer) HandleJSON(method, path string, statusCode int, v interface{}) {
	ms.HandleFunc(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(v)
	})
}

// Requests returns all recorded requests.
func (ms *MockServer) Requests() []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	result := make([]RecordedRequest, len(ms.requests))
	copy(result, ms.requests)
	return result
}

// RequestsTo returns the recorded requests matching method and path.
func (ms *MockServer) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range ms.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Reset clears recorded requests.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = make([]RecordedRequest, 0)
}
