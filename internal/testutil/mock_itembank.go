// Package testutil provides testing utilities for the item bank client.
package testutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// RecordedRequest is a Data API request as seen by MockItemBank.
type RecordedRequest struct {
	Method   string
	Path     string
	Header   http.Header
	Security map[string]string
	Request  json.RawMessage
	Action   string
}

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockItemBank is a configurable mock Data API server for testing.
type MockItemBank struct {
	server    *httptest.Server
	mu        sync.RWMutex
	responses map[string]MockResponse
	requests  []RecordedRequest

	// Secret, when set, makes the server reject requests whose signature
	// does not match, as the real API does.
	Secret string
}

// NewMockItemBank creates a new mock item bank server. Its URL (with a
// trailing slash) stands in for the item bank base URL.
func NewMockItemBank() *MockItemBank {
	mock := &MockItemBank{
		responses: make(map[string]MockResponse),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL.
func (m *MockItemBank) URL() string {
	return m.server.URL
}

// BaseURL returns the mock server URL in item bank base form.
func (m *MockItemBank) BaseURL() string {
	return m.server.URL + "/"
}

// Close shuts down the mock server.
func (m *MockItemBank) Close() {
	m.server.Close()
}

// SetResponse configures the response for an endpoint name such as "items".
func (m *MockItemBank) SetResponse(endpoint string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses["/"+strings.TrimPrefix(endpoint, "/")] = resp
}

// Requests returns a copy of every request received so far.
func (m *MockItemBank) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns the number of requests made to the server.
func (m *MockItemBank) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or false if none arrived.
func (m *MockItemBank) LastRequest() (RecordedRequest, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return RecordedRequest{}, false
	}
	return m.requests[len(m.requests)-1], true
}

func (m *MockItemBank) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, `{"meta":{"status":false,"message":"bad form"}}`, http.StatusBadRequest)
		return
	}

	rec := RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Action: r.PostForm.Get("action"),
	}
	if req := r.PostForm.Get("request"); req != "" {
		rec.Request = json.RawMessage(req)
	}
	_ = json.Unmarshal([]byte(r.PostForm.Get("security")), &rec.Security)

	m.mu.Lock()
	m.requests = append(m.requests, rec)
	resp, ok := m.responses[r.URL.Path]
	secret := m.Secret
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if secret != "" && !validSignature(rec, secret, r.PostForm.Get("request")) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"meta":{"status":false,"message":"signature mismatch"}}`))
		return
	}

	if !ok {
		resp = NewRecordsResponse(`[]`)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// validSignature recomputes the version 2 signature independently of the
// client package.
func validSignature(rec RecordedRequest, secret, request string) bool {
	parts := []string{rec.Security["consumer_key"], rec.Security["domain"], rec.Security["timestamp"]}
	if uid := rec.Security["user_id"]; uid != "" {
		parts = append(parts, uid)
	}
	if request != "" {
		parts = append(parts, request)
	}
	if rec.Action != "" {
		parts = append(parts, rec.Action)
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "_")))
	want := "$02$" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(want), []byte(rec.Security["signature"]))
}

// NewRecordsResponse creates a 200 OK Data API envelope around data.
func NewRecordsResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"meta":{"status":true,"timestamp":1700000000,"records":0},"data":` + data + `}`,
	}
}

// NewErrorResponse creates a Data API failure envelope with the given status.
func NewErrorResponse(status int, message string) MockResponse {
	msg, _ := json.Marshal(message)
	return MockResponse{
		StatusCode: status,
		Body:       `{"meta":{"status":false,"message":` + string(msg) + `}}`,
	}
}
