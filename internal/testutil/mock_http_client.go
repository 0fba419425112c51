package testutil

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/httpclient"
	jsoniter "github.com/json-iterator/go"
)

// MockHTTPClient implements httpclient.Client for tests. Responses resolve in
// this order: queued responses for the route, the registered response for the
// route, the fallback handler, then 404.
type MockHTTPClient struct {
	mu      sync.Mutex
	routes  map[string]MockResponse
	queued  map[string][]MockResponse
	handler MockHandler
	calls   []*httpclient.Request
}

// MockResponse represents a mock HTTP response. A non-nil Err simulates a
// request that never got a response.
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
	Err        error
}

// MockHandler answers requests no route matched
type MockHandler func(req *httpclient.Request) MockResponse

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		routes: make(map[string]MockResponse),
		queued: make(map[string][]MockResponse),
	}
}

// JSONResponse builds a response with v encoded as the body
func JSONResponse(status int, v interface{}) MockResponse {
	body, _ := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(v)
	return MockResponse{
		StatusCode: status,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// RegisterResponse answers every request whose path ends with path
func (m *MockHTTPClient) RegisterResponse(method, path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[routeKey(method, path)] = resp
}

// QueueResponse answers the next len(resps) matching requests, once each
func (m *MockHTTPClient) QueueResponse(method, path string, resps ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := routeKey(method, path)
	m.queued[key] = append(m.queued[key], resps...)
}

// SetHandler installs the fallback handler
func (m *MockHTTPClient) SetHandler(h MockHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

// Send implements the httpclient.Client interface
func (m *MockHTTPClient) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	// like a real transport, a done context never reaches the server
	if err := ctx.Err(); err != nil {
		return toResult(req, MockResponse{Err: err})
	}

	m.mu.Lock()
	m.calls = append(m.calls, cloneRequest(req))
	path := requestPath(req.URL)

	resp, found := m.popQueuedLocked(req.Method, path)
	if !found {
		resp, found = m.matchLocked(req.Method, path)
	}
	handler := m.handler
	m.mu.Unlock()

	if !found {
		if handler == nil {
			resp = MockResponse{StatusCode: http.StatusNotFound, Body: []byte("Not Found")}
		} else {
			resp = handler(req)
		}
	}

	return toResult(req, resp)
}

// toResult mirrors httpclient.DefaultClient: no response is a network error
// and any status >= 400 is an *httpclient.Error
func toResult(req *httpclient.Request, resp MockResponse) (*httpclient.Response, error) {
	if resp.Err != nil {
		return nil, ierr.WithError(resp.Err).
			WithHint("Unable to reach the server. Please check your connection.").
			Mark(ierr.ErrNetwork)
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	if status >= 400 {
		return nil, httpclient.NewError(req, status, resp.Body)
	}
	headers := resp.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	return &httpclient.Response{StatusCode: status, Body: resp.Body, Headers: headers}, nil
}

func (m *MockHTTPClient) popQueuedLocked(method, path string) (MockResponse, bool) {
	key, ok := bestMatch(method, path, m.queued)
	if !ok {
		return MockResponse{}, false
	}
	queue := m.queued[key]
	resp := queue[0]
	if len(queue) == 1 {
		delete(m.queued, key)
	} else {
		m.queued[key] = queue[1:]
	}
	return resp, true
}

func (m *MockHTTPClient) matchLocked(method, path string) (MockResponse, bool) {
	key, ok := bestMatch(method, path, m.routes)
	if !ok {
		return MockResponse{}, false
	}
	return m.routes[key], true
}

// bestMatch picks the longest registered path that is a suffix of path
func bestMatch[V any](method, path string, table map[string]V) (string, bool) {
	prefix := strings.ToUpper(method) + " "
	best := ""
	for key := range table {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		route := strings.TrimPrefix(key, prefix)
		if strings.HasSuffix(path, route) && len(key) > len(best) {
			best = key
		}
	}
	return best, best != ""
}

func requestPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}

func cloneRequest(req *httpclient.Request) *httpclient.Request {
	c := *req
	c.Headers = make(map[string]string, len(req.Headers))
	for k, v := range req.Headers {
		c.Headers[k] = v
	}
	if req.Body != nil {
		c.Body = append([]byte(nil), req.Body...)
	}
	return &c
}

// Calls returns every request sent so far, in order
func (m *MockHTTPClient) Calls() []*httpclient.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*httpclient.Request(nil), m.calls...)
}

// CallsTo returns the requests with the given method whose path ends with path
func (m *MockHTTPClient) CallsTo(method, path string) []*httpclient.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*httpclient.Request
	for _, c := range m.calls {
		if strings.EqualFold(c.Method, method) && strings.HasSuffix(requestPath(c.URL), path) {
			out = append(out, c)
		}
	}
	return out
}

// CallCount is len(CallsTo(method, path))
func (m *MockHTTPClient) CallCount(method, path string) int {
	return len(m.CallsTo(method, path))
}

// ResetCalls forgets recorded requests but keeps routes
func (m *MockHTTPClient) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Clear removes all registered responses and recorded calls
func (m *MockHTTPClient) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = make(map[string]MockResponse)
	m.queued = make(map[string][]MockResponse)
	m.handler = nil
	m.calls = nil
}
