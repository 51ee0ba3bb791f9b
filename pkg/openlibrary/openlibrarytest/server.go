// Package openlibrarytest provides a fake Open Library catalog for tests.
package openlibrarytest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/shelfmark/shelfmark/pkg/openlibrary"
)

type response struct {
	status int
	body   string
	delay  time.Duration
}

// Server answers GETs by path, regardless of the host the client asked for.
// Unregistered paths return 404.
type Server struct {
	srv *httptest.Server

	mu        sync.Mutex
	responses map[string]response
	requests  []*http.Request
}

func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{responses: map[string]response{}}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Clone(r.Context()))
	resp, ok := s.responses[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if resp.delay > 0 {
		select {
		case <-time.After(resp.delay):
		case <-r.Context().Done():
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

// JSON registers a 200 response with body for path.
func (s *Server) JSON(path, body string) {
	s.Respond(path, http.StatusOK, body)
}

func (s *Server) Respond(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = response{status: status, body: body}
}

// Stall makes path answer only after delay.
func (s *Server) Stall(path string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = response{status: http.StatusOK, body: `{}`, delay: delay}
}

// Requests returns the paths requested so far, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, len(s.requests))
	for i, r := range s.requests {
		paths[i] = r.URL.Path
	}
	return paths
}

// Headers returns the headers of the i-th request.
func (s *Server) Headers(i int) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i].Header
}

// Close shuts the server down so that subsequent fetches are unreachable.
func (s *Server) Close() {
	s.srv.Close()
}

// Client returns a metadata client that keeps the default public base URL but
// routes every request to this server.
func (s *Server) Client(timeout time.Duration) *openlibrary.Client {
	target, _ := url.Parse(s.srv.URL)
	return openlibrary.NewClient(openlibrary.Options{
		Timeout:           timeout,
		RequestsPerSecond: 1000,
		HTTPClient:        &http.Client{Transport: &rewriteTransport{target: target}},
	})
}

type rewriteTransport struct {
	target *url.URL
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = rt.target.Scheme
	out.URL.Host = rt.target.Host
	out.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(out)
}
