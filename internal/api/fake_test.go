package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// fakeAPI is an httptest server routed like the real API under /api/v1.
type fakeAPI struct {
	*httptest.Server
	router *mux.Router

	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{}
	root := mux.NewRouter()
	f.router = root.PathPrefix("/api/v1").Subrouter()
	f.Server = httptest.NewServer(f.record(root))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) baseURL() string {
	return f.URL + "/api/v1"
}

func (f *fakeAPI) handle(method, path string, h http.HandlerFunc) {
	f.router.HandleFunc(path, h).Methods(method)
}

func (f *fakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		f.mu.Lock()
		f.requests = append(f.requests, r.Clone(r.Context()))
		f.bodies = append(f.bodies, body)
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *fakeAPI) hits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) last() (*http.Request, []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil, nil
	}
	i := len(f.requests) - 1
	return f.requests[i], f.bodies[i]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fakeCredentials is an in-memory Credentials
type fakeCredentials struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (c *fakeCredentials) Token() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

func (c *fakeCredentials) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.cleared++
	return nil
}
