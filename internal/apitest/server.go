// Package apitest provides a recording fake of the REST backend for tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/procura/internal/apiclient"
)

// Call is one request received by the fake server.
type Call struct {
	Method      string
	Path        string
	Query       url.Values
	ContentType string
	Body        []byte
}

// DecodeJSON unmarshals the request body into v.
func (c Call) DecodeJSON(t testing.TB, v any) {
	t.Helper()

	if err := json.Unmarshal(c.Body, v); err != nil {
		t.Fatalf("decoding body of %s %s: %v", c.Method, c.Path, err)
	}
}

type Server struct {
	*httptest.Server

	router chi.Router

	mu    sync.Mutex
	calls []Call
}

func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{router: chi.NewRouter()}
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.record)

	s.Server = httptest.NewServer(s.router)
	t.Cleanup(s.Close)

	return s
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.Query(),
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// Handle registers a raw handler for method and chi pattern.
func (s *Server) Handle(method, pattern string, h http.HandlerFunc) {
	s.router.Method(method, pattern, h)
}

// Respond answers with {"data": data}.
func (s *Server) Respond(method, pattern string, status int, data any) {
	s.Handle(method, pattern, func(w http.ResponseWriter, _ *http.Request) {
		WriteEnvelope(w, status, map[string]any{"data": data})
	})
}

// RespondList answers with {"data": items, "meta": {"total": total}}.
func (s *Server) RespondList(pattern string, items any, total int) {
	s.Handle(http.MethodGet, pattern, func(w http.ResponseWriter, _ *http.Request) {
		WriteEnvelope(w, http.StatusOK, map[string]any{
			"data": items,
			"meta": map[string]any{"total": total},
		})
	})
}

// RespondError answers with {"error": {"message": message}}.
func (s *Server) RespondError(method, pattern string, status int, message string) {
	s.Handle(method, pattern, func(w http.ResponseWriter, _ *http.Request) {
		WriteEnvelope(w, status, map[string]any{"error": map[string]string{"message": message}})
	})
}

// RespondRaw answers with a verbatim body.
func (s *Server) RespondRaw(method, pattern string, status int, body string) {
	s.Handle(method, pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Call, len(s.calls))
	copy(out, s.calls)

	return out
}

// CallsTo filters recorded calls by method and exact path.
func (s *Server) CallsTo(method, path string) []Call {
	var out []Call

	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}

	return out
}

// Client returns an API client pointed at the fake server.
func (s *Server) Client(t testing.TB) *apiclient.Client {
	t.Helper()

	c, err := apiclient.New(s.URL, apiclient.WithHTTPClient(s.Server.Client()))
	if err != nil {
		t.Fatalf("creating api client: %v", err)
	}

	return c
}

func WriteEnvelope(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
